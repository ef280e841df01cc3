package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitick/internal/logger"
	"github.com/julianstephens/habitick/internal/migration"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/storage/sqlstore"
	"github.com/julianstephens/habitick/migrations"
)

// Store is the file-backed record store. Query methods come from the
// embedded sqlstore.Queries once Init or Load has opened the database.
type Store struct {
	*sqlstore.Queries
	path string
	db   *sql.DB
	loc  *time.Location
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	s.Queries = sqlstore.New(db, "sqlite")
	s.Queries.SetLocation(s.loc)
	return nil
}

// SetLocation sets the zone day keys are parsed into. It may be called
// before the database is opened.
func (s *Store) SetLocation(loc *time.Location) {
	s.loc = loc
	if s.Queries != nil {
		s.Queries.SetLocation(loc)
	}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.Migrate(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	settings, err := s.GetSettings()
	if err != nil || settings.Timezone == "" || settings.DefaultColor == "" {
		models.ApplyDefaultSettings(&settings)
		if err := s.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'habitick init' first")
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.runner().ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() *migration.Runner {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The embedded directory is fixed at build time.
		panic(err)
	}
	return migration.NewRunner(s.db, sub, migration.SQLite)
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	return s.runner().ApplyMigrations(logFn)
}

// SchemaStatus returns the applied and latest schema versions.
func (s *Store) SchemaStatus() (current, latest int, err error) {
	return s.runner().Status()
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the open handle, or nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
