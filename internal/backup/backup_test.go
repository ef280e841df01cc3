package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitick/internal/constants"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habitick.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE habits (id TEXT PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO habits VALUES ('h1', 'Read'), ('h2', 'Run')`); err != nil {
		t.Fatal(err)
	}
	return dbPath
}

func countHabits(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&n); err != nil {
		t.Fatalf("query %s: %v", path, err)
	}
	return n
}

// fixedClock returns a clock that advances one minute per call.
func fixedClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		t := cur
		cur = cur.Add(time.Minute)
		return t
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	path, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written to %s", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "habitick-") {
		t.Errorf("backup name = %s", filepath.Base(path))
	}
	if n := countHabits(t, path); n != 2 {
		t.Errorf("backup has %d habits, want 2", n)
	}
}

func TestBackupWithNoDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("CreateBackup() should fail without a database")
	}
}

func TestUniqueNamesAndRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local) }

	first, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	second, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	if first == second || !strings.HasSuffix(second, "-1.db") {
		t.Errorf("same-second backups = %s, %s", first, second)
	}

	mgr.now = fixedClock(time.Date(2024, 5, 2, 9, 0, 0, 0, time.Local))
	for i := 0; i < constants.MaxBackups+3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("kept %d backups, want %d", len(backups), constants.MaxBackups)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not newest first at %d", i)
		}
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Errorf("oldest backup %s should have been rotated out", first)
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "habitick-garbage.db", "other-20240101-000000.db"} {
		_ = os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600)
	}
	backups, err := mgr.ListBackups()
	if err != nil || len(backups) != 0 {
		t.Errorf("ListBackups() = %v, %v", backups, err)
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local))

	snap, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	db, _ := sql.Open("sqlite", dbPath)
	if _, err := db.Exec(`DELETE FROM habits`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	previous, err := mgr.RestoreBackup(snap)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if n := countHabits(t, dbPath); n != 2 {
		t.Errorf("restored database has %d habits, want 2", n)
	}
	if previous == "" || countHabits(t, previous) != 0 {
		t.Errorf("pre-restore snapshot %q should hold the emptied database", previous)
	}
}

func TestRestoreWithCorruptedBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	bad := filepath.Join(t.TempDir(), "habitick-20240101-000000.db")
	if err := os.WriteFile(bad, []byte("definitely not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(bad); err == nil {
		t.Fatal("RestoreBackup() should reject a corrupted file")
	}
	if n := countHabits(t, dbPath); n != 2 {
		t.Errorf("database changed after failed restore: %d habits", n)
	}
	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("RestoreBackup() should fail for a missing file")
	}
}
