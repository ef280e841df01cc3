// Package notifier reports the outcome of background jobs to the user, either
// through the desktop tray companion or on the terminal.
package notifier

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitick/internal/logger"
)

type Notifier interface {
	Notify(text string) error
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F44336")).Bold(true)
)

// Console prints notifications to a writer, coloring failures red.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(text string) error {
	style := successStyle
	if strings.HasPrefix(text, "Import failed") || strings.HasPrefix(text, "Export failed") {
		style = failureStyle
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, style.Render(text))
	return err
}

// Fallback tries each notifier in order until one succeeds.
type Fallback []Notifier

func (f Fallback) Notify(text string) error {
	var lastErr error
	for _, n := range f {
		if err := n.Notify(text); err != nil {
			logger.Debug("Notifier unavailable, trying next", "error", err)
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// Recorder keeps every message; tests use it to observe job outcomes.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Notify(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return nil
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
