package tracker

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitick/internal/models"
)

var ErrNotSorting = errors.New("no sort in progress")

// StartSorting snapshots the current order. Moves only touch the snapshot
// until ConfirmSort.
func (t *Tracker) StartSorting() ([]models.Habit, error) {
	habits, err := t.store.ListHabits()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sorting = habits
	return append([]models.Habit(nil), habits...), nil
}

// Sorting returns the pending order, or nil outside a sort session.
func (t *Tracker) Sorting() []models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sorting == nil {
		return nil
	}
	return append([]models.Habit(nil), t.sorting...)
}

// Move shifts the habit at from to position to, sliding the ones between.
func (t *Tracker) Move(from, to int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sorting == nil {
		return ErrNotSorting
	}
	n := len(t.sorting)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d -> %d out of range (0-%d)", from, to, n-1)
	}
	h := t.sorting[from]
	t.sorting = append(t.sorting[:from], t.sorting[from+1:]...)
	t.sorting = append(t.sorting[:to], append([]models.Habit{h}, t.sorting[to:]...)...)
	return nil
}

func (t *Tracker) ConfirmSort() error {
	t.mu.Lock()
	pending := t.sorting
	t.mu.Unlock()
	if pending == nil {
		return ErrNotSorting
	}
	if err := t.SaveSortOrder(pending); err != nil {
		return err
	}
	t.CancelSort()
	return nil
}

func (t *Tracker) CancelSort() {
	t.mu.Lock()
	t.sorting = nil
	t.mu.Unlock()
}

// SaveSortOrder stores each habit's position in list as its sort index. Only
// the sort index is written, so edits made since list was read survive.
func (t *Tracker) SaveSortOrder(list []models.Habit) error {
	ids := make([]string, len(list))
	for i, h := range list {
		ids[i] = h.ID
	}
	if err := t.store.UpdateSortIndexes(ids); err != nil {
		return fmt.Errorf("failed to save sort order: %w", err)
	}
	return nil
}
