// Package board owns the task lists shown on the board. It loads them
// from the task API and hands them to one tasklist.View per category on
// every render.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/s1natex/taskboard/internal/tasklist"
	"github.com/s1natex/taskboard/internal/tasks"
)

// Lister loads the tasks of one category.
type Lister interface {
	ListTasks(ctx context.Context, category tasks.Category) ([]tasks.Task, error)
}

// API is the full task API surface the board and its views need.
type API interface {
	Lister
	tasklist.Client
}

type Board struct {
	api    API
	logger *slog.Logger

	// started numbers refreshes in the order they begin. applied is the
	// number of the snapshot currently held; older snapshots are dropped.
	started atomic.Uint64

	mu      sync.RWMutex
	lists   map[tasks.Category][]tasks.Task
	loaded  bool
	applied uint64

	views map[tasks.Category]*tasklist.View
}

func New(api API, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Board{
		api:    api,
		logger: logger,
		lists:  make(map[tasks.Category][]tasks.Task, len(tasks.Categories)),
		views:  make(map[tasks.Category]*tasklist.View, len(tasks.Categories)),
	}
	for _, c := range tasks.Categories {
		b.views[c] = tasklist.New(c, api, b.Refresh, logger)
	}
	return b
}

// Refresh reloads every category. Lists are swapped in together only when
// all loads succeed, and only if no refresh that began later has already
// been applied.
func (b *Board) Refresh(ctx context.Context) error {
	gen := b.started.Add(1)
	next := make(map[tasks.Category][]tasks.Task, len(tasks.Categories))
	for _, c := range tasks.Categories {
		list, err := b.api.ListTasks(ctx, c)
		if err != nil {
			return fmt.Errorf("refresh board: %w", err)
		}
		next[c] = list
	}

	b.mu.Lock()
	if gen < b.applied {
		b.mu.Unlock()
		b.logger.Debug("board_refresh_stale", slog.Uint64("generation", gen))
		return nil
	}
	b.lists = next
	b.loaded = true
	b.applied = gen
	b.mu.Unlock()

	b.logger.Debug("board_refreshed",
		slog.Int("completed", len(next[tasks.CategoryCompleted])),
		slog.Int("bad", len(next[tasks.CategoryBad])),
	)
	return nil
}

// Loaded reports whether at least one refresh has succeeded.
func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// View returns the view for c, or nil for an unknown category.
func (b *Board) View(c tasks.Category) *tasklist.View {
	return b.views[c]
}

// Tasks returns a copy of the current list for c.
func (b *Board) Tasks(c tasks.Category) []tasks.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]tasks.Task(nil), b.lists[c]...)
}

// Models renders every view against the current lists, in display order.
func (b *Board) Models() []tasklist.Model {
	out := make([]tasklist.Model, 0, len(tasks.Categories))
	for _, c := range tasks.Categories {
		out = append(out, b.views[c].Model(b.Tasks(c)))
	}
	return out
}
