// Package tasklist implements the task list view: one list of tasks of a
// single category, with per-row delete and move actions, a dismissible
// "deleted" banner, and a total-hours footer.
//
// A View owns only its banner state. The tasks to show are handed in on
// every render by the owner, and the owner's Refresher is the only way the
// list changes after a mutation.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/s1natex/taskboard/internal/tasks"
)

const (
	AlertText      = "Task Deleted Successfully!!"
	deleteFailText = "Could not delete task"
	moveFailText   = "Could not move task"
)

// ErrInFlight is returned when an action is requested for a task that
// already has an action pending in the same view.
var ErrInFlight = errors.New("an action for this task is already in progress")

// Client is the slice of the task API a view mutates through.
type Client interface {
	DeleteTask(ctx context.Context, id string) (tasks.Result, error)
	UpdateTask(ctx context.Context, id string, p tasks.Patch) (tasks.Result, error)
}

// Refresher asks the owner to reload the lists it passes to views.
type Refresher func(ctx context.Context) error

// ActionError describes a mutation that did not succeed.
type ActionError struct {
	Action string
	TaskID string
	Result tasks.Result
	Err    error
}

func (e *ActionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s task %s: %v", e.Action, e.TaskID, e.Err)
	}
	msg := e.Result.Message
	if msg == "" {
		msg = "status " + e.Result.Status
	}
	return fmt.Sprintf("%s task %s: %s", e.Action, e.TaskID, msg)
}

func (e *ActionError) Unwrap() error { return e.Err }

type View struct {
	category tasks.Category
	client   Client
	refresh  Refresher
	logger   *slog.Logger

	mu        sync.Mutex
	showAlert bool
	errText   string
	inflight  map[string]struct{}
}

func New(category tasks.Category, client Client, refresh Refresher, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		category: category,
		client:   client,
		refresh:  refresh,
		logger:   logger.With(slog.String("list", string(category))),
		inflight: make(map[string]struct{}),
	}
}

func (v *View) Category() tasks.Category { return v.category }

// BadList reports whether the view shows bad tasks, whose move action
// promotes them to completed.
func (v *View) BadList() bool { return v.category == tasks.CategoryBad }

// Delete removes the task. On success the banner is shown and the owner
// refreshes once. On any failure neither happens and the error banner is
// set instead.
func (v *View) Delete(ctx context.Context, id string) error {
	if err := v.begin(id); err != nil {
		return err
	}
	defer v.end(id)

	res, err := v.client.DeleteTask(ctx, id)
	if err != nil || !res.OK() {
		return v.fail("delete", id, res, err, deleteFailText)
	}

	v.mu.Lock()
	v.showAlert = true
	v.mu.Unlock()

	return v.reload(ctx)
}

// Move sends the task to the other category. Success refreshes the owner
// once and shows no banner.
func (v *View) Move(ctx context.Context, id string) error {
	if err := v.begin(id); err != nil {
		return err
	}
	defer v.end(id)

	res, err := v.client.UpdateTask(ctx, id, tasks.MoveTo(v.category.Target()))
	if err != nil || !res.OK() {
		return v.fail("move", id, res, err, moveFailText)
	}
	return v.reload(ctx)
}

func (v *View) DismissAlert() {
	v.mu.Lock()
	v.showAlert = false
	v.mu.Unlock()
}

func (v *View) DismissError() {
	v.mu.Lock()
	v.errText = ""
	v.mu.Unlock()
}

func (v *View) AlertShown() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.showAlert
}

func (v *View) begin(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, busy := v.inflight[id]; busy {
		return ErrInFlight
	}
	v.inflight[id] = struct{}{}
	return nil
}

func (v *View) end(id string) {
	v.mu.Lock()
	delete(v.inflight, id)
	v.mu.Unlock()
}

func (v *View) fail(action, id string, res tasks.Result, err error, text string) error {
	aerr := &ActionError{Action: action, TaskID: id, Result: res, Err: err}
	v.logger.Warn("task_"+action+"_failed",
		slog.String("task_id", id),
		slog.String("error", aerr.Error()),
	)

	v.mu.Lock()
	v.errText = text
	if res.Message != "" {
		v.errText += ": " + res.Message
	}
	v.mu.Unlock()
	return aerr
}

func (v *View) reload(ctx context.Context) error {
	if v.refresh == nil {
		return nil
	}
	if err := v.refresh(ctx); err != nil {
		v.logger.Warn("task_list_refresh_failed", slog.String("error", err.Error()))
		v.mu.Lock()
		v.errText = "Could not reload tasks"
		v.mu.Unlock()
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}
