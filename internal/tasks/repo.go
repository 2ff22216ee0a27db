package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrNameRequired  = errors.New("task_name required")
	ErrNegativeHours = errors.New("time_to_complete must not be negative")
	ErrInvalidType   = errors.New("type must be one of: bad, completed")
	ErrEmptyPatch    = errors.New("no fields to update")
)

const maxNameLen = 200

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in one input. It
// unwraps to the sentinel of its first problem.
type ValidationError struct {
	Fields []FieldError
	first  error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return e.first }

func (e *ValidationError) add(field string, err error) {
	if e.first == nil {
		e.first = err
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Message: err.Error()})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func validateTask(t Task) error {
	verr := &ValidationError{}
	if strings.TrimSpace(t.Name) == "" {
		verr.add("task_name", ErrNameRequired)
	}
	if l := len(t.Name); l > maxNameLen {
		verr.add("task_name", fmt.Errorf("task_name must be at most %d characters", maxNameLen))
	}
	if t.Hours < 0 {
		verr.add("time_to_complete", ErrNegativeHours)
	}
	if !t.Type.Valid() {
		verr.add("type", ErrInvalidType)
	}
	return verr.orNil()
}

func (n NewTask) task(now time.Time) Task {
	return Task{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(n.Name),
		Hours:      n.Hours,
		Priority:   n.Priority,
		Difficulty: n.Difficulty,
		Type:       n.Type,
		CreatedAt:  now.UTC(),
	}
}

type Repository interface {
	Create(ctx context.Context, in NewTask) (Task, error)
	List(ctx context.Context, f Filter) ([]Task, error)
	Update(ctx context.Context, id string, p Patch) (Task, error)
	Delete(ctx context.Context, id string) error
}

type InMemoryRepo struct {
	mu    sync.Mutex
	order []string
	store map[string]Task
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		store: make(map[string]Task),
	}
}

func (r *InMemoryRepo) Create(_ context.Context, in NewTask) (Task, error) {
	t := in.task(time.Now())
	if err := validateTask(t); err != nil {
		return Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[t.ID] = t
	r.order = append(r.order, t.ID)
	return t, nil
}

func (r *InMemoryRepo) List(_ context.Context, f Filter) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, 0, len(r.order))
	for _, id := range r.order {
		if t := r.store[id]; f.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *InMemoryRepo) Update(_ context.Context, id string, p Patch) (Task, error) {
	if p.Empty() {
		return Task{}, ErrEmptyPatch
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.store[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	t = p.Apply(t)
	if err := validateTask(t); err != nil {
		return Task{}, err
	}
	r.store[id] = t
	return t, nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return ErrNotFound
	}
	delete(r.store, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
