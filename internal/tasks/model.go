package tasks

import (
	"strings"
	"time"
)

// Category is the list a task belongs to. The board shows one list per
// category.
type Category string

const (
	CategoryBad       Category = "bad"
	CategoryCompleted Category = "completed"
)

// Categories in board display order.
var Categories = []Category{CategoryCompleted, CategoryBad}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

func (c Category) Valid() bool {
	return c == CategoryBad || c == CategoryCompleted
}

// Target is the category a task moves to when swiped out of c.
func (c Category) Target() Category {
	if c == CategoryBad {
		return CategoryCompleted
	}
	return CategoryBad
}

// Title is the heading shown above the list for c.
func (c Category) Title() string {
	if c == CategoryBad {
		return "BAD TASK"
	}
	return "TASK LIST"
}

type Task struct {
	ID         string    `json:"_id"`
	Name       string    `json:"task_name"`
	Hours      float64   `json:"time_to_complete"`
	Priority   string    `json:"priority"`
	Difficulty string    `json:"difficulty"`
	Type       Category  `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
}

type NewTask struct {
	Name       string   `json:"task_name"`
	Hours      float64  `json:"time_to_complete"`
	Priority   string   `json:"priority"`
	Difficulty string   `json:"difficulty"`
	Type       Category `json:"type"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name       *string   `json:"task_name,omitempty"`
	Hours      *float64  `json:"time_to_complete,omitempty"`
	Priority   *string   `json:"priority,omitempty"`
	Difficulty *string   `json:"difficulty,omitempty"`
	Type       *Category `json:"type,omitempty"`
}

// MoveTo builds the patch that recategorizes a task.
func MoveTo(c Category) Patch {
	return Patch{Type: &c}
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Hours == nil && p.Priority == nil && p.Difficulty == nil && p.Type == nil
}

// Apply returns t with the non-nil fields of p merged in.
func (p Patch) Apply(t Task) Task {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Hours != nil {
		t.Hours = *p.Hours
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	return t
}

type Filter struct {
	Type Category
}

func (f Filter) Match(t Task) bool {
	return f.Type == "" || t.Type == f.Type
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of a mutation as reported by the task API.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (r Result) OK() bool { return r.Status == StatusSuccess }
