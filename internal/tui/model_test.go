package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/s1natex/taskboard/internal/board"
	"github.com/s1natex/taskboard/internal/tasks"
)

type repoAPI struct {
	repo *tasks.InMemoryRepo
}

func (a repoAPI) ListTasks(ctx context.Context, c tasks.Category) ([]tasks.Task, error) {
	return a.repo.List(ctx, tasks.Filter{Type: c})
}

func (a repoAPI) DeleteTask(ctx context.Context, id string) (tasks.Result, error) {
	if err := a.repo.Delete(ctx, id); err != nil {
		return tasks.Result{Status: tasks.StatusError, Message: err.Error()}, nil
	}
	return tasks.Result{Status: tasks.StatusSuccess}, nil
}

func (a repoAPI) UpdateTask(ctx context.Context, id string, p tasks.Patch) (tasks.Result, error) {
	if _, err := a.repo.Update(ctx, id, p); err != nil {
		return tasks.Result{Status: tasks.StatusError, Message: err.Error()}, nil
	}
	return tasks.Result{Status: tasks.StatusSuccess}, nil
}

func newModel(t *testing.T) (Model, *tasks.InMemoryRepo) {
	t.Helper()
	repo := tasks.NewInMemoryRepo()
	for _, n := range []tasks.NewTask{
		{Name: "Gym", Hours: 1, Priority: "high", Difficulty: "hard", Type: tasks.CategoryCompleted},
		{Name: "Read", Hours: 0.5, Priority: "low", Difficulty: "easy", Type: tasks.CategoryCompleted},
		{Name: "Doomscroll", Hours: 2, Priority: "high", Difficulty: "easy", Type: tasks.CategoryBad},
	} {
		if _, err := repo.Create(context.Background(), n); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	b := board.New(repoAPI{repo: repo}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	model := New(b)
	model = step(t, model, model.Init())
	return model, repo
}

// step runs cmd synchronously and feeds its message back into the model.
func step(t *testing.T, model Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return model
	}
	updated, _ := model.Update(cmd())
	return updated.(Model)
}

func press(t *testing.T, model Model, r rune) Model {
	t.Helper()
	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return step(t, updated.(Model), cmd)
}

func TestView_RendersBothLists(t *testing.T) {
	model, _ := newModel(t)

	out := model.View()
	for _, want := range []string{"TASK LIST", "BAD TASK", "Gym (1 hours)", "Total time to complete: 1.5 hour", "Total time to complete: 2 hours", "←", "→"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected view to contain %q\n%s", want, out)
		}
	}
}

func TestDeleteKey_RemovesSelectedAndShowsBanner(t *testing.T) {
	model, repo := newModel(t)

	model = press(t, model, 'j')
	model = press(t, model, 'd')

	list, _ := repo.List(context.Background(), tasks.Filter{Type: tasks.CategoryCompleted})
	if len(list) != 1 || list[0].Name != "Gym" {
		t.Fatalf("expected Read deleted, got %+v", list)
	}
	if model.pending != 0 {
		t.Errorf("expected no pending actions, got %d", model.pending)
	}
	if model.cursor[0] != 0 {
		t.Errorf("cursor should clamp to remaining rows, got %d", model.cursor[0])
	}
	if !strings.Contains(model.View(), "Task Deleted Successfully!!") {
		t.Fatalf("expected success banner")
	}

	model = press(t, model, 'x')
	if strings.Contains(model.View(), "Task Deleted Successfully!!") {
		t.Fatalf("banner should be dismissed")
	}
}

func TestMoveKey_FromBadList(t *testing.T) {
	model, repo := newModel(t)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model = updated.(Model)
	if model.focused() != tasks.CategoryBad {
		t.Fatalf("tab should focus the bad list")
	}
	model = press(t, model, 'm')

	bad, _ := repo.List(context.Background(), tasks.Filter{Type: tasks.CategoryBad})
	if len(bad) != 0 {
		t.Fatalf("expected bad list empty after move, got %+v", bad)
	}
	if got := model.board.Tasks(tasks.CategoryCompleted); len(got) != 3 {
		t.Fatalf("expected board refreshed with 3 completed tasks, got %d", len(got))
	}
	if strings.Contains(model.View(), "Task Deleted Successfully!!") {
		t.Fatalf("move must not show the delete banner")
	}
}

func TestActionOnEmptyListIsNoop(t *testing.T) {
	model, repo := newModel(t)
	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model = updated.(Model)
	model = press(t, model, 'm')

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if cmd != nil {
		t.Fatalf("expected no command for empty list")
	}
	if updated.(Model).pending != 0 {
		t.Fatalf("expected nothing pending")
	}
	all, _ := repo.List(context.Background(), tasks.Filter{})
	if len(all) != 3 {
		t.Fatalf("nothing should be deleted, got %d tasks", len(all))
	}
}

func TestQuitKey(t *testing.T) {
	model, _ := newModel(t)
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestDismissKey_ClearsBothBannersKeepsRows(t *testing.T) {
	model, repo := newModel(t)

	model = press(t, model, 'd')
	list, _ := repo.List(context.Background(), tasks.Filter{Type: tasks.CategoryCompleted})
	if len(list) != 1 {
		t.Fatalf("expected one completed task left, got %+v", list)
	}
	// Removed behind the board's back, so the next delete fails.
	if err := repo.Delete(context.Background(), list[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	model = press(t, model, 'd')

	out := model.View()
	if !strings.Contains(out, "Task Deleted Successfully!!") || !strings.Contains(out, "Could not delete task") {
		t.Fatalf("expected both banners\n%s", out)
	}

	model = press(t, model, 'x')
	out = model.View()
	if strings.Contains(out, "Task Deleted Successfully!!") || strings.Contains(out, "Could not delete task") {
		t.Fatalf("dismiss should clear both banners\n%s", out)
	}
	if model.status != "" {
		t.Errorf("dismiss should clear the status line, got %q", model.status)
	}
	if !strings.Contains(out, "Read (0.5 hours)") {
		t.Fatalf("dismiss must keep the rows\n%s", out)
	}
}

func TestDismissKey_Esc(t *testing.T) {
	model, _ := newModel(t)
	model = press(t, model, 'd')

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Fatalf("dismiss should not issue a command")
	}
	if strings.Contains(updated.(Model).View(), "Task Deleted Successfully!!") {
		t.Fatalf("esc should dismiss the banner")
	}
}

func TestRefreshKey_ReloadsLists(t *testing.T) {
	model, repo := newModel(t)
	if _, err := repo.Create(context.Background(), tasks.NewTask{Name: "Nap", Hours: 3, Type: tasks.CategoryBad}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if strings.Contains(model.View(), "Nap (3 hours)") {
		t.Fatalf("new task should not show before refresh")
	}

	model = press(t, model, 'r')
	out := model.View()
	if !strings.Contains(out, "Nap (3 hours)") {
		t.Fatalf("expected refreshed task\n%s", out)
	}
	if !strings.Contains(out, "Total time to complete: 5 hours") {
		t.Fatalf("expected bad footer to include the new task\n%s", out)
	}
}
