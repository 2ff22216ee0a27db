package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTempDB(t *testing.T) *SQLiteRepo {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	dsn, err := SQLiteFileDSN(dbPath)
	if err != nil {
		t.Fatalf("dsn error: %v", err)
	}
	repo, err := NewSQLiteRepo(dsn)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
		_ = os.RemoveAll(dir)
	})
	if err := repo.ApplyMigrations(context.Background()); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return repo
}

// repoContract runs the same behaviour checks against every Repository.
func repoContract(t *testing.T, repo Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, NewTask{Type: CategoryBad})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	a := seed(t, repo, "first", 1, CategoryBad)
	b := seed(t, repo, "second", 2.5, CategoryCompleted)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids: a=%q b=%q", a.ID, b.ID)
	}

	list, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "first" || list[1].Name != "second" {
		t.Fatalf("unexpected order: %+v", list)
	}

	moved, err := repo.Update(ctx, a.ID, MoveTo(CategoryCompleted))
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if moved.Type != CategoryCompleted || moved.Name != "first" || moved.Hours != 1 {
		t.Fatalf("bad moved task: %+v", moved)
	}

	neg := -3.0
	if _, err := repo.Update(ctx, a.ID, Patch{Hours: &neg}); !errors.Is(err, ErrNegativeHours) {
		t.Fatalf("expected ErrNegativeHours, got %v", err)
	}
	if _, err := repo.Update(ctx, a.ID, Patch{}); !errors.Is(err, ErrEmptyPatch) {
		t.Fatalf("expected ErrEmptyPatch, got %v", err)
	}
	if _, err := repo.Update(ctx, "missing", MoveTo(CategoryBad)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	completed, err := repo.List(ctx, Filter{Type: CategoryCompleted})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed tasks, got %d", len(completed))
	}

	if err := repo.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if err := repo.Delete(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	list, err = repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(list) != 1 || list[0].ID != a.ID {
		t.Fatalf("unexpected list after delete: %+v", list)
	}
}

func TestSQLiteRepo_Contract(t *testing.T) {
	repoContract(t, newTempDB(t))
}

func TestInMemoryRepo_Contract(t *testing.T) {
	repoContract(t, NewInMemoryRepo())
}

func TestSQLiteRepo_EmptyListIsNotNil(t *testing.T) {
	repo := newTempDB(t)

	list, err := repo.List(context.Background(), Filter{Type: CategoryBad})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if list == nil {
		t.Fatalf("expected empty, non-nil slice")
	}
}
