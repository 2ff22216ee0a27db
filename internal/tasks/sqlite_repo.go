package tasks

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(dsn string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Close() error { return r.db.Close() }

// ApplyMigrations ensures schema exists. seq keeps creation order stable
// since ids are random.
func (r *SQLiteRepo) ApplyMigrations(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS tasks (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	task_name TEXT NOT NULL,
	time_to_complete REAL NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_type_idx ON tasks (type);
	`)
	return err
}

func (r *SQLiteRepo) Create(ctx context.Context, in NewTask) (Task, error) {
	t := in.task(time.Now())
	if err := validateTask(t); err != nil {
		return Task{}, err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, task_name, time_to_complete, priority, difficulty, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Hours, t.Priority, t.Difficulty, string(t.Type), t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

func (r *SQLiteRepo) List(ctx context.Context, f Filter) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_name, time_to_complete, priority, difficulty, type, created_at
		FROM tasks
		WHERE (? = '' OR type = ?)
		ORDER BY seq ASC
	`, string(f.Type), string(f.Type))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update reads, merges and writes inside one transaction so concurrent
// patches of different fields do not lose each other.
func (r *SQLiteRepo) Update(ctx context.Context, id string, p Patch) (Task, error) {
	if p.Empty() {
		return Task{}, ErrEmptyPatch
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Task{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT id, task_name, time_to_complete, priority, difficulty, type, created_at
		FROM tasks WHERE id = ?
	`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, err
	}

	t = p.Apply(t)
	if err := validateTask(t); err != nil {
		return Task{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET task_name = ?, time_to_complete = ?, priority = ?, difficulty = ?, type = ?
		WHERE id = ?
	`, t.Name, t.Hours, t.Priority, t.Difficulty, string(t.Type), id); err != nil {
		return Task{}, err
	}
	return t, tx.Commit()
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var t Task
	var typ, created string
	if err := s.Scan(&t.ID, &t.Name, &t.Hours, &t.Priority, &t.Difficulty, &typ, &created); err != nil {
		return Task{}, err
	}
	t.Type = Category(typ)
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		t.CreatedAt = ts
	}
	return t, nil
}

// Helper to build DSN like: file:/absolute/path?_pragma=busy_timeout(5000)
func SQLiteFileDSN(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file:" + filepath.ToSlash(abs) + "?_pragma=busy_timeout(5000)", nil
}
