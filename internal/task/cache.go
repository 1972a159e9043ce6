package task

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	priority    TEXT NOT NULL,
	tags        TEXT NOT NULL DEFAULT '[]',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL,
	due_date    DATETIME
);
`

// Cache is the local SQLite copy of the task collection. Sync writes it,
// offline reads come from it.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the cache database at path and ensures the
// schema exists. The caller is responsible for calling Close.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open task cache %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create task cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database connection.
func (c *Cache) Close() error { return c.db.Close() }

// Upsert inserts or replaces the given tasks by id.
func (c *Cache) Upsert(tasks ...Task) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache write: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tasks {
		if err := upsertOne(tx, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceAll replaces the entire cache contents with tasks in one
// transaction, so readers never observe a half-synced collection.
func (c *Cache) ReplaceAll(tasks []Task) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tasks"); err != nil {
		return fmt.Errorf("failed to clear task cache: %w", err)
	}
	for _, t := range tasks {
		if err := upsertOne(tx, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertOne(tx *sql.Tx, t Task) error {
	tags, _ := json.Marshal(t.Tags)
	_, err := tx.Exec(`
		INSERT INTO tasks (id, title, description, status, priority, tags, created_at, updated_at, due_date)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, description=excluded.description,
			status=excluded.status, priority=excluded.priority, tags=excluded.tags,
			created_at=excluded.created_at, updated_at=excluded.updated_at, due_date=excluded.due_date`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
		string(tags), t.CreatedAt.UTC(), t.UpdatedAt.UTC(), nullTime(t.DueDate),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert task %s: %w", t.ID, err)
	}
	return nil
}

// List returns every cached task, oldest created first.
func (c *Cache) List() ([]Task, error) {
	rows, err := c.db.Query(`SELECT * FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Get retrieves one cached task by id.
func (c *Cache) Get(id string) (Task, error) {
	row := c.db.QueryRow(`SELECT * FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

// Count returns the number of cached tasks.
func (c *Cache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached tasks: %w", err)
	}
	return n, nil
}

// Clear removes every cached task.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM tasks"); err != nil {
		return fmt.Errorf("failed to clear task cache: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var t Task
	var status, priority, tagsJSON string
	var dueDate sql.NullTime

	err := s.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &tagsJSON,
		&t.CreatedAt, &t.UpdatedAt, &dueDate,
	)
	if err != nil {
		return Task{}, err
	}

	t.Status = Status(status)
	t.Priority = Priority(priority)
	_ = json.Unmarshal([]byte(tagsJSON), &t.Tags)
	if dueDate.Valid {
		due := dueDate.Time
		t.DueDate = &due
	}
	return t, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
