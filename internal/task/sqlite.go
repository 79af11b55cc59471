package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	due_date       TEXT,
	due_time       TEXT,
	completed      INTEGER NOT NULL DEFAULT 0,
	notify_enabled INTEGER NOT NULL DEFAULT 1
)`

// SQLiteSource reads task snapshots from a local SQLite database.
// It satisfies the read-only collaborator contract: Snapshot is the only
// query the engine runs, and nothing here writes task state.
type SQLiteSource struct {
	db *sql.DB
}

func NewSQLiteSource(db *sql.DB) (*SQLiteSource, error) {
	if db == nil {
		return nil, errors.New("task: nil db")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensure tasks table: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	src, err := NewSQLiteSource(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return src, nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Snapshot returns the current task list. Rows with malformed date or time
// fields are skipped rather than failing the whole snapshot; a bad row must
// not silence notifications for every other task.
func (s *SQLiteSource) Snapshot(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, due_date, due_time, completed, notify_enabled
		FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		var (
			t       Task
			dueDate sql.NullString
			dueTime sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Title, &dueDate, &dueTime, &t.Completed, &t.NotifyEnabled); err != nil {
			return nil, err
		}
		if dueDate.Valid && dueDate.String != "" {
			d, err := ParseDate(dueDate.String)
			if err != nil {
				continue
			}
			t.DueDate = d
		}
		if dueTime.Valid && dueTime.String != "" {
			tod, err := ParseTimeOfDay(dueTime.String)
			if err != nil {
				continue
			}
			t.DueTime = tod
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
