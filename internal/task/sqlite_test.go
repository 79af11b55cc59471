package task

import (
	"context"
	"testing"
	"time"
)

func seed(t *testing.T, src *SQLiteSource, rows [][]any) {
	t.Helper()
	for _, r := range rows {
		_, err := src.db.Exec(`
			INSERT INTO tasks (id, title, due_date, due_time, completed, notify_enabled)
			VALUES (?, ?, ?, ?, ?, ?)`, r...)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestSQLiteSource_Snapshot(t *testing.T) {
	src, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	seed(t, src, [][]any{
		{"a", "water plants", "2026-03-14", "16:30", 0, 1},
		{"b", "no time", "2026-03-15", nil, 0, 1},
		{"c", "no date", nil, nil, 0, 1},
		{"d", "done", "2026-03-14", "09:00", 1, 0},
	})

	tasks, err := src.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(tasks))
	}

	a := tasks[0]
	if a.DueDate == nil || a.DueDate.Day != 14 || a.DueDate.Month != time.March {
		t.Errorf("bad due date: %+v", a.DueDate)
	}
	if a.DueTime == nil || a.DueTime.Hour != 16 || a.DueTime.Minute != 30 {
		t.Errorf("bad due time: %+v", a.DueTime)
	}

	if tasks[1].DueTime != nil {
		t.Error("task b has no due time")
	}
	if tasks[2].DueDate != nil {
		t.Error("task c has no due date")
	}
	if !tasks[3].Completed || tasks[3].NotifyEnabled {
		t.Error("task d flags lost in scan")
	}
}

func TestSQLiteSource_SkipsMalformedRows(t *testing.T) {
	src, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	seed(t, src, [][]any{
		{"good", "ok", "2026-03-14", "10:00", 0, 1},
		{"bad", "broken date", "not-a-date", nil, 0, 1},
	})

	tasks, err := src.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].ID != "good" {
		t.Fatalf("malformed rows must be skipped, got %+v", tasks)
	}
}
