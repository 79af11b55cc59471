package task

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-14")
	if err != nil {
		t.Fatal(err)
	}
	if d.Year != 2026 || d.Month != time.March || d.Day != 14 {
		t.Errorf("got %+v", d)
	}

	for _, bad := range []string{"", "2026-03", "03/14/2026", "2026-13-01", "2026-01-32", "abcd-ef-gh"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:05")
	if err != nil {
		t.Fatal(err)
	}
	if tod.Hour != 9 || tod.Minute != 5 {
		t.Errorf("got %+v", tod)
	}

	for _, bad := range []string{"", "9", "24:00", "12:60", "aa:bb"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("ParseTimeOfDay(%q) should fail", bad)
		}
	}
}

func TestDueInstant(t *testing.T) {
	tk := Task{
		ID:      "a",
		DueDate: &Date{Year: 2026, Month: time.March, Day: 14},
		DueTime: &TimeOfDay{Hour: 16, Minute: 30},
	}
	at, ok := tk.DueInstant()
	if !ok {
		t.Fatal("expected an instant")
	}
	want := time.Date(2026, 3, 14, 16, 30, 0, 0, time.Local)
	if !at.Equal(want) {
		t.Errorf("got %s, want %s", at, want)
	}
}

func TestDueInstant_MidnightDefault(t *testing.T) {
	tk := Task{ID: "a", DueDate: &Date{Year: 2026, Month: time.March, Day: 14}}
	at, ok := tk.DueInstant()
	if !ok {
		t.Fatal("expected an instant")
	}
	if at.Hour() != 0 || at.Minute() != 0 {
		t.Errorf("want midnight, got %s", at)
	}
}

func TestDueInstant_NoDate(t *testing.T) {
	tk := Task{ID: "a", DueTime: &TimeOfDay{Hour: 10}}
	if _, ok := tk.DueInstant(); ok {
		t.Error("a task without a due date has no due instant")
	}
}
