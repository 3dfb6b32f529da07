package habit

import (
	"testing"
	"time"
)

func TestValidReminderTime(t *testing.T) {
	cases := map[string]bool{
		"09:00": true,
		"23:59": true,
		"00:00": true,
		"9:00":  false,
		"24:00": false,
		"12:60": false,
		"12:5":  false,
		"":      false,
		"noon":  false,
	}
	for in, want := range cases {
		if got := ValidReminderTime(in); got != want {
			t.Errorf("ValidReminderTime(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("2024-01-01") {
		t.Fatal("expected 2024-01-01 to be valid")
	}
	for _, in := range []string{"2024-1-1", "2024-02-30", "01/01/2024", ""} {
		if ValidDate(in) {
			t.Errorf("expected %q to be invalid", in)
		}
	}
}

func TestClockKey_TruncatesToMinute(t *testing.T) {
	ts := time.Date(2024, 3, 5, 7, 4, 59, 999, time.UTC)
	if got := ClockKey(ts); got != "07:04" {
		t.Fatalf("got %q want 07:04", got)
	}
	if got := DateKey(ts); got != "2024-03-05" {
		t.Fatalf("got %q want 2024-03-05", got)
	}
}

func TestClone_IsDeep(t *testing.T) {
	h := Habit{
		ID:           "a",
		Logs:         []HabitLog{{Date: "2024-01-01", Completed: true}},
		AISuggestion: &AISuggestion{Tips: []string{"one"}},
	}
	c := h.Clone()
	c.Logs[0].Completed = false
	c.AISuggestion.Tips[0] = "changed"

	if !h.Logs[0].Completed {
		t.Error("clone shares log storage with original")
	}
	if h.AISuggestion.Tips[0] != "one" {
		t.Error("clone shares tips with original")
	}
}

func TestCompletedOn(t *testing.T) {
	h := Habit{Logs: []HabitLog{
		{Date: "2024-01-01", Completed: true},
		{Date: "2024-01-02", Completed: false},
	}}
	if !h.CompletedOn("2024-01-01") {
		t.Error("expected completed on 2024-01-01")
	}
	if h.CompletedOn("2024-01-02") || h.CompletedOn("2024-01-03") {
		t.Error("unexpected completion")
	}
}
