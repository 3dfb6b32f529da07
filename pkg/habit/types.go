package habit

import (
	"time"
)

type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

const (
	DefaultName         = "Untitled"
	DefaultReminderTime = "09:00"
	DefaultColor        = "#4f46e5"

	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Palette is the set of display colours offered when creating a habit.
var Palette = []string{
	"#4f46e5", // indigo
	"#0ea5e9", // sky
	"#10b981", // emerald
	"#f59e0b", // amber
	"#ef4444", // red
	"#8b5cf6", // violet
	"#ec4899", // pink
}

type HabitLog struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type AISuggestion struct {
	IdentityStatement string   `json:"identityStatement" validate:"required"`
	Motivation        string   `json:"motivation" validate:"required"`
	Tips              []string `json:"tips" validate:"min=1,dive,required"`
}

type Habit struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Frequency    Frequency     `json:"frequency"`
	ReminderTime string        `json:"reminderTime"`
	Color        string        `json:"color"`
	CreatedAt    time.Time     `json:"createdAt"`
	Logs         []HabitLog    `json:"logs"`
	AISuggestion *AISuggestion `json:"aiSuggestion,omitempty"`
}

// Draft is the partial habit accepted on creation. Zero values are
// replaced with defaults.
type Draft struct {
	Name         string    `json:"name" validate:"required,max=80"`
	Description  string    `json:"description" validate:"max=1024"`
	Frequency    Frequency `json:"frequency" validate:"omitempty,oneof=daily weekly"`
	ReminderTime string    `json:"reminderTime" validate:"omitempty,clock"`
	Color        string    `json:"color" validate:"omitempty,hexcolor"`
}

// Clone returns a deep copy of h.
func (h Habit) Clone() Habit {
	out := h
	out.Logs = make([]HabitLog, len(h.Logs))
	copy(out.Logs, h.Logs)
	if h.AISuggestion != nil {
		s := *h.AISuggestion
		s.Tips = append([]string(nil), h.AISuggestion.Tips...)
		out.AISuggestion = &s
	}
	return out
}

// LogFor returns the index of the log entry for date, or -1.
func (h Habit) LogFor(date string) int {
	for i := range h.Logs {
		if h.Logs[i].Date == date {
			return i
		}
	}
	return -1
}

func (h Habit) CompletedOn(date string) bool {
	i := h.LogFor(date)
	return i >= 0 && h.Logs[i].Completed
}

// ValidReminderTime reports whether s is a zero-padded 24-hour HH:mm time.
func ValidReminderTime(s string) bool {
	if len(s) != 5 {
		return false
	}
	t, err := time.Parse(ClockLayout, s)
	return err == nil && t.Format(ClockLayout) == s
}

// ValidDate reports whether s is a YYYY-MM-DD calendar day.
func ValidDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

// DateKey formats t as a calendar day in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ClockKey formats t as HH:mm, truncated to the minute.
func ClockKey(t time.Time) string {
	return t.Format(ClockLayout)
}
