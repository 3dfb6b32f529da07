// Package nudge delivers habit reminders to the user.
package nudge

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/pkg/habit"
)

const Title = "Habit Reminder!"

type Reminder struct {
	HabitID   string
	HabitName string
	Title     string
	Body      string
	At        time.Time
}

func NewReminder(h habit.Habit, at time.Time) Reminder {
	return Reminder{
		HabitID:   h.ID,
		HabitName: h.Name,
		Title:     Title,
		Body:      fmt.Sprintf("Time to work on your habit: %s", h.Name),
		At:        at,
	}
}

type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to the log. Used when no other channel is
// configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, r Reminder) error {
	logger.InfoContext(ctx, r.Title, "body", r.Body, "habit_id", r.HabitID)
	return nil
}
