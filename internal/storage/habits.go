package storage

import (
	"encoding/json"
	"fmt"

	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/pkg/habit"
)

// HabitsKey holds the whole serialized habit collection.
const HabitsKey = "habitflow_habits"

// Habits persists the habit collection as one JSON blob.
type Habits struct {
	kv KV
}

func NewHabits(kv KV) *Habits {
	return &Habits{kv: kv}
}

// Load returns the stored collection. A missing, unreadable or corrupt
// blob yields an empty collection.
func (h *Habits) Load() []habit.Habit {
	data, found, err := h.kv.Get(HabitsKey)
	if err != nil {
		logger.Warn("Failed to read stored habits, starting empty", "key", HabitsKey, "error", err)
		return []habit.Habit{}
	}
	if !found {
		logger.Debug("No stored habits found", "key", HabitsKey)
		return []habit.Habit{}
	}

	var out []habit.Habit
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Warn("Stored habits are corrupt, starting empty", "key", HabitsKey, "error", err)
		return []habit.Habit{}
	}
	out = sanitize(out)
	logger.Debug("Loaded habits", "count", len(out))
	return out
}

// sanitize drops habits with a repeated id and log entries with a bad or
// repeated date, keeping the first of each.
func sanitize(in []habit.Habit) []habit.Habit {
	out := make([]habit.Habit, 0, len(in))
	ids := make(map[string]struct{}, len(in))
	for _, h := range in {
		if _, dup := ids[h.ID]; dup {
			logger.Warn("Dropping stored habit with duplicate id", "id", h.ID, "name", h.Name)
			continue
		}
		ids[h.ID] = struct{}{}

		if !habit.ValidReminderTime(h.ReminderTime) {
			logger.Warn("Stored habit has an invalid reminder time", "id", h.ID, "reminder_time", h.ReminderTime)
		}

		logs := make([]habit.HabitLog, 0, len(h.Logs))
		dates := make(map[string]struct{}, len(h.Logs))
		for _, l := range h.Logs {
			if !habit.ValidDate(l.Date) {
				logger.Warn("Dropping stored log with invalid date", "id", h.ID, "date", l.Date)
				continue
			}
			if _, dup := dates[l.Date]; dup {
				logger.Warn("Dropping stored log with duplicate date", "id", h.ID, "date", l.Date)
				continue
			}
			dates[l.Date] = struct{}{}
			logs = append(logs, l)
		}
		h.Logs = logs
		out = append(out, h)
	}
	return out
}

// Save overwrites the stored collection with habits.
func (h *Habits) Save(habits []habit.Habit) error {
	if habits == nil {
		habits = []habit.Habit{}
	}
	data, err := json.Marshal(habits)
	if err != nil {
		return fmt.Errorf("encode habits: %w", err)
	}
	if err := h.kv.Put(HabitsKey, data); err != nil {
		return fmt.Errorf("write habits: %w", err)
	}
	return nil
}
