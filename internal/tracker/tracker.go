// Package tracker holds the live habit collection. Every mutation
// replaces the collection, persists it whole and notifies subscribers.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brk3/habitflow/internal/insight"
	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/pkg/habit"
)

var (
	ErrInvalidReminderTime = errors.New("reminder time must be a 24-hour HH:mm time")
	ErrInvalidFrequency    = errors.New("frequency must be daily or weekly")
	ErrInvalidDate         = errors.New("date must be YYYY-MM-DD")
)

// Repository loads and saves the whole collection.
type Repository interface {
	Load() []habit.Habit
	Save(habits []habit.Habit) error
}

// Confirmer approves a destructive action on h.
type Confirmer interface {
	Confirm(h habit.Habit) bool
}

type ConfirmFunc func(h habit.Habit) bool

func (f ConfirmFunc) Confirm(h habit.Habit) bool { return f(h) }

// Observer receives a private copy of the collection after each change.
// Observers are called one at a time and must not modify the tracker.
type Observer func(habits []habit.Habit)

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

type Tracker struct {
	repo    Repository
	gateway insight.Gateway
	now     func() time.Time
	newID   func() string

	mu        sync.Mutex
	habits    []habit.Habit
	version   uint64
	observers map[int]Observer
	nextObs   int

	// notifyMu serialises observer delivery. delivered is the version last
	// handed to observers.
	notifyMu  sync.Mutex
	delivered uint64

	tasks sync.WaitGroup
}

// New loads the collection from repo. gateway may be nil, in which case
// habits are never enriched.
func New(repo Repository, gateway insight.Gateway, opts ...Option) *Tracker {
	t := &Tracker{
		repo:      repo,
		gateway:   gateway,
		now:       time.Now,
		newID:     uuid.NewString,
		observers: map[int]Observer{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.habits = repo.Load()
	logger.Debug("Tracker initialised", "habits", len(t.habits))
	return t
}

// Now returns the tracker's clock reading.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Today is the current calendar day in local time.
func (t *Tracker) Today() string {
	return habit.DateKey(t.now())
}

// Snapshot returns a deep copy of the current collection.
func (t *Tracker) Snapshot() []habit.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneAll(t.habits)
}

func (t *Tracker) Get(id string) (habit.Habit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := indexOf(t.habits, id); i >= 0 {
		return t.habits[i].Clone(), true
	}
	return habit.Habit{}, false
}

func (t *Tracker) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, len(t.habits))
	for i := range t.habits {
		names[i] = t.habits[i].Name
	}
	return names
}

// Subscribe registers o and returns a function that removes it.
func (t *Tracker) Subscribe(o Observer) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = o
	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// Create adds a habit built from d and starts fetching its AI insight in
// the background. It returns without waiting for the insight.
func (t *Tracker) Create(d habit.Draft) (habit.Habit, error) {
	h, err := t.build(d)
	if err != nil {
		return habit.Habit{}, err
	}

	_, err = t.mutate(func(cur []habit.Habit) ([]habit.Habit, bool) {
		for indexOf(cur, h.ID) >= 0 {
			h.ID = t.newID()
		}
		next := make([]habit.Habit, len(cur), len(cur)+1)
		copy(next, cur)
		return append(next, h), true
	})
	logger.Info("Habit created", "habit_id", h.ID, "habit_name", h.Name)

	t.enrich(h)
	return h.Clone(), err
}

// Delete removes the habit with id once c approves. A missing habit or a
// refusal is a no-op.
func (t *Tracker) Delete(id string, c Confirmer) (bool, error) {
	h, ok := t.Get(id)
	if !ok {
		logger.Debug("Delete of unknown habit ignored", "habit_id", id)
		return false, nil
	}
	if c == nil || !c.Confirm(h) {
		logger.Info("Habit deletion not confirmed", "habit_id", id)
		return false, nil
	}

	changed, err := t.mutate(func(cur []habit.Habit) ([]habit.Habit, bool) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, false
		}
		next := make([]habit.Habit, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		return append(next, cur[i+1:]...), true
	})
	if changed {
		logger.Info("Habit deleted", "habit_id", id, "habit_name", h.Name)
	}
	return changed, err
}

// ToggleCompletion flips the completion of habit id on date. A date
// without a log gets a new completed entry. A missing habit is a no-op.
func (t *Tracker) ToggleCompletion(id, date string) (habit.Habit, bool, error) {
	if !habit.ValidDate(date) {
		return habit.Habit{}, false, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	var updated habit.Habit
	changed, err := t.mutate(func(cur []habit.Habit) ([]habit.Habit, bool) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, false
		}
		h := cur[i].Clone()
		if j := h.LogFor(date); j >= 0 {
			h.Logs[j].Completed = !h.Logs[j].Completed
		} else {
			h.Logs = append(h.Logs, habit.HabitLog{Date: date, Completed: true})
		}
		updated = h

		next := make([]habit.Habit, len(cur))
		copy(next, cur)
		next[i] = h
		return next, true
	})
	if !changed {
		logger.Debug("Toggle of unknown habit ignored", "habit_id", id)
		return habit.Habit{}, false, err
	}
	logger.Debug("Completion toggled", "habit_id", id, "date", date, "completed", updated.CompletedOn(date))
	return updated.Clone(), true, err
}

// Wait blocks until every background insight request has finished.
func (t *Tracker) Wait() {
	t.tasks.Wait()
}

// Close waits for background work and drops all subscribers.
func (t *Tracker) Close() {
	t.Wait()
	t.mu.Lock()
	t.observers = map[int]Observer{}
	t.mu.Unlock()
}

func (t *Tracker) enrich(h habit.Habit) {
	if t.gateway == nil {
		return
	}
	t.tasks.Add(1)
	go func() {
		defer t.tasks.Done()
		s := t.gateway.HabitInsight(context.Background(), h.Name, h.Description)
		if s == nil {
			logger.Info("No AI insight available for habit", "habit_id", h.ID)
			return
		}
		if _, err := t.attachInsight(h.ID, s); err != nil {
			logger.Error("Failed to persist AI insight", "habit_id", h.ID, "error", err)
		}
	}()
}

// attachInsight sets the suggestion of habit id if it still exists and
// has none yet. A habit deleted in the meantime drops the result.
func (t *Tracker) attachInsight(id string, s *habit.AISuggestion) (bool, error) {
	changed, err := t.mutate(func(cur []habit.Habit) ([]habit.Habit, bool) {
		i := indexOf(cur, id)
		if i < 0 || cur[i].AISuggestion != nil {
			return nil, false
		}
		h := cur[i].Clone()
		cp := *s
		cp.Tips = append([]string(nil), s.Tips...)
		h.AISuggestion = &cp

		next := make([]habit.Habit, len(cur))
		copy(next, cur)
		next[i] = h
		return next, true
	})
	if !changed {
		logger.Debug("AI insight discarded, habit no longer exists", "habit_id", id)
		return false, err
	}
	logger.Info("AI insight attached", "habit_id", id)
	return true, err
}

func (t *Tracker) build(d habit.Draft) (habit.Habit, error) {
	h := habit.Habit{
		Name:         strings.TrimSpace(d.Name),
		Description:  d.Description,
		Frequency:    d.Frequency,
		ReminderTime: d.ReminderTime,
		Color:        d.Color,
		CreatedAt:    t.now().UTC().Truncate(time.Millisecond),
		Logs:         []habit.HabitLog{},
	}
	if h.Name == "" {
		h.Name = habit.DefaultName
	}
	switch h.Frequency {
	case "":
		h.Frequency = habit.Daily
	case habit.Daily, habit.Weekly:
	default:
		return habit.Habit{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, d.Frequency)
	}
	if h.ReminderTime == "" {
		h.ReminderTime = habit.DefaultReminderTime
	} else if !habit.ValidReminderTime(h.ReminderTime) {
		return habit.Habit{}, fmt.Errorf("%w: %q", ErrInvalidReminderTime, d.ReminderTime)
	}
	if h.Color == "" {
		h.Color = habit.DefaultColor
	}
	h.ID = t.newID()
	return h, nil
}

// mutate applies fn to the current collection under the lock. fn must
// not modify cur; it returns the replacement and whether anything
// changed. The new collection is persisted before the lock is released
// so saves land in mutation order.
func (t *Tracker) mutate(fn func(cur []habit.Habit) ([]habit.Habit, bool)) (bool, error) {
	t.mu.Lock()
	next, changed := fn(t.habits)
	if !changed {
		t.mu.Unlock()
		return false, nil
	}
	t.habits = next
	t.version++
	version := t.version
	saveErr := t.repo.Save(next)
	observers := make([]Observer, 0, len(t.observers))
	for _, o := range t.observers {
		observers = append(observers, o)
	}
	t.mu.Unlock()

	t.notify(version, next, observers)

	if saveErr != nil {
		logger.Error("Failed to persist habits", "count", len(next), "error", saveErr)
		return true, fmt.Errorf("persist habits: %w", saveErr)
	}
	return true, nil
}

func indexOf(habits []habit.Habit, id string) int {
	for i := range habits {
		if habits[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(habits []habit.Habit) []habit.Habit {
	out := make([]habit.Habit, len(habits))
	for i := range habits {
		out[i] = habits[i].Clone()
	}
	return out
}

// notify hands next to observers unless a newer collection has already
// been delivered, so the last delivery is always the latest collection.
func (t *Tracker) notify(version uint64, next []habit.Habit, observers []Observer) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	if version <= t.delivered {
		return
	}
	t.delivered = version
	for _, o := range observers {
		o(cloneAll(next))
	}
}
