// Package reminder fires a notification for every habit whose reminder
// time matches the current minute.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/internal/nudge"
	"github.com/brk3/habitflow/pkg/habit"
)

const DefaultInterval = time.Minute

type State string

const (
	Idle  State = "idle"
	Armed State = "armed"
)

// Source supplies the current habit collection. It is read on every tick.
type Source interface {
	Snapshot() []habit.Habit
}

// SourceFunc adapts a loader such as storage.Habits.Load to a Source.
type SourceFunc func() []habit.Habit

func (f SourceFunc) Snapshot() []habit.Habit { return f() }

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithPermissionRefresh re-reads the stored permission before every tick
// and arms or disarms to match it. Use it when another process may change
// the answer while the scheduler runs.
func WithPermissionRefresh() Option {
	return func(s *Scheduler) { s.refresh = true }
}

type Scheduler struct {
	src      Source
	notifier nudge.Notifier
	perms    *PermissionStore
	interval time.Duration
	now      func() time.Time
	refresh  bool

	mu    sync.Mutex
	state State

	wg       sync.WaitGroup
	quit     chan struct{}
	stopOnce sync.Once
}

func New(src Source, notifier nudge.Notifier, perms *PermissionStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		src:      src,
		notifier: notifier,
		perms:    perms,
		interval: DefaultInterval,
		now:      time.Now,
		state:    Idle,
		quit:     make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Restore arms the scheduler if permission was granted in an earlier
// session.
func (s *Scheduler) Restore() State {
	if s.perms != nil && s.perms.Load() == Granted {
		s.Arm()
	}
	return s.State()
}

// Permission reports the stored answer to the notification prompt.
func (s *Scheduler) Permission() Permission {
	if s.perms == nil {
		return Undetermined
	}
	return s.perms.Load()
}

// RequestPermission records the user's answer. Granted arms the
// scheduler, anything else disarms it.
func (s *Scheduler) RequestPermission(p Permission) (State, error) {
	if _, err := ParsePermission(string(p)); err != nil {
		return s.State(), err
	}
	if s.perms != nil {
		if err := s.perms.Save(p); err != nil {
			return s.State(), err
		}
	}
	if p == Granted {
		s.Arm()
	} else {
		s.Disarm()
	}
	return s.State(), nil
}

func (s *Scheduler) Arm() {
	s.setState(Armed)
}

func (s *Scheduler) Disarm() {
	s.setState(Idle)
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	if prev != st {
		logger.Info("Reminder scheduler state changed", "from", prev, "to", st)
	}
}

// Start checks reminders once per interval until ctx is done or Stop is
// called. It blocks.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	logger.Info("Reminder scheduler started", "interval", s.interval, "state", s.State())
	for {
		select {
		case <-ticker.C:
			s.Tick(s.now())
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

// Tick fires reminders for habits due at now's minute and returns how many
// notifications were dispatched. While idle, due habits are only logged.
func (s *Scheduler) Tick(now time.Time) int {
	if s.refresh && s.perms != nil {
		if s.perms.Load() == Granted {
			s.Arm()
		} else {
			s.Disarm()
		}
	}
	clock := habit.ClockKey(now)
	armed := s.State() == Armed
	dispatched := 0
	for _, h := range s.src.Snapshot() {
		if h.ReminderTime != clock {
			continue
		}
		if !armed {
			remindersTotal.WithLabelValues("log").Inc()
			logger.Info("Reminder due", "habit", h.Name, "time", clock)
			continue
		}
		remindersTotal.WithLabelValues("notify").Inc()
		s.dispatch(nudge.NewReminder(h, now))
		dispatched++
	}
	return dispatched
}

func (s *Scheduler) dispatch(r nudge.Reminder) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.notifier.Notify(context.Background(), r); err != nil {
			logger.Warn("Failed to deliver reminder", "habit", r.HabitName, "error", err)
		}
	}()
}

// Wait blocks until in-flight notifications have been delivered.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
