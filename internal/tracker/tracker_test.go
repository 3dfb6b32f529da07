package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brk3/habitflow/internal/storage"
	"github.com/brk3/habitflow/pkg/habit"
)

type memRepo struct {
	mu    sync.Mutex
	saved [][]habit.Habit
	err   error
	init  []habit.Habit
}

func (r *memRepo) Load() []habit.Habit {
	if r.init == nil {
		return []habit.Habit{}
	}
	return r.init
}

func (r *memRepo) Save(h []habit.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, h)
	return r.err
}

func (r *memRepo) saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

// mockGateway answers HabitInsight with suggestion once release is closed
// (or immediately when release is nil).
type mockGateway struct {
	suggestion *habit.AISuggestion
	release    chan struct{}
	started    chan struct{}
}

func (g *mockGateway) HabitInsight(_ context.Context, name, _ string) *habit.AISuggestion {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	return g.suggestion
}

func (g *mockGateway) DailyInspiration(context.Context, []string) string { return "" }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("h%d", n)
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 7, 10, 30, 0, 0, time.UTC)
}

func newTestTracker(repo Repository, gw *mockGateway) *Tracker {
	var opts = []Option{WithClock(fixedClock), WithIDGenerator(sequentialIDs())}
	if gw == nil {
		return New(repo, nil, opts...)
	}
	return New(repo, gw, opts...)
}

var yes = ConfirmFunc(func(habit.Habit) bool { return true })

func TestCreate_AppliesDefaults(t *testing.T) {
	repo := &memRepo{}
	tr := newTestTracker(repo, nil)

	h, err := tr.Create(habit.Draft{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.Name != habit.DefaultName || h.Frequency != habit.Daily || h.ReminderTime != "09:00" || h.Color != habit.DefaultColor {
		t.Fatalf("defaults not applied: %+v", h)
	}
	if h.ID == "" || !h.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("id/createdAt not set: %+v", h)
	}
	if h.Logs == nil || len(h.Logs) != 0 {
		t.Fatalf("logs should be empty and non-nil: %#v", h.Logs)
	}
	if repo.saves() != 1 {
		t.Fatalf("expected 1 save, got %d", repo.saves())
	}
}

func TestCreate_KeepsProvidedFields(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	h, err := tr.Create(habit.Draft{Name: " Run ", Description: "5k", Frequency: habit.Weekly, ReminderTime: "06:45", Color: "#ef4444"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.Name != "Run" || h.Description != "5k" || h.Frequency != habit.Weekly || h.ReminderTime != "06:45" || h.Color != "#ef4444" {
		t.Fatalf("fields not kept: %+v", h)
	}
}

func TestCreate_RejectsBadReminderAndFrequency(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)

	if _, err := tr.Create(habit.Draft{Name: "Run", ReminderTime: "9:00"}); !errors.Is(err, ErrInvalidReminderTime) {
		t.Errorf("expected ErrInvalidReminderTime, got %v", err)
	}
	if _, err := tr.Create(habit.Draft{Name: "Run", Frequency: "hourly"}); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency, got %v", err)
	}
	if got := len(tr.Snapshot()); got != 0 {
		t.Fatalf("rejected drafts were stored: %d", got)
	}
}

func TestCreate_IDsAreUnique(t *testing.T) {
	repo := &memRepo{}
	tr := New(repo, nil, WithIDGenerator(func() func() string {
		ids := []string{"dup", "dup", "fresh"}
		i := 0
		return func() string { id := ids[i]; i++; return id }
	}()))

	a, _ := tr.Create(habit.Draft{Name: "a"})
	b, _ := tr.Create(habit.Draft{Name: "b"})
	if a.ID == b.ID {
		t.Fatalf("duplicate id %q", a.ID)
	}
}

func TestToggleCompletion_TwiceOnFreshDate(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	h, _ := tr.Create(habit.Draft{Name: "Run"})

	first, ok, err := tr.ToggleCompletion(h.ID, "2024-01-01")
	if err != nil || !ok {
		t.Fatalf("first toggle: ok=%v err=%v", ok, err)
	}
	if len(first.Logs) != 1 || !first.Logs[0].Completed {
		t.Fatalf("first toggle should create a completed log: %+v", first.Logs)
	}

	second, _, _ := tr.ToggleCompletion(h.ID, "2024-01-01")
	if len(second.Logs) != 1 || second.Logs[0].Completed {
		t.Fatalf("second toggle should flip to not completed: %+v", second.Logs)
	}

	third, _, _ := tr.ToggleCompletion(h.ID, "2024-01-01")
	if len(third.Logs) != 1 || !third.Logs[0].Completed {
		t.Fatalf("third toggle should flip back: %+v", third.Logs)
	}
}

func TestToggleCompletion_AppendsInInsertionOrder(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	h, _ := tr.Create(habit.Draft{Name: "Run"})

	tr.ToggleCompletion(h.ID, "2024-01-05")
	tr.ToggleCompletion(h.ID, "2024-01-01")
	got, _ := tr.Get(h.ID)

	if len(got.Logs) != 2 || got.Logs[0].Date != "2024-01-05" || got.Logs[1].Date != "2024-01-01" {
		t.Fatalf("logs not in insertion order: %+v", got.Logs)
	}
}

func TestToggleCompletion_UnknownHabitIsNoop(t *testing.T) {
	repo := &memRepo{}
	tr := newTestTracker(repo, nil)
	tr.Create(habit.Draft{Name: "Run"})
	before := tr.Snapshot()
	saves := repo.saves()

	_, ok, err := tr.ToggleCompletion("missing", "2024-01-01")
	if ok || err != nil {
		t.Fatalf("expected no-op, got ok=%v err=%v", ok, err)
	}
	after := tr.Snapshot()
	if len(after) != len(before) || len(after[0].Logs) != 0 {
		t.Fatalf("collection changed: %+v", after)
	}
	if repo.saves() != saves {
		t.Fatal("no-op toggle should not persist")
	}
}

func TestToggleCompletion_RejectsBadDate(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	h, _ := tr.Create(habit.Draft{Name: "Run"})
	if _, _, err := tr.ToggleCompletion(h.ID, "yesterday"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	h, _ := tr.Create(habit.Draft{Name: "Run"})

	var asked string
	no := ConfirmFunc(func(h habit.Habit) bool { asked = h.Name; return false })
	if ok, err := tr.Delete(h.ID, no); ok || err != nil {
		t.Fatalf("refused delete: ok=%v err=%v", ok, err)
	}
	if asked != "Run" {
		t.Fatalf("confirmer not asked about the habit, got %q", asked)
	}
	if ok, _ := tr.Delete(h.ID, nil); ok {
		t.Fatal("delete without a confirmer must not remove")
	}
	if len(tr.Snapshot()) != 1 {
		t.Fatal("habit removed without confirmation")
	}

	if ok, err := tr.Delete(h.ID, yes); !ok || err != nil {
		t.Fatalf("confirmed delete: ok=%v err=%v", ok, err)
	}
	if len(tr.Snapshot()) != 0 {
		t.Fatal("habit still present")
	}
}

func TestDelete_MissingIsNoop(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	asked := false
	ok, err := tr.Delete("nope", ConfirmFunc(func(habit.Habit) bool { asked = true; return true }))
	if ok || err != nil || asked {
		t.Fatalf("ok=%v err=%v asked=%v", ok, err, asked)
	}
}

func TestSnapshot_IsIsolated(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	h, _ := tr.Create(habit.Draft{Name: "Run"})
	tr.ToggleCompletion(h.ID, "2024-01-01")

	snap := tr.Snapshot()
	snap[0].Logs[0].Completed = false
	snap[0].Name = "changed"

	got, _ := tr.Get(h.ID)
	if got.Name != "Run" || !got.Logs[0].Completed {
		t.Fatalf("snapshot aliased internal state: %+v", got)
	}
}

func TestMutations_DoNotAlterEarlierSnapshots(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	h, _ := tr.Create(habit.Draft{Name: "Run"})
	tr.ToggleCompletion(h.ID, "2024-01-01")
	before := tr.Snapshot()

	tr.ToggleCompletion(h.ID, "2024-01-01")
	if !before[0].Logs[0].Completed {
		t.Fatal("earlier snapshot changed by a later mutation")
	}
}

func TestEveryMutationPersistsWholeCollection(t *testing.T) {
	repo := &memRepo{}
	tr := newTestTracker(repo, nil)

	a, _ := tr.Create(habit.Draft{Name: "a"})
	tr.Create(habit.Draft{Name: "b"})
	tr.ToggleCompletion(a.ID, "2024-01-01")
	tr.Delete(a.ID, yes)

	if repo.saves() != 4 {
		t.Fatalf("expected 4 saves, got %d", repo.saves())
	}
	sizes := []int{1, 2, 2, 1}
	for i, s := range repo.saved {
		if len(s) != sizes[i] {
			t.Errorf("save %d had %d habits, want %d", i, len(s), sizes[i])
		}
	}
}

func TestSaveFailureIsReturned(t *testing.T) {
	repo := &memRepo{err: errors.New("disk full")}
	tr := newTestTracker(repo, nil)

	h, err := tr.Create(habit.Draft{Name: "Run"})
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if _, ok := tr.Get(h.ID); !ok {
		t.Fatal("in-memory state should keep the habit")
	}
}

func TestSubscribe(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	var got [][]habit.Habit
	cancel := tr.Subscribe(func(h []habit.Habit) { got = append(got, h) })

	h, _ := tr.Create(habit.Draft{Name: "Run"})
	tr.ToggleCompletion("missing", "2024-01-01")
	tr.ToggleCompletion(h.ID, "2024-01-01")
	cancel()
	tr.Delete(h.ID, yes)

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if len(got[1][0].Logs) != 1 {
		t.Fatalf("observer saw stale state: %+v", got[1])
	}
}

func TestSubscribe_LastDeliveryIsLatestUnderConcurrency(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)

	var (
		mu       sync.Mutex
		sizes    []int
		firstRun sync.Once
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	tr.Subscribe(func(h []habit.Habit) {
		firstRun.Do(func() {
			close(entered)
			<-release
		})
		mu.Lock()
		sizes = append(sizes, len(h))
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		tr.Create(habit.Draft{Name: "Run"})
	}()
	<-entered

	go func() {
		defer wg.Done()
		tr.Create(habit.Draft{Name: "Read"})
	}()
	deadline := time.Now().Add(2 * time.Second)
	for len(tr.Snapshot()) != 2 {
		if time.Now().After(deadline) {
			t.Fatal("second create never committed")
		}
		time.Sleep(time.Millisecond)
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(sizes) == 0 || sizes[len(sizes)-1] != 2 {
		t.Fatalf("deliveries saw %v, last should see 2 habits", sizes)
	}
}

func TestCreate_AttachesInsightAsynchronously(t *testing.T) {
	gw := &mockGateway{
		suggestion: &habit.AISuggestion{IdentityStatement: "I am a runner", Motivation: "Go", Tips: []string{"shoes"}},
		release:    make(chan struct{}),
	}
	repo := &memRepo{}
	tr := newTestTracker(repo, gw)

	h, err := tr.Create(habit.Draft{Name: "Run"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.AISuggestion != nil {
		t.Fatal("create must not wait for the insight")
	}

	close(gw.release)
	tr.Wait()

	got, _ := tr.Get(h.ID)
	if got.AISuggestion == nil || got.AISuggestion.IdentityStatement != "I am a runner" {
		t.Fatalf("insight not attached: %+v", got.AISuggestion)
	}
	if repo.saves() != 2 {
		t.Fatalf("attaching the insight should persist, saves=%d", repo.saves())
	}
}

func TestCreate_NilInsightLeavesHabitUntouched(t *testing.T) {
	repo := &memRepo{}
	tr := newTestTracker(repo, &mockGateway{})

	h, err := tr.Create(habit.Draft{Name: "Run"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tr.Wait()

	got, ok := tr.Get(h.ID)
	if !ok || got.AISuggestion != nil {
		t.Fatalf("expected habit without suggestion, got %+v", got)
	}
	if repo.saves() != 1 {
		t.Fatalf("nil insight should not persist again, saves=%d", repo.saves())
	}
}

func TestInsightForDeletedHabitIsDiscarded(t *testing.T) {
	gw := &mockGateway{
		suggestion: &habit.AISuggestion{IdentityStatement: "I am", Motivation: "m", Tips: []string{"t"}},
		release:    make(chan struct{}),
		started:    make(chan struct{}, 1),
	}
	repo := &memRepo{}
	tr := newTestTracker(repo, gw)

	h, _ := tr.Create(habit.Draft{Name: "Run"})
	<-gw.started
	if ok, _ := tr.Delete(h.ID, yes); !ok {
		t.Fatal("delete failed")
	}
	close(gw.release)
	tr.Wait()

	if got := tr.Snapshot(); len(got) != 0 {
		t.Fatalf("deleted habit resurrected: %+v", got)
	}
	if repo.saves() != 2 {
		t.Fatalf("discarded insight should not persist, saves=%d", repo.saves())
	}
}

func TestAttachInsight_DoesNotOverwrite(t *testing.T) {
	tr := newTestTracker(&memRepo{}, nil)
	h, _ := tr.Create(habit.Draft{Name: "Run"})

	first := &habit.AISuggestion{IdentityStatement: "first", Motivation: "m", Tips: []string{"t"}}
	if ok, _ := tr.attachInsight(h.ID, first); !ok {
		t.Fatal("first attach failed")
	}
	if ok, _ := tr.attachInsight(h.ID, &habit.AISuggestion{IdentityStatement: "second"}); ok {
		t.Fatal("suggestion must be immutable once attached")
	}
	first.Tips[0] = "mutated"
	got, _ := tr.Get(h.ID)
	if got.AISuggestion.IdentityStatement != "first" || got.AISuggestion.Tips[0] != "t" {
		t.Fatalf("unexpected suggestion: %+v", got.AISuggestion)
	}
}

func TestNew_LoadsFromStorage(t *testing.T) {
	kv := storage.NewMemStore()
	repo := storage.NewHabits(kv)
	tr := newTestTracker(repo, nil)
	h, _ := tr.Create(habit.Draft{Name: "Run"})
	tr.ToggleCompletion(h.ID, "2024-01-01")

	reloaded := New(storage.NewHabits(kv), nil)
	got, ok := reloaded.Get(h.ID)
	if !ok || !got.CompletedOn("2024-01-01") {
		t.Fatalf("state not restored from storage: %+v", got)
	}
}

func TestConcurrentCreatesEachGetInsight(t *testing.T) {
	gw := &mockGateway{suggestion: &habit.AISuggestion{IdentityStatement: "i", Motivation: "m", Tips: []string{"t"}}}
	tr := New(&memRepo{}, gw)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Create(habit.Draft{Name: fmt.Sprintf("h%d", i)})
		}(i)
	}
	wg.Wait()
	tr.Wait()

	snap := tr.Snapshot()
	if len(snap) != 20 {
		t.Fatalf("got %d habits want 20", len(snap))
	}
	for _, h := range snap {
		if h.AISuggestion == nil {
			t.Fatalf("habit %s missing insight", h.Name)
		}
	}
}
