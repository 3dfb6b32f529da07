package stats

import (
	"slices"
	"time"

	"github.com/brk3/habitflow/pkg/habit"
)

type Summary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	CompletionRate   int    `json:"completion_rate"`
	TotalCompletions int    `json:"total_completions"`
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	CompletedToday   bool   `json:"completed_today"`
	ThisMonth        int    `json:"this_month"`
	BestMonth        int    `json:"best_month"`
	FirstLogged      string `json:"first_logged,omitempty"`
}

func Summarize(h habit.Habit, now time.Time) Summary {
	today := habit.DateKey(now)
	current, longest := Streaks(h, now)
	s := Summary{
		ID:               h.ID,
		Name:             h.Name,
		CompletionRate:   CompletionRate(h),
		TotalCompletions: TotalCompletions(h),
		CurrentStreak:    current,
		LongestStreak:    longest,
		CompletedToday:   h.CompletedOn(today),
	}

	perMonth := map[string]int{}
	for _, l := range h.Logs {
		if !l.Completed {
			continue
		}
		if s.FirstLogged == "" || l.Date < s.FirstLogged {
			s.FirstLogged = l.Date
		}
		if len(l.Date) >= 7 {
			perMonth[l.Date[:7]]++
		}
	}
	s.ThisMonth = perMonth[today[:7]]
	for _, n := range perMonth {
		s.BestMonth = max(s.BestMonth, n)
	}
	return s
}

// Streaks returns the current and longest runs of consecutive completed
// days. The current run is alive when its last day is today or yesterday.
func Streaks(h habit.Habit, now time.Time) (current, longest int) {
	uniq := make(map[int64]struct{}, len(h.Logs))
	for _, l := range h.Logs {
		if !l.Completed {
			continue
		}
		if d, ok := dayNumber(l.Date); ok {
			uniq[d] = struct{}{}
		}
	}
	if len(uniq) == 0 {
		return 0, 0
	}

	days := make([]int64, 0, len(uniq))
	for d := range uniq {
		days = append(days, d)
	}
	slices.Sort(days)
	slices.Reverse(days)

	today, _ := dayNumber(habit.DateKey(now))

	streakOngoing := days[0] == today || days[0] == today-1
	longest = 1
	run := 1
	if streakOngoing {
		current = 1
	}

	for i := 0; i < len(days)-1; i++ {
		if days[i]-days[i+1] == 1 {
			run++
			longest = max(longest, run)
			if streakOngoing {
				current++
			}
		} else {
			run = 1
			streakOngoing = false
		}
	}

	return current, longest
}

// dayNumber maps a YYYY-MM-DD date to days since the epoch.
func dayNumber(date string) (int64, bool) {
	t, err := time.Parse(habit.DateLayout, date)
	if err != nil {
		return 0, false
	}
	return t.Unix() / (24 * 60 * 60), true
}
