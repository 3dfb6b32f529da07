// Package stats derives analytics from a habit collection. Everything
// here is a pure function of its inputs.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/brk3/habitflow/pkg/habit"
)

const seriesDays = 7

type DayPoint struct {
	Label     string `json:"label"`
	Date      string `json:"date"`
	Completed int    `json:"completed"`
}

type RankEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Completions int    `json:"completions"`
}

type Overview struct {
	TotalCompleted int        `json:"total_completed"`
	WeeklyRate     int        `json:"weekly_rate"`
	ActiveHabits   int        `json:"active_habits"`
	TrackingSince  *time.Time `json:"tracking_since,omitempty"`
}

// CompletionRate is the percentage of h's logs that are completed,
// rounded to the nearest integer. No logs means 0.
func CompletionRate(h habit.Habit) int {
	if len(h.Logs) == 0 {
		return 0
	}
	return percent(TotalCompletions(h), len(h.Logs))
}

func TotalCompletions(h habit.Habit) int {
	n := 0
	for _, l := range h.Logs {
		if l.Completed {
			n++
		}
	}
	return n
}

// WeeklySeries counts, for each of the seven days ending with now's
// calendar day, how many habits were completed that day. Oldest first.
func WeeklySeries(habits []habit.Habit, now time.Time) []DayPoint {
	out := make([]DayPoint, 0, seriesDays)
	for i := seriesDays - 1; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		date := habit.DateKey(d)
		count := 0
		for _, h := range habits {
			if h.CompletedOn(date) {
				count++
			}
		}
		out = append(out, DayPoint{
			Label:     d.Format("Mon"),
			Date:      date,
			Completed: count,
		})
	}
	return out
}

// WeeklyCompletionRate relates the completions in series to the
// habitCount*7 possible ones. No habits means 0.
func WeeklyCompletionRate(series []DayPoint, habitCount int) int {
	if habitCount == 0 {
		return 0
	}
	return percent(seriesTotal(series), habitCount*seriesDays)
}

// Ranking orders habits by completed logs, most first. Ties keep
// collection order.
func Ranking(habits []habit.Habit) []RankEntry {
	out := make([]RankEntry, len(habits))
	for i, h := range habits {
		out[i] = RankEntry{
			ID:          h.ID,
			Name:        h.Name,
			Color:       h.Color,
			Completions: TotalCompletions(h),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Completions > out[j].Completions
	})
	return out
}

func ComputeOverview(habits []habit.Habit, now time.Time) Overview {
	series := WeeklySeries(habits, now)
	o := Overview{
		TotalCompleted: seriesTotal(series),
		WeeklyRate:     WeeklyCompletionRate(series, len(habits)),
		ActiveHabits:   len(habits),
	}
	if len(habits) > 0 {
		since := habits[0].CreatedAt
		o.TrackingSince = &since
	}
	return o
}

func seriesTotal(series []DayPoint) int {
	total := 0
	for _, p := range series {
		total += p.Completed
	}
	return total
}

func percent(n, d int) int {
	return int(math.Round(float64(n) / float64(d) * 100))
}
