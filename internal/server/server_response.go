package server

import (
	"github.com/brk3/habitflow/internal/reminder"
	"github.com/brk3/habitflow/internal/stats"
	"github.com/brk3/habitflow/pkg/habit"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type HabitListResponse struct {
	Habits []habit.Habit `json:"habits"`
}

type HabitSummaryResponse struct {
	HabitID      string        `json:"habit_id"`
	HabitSummary stats.Summary `json:"habit_summary"`
}

type ToggleRequest struct {
	Date string `json:"date"`
}

type ToggleResponse struct {
	Date      string      `json:"date"`
	Completed bool        `json:"completed"`
	Habit     habit.Habit `json:"habit"`
}

type StatsResponse struct {
	Overview stats.Overview    `json:"overview"`
	Series   []stats.DayPoint  `json:"series"`
	Ranking  []stats.RankEntry `json:"ranking"`
}

type InspirationResponse struct {
	Text string `json:"text"`
}

type PermissionRequest struct {
	Permission string `json:"permission"`
}

type PermissionResponse struct {
	Permission reminder.Permission `json:"permission"`
	State      reminder.State      `json:"state"`
}
