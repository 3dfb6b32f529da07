package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/internal/reminder"
	"github.com/brk3/habitflow/internal/stats"
	"github.com/brk3/habitflow/internal/tracker"
	"github.com/brk3/habitflow/internal/validation"
	"github.com/brk3/habitflow/pkg/habit"
	"github.com/brk3/habitflow/pkg/versioninfo"
)

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	if err := writeJSON(w, code, ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to write error response", "status", code, "error", err)
	}
}

func respond(w http.ResponseWriter, code int, v any) {
	if err := writeJSON(w, code, v); err != nil {
		logger.Error("Failed to serialize response", "status", code, "error", err)
	}
}

func (s *Server) getVersionInfo(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, versioninfo.Current())
}

func (s *Server) listHabits(w http.ResponseWriter, _ *http.Request) {
	habits := s.tracker.Snapshot()
	logger.Debug("Listing habits", "count", len(habits))
	respond(w, http.StatusOK, HabitListResponse{Habits: habits})
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var d habit.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		logger.Warn("Invalid JSON in create habit request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validation.Draft(d); err != nil {
		respond(w, http.StatusBadRequest, ErrorResponse{
			Error:  validation.Summary(err),
			Fields: validation.Messages(err),
		})
		return
	}

	h, err := s.tracker.Create(d)
	switch {
	case errors.Is(err, tracker.ErrInvalidFrequency), errors.Is(err, tracker.ErrInvalidReminderTime):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.Error("Failed to create habit", "habit_name", d.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}
	respond(w, http.StatusCreated, h)
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	h, ok := s.tracker.Get(habitID)
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	respond(w, http.StatusOK, h)
}

func (s *Server) getHabitSummary(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	h, ok := s.tracker.Get(habitID)
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	respond(w, http.StatusOK, HabitSummaryResponse{
		HabitID:      habitID,
		HabitSummary: stats.Summarize(h, s.tracker.Now()),
	})
}

func (s *Server) toggleHabit(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Date == "" {
		req.Date = s.tracker.Today()
	}

	h, changed, err := s.tracker.ToggleCompletion(habitID, req.Date)
	switch {
	case errors.Is(err, tracker.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case !changed:
		writeError(w, http.StatusNotFound, "habit not found")
		return
	case err != nil:
		logger.Error("Failed to persist toggle", "habit_id", habitID, "date", req.Date, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}
	respond(w, http.StatusOK, ToggleResponse{
		Date:      req.Date,
		Completed: h.CompletedOn(req.Date),
		Habit:     h,
	})
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if !confirmed {
		writeError(w, http.StatusPreconditionRequired, "deletion must be confirmed with ?confirm=true")
		return
	}

	logger.Info("Deleting habit", "habit_id", habitID)
	deleted, err := s.tracker.Delete(habitID, tracker.ConfirmFunc(func(habit.Habit) bool { return true }))
	switch {
	case !deleted:
		writeError(w, http.StatusNotFound, "habit not found")
		return
	case err != nil:
		logger.Error("Failed to persist deletion", "habit_id", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getStats(w http.ResponseWriter, _ *http.Request) {
	habits := s.tracker.Snapshot()
	now := s.tracker.Now()
	respond(w, http.StatusOK, StatsResponse{
		Overview: stats.ComputeOverview(habits, now),
		Series:   stats.WeeklySeries(habits, now),
		Ranking:  stats.Ranking(habits),
	})
}

func (s *Server) getInspiration(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		writeError(w, http.StatusServiceUnavailable, "insight gateway not configured")
		return
	}
	text := s.gateway.DailyInspiration(r.Context(), s.tracker.Names())
	respond(w, http.StatusOK, InspirationResponse{Text: text})
}

func (s *Server) getPermission(w http.ResponseWriter, _ *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "reminders not configured")
		return
	}
	respond(w, http.StatusOK, PermissionResponse{
		Permission: s.scheduler.Permission(),
		State:      s.scheduler.State(),
	})
}

func (s *Server) putPermission(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "reminders not configured")
		return
	}
	var req PermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := reminder.ParsePermission(req.Permission)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := s.scheduler.RequestPermission(p)
	if err != nil {
		logger.Error("Failed to record notification permission", "permission", p, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}
	respond(w, http.StatusOK, PermissionResponse{Permission: p, State: state})
}
