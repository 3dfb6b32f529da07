package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brk3/habitflow/internal/insight"
	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/internal/reminder"
	"github.com/brk3/habitflow/internal/tracker"
	"github.com/brk3/habitflow/pkg/habit"
)

type Server struct {
	tracker   *tracker.Tracker
	gateway   insight.Gateway
	scheduler *reminder.Scheduler

	unsubscribe func()
}

// New serves t over HTTP. gateway and scheduler may be nil, which turns
// off the inspiration and notification endpoints respectively.
func New(t *tracker.Tracker, gateway insight.Gateway, scheduler *reminder.Scheduler) *Server {
	s := &Server{
		tracker:   t,
		gateway:   gateway,
		scheduler: scheduler,
	}
	activeHabits.Set(float64(len(t.Snapshot())))
	s.unsubscribe = t.Subscribe(func(habits []habit.Habit) {
		activeHabits.Set(float64(len(habits)))
	})
	return s
}

func (s *Server) Close() {
	s.unsubscribe()
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/version", s.getVersionInfo)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/inspiration", s.getInspiration)
	r.Get("/stats", s.getStats)

	r.Route("/habits", func(r chi.Router) {
		r.Get("/", s.listHabits)
		r.Post("/", s.createHabit)
		r.Get("/{habit_id}", s.getHabit)
		r.Get("/{habit_id}/summary", s.getHabitSummary)
		r.Post("/{habit_id}/toggle", s.toggleHabit)
		r.Delete("/{habit_id}", s.deleteHabit)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/permission", s.getPermission)
		r.Put("/permission", s.putPermission)
	})
	return r
}

// ListenAndServe runs the API on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		return srv.Shutdown(context.Background())
	}
}
