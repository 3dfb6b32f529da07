package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brk3/habitflow/internal/server"
	"github.com/brk3/habitflow/internal/storage"
	"github.com/brk3/habitflow/internal/tracker"
	"github.com/brk3/habitflow/pkg/habit"
	"github.com/brk3/habitflow/pkg/versioninfo"
)

func newTestServer(t *testing.T) (*httptest.Server, *tracker.Tracker) {
	t.Helper()
	tr := tracker.New(storage.NewHabits(storage.NewMemStore()), nil)
	srv := server.New(tr, nil, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
		tr.Close()
	})
	return ts, tr
}

func TestVersion(t *testing.T) {
	ts, _ := newTestServer(t)
	got, err := New(ts.URL + "/").Version(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Version != versioninfo.Version {
		t.Fatalf("version = %q want %q", got.Version, versioninfo.Version)
	}
}

func TestHabits(t *testing.T) {
	ts, tr := newTestServer(t)
	if _, err := tr.Create(habit.Draft{Name: "Read"}); err != nil {
		t.Fatal(err)
	}

	got, err := New(ts.URL).Habits(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Read" {
		t.Fatalf("got %+v", got)
	}
}

func TestErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"down for maintenance"}`))
	}))
	defer ts.Close()

	_, err := New(ts.URL).Version(context.Background())
	if err == nil || !strings.Contains(err.Error(), "down for maintenance") {
		t.Fatalf("expected server error, got %v", err)
	}
}
