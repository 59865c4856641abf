package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// scriptedMeetings answers GET /meetings/m1 from a fixed list of statuses;
// an empty entry answers 500. The last entry repeats.
type scriptedMeetings struct {
	mu      sync.Mutex
	script  []string
	fetches atomic.Int32
}

func (s *scriptedMeetings) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := int(s.fetches.Add(1)) - 1
	s.mu.Lock()
	status := s.script[min(n, len(s.script)-1)]
	s.mu.Unlock()

	if status == "" {
		writeEnvelope(w, http.StatusInternalServerError, map[string]interface{}{"code": 1000, "message": "Internal server error"})
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]interface{}{"id": "m1", "title": "Standup", "status": status})
}

type change struct{ from, to string }

func TestPoller_StandupObservesTwoChanges(t *testing.T) {
	script := &scriptedMeetings{script: []string{"pending", "pending", "processing", "", "processing", "completed"}}
	srv := httptest.NewServer(script)
	defer srv.Close()

	var changes []change
	p := NewPoller(New(srv.URL), NewSession("tok"), 5*time.Millisecond)
	m, err := p.Watch(context.Background(), "m1", func(from, to string, _ *Meeting) {
		changes = append(changes, change{from, to})
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if m.Status != "completed" {
		t.Fatalf("expected completed, got %s", m.Status)
	}

	want := []change{{"pending", "processing"}, {"processing", "completed"}}
	if len(changes) != len(want) || changes[0] != want[0] || changes[1] != want[1] {
		t.Fatalf("unexpected changes %+v", changes)
	}

	fetched := script.fetches.Load()
	if fetched != 6 {
		t.Fatalf("expected 6 fetches, got %d", fetched)
	}
	time.Sleep(30 * time.Millisecond)
	if script.fetches.Load() != fetched {
		t.Fatal("poller kept fetching after a terminal status")
	}
}

func TestPoller_FetchesImmediately(t *testing.T) {
	script := &scriptedMeetings{script: []string{"failed"}}
	srv := httptest.NewServer(script)
	defer srv.Close()

	start := time.Now()
	m, err := NewPoller(New(srv.URL), NewSession("tok"), time.Hour).Watch(context.Background(), "m1", nil)
	if err != nil || m.Status != "failed" {
		t.Fatalf("unexpected result %+v %v", m, err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("first fetch waited for the interval")
	}
}

func TestPoller_CancelStopsFetching(t *testing.T) {
	script := &scriptedMeetings{script: []string{"processing"}}
	srv := httptest.NewServer(script)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := NewPoller(New(srv.URL), NewSession("tok"), 5*time.Millisecond).Watch(ctx, "m1", nil)
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for script.fetches.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	fetched := script.fetches.Load()
	time.Sleep(30 * time.Millisecond)
	if script.fetches.Load() != fetched {
		t.Fatal("poller fetched after teardown")
	}
}

func TestPoller_StopsWhenSessionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]interface{}{"code": 1005, "message": "Invalid or expired token"})
	}))
	defer srv.Close()

	s := NewSession("expired")
	_, err := NewPoller(New(srv.URL), s, 5*time.Millisecond).Watch(context.Background(), "m1", nil)
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
	if s.Valid() {
		t.Fatal("session should be invalidated")
	}
}

func TestPoller_DeletedMeetingEndsWatch(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fetches.Add(1) == 1 {
			writeEnvelope(w, http.StatusOK, map[string]interface{}{"id": "m1", "title": "Standup", "status": "processing"})
			return
		}
		writeEnvelope(w, http.StatusNotFound, map[string]interface{}{"code": 3001, "message": "Meeting not found"})
	}))
	defer srv.Close()

	s := NewSession("tok")
	m, err := NewPoller(New(srv.URL), s, 5*time.Millisecond).Watch(context.Background(), "m1", nil)
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404, got %v", err)
	}
	if m == nil || m.Status != "processing" {
		t.Fatalf("expected last seen meeting, got %+v", m)
	}
	if !s.Valid() {
		t.Fatal("a deleted meeting must not invalidate the session")
	}

	fetched := fetches.Load()
	time.Sleep(30 * time.Millisecond)
	if fetches.Load() != fetched {
		t.Fatal("poller kept fetching a deleted meeting")
	}
}
