package scheduler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/covid-charts/internal/cache"
	"github.com/i474232898/covid-charts/internal/covid"
	"github.com/i474232898/covid-charts/internal/covid/sources"
)

type countingGlobal struct {
	calls int32
}

func (c *countingGlobal) URL() string { return "global.json" }

func (c *countingGlobal) Refresh(context.Context) (covid.GlobalDataset, error) {
	atomic.AddInt32(&c.calls, 1)
	return covid.GlobalDataset{}, nil
}

type countingSweeper struct {
	calls int32
}

func (c *countingSweeper) Sweep() int {
	atomic.AddInt32(&c.calls, 1)
	return 0
}

func TestSchedulerRunsJobs(t *testing.T) {
	g := &countingGlobal{}
	sw := &countingSweeper{}

	s := New(g, 50*time.Millisecond, sw, 50*time.Millisecond)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(180 * time.Millisecond)
	s.Stop()

	if n := atomic.LoadInt32(&g.calls); n < 1 {
		t.Fatalf("expected global refresh to run, got %d calls", n)
	}
	if n := atomic.LoadInt32(&sw.calls); n < 1 {
		t.Fatalf("expected sweep to run, got %d calls", n)
	}
}

func TestSchedulerRefreshDisabled(t *testing.T) {
	g := &countingGlobal{}

	s := New(g, 0, nil, 0)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if n := atomic.LoadInt32(&g.calls); n != 0 {
		t.Fatalf("expected no refresh, got %d calls", n)
	}
}

func TestRefreshGlobalReachesUpstreamEachRun(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = io.WriteString(w, `{"Canada":[{"date":"2020-1-22","confirmed":1}]}`)
	}))
	defer srv.Close()

	cfg := sources.HTTPClientConfig{Cache: cache.NewMemoryCache(0), CacheTTL: time.Hour}
	global := sources.NewGlobalSource(srv.Client(), srv.URL, cfg)

	s := New(global, time.Hour, nil, 0)
	for i := 0; i < 3; i++ {
		s.refreshGlobal()
	}

	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Fatalf("expected 3 upstream requests, got %d", n)
	}
}
