package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) fetch(_ context.Context, url string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, url)
	r.mu.Unlock()
	if url == "bad" {
		return "", errors.New("boom")
	}
	return "body:" + url, nil
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestResourceStartsNotStarted(t *testing.T) {
	rec := &recorder{}
	r := NewResource[string](context.Background(), rec.fetch)

	s := r.Snapshot()
	assert.Equal(t, NotStarted, s.State)
	assert.Equal(t, NotStarted, r.Wait(waitCtx(t)).State)
	assert.False(t, r.Reload())
	assert.Empty(t, rec.Calls())
}

func TestResourceLoadOnKeyChangeOnly(t *testing.T) {
	rec := &recorder{}
	r := NewResource[string](context.Background(), rec.fetch)

	require.True(t, r.Load("a"))
	s := r.Wait(waitCtx(t))
	assert.Equal(t, Ready, s.State)
	assert.Equal(t, "body:a", s.Value)

	assert.False(t, r.Load("a"))
	require.True(t, r.Load("b"))
	s = r.Wait(waitCtx(t))
	assert.Equal(t, "b", s.Key)
	assert.Equal(t, "body:b", s.Value)

	assert.Equal(t, []string{"a", "b"}, rec.Calls())
}

func TestResourceFailure(t *testing.T) {
	rec := &recorder{}
	r := NewResource[string](context.Background(), rec.fetch)

	r.Load("bad")
	s := r.Wait(waitCtx(t))
	assert.Equal(t, Failed, s.State)
	assert.EqualError(t, s.Err, "boom")

	require.True(t, r.Reload())
	r.Wait(waitCtx(t))
	assert.Equal(t, []string{"bad", "bad"}, rec.Calls())
}

func TestResourceDropsStaleResults(t *testing.T) {
	release := make(chan struct{})
	fn := func(ctx context.Context, url string) (string, error) {
		if url == "slow" {
			<-release
		}
		return url, nil
	}
	r := NewResource[string](context.Background(), fn)

	r.Load("slow")
	r.Load("fast")
	s := r.Wait(waitCtx(t))
	require.Equal(t, Ready, s.State)
	assert.Equal(t, "fast", s.Value)

	close(release)
	time.Sleep(20 * time.Millisecond)

	s = r.Snapshot()
	assert.Equal(t, "fast", s.Key)
	assert.Equal(t, "fast", s.Value)
}

func TestResourceWaitFollowsSupersedingLoad(t *testing.T) {
	release := make(chan struct{})
	fn := func(ctx context.Context, url string) (string, error) {
		if url == "slow" {
			<-release
		}
		return url, nil
	}
	r := NewResource[string](context.Background(), fn)
	r.Load("slow")

	ctx := waitCtx(t)
	got := make(chan Snapshot[string], 1)
	go func() { got <- r.Wait(ctx) }()

	time.Sleep(10 * time.Millisecond)
	r.Load("fast")

	select {
	case s := <-got:
		assert.Equal(t, "fast", s.Value)
	case <-time.After(time.Second):
		t.Fatal("waiter stuck on superseded fetch")
	}
	close(release)
}

func TestResourceWaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	fn := func(ctx context.Context, url string) (string, error) {
		<-block
		return url, nil
	}
	r := NewResource[string](context.Background(), fn)
	r.Load("a")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Equal(t, Loading, r.Wait(ctx).State)
}
