package fetch

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/covid-charts/internal/logger"
)

// Func retrieves and parses the document at url.
type Func[T any] func(ctx context.Context, url string) (T, error)

// Snapshot is a consistent view of a Resource.
type Snapshot[T any] struct {
	// Gen numbers the fetch the snapshot belongs to; it grows with every Load or Reload.
	Gen   uint64
	State State
	Key   string
	Value T
	Err   error
}

// Resource is a data source keyed by URL. Loading a new URL starts exactly one
// asynchronous fetch; results from superseded fetches are dropped.
type Resource[T any] struct {
	ctx   context.Context
	fetch Func[T]

	mu      sync.Mutex
	gen     uint64
	key     string
	state   State
	value   T
	err     error
	settled chan struct{}
}

// NewResource creates a Resource whose fetches run under ctx.
func NewResource[T any](ctx context.Context, fn Func[T]) *Resource[T] {
	settled := make(chan struct{})
	close(settled)
	return &Resource[T]{
		ctx:     ctx,
		fetch:   fn,
		settled: settled,
	}
}

// Load starts a fetch for url unless url is already the current key.
// It reports whether a fetch was started.
func (r *Resource[T]) Load(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != NotStarted && r.key == url {
		return false
	}
	r.startLocked(url)
	return true
}

// Reload starts a new fetch for the current key. It does nothing before the
// first Load.
func (r *Resource[T]) Reload() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == NotStarted {
		return false
	}
	r.startLocked(r.key)
	return true
}

func (r *Resource[T]) startLocked(url string) {
	// Waiters on a superseded fetch move on to the new one.
	if r.state == Loading {
		close(r.settled)
	}

	r.gen++
	gen := r.gen

	r.key = url
	r.state = Loading
	var zero T
	r.value = zero
	r.err = nil

	done := make(chan struct{})
	r.settled = done

	logger.Log.WithFields(logrus.Fields{"url": url, "generation": gen}).Debug("fetch started")

	go func() {
		v, err := r.fetch(r.ctx, url)
		r.finish(gen, done, v, err)
	}()
}

func (r *Resource[T]) finish(gen uint64, done chan struct{}, v T, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.Log.WithFields(logrus.Fields{"url": r.key, "generation": gen})

	if gen != r.gen {
		log.WithField("latest", r.gen).Debug("dropping stale fetch result")
		return
	}

	if err != nil {
		r.state = Failed
		r.err = err
		log.WithError(err).Warn("fetch failed")
	} else {
		r.state = Ready
		r.value = v
		log.Debug("fetch ready")
	}
	close(done)
}

// Snapshot returns the current state without blocking.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Resource[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Gen:   r.gen,
		State: r.state,
		Key:   r.key,
		Value: r.value,
		Err:   r.err,
	}
}

// Wait blocks until the latest fetch settles or ctx is done, then returns the
// current snapshot.
func (r *Resource[T]) Wait(ctx context.Context) Snapshot[T] {
	for {
		r.mu.Lock()
		settled := r.settled
		gen := r.gen
		r.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return r.Snapshot()
		}

		r.mu.Lock()
		if gen == r.gen {
			s := r.snapshotLocked()
			r.mu.Unlock()
			return s
		}
		r.mu.Unlock()
	}
}
