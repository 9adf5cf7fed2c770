// Package scheduler runs extraction off the interactive thread. It owns a
// bounded worker pool, coalesces concurrent requests for the same file
// identity into one extraction, bounds each extraction with a time budget,
// and populates the preview cache exactly once per result.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/arangr/arangr/internal/cache"
	"github.com/arangr/arangr/internal/preview"
)

// ExtractFunc produces a preview for a path. preview.Registry.Extract
// satisfies it; tests substitute counting fakes.
type ExtractFunc func(ctx context.Context, path string) (preview.Preview, error)

var (
	// ErrClosed is returned for requests made after Close.
	ErrClosed = errors.New("scheduler closed")

	// ErrDetached is returned when a caller reads a handle it abandoned.
	ErrDetached = errors.New("request detached")
)

// Options tune the scheduler.
type Options struct {
	Workers int
	Timeout time.Duration // per-extraction budget
	Logger  *zap.Logger
}

// Scheduler dispatches extraction requests to a worker pool.
type Scheduler struct {
	cache   *cache.Cache
	extract ExtractFunc
	timeout time.Duration
	log     *zap.Logger

	jobs chan *job
	quit chan struct{}
	wg   sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	inflight map[preview.FileIdentity]*job
}

// job is one in-flight extraction. All callers for the same identity attach
// to the same job; done is closed exactly once when the result is set.
type job struct {
	id     preview.FileIdentity
	done   chan struct{}
	result preview.Preview
	err    error

	finished bool // guarded by Scheduler.mu; first finish wins
}

// Handle is a caller's attachment to a request. Detaching makes result
// delivery to this caller a no-op; the extraction itself still finishes and
// fills the cache for later reuse.
type Handle struct {
	j        *job
	detached atomic.Bool
}

// Done is closed when the underlying extraction completes.
func (h *Handle) Done() <-chan struct{} { return h.j.done }

// Detach abandons the request for this caller.
func (h *Handle) Detach() { h.detached.Store(true) }

// Result returns the outcome after Done is closed. Each attached caller
// receives its own copy of the preview.
func (h *Handle) Result() (preview.Preview, error) {
	if h.detached.Load() {
		return preview.Preview{}, ErrDetached
	}
	if h.j.err != nil {
		return preview.Preview{}, h.j.err
	}
	return h.j.result.Clone(), nil
}

// Wait blocks for the result. If ctx ends first the caller is detached and
// ctx's error returned; the extraction continues in the background.
func (h *Handle) Wait(ctx context.Context) (preview.Preview, error) {
	select {
	case <-h.j.done:
		return h.Result()
	case <-ctx.Done():
		h.Detach()
		return preview.Preview{}, ctx.Err()
	}
}

// New creates a scheduler and starts its workers.
func New(c *cache.Cache, extract ExtractFunc, opts Options) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Scheduler{
		cache:    c,
		extract:  extract,
		timeout:  opts.Timeout,
		log:      opts.Logger,
		jobs:     make(chan *job, opts.Workers*4),
		quit:     make(chan struct{}),
		inflight: make(map[preview.FileIdentity]*job),
	}
	for i := 0; i < opts.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// Request asks for a preview of the given identity. A cache hit resolves
// immediately; otherwise the caller attaches to the existing in-flight
// extraction for that identity, or a new one is queued. At most one
// extraction per identity runs at any time.
func (s *Scheduler) Request(id preview.FileIdentity) (*Handle, error) {
	if p, ok := s.cache.Get(id); ok {
		j := &job{id: id, done: make(chan struct{}), result: p}
		close(j.done)
		return &Handle{j: j}, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if j, ok := s.inflight[id]; ok {
		s.mu.Unlock()
		return &Handle{j: j}, nil
	}
	j := &job{id: id, done: make(chan struct{})}
	s.inflight[id] = j
	s.mu.Unlock()

	select {
	case s.jobs <- j:
	default:
		// Queue full; hand off without blocking the caller.
		go func() {
			select {
			case s.jobs <- j:
			case <-s.quit:
				s.finish(j, preview.Preview{}, ErrClosed)
			}
		}()
	}
	return &Handle{j: j}, nil
}

// Preview is the synchronous convenience path: stat, request, wait.
func (s *Scheduler) Preview(ctx context.Context, path string) (preview.Preview, error) {
	id, err := preview.Identify(path)
	if err != nil {
		return preview.Preview{}, err
	}
	h, err := s.Request(id)
	if err != nil {
		return preview.Preview{}, err
	}
	return h.Wait(ctx)
}

// Cache exposes the scheduler's preview cache.
func (s *Scheduler) Cache() *cache.Cache { return s.cache }

// Close stops accepting requests and waits for the workers to drain. Jobs
// queued but never picked up by a worker are finished with ErrClosed so no
// waiter blocks forever.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	remaining := make([]*job, 0, len(s.inflight))
	for _, j := range s.inflight {
		remaining = append(remaining, j)
	}
	s.mu.Unlock()

	close(s.quit)
	s.wg.Wait()

	for _, j := range remaining {
		s.finish(j, preview.Preview{}, ErrClosed)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.quit:
			return
		case j := <-s.jobs:
			s.run(j)
		}
	}
}

// run executes one extraction under the time budget. Timeouts become
// error-category previews so the worker never hangs; a filesystem-level
// failure stays a request-level error and is never cached.
func (s *Scheduler) run(j *job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	type outcome struct {
		p   preview.Preview
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		p, err := s.extract(ctx, j.id.Path)
		ch <- outcome{p, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			// An extractor that honors ctx reports the same budget breach.
			s.finish(j, preview.ErrorPreview("scheduler", preview.ErrTimeout), nil)
			return
		}
		s.finish(j, out.p, out.err)
	case <-ctx.Done():
		s.log.Warn("extraction timed out",
			zap.String("path", j.id.Path),
			zap.Duration("budget", s.timeout))
		s.finish(j, preview.ErrorPreview("scheduler", preview.ErrTimeout), nil)
	}
}

// finish publishes the result: the cache is populated before the job leaves
// the in-flight table, so there is no window where a new request misses both.
// Only the first finish for a job takes effect; a worker completing a job and
// Close sweeping the same job race benignly.
func (s *Scheduler) finish(j *job, p preview.Preview, err error) {
	s.mu.Lock()
	if j.finished {
		s.mu.Unlock()
		return
	}
	j.finished = true
	s.mu.Unlock()

	j.result = p
	j.err = err
	if err == nil {
		s.cache.Put(j.id, p)
	}

	s.mu.Lock()
	delete(s.inflight, j.id)
	s.mu.Unlock()

	close(j.done)
}
