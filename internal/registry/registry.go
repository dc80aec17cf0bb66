// Package registry keeps at most one live server instance per instance key
// and starts one on demand.
package registry

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Option configures a Registry.
type Option func(*Registry)

// WithStartHook calls fn for every worker the registry starts.
func WithStartHook(fn func(*Worker)) Option {
	return func(r *Registry) {
		r.onStart = fn
	}
}

// WithQuietMode disables lifecycle logging.
func WithQuietMode() Option {
	return func(r *Registry) {
		r.quiet = true
	}
}

// Registry maps instance keys to running workers. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.Mutex
	workers map[Key]*Worker
	group   singleflight.Group
	onStart func(*Worker)
	quiet   bool
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{workers: make(map[Key]*Worker)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureRunning returns the live worker for key, starting one from cfg if
// none is registered or the registered one has died. Concurrent first
// callers share a single start.
func (r *Registry) EnsureRunning(ctx context.Context, key Key, cfg Config) (*Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if w := r.lookup(key); w != nil {
		return w, nil
	}

	v, err, _ := r.group.Do(key.String(), func() (any, error) {
		// A concurrent caller may have finished starting one.
		if w := r.lookup(key); w != nil {
			return w, nil
		}
		w := startWorker(key, cfg)

		r.mu.Lock()
		r.workers[key] = w
		r.mu.Unlock()

		if !r.quiet {
			log.Printf("Started server instance %s for %q (worker %s)", key.Short(), cfg.Application, w.ID())
		}
		if r.onStart != nil {
			r.onStart(w)
		}
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Worker), nil
}

// lookup returns the live worker for key, evicting a dead one.
func (r *Registry) lookup(key Key) *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[key]
	if !ok {
		return nil
	}
	if !w.Alive() {
		delete(r.workers, key)
		if !r.quiet {
			log.Printf("Warning: server instance %s is no longer running, restarting on demand", key.Short())
		}
		return nil
	}
	return w
}

// Get returns the live worker for key without starting one.
func (r *Registry) Get(key Key) (*Worker, bool) {
	w := r.lookup(key)
	return w, w != nil
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}

// Stop shuts down every registered worker.
func (r *Registry) Stop() {
	r.mu.Lock()
	workers := make([]*Worker, 0, len(r.workers))
	for key, w := range r.workers {
		workers = append(workers, w)
		delete(r.workers, key)
	}
	r.mu.Unlock()

	for _, w := range workers {
		w.Stop()
	}
}
