package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/barnabasJ/ash-ai/internal/discovery"
	"github.com/barnabasJ/ash-ai/internal/dispatch"
	"github.com/barnabasJ/ash-ai/internal/host"
	"github.com/barnabasJ/ash-ai/internal/validation"
)

// Config is the configuration a server instance is started from.
type Config struct {
	Application string
	Domains     []host.Domain
	// Tools is the allow-list. Nil exposes every tool, empty exposes none.
	Tools             []string
	Invoker           host.Invoker
	ValidateArguments bool
	// Quiet disables per-call logging in the worker's dispatcher.
	Quiet bool
}

// Key returns the instance key for the configuration.
func (c Config) Key() Key {
	return Fingerprint(c.Application, c.Tools)
}

// Worker is one running server instance. It owns the cached tool set and
// the dispatcher serving it.
type Worker struct {
	id         string
	key        Key
	started    time.Time
	source     *discovery.CachedSource
	dispatcher *dispatch.Dispatcher

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func startWorker(key Key, cfg Config) *Worker {
	source := discovery.NewCachedSource(discovery.Catalog{Domains: cfg.Domains, Allow: cfg.Tools})

	var opts []dispatch.Option
	if cfg.ValidateArguments {
		opts = append(opts, dispatch.WithValidation(validation.New()))
	}
	if cfg.Quiet {
		opts = append(opts, dispatch.WithQuietMode())
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		id:         uuid.NewString(),
		key:        key,
		started:    time.Now(),
		source:     source,
		dispatcher: dispatch.New(source, cfg.Invoker, opts...),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go w.run(ctx)
	return w
}

// run holds no work of its own; it marks the worker alive until stopped.
func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	<-ctx.Done()
}

// ID returns the worker's unique identifier.
func (w *Worker) ID() string { return w.id }

// Key returns the instance key the worker was started for.
func (w *Worker) Key() Key { return w.key }

// Started returns when the worker was started.
func (w *Worker) Started() time.Time { return w.started }

// Dispatcher returns the worker's dispatcher.
func (w *Worker) Dispatcher() *dispatch.Dispatcher { return w.dispatcher }

// Tools returns the worker's active tool set, discovering it on first use.
func (w *Worker) Tools() ([]discovery.Tool, error) {
	return w.source.Tools()
}

// Alive reports whether the worker's run loop is still running.
func (w *Worker) Alive() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Done is closed once the worker has stopped.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Stop shuts the worker down and waits for its run loop to exit.
func (w *Worker) Stop() {
	w.stopOnce.Do(w.cancel)
	<-w.done
}
