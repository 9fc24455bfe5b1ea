package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zlovtnik/docgov/internal/governance/domain"
)

// Event is handed to subscribers after a transition has been committed
type Event struct {
	// ID is assigned once at publish time and stays the same across retries
	ID         string
	Transition domain.Transition
	Document   domain.Document
}

// Subscriber reacts to committed transitions. Errors are retried and then
// logged, they never affect the transition itself.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, ev Event) error
}

// DispatcherConfig tunes the post-commit dispatcher
type DispatcherConfig struct {
	Workers        int
	QueueSize      int
	MaxAttempts    int
	RetryDelay     time.Duration
	HandlerTimeout time.Duration
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = 10 * time.Second
	}
	return c
}

// Dispatcher delivers events to subscribers on a bounded pool of workers.
// Publish never blocks; when the queue is full the event is dropped.
type Dispatcher struct {
	cfg         DispatcherConfig
	subscribers []Subscriber
	logger      *slog.Logger

	queue  chan Event
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Call Start before publishing.
func NewDispatcher(cfg DispatcherConfig, logger *slog.Logger, subscribers ...Subscriber) *Dispatcher {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cfg:         cfg,
		subscribers: subscribers,
		logger:      logger,
		queue:       make(chan Event, cfg.QueueSize),
	}
}

// Start launches the workers. They run until Stop is called; ctx only
// bounds retries and handler calls.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for ev := range d.queue {
				d.deliver(ctx, ev)
			}
		}()
	}
}

// Publish enqueues ev and reports whether it was accepted
func (d *Dispatcher) Publish(ev Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	select {
	case d.queue <- ev:
		return true
	default:
		dispatchDroppedTotal.Inc()
		d.logger.Warn("dispatch queue full, dropping event",
			"document_id", ev.Transition.DocumentID.String(),
			"action", string(ev.Transition.Action),
		)
		return false
	}
}

// Stop stops accepting events and waits for queued ones to be delivered
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	for _, sub := range d.subscribers {
		var err error
		for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
			if err = d.call(ctx, sub, ev); err == nil {
				break
			}
			if attempt == d.cfg.MaxAttempts {
				break
			}
			select {
			case <-ctx.Done():
				attempt = d.cfg.MaxAttempts
			case <-time.After(d.cfg.RetryDelay * time.Duration(attempt)):
			}
		}
		if err != nil {
			dispatchFailuresTotal.WithLabelValues(sub.Name()).Inc()
			d.logger.Error("post-commit side effect failed",
				"subscriber", sub.Name(),
				"document_id", ev.Transition.DocumentID.String(),
				"action", string(ev.Transition.Action),
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) call(ctx context.Context, sub Subscriber, ev Event) (err error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.HandlerTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return sub.Handle(ctx, ev)
}

type panicError struct {
	value interface{}
}

func (p panicError) Error() string {
	return "subscriber panic: " + slog.AnyValue(p.value).String()
}
