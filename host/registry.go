package host

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/aradilov/eventqueue"
)

var (
	ErrRegistryClosed = fmt.Errorf("registry closed")
	ErrNotRegistered  = fmt.Errorf("event type not registered")
)

// queue is the type-erased view of an *eventqueue.Events[T].
type queue interface {
	Name() string
	Swap()
	Close() error
	Stats() eventqueue.Stats
}

// TypeStats pairs a queue's statistics with its event type name.
type TypeStats struct {
	Name string
	eventqueue.Stats
}

// Registry keeps one queue per event type.
// All methods are safe for concurrent use, but Swap and Close still follow
// the cycle contract of the queues they touch.
type Registry struct {
	mu     sync.Mutex
	cfg    Config
	log    *Logger
	queues map[reflect.Type]queue
	order  []reflect.Type
	closed bool
}

// NewRegistry validates cfg and returns an empty registry.
// A nil logger disables logging.
func NewRegistry(cfg Config, logger *Logger) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		cfg:    cfg,
		log:    logger,
		queues: make(map[reflect.Type]queue),
	}, nil
}

// Config returns the configuration the registry was created with.
func (r *Registry) Config() Config {
	return r.cfg
}

// Events returns the queue for T, creating it on first use.
func Events[T any](r *Registry) (*eventqueue.Events[T], error) {
	key := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	if q, ok := r.queues[key]; ok {
		return q.(*eventqueue.Events[T]), nil
	}

	name := key.String()
	capacity := r.cfg.CapacityFor(name)
	e, err := eventqueue.New[T](capacity, eventqueue.WithName(name), eventqueue.WithLogger(r.log))
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	r.queues[key] = e
	r.order = append(r.order, key)

	r.log.Info().
		Str("events", name).
		Int("capacity", capacity).
		Log("events registered")

	return e, nil
}

// Lookup returns the queue for T without creating it.
func Lookup[T any](r *Registry) (*eventqueue.Events[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return q.(*eventqueue.Events[T]), true
}

// Writer returns a write handle for T's queue.
func Writer[T any](r *Registry) (eventqueue.Writer[T], error) {
	e, err := Events[T](r)
	if err != nil {
		return eventqueue.Writer[T]{}, err
	}
	return e.Writer(), nil
}

// Reader returns a new read handle for T's queue.
func Reader[T any](r *Registry) (eventqueue.Reader[T], error) {
	e, err := Events[T](r)
	if err != nil {
		return eventqueue.Reader[T]{}, err
	}
	return e.Reader(), nil
}

// EnsureCapacity reserves room for n events of type T per buffer.
// Must not be called while writers of T are active.
func EnsureCapacity[T any](r *Registry, n int) error {
	e, err := Events[T](r)
	if err != nil {
		return err
	}
	return e.EnsureCapacity(n)
}

// Remove closes T's queue and drops the registration.
func Remove[T any](r *Registry) error {
	key := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.queues[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}
	delete(r.queues, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.log.Info().Str("events", q.Name()).Log("events removed")
	return q.Close()
}

// Swap ends the cycle for every registered queue, in registration order.
func (r *Registry) Swap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range r.order {
		r.queues[key].Swap()
	}
}

// Len returns the number of registered event types.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Stats returns the statistics of every queue, in registration order.
func (r *Registry) Stats() []TypeStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := make([]TypeStats, 0, len(r.order))
	for _, key := range r.order {
		q := r.queues[key]
		stats = append(stats, TypeStats{Name: q.Name(), Stats: q.Stats()})
	}
	return stats
}

// Close closes every queue. Later lookups fail with ErrRegistryClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}
	r.closed = true

	var errs []error
	for _, key := range r.order {
		if err := r.queues[key].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key, err))
		}
	}
	r.log.Debug().Int("queues", len(r.order)).Log("registry closed")
	clear(r.queues)
	r.order = nil

	return errors.Join(errs...)
}
