package booksite

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent pages; browser tabs cost ~50MB each.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for external commands and Chrome.
	cpuDivisor = 2
)

// errPoolClosed is returned by acquire after close.
var errPoolClosed = errors.New("pool closed")

// pool hands out up to size reusable items. Items are created lazily on
// first acquire to avoid startup delay.
type pool[T any] struct {
	size    int
	create  func(context.Context) (T, error)
	destroy func(T) error
	items   []T
	sem     chan T
	mu      sync.Mutex
	created int
	closed  bool
}

func newPool[T any](n int, create func(context.Context) (T, error), destroy func(T) error) *pool[T] {
	if n < 1 {
		n = 1
	}
	return &pool[T]{
		size:    n,
		create:  create,
		destroy: destroy,
		items:   make([]T, 0, n),
		sem:     make(chan T, n),
	}
}

// acquire gets an idle item, creating one if the pool is not full.
// Blocks while all items are in use.
func (p *pool[T]) acquire(ctx context.Context) (T, error) {
	var zero T

	select {
	case it, ok := <-p.sem:
		if !ok {
			return zero, errPoolClosed
		}
		return it, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, errPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock
		it, err := p.create(ctx)
		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.created--
			return zero, err
		}
		p.items = append(p.items, it)
		return it, nil
	}
	p.mu.Unlock()

	select {
	case it, ok := <-p.sem:
		if !ok {
			return zero, errPoolClosed
		}
		return it, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// release returns an item to the pool.
// The lock is released before sending to avoid deadlock when channel is full.
func (p *pool[T]) release(it T) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.sem <- it
}

// close destroys every created item.
// Returns an aggregated error if several fail.
func (p *pool[T]) close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	items := p.items
	p.mu.Unlock()

	var errs []error
	for _, it := range items {
		if err := p.destroy(it); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResolvePoolSize determines the worker count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
