package pool

import (
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/fasttuple/errors"
)

// DefaultSize is the batch size used when Config.Size is not positive.
const DefaultSize = 16

// Loader produces and destroys pooled items.
type Loader[T any] interface {
	// Load returns n fresh items.
	Load(n int) ([]T, error)
	// Destroy releases an item's resources when the pool closes.
	Destroy(item T) error
}

// LoaderFuncs adapts a pair of functions to Loader. A nil DestroyFunc
// makes Destroy a no-op.
type LoaderFuncs[T any] struct {
	LoadFunc    func(n int) ([]T, error)
	DestroyFunc func(item T) error
}

func (l LoaderFuncs[T]) Load(n int) ([]T, error) {
	return l.LoadFunc(n)
}

func (l LoaderFuncs[T]) Destroy(item T) error {
	if l.DestroyFunc == nil {
		return nil
	}
	return l.DestroyFunc(item)
}

// Config holds configuration for pool creation
type Config[T any] struct {
	// Init runs on every checkout.
	Init func(T)
	// Reset runs on every release. An error fails the release and the
	// item stays checked out.
	Reset func(T) error
	// Size is the number of items loaded per batch.
	Size int
	// Expand allows loading another batch when the pool runs dry.
	Expand bool
}

// Pool is safe for concurrent use.
type Pool[T comparable] struct {
	loader Loader[T]
	out    map[T]bool // checked out; true while a release is resetting it
	cfg    Config[T]
	free   []T
	loaded []T
	mu     sync.Mutex
	closed bool
}

func New[T comparable](loader Loader[T], cfg Config[T]) *Pool[T] {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	return &Pool[T]{
		loader: loader,
		cfg:    cfg,
		out:    make(map[T]bool),
	}
}

// Checkout takes an item from the pool, loading a batch if the pool is
// empty and allowed to grow.
func (p *Pool[T]) Checkout() (T, error) {
	var zero T

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, errors.Closed(errors.PhasePool, "pool")
	}
	if len(p.free) == 0 {
		if len(p.loaded) > 0 && !p.cfg.Expand {
			p.mu.Unlock()
			return zero, errors.New(errors.PhasePool, errors.KindPoolExhausted).
				Detail("all %d items are checked out", len(p.loaded)).
				Build()
		}
		if err := p.loadLocked(); err != nil {
			p.mu.Unlock()
			return zero, err
		}
	}

	n := len(p.free) - 1
	item := p.free[n]
	p.free[n] = zero
	p.free = p.free[:n]
	p.out[item] = false
	p.mu.Unlock()

	if p.cfg.Init != nil {
		p.cfg.Init(item)
	}
	return item, nil
}

func (p *Pool[T]) loadLocked() error {
	batch, err := p.loader.Load(p.cfg.Size)
	if err != nil {
		return errors.Wrap(errors.PhasePool, errors.KindAllocation, err, "loading pool batch")
	}
	if len(batch) == 0 {
		return errors.New(errors.PhasePool, errors.KindAllocation).
			Detail("loader returned an empty batch").
			Build()
	}
	p.loaded = append(p.loaded, batch...)
	p.free = append(p.free, batch...)
	return nil
}

// Release returns a checked-out item. Releasing an item twice, or one the
// pool never handed out, fails with a double-free error. If Reset fails the
// item stays checked out and the error is returned.
func (p *Pool[T]) Release(item T) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.Closed(errors.PhasePool, "pool")
	}
	if resetting, ok := p.out[item]; !ok || resetting {
		p.mu.Unlock()
		return errors.New(errors.PhasePool, errors.KindDoubleFree).
			Detail("item is not checked out from this pool").
			Build()
	}
	p.out[item] = true
	p.mu.Unlock()

	// Reset runs before the item is visible to other checkouts. The item
	// stays in out meanwhile, so Close leaves it alone.
	var err error
	if p.cfg.Reset != nil {
		err = p.cfg.Reset(item)
	}

	p.mu.Lock()
	if p.closed {
		delete(p.out, item)
		p.mu.Unlock()
		return multierr.Combine(err, p.loader.Destroy(item))
	}
	if err != nil {
		p.out[item] = false
		p.mu.Unlock()
		return err
	}
	delete(p.out, item)
	p.free = append(p.free, item)
	p.mu.Unlock()
	return nil
}

// Size returns the number of items loaded so far.
func (p *Pool[T]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loaded)
}

// Available returns the number of items ready for checkout without loading.
func (p *Pool[T]) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Outstanding returns the number of items currently checked out.
func (p *Pool[T]) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.out)
}

// Close destroys every loaded item. Items in the middle of a release are
// destroyed by that release. Later checkouts and releases fail.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	doomed := make([]T, 0, len(p.loaded))
	resetting := make(map[T]bool)
	for _, item := range p.loaded {
		if p.out[item] {
			resetting[item] = true
			continue
		}
		doomed = append(doomed, item)
	}
	p.loaded, p.free, p.out = nil, nil, resetting
	p.mu.Unlock()

	var err error
	for _, item := range doomed {
		err = multierr.Append(err, p.loader.Destroy(item))
	}
	return err
}
