package offheap

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fasttuple/cache"
	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/internal/abi"
	"github.com/wippyai/fasttuple/layout"
	"github.com/wippyai/fasttuple/pool"
	"github.com/wippyai/fasttuple/schema"
	"github.com/wippyai/fasttuple/tuple"
)

// FactoryConfig holds configuration for unmanaged factory creation
type FactoryConfig struct {
	// Logger receives leak reports. Nil uses the package logger.
	Logger *zap.Logger
	// Layout selects the layout strategy. MinAlign is raised to at least
	// eight bytes.
	Layout layout.Options
}

// Factory creates tuples whose storage lives in an Arena. Every tuple must
// be freed explicitly; the factory tracks live tuples so a double free or a
// free of a foreign tuple is reported instead of corrupting the arena.
type Factory struct {
	cache   *cache.Cache
	arena   Arena
	logger  *zap.Logger
	live    map[Handle]*Tuple
	batches map[Handle]*Batch
	opts    layout.Options
	mu      sync.Mutex
	// arenaGone is set once the arena has closed.
	arenaGone bool
}

// Tuple is a tuple backed by arena storage.
type Tuple struct {
	*tuple.Tuple
	factory *Factory
	block   Block
}

// Free releases the tuple's storage. A second call fails with a
// double-free error and accessors fail with use-after-free errors.
func (t *Tuple) Free() error {
	return t.factory.Free(t)
}

// Handle returns the arena handle of the tuple's block.
func (t *Tuple) Handle() Handle {
	return t.block.Handle
}

// Block returns the tuple's arena block.
func (t *Tuple) Block() Block {
	return t.block
}

// NewFactory creates an unmanaged factory. A nil cache gets a private one.
func NewFactory(c *cache.Cache, a Arena) *Factory {
	return NewFactoryWithConfig(c, a, nil)
}

// NewFactoryWithConfig creates an unmanaged factory with custom configuration
func NewFactoryWithConfig(c *cache.Cache, a Arena, cfg *FactoryConfig) *Factory {
	if c == nil {
		c = cache.New()
	}
	if cfg == nil {
		cfg = &FactoryConfig{Layout: c.Options()}
	}
	opts := cfg.Layout.Normalized()
	if opts.MinAlign < abi.WordAlign {
		opts.MinAlign = abi.WordAlign
	}
	logger := cfg.Logger
	if logger == nil {
		logger = Logger()
	}
	f := &Factory{
		cache:   c,
		arena:   a,
		logger:  logger,
		opts:    opts,
		live:    make(map[Handle]*Tuple),
		batches: make(map[Handle]*Batch),
	}
	if n, ok := a.(closeNotifier); ok {
		n.OnClose(f.arenaClosed)
	}
	return f
}

// closeNotifier is implemented by arenas that report their own Close, so
// tuples still live are detached before their memory goes away.
type closeNotifier interface {
	OnClose(fn func())
}

// arenaClosed detaches every live tuple. Their blocks are reported as a
// leak by the arena itself.
func (f *Factory) arenaClosed() {
	f.mu.Lock()
	tuples := f.live
	batches := f.batches
	f.live = make(map[Handle]*Tuple)
	f.batches = make(map[Handle]*Batch)
	f.arenaGone = true
	f.mu.Unlock()

	for _, t := range tuples {
		t.Detach()
	}
	for _, b := range batches {
		for _, t := range b.tuples {
			t.Detach()
		}
	}
	if n := len(tuples) + len(batches); n > 0 {
		f.logger.Warn("arena closed under live tuples",
			zap.Int("tuples", len(tuples)),
			zap.Int("batches", len(batches)))
	}
}

func (f *Factory) Arena() Arena {
	return f.arena
}

// Options returns the layout options unmanaged tuples are built with.
func (f *Factory) Options() layout.Options {
	return f.opts
}

// Live returns the number of tuples and batches not yet freed.
func (f *Factory) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live) + len(f.batches)
}

// Allocate returns a zeroed tuple of s.
func (f *Factory) Allocate(s *schema.Schema) (*Tuple, error) {
	if f.arena == nil {
		return nil, errors.NilPointer(errors.PhaseAlloc, "arena")
	}
	spec, err := f.cache.GetOrBuildWith(s, f.opts)
	if err != nil {
		return nil, err
	}
	blk, err := f.arena.Alloc(spec.Size(), spec.Layout().Align)
	if err != nil {
		return nil, err
	}
	tt, err := tuple.Bind(spec, blk.Data)
	if err != nil {
		return nil, multierr.Append(err, f.arena.Free(blk))
	}

	t := &Tuple{Tuple: tt, factory: f, block: blk}
	f.mu.Lock()
	f.live[blk.Handle] = t
	f.mu.Unlock()
	return t, nil
}

// Free releases t's storage.
func (f *Factory) Free(t *Tuple) error {
	if t == nil {
		return errors.NilPointer(errors.PhaseAlloc, "tuple")
	}
	f.mu.Lock()
	cur, ok := f.live[t.block.Handle]
	if !ok || cur != t {
		gone := f.arenaGone
		f.mu.Unlock()
		if gone && t.Released() {
			return errors.Closed(errors.PhaseAlloc, "arena")
		}
		return errors.DoubleFree("tuple")
	}
	delete(f.live, t.block.Handle)
	f.mu.Unlock()

	t.Detach()
	return f.arena.Free(t.block)
}

// With allocates a tuple of s, passes it to fn and frees it on every exit
// path, including a panic in fn.
func (f *Factory) With(s *schema.Schema, fn func(*tuple.Tuple) error) (err error) {
	t, err := f.Allocate(s)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Free(t))
	}()
	return fn(t.Tuple)
}

// AllocateArray returns n zeroed tuples of s in one contiguous block.
func (f *Factory) AllocateArray(s *schema.Schema, n int) (*Batch, error) {
	if f.arena == nil {
		return nil, errors.NilPointer(errors.PhaseAlloc, "arena")
	}
	if n <= 0 {
		return nil, errors.InvalidInput(errors.PhaseAlloc, "batch needs at least one tuple")
	}
	spec, err := f.cache.GetOrBuildWith(s, f.opts)
	if err != nil {
		return nil, err
	}
	size := spec.Size()
	total, ok := abi.SafeMulU32(size, uint32(n))
	if !ok || uint64(n) > uint64(^uint32(0)) {
		return nil, errors.New(errors.PhaseAlloc, errors.KindOverflow).
			Value(n).
			Detail("%d tuples of %d bytes overflow a single block", n, size).
			Build()
	}

	blk, err := f.arena.Alloc(total, spec.Layout().Align)
	if err != nil {
		return nil, err
	}
	b := &Batch{factory: f, block: blk, tuples: make([]*tuple.Tuple, n)}
	for i := range b.tuples {
		off := uint32(i) * size
		// Bind cannot fail: every slice holds exactly size bytes.
		b.tuples[i], _ = tuple.Bind(spec, blk.Data[off:off+size])
	}

	f.mu.Lock()
	f.batches[blk.Handle] = b
	f.mu.Unlock()
	return b, nil
}

func (f *Factory) freeBatch(b *Batch) error {
	f.mu.Lock()
	cur, ok := f.batches[b.block.Handle]
	if !ok || cur != b {
		gone := f.arenaGone
		f.mu.Unlock()
		if gone {
			return errors.Closed(errors.PhaseAlloc, "arena")
		}
		return errors.DoubleFree("batch")
	}
	delete(f.batches, b.block.Handle)
	f.mu.Unlock()

	for _, t := range b.tuples {
		t.Detach()
	}
	return f.arena.Free(b.block)
}

// NewPool creates a pool of tuples of s. Released tuples are zeroed before
// cfg.Reset runs; closing the pool frees every tuple it loaded.
func (f *Factory) NewPool(s *schema.Schema, cfg pool.Config[*Tuple]) (*pool.Pool[*Tuple], error) {
	if s == nil {
		return nil, errors.NilPointer(errors.PhasePool, "schema")
	}
	if _, err := f.cache.GetOrBuildWith(s, f.opts); err != nil {
		return nil, err
	}
	user := cfg.Reset
	cfg.Reset = func(t *Tuple) error {
		if err := t.Reset(); err != nil {
			return err
		}
		if user != nil {
			return user(t)
		}
		return nil
	}
	return pool.New[*Tuple](poolLoader{factory: f, schema: s}, cfg), nil
}

type poolLoader struct {
	factory *Factory
	schema  *schema.Schema
}

func (l poolLoader) Load(n int) ([]*Tuple, error) {
	out := make([]*Tuple, 0, n)
	for i := 0; i < n; i++ {
		t, err := l.factory.Allocate(l.schema)
		if err != nil {
			for _, done := range out {
				err = multierr.Append(err, done.Free())
			}
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (l poolLoader) Destroy(t *Tuple) error {
	return t.Free()
}

// Close frees every tuple and batch still live and reports them as a leak.
// It does not close the arena.
func (f *Factory) Close() error {
	f.mu.Lock()
	tuples := f.live
	batches := f.batches
	f.live = make(map[Handle]*Tuple)
	f.batches = make(map[Handle]*Batch)
	f.mu.Unlock()

	leaked := len(tuples) + len(batches)
	if leaked == 0 {
		return nil
	}

	err := error(errors.Leak(leaked))
	for _, t := range tuples {
		t.Detach()
		err = multierr.Append(err, f.arena.Free(t.block))
	}
	for _, b := range batches {
		for _, t := range b.tuples {
			t.Detach()
		}
		err = multierr.Append(err, f.arena.Free(b.block))
	}
	f.logger.Warn("unmanaged tuples leaked",
		zap.Int("tuples", len(tuples)),
		zap.Int("batches", len(batches)))
	return err
}
