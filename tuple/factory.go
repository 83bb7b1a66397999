package tuple

import (
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/fasttuple/accessor"
	"github.com/wippyai/fasttuple/cache"
	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/internal/abi"
	"github.com/wippyai/fasttuple/pool"
	"github.com/wippyai/fasttuple/schema"
)

// FactoryConfig holds configuration for heap factory creation
type FactoryConfig struct {
	// PoolSize is the per-schema pool batch size. Zero uses pool.DefaultSize.
	PoolSize int
	// FixedPools stops pools from growing past one batch; an exhausted
	// pool then fails Acquire.
	FixedPools bool
}

// Factory creates tuples backed by garbage-collected memory.
type Factory struct {
	cache *cache.Cache
	pools sync.Map // schema key -> *pool.Pool[*Tuple]
	cfg   FactoryConfig
}

// NewFactory creates a heap factory over c. A nil cache gets a private one.
func NewFactory(c *cache.Cache) *Factory {
	return NewFactoryWithConfig(c, nil)
}

// NewFactoryWithConfig creates a heap factory with custom configuration
func NewFactoryWithConfig(c *cache.Cache, cfg *FactoryConfig) *Factory {
	if c == nil {
		c = cache.New()
	}
	if cfg == nil {
		cfg = &FactoryConfig{}
	}
	return &Factory{cache: c, cfg: *cfg}
}

func (f *Factory) Cache() *cache.Cache {
	return f.cache
}

// Create returns a zeroed tuple of s.
func (f *Factory) Create(s *schema.Schema) (*Tuple, error) {
	spec, err := f.cache.GetOrBuild(s)
	if err != nil {
		return nil, err
	}
	return &Tuple{spec: spec, data: make([]byte, spec.Size())}, nil
}

// CreateArray returns n zeroed tuples sharing one contiguous allocation.
func (f *Factory) CreateArray(s *schema.Schema, n int) ([]*Tuple, error) {
	spec, err := f.cache.GetOrBuild(s)
	if err != nil {
		return nil, err
	}
	return carve(spec, n)
}

func carve(spec *accessor.Specialization, n int) ([]*Tuple, error) {
	if n < 0 {
		return nil, errors.InvalidInput(errors.PhaseAlloc, "tuple count cannot be negative")
	}
	size := spec.Size()
	total, ok := abi.SafeMulU32(size, uint32(n))
	if !ok || uint64(n) > uint64(^uint32(0)) {
		return nil, errors.New(errors.PhaseAlloc, errors.KindOverflow).
			Value(n).
			Detail("%d tuples of %d bytes overflow a single allocation", n, size).
			Build()
	}

	buf := make([]byte, total)
	out := make([]*Tuple, n)
	for i := range out {
		off := uint32(i) * size
		out[i] = &Tuple{spec: spec, data: buf[off : off+size : off+size]}
	}
	return out, nil
}

// Acquire checks a zeroed tuple out of the schema's pool.
func (f *Factory) Acquire(s *schema.Schema) (*Tuple, error) {
	if s == nil {
		return nil, errors.NilPointer(errors.PhasePool, "schema")
	}
	p, err := f.poolFor(s)
	if err != nil {
		return nil, err
	}
	return p.Checkout()
}

// Release zeroes t and returns it to its pool. A released (detached) tuple
// fails with a use-after-free error and stays checked out.
func (f *Factory) Release(t *Tuple) error {
	if t == nil {
		return errors.NilPointer(errors.PhasePool, "tuple")
	}
	p, ok := f.pools.Load(t.spec.Schema().Key())
	if !ok {
		return errors.InvalidInput(errors.PhasePool, "tuple was not acquired from this factory")
	}
	return p.(*pool.Pool[*Tuple]).Release(t)
}

// poolFor returns the pool for s. Pools are keyed by schema, so evicting a
// specialization from the cache does not orphan a pool; pooled tuples keep
// the specialization they were carved with.
func (f *Factory) poolFor(s *schema.Schema) (*pool.Pool[*Tuple], error) {
	key := s.Key()
	if p, ok := f.pools.Load(key); ok {
		return p.(*pool.Pool[*Tuple]), nil
	}
	spec, err := f.cache.GetOrBuild(s)
	if err != nil {
		return nil, err
	}
	p, _ := f.pools.LoadOrStore(key, pool.New[*Tuple](heapLoader{spec: spec}, pool.Config[*Tuple]{
		Size:   f.cfg.PoolSize,
		Expand: !f.cfg.FixedPools,
		Reset:  (*Tuple).Reset,
	}))
	return p.(*pool.Pool[*Tuple]), nil
}

// Pools returns the number of per-schema pools.
func (f *Factory) Pools() int {
	n := 0
	f.pools.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// Close closes every pool; pooled tuples are detached.
func (f *Factory) Close() error {
	var err error
	f.pools.Range(func(k, v any) bool {
		f.pools.Delete(k)
		err = multierr.Append(err, v.(*pool.Pool[*Tuple]).Close())
		return true
	})
	return err
}

type heapLoader struct {
	spec *accessor.Specialization
}

func (l heapLoader) Load(n int) ([]*Tuple, error) {
	return carve(l.spec, n)
}

func (l heapLoader) Destroy(t *Tuple) error {
	t.Detach()
	return nil
}
