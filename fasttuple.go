package fasttuple

import (
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fasttuple/cache"
	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/eval"
	"github.com/wippyai/fasttuple/layout"
	"github.com/wippyai/fasttuple/offheap"
	"github.com/wippyai/fasttuple/schema"
	"github.com/wippyai/fasttuple/tuple"
)

// Config holds configuration for New
type Config struct {
	// Logger is handed to the cache and the off-heap side. Nil keeps the
	// package loggers, which are no-ops unless set.
	Logger *zap.Logger
	// Arena backs off-heap tuples. Nil creates an mmap arena that Close
	// releases; a caller-supplied arena stays open.
	Arena offheap.Arena
	// MmapLimit caps the default arena's mapped bytes. Zero means no limit.
	MmapLimit int64
	// Layout selects the layout strategy for both factories.
	Layout layout.Options
	// PoolSize is the heap pool batch size. Zero uses pool.DefaultSize.
	PoolSize int
	// FixedPools stops heap pools from growing past one batch.
	FixedPools bool
}

// Tuples bundles one specialization cache with a heap and an off-heap
// factory sharing it.
type Tuples struct {
	Cache   *cache.Cache
	Heap    *tuple.Factory
	OffHeap *offheap.Factory

	logger    *zap.Logger
	ownsArena bool
	closed    atomic.Bool
}

// New wires a cache and both factories. A nil config uses defaults.
func New(cfg *Config) (*Tuples, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Layout.Strategy > layout.StrategyDeclared {
		return nil, errors.InvalidInput(errors.PhaseLayout, "unknown layout strategy "+cfg.Layout.Strategy.String())
	}
	if cfg.PoolSize < 0 {
		return nil, errors.InvalidInput(errors.PhasePool, "pool size must not be negative")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cache.NewWithConfig(&cache.Config{Logger: cfg.Logger, Layout: cfg.Layout})

	arena := cfg.Arena
	owns := false
	if arena == nil {
		arena = offheap.NewMmapArena(&offheap.MmapConfig{Logger: cfg.Logger, MaxBytes: cfg.MmapLimit})
		owns = true
	}

	t := &Tuples{
		Cache: c,
		Heap: tuple.NewFactoryWithConfig(c, &tuple.FactoryConfig{
			PoolSize:   cfg.PoolSize,
			FixedPools: cfg.FixedPools,
		}),
		OffHeap: offheap.NewFactoryWithConfig(c, arena, &offheap.FactoryConfig{
			Logger: cfg.Logger,
			Layout: cfg.Layout,
		}),
		logger:    logger,
		ownsArena: owns,
	}
	logger.Debug("tuples ready",
		zap.Stringer("strategy", c.Options().Strategy),
		zap.Bool("owns_arena", owns))
	return t, nil
}

// Compile compiles an expression over the fields of s.
func (t *Tuples) Compile(s *schema.Schema, source string) (*eval.Program, error) {
	return eval.Compile(s, source)
}

// Close frees live off-heap tuples, drains heap pools and, when New created
// the arena, releases it. Leaks are reported in the returned error.
func (t *Tuples) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := multierr.Combine(t.OffHeap.Close(), t.Heap.Close())
	if t.ownsArena {
		err = multierr.Append(err, t.OffHeap.Arena().Close())
	}
	if err != nil {
		t.logger.Warn("tuples closed with errors", zap.Error(err))
	}
	return err
}
