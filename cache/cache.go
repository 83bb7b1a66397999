package cache

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/fasttuple/accessor"
	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/layout"
	"github.com/wippyai/fasttuple/schema"
)

// Config holds configuration for cache creation
type Config struct {
	// Logger receives build and eviction events. Nil uses the package logger.
	Logger *zap.Logger
	// Layout is used by GetOrBuild.
	Layout layout.Options
}

type Cache struct {
	logger  *zap.Logger
	calc    *layout.Calculator
	entries sync.Map // key -> *entry
	size    atomic.Int64
	builds  atomic.Int64
	opts    layout.Options
}

type key struct {
	schema string
	opts   layout.Options
}

// entry is published before it is built so that racing callers share one
// build.
type entry struct {
	once sync.Once
	spec *accessor.Specialization
}

// New creates a cache using packed layouts.
func New() *Cache {
	return NewWithConfig(nil)
}

// NewWithConfig creates a cache with custom configuration
func NewWithConfig(cfg *Config) *Cache {
	if cfg == nil {
		cfg = &Config{}
	}
	l := cfg.Logger
	if l == nil {
		l = Logger()
	}
	opts := cfg.Layout.Normalized()
	return &Cache{
		logger: l,
		calc:   layout.NewCalculator(opts),
		opts:   opts,
	}
}

// Options returns the layout options GetOrBuild uses.
func (c *Cache) Options() layout.Options {
	return c.opts
}

// GetOrBuild returns the specialization for s under the cache's default
// layout options.
func (c *Cache) GetOrBuild(s *schema.Schema) (*accessor.Specialization, error) {
	if s == nil {
		return nil, errors.NilPointer(errors.PhaseLayout, "schema")
	}
	return c.get(s, c.opts, c.calc), nil
}

// GetOrBuildWith returns the specialization for s under explicit options.
func (c *Cache) GetOrBuildWith(s *schema.Schema, opts layout.Options) (*accessor.Specialization, error) {
	if s == nil {
		return nil, errors.NilPointer(errors.PhaseLayout, "schema")
	}
	opts = opts.Normalized()
	if opts == c.opts {
		return c.get(s, opts, c.calc), nil
	}
	return c.get(s, opts, nil), nil
}

func (c *Cache) get(s *schema.Schema, opts layout.Options, calc *layout.Calculator) *accessor.Specialization {
	k := key{schema: s.Key(), opts: opts}
	if v, ok := c.entries.Load(k); ok {
		e := v.(*entry)
		e.once.Do(func() { c.build(e, s, opts, calc) })
		return e.spec
	}

	v, loaded := c.entries.LoadOrStore(k, &entry{})
	if !loaded {
		c.size.Add(1)
	}
	e := v.(*entry)
	e.once.Do(func() { c.build(e, s, opts, calc) })
	return e.spec
}

func (c *Cache) build(e *entry, s *schema.Schema, opts layout.Options, calc *layout.Calculator) {
	var l *layout.Layout
	if calc != nil {
		l = calc.Calculate(s)
	} else {
		l = layout.Compute(s, opts)
	}
	e.spec = accessor.Build(s, l)
	c.builds.Add(1)

	c.logger.Debug("specialization built",
		zap.Stringer("schema", s),
		zap.Stringer("strategy", opts.Strategy),
		zap.Uint32("size", l.Size),
		zap.Uint32("align", l.Align))
}

// Evict drops the entry for (s, opts). Specializations already handed out
// stay valid; the next lookup builds a fresh one.
func (c *Cache) Evict(s *schema.Schema, opts layout.Options) bool {
	if s == nil {
		return false
	}
	if _, ok := c.entries.LoadAndDelete(key{schema: s.Key(), opts: opts.Normalized()}); !ok {
		return false
	}
	c.size.Add(-1)
	c.logger.Debug("specialization evicted", zap.Stringer("schema", s))
	return true
}

// Purge drops every entry.
func (c *Cache) Purge() {
	var n int
	c.entries.Range(func(k, _ any) bool {
		if _, ok := c.entries.LoadAndDelete(k); ok {
			c.size.Add(-1)
			n++
		}
		return true
	})
	c.logger.Debug("cache purged", zap.Int("entries", n))
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	return int(c.size.Load())
}

// Builds returns how many specializations this cache has built.
func (c *Cache) Builds() int64 {
	return c.builds.Load()
}
