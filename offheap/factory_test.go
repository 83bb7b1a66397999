package offheap

import (
	"context"
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/wippyai/fasttuple/cache"
	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/layout"
	"github.com/wippyai/fasttuple/pool"
	"github.com/wippyai/fasttuple/schema"
	"github.com/wippyai/fasttuple/tuple"
)

func exampleSchema() *schema.Schema {
	return schema.NewBuilder().
		MustAdd("flag", schema.KindBool).
		MustAdd("id", schema.KindInt64).
		MustAdd("score", schema.KindFloat32).
		MustBuild()
}

func newFactory(t *testing.T) *Factory {
	t.Helper()
	a := NewMmapArena(nil)
	t.Cleanup(func() { _ = a.Close() })
	return NewFactory(cache.New(), a)
}

func TestAllocateExample(t *testing.T) {
	f := newFactory(t)
	tp, err := f.Allocate(exampleSchema())
	require.NoError(t, err)

	require.NoError(t, tp.SetInt64ByName("id", 42))
	require.NoError(t, tp.SetFloat32ByName("score", 3.5))
	require.NoError(t, tp.SetBoolByName("flag", true))

	id, err := tp.Int64(1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	score, err := tp.Float32(2)
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), score)
	flag, err := tp.Bool(0)
	require.NoError(t, err)
	assert.True(t, flag)

	assert.Equal(t, uint32(16), tp.Layout().Size)
	assert.Equal(t, uint32(8), tp.Layout().Align)
	assert.Equal(t, 1, f.Arena().Live())

	require.NoError(t, tp.Free())
	assert.Equal(t, 0, f.Arena().Live())
	assert.Equal(t, 0, f.Live())
}

func TestAllocateMinAlign(t *testing.T) {
	f := newFactory(t)
	s := schema.NewBuilder().MustAdd("a", schema.KindInt16).MustAdd("b", schema.KindBool).MustBuild()

	tp, err := f.Allocate(s)
	require.NoError(t, err)
	defer tp.Free()

	assert.Equal(t, uint32(8), tp.Layout().Size, "unmanaged tuples round to eight bytes")
	assert.Equal(t, uint32(8), f.Options().MinAlign)

	heap, err := tuple.NewFactory(f.cache).Create(s)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), heap.Layout().Size, "managed tuples keep natural size")
}

func TestDoubleFree(t *testing.T) {
	f := newFactory(t)
	tp, err := f.Allocate(exampleSchema())
	require.NoError(t, err)

	require.NoError(t, tp.Free())
	assert.ErrorIs(t, tp.Free(), errors.ErrDoubleFree)
	assert.ErrorIs(t, f.Free(nil), errors.ErrNilPointer)

	other := newFactory(t)
	foreign, err := other.Allocate(exampleSchema())
	require.NoError(t, err)
	assert.ErrorIs(t, f.Free(foreign), errors.ErrDoubleFree)
	require.NoError(t, foreign.Free())
}

func TestUseAfterFree(t *testing.T) {
	f := newFactory(t)
	tp, err := f.Allocate(exampleSchema())
	require.NoError(t, err)
	require.NoError(t, tp.Free())

	_, err = tp.Int64(1)
	assert.ErrorIs(t, err, errors.ErrUseAfterFree)
	assert.ErrorIs(t, tp.SetInt64ByName("id", 1), errors.ErrUseAfterFree)
	_, err = tp.Float32ByName("score")
	assert.ErrorIs(t, err, errors.ErrUseAfterFree)
	assert.True(t, tp.Released())
}

func TestFreedStorageIsReusedZeroed(t *testing.T) {
	f := newFactory(t)
	s := exampleSchema()

	first, err := f.Allocate(s)
	require.NoError(t, err)
	require.NoError(t, first.SetInt64(1, math.MaxInt64))
	require.NoError(t, first.Free())

	second, err := f.Allocate(s)
	require.NoError(t, err)
	defer second.Free()
	id, err := second.Int64(1)
	require.NoError(t, err)
	assert.Zero(t, id)

	_, err = first.Int64(1)
	assert.ErrorIs(t, err, errors.ErrUseAfterFree, "stale tuple must not see the new occupant")
}

func TestWith(t *testing.T) {
	f := newFactory(t)
	s := exampleSchema()

	var seen *tuple.Tuple
	err := f.With(s, func(tp *tuple.Tuple) error {
		seen = tp
		return tp.SetInt64ByName("id", 7)
	})
	require.NoError(t, err)
	assert.True(t, seen.Released())
	assert.Equal(t, 0, f.Live())

	boom := stderrors.New("boom")
	err = f.With(s, func(*tuple.Tuple) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, f.Live())

	assert.Panics(t, func() {
		_ = f.With(s, func(*tuple.Tuple) error { panic("fail") })
	})
	assert.Equal(t, 0, f.Live(), "tuple is freed when fn panics")
	assert.Equal(t, 0, f.Arena().Live())
}

func TestScope(t *testing.T) {
	f := newFactory(t)
	s := exampleSchema()

	sc := f.NewScope()
	a, err := sc.Allocate(s)
	require.NoError(t, err)
	_, err = sc.Allocate(s)
	require.NoError(t, err)
	batch, err := sc.AllocateArray(s, 3)
	require.NoError(t, err)
	require.NoError(t, a.Free(), "early frees are allowed")
	assert.Equal(t, 2, f.Live())

	require.NoError(t, sc.Close())
	assert.Equal(t, 0, f.Live())
	assert.True(t, batch.At(0).Released())
	require.NoError(t, sc.Close())

	_, err = sc.Allocate(s)
	assert.ErrorIs(t, err, errors.ErrClosed)
}

func TestScopeCombinesErrors(t *testing.T) {
	a := NewMmapArena(nil)
	f := NewFactory(nil, a)
	sc := f.NewScope()
	_, err := sc.Allocate(exampleSchema())
	require.NoError(t, err)
	_, err = sc.Allocate(exampleSchema())
	require.NoError(t, err)

	_ = a.Close()
	err = sc.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrClosed)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestAllocateArray(t *testing.T) {
	f := newFactory(t)
	s := exampleSchema()

	b, err := f.AllocateArray(s, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 1, f.Arena().Live(), "a batch is one block")

	for i := 0; i < b.Len(); i++ {
		require.NoError(t, b.At(i).SetInt64(1, int64(i*10)))
	}
	for i, tp := range b.Tuples() {
		v, err := tp.Int64(1)
		require.NoError(t, err)
		assert.Equal(t, int64(i*10), v)
	}

	require.NoError(t, b.Free())
	assert.ErrorIs(t, b.Free(), errors.ErrDoubleFree)
	_, err = b.At(2).Int64(1)
	assert.ErrorIs(t, err, errors.ErrUseAfterFree)

	_, err = f.AllocateArray(s, 0)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestAllocationFailure(t *testing.T) {
	a, err := NewWasmArena(context.Background(), &WasmConfig{Pages: 1})
	require.NoError(t, err)
	defer a.Close()
	f := NewFactory(nil, a)

	// 16 byte tuples; the page minus the reserved word holds 4095 of them.
	_, err = f.AllocateArray(exampleSchema(), 4095)
	require.NoError(t, err)
	_, err = f.Allocate(exampleSchema())
	assert.ErrorIs(t, err, errors.ErrAllocation)
}

func TestNilArenaAndSchema(t *testing.T) {
	f := NewFactory(nil, nil)
	_, err := f.Allocate(exampleSchema())
	assert.ErrorIs(t, err, errors.ErrNilPointer)

	g := newFactory(t)
	_, err = g.Allocate(nil)
	assert.ErrorIs(t, err, errors.ErrNilPointer)
	_, err = g.NewPool(nil, pool.Config[*Tuple]{})
	assert.ErrorIs(t, err, errors.ErrNilPointer)
}

func TestFactoryPool(t *testing.T) {
	f := newFactory(t)
	s := exampleSchema()

	resets := 0
	p, err := f.NewPool(s, pool.Config[*Tuple]{
		Size:  2,
		Reset: func(*Tuple) error { resets++; return nil },
	})
	require.NoError(t, err)

	tp, err := p.Checkout()
	require.NoError(t, err)
	assert.Equal(t, 2, f.Live(), "a batch of two tuples is preallocated")

	require.NoError(t, tp.SetInt64(1, 5))
	require.NoError(t, p.Release(tp))
	assert.Equal(t, 1, resets)
	id, err := tp.Int64(1)
	require.NoError(t, err)
	assert.Zero(t, id, "released tuples are zeroed")

	_, err = p.Checkout()
	require.NoError(t, err)
	_, err = p.Checkout()
	require.NoError(t, err)
	_, err = p.Checkout()
	assert.ErrorIs(t, err, errors.ErrPoolExhausted)

	require.NoError(t, p.Close())
	assert.Equal(t, 0, f.Live())
	assert.Equal(t, 0, f.Arena().Live())
}

func TestFactoryPoolReleaseDetached(t *testing.T) {
	f := newFactory(t)
	p, err := f.NewPool(exampleSchema(), pool.Config[*Tuple]{Size: 1})
	require.NoError(t, err)

	tp, err := p.Checkout()
	require.NoError(t, err)
	tp.Detach()

	assert.ErrorIs(t, p.Release(tp), errors.ErrUseAfterFree)
	assert.Equal(t, 1, p.Outstanding(), "a failed release keeps the tuple checked out")
	require.NoError(t, p.Close())
}

func TestArenaCloseDetachesLiveTuples(t *testing.T) {
	for _, ac := range arenas() {
		t.Run(ac.name, func(t *testing.T) {
			a := ac.make(t)
			f := NewFactory(nil, a)
			s := exampleSchema()

			tp, err := f.Allocate(s)
			require.NoError(t, err)
			require.NoError(t, tp.SetInt64(1, 7))
			b, err := f.AllocateArray(s, 2)
			require.NoError(t, err)

			require.ErrorIs(t, a.Close(), errors.ErrLeak)

			assert.True(t, tp.Released())
			_, err = tp.Int64(1)
			assert.ErrorIs(t, err, errors.ErrUseAfterFree)
			_, err = b.At(0).Int64ByName("id")
			assert.ErrorIs(t, err, errors.ErrUseAfterFree)
			assert.Equal(t, 0, f.Live())

			assert.ErrorIs(t, tp.Free(), errors.ErrClosed)
			assert.ErrorIs(t, b.Free(), errors.ErrClosed)
			_, err = f.Allocate(s)
			assert.ErrorIs(t, err, errors.ErrClosed)
			assert.NoError(t, f.Close())
		})
	}
}

func TestFactoryCloseReportsLeaks(t *testing.T) {
	f := newFactory(t)
	s := exampleSchema()

	tp, err := f.Allocate(s)
	require.NoError(t, err)
	_, err = f.AllocateArray(s, 2)
	require.NoError(t, err)

	err = f.Close()
	require.ErrorIs(t, err, errors.ErrLeak)
	assert.True(t, tp.Released())
	assert.Equal(t, 0, f.Arena().Live())
	assert.NoError(t, f.Close())
}

func TestDeclaredLayoutFactory(t *testing.T) {
	a := NewMmapArena(nil)
	defer a.Close()
	f := NewFactoryWithConfig(nil, a, &FactoryConfig{
		Layout: layout.Options{Strategy: layout.StrategyDeclared},
	})

	tp, err := f.Allocate(exampleSchema())
	require.NoError(t, err)
	defer tp.Free()

	off, ok := tp.Layout().Offset("id")
	require.True(t, ok)
	assert.Equal(t, uint32(8), off)
	assert.Equal(t, uint32(24), tp.Layout().Size)
}
