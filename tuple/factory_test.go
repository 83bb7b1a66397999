package tuple

import (
	"testing"

	"github.com/wippyai/fasttuple/cache"
	"github.com/wippyai/fasttuple/errors"
)

func TestFactorySharesCache(t *testing.T) {
	c := cache.New()
	f := NewFactory(c)
	if f.Cache() != c {
		t.Fatal("factory should use the given cache")
	}

	a, _ := f.Create(exampleSchema())
	b, _ := f.Create(exampleSchema())
	if a.Specialization() != b.Specialization() {
		t.Error("tuples of one schema share a specialization")
	}
	if c.Builds() != 1 {
		t.Errorf("builds = %d, want 1", c.Builds())
	}
}

func TestCreateNilSchema(t *testing.T) {
	if _, err := NewFactory(nil).Create(nil); !errors.Is(err, errors.ErrNilPointer) {
		t.Errorf("Create(nil): %v", err)
	}
}

func TestCreateArray(t *testing.T) {
	f := NewFactory(nil)
	tuples, err := f.CreateArray(exampleSchema(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(tuples) != 4 {
		t.Fatalf("len = %d", len(tuples))
	}
	for i, tp := range tuples {
		if err := tp.SetInt64(1, int64(i)); err != nil {
			t.Fatal(err)
		}
	}
	for i, tp := range tuples {
		if v, _ := tp.Int64(1); v != int64(i) {
			t.Errorf("tuple %d id = %d", i, v)
		}
		if cap(tp.Bytes()) != 16 {
			t.Errorf("tuple %d can reach past its slot", i)
		}
	}

	empty, err := f.CreateArray(exampleSchema(), 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("CreateArray(0) = %d, %v", len(empty), err)
	}
	if _, err := f.CreateArray(exampleSchema(), -1); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("CreateArray(-1): %v", err)
	}
	if _, err := f.CreateArray(exampleSchema(), 1<<30); !errors.Is(err, errors.ErrOverflow) {
		t.Errorf("CreateArray(1<<30): %v", err)
	}
}

func TestAcquireRelease(t *testing.T) {
	f := NewFactoryWithConfig(nil, &FactoryConfig{PoolSize: 2})
	s := exampleSchema()

	tp, err := f.Acquire(s)
	if err != nil {
		t.Fatal(err)
	}
	_ = tp.SetInt64(1, 77)
	if err := f.Release(tp); err != nil {
		t.Fatal(err)
	}
	if v, _ := tp.Int64(1); v != 0 {
		t.Errorf("released tuple should be zeroed, id = %d", v)
	}
	if err := f.Release(tp); !errors.Is(err, errors.ErrDoubleFree) {
		t.Errorf("second Release: %v", err)
	}

	again, err := f.Acquire(s)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := again.Int64(1); v != 0 {
		t.Errorf("acquired tuple id = %d", v)
	}

	stray, _ := f.Create(exampleSchema())
	if err := f.Release(stray); !errors.Is(err, errors.ErrDoubleFree) {
		t.Errorf("Release of a created tuple: %v", err)
	}
	if err := f.Release(nil); !errors.Is(err, errors.ErrNilPointer) {
		t.Errorf("Release(nil): %v", err)
	}
}

func TestReleaseDetached(t *testing.T) {
	f := NewFactoryWithConfig(nil, &FactoryConfig{PoolSize: 1, FixedPools: true})
	s := exampleSchema()

	tp, err := f.Acquire(s)
	if err != nil {
		t.Fatal(err)
	}
	tp.Detach()
	if err := f.Release(tp); !errors.Is(err, errors.ErrUseAfterFree) {
		t.Errorf("Release of a detached tuple: %v", err)
	}
	if _, err := f.Acquire(s); !errors.Is(err, errors.ErrPoolExhausted) {
		t.Errorf("a failed release must not return the tuple to the pool: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPoolSurvivesEviction(t *testing.T) {
	c := cache.New()
	f := NewFactoryWithConfig(c, &FactoryConfig{PoolSize: 2})
	s := exampleSchema()

	first, err := f.Acquire(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Release(first); err != nil {
		t.Fatal(err)
	}

	c.Purge()
	again, err := f.Acquire(s)
	if err != nil {
		t.Fatal(err)
	}
	if again != first {
		t.Error("after a purge Acquire should reuse the existing pool")
	}
	if n := f.Pools(); n != 1 {
		t.Errorf("pools = %d, want 1", n)
	}
	if err := f.Release(again); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Acquire(nil); !errors.Is(err, errors.ErrNilPointer) {
		t.Errorf("Acquire(nil): %v", err)
	}
}

func TestAcquireFixedPool(t *testing.T) {
	f := NewFactoryWithConfig(nil, &FactoryConfig{PoolSize: 1, FixedPools: true})
	s := exampleSchema()

	first, err := f.Acquire(s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Acquire(s); !errors.Is(err, errors.ErrPoolExhausted) {
		t.Errorf("second Acquire: %v", err)
	}
	if err := f.Release(first); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Acquire(s); err != nil {
		t.Errorf("Acquire after release: %v", err)
	}
}

func TestFactoryClose(t *testing.T) {
	f := NewFactory(nil)
	tp, err := f.Acquire(exampleSchema())
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if !tp.Released() {
		t.Error("closing the factory detaches pooled tuples")
	}
	if err := f.Release(tp); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Release after Close: %v", err)
	}
}
