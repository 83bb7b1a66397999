package offheap

import (
	"go.uber.org/multierr"

	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/schema"
)

// Scope collects allocations so they can be freed together, typically
// with defer:
//
//	sc := f.NewScope()
//	defer sc.Close()
//
// A Scope is not safe for concurrent use.
type Scope struct {
	factory *Factory
	tuples  []*Tuple
	batches []*Batch
	closed  bool
}

func (f *Factory) NewScope() *Scope {
	return &Scope{factory: f}
}

// Allocate allocates a tuple owned by the scope. Tuples freed early are
// skipped on Close.
func (s *Scope) Allocate(sch *schema.Schema) (*Tuple, error) {
	if s.closed {
		return nil, errors.Closed(errors.PhaseAlloc, "scope")
	}
	t, err := s.factory.Allocate(sch)
	if err != nil {
		return nil, err
	}
	s.tuples = append(s.tuples, t)
	return t, nil
}

// AllocateArray allocates a batch owned by the scope.
func (s *Scope) AllocateArray(sch *schema.Schema, n int) (*Batch, error) {
	if s.closed {
		return nil, errors.Closed(errors.PhaseAlloc, "scope")
	}
	b, err := s.factory.AllocateArray(sch, n)
	if err != nil {
		return nil, err
	}
	s.batches = append(s.batches, b)
	return b, nil
}

// Close frees everything the scope still owns, newest first, and combines
// the failures.
func (s *Scope) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	for i := len(s.batches) - 1; i >= 0; i-- {
		b := s.batches[i]
		if len(b.tuples) > 0 && b.tuples[0].Released() {
			continue
		}
		err = multierr.Append(err, b.Free())
	}
	for i := len(s.tuples) - 1; i >= 0; i-- {
		t := s.tuples[i]
		if t.Released() {
			continue
		}
		err = multierr.Append(err, t.Free())
	}
	s.tuples, s.batches = nil, nil
	return err
}
