package offheap

import "github.com/wippyai/fasttuple/tuple"

// Batch is a run of tuples sharing one arena block. The tuples are freed
// together.
type Batch struct {
	factory *Factory
	tuples  []*tuple.Tuple
	block   Block
}

func (b *Batch) Len() int {
	return len(b.tuples)
}

// At returns tuple i. It panics if i is out of range.
func (b *Batch) At(i int) *tuple.Tuple {
	return b.tuples[i]
}

// Tuples returns the batch's tuples in storage order.
func (b *Batch) Tuples() []*tuple.Tuple {
	return b.tuples
}

// Free releases the whole batch. Its tuples become unusable.
func (b *Batch) Free() error {
	return b.factory.freeBatch(b)
}
