package layout

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/wippyai/fasttuple/internal/abi"
	"github.com/wippyai/fasttuple/schema"
)

// Strategy selects the order in which fields are placed.
type Strategy uint8

const (
	// StrategyPacked places fields from widest to narrowest, keeping
	// declaration order among equal widths.
	StrategyPacked Strategy = iota
	// StrategyDeclared places fields in declaration order, matching the
	// canonical ABI record layout.
	StrategyDeclared
)

func (s Strategy) String() string {
	switch s {
	case StrategyPacked:
		return "packed"
	case StrategyDeclared:
		return "declared"
	default:
		return "unknown"
	}
}

// Options parameterize layout computation. The zero value is the packed
// strategy with natural alignment.
type Options struct {
	// MinAlign raises the alignment the total size is rounded to. Values
	// that are not a power of two are rounded up to one.
	MinAlign uint32
	Strategy Strategy
}

// Normalized returns the canonical form of o; options with equal canonical
// forms produce identical layouts.
func (o Options) Normalized() Options {
	if o.MinAlign <= 1 {
		o.MinAlign = 1
		return o
	}
	if !abi.IsPowerOfTwo(o.MinAlign) {
		o.MinAlign = 1 << bits.Len32(o.MinAlign)
	}
	return o
}

// Calculator computes layouts for schemas under fixed options.
type Calculator struct {
	opts Options
}

func NewCalculator(opts Options) *Calculator {
	return &Calculator{opts: opts.Normalized()}
}

// Compute is shorthand for NewCalculator(opts).Calculate(s).
func Compute(s *schema.Schema, opts Options) *Layout {
	return NewCalculator(opts).Calculate(s)
}

// Calculate assigns every field an offset. It never fails for a schema
// produced by the schema package; a violated invariant panics.
func (c *Calculator) Calculate(s *schema.Schema) *Layout {
	fields := s.Fields()

	order := make([]int, len(fields))
	for i := range order {
		order[i] = i
	}
	if c.opts.Strategy == StrategyPacked {
		slices.SortStableFunc(order, func(a, b int) int {
			sa, sb := fields[a].Kind.Size(), fields[b].Kind.Size()
			switch {
			case sa > sb:
				return -1
			case sa < sb:
				return 1
			default:
				return 0
			}
		})
	}

	slots := make([]Slot, len(fields))
	maxAlign := uint32(1)
	offset := uint32(0)

	for _, idx := range order {
		f := fields[idx]
		size := f.Kind.Size()

		offset = abi.AlignTo(offset, size)
		slots[idx] = Slot{
			Name:   f.Name,
			Kind:   f.Kind,
			Offset: offset,
			Size:   size,
		}

		if size > maxAlign {
			maxAlign = size
		}
		offset += size
	}

	if c.opts.MinAlign > maxAlign {
		maxAlign = c.opts.MinAlign
	}

	l := &Layout{
		Slots:   slots,
		Order:   order,
		Size:    abi.AlignTo(offset, maxAlign),
		Align:   maxAlign,
		Options: c.opts,
		byName:  make(map[string]int, len(slots)),
	}
	for i, slot := range slots {
		l.byName[slot.Name] = i
	}

	if err := l.check(); err != nil {
		panic(fmt.Sprintf("layout: %v", err))
	}
	return l
}

// check verifies the structural invariants of a computed layout.
func (l *Layout) check() error {
	var sum uint32
	var prevEnd uint32
	for _, idx := range l.Order {
		slot := l.Slots[idx]
		if slot.Size == 0 {
			return fmt.Errorf("field %q has zero width", slot.Name)
		}
		if slot.Offset%slot.Size != 0 {
			return fmt.Errorf("field %q at offset %d is not %d-aligned", slot.Name, slot.Offset, slot.Size)
		}
		if slot.Offset < prevEnd {
			return fmt.Errorf("field %q at offset %d overlaps previous field ending at %d", slot.Name, slot.Offset, prevEnd)
		}
		prevEnd = slot.Offset + slot.Size
		sum += slot.Size
	}
	if prevEnd > l.Size || sum > l.Size {
		return fmt.Errorf("total size %d smaller than fields (%d)", l.Size, sum)
	}
	if l.Size%l.Align != 0 {
		return fmt.Errorf("total size %d is not a multiple of alignment %d", l.Size, l.Align)
	}
	return nil
}
