package accessor

import (
	"encoding/binary"

	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/layout"
	"github.com/wippyai/fasttuple/schema"
)

// Specialization binds every field of a layout to kind-specific load and
// store functions. It holds no tuple state and is safe for concurrent use;
// every tuple of the schema shares one.
type Specialization struct {
	schema *schema.Schema
	layout *layout.Layout
	index  map[string]int
	slots  []slot
	size   uint32
}

type slot struct {
	load  func(b []byte) uint64
	store func(b []byte, v uint64)
	name  string
	off   uint32
	end   uint32
	kind  schema.Kind
}

// Build specializes a layout. The layout must have been computed from s.
func Build(s *schema.Schema, l *layout.Layout) *Specialization {
	sp := &Specialization{
		schema: s,
		layout: l,
		index:  make(map[string]int, len(l.Slots)),
		slots:  make([]slot, len(l.Slots)),
		size:   l.Size,
	}

	for i, ls := range l.Slots {
		load, store := rawAccess(ls.Size)
		if ls.Kind == schema.KindBool {
			load = loadBool
		}
		sp.slots[i] = slot{
			name:  ls.Name,
			kind:  ls.Kind,
			off:   ls.Offset,
			end:   ls.End(),
			load:  load,
			store: store,
		}
		sp.index[ls.Name] = i
	}
	return sp
}

// rawAccess selects the width-specific bit copy for a field. Integers are
// sign-agnostic at this level; typed accessors reinterpret the bits.
func rawAccess(width uint32) (func([]byte) uint64, func([]byte, uint64)) {
	switch width {
	case 1:
		return func(b []byte) uint64 { return uint64(b[0]) },
			func(b []byte, v uint64) { b[0] = byte(v) }
	case 2:
		return func(b []byte) uint64 { return uint64(binary.LittleEndian.Uint16(b)) },
			func(b []byte, v uint64) { binary.LittleEndian.PutUint16(b, uint16(v)) }
	case 4:
		return func(b []byte) uint64 { return uint64(binary.LittleEndian.Uint32(b)) },
			func(b []byte, v uint64) { binary.LittleEndian.PutUint32(b, uint32(v)) }
	case 8:
		return binary.LittleEndian.Uint64, binary.LittleEndian.PutUint64
	default:
		panic("accessor: unsupported field width")
	}
}

// loadBool reads any non-zero byte as true.
func loadBool(b []byte) uint64 {
	if b[0] != 0 {
		return 1
	}
	return 0
}

func (sp *Specialization) Schema() *schema.Schema {
	return sp.schema
}

func (sp *Specialization) Layout() *layout.Layout {
	return sp.layout
}

// Size returns the number of bytes a tuple of this specialization occupies.
func (sp *Specialization) Size() uint32 {
	return sp.size
}

func (sp *Specialization) FieldCount() int {
	return len(sp.slots)
}

func (sp *Specialization) FieldName(i int) (string, error) {
	if i < 0 || i >= len(sp.slots) {
		return "", errors.UnknownIndex(errors.PhaseAccess, i, len(sp.slots))
	}
	return sp.slots[i].name, nil
}

func (sp *Specialization) FieldKind(i int) (schema.Kind, error) {
	if i < 0 || i >= len(sp.slots) {
		return 0, errors.UnknownIndex(errors.PhaseAccess, i, len(sp.slots))
	}
	return sp.slots[i].kind, nil
}

// Index resolves a field name to its zero-based index.
func (sp *Specialization) Index(name string) (int, error) {
	i, ok := sp.index[name]
	if !ok {
		return -1, errors.UnknownField(errors.PhaseAccess, name)
	}
	return i, nil
}

// Compatible reports whether buffers of o can be read through sp.
func (sp *Specialization) Compatible(o *Specialization) bool {
	if sp == o {
		return true
	}
	if o == nil || !sp.schema.Equal(o.schema) || sp.size != o.size {
		return false
	}
	for i := range sp.slots {
		if sp.slots[i].off != o.slots[i].off {
			return false
		}
	}
	return true
}

// field resolves index i for an access of kind want against buffer b.
func (sp *Specialization) field(b []byte, i int, want schema.Kind) (*slot, error) {
	if i < 0 || i >= len(sp.slots) {
		return nil, errors.UnknownIndex(errors.PhaseAccess, i, len(sp.slots))
	}
	s := &sp.slots[i]
	if s.kind != want {
		return nil, errors.TypeMismatch(errors.PhaseAccess, s.name, s.kind.String(), want.String())
	}
	if uint32(len(b)) < sp.size {
		return nil, shortBuffer(len(b), sp.size)
	}
	return s, nil
}

func shortBuffer(have int, want uint32) *errors.Error {
	return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
		Detail("buffer of %d bytes is shorter than tuple size %d", have, want).
		Build()
}

// Zero clears a tuple buffer.
func (sp *Specialization) Zero(b []byte) {
	clear(b[:sp.size])
}
