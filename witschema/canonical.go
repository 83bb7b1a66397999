package witschema

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/internal/abi"
	"github.com/wippyai/fasttuple/layout"
)

// RecordLayout is the canonical ABI placement of a record's fields.
type RecordLayout struct {
	Offsets map[string]uint32
	Size    uint32
	Align   uint32
}

// Canonical computes the canonical ABI layout of a primitive record.
func Canonical(t wit.Type) (RecordLayout, error) {
	rec, err := record(t)
	if err != nil {
		return RecordLayout{}, err
	}

	rl := RecordLayout{Offsets: make(map[string]uint32, len(rec.Fields)), Align: 1}
	offset := uint32(0)
	for _, f := range rec.Fields {
		size, ok := primitiveSize(f.Type)
		if !ok {
			return RecordLayout{}, errors.Unsupported(errors.PhaseInterop, "record field "+f.Name+" of type "+typeName(f.Type))
		}
		offset = abi.AlignTo(offset, size)
		rl.Offsets[f.Name] = offset
		if size > rl.Align {
			rl.Align = size
		}
		offset += size
	}
	rl.Size = abi.AlignTo(offset, rl.Align)
	return rl, nil
}

// primitiveSize reports the size of a scalar; scalars are aligned to their
// size in the canonical ABI.
func primitiveSize(t wit.Type) (uint32, bool) {
	switch t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return 1, true
	case wit.U16, wit.S16:
		return 2, true
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return 4, true
	case wit.U64, wit.S64, wit.F64:
		return 8, true
	default:
		return 0, false
	}
}

// Matches reports whether l places every field where the canonical ABI
// does.
func (rl RecordLayout) Matches(l *layout.Layout) bool {
	if l.Size != rl.Size || len(l.Slots) != len(rl.Offsets) {
		return false
	}
	for _, s := range l.Slots {
		if off, ok := rl.Offsets[s.Name]; !ok || off != s.Offset {
			return false
		}
	}
	return true
}
