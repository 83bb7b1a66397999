package accessor

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/internal/abi"
	"github.com/wippyai/fasttuple/schema"
)

// Equal compares two tuple buffers field by field. Floats compare by bit
// pattern, so identical NaNs are equal and +0 differs from -0; padding is
// ignored.
func (sp *Specialization) Equal(a, b []byte) bool {
	if uint32(len(a)) < sp.size || uint32(len(b)) < sp.size {
		return false
	}
	for i := range sp.slots {
		s := &sp.slots[i]
		if s.load(a[s.off:s.end]) != s.load(b[s.off:s.end]) {
			return false
		}
	}
	return true
}

// Hash combines per-field hashes in declaration order. It is consistent
// with Equal.
func (sp *Specialization) Hash(b []byte) uint64 {
	h := uint64(1)
	if uint32(len(b)) < sp.size {
		return h
	}
	for i := range sp.slots {
		s := &sp.slots[i]
		v := s.load(b[s.off:s.end])
		h = 31*h + (v ^ v>>32)
	}
	return h
}

// Format renders (name=value, ...) in declaration order.
func (sp *Specialization) Format(b []byte) string {
	if uint32(len(b)) < sp.size {
		return "(released)"
	}
	var out strings.Builder
	out.WriteByte('(')
	for i := range sp.slots {
		s := &sp.slots[i]
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(s.name)
		out.WriteByte('=')
		out.WriteString(formatBits(s.kind, s.load(b[s.off:s.end])))
	}
	out.WriteByte(')')
	return out.String()
}

func formatBits(k schema.Kind, v uint64) string {
	switch k {
	case schema.KindBool:
		return strconv.FormatBool(v != 0)
	case schema.KindInt8:
		return strconv.FormatInt(int64(int8(v)), 10)
	case schema.KindInt16:
		return strconv.FormatInt(int64(int16(v)), 10)
	case schema.KindInt32:
		return strconv.FormatInt(int64(int32(v)), 10)
	case schema.KindInt64:
		return strconv.FormatInt(int64(v), 10)
	case schema.KindFloat32:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(v))), 'g', -1, 32)
	case schema.KindFloat64:
		return strconv.FormatFloat(math.Float64frombits(v), 'g', -1, 64)
	default:
		return "?"
	}
}

// Value returns field i boxed in its Go type. It allocates and is meant for
// diagnostics and expression evaluation, not hot paths.
func (sp *Specialization) Value(b []byte, i int) (any, error) {
	if i < 0 || i >= len(sp.slots) {
		return nil, errors.UnknownIndex(errors.PhaseAccess, i, len(sp.slots))
	}
	if uint32(len(b)) < sp.size {
		return nil, shortBuffer(len(b), sp.size)
	}
	s := &sp.slots[i]
	v := s.load(b[s.off:s.end])
	switch s.kind {
	case schema.KindBool:
		return v != 0, nil
	case schema.KindInt8:
		return int8(v), nil
	case schema.KindInt16:
		return int16(v), nil
	case schema.KindInt32:
		return int32(v), nil
	case schema.KindInt64:
		return int64(v), nil
	case schema.KindFloat32:
		return math.Float32frombits(uint32(v)), nil
	default:
		return math.Float64frombits(v), nil
	}
}

// SetValue stores a boxed Go value into field i, converting between numeric
// types when the value fits.
func (sp *Specialization) SetValue(b []byte, i int, v any) error {
	if i < 0 || i >= len(sp.slots) {
		return errors.UnknownIndex(errors.PhaseAccess, i, len(sp.slots))
	}
	if uint32(len(b)) < sp.size {
		return shortBuffer(len(b), sp.size)
	}
	s := &sp.slots[i]
	raw, err := toBits(s, v)
	if err != nil {
		return err
	}
	s.store(b[s.off:s.end], raw)
	return nil
}

func toBits(s *slot, v any) (uint64, error) {
	switch s.kind {
	case schema.KindBool:
		bv, ok := v.(bool)
		if !ok {
			return 0, mismatch(s, v)
		}
		if bv {
			return 1, nil
		}
		return 0, nil

	case schema.KindFloat32, schema.KindFloat64:
		f, ok := asFloat(v)
		if !ok {
			return 0, mismatch(s, v)
		}
		if s.kind == schema.KindFloat64 {
			return math.Float64bits(f), nil
		}
		if f32 := float32(f); !math.IsInf(f, 0) && math.IsInf(float64(f32), 0) {
			return 0, errors.Overflow(errors.PhaseAccess, s.name, v, s.kind.String())
		}
		if f32, ok := v.(float32); ok {
			return uint64(math.Float32bits(f32)), nil
		}
		return uint64(math.Float32bits(float32(f))), nil

	default:
		n, ok, fits := asInt(v)
		if !ok {
			return 0, mismatch(s, v)
		}
		if !fits {
			return 0, errors.Overflow(errors.PhaseAccess, s.name, v, s.kind.String())
		}
		bitsWide := s.kind.Size() * 8
		if bitsWide < 64 {
			lo, hi := -int64(1)<<(bitsWide-1), int64(1)<<(bitsWide-1)-1
			if n < lo || n > hi {
				return 0, errors.Overflow(errors.PhaseAccess, s.name, v, s.kind.String())
			}
		}
		return uint64(n), nil
	}
}

func mismatch(s *slot, v any) *errors.Error {
	return errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
		Field(s.name).
		Declared(s.kind.String()).
		Requested(abi.TypeName(v)).
		Build()
}

// asInt converts any Go integer. fits is false for unsigned values above
// math.MaxInt64.
func asInt(v any) (n int64, ok, fits bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true, true
	case int8:
		return int64(x), true, true
	case int16:
		return int64(x), true, true
	case int32:
		return int64(x), true, true
	case int64:
		return x, true, true
	case uint8:
		return int64(x), true, true
	case uint16:
		return int64(x), true, true
	case uint32:
		return int64(x), true, true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, true, false
		}
		return int64(x), true, true
	case uint64:
		if x > math.MaxInt64 {
			return 0, true, false
		}
		return int64(x), true, true
	default:
		return 0, false, false
	}
}

func asFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	case uint:
		return float64(f), true
	case uint64:
		return float64(f), true
	default:
		if n, ok, _ := asInt(v); ok {
			return float64(n), true
		}
		return 0, false
	}
}
