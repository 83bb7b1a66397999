package tuple

import (
	"github.com/wippyai/fasttuple/accessor"
	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/layout"
	"github.com/wippyai/fasttuple/schema"
)

// Tuple is one record of a schema.
type Tuple struct {
	spec *accessor.Specialization
	data []byte
}

// Bind wraps existing storage. data must hold at least spec.Size() bytes;
// it is used in place, not copied.
func Bind(spec *accessor.Specialization, data []byte) (*Tuple, error) {
	if spec == nil {
		return nil, errors.NilPointer(errors.PhaseAlloc, "specialization")
	}
	if uint32(len(data)) < spec.Size() {
		return nil, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Detail("storage of %d bytes is shorter than tuple size %d", len(data), spec.Size()).
			Build()
	}
	return &Tuple{spec: spec, data: data[:spec.Size():spec.Size()]}, nil
}

func (t *Tuple) Schema() *schema.Schema {
	return t.spec.Schema()
}

func (t *Tuple) Layout() *layout.Layout {
	return t.spec.Layout()
}

func (t *Tuple) Specialization() *accessor.Specialization {
	return t.spec
}

// Bytes returns the tuple's backing storage, or nil once released.
func (t *Tuple) Bytes() []byte {
	return t.data
}

// Released reports whether the tuple's storage has been given back.
func (t *Tuple) Released() bool {
	return t.data == nil
}

// Detach drops the tuple's reference to its storage and returns it. Later
// accesses fail with a use-after-free error.
func (t *Tuple) Detach() []byte {
	d := t.data
	t.data = nil
	return d
}

func (t *Tuple) live(i int) error {
	if t.data != nil {
		return nil
	}
	name, err := t.spec.FieldName(i)
	if err != nil {
		name = ""
	}
	return errors.UseAfterFree(name)
}

func (t *Tuple) index(name string) (int, error) {
	i, err := t.spec.Index(name)
	if err != nil {
		return -1, err
	}
	if t.data == nil {
		return -1, errors.UseAfterFree(name)
	}
	return i, nil
}

// Reset zeroes every field.
func (t *Tuple) Reset() error {
	if t.data == nil {
		return errors.UseAfterFree("")
	}
	t.spec.Zero(t.data)
	return nil
}

// CopyFrom overwrites t with the field values of o. Both tuples must share
// a compatible layout.
func (t *Tuple) CopyFrom(o *Tuple) error {
	if o == nil {
		return errors.NilPointer(errors.PhaseAccess, "source tuple")
	}
	if t.data == nil || o.data == nil {
		return errors.UseAfterFree("")
	}
	if !t.spec.Compatible(o.spec) {
		return errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
			Declared(t.spec.Schema().String()).
			Requested(o.spec.Schema().String()).
			Detail("incompatible tuple layouts").
			Build()
	}
	copy(t.data, o.data[:t.spec.Size()])
	return nil
}

// Equal reports whether o has the same schema and field values. Floats
// compare by bit pattern. Released tuples are never equal.
func (t *Tuple) Equal(o *Tuple) bool {
	if o == nil || t.data == nil || o.data == nil {
		return false
	}
	if !t.spec.Schema().Equal(o.spec.Schema()) {
		return false
	}
	if t.spec.Compatible(o.spec) {
		return t.spec.Equal(t.data, o.data)
	}
	for i := 0; i < t.spec.FieldCount(); i++ {
		a, _ := t.spec.Value(t.data, i)
		b, _ := o.spec.Value(o.data, i)
		if !sameBits(a, b) {
			return false
		}
	}
	return true
}

// Hash is consistent with Equal for tuples of compatible layout.
func (t *Tuple) Hash() uint64 {
	return t.spec.Hash(t.data)
}

func (t *Tuple) String() string {
	return t.spec.Format(t.data)
}

// Value returns field i boxed in its Go type.
func (t *Tuple) Value(i int) (any, error) {
	if err := t.live(i); err != nil {
		return nil, err
	}
	return t.spec.Value(t.data, i)
}

// SetValue stores v into field i, converting numeric types when the value
// fits the field.
func (t *Tuple) SetValue(i int, v any) error {
	if err := t.live(i); err != nil {
		return err
	}
	return t.spec.SetValue(t.data, i, v)
}

func (t *Tuple) ValueByName(name string) (any, error) {
	i, err := t.index(name)
	if err != nil {
		return nil, err
	}
	return t.spec.Value(t.data, i)
}

func (t *Tuple) SetValueByName(name string, v any) error {
	i, err := t.index(name)
	if err != nil {
		return err
	}
	return t.spec.SetValue(t.data, i, v)
}
