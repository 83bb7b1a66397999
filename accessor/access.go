package accessor

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/fasttuple/schema"
)

func (sp *Specialization) Bool(b []byte, i int) (bool, error) {
	s, err := sp.field(b, i, schema.KindBool)
	if err != nil {
		return false, err
	}
	return b[s.off] != 0, nil
}

func (sp *Specialization) SetBool(b []byte, i int, v bool) error {
	s, err := sp.field(b, i, schema.KindBool)
	if err != nil {
		return err
	}
	if v {
		b[s.off] = 1
	} else {
		b[s.off] = 0
	}
	return nil
}

func (sp *Specialization) Int8(b []byte, i int) (int8, error) {
	s, err := sp.field(b, i, schema.KindInt8)
	if err != nil {
		return 0, err
	}
	return int8(b[s.off]), nil
}

func (sp *Specialization) SetInt8(b []byte, i int, v int8) error {
	s, err := sp.field(b, i, schema.KindInt8)
	if err != nil {
		return err
	}
	b[s.off] = byte(v)
	return nil
}

func (sp *Specialization) Int16(b []byte, i int) (int16, error) {
	s, err := sp.field(b, i, schema.KindInt16)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b[s.off:s.end])), nil
}

func (sp *Specialization) SetInt16(b []byte, i int, v int16) error {
	s, err := sp.field(b, i, schema.KindInt16)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b[s.off:s.end], uint16(v))
	return nil
}

func (sp *Specialization) Int32(b []byte, i int) (int32, error) {
	s, err := sp.field(b, i, schema.KindInt32)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b[s.off:s.end])), nil
}

func (sp *Specialization) SetInt32(b []byte, i int, v int32) error {
	s, err := sp.field(b, i, schema.KindInt32)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b[s.off:s.end], uint32(v))
	return nil
}

func (sp *Specialization) Int64(b []byte, i int) (int64, error) {
	s, err := sp.field(b, i, schema.KindInt64)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[s.off:s.end])), nil
}

func (sp *Specialization) SetInt64(b []byte, i int, v int64) error {
	s, err := sp.field(b, i, schema.KindInt64)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b[s.off:s.end], uint64(v))
	return nil
}

// Float32 reinterprets the stored bits; NaN payloads survive a round trip.
func (sp *Specialization) Float32(b []byte, i int) (float32, error) {
	s, err := sp.field(b, i, schema.KindFloat32)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b[s.off:s.end])), nil
}

func (sp *Specialization) SetFloat32(b []byte, i int, v float32) error {
	s, err := sp.field(b, i, schema.KindFloat32)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b[s.off:s.end], math.Float32bits(v))
	return nil
}

func (sp *Specialization) Float64(b []byte, i int) (float64, error) {
	s, err := sp.field(b, i, schema.KindFloat64)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[s.off:s.end])), nil
}

func (sp *Specialization) SetFloat64(b []byte, i int, v float64) error {
	s, err := sp.field(b, i, schema.KindFloat64)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b[s.off:s.end], math.Float64bits(v))
	return nil
}
