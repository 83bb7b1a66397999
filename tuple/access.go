package tuple

// Typed accessors. Each fails with a type-mismatch error when the field was
// declared with a different kind, and with a use-after-free error once the
// tuple is released.

func (t *Tuple) Bool(i int) (bool, error) {
	if err := t.live(i); err != nil {
		return false, err
	}
	return t.spec.Bool(t.data, i)
}

func (t *Tuple) SetBool(i int, v bool) error {
	if err := t.live(i); err != nil {
		return err
	}
	return t.spec.SetBool(t.data, i, v)
}

func (t *Tuple) BoolByName(name string) (bool, error) {
	i, err := t.index(name)
	if err != nil {
		return false, err
	}
	return t.spec.Bool(t.data, i)
}

func (t *Tuple) SetBoolByName(name string, v bool) error {
	i, err := t.index(name)
	if err != nil {
		return err
	}
	return t.spec.SetBool(t.data, i, v)
}

func (t *Tuple) Int8(i int) (int8, error) {
	if err := t.live(i); err != nil {
		return 0, err
	}
	return t.spec.Int8(t.data, i)
}

func (t *Tuple) SetInt8(i int, v int8) error {
	if err := t.live(i); err != nil {
		return err
	}
	return t.spec.SetInt8(t.data, i, v)
}

func (t *Tuple) Int8ByName(name string) (int8, error) {
	i, err := t.index(name)
	if err != nil {
		return 0, err
	}
	return t.spec.Int8(t.data, i)
}

func (t *Tuple) SetInt8ByName(name string, v int8) error {
	i, err := t.index(name)
	if err != nil {
		return err
	}
	return t.spec.SetInt8(t.data, i, v)
}

func (t *Tuple) Int16(i int) (int16, error) {
	if err := t.live(i); err != nil {
		return 0, err
	}
	return t.spec.Int16(t.data, i)
}

func (t *Tuple) SetInt16(i int, v int16) error {
	if err := t.live(i); err != nil {
		return err
	}
	return t.spec.SetInt16(t.data, i, v)
}

func (t *Tuple) Int16ByName(name string) (int16, error) {
	i, err := t.index(name)
	if err != nil {
		return 0, err
	}
	return t.spec.Int16(t.data, i)
}

func (t *Tuple) SetInt16ByName(name string, v int16) error {
	i, err := t.index(name)
	if err != nil {
		return err
	}
	return t.spec.SetInt16(t.data, i, v)
}

func (t *Tuple) Int32(i int) (int32, error) {
	if err := t.live(i); err != nil {
		return 0, err
	}
	return t.spec.Int32(t.data, i)
}

func (t *Tuple) SetInt32(i int, v int32) error {
	if err := t.live(i); err != nil {
		return err
	}
	return t.spec.SetInt32(t.data, i, v)
}

func (t *Tuple) Int32ByName(name string) (int32, error) {
	i, err := t.index(name)
	if err != nil {
		return 0, err
	}
	return t.spec.Int32(t.data, i)
}

func (t *Tuple) SetInt32ByName(name string, v int32) error {
	i, err := t.index(name)
	if err != nil {
		return err
	}
	return t.spec.SetInt32(t.data, i, v)
}

func (t *Tuple) Int64(i int) (int64, error) {
	if err := t.live(i); err != nil {
		return 0, err
	}
	return t.spec.Int64(t.data, i)
}

func (t *Tuple) SetInt64(i int, v int64) error {
	if err := t.live(i); err != nil {
		return err
	}
	return t.spec.SetInt64(t.data, i, v)
}

func (t *Tuple) Int64ByName(name string) (int64, error) {
	i, err := t.index(name)
	if err != nil {
		return 0, err
	}
	return t.spec.Int64(t.data, i)
}

func (t *Tuple) SetInt64ByName(name string, v int64) error {
	i, err := t.index(name)
	if err != nil {
		return err
	}
	return t.spec.SetInt64(t.data, i, v)
}

func (t *Tuple) Float32(i int) (float32, error) {
	if err := t.live(i); err != nil {
		return 0, err
	}
	return t.spec.Float32(t.data, i)
}

func (t *Tuple) SetFloat32(i int, v float32) error {
	if err := t.live(i); err != nil {
		return err
	}
	return t.spec.SetFloat32(t.data, i, v)
}

func (t *Tuple) Float32ByName(name string) (float32, error) {
	i, err := t.index(name)
	if err != nil {
		return 0, err
	}
	return t.spec.Float32(t.data, i)
}

func (t *Tuple) SetFloat32ByName(name string, v float32) error {
	i, err := t.index(name)
	if err != nil {
		return err
	}
	return t.spec.SetFloat32(t.data, i, v)
}

func (t *Tuple) Float64(i int) (float64, error) {
	if err := t.live(i); err != nil {
		return 0, err
	}
	return t.spec.Float64(t.data, i)
}

func (t *Tuple) SetFloat64(i int, v float64) error {
	if err := t.live(i); err != nil {
		return err
	}
	return t.spec.SetFloat64(t.data, i, v)
}

func (t *Tuple) Float64ByName(name string) (float64, error) {
	i, err := t.index(name)
	if err != nil {
		return 0, err
	}
	return t.spec.Float64(t.data, i)
}

func (t *Tuple) SetFloat64ByName(name string, v float64) error {
	i, err := t.index(name)
	if err != nil {
		return err
	}
	return t.spec.SetFloat64(t.data, i, v)
}
