package schema

// Kind is the primitive type of a schema field.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
}

var kindSizes = [...]uint32{
	KindBool:    1,
	KindInt8:    1,
	KindInt16:   2,
	KindInt32:   4,
	KindInt64:   8,
	KindFloat32: 4,
	KindFloat64: 8,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Valid reports whether k is one of the declared primitive kinds.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// Size returns the width in bytes. Every kind is naturally aligned, so this
// is also its alignment. Unknown kinds have size 0.
func (k Kind) Size() uint32 {
	if int(k) < len(kindSizes) {
		return kindSizes[k]
	}
	return 0
}

func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

func (k Kind) IsInteger() bool {
	return k >= KindInt8 && k <= KindInt64
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}
