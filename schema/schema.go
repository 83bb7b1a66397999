package schema

import (
	"encoding/binary"
	"hash/fnv"
	"strings"

	"github.com/wippyai/fasttuple/errors"
)

// Field is a single named, primitively typed schema entry.
type Field struct {
	Name string
	Kind Kind
}

// Schema is an immutable, ordered set of uniquely named fields.
// Two schemas with the same ordered field list are equal and share a Key.
type Schema struct {
	index  map[string]int
	key    string
	fields []Field
	hash   uint64
}

// New builds a schema from fields in declaration order.
func New(fields ...Field) (*Schema, error) {
	b := NewBuilder()
	for _, f := range fields {
		if err := b.AddField(f.Name, f.Kind); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func newSchema(fields []Field) *Schema {
	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	var key []byte
	for i, f := range s.fields {
		s.index[f.Name] = i
		key = binary.AppendUvarint(key, uint64(len(f.Name)))
		key = append(key, f.Name...)
		key = append(key, byte(f.Kind))
	}
	s.key = string(key)

	h := fnv.New64a()
	_, _ = h.Write(key)
	s.hash = h.Sum64()
	return s
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Field returns the i'th field.
func (s *Schema) Field(i int) (Field, error) {
	if i < 0 || i >= len(s.fields) {
		return Field{}, errors.UnknownIndex(errors.PhaseSchema, i, len(s.fields))
	}
	return s.fields[i], nil
}

func (s *Schema) FieldName(i int) (string, error) {
	f, err := s.Field(i)
	return f.Name, err
}

func (s *Schema) FieldKind(i int) (Kind, error) {
	f, err := s.Field(i)
	return f.Kind, err
}

// Index returns the zero-based position of the named field.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Fields returns a copy of the field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Key is a canonical encoding of the ordered field list, usable as a map key.
func (s *Schema) Key() string {
	return s.key
}

func (s *Schema) Hash() uint64 {
	return s.hash
}

// Equal reports structural equality.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.key == other.key
}

// String renders the schema as ('name':kind,...).
func (s *Schema) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, f := range s.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('\'')
		b.WriteString(f.Name)
		b.WriteString("':")
		b.WriteString(f.Kind.String())
	}
	b.WriteByte(')')
	return b.String()
}
