package schema

import (
	"fmt"

	"github.com/wippyai/fasttuple/errors"
)

// Builder accumulates field declarations in order. It is not safe for
// concurrent use.
type Builder struct {
	names  map[string]struct{}
	fields []Field
}

func NewBuilder() *Builder {
	return &Builder{
		names: make(map[string]struct{}),
	}
}

// AddField appends a field. It fails without modifying the builder if the
// name is empty, already declared, or the kind is not a known primitive.
func (b *Builder) AddField(name string, kind Kind) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseSchema, "field name cannot be empty")
	}
	if !kind.Valid() {
		return errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Field(name).
			Value(kind).
			Detail("unsupported field kind %d", uint8(kind)).
			Build()
	}
	if _, dup := b.names[name]; dup {
		return errors.DuplicateField(name)
	}

	b.names[name] = struct{}{}
	b.fields = append(b.fields, Field{Name: name, Kind: kind})
	return nil
}

// MustAdd is AddField for statically known schemas; it panics on error and
// returns the builder for chaining.
func (b *Builder) MustAdd(name string, kind Kind) *Builder {
	if err := b.AddField(name, kind); err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return b
}

// Len returns the number of fields declared so far.
func (b *Builder) Len() int {
	return len(b.fields)
}

// Build returns the immutable schema. The builder may keep being used;
// later additions do not affect schemas already built.
func (b *Builder) Build() (*Schema, error) {
	if len(b.fields) == 0 {
		return nil, errors.EmptySchema()
	}
	return newSchema(b.fields), nil
}

// MustBuild is Build for statically known schemas; it panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return s
}
