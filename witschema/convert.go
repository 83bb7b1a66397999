package witschema

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/internal/abi"
	"github.com/wippyai/fasttuple/layout"
	"github.com/wippyai/fasttuple/schema"
)

// CanonicalOptions lay tuples out as canonical ABI records.
var CanonicalOptions = layout.Options{Strategy: layout.StrategyDeclared}

// TypeOf returns the WIT primitive for a field kind.
func TypeOf(k schema.Kind) (wit.Type, bool) {
	switch k {
	case schema.KindBool:
		return wit.Bool{}, true
	case schema.KindInt8:
		return wit.S8{}, true
	case schema.KindInt16:
		return wit.S16{}, true
	case schema.KindInt32:
		return wit.S32{}, true
	case schema.KindInt64:
		return wit.S64{}, true
	case schema.KindFloat32:
		return wit.F32{}, true
	case schema.KindFloat64:
		return wit.F64{}, true
	default:
		return nil, false
	}
}

// KindOf returns the field kind for a WIT primitive. Unsigned integers,
// char and string have no kind.
func KindOf(t wit.Type) (schema.Kind, bool) {
	switch t.(type) {
	case wit.Bool:
		return schema.KindBool, true
	case wit.S8:
		return schema.KindInt8, true
	case wit.S16:
		return schema.KindInt16, true
	case wit.S32:
		return schema.KindInt32, true
	case wit.S64:
		return schema.KindInt64, true
	case wit.F32:
		return schema.KindFloat32, true
	case wit.F64:
		return schema.KindFloat64, true
	default:
		return 0, false
	}
}

// ToWIT describes s as a record type named name. An empty name leaves the
// record anonymous.
func ToWIT(s *schema.Schema, name string) *wit.TypeDef {
	fields := s.Fields()
	rec := &wit.Record{Fields: make([]wit.Field, len(fields))}
	for i, f := range fields {
		t, _ := TypeOf(f.Kind)
		rec.Fields[i] = wit.Field{Name: f.Name, Type: t}
	}
	td := &wit.TypeDef{Kind: rec}
	if name != "" {
		td.Name = &name
	}
	return td
}

// FromWIT builds a schema from a record type. Type aliases are followed.
func FromWIT(t wit.Type) (*schema.Schema, error) {
	rec, err := record(t)
	if err != nil {
		return nil, err
	}

	b := schema.NewBuilder()
	for _, f := range rec.Fields {
		k, ok := KindOf(f.Type)
		if !ok {
			return nil, errors.New(errors.PhaseInterop, errors.KindUnsupported).
				Field(f.Name).
				Requested(typeName(f.Type)).
				Detail("record fields must be bool, s8, s16, s32, s64, f32 or f64").
				Build()
		}
		if err := b.AddField(f.Name, k); err != nil {
			return nil, errors.Wrap(errors.PhaseInterop, errors.KindInvalidInput, err, "record field "+f.Name)
		}
	}
	s, err := b.Build()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInterop, errors.KindEmptySchema, err, "record has no fields")
	}
	return s, nil
}

func record(t wit.Type) (*wit.Record, error) {
	for depth := 0; depth < 32; depth++ {
		td, ok := t.(*wit.TypeDef)
		if !ok || td == nil {
			break
		}
		switch kind := td.Kind.(type) {
		case *wit.Record:
			return kind, nil
		case wit.Type:
			t = kind
			continue
		}
		break
	}
	return nil, errors.New(errors.PhaseInterop, errors.KindUnsupported).
		Requested(typeName(t)).
		Detail("only record types convert to schemas").
		Build()
}

func typeName(t wit.Type) string {
	if t == nil {
		return "nil"
	}
	if td, ok := t.(*wit.TypeDef); ok && td != nil {
		if td.Name != nil {
			return *td.Name
		}
		return "anonymous " + kindName(td.Kind)
	}
	switch t.(type) {
	case wit.U8:
		return "u8"
	case wit.U16:
		return "u16"
	case wit.U32:
		return "u32"
	case wit.U64:
		return "u64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	}
	if k, ok := KindOf(t); ok {
		return primitiveNames[k]
	}
	return abi.TypeName(t)
}

var primitiveNames = map[schema.Kind]string{
	schema.KindBool:    "bool",
	schema.KindInt8:    "s8",
	schema.KindInt16:   "s16",
	schema.KindInt32:   "s32",
	schema.KindInt64:   "s64",
	schema.KindFloat32: "f32",
	schema.KindFloat64: "f64",
}

func kindName(k wit.TypeDefKind) string {
	switch k.(type) {
	case *wit.Record:
		return "record"
	case *wit.Variant:
		return "variant"
	case *wit.Enum:
		return "enum"
	case *wit.List:
		return "list"
	case *wit.Option:
		return "option"
	case *wit.Result:
		return "result"
	case *wit.Tuple:
		return "tuple"
	case *wit.Flags:
		return "flags"
	default:
		return "type"
	}
}
