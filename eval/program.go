package eval

import (
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/internal/abi"
	"github.com/wippyai/fasttuple/schema"
	"github.com/wippyai/fasttuple/tuple"
)

// SetFunc is the name of the field-writing function.
const SetFunc = "set"

type setter = func(name string, value any) (bool, error)

// Program is a compiled expression bound to one schema.
type Program struct {
	schema *schema.Schema
	prog   *vm.Program
	source string
	expect reflect.Kind
}

// Compile compiles source against s. The result may be of any type.
func Compile(s *schema.Schema, source string) (*Program, error) {
	return compile(s, source, reflect.Invalid)
}

// CompileBool compiles a predicate.
func CompileBool(s *schema.Schema, source string) (*Program, error) {
	return compile(s, source, reflect.Bool)
}

// CompileInt64 compiles an expression whose numeric result is converted to
// int64.
func CompileInt64(s *schema.Schema, source string) (*Program, error) {
	return compile(s, source, reflect.Int64)
}

// CompileFloat64 compiles an expression whose numeric result is converted
// to float64.
func CompileFloat64(s *schema.Schema, source string) (*Program, error) {
	return compile(s, source, reflect.Float64)
}

func compile(s *schema.Schema, source string, expect reflect.Kind) (*Program, error) {
	if s == nil {
		return nil, errors.NilPointer(errors.PhaseEval, "schema")
	}
	if _, clash := s.Index(SetFunc); clash {
		return nil, errors.New(errors.PhaseEval, errors.KindInvalidInput).
			Field(SetFunc).
			Detail("field name %q is reserved for the set function", SetFunc).
			Build()
	}

	env := make(map[string]any, s.Len()+1)
	for _, f := range s.Fields() {
		env[f.Name] = zeroOf(f.Kind)
	}
	env[SetFunc] = setter(func(string, any) (bool, error) { return true, nil })

	opts := []expr.Option{expr.Env(env)}
	switch expect {
	case reflect.Bool:
		opts = append(opts, expr.AsBool())
	case reflect.Int64:
		opts = append(opts, expr.AsInt64())
	case reflect.Float64:
		opts = append(opts, expr.AsFloat64())
	}

	prog, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEval, errors.KindInvalidInput, err, "compile expression")
	}
	return &Program{schema: s, prog: prog, source: source, expect: expect}, nil
}

func zeroOf(k schema.Kind) any {
	switch k {
	case schema.KindBool:
		return false
	case schema.KindInt8:
		return int8(0)
	case schema.KindInt16:
		return int16(0)
	case schema.KindInt32:
		return int32(0)
	case schema.KindInt64:
		return int64(0)
	case schema.KindFloat32:
		return float32(0)
	default:
		return float64(0)
	}
}

func (p *Program) Source() string {
	return p.source
}

func (p *Program) Schema() *schema.Schema {
	return p.schema
}

// Run evaluates the program against t. Fields written with set are stored
// immediately; a failed run may leave earlier writes in place.
func (p *Program) Run(t *tuple.Tuple) (any, error) {
	if t == nil {
		return nil, errors.NilPointer(errors.PhaseEval, "tuple")
	}
	if !p.schema.Equal(t.Schema()) {
		return nil, errors.New(errors.PhaseEval, errors.KindTypeMismatch).
			Declared(p.schema.String()).
			Requested(t.Schema().String()).
			Detail("program compiled for another schema").
			Build()
	}
	if t.Released() {
		return nil, errors.UseAfterFree("")
	}

	env := make(map[string]any, p.schema.Len()+1)
	for i := 0; i < p.schema.Len(); i++ {
		v, err := t.Value(i)
		if err != nil {
			return nil, err
		}
		name, _ := p.schema.FieldName(i)
		env[name] = v
	}
	env[SetFunc] = setter(func(name string, value any) (bool, error) {
		if err := t.SetValueByName(name, value); err != nil {
			return false, err
		}
		return true, nil
	})

	out, err := expr.Run(p.prog, env)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEval, errors.KindInvalidInput, err, "evaluate expression")
	}
	return out, nil
}

func (p *Program) RunBool(t *tuple.Tuple) (bool, error) {
	out, err := p.Run(t)
	if err != nil {
		return false, err
	}
	v, ok := out.(bool)
	if !ok {
		return false, p.resultMismatch(out, "bool")
	}
	return v, nil
}

func (p *Program) RunInt64(t *tuple.Tuple) (int64, error) {
	out, err := p.Run(t)
	if err != nil {
		return 0, err
	}
	v, ok := out.(int64)
	if !ok {
		return 0, p.resultMismatch(out, "int64")
	}
	return v, nil
}

func (p *Program) RunFloat64(t *tuple.Tuple) (float64, error) {
	out, err := p.Run(t)
	if err != nil {
		return 0, err
	}
	v, ok := out.(float64)
	if !ok {
		return 0, p.resultMismatch(out, "float64")
	}
	return v, nil
}

func (p *Program) resultMismatch(out any, want string) *errors.Error {
	return errors.New(errors.PhaseEval, errors.KindTypeMismatch).
		Declared(abi.TypeName(out)).
		Requested(want).
		Detail("expression %q", p.source).
		Build()
}
