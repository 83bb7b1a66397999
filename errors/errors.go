package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSchema  Phase = "schema"  // schema construction
	PhaseLayout  Phase = "layout"  // layout computation
	PhaseAccess  Phase = "access"  // field reads and writes
	PhaseAlloc   Phase = "alloc"   // storage allocation and release
	PhasePool    Phase = "pool"    // pooled checkout and release
	PhaseEval    Phase = "eval"    // expression compilation and evaluation
	PhaseInterop Phase = "interop" // conversion from foreign type metadata
)

// Kind categorizes the error
type Kind string

const (
	KindDuplicateField Kind = "duplicate_field"
	KindEmptySchema    Kind = "empty_schema"
	KindTypeMismatch   Kind = "type_mismatch"
	KindUnknownField   Kind = "unknown_field"
	KindDoubleFree     Kind = "double_free"
	KindUseAfterFree   Kind = "use_after_free"
	KindAllocation     Kind = "allocation"
	KindPoolExhausted  Kind = "pool_exhausted"
	KindClosed         Kind = "closed"
	KindLeak           Kind = "leak"
	KindOverflow       Kind = "overflow"
	KindUnsupported    Kind = "unsupported"
	KindInvalidInput   Kind = "invalid_input"
	KindNilPointer     Kind = "nil_pointer"
)

// Sentinels for errors.Is. They carry no phase, so they match any phase.
var (
	ErrDuplicateField = &Error{Kind: KindDuplicateField}
	ErrEmptySchema    = &Error{Kind: KindEmptySchema}
	ErrTypeMismatch   = &Error{Kind: KindTypeMismatch}
	ErrUnknownField   = &Error{Kind: KindUnknownField}
	ErrDoubleFree     = &Error{Kind: KindDoubleFree}
	ErrUseAfterFree   = &Error{Kind: KindUseAfterFree}
	ErrAllocation     = &Error{Kind: KindAllocation}
	ErrPoolExhausted  = &Error{Kind: KindPoolExhausted}
	ErrClosed         = &Error{Kind: KindClosed}
	ErrLeak           = &Error{Kind: KindLeak}
	ErrOverflow       = &Error{Kind: KindOverflow}
	ErrUnsupported    = &Error{Kind: KindUnsupported}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput}
	ErrNilPointer     = &Error{Kind: KindNilPointer}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Field     string
	Declared  string // kind the field was declared with
	Requested string // kind the caller asked for
	Detail    string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Field != "" {
		b.WriteString(" at ")
		b.WriteString(e.Field)
	}

	if e.Declared != "" || e.Requested != "" {
		b.WriteString(": ")
		if e.Declared != "" && e.Requested != "" {
			b.WriteString("declared ")
			b.WriteString(e.Declared)
			b.WriteString(", requested ")
			b.WriteString(e.Requested)
		} else if e.Declared != "" {
			b.WriteString("declared ")
			b.WriteString(e.Declared)
		} else {
			b.WriteString("requested ")
			b.WriteString(e.Requested)
		}
	}

	if e.Detail != "" {
		if e.Declared != "" || e.Requested != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Is reports whether any error in err's chain matches target.
// It lets callers that import this package skip the standard errors package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Field sets the field name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Declared sets the declared kind name
func (b *Builder) Declared(k string) *Builder {
	b.err.Declared = k
	return b
}

// Requested sets the requested kind name
func (b *Builder) Requested(k string) *Builder {
	b.err.Requested = k
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// DuplicateField reports a field name declared twice in one schema
func DuplicateField(name string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindDuplicateField,
		Field:  name,
		Detail: fmt.Sprintf("field %q already declared", name),
	}
}

// EmptySchema reports a schema built without fields
func EmptySchema() *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindEmptySchema,
		Detail: "schema must declare at least one field",
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, field, declared, requested string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindTypeMismatch,
		Field:     field,
		Declared:  declared,
		Requested: requested,
	}
}

// UnknownField creates an unknown field error for a name lookup
func UnknownField(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownField,
		Field:  name,
		Detail: fmt.Sprintf("unknown field %q", name),
	}
}

// UnknownIndex creates an unknown field error for an index lookup
func UnknownIndex(phase Phase, index, count int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownField,
		Detail: fmt.Sprintf("field index %d out of range [0, %d)", index, count),
		Value:  index,
	}
}

// DoubleFree reports a release of storage that is no longer live
func DoubleFree(what string) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindDoubleFree,
		Detail: fmt.Sprintf("%s already released", what),
	}
}

// UseAfterFree reports an access to released storage
func UseAfterFree(field string) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindUseAfterFree,
		Field:  field,
		Detail: "tuple storage has been released",
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size, align uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, field string, value any, target string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindOverflow,
		Field:     field,
		Requested: target,
		Detail:    fmt.Sprintf("value %v overflows %s", value, target),
		Value:     value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("%s is nil", what),
	}
}

// Closed reports an operation on a closed pool, arena or factory
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s closed", what),
	}
}

// Leak reports storage still live when its owner was closed
func Leak(live int) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindLeak,
		Detail: fmt.Sprintf("%d block(s) still live at close", live),
		Value:  live,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
