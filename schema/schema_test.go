package schema

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/fasttuple/errors"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		want string
		kind Kind
		size uint32
	}{
		{"bool", KindBool, 1},
		{"int8", KindInt8, 1},
		{"int16", KindInt16, 2},
		{"int32", KindInt32, 4},
		{"int64", KindInt64, 8},
		{"float32", KindFloat32, 4},
		{"float64", KindFloat64, 8},
		{"unknown", Kind(200), 0},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
			if got := tc.kind.Size(); got != tc.size {
				t.Errorf("Size() = %d, want %d", got, tc.size)
			}
		})
	}
}

func TestKindClassification(t *testing.T) {
	if !KindFloat32.IsFloat() || !KindFloat64.IsFloat() || KindInt64.IsFloat() {
		t.Error("IsFloat misclassifies")
	}
	for _, k := range []Kind{KindInt8, KindInt16, KindInt32, KindInt64} {
		if !k.IsInteger() {
			t.Errorf("%s should be integer", k)
		}
	}
	if KindBool.IsInteger() || KindFloat64.IsInteger() {
		t.Error("bool and floats are not integers")
	}
	if Kind(7).Valid() {
		t.Error("kind 7 should be invalid")
	}
	if k, ok := ParseKind("float32"); !ok || k != KindFloat32 {
		t.Errorf("ParseKind(float32) = %v, %v", k, ok)
	}
	if _, ok := ParseKind("string"); ok {
		t.Error("ParseKind(string) should fail")
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	if err := b.AddField("flag", KindBool); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if err := b.AddField("id", KindInt64); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if err := b.AddField("score", KindFloat32); err != nil {
		t.Fatalf("AddField: %v", err)
	}

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	names := []string{"flag", "id", "score"}
	kinds := []Kind{KindBool, KindInt64, KindFloat32}
	for i := range names {
		name, err := s.FieldName(i)
		if err != nil || name != names[i] {
			t.Errorf("FieldName(%d) = %q, %v", i, name, err)
		}
		kind, err := s.FieldKind(i)
		if err != nil || kind != kinds[i] {
			t.Errorf("FieldKind(%d) = %v, %v", i, kind, err)
		}
		if idx, ok := s.Index(names[i]); !ok || idx != i {
			t.Errorf("Index(%q) = %d, %v", names[i], idx, ok)
		}
	}
}

func TestBuilderDuplicateField(t *testing.T) {
	b := NewBuilder()
	if err := b.AddField("x", KindInt32); err != nil {
		t.Fatal(err)
	}
	err := b.AddField("x", KindInt64)
	if !stderrors.Is(err, errors.ErrDuplicateField) {
		t.Fatalf("err = %v, want duplicate field", err)
	}
	if b.Len() != 1 {
		t.Errorf("failed AddField changed builder: Len = %d", b.Len())
	}

	_, err = New(Field{"x", KindInt32}, Field{"x", KindBool})
	if !stderrors.Is(err, errors.ErrDuplicateField) {
		t.Fatalf("New err = %v, want duplicate field", err)
	}
}

func TestBuilderErrors(t *testing.T) {
	_, err := NewBuilder().Build()
	if !stderrors.Is(err, errors.ErrEmptySchema) {
		t.Errorf("empty build err = %v", err)
	}

	err = NewBuilder().AddField("", KindBool)
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("empty name err = %v", err)
	}

	err = NewBuilder().AddField("odd", Kind(42))
	if !stderrors.Is(err, errors.ErrUnsupported) {
		t.Errorf("bad kind err = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustBuild on empty builder should panic")
		}
	}()
	NewBuilder().MustBuild()
}

func TestSchemaIdentity(t *testing.T) {
	a, err := New(Field{"a", KindInt64}, Field{"b", KindBool})
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(Field{"a", KindInt64}, Field{"b", KindBool})
	if err != nil {
		t.Fatal(err)
	}
	reordered, _ := New(Field{"b", KindBool}, Field{"a", KindInt64})
	retyped, _ := New(Field{"a", KindInt32}, Field{"b", KindBool})
	// "ab" + "" vs "a" + "b" must not collide
	split1, _ := New(Field{"ab", KindBool}, Field{"c", KindBool})
	split2, _ := New(Field{"a", KindBool}, Field{"bc", KindBool})

	if !a.Equal(b) || a.Key() != b.Key() || a.Hash() != b.Hash() {
		t.Error("structurally equal schemas must share identity")
	}
	if a.Equal(reordered) {
		t.Error("field order is part of identity")
	}
	if a.Equal(retyped) {
		t.Error("field kind is part of identity")
	}
	if split1.Key() == split2.Key() {
		t.Error("keys must be unambiguous")
	}
	if a.Equal(nil) {
		t.Error("non-nil schema should not equal nil")
	}
}

func TestSchemaImmutable(t *testing.T) {
	b := NewBuilder()
	_ = b.AddField("x", KindInt64)
	s := b.MustBuild()
	_ = b.AddField("y", KindInt64)

	if s.Len() != 1 {
		t.Errorf("schema changed after builder reuse: Len = %d", s.Len())
	}

	fields := s.Fields()
	fields[0].Name = "modified"
	if name, _ := s.FieldName(0); name != "x" {
		t.Errorf("Fields() leaked internal slice: %q", name)
	}
}

func TestSchemaFieldOutOfRange(t *testing.T) {
	s, _ := New(Field{"x", KindInt64})
	if _, err := s.Field(1); !stderrors.Is(err, errors.ErrUnknownField) {
		t.Errorf("Field(1) err = %v", err)
	}
	if _, err := s.FieldKind(-1); !stderrors.Is(err, errors.ErrUnknownField) {
		t.Errorf("FieldKind(-1) err = %v", err)
	}
	if _, ok := s.Index("nonExistent"); ok {
		t.Error("Index should miss")
	}
}

func TestSchemaString(t *testing.T) {
	s, _ := New(Field{"a", KindInt64}, Field{"b", KindBool})
	if got, want := s.String(), "('a':int64,'b':bool)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMustAdd(t *testing.T) {
	s := NewBuilder().MustAdd("a", KindInt8).MustAdd("b", KindFloat64).MustBuild()
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}

	defer func() {
		if recover() == nil {
			t.Error("MustAdd with a duplicate name should panic")
		}
	}()
	NewBuilder().MustAdd("a", KindInt8).MustAdd("a", KindInt16)
}
