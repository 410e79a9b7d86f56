package ir

import "testing"

// TestTypeEquality verifies the structural equality of type terms, including
// that pointer mutability participates in equality.
func TestTypeEquality(t *testing.T) {
	i32 := Integer{Kind: I32}
	i64 := Integer{Kind: I64}
	isize := Integer{Kind: PointerSize}
	f32 := Float{Kind: F32}

	tests := []struct {
		name  string
		a, b  EmptyType
		equal bool
	}{
		{name: "same integer", a: i32, b: Integer{Kind: I32}, equal: true},
		{name: "different widths", a: i32, b: i64, equal: false},
		{name: "isize is its own term", a: isize, b: i64, equal: false},
		{name: "integer vs float", a: i32, b: f32, equal: false},
		{name: "same pointer", a: Pointer{Pointee: i32}, b: Pointer{Pointee: i32}, equal: true},
		{name: "mutability participates", a: Pointer{Pointee: i32}, b: Pointer{Pointee: i32, Mutable: true}, equal: false},
		{name: "different pointees", a: Pointer{Pointee: i32}, b: Pointer{Pointee: i64}, equal: false},
		{
			name:  "nested pointers",
			a:     Pointer{Pointee: Pointer{Pointee: i32, Mutable: true}},
			b:     Pointer{Pointee: Pointer{Pointee: i32, Mutable: true}},
			equal: true,
		},
		{
			name:  "nested mutability",
			a:     Pointer{Pointee: Pointer{Pointee: i32, Mutable: true}},
			b:     Pointer{Pointee: Pointer{Pointee: i32}},
			equal: false,
		},
	}

	for _, e1 := range tests {
		t.Run(e1.name, func(t *testing.T) {
			if got := e1.a.Equal(e1.b); got != e1.equal {
				t.Errorf("%s.Equal(%s) = %t, expected %t", e1.a, e1.b, got, e1.equal)
			}
			if got := e1.b.Equal(e1.a); got != e1.equal {
				t.Errorf("%s.Equal(%s) = %t, expected %t", e1.b, e1.a, got, e1.equal)
			}
		})
	}
}

// TestTypeNames verifies the display form of type terms.
func TestTypeNames(t *testing.T) {
	tests := []struct {
		typ  EmptyType
		want string
	}{
		{typ: Integer{Kind: I32}, want: "i32"},
		{typ: Integer{Kind: I64}, want: "i64"},
		{typ: Integer{Kind: PointerSize}, want: "isize"},
		{typ: Float{Kind: F32}, want: "f32"},
		{typ: Float{Kind: F64}, want: "f64"},
		{typ: Pointer{Pointee: Integer{Kind: I32}}, want: "*i32"},
		{typ: Pointer{Pointee: Float{Kind: F64}, Mutable: true}, want: "*mut f64"},
		{typ: Pointer{Pointee: Pointer{Pointee: Integer{Kind: I64}, Mutable: true}}, want: "**mut i64"},
	}
	for _, e1 := range tests {
		if got := e1.typ.String(); got != e1.want {
			t.Errorf("expected %q, got %q", e1.want, got)
		}
	}
}
