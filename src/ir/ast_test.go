package ir

import "testing"

// TestIntegerLiteralParse verifies the deferred conversion of integer
// lexemes: the base comes from the lexeme itself and digit separators are
// accepted.
func TestIntegerLiteralParse(t *testing.T) {
	tests := []struct {
		token string
		value int64
	}{
		{token: "0", value: 0},
		{token: "42", value: 42},
		{token: "1_000_000", value: 1000000},
		{token: "0x1F", value: 31},
		{token: "0xff_ff", value: 65535},
		{token: "0o17", value: 15},
	}
	for _, e1 := range tests {
		lit := NewIntegerLiteral(e1.token)
		if lit.Token() != e1.token {
			t.Errorf("lexeme not retained, expected %q, got %q", e1.token, lit.Token())
		}
		n, err := lit.Parse()
		if err != nil {
			t.Errorf("lexeme %q: unexpected error: %s", e1.token, err)
			continue
		}
		if n != e1.value {
			t.Errorf("lexeme %q: expected %d, got %d", e1.token, e1.value, n)
		}
	}
}

// TestFloatLiteralParse verifies the deferred conversion of float lexemes at
// both destination widths.
func TestFloatLiteralParse(t *testing.T) {
	tests := []struct {
		token string
		bits  int
		value float64
	}{
		{token: "1.5", bits: 64, value: 1.5},
		{token: ".25", bits: 32, value: 0.25},
		{token: "42.", bits: 64, value: 42},
		{token: "1.5e3", bits: 64, value: 1500},
		{token: "2e2", bits: 32, value: 200},
	}
	for _, e1 := range tests {
		f, err := NewFloatLiteral(e1.token).Parse(e1.bits)
		if err != nil {
			t.Errorf("lexeme %q: unexpected error: %s", e1.token, err)
			continue
		}
		if f != e1.value {
			t.Errorf("lexeme %q: expected %g, got %g", e1.token, e1.value, f)
		}
	}
}

// TestBuildFnMap verifies the function map and the duplicate declaration
// check.
func TestBuildFnMap(t *testing.T) {
	a := &FnDecl{Name: "a", RetType: Integer{Kind: I32}}
	b := &FnDecl{Name: "b", RetType: Integer{Kind: I32}}

	fns, err := BuildFnMap([]*FnDecl{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(fns) != 2 || fns["a"] != a || fns["b"] != b {
		t.Errorf("function map does not contain the declarations: %v", fns)
	}

	if _, err := BuildFnMap([]*FnDecl{a, b, &FnDecl{Name: "a"}}); err == nil {
		t.Error("expected duplicate declaration error")
	}
}
