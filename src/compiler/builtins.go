// builtins.go lists the fixed set of externally linked helper functions. The
// object file imports these symbols; a compatible runtime exports them with
// the C calling convention and the signatures below.

package compiler

import "tinygo.org/x/go-llvm"

// builtinSig is the hard-coded signature of a builtin function.
type builtinSig struct {
	params []llvm.Type
	ret    llvm.Type
}

// builtinTable returns the closed builtin set keyed by symbol name.
func builtinTable(c *Compiler) map[string]builtinSig {
	ii := builtinSig{params: []llvm.Type{c.i32, c.i32}, ret: c.i32}
	pr := builtinSig{params: []llvm.Type{c.i32}, ret: c.i32}
	return map[string]builtinSig{
		// Integer arithmetic and comparison helpers.
		"iadd":  ii,
		"isub":  ii,
		"imul":  ii,
		"idiv":  ii,
		"imod":  ii,
		"ieq":   ii,
		"ilteq": ii,
		"ilt":   ii,

		// Output helpers.
		"print":      pr,
		"println":    pr,
		"print_addr": {params: []llvm.Type{c.i64}, ret: c.i64},
	}
}
