// variables.go implements the storage model for function locals. Parameters
// arrive in IR virtual registers from the calling convention and stay there;
// their address is syntactically disallowed. Every let binding occupies an
// explicit stack slot so taking its address is always legal, without any
// escape analysis.

package compiler

import (
	"fmt"

	"github.com/pkg/errors"
	"tinygo.org/x/go-llvm"

	"github.com/Harry-Lees/Wellick/src/ir"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Variable is a named local of the function being translated.
type Variable interface {
	VarName() string
	VarType() ir.EmptyType
	IsMutable() bool
}

// StackVar is a local occupying an explicit stack slot sized to its type.
// Its address is obtainable.
type StackVar struct {
	Name    string
	Type    ir.EmptyType
	Slot    llvm.Value // alloca in the entry block
	Mutable bool
}

// RegVar is a local resident in an IR virtual register. It has no address.
type RegVar struct {
	Name    string
	Type    ir.EmptyType
	Ref     llvm.Value // SSA value currently bound to the name
	Mutable bool
}

// ---------------------
// ----- Functions -----
// ---------------------

func (v *StackVar) VarName() string       { return v.Name }
func (v *StackVar) VarType() ir.EmptyType { return v.Type }
func (v *StackVar) IsMutable() bool       { return v.Mutable }

func (v *RegVar) VarName() string       { return v.Name }
func (v *RegVar) VarType() ir.EmptyType { return v.Type }
func (v *RegVar) IsMutable() bool       { return v.Mutable }

// llvmType lowers a type term to its IR type. Pointer types and isize both
// lower to the target pointer-size integer, 64 bits on the reference target.
func (c *Compiler) llvmType(t ir.EmptyType) llvm.Type {
	switch v := t.(type) {
	case ir.Integer:
		switch v.Kind {
		case ir.I32:
			return c.i32
		default:
			return c.i64
		}
	case ir.Float:
		if v.Kind == ir.F32 {
			return c.f32
		}
		return c.f64
	case ir.Pointer:
		return c.i64
	}
	panic(fmt.Sprintf("unknown type term %v", t))
}

// declareVariables allocates storage for every local of the declaration:
// parameters are bound to register variables holding the incoming block
// parameter values, and every let binding in the body, including those
// inside if bodies, gets a stack slot in the entry block. The builder must
// be positioned at the end of the entry block.
func declareVariables(c *Compiler, fun llvm.Value, decl *ir.FnDecl) (map[string]Variable, error) {
	vars := make(map[string]Variable, len(decl.Args)+len(decl.Body))

	for i1, e1 := range decl.Args {
		if _, ok := vars[e1.Name]; ok {
			return nil, errors.Errorf("cannot re-declare variable %q", e1.Name)
		}
		vars[e1.Name] = &RegVar{Name: e1.Name, Type: e1.Type, Ref: fun.Param(i1), Mutable: false}
	}

	for _, e1 := range decl.Body {
		if err := declareVariablesInStmt(c, e1, vars); err != nil {
			return nil, err
		}
	}
	return vars, nil
}

// declareVariablesInStmt recursively descends through the statement,
// allocating a stack slot for every declaration. Reassignments, returns,
// calls and if conditions do not create bindings.
func declareVariablesInStmt(c *Compiler, stmt ir.Stmt, vars map[string]Variable) error {
	switch v := stmt.(type) {
	case *ir.Assignment:
		if _, ok := vars[v.Target.Ident]; ok {
			return errors.Errorf("cannot re-declare variable %q", v.Target.Ident)
		}
		slot := c.b.CreateAlloca(c.llvmType(v.Type), v.Target.Ident)
		vars[v.Target.Ident] = &StackVar{Name: v.Target.Ident, Type: v.Type, Slot: slot, Mutable: v.Mutable}
	case *ir.If:
		for _, e1 := range v.Body {
			if err := declareVariablesInStmt(c, e1, vars); err != nil {
				return err
			}
		}
	}
	return nil
}
