// translate.go translates statements and expressions of one function into IR
// instructions, enforcing the type and mutability rules of the language.
// All violations are fatal: the first error aborts the compilation and is
// reported as a single-line diagnostic.

package compiler

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"tinygo.org/x/go-llvm"

	"github.com/Harry-Lees/Wellick/src/ir"
	"github.com/Harry-Lees/Wellick/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// functionTranslator holds the state of one function translation: the
// builder positioned in the function's current block, the storage map
// produced by the declarator, and the owning compiler for the module, the
// function map and the IR types.
type functionTranslator struct {
	c      *Compiler
	b      llvm.Builder
	fun    llvm.Value
	vars   map[string]Variable
	labels util.LabelGenerator
}

// ---------------------
// ----- Functions -----
// ---------------------

func newFunctionTranslator(c *Compiler, fun llvm.Value, vars map[string]Variable) *functionTranslator {
	return &functionTranslator{c: c, b: c.b, fun: fun, vars: vars}
}

// translateStmt translates a single statement. The returned bool is set when
// the statement terminated the current block with a return; the caller must
// not translate further statements of that block.
func (t *functionTranslator) translateStmt(stmt ir.Stmt) (bool, error) {
	switch v := stmt.(type) {
	case *ir.Assignment:
		return false, t.translateAssign(v)
	case *ir.Local:
		return false, t.translateReassign(v)
	case *ir.Return:
		val, err := t.translateExpr(v.Value)
		if err != nil {
			return false, err
		}
		t.b.CreateRet(val)
		return true, nil
	case *ir.Call:
		// Statement position: the result is discarded.
		_, err := t.translateCall(v)
		return false, err
	case *ir.If:
		_, err := t.translateIf(v)
		return false, err
	}
	return false, errors.Errorf("unsupported statement %T", stmt)
}

// translateExpr translates an expression to an IR value. Literals outside an
// assignment default to 32 bits.
func (t *functionTranslator) translateExpr(expr ir.Expression) (llvm.Value, error) {
	switch v := expr.(type) {
	case *ir.Call:
		return t.translateCall(v)
	case *ir.Literal:
		if v.Integer != nil {
			n, err := v.Integer.Parse()
			if err != nil {
				return llvm.Value{}, errors.Wrapf(err, "invalid integer literal %q", v.Integer.Token())
			}
			return llvm.ConstInt(t.c.i32, uint64(n), true), nil
		}
		f, err := v.Float.Parse(32)
		if err != nil {
			return llvm.Value{}, errors.Wrapf(err, "invalid float literal %q", v.Float.Token())
		}
		return llvm.ConstFloat(t.c.f32, f), nil
	case *ir.Identifier:
		vr, ok := t.vars[v.Name]
		if !ok {
			return llvm.Value{}, errors.Errorf("cannot find value %q in this scope", v.Name)
		}
		if loc, ok := vr.(*StackVar); ok {
			return newPointer(loc.Slot).load(t.b), nil
		}
		return vr.(*RegVar).Ref, nil
	case *ir.AddressOf:
		vr, ok := t.vars[v.Name]
		if !ok {
			return llvm.Value{}, errors.Errorf("cannot find value %q in this scope", v.Name)
		}
		loc, ok := vr.(*StackVar)
		if !ok {
			return llvm.Value{}, errors.Errorf("cannot take the address of register variable %q", v.Name)
		}
		return newPointer(loc.Slot).addr(t.b, t.c.i64), nil
	case *ir.DeRef:
		return t.translateDeRef(v)
	}
	return llvm.Value{}, errors.Errorf("unsupported expression %T", expr)
}

// translateDeRef loads the pointer stored in the slot of the named local,
// then loads the pointee through it.
func (t *functionTranslator) translateDeRef(d *ir.DeRef) (llvm.Value, error) {
	vr, ok := t.vars[d.Name]
	if !ok {
		return llvm.Value{}, errors.Errorf("cannot find value %q in this scope", d.Name)
	}
	loc, ok := vr.(*StackVar)
	if !ok {
		return llvm.Value{}, errors.Errorf("cannot dereference register variable %q", d.Name)
	}
	pt, ok := loc.Type.(ir.Pointer)
	if !ok {
		return llvm.Value{}, errors.Errorf("cannot dereference %q of non-pointer type %s", d.Name, loc.Type)
	}

	addr := newPointer(loc.Slot).load(t.b) // the stored pointer-size integer
	elem := t.c.llvmType(pt.Pointee)
	ptr := t.b.CreateIntToPtr(addr, llvm.PointerType(elem, 0), "")
	return t.b.CreateLoad(ptr, ""), nil
}

// translateAssign evaluates the initialiser of a declaration and stores it
// into the binding's stack slot.
func (t *functionTranslator) translateAssign(a *ir.Assignment) error {
	vr, ok := t.vars[a.Target.Ident]
	if !ok {
		return errors.Errorf("cannot find value %q in this scope", a.Target.Ident)
	}
	loc, ok := vr.(*StackVar)
	if !ok {
		return errors.Errorf("binding %q is not stack allocated", a.Target.Ident)
	}

	val, err := t.assignValue(a)
	if err != nil {
		return err
	}
	newPointer(loc.Slot).store(t.b, val)
	return nil
}

// assignValue evaluates the initialiser subject to the declared type:
// literals are materialised at the declared width, mutable pointer bindings
// may only hold the address of a mutable variable, and every other
// expression must produce exactly the declared IR type.
func (t *functionTranslator) assignValue(a *ir.Assignment) (llvm.Value, error) {
	if lit, ok := a.Value.(*ir.Literal); ok {
		return t.typedLiteral(lit, a.Type)
	}

	if ref, ok := a.Value.(*ir.AddressOf); ok {
		if pt, isPtr := a.Type.(ir.Pointer); isPtr && pt.Mutable {
			target, exists := t.vars[ref.Name]
			if !exists {
				return llvm.Value{}, errors.Errorf("cannot find value %q in this scope", ref.Name)
			}
			if !target.IsMutable() {
				return llvm.Value{}, errors.Errorf("expected &mut %s, got &%s, cannot take a mutable pointer to an immutable binding", ref.Name, ref.Name)
			}
		}
	}

	val, err := t.translateExpr(a.Value)
	if err != nil {
		return llvm.Value{}, err
	}
	if val.Type() != t.c.llvmType(a.Type) {
		return llvm.Value{}, errors.Errorf("mismatched types for %q, expression does not produce %s", a.Target.Ident, a.Type)
	}
	return val, nil
}

// typedLiteral converts a literal lexeme at the declared type. Integer
// lexemes may initialise integer and pointer typed bindings, float lexemes
// only float typed ones.
func (t *functionTranslator) typedLiteral(lit *ir.Literal, declared ir.EmptyType) (llvm.Value, error) {
	if lit.Integer != nil {
		switch declared.(type) {
		case ir.Integer, ir.Pointer:
		default:
			return llvm.Value{}, errors.Errorf("mismatched types, integer literal %q cannot initialise %s", lit.Integer.Token(), declared)
		}
		n, err := lit.Integer.Parse()
		if err != nil {
			return llvm.Value{}, errors.Wrapf(err, "invalid integer literal %q", lit.Integer.Token())
		}
		return llvm.ConstInt(t.c.llvmType(declared), uint64(n), true), nil
	}

	ft, ok := declared.(ir.Float)
	if !ok {
		return llvm.Value{}, errors.Errorf("mismatched types, float literal %q cannot initialise %s", lit.Float.Token(), declared)
	}
	bits := 32
	if ft.Kind == ir.F64 {
		bits = 64
	}
	f, err := lit.Float.Parse(bits)
	if err != nil {
		return llvm.Value{}, errors.Wrapf(err, "invalid float literal %q", lit.Float.Token())
	}
	return llvm.ConstFloat(t.c.llvmType(declared), f), nil
}

// translateReassign changes an existing binding. The binding must exist and
// be mutable; the mutability check runs before any IR for the store is
// emitted.
func (t *functionTranslator) translateReassign(l *ir.Local) error {
	name := l.Target.Ident
	vr, ok := t.vars[name]
	if !ok {
		return errors.Errorf("cannot find value %q in this scope", name)
	}
	if !vr.IsMutable() {
		return errors.Errorf("cannot mutate immutable variable %s", name)
	}

	val, err := t.translateExpr(l.Value)
	if err != nil {
		return err
	}
	if val.Type() != t.c.llvmType(vr.VarType()) {
		return errors.Errorf("mismatched types for %q, expression does not produce %s", name, vr.VarType())
	}

	switch loc := vr.(type) {
	case *StackVar:
		newPointer(loc.Slot).store(t.b, val)
	case *RegVar:
		// Register variables are redefined by rebinding the name.
		loc.Ref = val
	}
	return nil
}

// translateCall translates a call to a builtin or a user function and
// returns the call's first result value.
func (t *functionTranslator) translateCall(call *ir.Call) (llvm.Value, error) {
	if sig, ok := t.c.builtins[call.Func]; ok {
		return t.translateBuiltinCall(call, sig)
	}

	decl, ok := t.c.fns[call.Func]
	if !ok {
		return llvm.Value{}, errors.Errorf("cannot find function %q in this scope", call.Func)
	}
	if len(call.Args) != len(decl.Args) {
		return llvm.Value{}, errors.Errorf("function %q expects %d arguments, got %d", call.Func, len(decl.Args), len(call.Args))
	}

	// Pointer arguments must agree on referent mutability before the
	// signature is materialised.
	for i1, e1 := range call.Args {
		pt, isPtr := decl.Args[i1].Type.(ir.Pointer)
		ref, isRef := e1.(*ir.AddressOf)
		if isPtr && isRef && ref.Mutable != pt.Mutable {
			return llvm.Value{}, errors.Errorf("mismatched pointer mutability for argument %q of %q, expected %s, got %s",
				decl.Args[i1].Name, call.Func, refString(pt.Mutable, ref.Name), refString(ref.Mutable, ref.Name))
		}
	}

	args := make([]llvm.Value, 0, len(call.Args))
	for _, e1 := range call.Args {
		v, err := t.translateExpr(e1)
		if err != nil {
			return llvm.Value{}, err
		}
		args = append(args, v)
	}

	// Compare the invocation signature built from the argument values with
	// the declared one.
	atyp := lo.Map(args, func(v llvm.Value, _ int) llvm.Type { return v.Type() })
	for i1 := range atyp {
		if atyp[i1] != t.c.llvmType(decl.Args[i1].Type) {
			return llvm.Value{}, errors.Errorf("mismatched types for argument %q of %q, expected %s",
				decl.Args[i1].Name, call.Func, decl.Args[i1].Type)
		}
	}

	callee := t.c.m.NamedFunction(call.Func)
	if callee.IsNil() {
		return llvm.Value{}, errors.Errorf("function %q has no declaration", call.Func)
	}
	return t.b.CreateCall(callee, args, ""), nil
}

// translateBuiltinCall checks the arguments against the hard-coded builtin
// signature and emits the call. The builtin symbol is declared on the module
// on first use; the declaration is idempotent by name.
func (t *functionTranslator) translateBuiltinCall(call *ir.Call, sig builtinSig) (llvm.Value, error) {
	if len(call.Args) != len(sig.params) {
		return llvm.Value{}, errors.Errorf("builtin %q expects %d arguments, got %d", call.Func, len(sig.params), len(call.Args))
	}

	args := make([]llvm.Value, 0, len(call.Args))
	for i1, e1 := range call.Args {
		v, err := t.translateExpr(e1)
		if err != nil {
			return llvm.Value{}, err
		}
		if v.Type() != sig.params[i1] {
			return llvm.Value{}, errors.Errorf("mismatched types for argument %d of builtin %q", i1, call.Func)
		}
		args = append(args, v)
	}

	callee := t.c.m.NamedFunction(call.Func)
	if callee.IsNil() {
		callee = llvm.AddFunction(t.c.m, call.Func, llvm.FunctionType(sig.ret, sig.params, false))
	}
	return t.b.CreateCall(callee, args, ""), nil
}

// translateIf lowers an if statement to a branch on a nonzero condition with
// explicit then and merge blocks. The language does not use if as an
// expression, so the statement yields a dummy value that is never consumed.
func (t *functionTranslator) translateIf(n *ir.If) (llvm.Value, error) {
	cond, err := t.translateExpr(n.Cond)
	if err != nil {
		return llvm.Value{}, err
	}
	if cond.Type().TypeKind() != llvm.IntegerTypeKind {
		return llvm.Value{}, errors.New("if condition must produce an integer value")
	}

	then := t.c.ctx.AddBasicBlock(t.fun, t.labels.Next(util.LabelIfThen))
	merge := t.c.ctx.AddBasicBlock(t.fun, t.labels.Next(util.LabelIfMerge))

	nonzero := t.b.CreateICmp(llvm.IntNE, cond, llvm.ConstInt(cond.Type(), 0, false), "")
	t.b.CreateCondBr(nonzero, then, merge)

	t.b.SetInsertPointAtEnd(then)
	terminated := false
	for _, e1 := range n.Body {
		ret, err := t.translateStmt(e1)
		if err != nil {
			return llvm.Value{}, err
		}
		if ret {
			// The return dominates the remainder of the body.
			terminated = true
			break
		}
	}
	if !terminated {
		t.b.CreateBr(merge)
	}

	t.b.SetInsertPointAtEnd(merge)
	return llvm.ConstInt(t.c.i32, 0, false), nil
}

// refString renders a reference expression for diagnostics.
func refString(mutable bool, name string) string {
	if mutable {
		return "&mut " + name
	}
	return "&" + name
}
