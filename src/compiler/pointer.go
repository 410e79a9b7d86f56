// pointer.go provides a small helper for operating on the stack slot that
// backs a local.

package compiler

import "tinygo.org/x/go-llvm"

// pointer points to a stack slot.
type pointer struct {
	base llvm.Value // the alloca backing the slot
}

func newPointer(slot llvm.Value) pointer {
	return pointer{base: slot}
}

// addr materialises the address of the slot as the pointer-size integer.
func (p pointer) addr(b llvm.Builder, ptrInt llvm.Type) llvm.Value {
	return b.CreatePtrToInt(p.base, ptrInt, "")
}

// load reads the value stored in the slot.
func (p pointer) load(b llvm.Builder) llvm.Value {
	return b.CreateLoad(p.base, "")
}

// store writes a given value into the slot.
func (p pointer) store(b llvm.Builder, value llvm.Value) {
	b.CreateStore(value, p.base)
}
