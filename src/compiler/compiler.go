// Package compiler lowers the Wellick syntax tree onto LLVM IR and emits a
// native object file for the requested target. Every function in the source
// becomes a globally exported symbol under its source name; the builtin
// helpers are imported and must be supplied at link time.
package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"tinygo.org/x/go-llvm"

	"github.com/Harry-Lees/Wellick/src/ir"
	"github.com/Harry-Lees/Wellick/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Compiler owns the IR module for one compilation. Declarations are
// translated in source order; each function is translated independently but
// may consult the map of all declared functions for argument type checking.
type Compiler struct {
	ctx llvm.Context
	b   llvm.Builder
	m   llvm.Module
	opt util.Options
	fns map[string]*ir.FnDecl

	// IR types of the target, created once per context.
	i32, i64, f32, f64 llvm.Type

	builtins map[string]builtinSig
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewCompiler creates a compiler with a fresh LLVM context and an empty
// module named after the source file. The caller must call Dispose when the
// compilation is over.
func NewCompiler(opt util.Options) *Compiler {
	name := "wellick"
	if len(opt.Src) > 0 {
		name = filepath.Base(opt.Src)
	}

	ctx := llvm.NewContext()
	c := &Compiler{
		ctx: ctx,
		b:   ctx.NewBuilder(),
		m:   ctx.NewModule(name),
		opt: opt,
		i32: ctx.Int32Type(),
		i64: ctx.Int64Type(),
		f32: ctx.FloatType(),
		f64: ctx.DoubleType(),
	}
	c.builtins = builtinTable(c)
	return c
}

// Dispose releases the LLVM resources held by the compiler.
func (c *Compiler) Dispose() {
	c.b.Dispose()
	c.m.Dispose()
	c.ctx.Dispose()
}

// Compile translates the parsed declarations into the module and writes the
// object file. Function headers are declared up front so that calls between
// user functions resolve by name regardless of declaration order.
func (c *Compiler) Compile(decls []*ir.FnDecl) error {
	fns, err := ir.BuildFnMap(decls)
	if err != nil {
		return err
	}
	c.fns = fns

	for _, e1 := range decls {
		if err := c.declareFunction(e1); err != nil {
			return err
		}
	}
	for _, e1 := range decls {
		if err := c.defineFunction(e1); err != nil {
			return err
		}
	}

	if c.opt.Verbose {
		fmt.Println("LLVM IR:")
		c.m.Dump()
	}
	return c.emit()
}

// signature builds the IR function type of a declaration.
func (c *Compiler) signature(decl *ir.FnDecl) llvm.Type {
	atyp := lo.Map(decl.Args, func(a ir.FnArg, _ int) llvm.Type { return c.llvmType(a.Type) })
	return llvm.FunctionType(c.llvmType(decl.RetType), atyp, false)
}

// declareFunction declares the function on the module under its source name
// with export linkage.
func (c *Compiler) declareFunction(decl *ir.FnDecl) error {
	if _, ok := c.builtins[decl.Name]; ok {
		return errors.Errorf("duplicate declaration, %q is a reserved builtin name", decl.Name)
	}
	fun := llvm.AddFunction(c.m, decl.Name, c.signature(decl))
	for i1, e1 := range fun.Params() {
		e1.SetName(decl.Args[i1].Name)
	}
	return nil
}

// defineFunction translates the function body. The entry block is created
// and the parameters bound, storage is allocated for every local, then the
// statements are translated in source order. Verification failures are
// logged, they do not abort the pipeline.
func (c *Compiler) defineFunction(decl *ir.FnDecl) error {
	fun := c.m.NamedFunction(decl.Name)
	if fun.IsNil() {
		return errors.Errorf("function %q has no declaration", decl.Name)
	}

	entry := c.ctx.AddBasicBlock(fun, "entry")
	c.b.SetInsertPointAtEnd(entry)

	vars, err := declareVariables(c, fun, decl)
	if err != nil {
		return errors.Wrapf(err, "in function %q", decl.Name)
	}

	t := newFunctionTranslator(c, fun, vars)
	for _, e1 := range decl.Body {
		ret, err := t.translateStmt(e1)
		if err != nil {
			return errors.Wrapf(err, "in function %q", decl.Name)
		}
		if ret {
			// The return dominates; nothing after it in this block is
			// translated.
			break
		}
	}

	if err := llvm.VerifyFunction(fun, llvm.PrintMessageAction); err != nil {
		fmt.Printf("verification of function %q failed: %s\n", decl.Name, err)
	}
	return nil
}

// emit compiles the module for the requested target and writes the object
// file named by the options.
func (c *Compiler) emit() error {
	llvm.InitializeAllTargetInfos()
	llvm.InitializeAllTargetMCs()
	llvm.InitializeAllAsmParsers()
	llvm.InitializeAllAsmPrinters()

	target, triple, err := targetTriple(&c.opt)
	if err != nil {
		return err
	}

	tm := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelNone,
		llvm.RelocDefault,
		llvm.CodeModelDefault)
	defer tm.Dispose()

	td := tm.CreateTargetData()
	defer td.Dispose()

	c.m.SetDataLayout(td.String())
	c.m.SetTarget(tm.Triple())

	buf, err := tm.EmitToMemoryBuffer(c.m, llvm.ObjectFile)
	if err != nil {
		return err
	}
	if buf.IsNil() {
		return errors.New("could not emit compiled code to memory")
	}

	return util.WriteObject(c.opt, buf.Bytes())
}

// targetTriple builds an LLVM target triple from the compiler options. With
// no target options the host's default triple is used.
func targetTriple(opt *util.Options) (llvm.Target, string, error) {
	var triple string
	if opt.TargetArch == util.UnknownArch {
		triple = llvm.DefaultTargetTriple()
	} else {
		sb := strings.Builder{}
		sb.Grow(20)

		switch opt.TargetArch {
		case util.Aarch64:
			sb.WriteString("aarch64")
		case util.Riscv64:
			sb.WriteString("riscv64")
		case util.Riscv32:
			sb.WriteString("riscv32")
		case util.X86_64:
			sb.WriteString("x86_64")
		case util.X86_32:
			sb.WriteString("x86")
		default:
			return llvm.Target{}, "", errors.Errorf("unsupported target architecture identifier %d", opt.TargetArch)
		}
		sb.WriteRune('-')

		switch opt.TargetVendor {
		case util.PC, util.UnknownVendor:
			sb.WriteString("pc")
		case util.Apple:
			sb.WriteString("apple")
		case util.IBM:
			sb.WriteString("ibm")
		default:
			return llvm.Target{}, "", errors.Errorf("unsupported target vendor identifier %d", opt.TargetVendor)
		}
		sb.WriteRune('-')

		switch opt.TargetOS {
		case util.Linux:
			sb.WriteString("linux")
		case util.Windows:
			sb.WriteString("win32")
		case util.MAC:
			sb.WriteString("darwin")
		case util.UnknownOS:
			sb.WriteString("none")
		default:
			return llvm.Target{}, "", errors.Errorf("unsupported target operating system identifier %d", opt.TargetOS)
		}

		sb.WriteRune('-')
		sb.WriteString("gnu")

		triple = sb.String()
	}

	llvm.InitializeAllTargets()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return llvm.Target{}, "", err
	}
	return target, triple, nil
}
