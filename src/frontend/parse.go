// parse.go runs the grammar over source text and lowers the parse tree into
// the typed syntax tree of the ir package. Semantic rules that belong to the
// source surface are enforced here: every function needs an explicit return
// type, returning a pointer from a function is undefined behaviour, and else
// blocks are not supported.

package frontend

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/Harry-Lees/Wellick/src/ir"
)

// Parse parses the given source text into function declarations.
func Parse(src string) ([]*ir.FnDecl, error) {
	tree, err := parser.ParseString("", src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse")
	}

	decls := make([]*ir.FnDecl, 0, len(tree.Functions))
	for _, e1 := range tree.Functions {
		decl, err := lowerFnDecl(e1)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// TokenStream outputs the token stream of the given source string.
func TokenStream(src string) error {
	lx, err := sourceLexer.LexString("", src)
	if err != nil {
		return err
	}

	symbols := make(map[lexer.TokenType]string, len(sourceLexer.Symbols()))
	for name, typ := range sourceLexer.Symbols() {
		symbols[typ] = name
	}
	sb := strings.Builder{}
	tw := tabwriter.NewWriter(&sb, 10, 20, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Value\tType\tPosition\n")
	for {
		t, err := lx.Next()
		if err != nil {
			return err
		}
		if t.EOF() {
			break
		}
		if symbols[t.Type] == "Whitespace" {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%q\t%s\tline: %d:%d\n", t.Value, symbols[t.Type], t.Pos.Line, t.Pos.Column)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Print(sb.String())
	return err
}

// ------------------------------
// ----- Lowering functions -----
// ------------------------------

func lowerFnDecl(fn *fnDecl) (*ir.FnDecl, error) {
	if fn.Ret == nil {
		return nil, errors.Errorf("function %q has no return type", fn.Name)
	}
	ret, err := lowerType(fn.Ret)
	if err != nil {
		return nil, err
	}
	if _, ok := ret.(ir.Pointer); ok {
		return nil, errors.Errorf("function %q returns a pointer, returning pointers is undefined behaviour", fn.Name)
	}

	args := make([]ir.FnArg, 0, len(fn.Args))
	for _, e1 := range fn.Args {
		t, err := lowerType(e1.Type)
		if err != nil {
			return nil, err
		}
		args = append(args, ir.FnArg{Name: e1.Name, Type: t})
	}

	body, err := lowerStmts(fn.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "in function %q", fn.Name)
	}
	return &ir.FnDecl{Name: fn.Name, Args: args, RetType: ret, Body: body}, nil
}

func lowerType(t *typeRef) (ir.EmptyType, error) {
	if t.Pointer != nil {
		elem, err := lowerType(t.Pointer.Elem)
		if err != nil {
			return nil, err
		}
		return ir.Pointer{Pointee: elem, Mutable: t.Pointer.Mutable}, nil
	}
	switch t.Name {
	case "i32":
		return ir.Integer{Kind: ir.I32}, nil
	case "i64":
		return ir.Integer{Kind: ir.I64}, nil
	case "isize":
		return ir.Integer{Kind: ir.PointerSize}, nil
	case "f32":
		return ir.Float{Kind: ir.F32}, nil
	case "f64":
		return ir.Float{Kind: ir.F64}, nil
	}
	return nil, errors.Errorf("line %d:%d: unsupported type %q", t.Pos.Line, t.Pos.Column, t.Name)
}

func lowerStmts(stmts []*stmtNode) ([]ir.Stmt, error) {
	out := make([]ir.Stmt, 0, len(stmts))
	for _, e1 := range stmts {
		s, err := lowerStmt(e1)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func lowerStmt(s *stmtNode) (ir.Stmt, error) {
	switch {
	case s.If != nil:
		if s.If.Else != nil {
			return nil, errors.Errorf("line %d:%d: else blocks are not supported", s.Pos.Line, s.Pos.Column)
		}
		body, err := lowerStmts(s.If.Body)
		if err != nil {
			return nil, err
		}
		return &ir.If{Cond: lowerExpr(s.If.Cond), Body: body}, nil
	case s.Return != nil:
		return &ir.Return{Value: lowerExpr(s.Return.Value)}, nil
	case s.Call != nil:
		return lowerCall(s.Call), nil
	case s.Reassign != nil:
		return &ir.Local{Target: ir.Name{Ident: s.Reassign.Name}, Value: lowerExpr(s.Reassign.Value)}, nil
	case s.Let != nil:
		t, err := lowerType(s.Let.Type)
		if err != nil {
			return nil, err
		}
		return &ir.Assignment{
			Target:  ir.Name{Ident: s.Let.Name},
			Type:    t,
			Value:   lowerExpr(s.Let.Value),
			Mutable: s.Let.Mutable,
		}, nil
	}
	return nil, errors.Errorf("line %d:%d: empty statement", s.Pos.Line, s.Pos.Column)
}

func lowerExpr(e *exprNode) ir.Expression {
	switch {
	case e.Literal != nil:
		if e.Literal.Float != nil {
			return &ir.Literal{Float: ir.NewFloatLiteral(*e.Literal.Float)}
		}
		return &ir.Literal{Integer: ir.NewIntegerLiteral(*e.Literal.Integer)}
	case e.Call != nil:
		return lowerCall(e.Call)
	case e.AddressOf != nil:
		return &ir.AddressOf{Name: e.AddressOf.Name, Mutable: e.AddressOf.Mutable}
	case e.DeRef != nil:
		return &ir.DeRef{Name: e.DeRef.Name}
	default:
		return &ir.Identifier{Name: *e.Ident}
	}
}

func lowerCall(c *callExpr) *ir.Call {
	return &ir.Call{
		Func: c.Func,
		Args: lo.Map(c.Args, func(a *exprNode, _ int) ir.Expression { return lowerExpr(a) }),
	}
}
