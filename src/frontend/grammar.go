// grammar.go defines the lexer rules and the grammar of the Wellick source
// language. The grammar is declared on the node structs themselves and
// compiled once at package initialisation.
//
// Whitespace and line breaks are insignificant except that keywords must be
// separated from identifiers; the lexer guarantees that by scanning maximal
// identifier runs, so "fnmain" is one identifier, never the keyword "fn".

package frontend

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// sourceLexer tokenises Wellick source text. Rule order matters: float
// literals are tried before the integer forms so "4.2e1" is not split, and
// the 0x/0o prefixed forms are tried before plain decimals. Underscores are
// permitted between digits of every numeric form.
var sourceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Float", Pattern: `\.[0-9][0-9_]*([eE][+-]?[0-9][0-9_]*)?|[0-9][0-9_]*(\.[0-9][0-9_]*)?[eE][+-]?[0-9][0-9_]*|[0-9][0-9_]*\.[0-9_]*`},
	{Name: "Hex", Pattern: `0[xX][0-9a-fA-F][0-9a-fA-F_]*`},
	{Name: "Octal", Pattern: `0[oO][0-7][0-7_]*`},
	{Name: "Decimal", Pattern: `[0-9][0-9_]*`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Punct", Pattern: `[{}(),:;=&*]`},
})

// parser is the compiled grammar. Two tokens of lookahead separate the
// statement and expression alternatives that share an identifier prefix:
// calls (ident "(") and reassignments (ident "=").
var parser = participle.MustBuild[program](
	participle.Lexer(sourceLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ----------------------------
// ----- Grammar structs ------
// ----------------------------

type program struct {
	Functions []*fnDecl `@@*`
}

type fnDecl struct {
	Pos  lexer.Position
	Name string      `"fn" @Ident`
	Args []*fnArg    `"(" (@@ ("," @@)* ","?)? ")"`
	Ret  *typeRef    `("->" @@)?`
	Body []*stmtNode `"{" @@* "}"`
}

type fnArg struct {
	Pos  lexer.Position
	Name string   `@Ident`
	Type *typeRef `":" @@`
}

type typeRef struct {
	Pos     lexer.Position
	Pointer *pointerRef `@@`
	Name    string      `| @("i32" | "i64" | "isize" | "f32" | "f64")`
}

type pointerRef struct {
	Mutable bool     `"*" @"mut"?`
	Elem    *typeRef `@@`
}

// stmtNode alternatives are ordered so that keyword statements win first and
// the let form is tried last.
type stmtNode struct {
	Pos      lexer.Position
	If       *ifStmt       `@@`
	Return   *returnStmt   `| @@`
	Call     *callExpr     `| @@ ";"`
	Reassign *reassignStmt `| @@ ";"`
	Let      *letStmt      `| @@ ";"`
}

type ifStmt struct {
	Cond *exprNode   `"if" @@`
	Body []*stmtNode `"{" @@* "}"`
	Else *elseBlock  `@@?`
}

// elseBlock is recognised by the grammar but rejected during lowering; the
// translator has no else support.
type elseBlock struct {
	Body []*stmtNode `"else" "{" @@* "}"`
}

type returnStmt struct {
	Value *exprNode `"return" @@ ";"`
}

type letStmt struct {
	Pos     lexer.Position
	Mutable bool      `"let" @"mut"?`
	Name    string    `@Ident`
	Type    *typeRef  `":" @@`
	Value   *exprNode `"=" @@`
}

type reassignStmt struct {
	Name  string    `@Ident "="`
	Value *exprNode `@@`
}

type callExpr struct {
	Pos  lexer.Position
	Func string      `@Ident`
	Args []*exprNode `"(" (@@ ("," @@)* ","?)? ")"`
}

type exprNode struct {
	Pos       lexer.Position
	Literal   *literal   `@@`
	Call      *callExpr  `| @@`
	AddressOf *addressOf `| @@`
	DeRef     *derefExpr `| @@`
	Ident     *string    `| @Ident`
}

// literal keeps the raw lexeme; the numeric value is not computed here.
type literal struct {
	Float   *string `@Float`
	Integer *string `| @(Hex | Octal | Decimal)`
}

type addressOf struct {
	Mutable bool   `"&" @"mut"?`
	Name    string `@Ident`
}

type derefExpr struct {
	Name string `"*" @Ident`
}
