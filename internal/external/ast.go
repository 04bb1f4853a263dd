// Package external declares the interfaces the checker core (internal/check)
// consumes from its collaborators: the parser/source AST, the Assembly
// oracle, the IR body emitter, the IR assembly, and the error channel
// (spec.md §6). None of these are implemented here beyond the minimal
// concrete AST node structs the checker needs to type-switch on — the real
// parser, Assembly, and emitter are external to this CORE by design.
//
// Grounded on the package-boundary convention the teacher keeps between
// internal/types (consumer) and internal/core / internal/typedast
// (producers it never reaches back into) — here that convention becomes
// an explicit interface set instead of an implicit import-direction rule.
package external

import "github.com/sunholo/checkercore/internal/ast"

// Node is the base every expression and statement node embeds.
type Node struct {
	Sp ast.Span
}

func (n Node) Span() ast.Span { return n.Sp }

// Expr is the base interface for all expression AST nodes (spec.md §4.3/§4.4).
type Expr interface {
	Span() ast.Span
	exprNode()
}

// Stmt is the base interface for all statement AST nodes (spec.md §4.5).
type Stmt interface {
	Span() ast.Span
	stmtNode()
}

// ---- Literals ----

type LitKind int

const (
	LitNone LitKind = iota
	LitBool
	LitInt
	LitString
	LitGUID
)

// LitExpr is a literal value (spec.md §4.3 "For literals, emit a
// load-const...").
type LitExpr struct {
	Node
	Kind  LitKind
	Value interface{} // bool for LitBool, int64 for LitInt, string for LitString/LitGUID, nil for LitNone
}

func (*LitExpr) exprNode() {}

// VarExpr is a plain variable access — the only expression shape flow
// narrowing is ever allowed to key on (spec.md §9 "Narrowing requires
// variable identity").
type VarExpr struct {
	Node
	Name string
}

func (*VarExpr) exprNode() {}

// TypedStringExpr is T'...'  — literal form (IsConstructor=false) or
// constructor form calling T::tryParse (IsConstructor=true).
type TypedStringExpr struct {
	Node
	TypeName      string
	Literal       string
	IsConstructor bool
}

func (*TypedStringExpr) exprNode() {}

// NSConstExpr is a namespace or static constant / global / captured /
// argument / local variable access by qualified name.
type NSConstExpr struct {
	Node
	Namespace string // "" for a bare name
	Name      string
}

func (*NSConstExpr) exprNode() {}

// ---- Structural construction ----

// TupleExpr constructs a tuple literal.
type TupleExpr struct {
	Node
	Elements []Expr
}

func (*TupleExpr) exprNode() {}

// RecordField is one name:value pair of a record literal.
type RecordField struct {
	Name  string
	Value Expr
}

// RecordExpr constructs a record literal.
type RecordExpr struct {
	Node
	Fields []RecordField
}

func (*RecordExpr) exprNode() {}

// ---- Arguments (shared by entity construction and calls) ----

// Arg is one call/construction argument: Name != "" for name= form,
// IsSpread true for a ...expr form (tuple-spread or record-spread,
// disambiguated by the resolved type of Value).
type Arg struct {
	Name     string
	Value    Expr
	IsSpread bool
}

// ---- Construction / calls ----

// EntityConstructExpr is `Type@{...}` / a factory constructor call.
type EntityConstructExpr struct {
	Node
	TypeName     string
	TemplateArgs []string
	Args         []Arg
	IsFactory    bool
	FactoryName  string // static function name when IsFactory
}

func (*EntityConstructExpr) exprNode() {}

// LambdaParam is one lambda parameter.
type LambdaParam struct {
	Name string
	Type string // "" when the signature is auto-inferred from context
}

// LambdaExpr constructs a lambda value.
type LambdaExpr struct {
	Node
	Params    []LambdaParam
	AutoSig   bool
	Body      Expr
	Captures  []string // names the parser determined are captured
	SourceKey string    // enclosing-key + source position, for the lambda key
}

func (*LambdaExpr) exprNode() {}

// CallKind distinguishes the call forms of spec.md §4.3 "Calls".
type CallKind int

const (
	CallNamespaceFunction CallKind = iota
	CallStatic
)

// CallExpr is a namespace-function or static-function call.
type CallExpr struct {
	Node
	Kind         CallKind
	Namespace    string
	TypeName     string // receiver type for CallStatic
	Name         string
	TemplateArgs []string
	Args         []Arg
}

func (*CallExpr) exprNode() {}

// ---- Operators ----

type PrefixExpr struct {
	Node
	Op      string // "+" "-" "!"
	Operand Expr
}

func (*PrefixExpr) exprNode() {}

type BinOpExpr struct {
	Node
	Op          string // + - * / % == != < <= > >=
	Left, Right Expr
}

func (*BinOpExpr) exprNode() {}

// ShortCircuitExpr covers ||, &&, and the imply form.
type ShortCircuitExpr struct {
	Node
	Op          string // "||" "&&" "=>"
	Left, Right Expr
}

func (*ShortCircuitExpr) exprNode() {}

// NoneCheckExpr is the `?:none`-style short circuit: evaluate RHS only
// when LHS is None.
type NoneCheckExpr struct {
	Node
	Left, Right Expr
}

func (*NoneCheckExpr) exprNode() {}

// CoalesceExpr is `?|`: forward LHS when Some, else evaluate RHS.
type CoalesceExpr struct {
	Node
	Left, Right Expr
}

func (*CoalesceExpr) exprNode() {}

// SelectExpr is `cond ? a : b`.
type SelectExpr struct {
	Node
	Cond, Then, Else Expr
}

func (*SelectExpr) exprNode() {}

// ---- Postfix chains (component C4) ----

type PostfixOpKind int

const (
	PostAccessIndex PostfixOpKind = iota
	PostAccessName
	PostProjectIndices
	PostProjectNames
	PostProjectType
	PostModifyIndices
	PostModifyNames
	PostStructuredExtend
	PostInvoke
	PostCallLambda
	PostIsCheck // is / isSome / isNone / as / tryAs / defaultAs
)

// PostfixOp is one operator in a postfix chain; IsElvis marks `?.`.
type PostfixOp struct {
	Kind    PostfixOpKind
	IsElvis bool

	Index       int      // PostAccessIndex / one entry of PostProjectIndices
	Indices     []int    // PostProjectIndices
	Name        string   // PostAccessName / PostInvoke / PostIsCheck method name
	Names       []string // PostProjectNames
	TypeName    string   // PostProjectType / PostIsCheck type argument
	Replacement []Arg    // PostModifyIndices/Names — Arg.Name holds index-as-string or field name
	Args        []Arg    // PostInvoke / PostCallLambda / PostStructuredExtend (one operand) / PostIsCheck defaultAs (one default-value operand)
}

// PostfixExpr is `root op1 op2 ...` (spec.md §4.4).
type PostfixExpr struct {
	Node
	Root Expr
	Ops  []PostfixOp
}

func (*PostfixExpr) exprNode() {}

// ---- Statements (component C5) ----

type EmptyStmt struct{ Node }

func (*EmptyStmt) stmtNode() {}

// VarDeclStmt declares a local. DeclaredType == nil means `auto` (the
// initializer is required and its flow type becomes the declared type).
type VarDeclStmt struct {
	Node
	Name         string
	DeclaredType *string
	IsConst      bool
	Init         Expr // required when IsConst or DeclaredType == nil
}

func (*VarDeclStmt) stmtNode() {}

// AssignStmt assigns to an existing variable.
type AssignStmt struct {
	Node
	Name  string
	Value Expr
}

func (*AssignStmt) stmtNode() {}

// IfBranch is one `if`/`elseif` arm.
type IfBranch struct {
	Cond Expr
	Body *BlockStmt
}

// IfStmt is if/elseif*/else. Else must be non-nil whenever len(Branches) > 1
// (spec.md §4.5 "requires else when any elseif follows").
type IfStmt struct {
	Node
	Branches []IfBranch
	Else     *BlockStmt
}

func (*IfStmt) stmtNode() {}

type ReturnStmt struct {
	Node
	Value Expr // nil for a bare `return`
}

func (*ReturnStmt) stmtNode() {}

// AssertStmt/CheckStmt both require a Bool|None test and both propagate
// the True-flow environment; they differ only in the emitted opcode
// (emitAssert vs emitCheck).
type AssertStmt struct {
	Node
	Test Expr
}

func (*AssertStmt) stmtNode() {}

type CheckStmt struct {
	Node
	Test Expr
}

func (*CheckStmt) stmtNode() {}

// BlockStmt is a sequence of statements inside its own local scope.
type BlockStmt struct {
	Node
	Stmts []Stmt
}

func (*BlockStmt) stmtNode() {}
