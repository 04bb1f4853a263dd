package external

import "github.com/sunholo/checkercore/internal/rtype"

// Param is one declared parameter of a function/method/static signature
// (spec.md §3 parameter list invariants: no optional-before-required, no
// optional+rest combination — enforced by the declaration driver, C7,
// before it ever reaches C2).
type Param struct {
	Name     string
	Type     *rtype.ResolvedType
	Optional bool
	Default  Expr // nil when the parameter has no declared default
}

// TemplateParam is one template (generic) name a declaration binds, with
// its declared bound (a concept/entity constraint) and a uniqueness marker
// (spec.md §3 "Template binds must satisfy declared bounds and uniqueness
// markers").
type TemplateParam struct {
	Name   string
	Bound  *rtype.ResolvedType // nil means unbounded (implicitly Any)
	Unique bool
}

// Signature is the shared shape of a function/method/static declaration's
// parameter list, grounded on spec.md §3 FunctionAtom and consumed by both
// C2 (argument resolution) and C7 (declaration-driver env construction).
type Signature struct {
	Templates []TemplateParam
	Params    []Param
	Rest      *Param // rest parameter; its Type is the declared collection/map entity type
	Result    *rtype.ResolvedType
}

// FunctionDecl is a namespace-level function declaration.
type FunctionDecl struct {
	Namespace string
	Name      string
	Sig       Signature
	Body      Body2
	Key       string // IR assembly function key, precomputed by the driver
}

// MethodDecl is an instance method declaration on an entity/concept type.
type MethodDecl struct {
	OwnerType  *rtype.ResolvedType // the declared receiver type ("this")
	ReceiverBinds map[string]*rtype.ResolvedType
	Name       string
	Sig        Signature
	Body       Body2
	Key        string
	RootKey    string // virtual-dispatch root key, for override unification
}

// StaticDecl is a static function declaration on an entity/concept type.
type StaticDecl struct {
	OwnerType *rtype.ResolvedType
	Name      string
	Sig       Signature
	Body      Body2
	Key       string
}

// GlobalDecl is a mutable namespace-level global variable.
type GlobalDecl struct {
	Namespace    string
	Name         string
	DeclaredType *rtype.ResolvedType
	Init         Expr
	Key          string
}

// ConstDecl is a namespace-level or static constant.
type ConstDecl struct {
	Namespace    string
	Name         string
	DeclaredType *rtype.ResolvedType
	Init         Expr
	Key          string
}

// InvariantDecl is an object invariant: a boolean test over "this" checked
// after construction and after every mutating method, per spec.md §4.7
// ("cloned environments for pre- and post-conditions").
type InvariantDecl struct {
	OwnerType *rtype.ResolvedType
	Test      Expr
	IsPre     bool // pre-condition vs post-condition (post additionally binds `_return_`)
	Key       string
}

// FieldDefault is one entity field's default-value expression, checked by
// C7's OO-type driver against the field's declared type.
type FieldDefault struct {
	Name         string
	DeclaredType *rtype.ResolvedType
	Init         Expr
}

// OOTypeDecl is an entity/concept declaration's own per-type checking unit:
// the default-value expressions of its declared fields (spec.md §4.7
// "OO-type" declaration kind). Method/static/invariant bodies of the same
// type are separate MethodDecl/StaticDecl/InvariantDecl entries the driver
// walks independently.
type OOTypeDecl struct {
	OwnerType     *rtype.ResolvedType
	FieldDefaults []FieldDefault
	Key           string
}

// Body2 is the raw, unchecked body form the parser hands the declaration
// drivers (spec.md §4.6): a raw source pass-through, a single expression,
// or a block. Named Body2 to avoid colliding with BodyEmitter's compiled
// Body handle.
type Body2 struct {
	Kind BodyKind
	Raw  string // BodyRaw
	Expr Expr   // BodyExpr
	Block *BlockStmt // BodyBlock
}

type BodyKind int

const (
	BodyRaw BodyKind = iota
	BodyExpr
	BodyBlock
)
