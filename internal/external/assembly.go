package external

import "github.com/sunholo/checkercore/internal/rtype"

// MemberKind distinguishes the four lookup kinds the Assembly oracle
// resolves OO members by (spec.md §6).
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberConst
	MemberStatic
)

// Member is what tryGetOOMemberDecl{Unique,Options} returns: the
// declaration it resolved to (for virtual-dispatch root unification) and
// the member's resolved type (field type, or function signature for
// methods/statics).
type Member struct {
	Decl rtype.Decl
	Type *rtype.ResolvedType // FunctionAtom-backed for MemberMethod/MemberStatic
	Root rtype.Decl          // the most-derived common ancestor the name unifies at; nil means ambiguous
}

// FieldInfo is one entry of Assembly.GetAllOOFields's result.
type FieldInfo struct {
	Decl      rtype.Decl
	FieldName string
	Type      *rtype.ResolvedType
	Default   Expr // nil if the field has no declared default
	Binds     map[string]*rtype.ResolvedType
}

// Assembly is the resolved name→declaration database the checker core
// consults but never owns (spec.md §6): nominal + structural subtyping,
// field/method lookup, template-bind resolution, and type normalization.
// A real implementation sits outside this CORE entirely; internal/ir
// provides a toy implementation for tests and cmd/typecheck only.
type Assembly interface {
	rtype.Subtyper
	rtype.TupleNormalizer
	rtype.RecordNormalizer
	rtype.FieldResolver

	NormalizeType(signature interface{}, binds map[string]*rtype.ResolvedType) (*rtype.ResolvedType, error)
	TypeUnion(types []*rtype.ResolvedType) *rtype.ResolvedType

	EnsureTupleStructuralRepresentation(t *rtype.ResolvedType) bool
	EnsureRecordStructuralRepresentation(t *rtype.ResolvedType) bool

	TryGetOOMemberDeclUnique(t *rtype.ResolvedType, kind MemberKind, name string) (Member, bool)
	TryGetOOMemberDeclOptions(t *rtype.ResolvedType, kind MemberKind, name string) []Member

	GetAllOOFields(decl rtype.Decl, binds map[string]*rtype.ResolvedType) map[string]FieldInfo

	// ResolveBindsForCall unifies template-declaration bounds against
	// call-site template args, the receiver's own binds, and the
	// enclosing declaration's binds. ok=false means the bounds could not
	// be satisfied.
	ResolveBindsForCall(termDecls []string, termArgs []*rtype.ResolvedType,
		receiverBinds, callerBinds map[string]*rtype.ResolvedType) (map[string]*rtype.ResolvedType, bool)

	// ComputeUnifiedFunctionType unifies N candidate method signatures
	// that all share a common root declaration into one signature usable
	// for virtual dispatch; ok=false means they could not be unified.
	ComputeUnifiedFunctionType(candidates []rtype.FunctionAtom, root rtype.Decl) (*rtype.FunctionAtom, bool)

	// RestrictT/RestrictNotT implement the `is[T]` narrowing operators:
	// RestrictT returns the part of t assignable to target; RestrictNotT
	// returns the complementary part.
	RestrictT(t *rtype.ResolvedType, target *rtype.ResolvedType) *rtype.ResolvedType
	RestrictNotT(t *rtype.ResolvedType, target *rtype.ResolvedType) *rtype.ResolvedType

	HasNamespace(ns string) bool

	GetSpecialNoneType() *rtype.ResolvedType
	SomeType(inner *rtype.ResolvedType) *rtype.ResolvedType
	BoolType() *rtype.ResolvedType
	IntType() *rtype.ResolvedType
	StringType() *rtype.ResolvedType
	GUIDType() *rtype.ResolvedType
	AnyType() *rtype.ResolvedType
	// EnumType and CustomKeyType are the nominal "kind" markers an enum or
	// custom-key entity declares among its Supertypes; checkEquality uses
	// them to recognize the spec.md §4.3 rule (c) same-enum/same-custom-key
	// equality case.
	EnumType() *rtype.ResolvedType
	CustomKeyType() *rtype.ResolvedType
	// TupleConceptType, RecordConceptType, ObjectConceptType, and
	// FunctionConceptType are the structural-shape concept markers spec.md
	// §6 lists alongside the scalar Specials (e.g. for `T is Tuple`-style
	// shape tests against a template-bound T).
	TupleConceptType() *rtype.ResolvedType
	RecordConceptType() *rtype.ResolvedType
	ObjectConceptType() *rtype.ResolvedType
	FunctionConceptType() *rtype.ResolvedType
	ParsableConcept() *rtype.ResolvedType
	// TypedStringType builds the parametrized String<T> result of a typed
	// string literal form (spec.md §4.3 "Typed string").
	TypedStringType(inner *rtype.ResolvedType) *rtype.ResolvedType

	// ResolveTypeName looks a bare nominal type name up to its entity or
	// concept ResolvedType, for entity construction and typed strings.
	ResolveTypeName(name string) (*rtype.ResolvedType, bool)

	// ResolveConst looks up a namespace-level (or bare, when namespace is
	// "") constant or global declaration by name.
	ResolveConst(namespace, name string) (*rtype.ResolvedType, bool)

	// ResolveFunction looks up a namespace-level function's signature
	// (FunctionAtom-backed ResolvedType) and its declared template
	// parameters.
	ResolveFunction(namespace, name string) (sig *rtype.ResolvedType, templates []TemplateParam, ok bool)

	// CollectionElementType returns T for a collection entity, or (K,V)
	// as a tuple type for a map entity; ok=false means t is neither.
	CollectionElementType(t *rtype.ResolvedType) (elem *rtype.ResolvedType, isMap bool, ok bool)
}
