// Package tenv implements the VarInfo/TypeEnvironment data model of
// spec.md §3: a stack of scopes carrying template binds, a variable table,
// the current expression result, reachability, and accumulated return
// type, plus the multi-flow list that every environment transition
// produces. Grounded on the teacher's parent-linked scope chain in
// internal/types/env.go, generalized from a single-binding TypeEnv to an
// immutable-transition TypeEnvironment per spec.md's "every transition
// returns a new value" rule.
package tenv

import "github.com/sunholo/checkercore/internal/rtype"

// FlowTruth is the attached True/False/Unknown tag used to refine the
// surrounding branch's environments (spec.md GLOSSARY "Flow-truth value").
type FlowTruth int

const (
	Unknown FlowTruth = iota
	True
	False
)

// AccessKind distinguishes how a variable's storage is addressed in
// emitted IR (local / argument / captured), orthogonal to flow typing.
// Namespace/const access never goes through VarInfo at all (spec.md §4.3
// resolves those directly against the Assembly oracle).
type AccessKind int

const (
	AccessLocal AccessKind = iota
	AccessArg
	AccessCaptured
)

// VarInfo is spec.md §3's (declaredType, isConst, mustDefined, flowType).
// flowType ⊆ declaredType always — narrowing can only shrink.
type VarInfo struct {
	DeclaredType *rtype.ResolvedType
	IsConst      bool
	MustDefined  bool
	FlowType     *rtype.ResolvedType
	Kind         AccessKind
}

// Narrow returns a copy of v with FlowType replaced; callers are
// responsible for ensuring narrowed is a subtype of v.DeclaredType (the
// invariant is enforced by the caller's Subtyper, not here, since this
// package has no Assembly oracle to check against).
func (v VarInfo) Narrow(narrowed *rtype.ResolvedType) VarInfo {
	v.FlowType = narrowed
	return v
}
