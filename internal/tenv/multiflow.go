package tenv

import (
	"fmt"

	"github.com/sunholo/checkercore/internal/rtype"
)

// MultiFlow is an expression's result as a non-empty sequence of
// alternative post-state environments (spec.md GLOSSARY "Multi-flow").
// Order is preserved in the order splits were introduced (spec.md §5).
type MultiFlow []*TypeEnvironment

// ErrEmptyMultiFlow is returned wherever a multi-flow split would produce
// zero feasible branches (e.g. a redundant elvis or an always-taken
// condition), per the testable properties in spec.md §8.
var ErrEmptyMultiFlow = fmt.Errorf("multi-flow split produced no feasible branches")

// Validate enforces the "never empty" invariant.
func (m MultiFlow) Validate() error {
	if len(m) == 0 {
		return ErrEmptyMultiFlow
	}
	return nil
}

// Join implements spec.md §4.5's environment-join algorithm for
// environments meeting at a label: unify terms (must be identical across
// all branches — any mismatch is a programmer error in the driver, not a
// checked-program error, so it panics), intersect the defined variable
// sets, union each variable's flowType, preserve mustDefined only if every
// incoming branch defined the variable, and OR reachability.
func Join(envs ...*TypeEnvironment) *TypeEnvironment {
	if len(envs) == 0 {
		panic("tenv.Join called with no environments")
	}
	if len(envs) == 1 {
		return envs[0]
	}

	result := envs[0]
	for _, other := range envs[1:] {
		result = joinTwo(result, other)
	}
	return result
}

func joinTwo(a, b *TypeEnvironment) *TypeEnvironment {
	for name, at := range a.terms {
		bt, ok := b.terms[name]
		if !ok || !at.Equals(bt) {
			panic(fmt.Sprintf("tenv.Join: incompatible template binds for %q", name))
		}
	}

	joined := New()
	joined.terms = a.terms
	joined.reachable = a.reachable || b.reachable

	names := intersectNames(a, b)
	vars := make(map[string]VarInfo, len(names))
	for _, name := range names {
		av, _ := a.Lookup(name)
		bv, _ := b.Lookup(name)
		vars[name] = VarInfo{
			DeclaredType: av.DeclaredType,
			IsConst:      av.IsConst && bv.IsConst,
			MustDefined:  av.MustDefined && bv.MustDefined,
			FlowType:     rtype.Union(av.FlowType, bv.FlowType),
			Kind:         av.Kind,
		}
	}
	joined.scope = &scope{vars: vars}

	if a.returnResult == nil {
		joined.returnResult = b.returnResult
	} else if b.returnResult == nil {
		joined.returnResult = a.returnResult
	} else {
		joined.returnResult = rtype.Union(a.returnResult, b.returnResult)
	}
	return joined
}

// ResultType unions the current expression result type across every
// alternative in m, for callers (e.g. argresolve's EvalFunc) that need a
// single type and don't themselves need to thread narrowing further.
func (m MultiFlow) ResultType() *rtype.ResolvedType {
	types := make([]*rtype.ResolvedType, len(m))
	for i, e := range m {
		t, _ := e.Result()
		types[i] = t
	}
	return rtype.Union(types...)
}

func intersectNames(a, b *TypeEnvironment) []string {
	var names []string
	seen := map[string]bool{}
	for _, s := range []*scope{a.scope} {
		for cur := s; cur != nil; cur = cur.parent {
			for n := range cur.vars {
				if seen[n] {
					continue
				}
				seen[n] = true
				if _, ok := b.Lookup(n); ok {
					names = append(names, n)
				}
			}
		}
	}
	return names
}
