package tenv

import "github.com/sunholo/checkercore/internal/rtype"

// scope is one level of the variable-table stack. Popped scopes are never
// mutated again, so sharing a parent pointer across copies is safe.
type scope struct {
	vars   map[string]VarInfo
	parent *scope
}

func (s *scope) lookup(name string) (VarInfo, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return VarInfo{}, false
}

// definedInCurrent reports whether name is bound in s's own frame (not an
// ancestor) — used by the no-shadow check in the statement checker (C5).
func (s *scope) definedInCurrent(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// TypeEnvironment is spec.md §3's typing environment: template binds
// ("terms"), a variable table (locals/arguments/captures), the current
// expression result (type + flow-truth), reachability, and the
// accumulated return-statement union. Every transition method returns a
// new TypeEnvironment; the receiver is never mutated.
type TypeEnvironment struct {
	scope *scope
	terms map[string]*rtype.ResolvedType

	resultType  *rtype.ResolvedType
	resultTruth FlowTruth

	reachable    bool
	returnResult *rtype.ResolvedType
}

// New returns an empty, reachable environment with no bindings.
func New() *TypeEnvironment {
	return &TypeEnvironment{
		scope:     &scope{vars: map[string]VarInfo{}},
		terms:     map[string]*rtype.ResolvedType{},
		reachable: true,
	}
}

func (e *TypeEnvironment) clone() *TypeEnvironment {
	cp := *e
	return &cp
}

// PushScope opens a new local variable scope (spec.md §4.5 "block").
func (e *TypeEnvironment) PushScope() *TypeEnvironment {
	cp := e.clone()
	cp.scope = &scope{vars: map[string]VarInfo{}, parent: e.scope}
	return cp
}

// PopScope closes the innermost local variable scope, discarding its
// bindings. Callers (C5) must have already emitted localLifetimeEnd for
// each of its locals before calling this.
func (e *TypeEnvironment) PopScope() *TypeEnvironment {
	if e.scope.parent == nil {
		return e
	}
	cp := e.clone()
	cp.scope = e.scope.parent
	return cp
}

// LocalsInCurrentScope returns the names bound directly in the innermost
// scope, for localLifetimeEnd emission on block exit.
func (e *TypeEnvironment) LocalsInCurrentScope() []string {
	names := make([]string, 0, len(e.scope.vars))
	for n := range e.scope.vars {
		names = append(names, n)
	}
	return names
}

// Lookup finds a variable anywhere in the scope chain.
func (e *TypeEnvironment) Lookup(name string) (VarInfo, bool) {
	return e.scope.lookup(name)
}

// DefinedInCurrentScope reports whether name is bound in the innermost
// scope specifically (used for the no-shadow check, which only rejects
// shadowing within the same block, not across nested blocks).
func (e *TypeEnvironment) DefinedInCurrentScope(name string) bool {
	return e.scope.definedInCurrent(name)
}

// Define binds name to info in the innermost scope.
func (e *TypeEnvironment) Define(name string, info VarInfo) *TypeEnvironment {
	cp := e.clone()
	newVars := make(map[string]VarInfo, len(e.scope.vars)+1)
	for k, v := range e.scope.vars {
		newVars[k] = v
	}
	newVars[name] = info
	cp.scope = &scope{vars: newVars, parent: e.scope.parent}
	return cp
}

// Narrow rebinds an existing variable's VarInfo (flow narrowing never
// creates a new variable, only shrinks flowType on one already in scope).
// It rewrites the frame that actually owns the name.
func (e *TypeEnvironment) Narrow(name string, info VarInfo) *TypeEnvironment {
	cp := e.clone()
	cp.scope = narrowInChain(e.scope, name, info)
	return cp
}

func narrowInChain(s *scope, name string, info VarInfo) *scope {
	if s == nil {
		return nil
	}
	if _, ok := s.vars[name]; ok {
		newVars := make(map[string]VarInfo, len(s.vars))
		for k, v := range s.vars {
			newVars[k] = v
		}
		newVars[name] = info
		return &scope{vars: newVars, parent: s.parent}
	}
	return &scope{vars: s.vars, parent: narrowInChain(s.parent, name, info)}
}

// Term looks up a template bind.
func (e *TypeEnvironment) Term(name string) (*rtype.ResolvedType, bool) {
	t, ok := e.terms[name]
	return t, ok
}

// WithTerm binds a template name to a resolved type.
func (e *TypeEnvironment) WithTerm(name string, t *rtype.ResolvedType) *TypeEnvironment {
	cp := e.clone()
	newTerms := make(map[string]*rtype.ResolvedType, len(e.terms)+1)
	for k, v := range e.terms {
		newTerms[k] = v
	}
	newTerms[name] = t
	cp.terms = newTerms
	return cp
}

// Terms returns a read-only view of the template binds.
func (e *TypeEnvironment) Terms() map[string]*rtype.ResolvedType {
	return e.terms
}

// Result returns the environment's current expression result.
func (e *TypeEnvironment) Result() (*rtype.ResolvedType, FlowTruth) {
	return e.resultType, e.resultTruth
}

// WithResult sets the current expression result (type + flow-truth).
func (e *TypeEnvironment) WithResult(t *rtype.ResolvedType, truth FlowTruth) *TypeEnvironment {
	cp := e.clone()
	cp.resultType = t
	cp.resultTruth = truth
	return cp
}

// Reachable reports whether normal control flow can still reach this point.
func (e *TypeEnvironment) Reachable() bool {
	return e.reachable
}

// WithReachable sets the reachability flag (cleared by return statements).
func (e *TypeEnvironment) WithReachable(r bool) *TypeEnvironment {
	cp := e.clone()
	cp.reachable = r
	return cp
}

// ReturnResult returns the accumulated union of all return statement types
// seen so far in the current body, or nil if none have been seen.
func (e *TypeEnvironment) ReturnResult() *rtype.ResolvedType {
	return e.returnResult
}

// WithReturn unions t into the accumulated returnResult.
func (e *TypeEnvironment) WithReturn(t *rtype.ResolvedType) *TypeEnvironment {
	cp := e.clone()
	if cp.returnResult == nil {
		cp.returnResult = t
	} else {
		cp.returnResult = rtype.Union(cp.returnResult, t)
	}
	return cp
}
