package tenv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/checkercore/internal/rtype"
)

type testDecl string

func (d testDecl) DeclName() string { return string(d) }

func TestDefineAndLookup(t *testing.T) {
	intT := rtype.Single(rtype.EntityAtom{D: testDecl("Int")})
	env := New().Define("x", VarInfo{DeclaredType: intT, FlowType: intT, MustDefined: true})

	v, ok := env.Lookup("x")
	require.True(t, ok)
	require.True(t, v.FlowType.Equals(intT))
}

func TestNarrowShrinksFlowTypeOnly(t *testing.T) {
	intT := rtype.Single(rtype.EntityAtom{D: testDecl("Int")})
	union := rtype.Union(intT, rtype.None())
	env := New().Define("x", VarInfo{DeclaredType: union, FlowType: union, MustDefined: true})

	narrowed := env.Narrow("x", VarInfo{DeclaredType: union, FlowType: intT, MustDefined: true})
	v, ok := narrowed.Lookup("x")
	require.True(t, ok)
	require.True(t, v.FlowType.Equals(intT))
	require.True(t, v.DeclaredType.Equals(union))

	// Original environment is untouched (immutability).
	orig, _ := env.Lookup("x")
	require.True(t, orig.FlowType.Equals(union))
}

func TestPushPopScope(t *testing.T) {
	outer := New().Define("x", VarInfo{})
	inner := outer.PushScope().Define("y", VarInfo{})

	_, ok := inner.Lookup("y")
	require.True(t, ok)
	require.True(t, inner.DefinedInCurrentScope("y"))
	require.False(t, inner.DefinedInCurrentScope("x"))

	popped := inner.PopScope()
	_, ok = popped.Lookup("y")
	require.False(t, ok)
	_, ok = popped.Lookup("x")
	require.True(t, ok)
}

func TestWithReturnUnionsAcrossReturns(t *testing.T) {
	intT := rtype.Single(rtype.EntityAtom{D: testDecl("Int")})
	strT := rtype.Single(rtype.EntityAtom{D: testDecl("String")})
	env := New().WithReturn(intT).WithReturn(strT)
	require.True(t, env.ReturnResult().Equals(rtype.Union(intT, strT)))
}

func TestJoinUnionsFlowTypesAndIntersectsVars(t *testing.T) {
	intT := rtype.Single(rtype.EntityAtom{D: testDecl("Int")})
	strT := rtype.Single(rtype.EntityAtom{D: testDecl("String")})
	union := rtype.Union(intT, strT)

	a := New().Define("x", VarInfo{DeclaredType: union, FlowType: intT, MustDefined: true})
	a = a.Define("onlyA", VarInfo{DeclaredType: intT, FlowType: intT, MustDefined: true})
	b := New().Define("x", VarInfo{DeclaredType: union, FlowType: strT, MustDefined: false})

	joined := Join(a, b)
	x, ok := joined.Lookup("x")
	require.True(t, ok)
	require.True(t, x.FlowType.Equals(union))
	require.False(t, x.MustDefined)

	_, ok = joined.Lookup("onlyA")
	require.False(t, ok, "vars not defined on every branch are dropped by intersection")
}

func TestMultiFlowValidateRejectsEmpty(t *testing.T) {
	var m MultiFlow
	require.ErrorIs(t, m.Validate(), ErrEmptyMultiFlow)

	m = MultiFlow{New()}
	require.NoError(t, m.Validate())
}
