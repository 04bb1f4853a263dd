package check_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/check"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/ir"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

func pointDecl(asm *ir.Assembly) *rtype.ResolvedType {
	intT := asm.IntType()
	asm.DefineEntity(&ir.EntityDecl{
		Name: "Point",
		Fields: map[string]ir.FieldSpec{
			"x": {Type: intT},
			"y": {Type: intT},
		},
	})
	t, ok := asm.ResolveTypeName("Point")
	if !ok {
		panic("Point not registered")
	}
	return t
}

// `p?.x` where p: Point? narrows away None before the field access and
// re-unions it into the final result.
func TestCheckPostfixElvisNarrowsThenReunitesNone(t *testing.T) {
	asm := ir.NewAssembly()
	emit := ir.NewEmitter()
	errs := cerrors.NewChannel()
	c := check.New(asm, emit, ir.NewIRAssembly(), errs, nil)

	pointT := pointDecl(asm)
	optPoint := rtype.Union(pointT, rtype.None())

	env := tenv.New().Define("p", tenv.VarInfo{DeclaredType: optPoint, FlowType: optPoint, MustDefined: true})
	n := &external.PostfixExpr{
		Root: &external.VarExpr{Name: "p"},
		Ops: []external.PostfixOp{
			{Kind: external.PostAccessName, IsElvis: true, Name: "x"},
		},
	}

	_, mf, err := c.CheckExpr(env, n, nil)
	require.NoError(t, err)
	require.Len(t, mf, 1)
	require.True(t, rtype.HasNone(mf.ResultType()))
}

// `v is Point` on a bare variable splits into a true/false multi-flow that
// narrows v's FlowType in each branch.
func TestCheckPostfixIsNarrowsVariable(t *testing.T) {
	asm := ir.NewAssembly()
	emit := ir.NewEmitter()
	errs := cerrors.NewChannel()
	c := check.New(asm, emit, ir.NewIRAssembly(), errs, nil)

	pointT := pointDecl(asm)
	strT := asm.StringType()
	unionT := rtype.Union(pointT, strT)

	env := tenv.New().Define("v", tenv.VarInfo{DeclaredType: unionT, FlowType: unionT, MustDefined: true})
	n := &external.PostfixExpr{
		Root: &external.VarExpr{Name: "v"},
		Ops: []external.PostfixOp{
			{Kind: external.PostIsCheck, Name: "is", TypeName: "Point"},
		},
	}

	_, mf, err := c.CheckExpr(env, n, nil)
	require.NoError(t, err)
	require.Len(t, mf, 2)

	trueEnv, falseEnv := mf[0], mf[1]
	trueV, ok := trueEnv.Lookup("v")
	require.True(t, ok)
	require.Equal(t, pointT.Key(), trueV.FlowType.Key())

	falseV, ok := falseEnv.Lookup("v")
	require.True(t, ok)
	require.Equal(t, strT.Key(), falseV.FlowType.Key())
}

// `v as Point` requires static subtyping proof and fails loudly when the
// static type cannot prove it.
func TestCheckPostfixAsRejectsUnprovenConversion(t *testing.T) {
	asm := ir.NewAssembly()
	emit := ir.NewEmitter()
	errs := cerrors.NewChannel()
	c := check.New(asm, emit, ir.NewIRAssembly(), errs, nil)

	pointDecl(asm)
	strT := asm.StringType()

	env := tenv.New().Define("s", tenv.VarInfo{DeclaredType: strT, FlowType: strT, MustDefined: true})
	n := &external.PostfixExpr{
		Root: &external.VarExpr{Name: "s"},
		Ops: []external.PostfixOp{
			{Kind: external.PostIsCheck, Name: "as", TypeName: "Point"},
		},
	}

	_, _, err := c.CheckExpr(env, n, nil)
	require.Error(t, err)
}

// `x?.foo` on a statically non-optional x is a redundant elvis and must
// raise CHK005RedundantNullCheck rather than silently falling through.
func TestCheckPostfixRedundantElvisErrors(t *testing.T) {
	asm := ir.NewAssembly()
	emit := ir.NewEmitter()
	errs := cerrors.NewChannel()
	c := check.New(asm, emit, ir.NewIRAssembly(), errs, nil)

	pointT := pointDecl(asm)

	env := tenv.New().Define("p", tenv.VarInfo{DeclaredType: pointT, FlowType: pointT, MustDefined: true})
	n := &external.PostfixExpr{
		Root: &external.VarExpr{Name: "p"},
		Ops: []external.PostfixOp{
			{Kind: external.PostAccessName, IsElvis: true, Name: "x"},
		},
	}

	_, _, err := c.CheckExpr(env, n, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CHK005")
}

// `v tryAs Point` always succeeds statically, producing Point|None.
func TestCheckPostfixTryAsProducesOptionalResult(t *testing.T) {
	asm := ir.NewAssembly()
	emit := ir.NewEmitter()
	errs := cerrors.NewChannel()
	c := check.New(asm, emit, ir.NewIRAssembly(), errs, nil)

	pointDecl(asm)
	anyT := rtype.Any()

	env := tenv.New().Define("v", tenv.VarInfo{DeclaredType: anyT, FlowType: anyT, MustDefined: true})
	n := &external.PostfixExpr{
		Root: &external.VarExpr{Name: "v"},
		Ops: []external.PostfixOp{
			{Kind: external.PostIsCheck, Name: "tryAs", TypeName: "Point"},
		},
	}

	_, mf, err := c.CheckExpr(env, n, nil)
	require.NoError(t, err)
	require.Len(t, mf, 1)
	require.True(t, rtype.HasNone(mf.ResultType()))
}
