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

func newOpChecker() (*check.Checker, *ir.Assembly) {
	asm := ir.NewAssembly()
	emit := ir.NewEmitter()
	errs := cerrors.NewChannel()
	return check.New(asm, emit, ir.NewIRAssembly(), errs, nil), asm
}

// `+` over two Strings is not arithmetic concatenation; it must fail with
// CHK016UnsupportedOp since spec.md §4.3 requires both operands Int.
func TestCheckArithStringConcatIsUnsupported(t *testing.T) {
	c, asm := newOpChecker()
	strT := asm.StringType()

	env := tenv.New().
		Define("a", tenv.VarInfo{DeclaredType: strT, FlowType: strT, MustDefined: true}).
		Define("b", tenv.VarInfo{DeclaredType: strT, FlowType: strT, MustDefined: true})

	n := &external.BinOpExpr{
		Op:    "+",
		Left:  &external.VarExpr{Name: "a"},
		Right: &external.VarExpr{Name: "b"},
	}

	_, _, err := c.CheckExpr(env, n, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CHK016")
}

// Two ordinary same-type Entity values are NOT equality-compatible: only
// None, matching scalars, or same enum/custom-key types are.
func TestCheckEqualityRejectsOrdinaryEntityComparison(t *testing.T) {
	c, asm := newOpChecker()
	pointT := pointDecl(asm)

	env := tenv.New().
		Define("a", tenv.VarInfo{DeclaredType: pointT, FlowType: pointT, MustDefined: true}).
		Define("b", tenv.VarInfo{DeclaredType: pointT, FlowType: pointT, MustDefined: true})

	n := &external.BinOpExpr{
		Op:    "==",
		Left:  &external.VarExpr{Name: "a"},
		Right: &external.VarExpr{Name: "b"},
	}

	_, _, err := c.CheckExpr(env, n, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CHK016")
}

// Two values of the same declared enum type ARE equality-compatible, per
// spec.md §4.3 rule (c).
func TestCheckEqualityAllowsSameEnumComparison(t *testing.T) {
	c, asm := newOpChecker()
	asm.DefineEntity(&ir.EntityDecl{
		Name:       "Suit",
		Supertypes: []rtype.ConceptRef{{D: asm.EnumType().Atoms[0].(rtype.ConceptAtom).Concepts[0].D}},
	})
	suitT, ok := asm.ResolveTypeName("Suit")
	require.True(t, ok)

	env := tenv.New().
		Define("a", tenv.VarInfo{DeclaredType: suitT, FlowType: suitT, MustDefined: true}).
		Define("b", tenv.VarInfo{DeclaredType: suitT, FlowType: suitT, MustDefined: true})

	n := &external.BinOpExpr{
		Op:    "==",
		Left:  &external.VarExpr{Name: "a"},
		Right: &external.VarExpr{Name: "b"},
	}

	_, mf, err := c.CheckExpr(env, n, nil)
	require.NoError(t, err)
	require.Len(t, mf, 1)
	require.Equal(t, asm.BoolType().Key(), mf.ResultType().Key())
}

// `n ?| 0` on a statically non-optional n is a redundant null check.
func TestCheckCoalesceRedundantErrors(t *testing.T) {
	c, asm := newOpChecker()
	intT := asm.IntType()

	env := tenv.New().Define("n", tenv.VarInfo{DeclaredType: intT, FlowType: intT, MustDefined: true})
	n := &external.CoalesceExpr{
		Left:  &external.VarExpr{Name: "n"},
		Right: &external.LitExpr{Kind: external.LitInt, Value: int64(0)},
	}

	_, _, err := c.CheckExpr(env, n, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CHK005")
}

// `n ?:none 0` on a statically non-optional n is likewise redundant.
func TestCheckNoneCheckRedundantErrors(t *testing.T) {
	c, asm := newOpChecker()
	intT := asm.IntType()

	env := tenv.New().Define("n", tenv.VarInfo{DeclaredType: intT, FlowType: intT, MustDefined: true})
	n := &external.NoneCheckExpr{
		Left:  &external.VarExpr{Name: "n"},
		Right: &external.LitExpr{Kind: external.LitInt, Value: int64(0)},
	}

	_, _, err := c.CheckExpr(env, n, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CHK005")
}
