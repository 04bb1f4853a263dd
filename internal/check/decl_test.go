package check_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/check"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/ir"
)

func newChecker(asm *ir.Assembly) (*check.Checker, *ir.Emitter, *cerrors.Channel) {
	emit := ir.NewEmitter()
	errs := cerrors.NewChannel()
	c := check.New(asm, emit, ir.NewIRAssembly(), errs, nil)
	return c, emit, errs
}

// clampNonNegative(n: Int) -> Int { if n < 0 { return 0 } else { return n } }
func clampDecl(asm *ir.Assembly) *external.FunctionDecl {
	intT := asm.IntType()
	cond := &external.BinOpExpr{Op: "<", Left: &external.VarExpr{Name: "n"}, Right: &external.LitExpr{Kind: external.LitInt, Value: int64(0)}}
	thenBlock := &external.BlockStmt{Stmts: []external.Stmt{
		&external.ReturnStmt{Value: &external.LitExpr{Kind: external.LitInt, Value: int64(0)}},
	}}
	elseBlock := &external.BlockStmt{Stmts: []external.Stmt{
		&external.ReturnStmt{Value: &external.VarExpr{Name: "n"}},
	}}
	body := external.Body2{Kind: external.BodyBlock, Block: &external.BlockStmt{Stmts: []external.Stmt{
		&external.IfStmt{Branches: []external.IfBranch{{Cond: cond, Body: thenBlock}}, Else: elseBlock},
	}}}
	return &external.FunctionDecl{
		Namespace: "geometry", Name: "clampNonNegative", Key: "fn:geometry.clampNonNegative",
		Sig:  external.Signature{Params: []external.Param{{Name: "n", Type: intT}}, Result: intT},
		Body: body,
	}
}

func TestCheckFunctionDeclAcceptsConformingBranches(t *testing.T) {
	asm := ir.NewAssembly()
	c, emit, errs := newChecker(asm)

	err := c.CheckFunctionDecl(clampDecl(asm))
	require.NoError(t, err)
	require.Equal(t, 0, errs.Count())
	require.Greater(t, emit.GetBody().OpcodeCount(), 0)
}

func TestCheckFunctionDeclRejectsMissingReturn(t *testing.T) {
	asm := ir.NewAssembly()
	c, _, _ := newChecker(asm)

	intT := asm.IntType()
	d := &external.FunctionDecl{
		Namespace: "geometry", Name: "broken", Key: "fn:geometry.broken",
		Sig: external.Signature{Params: []external.Param{{Name: "n", Type: intT}}, Result: intT},
		Body: external.Body2{Kind: external.BodyBlock, Block: &external.BlockStmt{Stmts: []external.Stmt{
			&external.VarDeclStmt{Name: "x", DeclaredType: nil, Init: &external.VarExpr{Name: "n"}},
		}}},
	}

	err := c.CheckFunctionDecl(d)
	require.Error(t, err)
	rep, ok := cerrors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, cerrors.CHK004MissingRequired, rep.Code)
}

func TestCheckFunctionDeclRejectsTypeMismatch(t *testing.T) {
	asm := ir.NewAssembly()
	c, _, _ := newChecker(asm)

	intT := asm.IntType()
	d := &external.FunctionDecl{
		Namespace: "geometry", Name: "wrongReturn", Key: "fn:geometry.wrongReturn",
		Sig: external.Signature{Result: intT},
		Body: external.Body2{Kind: external.BodyExpr, Expr: &external.LitExpr{Kind: external.LitString, Value: "nope"}},
	}

	err := c.CheckFunctionDecl(d)
	require.Error(t, err)
	rep, ok := cerrors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, cerrors.CHK001TypeMismatch, rep.Code)
}

// optionalWithoutDefault(n: Int?) -> Int { return n ?| 0 }
func TestOptionalParamWithoutDefaultIsVisibleAsUnionWithNone(t *testing.T) {
	asm := ir.NewAssembly()
	c, _, errs := newChecker(asm)

	intT := asm.IntType()
	d := &external.FunctionDecl{
		Namespace: "geometry", Name: "optionalWithoutDefault", Key: "fn:geometry.optionalWithoutDefault",
		Sig: external.Signature{
			Params: []external.Param{{Name: "n", Type: intT, Optional: true}},
			Result: intT,
		},
		Body: external.Body2{Kind: external.BodyExpr, Expr: &external.CoalesceExpr{
			Left:  &external.VarExpr{Name: "n"},
			Right: &external.LitExpr{Kind: external.LitInt, Value: int64(0)},
		}},
	}

	err := c.CheckFunctionDecl(d)
	require.NoError(t, err)
	require.Equal(t, 0, errs.Count())
}
