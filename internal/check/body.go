package check

import (
	"github.com/sunholo/checkercore/internal/ast"
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/tenv"
)

// checkBody implements spec.md §4.6 (component C6): the three body forms a
// declaration may take, and the return-type conformance check against the
// declaration's own signature. A raw body is opaque to CORE by design —
// whatever produced it already lowered it outside this checker's reach.
func (c *Checker) checkBody(env *tenv.TypeEnvironment, sig external.Signature, body external.Body2) error {
	sawOptional := false
	for _, p := range sig.Params {
		if p.Optional {
			sawOptional = true
		} else if sawOptional {
			return c.fail(ast.Span{}, cerrors.CHK013BadParameterOrder, "required parameter "+p.Name+" follows an optional parameter", nil)
		}
	}
	if sawOptional && sig.Rest != nil {
		return c.fail(ast.Span{}, cerrors.CHK013BadParameterOrder, "optional parameters cannot be combined with a rest parameter", nil)
	}

	switch body.Kind {
	case external.BodyRaw:
		return nil

	case external.BodyExpr:
		return c.checkExprBody(env, sig, body.Expr)

	case external.BodyBlock:
		return c.checkBlockBody(env, sig, body.Block)

	default:
		return c.fail(ast.Span{}, cerrors.CHK016UnsupportedOp, "unrecognized body form", nil)
	}
}

// checkExprBody implements the single-expression body form: the
// expression's joined result type must conform to the declared result,
// and its value becomes the returned value directly.
func (c *Checker) checkExprBody(env *tenv.TypeEnvironment, sig external.Signature, expr external.Expr) error {
	reg, mf, err := c.CheckExpr(env, expr, sig.Result)
	if err != nil {
		return err
	}
	if err := mf.Validate(); err != nil {
		return c.fail(expr.Span(), cerrors.CHK006RedundantTruth, err.Error(), nil)
	}
	joined := tenv.Join(mf...)
	resultType, _ := joined.Result()
	if sig.Result != nil && !c.Asm.SubtypeOf(resultType, sig.Result) {
		return c.fail(expr.Span(), cerrors.CHK001TypeMismatch, "expression body does not conform to the declared result type", nil)
	}
	c.Emit.EmitReturnAssign(reg)
	return nil
}

// checkBlockBody implements the block body form: the block's accumulated
// return-statement union must conform to the declared result, and the
// block may not still be reachable at its end unless falling off without
// returning is itself acceptable (the declared result accepts None).
func (c *Checker) checkBlockBody(env *tenv.TypeEnvironment, sig external.Signature, block *external.BlockStmt) error {
	final, err := c.checkBlock(env, block)
	if err != nil {
		return err
	}
	if sig.Result == nil {
		return nil
	}
	if final.Reachable() && !c.Asm.SubtypeOf(c.Asm.GetSpecialNoneType(), sig.Result) {
		return c.fail(block.Span(), cerrors.CHK004MissingRequired, "function may fall off the end without returning a value", nil)
	}
	if ret := final.ReturnResult(); ret != nil && !c.Asm.SubtypeOf(ret, sig.Result) {
		return c.fail(block.Span(), cerrors.CHK001TypeMismatch, "a return statement's type does not conform to the declared result type", nil)
	}
	return nil
}
