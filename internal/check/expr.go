package check

import (
	"fmt"

	"github.com/sunholo/checkercore/internal/ast"
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

// CheckExpr dispatches on e's concrete type (spec.md §4.3/§4.4), the
// single entry point every sub-expression recurses back through. It
// returns the register holding the computed value and the resulting
// multi-flow (spec.md §3 "a multi-flow step returns a non-empty list of
// environments"). hint carries contextual bias (e.g. a call's declared
// parameter type) for forms that use it; nil means no bias.
//
// Grounded on the teacher's inferCore dispatch switch
// (internal/types/typechecker_core.go).
func (c *Checker) CheckExpr(env *tenv.TypeEnvironment, e external.Expr, hint *rtype.ResolvedType) (external.Register, tenv.MultiFlow, error) {
	switch n := e.(type) {
	case *external.LitExpr:
		return c.checkLit(env, n)
	case *external.VarExpr:
		return c.checkVar(env, n)
	case *external.TypedStringExpr:
		return c.checkTypedString(env, n)
	case *external.NSConstExpr:
		return c.checkNSConst(env, n)
	case *external.TupleExpr:
		return c.checkTupleConstruct(env, n)
	case *external.RecordExpr:
		return c.checkRecordConstruct(env, n)
	case *external.EntityConstructExpr:
		return c.checkEntityConstruct(env, n)
	case *external.LambdaExpr:
		return c.checkLambda(env, n, hint)
	case *external.CallExpr:
		return c.checkCall(env, n)
	case *external.PrefixExpr:
		return c.checkPrefix(env, n)
	case *external.BinOpExpr:
		return c.checkBinOp(env, n)
	case *external.ShortCircuitExpr:
		return c.checkShortCircuit(env, n)
	case *external.NoneCheckExpr:
		return c.checkNoneCheck(env, n)
	case *external.CoalesceExpr:
		return c.checkCoalesce(env, n)
	case *external.SelectExpr:
		return c.checkSelect(env, n)
	case *external.PostfixExpr:
		return c.checkPostfix(env, n)
	default:
		return 0, nil, c.fail(e.Span(), cerrors.CHK016UnsupportedOp, fmt.Sprintf("unrecognized expression form %T", e), nil)
	}
}

// checkOne evaluates e and collapses its multi-flow to a single joined
// environment — for sub-expressions whose narrowing does not survive past
// their own evaluation (e.g. a binary operator's operands, a call
// argument).
func (c *Checker) checkOne(env *tenv.TypeEnvironment, e external.Expr, hint *rtype.ResolvedType) (external.Register, *rtype.ResolvedType, *tenv.TypeEnvironment, error) {
	reg, mf, err := c.CheckExpr(env, e, hint)
	if err != nil {
		return 0, nil, nil, err
	}
	joined := tenv.Join(mf...)
	typ, _ := joined.Result()
	return reg, typ, joined, nil
}

// fail builds a Report, appends it to the error channel, bumps the
// declaration-local error count, and returns a checkerError that unwinds
// to the C7 declaration driver (spec.md §6/§7).
func (c *Checker) fail(span ast.Span, code, message string, data map[string]any) error {
	rep := cerrors.New(code, &span, message, data)
	c.Errs.Append(rep)
	c.declErrors++
	return &checkerError{err: cerrors.WrapReport(rep)}
}
