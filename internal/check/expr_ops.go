package check

import (
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

// checkPrefix implements spec.md §4.3's prefix operators: +/- require an
// Int operand, ! requires Bool and additionally flips the operand's
// flow-truth tag across its whole multi-flow.
func (c *Checker) checkPrefix(env *tenv.TypeEnvironment, n *external.PrefixExpr) (external.Register, tenv.MultiFlow, error) {
	if n.Op == "!" {
		return c.checkNot(env, n)
	}
	reg, typ, _, err := c.checkOne(env, n.Operand, nil)
	if err != nil {
		return 0, nil, err
	}
	if !c.Asm.SubtypeOf(typ, c.Asm.IntType()) {
		return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "unary "+n.Op+" requires an Int operand", nil)
	}
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitPrefixOp(dst, n.Op, reg)
	return dst, tenv.MultiFlow{env.WithResult(c.Asm.IntType(), tenv.Unknown)}, nil
}

func (c *Checker) checkNot(env *tenv.TypeEnvironment, n *external.PrefixExpr) (external.Register, tenv.MultiFlow, error) {
	operandReg, mf, err := c.CheckExpr(env, n.Operand, nil)
	if err != nil {
		return 0, nil, err
	}
	if !c.Asm.SubtypeOf(mf.ResultType(), c.Asm.BoolType()) {
		return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "unary ! requires a Bool operand", nil)
	}
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitPrefixOp(dst, "!", operandReg)
	out := make(tenv.MultiFlow, len(mf))
	for i, e := range mf {
		_, truth := e.Result()
		out[i] = e.WithResult(c.Asm.BoolType(), invert(truth))
	}
	return dst, out, nil
}

func invert(t tenv.FlowTruth) tenv.FlowTruth {
	switch t {
	case tenv.True:
		return tenv.False
	case tenv.False:
		return tenv.True
	default:
		return tenv.Unknown
	}
}

// checkBinOp dispatches spec.md §4.3's binary operators to the arithmetic,
// equality, or comparison handler.
func (c *Checker) checkBinOp(env *tenv.TypeEnvironment, n *external.BinOpExpr) (external.Register, tenv.MultiFlow, error) {
	switch n.Op {
	case "+", "-", "*", "/", "%":
		return c.checkArith(env, n)
	case "==", "!=":
		return c.checkEquality(env, n)
	case "<", "<=", ">", ">=":
		return c.checkCompare(env, n)
	default:
		return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "unrecognized binary operator "+n.Op, nil)
	}
}

func (c *Checker) checkArith(env *tenv.TypeEnvironment, n *external.BinOpExpr) (external.Register, tenv.MultiFlow, error) {
	lReg, lTyp, _, err := c.checkOne(env, n.Left, nil)
	if err != nil {
		return 0, nil, err
	}
	rReg, rTyp, _, err := c.checkOne(env, n.Right, nil)
	if err != nil {
		return 0, nil, err
	}

	var result *rtype.ResolvedType
	switch {
	case c.Asm.SubtypeOf(lTyp, c.Asm.IntType()) && c.Asm.SubtypeOf(rTyp, c.Asm.IntType()):
		result = c.Asm.IntType()
	default:
		return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "operator "+n.Op+" does not support operand types "+lTyp.String()+" and "+rTyp.String(), nil)
	}
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitBinOp(dst, n.Op, lReg, rReg)
	return dst, tenv.MultiFlow{env.WithResult(result, tenv.Unknown)}, nil
}

func (c *Checker) checkCompare(env *tenv.TypeEnvironment, n *external.BinOpExpr) (external.Register, tenv.MultiFlow, error) {
	lReg, lTyp, _, err := c.checkOne(env, n.Left, nil)
	if err != nil {
		return 0, nil, err
	}
	rReg, rTyp, _, err := c.checkOne(env, n.Right, nil)
	if err != nil {
		return 0, nil, err
	}
	if !c.Asm.SubtypeOf(lTyp, c.Asm.IntType()) || !c.Asm.SubtypeOf(rTyp, c.Asm.IntType()) {
		return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "comparison "+n.Op+" requires Int operands", nil)
	}
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitBinCmp(dst, n.Op, lReg, rReg)
	return dst, tenv.MultiFlow{env.WithResult(c.Asm.BoolType(), tenv.Unknown)}, nil
}

// checkEquality implements ==/!= including spec.md §9's variable/None
// split: comparing a bare variable against the None literal (in either
// order) narrows that variable to None on the equal branch and to
// WithoutNone on the not-equal branch, producing a two-way multi-flow
// instead of one Unknown-truth environment.
func (c *Checker) checkEquality(env *tenv.TypeEnvironment, n *external.BinOpExpr) (external.Register, tenv.MultiFlow, error) {
	lReg, lTyp, _, err := c.checkOne(env, n.Left, nil)
	if err != nil {
		return 0, nil, err
	}
	rReg, rTyp, _, err := c.checkOne(env, n.Right, nil)
	if err != nil {
		return 0, nil, err
	}

	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitBinEq(dst, n.Op, lReg, rReg)

	name, varType, ok := noneComparedVar(n.Left, n.Right, lTyp, rTyp)
	if !ok {
		if !c.equalityCompatible(lTyp, rTyp) {
			return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "operands of "+n.Op+" share no possible value", nil)
		}
		return dst, tenv.MultiFlow{env.WithResult(c.Asm.BoolType(), tenv.Unknown)}, nil
	}

	v, _ := env.Lookup(name)
	noneEnv := env.Narrow(name, v.Narrow(rtype.None()))
	someEnv := env.Narrow(name, v.Narrow(rtype.WithoutNone(varType)))

	trueEnv, falseEnv := noneEnv, someEnv
	if n.Op == "!=" {
		trueEnv, falseEnv = someEnv, noneEnv
	}
	return dst, tenv.MultiFlow{
		trueEnv.WithResult(c.Asm.BoolType(), tenv.True),
		falseEnv.WithResult(c.Asm.BoolType(), tenv.False),
	}, nil
}

// equalityCompatible implements spec.md §4.3's non-variable-split equality
// rule: allowed only when (a) either side is None, (b) both sides are
// provably the same scalar kind (Bool, Int, String, GUID), or (c) both
// sides are the same enum or custom-key type (equality through mutual
// subtyping). Two ordinary same-shape Entity values that are neither enum
// nor custom-key are NOT equality-compatible under this rule.
func (c *Checker) equalityCompatible(lTyp, rTyp *rtype.ResolvedType) bool {
	if rtype.IsNone(lTyp) || rtype.IsNone(rTyp) {
		return true
	}
	for _, scalar := range []*rtype.ResolvedType{c.Asm.BoolType(), c.Asm.IntType(), c.Asm.StringType(), c.Asm.GUIDType()} {
		if c.Asm.SubtypeOf(lTyp, scalar) && c.Asm.SubtypeOf(rTyp, scalar) {
			return true
		}
	}
	if c.isEnumOrCustomKey(lTyp) && c.isEnumOrCustomKey(rTyp) &&
		c.Asm.SubtypeOf(lTyp, rTyp) && c.Asm.SubtypeOf(rTyp, lTyp) {
		return true
	}
	return false
}

func (c *Checker) isEnumOrCustomKey(t *rtype.ResolvedType) bool {
	return c.Asm.SubtypeOf(t, c.Asm.EnumType()) || c.Asm.SubtypeOf(t, c.Asm.CustomKeyType())
}

func noneComparedVar(left, right external.Expr, lTyp, rTyp *rtype.ResolvedType) (name string, varType *rtype.ResolvedType, ok bool) {
	if v, isVar := left.(*external.VarExpr); isVar && isNoneLit(right) {
		return v.Name, lTyp, true
	}
	if v, isVar := right.(*external.VarExpr); isVar && isNoneLit(left) {
		return v.Name, rTyp, true
	}
	return "", nil, false
}

func isNoneLit(e external.Expr) bool {
	lit, ok := e.(*external.LitExpr)
	return ok && lit.Kind == external.LitNone
}

// checkShortCircuit dispatches ||, &&, and => to their individual
// short-circuit handlers (spec.md §4.3).
func (c *Checker) checkShortCircuit(env *tenv.TypeEnvironment, n *external.ShortCircuitExpr) (external.Register, tenv.MultiFlow, error) {
	switch n.Op {
	case "||":
		return c.checkOr(env, n)
	case "&&":
		return c.checkAnd(env, n)
	case "=>":
		return c.checkImply(env, n)
	default:
		return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "unrecognized short-circuit operator "+n.Op, nil)
	}
}

// checkAnd implements `a && b`: b is checked only in the subset of a's
// flows where a is not statically False, entered through its own block so
// the emitted IR short-circuits the same way the checked semantics do.
func (c *Checker) checkAnd(env *tenv.TypeEnvironment, n *external.ShortCircuitExpr) (external.Register, tenv.MultiFlow, error) {
	lReg, lmf, err := c.CheckExpr(env, n.Left, nil)
	if err != nil {
		return 0, nil, err
	}
	if !c.Asm.SubtypeOf(lmf.ResultType(), c.Asm.BoolType()) {
		return 0, nil, c.fail(n.Left.Span(), cerrors.CHK016UnsupportedOp, "&& requires Bool operands", nil)
	}

	var trueEnvs, falseEnvs tenv.MultiFlow
	for _, e := range lmf {
		_, truth := e.Result()
		if truth == tenv.False {
			falseEnvs = append(falseEnvs, e)
		} else {
			trueEnvs = append(trueEnvs, e)
		}
	}

	dst := c.Emit.GenerateTmpRegister()
	mergeBlock := c.Emit.CreateNewBlock("and_merge")

	var shortBlock, rhsBlock external.BlockID
	if len(falseEnvs) > 0 {
		shortBlock = c.Emit.CreateNewBlock("and_short")
	}
	if len(trueEnvs) > 0 {
		rhsBlock = c.Emit.CreateNewBlock("and_rhs")
	}
	if len(falseEnvs) > 0 && len(trueEnvs) > 0 {
		c.Emit.EmitBoolJump(lReg, rhsBlock, shortBlock)
	} else if len(falseEnvs) > 0 {
		c.Emit.EmitDirectJump(shortBlock)
	} else {
		c.Emit.EmitDirectJump(rhsBlock)
	}

	var out tenv.MultiFlow
	if len(falseEnvs) > 0 {
		c.Emit.SetActiveBlock(shortBlock)
		c.Emit.EmitRegAssign(dst, lReg)
		c.Emit.EmitDirectJump(mergeBlock)
		for _, e := range falseEnvs {
			out = append(out, e.WithResult(c.Asm.BoolType(), tenv.False))
		}
	}
	if len(trueEnvs) > 0 {
		c.Emit.SetActiveBlock(rhsBlock)
		rhsEntry := tenv.Join(trueEnvs...)
		rReg, rmf, err := c.CheckExpr(rhsEntry, n.Right, nil)
		if err != nil {
			return 0, nil, err
		}
		if !c.Asm.SubtypeOf(rmf.ResultType(), c.Asm.BoolType()) {
			return 0, nil, c.fail(n.Right.Span(), cerrors.CHK016UnsupportedOp, "&& requires Bool operands", nil)
		}
		c.Emit.EmitRegAssign(dst, rReg)
		c.Emit.EmitDirectJump(mergeBlock)
		out = append(out, rmf...)
	}
	c.Emit.SetActiveBlock(mergeBlock)
	if err := out.Validate(); err != nil {
		return 0, nil, c.fail(n.Span(), cerrors.CHK006RedundantTruth, "&& can never take both branches", nil)
	}
	return dst, out, nil
}

// checkOr is the || counterpart of checkAnd: it shortcuts on a's True
// flows and only enters b's block from a's False flows.
func (c *Checker) checkOr(env *tenv.TypeEnvironment, n *external.ShortCircuitExpr) (external.Register, tenv.MultiFlow, error) {
	lReg, lmf, err := c.CheckExpr(env, n.Left, nil)
	if err != nil {
		return 0, nil, err
	}
	if !c.Asm.SubtypeOf(lmf.ResultType(), c.Asm.BoolType()) {
		return 0, nil, c.fail(n.Left.Span(), cerrors.CHK016UnsupportedOp, "|| requires Bool operands", nil)
	}

	var trueEnvs, falseEnvs tenv.MultiFlow
	for _, e := range lmf {
		_, truth := e.Result()
		if truth == tenv.True {
			trueEnvs = append(trueEnvs, e)
		} else {
			falseEnvs = append(falseEnvs, e)
		}
	}

	dst := c.Emit.GenerateTmpRegister()
	mergeBlock := c.Emit.CreateNewBlock("or_merge")

	var shortBlock, rhsBlock external.BlockID
	if len(trueEnvs) > 0 {
		shortBlock = c.Emit.CreateNewBlock("or_short")
	}
	if len(falseEnvs) > 0 {
		rhsBlock = c.Emit.CreateNewBlock("or_rhs")
	}
	if len(trueEnvs) > 0 && len(falseEnvs) > 0 {
		c.Emit.EmitBoolJump(lReg, shortBlock, rhsBlock)
	} else if len(trueEnvs) > 0 {
		c.Emit.EmitDirectJump(shortBlock)
	} else {
		c.Emit.EmitDirectJump(rhsBlock)
	}

	var out tenv.MultiFlow
	if len(trueEnvs) > 0 {
		c.Emit.SetActiveBlock(shortBlock)
		c.Emit.EmitRegAssign(dst, lReg)
		c.Emit.EmitDirectJump(mergeBlock)
		for _, e := range trueEnvs {
			out = append(out, e.WithResult(c.Asm.BoolType(), tenv.True))
		}
	}
	if len(falseEnvs) > 0 {
		c.Emit.SetActiveBlock(rhsBlock)
		rhsEntry := tenv.Join(falseEnvs...)
		rReg, rmf, err := c.CheckExpr(rhsEntry, n.Right, nil)
		if err != nil {
			return 0, nil, err
		}
		if !c.Asm.SubtypeOf(rmf.ResultType(), c.Asm.BoolType()) {
			return 0, nil, c.fail(n.Right.Span(), cerrors.CHK016UnsupportedOp, "|| requires Bool operands", nil)
		}
		c.Emit.EmitRegAssign(dst, rReg)
		c.Emit.EmitDirectJump(mergeBlock)
		out = append(out, rmf...)
	}
	c.Emit.SetActiveBlock(mergeBlock)
	if err := out.Validate(); err != nil {
		return 0, nil, c.fail(n.Span(), cerrors.CHK006RedundantTruth, "|| can never take both branches", nil)
	}
	return dst, out, nil
}

// checkImply implements `a => b` as sugar for `!a || b`: a False left
// shortcuts to a constant True without evaluating b.
func (c *Checker) checkImply(env *tenv.TypeEnvironment, n *external.ShortCircuitExpr) (external.Register, tenv.MultiFlow, error) {
	lReg, lmf, err := c.CheckExpr(env, n.Left, nil)
	if err != nil {
		return 0, nil, err
	}
	if !c.Asm.SubtypeOf(lmf.ResultType(), c.Asm.BoolType()) {
		return 0, nil, c.fail(n.Left.Span(), cerrors.CHK016UnsupportedOp, "=> requires Bool operands", nil)
	}

	var trueEnvs, falseEnvs tenv.MultiFlow
	for _, e := range lmf {
		_, truth := e.Result()
		if truth == tenv.False {
			falseEnvs = append(falseEnvs, e)
		} else {
			trueEnvs = append(trueEnvs, e)
		}
	}

	dst := c.Emit.GenerateTmpRegister()
	mergeBlock := c.Emit.CreateNewBlock("imply_merge")

	var shortBlock, rhsBlock external.BlockID
	if len(falseEnvs) > 0 {
		shortBlock = c.Emit.CreateNewBlock("imply_short")
	}
	if len(trueEnvs) > 0 {
		rhsBlock = c.Emit.CreateNewBlock("imply_rhs")
	}
	if len(falseEnvs) > 0 && len(trueEnvs) > 0 {
		c.Emit.EmitBoolJump(lReg, rhsBlock, shortBlock)
	} else if len(falseEnvs) > 0 {
		c.Emit.EmitDirectJump(shortBlock)
	} else {
		c.Emit.EmitDirectJump(rhsBlock)
	}

	var out tenv.MultiFlow
	if len(falseEnvs) > 0 {
		c.Emit.SetActiveBlock(shortBlock)
		c.Emit.EmitLoadConstBool(dst, true)
		c.Emit.EmitDirectJump(mergeBlock)
		for _, e := range falseEnvs {
			out = append(out, e.WithResult(c.Asm.BoolType(), tenv.True))
		}
	}
	if len(trueEnvs) > 0 {
		c.Emit.SetActiveBlock(rhsBlock)
		rhsEntry := tenv.Join(trueEnvs...)
		rReg, rmf, err := c.CheckExpr(rhsEntry, n.Right, nil)
		if err != nil {
			return 0, nil, err
		}
		if !c.Asm.SubtypeOf(rmf.ResultType(), c.Asm.BoolType()) {
			return 0, nil, c.fail(n.Right.Span(), cerrors.CHK016UnsupportedOp, "=> requires Bool operands", nil)
		}
		c.Emit.EmitRegAssign(dst, rReg)
		c.Emit.EmitDirectJump(mergeBlock)
		out = append(out, rmf...)
	}
	c.Emit.SetActiveBlock(mergeBlock)
	if err := out.Validate(); err != nil {
		return 0, nil, c.fail(n.Span(), cerrors.CHK006RedundantTruth, "=> can never take both branches", nil)
	}
	return dst, out, nil
}

// checkNoneCheck implements `lhs ?:none rhs`: rhs is only reachable through
// lhs's None flows; lhs's Some flows forward lhs's own value, narrowed away
// from None wherever lhs is a bare variable.
func (c *Checker) checkNoneCheck(env *tenv.TypeEnvironment, n *external.NoneCheckExpr) (external.Register, tenv.MultiFlow, error) {
	lReg, lTyp, lEnv, err := c.checkOne(env, n.Left, nil)
	if err != nil {
		return 0, nil, err
	}
	if !rtype.HasNone(lTyp) {
		return 0, nil, c.fail(n.Span(), cerrors.CHK005RedundantNullCheck, "None value is not possible", nil)
	}
	someType := rtype.WithoutNone(lTyp)

	someEnv, noneEnv := lEnv, lEnv
	if name, ok := varName(n.Left); ok {
		if v, found := lEnv.Lookup(name); found {
			someEnv = lEnv.Narrow(name, v.Narrow(someType))
			noneEnv = lEnv.Narrow(name, v.Narrow(rtype.None()))
		}
	}

	rReg, rmf, err := c.CheckExpr(noneEnv, n.Right, nil)
	if err != nil {
		return 0, nil, err
	}

	dst := c.Emit.GenerateTmpRegister()
	mergeBlock := c.Emit.CreateNewBlock("nonecheck_merge")

	someBlock := c.Emit.CreateNewBlock("nonecheck_some")
	c.Emit.SetActiveBlock(someBlock)
	c.Emit.EmitRegAssign(dst, lReg)
	c.Emit.EmitDirectJump(mergeBlock)

	noneBlock := c.Emit.CreateNewBlock("nonecheck_none")
	c.Emit.SetActiveBlock(noneBlock)
	c.Emit.EmitRegAssign(dst, rReg)
	c.Emit.EmitDirectJump(mergeBlock)
	c.Emit.SetActiveBlock(mergeBlock)

	out := tenv.MultiFlow{someEnv.WithResult(someType, tenv.Unknown)}
	out = append(out, rmf...)
	return dst, out, nil
}

func varName(e external.Expr) (string, bool) {
	v, ok := e.(*external.VarExpr)
	if !ok {
		return "", false
	}
	return v.Name, true
}

// checkCoalesce implements `lhs ?| rhs`: forwards lhs when it is Some,
// evaluates rhs only to cover lhs's None case, and fully resolves the
// Noneness for everything downstream — unlike checkNoneCheck, the result
// is always a single joined environment since ?| is meant to end the
// optionality rather than keep branching it.
func (c *Checker) checkCoalesce(env *tenv.TypeEnvironment, n *external.CoalesceExpr) (external.Register, tenv.MultiFlow, error) {
	lReg, lTyp, lEnv, err := c.checkOne(env, n.Left, nil)
	if err != nil {
		return 0, nil, err
	}
	if !rtype.HasNone(lTyp) {
		return 0, nil, c.fail(n.Span(), cerrors.CHK005RedundantNullCheck, "None value is not possible", nil)
	}
	someType := rtype.WithoutNone(lTyp)

	rReg, rTyp, rEnv, err := c.checkOne(lEnv, n.Right, someType)
	if err != nil {
		return 0, nil, err
	}

	dst := c.Emit.GenerateTmpRegister()
	mergeBlock := c.Emit.CreateNewBlock("coalesce_merge")

	someBlock := c.Emit.CreateNewBlock("coalesce_some")
	c.Emit.SetActiveBlock(someBlock)
	c.Emit.EmitRegAssign(dst, lReg)
	c.Emit.EmitDirectJump(mergeBlock)

	noneBlock := c.Emit.CreateNewBlock("coalesce_none")
	c.Emit.SetActiveBlock(noneBlock)
	c.Emit.EmitRegAssign(dst, rReg)
	c.Emit.EmitDirectJump(mergeBlock)
	c.Emit.SetActiveBlock(mergeBlock)

	result := rtype.Union(someType, rTyp)
	return dst, tenv.MultiFlow{rEnv.WithResult(result, tenv.Unknown)}, nil
}

// checkSelect implements `cond ? then : else`: both arms are checked, each
// entered only from cond's matching truth flows, and the result type is
// the union of both arms.
func (c *Checker) checkSelect(env *tenv.TypeEnvironment, n *external.SelectExpr) (external.Register, tenv.MultiFlow, error) {
	_, condMF, err := c.CheckExpr(env, n.Cond, nil)
	if err != nil {
		return 0, nil, err
	}
	if !c.Asm.SubtypeOf(condMF.ResultType(), c.Asm.BoolType()) {
		return 0, nil, c.fail(n.Cond.Span(), cerrors.CHK016UnsupportedOp, "select condition must be Bool", nil)
	}

	var trueEnvs, falseEnvs tenv.MultiFlow
	for _, e := range condMF {
		_, truth := e.Result()
		switch truth {
		case tenv.False:
			falseEnvs = append(falseEnvs, e)
		case tenv.True:
			trueEnvs = append(trueEnvs, e)
		default:
			trueEnvs = append(trueEnvs, e)
			falseEnvs = append(falseEnvs, e)
		}
	}
	if len(trueEnvs) == 0 || len(falseEnvs) == 0 {
		return 0, nil, c.fail(n.Span(), cerrors.CHK006RedundantTruth, "select condition can never take both branches", nil)
	}

	dst := c.Emit.GenerateTmpRegister()
	mergeBlock := c.Emit.CreateNewBlock("select_merge")

	thenBlock := c.Emit.CreateNewBlock("select_then")
	c.Emit.SetActiveBlock(thenBlock)
	thenEntry := tenv.Join(trueEnvs...)
	thenReg, thenTyp, thenEnv, err := c.checkOne(thenEntry, n.Then, nil)
	if err != nil {
		return 0, nil, err
	}
	c.Emit.EmitRegAssign(dst, thenReg)
	c.Emit.EmitDirectJump(mergeBlock)

	elseBlock := c.Emit.CreateNewBlock("select_else")
	c.Emit.SetActiveBlock(elseBlock)
	elseEntry := tenv.Join(falseEnvs...)
	elseReg, elseTyp, elseEnv, err := c.checkOne(elseEntry, n.Else, nil)
	if err != nil {
		return 0, nil, err
	}
	c.Emit.EmitRegAssign(dst, elseReg)
	c.Emit.EmitDirectJump(mergeBlock)

	c.Emit.SetActiveBlock(mergeBlock)
	result := rtype.Union(thenTyp, elseTyp)
	joined := tenv.Join(thenEnv, elseEnv)
	return dst, tenv.MultiFlow{joined.WithResult(result, tenv.Unknown)}, nil
}
