package check

import (
	"github.com/sunholo/checkercore/internal/ast"
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

// CheckStmt implements spec.md §4.5 (component C5): the statement checker
// dispatch. Each handler takes the environment reaching the statement and
// returns the single environment reaching the statement following it —
// multi-flow splits produced mid-statement (an `if` condition's narrowing,
// an assert's truth split) are joined back to one environment at the
// statement boundary, since spec.md's statement forms never themselves
// need the split to outlive their own evaluation.
func (c *Checker) CheckStmt(env *tenv.TypeEnvironment, s external.Stmt) (*tenv.TypeEnvironment, error) {
	switch n := s.(type) {
	case *external.EmptyStmt:
		return env, nil
	case *external.VarDeclStmt:
		return c.checkVarDecl(env, n)
	case *external.AssignStmt:
		return c.checkAssign(env, n)
	case *external.IfStmt:
		return c.checkIf(env, n)
	case *external.ReturnStmt:
		return c.checkReturn(env, n)
	case *external.AssertStmt:
		return c.checkAssertOrCheck(env, n.Test, true, n.Span())
	case *external.CheckStmt:
		return c.checkAssertOrCheck(env, n.Test, false, n.Span())
	case *external.BlockStmt:
		return c.checkBlock(env, n)
	default:
		return nil, c.fail(s.Span(), cerrors.CHK016UnsupportedOp, "unrecognized statement", nil)
	}
}

// checkVarDecl implements `var name[: Type] [= init]`, including auto-typed
// (DeclaredType == nil, Init required) and declared-without-initializer
// (MustDefined stays false until a later assignment) forms.
func (c *Checker) checkVarDecl(env *tenv.TypeEnvironment, n *external.VarDeclStmt) (*tenv.TypeEnvironment, error) {
	var declaredType *rtype.ResolvedType
	if n.DeclaredType != nil {
		t, ok := c.Asm.ResolveTypeName(*n.DeclaredType)
		if !ok {
			return nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown type "+*n.DeclaredType, map[string]any{"type": *n.DeclaredType})
		}
		declaredType = t
	}
	if env.DefinedInCurrentScope(n.Name) {
		return nil, c.fail(n.Span(), cerrors.CHK010IllegalShadowing, "local "+n.Name+" shadows an existing binding", map[string]any{"name": n.Name})
	}

	if n.Init == nil {
		if declaredType == nil {
			return nil, c.fail(n.Span(), cerrors.CHK004MissingRequired, "variable "+n.Name+" needs a declared type or an initializer", nil)
		}
		if n.IsConst {
			return nil, c.fail(n.Span(), cerrors.CHK004MissingRequired, "const "+n.Name+" needs an initializer", nil)
		}
		return env.Define(n.Name, tenv.VarInfo{
			DeclaredType: declaredType, FlowType: declaredType, IsConst: n.IsConst, Kind: tenv.AccessLocal,
		}), nil
	}

	reg, mf, err := c.CheckExpr(env, n.Init, declaredType)
	if err != nil {
		return nil, err
	}
	if err := mf.Validate(); err != nil {
		return nil, c.fail(n.Span(), cerrors.CHK006RedundantTruth, err.Error(), nil)
	}
	joined := tenv.Join(mf...)
	initType, _ := joined.Result()

	finalType := initType
	if declaredType != nil {
		if !c.Asm.SubtypeOf(initType, declaredType) {
			return nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, "initializer for "+n.Name+" is not a "+*n.DeclaredType, nil)
		}
		finalType = declaredType
	}

	c.Emit.RegisterVar(n.Name, reg, finalType)
	c.Emit.LocalLifetimeStart(n.Name, reg)
	return joined.Define(n.Name, tenv.VarInfo{
		DeclaredType: finalType, FlowType: finalType, MustDefined: true, IsConst: n.IsConst, Kind: tenv.AccessLocal,
	}), nil
}

// checkAssign implements `name = value`: the target must already be
// defined, non-const, and the value's type must conform to its declared
// type; the post-environment narrows the target's flow type to exactly
// what was just stored.
func (c *Checker) checkAssign(env *tenv.TypeEnvironment, n *external.AssignStmt) (*tenv.TypeEnvironment, error) {
	v, ok := env.Lookup(n.Name)
	if !ok {
		return nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "undefined variable "+n.Name, map[string]any{"name": n.Name})
	}
	if v.IsConst {
		return nil, c.fail(n.Span(), cerrors.CHK011AssignToConst, "cannot assign to const "+n.Name, map[string]any{"name": n.Name})
	}

	reg, mf, err := c.CheckExpr(env, n.Value, v.DeclaredType)
	if err != nil {
		return nil, err
	}
	if err := mf.Validate(); err != nil {
		return nil, c.fail(n.Span(), cerrors.CHK006RedundantTruth, err.Error(), nil)
	}
	joined := tenv.Join(mf...)
	valType, _ := joined.Result()
	if !c.Asm.SubtypeOf(valType, v.DeclaredType) {
		return nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, "value assigned to "+n.Name+" is not a "+v.DeclaredType.String(), nil)
	}

	c.Emit.RegisterVar(n.Name, reg, valType)
	next := v.Narrow(valType)
	next.MustDefined = true
	return joined.Narrow(n.Name, next), nil
}

// checkIf implements if/elseif*/else (spec.md §4.5): each condition's
// multi-flow is partitioned by flow-truth into the environments that feed
// its own body (truth != False) and the environments that fall through to
// the next branch (truth != True); the whole statement's result joins
// every branch actually taken.
func (c *Checker) checkIf(env *tenv.TypeEnvironment, n *external.IfStmt) (*tenv.TypeEnvironment, error) {
	falling := env
	var after []*tenv.TypeEnvironment

	for i, branch := range n.Branches {
		_, mf, err := c.CheckExpr(falling, branch.Cond, c.Asm.BoolType())
		if err != nil {
			return nil, err
		}
		if err := mf.Validate(); err != nil {
			return nil, c.fail(branch.Cond.Span(), cerrors.CHK006RedundantTruth, err.Error(), nil)
		}

		var trueEnvs, falseEnvs []*tenv.TypeEnvironment
		for _, e := range mf {
			_, truth := e.Result()
			if truth != tenv.False {
				trueEnvs = append(trueEnvs, e)
			}
			if truth != tenv.True {
				falseEnvs = append(falseEnvs, e)
			}
		}

		if len(trueEnvs) == 0 {
			return nil, c.fail(branch.Cond.Span(), cerrors.CHK006RedundantTruth, "branch condition can never be true", nil)
		}
		bodyEnv, err := c.checkBlock(tenv.Join(trueEnvs...), branch.Body)
		if err != nil {
			return nil, err
		}
		after = append(after, bodyEnv)

		if len(falseEnvs) == 0 {
			if i < len(n.Branches)-1 || n.Else != nil {
				return nil, c.fail(n.Span(), cerrors.CHK009UnreachableCode, "branch condition is always true; remaining branches are unreachable", nil)
			}
			falling = nil
			break
		}
		falling = tenv.Join(falseEnvs...)
	}

	if falling != nil {
		if n.Else != nil {
			elseEnv, err := c.checkBlock(falling, n.Else)
			if err != nil {
				return nil, err
			}
			after = append(after, elseEnv)
		} else {
			after = append(after, falling)
		}
	}

	return tenv.Join(after...), nil
}

// checkReturn implements `return [value]`: unions the returned type into
// the body's accumulated return-type set and marks the post-environment
// unreachable, since nothing after a return executes on this path.
func (c *Checker) checkReturn(env *tenv.TypeEnvironment, n *external.ReturnStmt) (*tenv.TypeEnvironment, error) {
	if n.Value == nil {
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitLoadConstNone(dst)
		c.Emit.EmitReturnAssign(dst)
		return env.WithReturn(c.Asm.GetSpecialNoneType()).WithReachable(false), nil
	}

	reg, mf, err := c.CheckExpr(env, n.Value, nil)
	if err != nil {
		return nil, err
	}
	if err := mf.Validate(); err != nil {
		return nil, c.fail(n.Span(), cerrors.CHK006RedundantTruth, err.Error(), nil)
	}
	joined := tenv.Join(mf...)
	retType, _ := joined.Result()

	c.Emit.EmitReturnAssign(reg)
	return joined.WithReturn(retType).WithReachable(false), nil
}

// checkAssertOrCheck implements both assert and check (spec.md §4.5): the
// test must be Bool|None and only the True-flow alternatives survive into
// the statement following it — assert and check differ only in the
// opcode emitted for the runtime test.
func (c *Checker) checkAssertOrCheck(env *tenv.TypeEnvironment, test external.Expr, isAssert bool, span ast.Span) (*tenv.TypeEnvironment, error) {
	reg, mf, err := c.CheckExpr(env, test, nil)
	if err != nil {
		return nil, err
	}
	if err := mf.Validate(); err != nil {
		return nil, c.fail(span, cerrors.CHK006RedundantTruth, err.Error(), nil)
	}
	joined := tenv.Join(mf...)
	testType, _ := joined.Result()
	boolOrNone := rtype.Union(c.Asm.BoolType(), c.Asm.GetSpecialNoneType())
	if !c.Asm.SubtypeOf(testType, boolOrNone) {
		return nil, c.fail(span, cerrors.CHK001TypeMismatch, "assert/check test must be Bool or None", nil)
	}

	if isAssert {
		c.Emit.EmitAssert(reg)
	} else {
		c.Emit.EmitCheck(reg)
	}

	var trueEnvs []*tenv.TypeEnvironment
	for _, e := range mf {
		_, truth := e.Result()
		if truth != tenv.False {
			trueEnvs = append(trueEnvs, e)
		}
	}
	if len(trueEnvs) == 0 {
		return nil, c.fail(span, cerrors.CHK006RedundantTruth, "assert/check condition can never be true", nil)
	}
	return tenv.Join(trueEnvs...), nil
}

// checkBlock implements `{ stmt* }` (spec.md §4.5 "block"): pushes a fresh
// local scope, threads one environment through the statement sequence
// rejecting anything after an unreachable point, and emits
// localLifetimeEnd for every local the block itself introduced before
// popping the scope back off.
func (c *Checker) checkBlock(env *tenv.TypeEnvironment, b *external.BlockStmt) (*tenv.TypeEnvironment, error) {
	cur := env.PushScope()
	for _, s := range b.Stmts {
		if !cur.Reachable() {
			return nil, c.fail(s.Span(), cerrors.CHK009UnreachableCode, "statement is unreachable", nil)
		}
		next, err := c.CheckStmt(cur, s)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	for _, name := range cur.LocalsInCurrentScope() {
		c.Emit.LocalLifetimeEnd(name)
	}
	return cur.PopScope(), nil
}
