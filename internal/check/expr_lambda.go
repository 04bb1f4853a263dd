package check

import (
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

// checkLambda implements spec.md §4.3 "Lambda construction": resolve each
// parameter's declared type, or draw it positionally from hint when the
// lambda uses auto-signature form; check the body in a fresh environment
// binding parameters and captures; emit EmitConstructorLambda keyed by a
// fresh lambda key and register the lambda's signature with the IR
// assembly. Grounded on the teacher's closure-conversion pass in
// internal/codegen, adapted to this checker's append-as-you-go emission.
func (c *Checker) checkLambda(env *tenv.TypeEnvironment, n *external.LambdaExpr, hint *rtype.ResolvedType) (external.Register, tenv.MultiFlow, error) {
	var hintFn rtype.FunctionAtom
	hasHint := false
	if hint != nil {
		hintFn, hasHint = uniqueFunctionAtom(hint)
	}

	params := make([]rtype.Param, len(n.Params))
	for i, p := range n.Params {
		switch {
		case p.Type != "":
			t, ok := c.Asm.ResolveTypeName(p.Type)
			if !ok {
				return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown parameter type "+p.Type, map[string]any{"type": p.Type})
			}
			params[i] = rtype.Param{Name: p.Name, Type: t}
		case n.AutoSig && hasHint && i < len(hintFn.Params):
			params[i] = rtype.Param{Name: p.Name, Type: hintFn.Params[i].Type, Optional: hintFn.Params[i].Optional}
		default:
			return 0, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, "lambda parameter "+p.Name+" has no declared or inferable type", nil)
		}
	}

	captures := make(map[string]external.Register, len(n.Captures))
	for _, name := range n.Captures {
		v, ok := env.Lookup(name)
		if !ok {
			return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "undefined captured variable "+name, map[string]any{"name": name})
		}
		reg := c.Emit.GenerateTmpRegister()
		c.Emit.EmitAccess(reg, accessForm(v.Kind), "", name)
		captures[name] = reg
	}

	bodyEnv := tenv.New()
	for name, t := range env.Terms() {
		bodyEnv = bodyEnv.WithTerm(name, t)
	}
	for i, p := range params {
		bodyEnv = bodyEnv.Define(p.Name, tenv.VarInfo{
			DeclaredType: p.Type, FlowType: p.Type, MustDefined: true, Kind: tenv.AccessArg,
		})
		_ = i
	}
	for _, name := range n.Captures {
		v, _ := env.Lookup(name)
		bodyEnv = bodyEnv.Define(name, tenv.VarInfo{
			DeclaredType: v.DeclaredType, FlowType: v.FlowType, IsConst: v.IsConst,
			MustDefined: true, Kind: tenv.AccessCaptured,
		})
	}

	_, bodyMF, err := c.CheckExpr(bodyEnv, n.Body, nil)
	if err != nil {
		return 0, nil, err
	}
	resultType := bodyMF.ResultType()

	fn := rtype.FunctionAtom{Params: params, Result: resultType}
	key := c.IR.LambdaKey(c.enclosingKey, n.Span(), env.Terms())
	c.IR.RegisterLambda(key, fn)

	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitConstructorLambda(dst, key, captures)
	return dst, tenv.MultiFlow{env.WithResult(rtype.Single(fn), tenv.Unknown)}, nil
}
