package check

import (
	"github.com/sunholo/checkercore/internal/argresolve"
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

// checkCall implements spec.md §4.3 "Calls": resolve the target signature,
// bind call-site template arguments against its declared bounds, resolve
// the argument list against the (possibly template-substituted) parameter
// list via C2, and emit the call opcode. Grounded on the teacher's inferApp
// (internal/types/typechecker_core.go), generalized from positional-only
// application to this spec's named/spread/optional/rest argument model.
func (c *Checker) checkCall(env *tenv.TypeEnvironment, n *external.CallExpr) (external.Register, tenv.MultiFlow, error) {
	var sigType *rtype.ResolvedType
	var templates []external.TemplateParam
	var receiverBinds map[string]*rtype.ResolvedType
	var form external.CallForm
	var key string

	switch n.Kind {
	case external.CallNamespaceFunction:
		if !c.Asm.HasNamespace(n.Namespace) {
			return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown namespace "+n.Namespace, map[string]any{"namespace": n.Namespace})
		}
		sig, tmpl, ok := c.Asm.ResolveFunction(n.Namespace, n.Name)
		if !ok {
			return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown function "+n.Name, map[string]any{"name": n.Name})
		}
		sigType, templates = sig, tmpl
		form = external.CallFormNamespaceFunction
		key = c.IR.FunctionKey(n.Namespace, n.Name)

	case external.CallStatic:
		recvType, ok := c.Asm.ResolveTypeName(n.TypeName)
		if !ok {
			return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown type "+n.TypeName, map[string]any{"type": n.TypeName})
		}
		member, ok := c.Asm.TryGetOOMemberDeclUnique(recvType, external.MemberStatic, n.Name)
		if !ok {
			return 0, nil, c.fail(n.Span(), cerrors.CHK008AmbiguousField, "static function "+n.Name+" does not resolve uniquely", nil)
		}
		sigType = member.Type
		if ent, ok := uniqueEntity(recvType); ok {
			receiverBinds = ent.Binds
		}
		form = external.CallFormStaticFunction
		key = c.IR.StaticKey(n.TypeName, n.Name)

	default:
		return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "unrecognized call kind", nil)
	}

	fn, ok := uniqueFunctionAtom(sigType)
	if !ok {
		return 0, nil, c.fail(n.Span(), cerrors.CHK007AmbiguousCall, n.Name+" does not resolve to a single callable signature", nil)
	}

	termArgs := make([]*rtype.ResolvedType, len(n.TemplateArgs))
	for i, name := range n.TemplateArgs {
		t, ok := c.Asm.ResolveTypeName(name)
		if !ok {
			return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown template argument type "+name, map[string]any{"type": name})
		}
		termArgs[i] = t
	}
	binds, ok := c.Asm.ResolveBindsForCall(templateNames(templates), termArgs, receiverBinds, env.Terms())
	if !ok {
		return 0, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, "call template bounds not satisfied for "+n.Name, nil)
	}
	if len(binds) > 0 {
		substituted, err := c.Asm.NormalizeType(fn, binds)
		if err != nil {
			return 0, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, err.Error(), nil)
		}
		if substitutedFn, ok := uniqueFunctionAtom(substituted); ok {
			fn = substitutedFn
		}
	}

	r := &argresolve.Resolver{Sub: c.Asm, Norm: c.Asm, Emit: c.Emit}
	slots := make([]argresolve.Slot, len(fn.Params))
	for i, p := range fn.Params {
		slots[i] = argresolve.Slot{Name: p.Name, Type: p.Type, Optional: p.Optional}
	}
	var rest *argresolve.RestSlot
	if fn.Rest != nil {
		elem, isMap, _ := c.Asm.CollectionElementType(fn.Rest)
		rest = &argresolve.RestSlot{TypeName: fn.Rest.String(), ElemType: elem, IsMap: isMap}
	}
	res, err := r.ResolveCall(slots, rest, n.Args,
		func(a external.Arg, hint *rtype.ResolvedType) (external.Register, *rtype.ResolvedType, error) {
			reg, typ, _, err := c.checkOne(env, a.Value, hint)
			return reg, typ, err
		},
		func(expr external.Expr) (external.Register, *rtype.ResolvedType, error) {
			reg, typ, _, err := c.checkOne(env, expr, nil)
			return reg, typ, err
		})
	if err != nil {
		return 0, nil, c.fail(n.Span(), codeFor(err), err.Error(), nil)
	}

	callArgs := make([]external.Register, len(res.Slots))
	for i, s := range res.Slots {
		callArgs[i] = s.Reg
	}
	if res.HasRest {
		callArgs = append(callArgs, res.RestReg)
	}

	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitCall(dst, form, key, callArgs)
	switch form {
	case external.CallFormNamespaceFunction:
		c.IR.RegisterFunctionCall(key)
	case external.CallFormStaticFunction:
		c.IR.RegisterStaticCall(key)
	}

	return dst, tenv.MultiFlow{env.WithResult(fn.Result, tenv.Unknown)}, nil
}
