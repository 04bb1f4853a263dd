package check

import (
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

// checkLit implements spec.md §4.3 "For literals, emit a load-const and
// return an environment carrying the appropriate special type." None
// literals additionally carry FlowTypeTruthValue.False; Bool literals
// carry True/False exactly.
func (c *Checker) checkLit(env *tenv.TypeEnvironment, n *external.LitExpr) (external.Register, tenv.MultiFlow, error) {
	dst := c.Emit.GenerateTmpRegister()
	switch n.Kind {
	case external.LitNone:
		c.Emit.EmitLoadConstNone(dst)
		return dst, tenv.MultiFlow{env.WithResult(rtype.None(), tenv.False)}, nil
	case external.LitBool:
		v := n.Value.(bool)
		c.Emit.EmitLoadConstBool(dst, v)
		truth := tenv.False
		if v {
			truth = tenv.True
		}
		return dst, tenv.MultiFlow{env.WithResult(c.Asm.BoolType(), truth)}, nil
	case external.LitInt:
		c.Emit.EmitLoadConstInt(dst, n.Value.(int64))
		return dst, tenv.MultiFlow{env.WithResult(c.Asm.IntType(), tenv.Unknown)}, nil
	case external.LitString:
		c.Emit.EmitLoadConstString(dst, n.Value.(string))
		return dst, tenv.MultiFlow{env.WithResult(c.Asm.StringType(), tenv.Unknown)}, nil
	case external.LitGUID:
		c.Emit.EmitLoadConstString(dst, n.Value.(string))
		return dst, tenv.MultiFlow{env.WithResult(c.Asm.GUIDType(), tenv.Unknown)}, nil
	default:
		return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "unrecognized literal kind", nil)
	}
}

// checkVar implements spec.md §4.3 "For variable access, reject undefined
// or not-mustDefined variables; return flowType (not declaredType) to
// preserve narrowing."
func (c *Checker) checkVar(env *tenv.TypeEnvironment, n *external.VarExpr) (external.Register, tenv.MultiFlow, error) {
	v, ok := env.Lookup(n.Name)
	if !ok {
		return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "undefined variable "+n.Name, map[string]any{"name": n.Name})
	}
	if !v.MustDefined {
		return 0, nil, c.fail(n.Span(), cerrors.CHK012UseBeforeDef, "variable "+n.Name+" used before it is definitely assigned", map[string]any{"name": n.Name})
	}
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitAccess(dst, accessForm(v.Kind), "", n.Name)
	return dst, tenv.MultiFlow{env.WithResult(v.FlowType, tenv.Unknown)}, nil
}

// checkTypedString implements spec.md §4.3 "Typed string T'...'": resolve
// T, require it uniquely provides Parsable; the literal form yields
// String<T> directly, the constructor form calls T::tryParse.
func (c *Checker) checkTypedString(env *tenv.TypeEnvironment, n *external.TypedStringExpr) (external.Register, tenv.MultiFlow, error) {
	target, ok := c.Asm.ResolveTypeName(n.TypeName)
	if !ok {
		return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown type "+n.TypeName, map[string]any{"type": n.TypeName})
	}
	if !c.Asm.SubtypeOf(target, c.Asm.ParsableConcept()) {
		return 0, nil, c.fail(n.Span(), cerrors.CHK015NotParsable, n.TypeName+" does not provide Parsable", map[string]any{"type": n.TypeName})
	}

	dst := c.Emit.GenerateTmpRegister()
	if !n.IsConstructor {
		c.Emit.EmitLoadConstTypedString(dst, n.TypeName, n.Literal)
		return dst, tenv.MultiFlow{env.WithResult(c.Asm.TypedStringType(target), tenv.Unknown)}, nil
	}

	member, ok := c.Asm.TryGetOOMemberDeclUnique(target, external.MemberStatic, "tryParse")
	if !ok {
		return 0, nil, c.fail(n.Span(), cerrors.CHK008AmbiguousField, n.TypeName+"::tryParse does not resolve uniquely", nil)
	}
	litReg := c.Emit.GenerateTmpRegister()
	c.Emit.EmitLoadConstString(litReg, n.Literal)
	key := c.IR.StaticKey(n.TypeName, "tryParse")
	c.Emit.EmitCall(dst, external.CallFormStaticFunction, key, []external.Register{litReg})
	c.IR.RegisterStaticCall(key)

	fn, _ := member.Type.Atoms[0].(rtype.FunctionAtom)
	return dst, tenv.MultiFlow{env.WithResult(fn.Result, tenv.Unknown)}, nil
}

// checkNSConst implements spec.md §4.3 "Namespace / static constant,
// variable access": lookup with error on absence, register pending
// emission of the constant's body if needed, emit an access opcode, and
// return the declared type. A bare name first tries the local variable
// table (so shadowing a constant with a local works as expected) before
// falling back to a namespace/global/const lookup.
func (c *Checker) checkNSConst(env *tenv.TypeEnvironment, n *external.NSConstExpr) (external.Register, tenv.MultiFlow, error) {
	if n.Namespace == "" {
		if _, ok := env.Lookup(n.Name); ok {
			return c.checkVar(env, &external.VarExpr{Node: n.Node, Name: n.Name})
		}
	}
	if n.Namespace != "" && !c.Asm.HasNamespace(n.Namespace) {
		return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown namespace "+n.Namespace, map[string]any{"namespace": n.Namespace})
	}
	typ, ok := c.Asm.ResolveConst(n.Namespace, n.Name)
	if !ok {
		return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown constant "+n.Name, map[string]any{"name": n.Name})
	}
	key := c.IR.ConstKey(n.Namespace, n.Name)
	c.IR.RegisterPendingConstProcessing(key)
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitAccess(dst, external.AccessConst, n.Namespace, n.Name)
	return dst, tenv.MultiFlow{env.WithResult(typ, tenv.Unknown)}, nil
}
