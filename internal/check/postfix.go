package check

import (
	"sort"
	"strconv"

	"github.com/sunholo/checkercore/internal/argresolve"
	"github.com/sunholo/checkercore/internal/ast"
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

// checkPostfix implements spec.md §4.4: a left-to-right chain of postfix
// operators over a root expression. `?.` short-circuits the remainder of
// the chain to None whenever the value it guards can itself be None,
// producing a single merged result at the end of the whole chain rather
// than splitting at each guard. A trailing is/isSome/isNone check with no
// elvis guard earlier in the chain is the one operator allowed to split
// the chain's own result into a two-way True/False multi-flow; the checked
// variable is narrowed in those branches only when the chain is that single
// check applied directly to a bare variable, per spec.md §9 "narrowing
// requires variable identity".
func (c *Checker) checkPostfix(env *tenv.TypeEnvironment, n *external.PostfixExpr) (external.Register, tenv.MultiFlow, error) {
	reg, typ, curEnv, err := c.checkOne(env, n.Root, nil)
	if err != nil {
		return 0, nil, err
	}

	var noneBlocks []external.BlockID
	anyElvis := false

	for i, op := range n.Ops {
		if op.IsElvis {
			if !rtype.HasNone(typ) {
				return 0, nil, c.fail(n.Span(), cerrors.CHK005RedundantNullCheck, "None value is not possible", nil)
			}
			anyElvis = true
			someBlock := c.Emit.CreateNewBlock("elvis_some")
			noneBlock := c.Emit.CreateNewBlock("elvis_none")
			c.Emit.EmitNoneJump(reg, noneBlock, someBlock)
			noneBlocks = append(noneBlocks, noneBlock)
			c.Emit.SetActiveBlock(someBlock)
			typ = rtype.WithoutNone(typ)
		}

		if op.Kind == external.PostIsCheck && isNarrowingName(op.Name) && i == len(n.Ops)-1 && !anyElvis {
			return c.checkNarrowingOp(curEnv, reg, typ, op, n)
		}

		reg, typ, curEnv, err = c.applyPostfixOp(curEnv, reg, typ, op, n)
		if err != nil {
			return 0, nil, err
		}
	}

	if !anyElvis {
		return reg, tenv.MultiFlow{curEnv.WithResult(typ, tenv.Unknown)}, nil
	}

	dst := c.Emit.GenerateTmpRegister()
	mergeBlock := c.Emit.CreateNewBlock("elvis_merge")
	c.Emit.EmitRegAssign(dst, reg)
	c.Emit.EmitDirectJump(mergeBlock)
	for _, nb := range noneBlocks {
		c.Emit.SetActiveBlock(nb)
		c.Emit.EmitLoadConstNone(dst)
		c.Emit.EmitDirectJump(mergeBlock)
	}
	c.Emit.SetActiveBlock(mergeBlock)
	result := rtype.Union(typ, rtype.None())
	return dst, tenv.MultiFlow{curEnv.WithResult(result, tenv.Unknown)}, nil
}

func isNarrowingName(name string) bool {
	return name == "is" || name == "isSome" || name == "isNone"
}

// checkNarrowingOp implements the trailing is/isSome/isNone check: it
// computes the true/false narrowed types via the Assembly's RestrictT /
// RestrictNotT (for `is[T]`) or None/WithoutNone splits (for isSome/
// isNone), and rebinds the checked variable in each resulting environment.
func (c *Checker) checkNarrowingOp(env *tenv.TypeEnvironment, reg external.Register, typ *rtype.ResolvedType, op external.PostfixOp, n *external.PostfixExpr) (external.Register, tenv.MultiFlow, error) {
	var trueType, falseType *rtype.ResolvedType
	opLabel := op.Name
	switch op.Name {
	case "isSome":
		trueType, falseType = rtype.WithoutNone(typ), rtype.None()
	case "isNone":
		trueType, falseType = rtype.None(), rtype.WithoutNone(typ)
	case "is":
		target, ok := c.Asm.ResolveTypeName(op.TypeName)
		if !ok {
			return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown type "+op.TypeName, map[string]any{"type": op.TypeName})
		}
		trueType = c.Asm.RestrictT(typ, target)
		falseType = c.Asm.RestrictNotT(typ, target)
		opLabel = "is:" + op.TypeName
	default:
		return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "unrecognized narrowing operator "+op.Name, nil)
	}

	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitPrefixOp(dst, opLabel, reg)

	name, isVar := varNameFromRoot(n)
	trueEnv, falseEnv := env, env
	if isVar {
		if v, found := env.Lookup(name); found {
			trueEnv = env.Narrow(name, v.Narrow(trueType))
			falseEnv = env.Narrow(name, v.Narrow(falseType))
		}
	}
	return dst, tenv.MultiFlow{
		trueEnv.WithResult(c.Asm.BoolType(), tenv.True),
		falseEnv.WithResult(c.Asm.BoolType(), tenv.False),
	}, nil
}

// varNameFromRoot reports the narrowable variable name of a one-operator
// chain rooted directly at a bare variable — the only shape spec.md §9
// allows narrowing to key on.
func varNameFromRoot(n *external.PostfixExpr) (string, bool) {
	if len(n.Ops) != 1 {
		return "", false
	}
	v, ok := n.Root.(*external.VarExpr)
	if !ok {
		return "", false
	}
	return v.Name, true
}

// applyPostfixOp implements the non-narrowing operators of spec.md §4.4:
// access, project, modify, structured-extend, invoke, and lambda-call, plus
// the value-producing as/tryAs/defaultAs conversions.
func (c *Checker) applyPostfixOp(env *tenv.TypeEnvironment, reg external.Register, typ *rtype.ResolvedType, op external.PostfixOp, n *external.PostfixExpr) (external.Register, *rtype.ResolvedType, *tenv.TypeEnvironment, error) {
	switch op.Kind {
	case external.PostAccessIndex:
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitLoadTupleIndex(dst, reg, op.Index)
		return dst, rtype.LoadIndex(typ, op.Index, c.Asm), env, nil

	case external.PostAccessName:
		if member, ok := c.Asm.TryGetOOMemberDeclUnique(typ, external.MemberField, op.Name); ok {
			dst := c.Emit.GenerateTmpRegister()
			c.Emit.EmitLoadField(dst, reg, op.Name)
			return dst, member.Type, env, nil
		}
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitLoadProperty(dst, reg, op.Name)
		return dst, rtype.LoadName(typ, op.Name, c.Asm), env, nil

	case external.PostProjectIndices:
		pattern := rtype.TupleAtom{Entries: tupleProjectEntries(typ, op.Indices, c.Asm), Open: false}
		result, err := rtype.ProjectTuple(typ, pattern, c.Asm, c.Asm)
		if err != nil {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, err.Error(), nil)
		}
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitProjectIndices(dst, reg, op.Indices)
		return dst, result, env, nil

	case external.PostProjectNames:
		pattern := rtype.RecordAtom{Entries: recordProjectEntries(typ, op.Names, c.Asm), Open: false}
		result, err := rtype.ProjectRecord(typ, pattern, c.Asm, c.Asm)
		if err != nil {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, err.Error(), nil)
		}
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitProjectNames(dst, reg, op.Names)
		return dst, result, env, nil

	case external.PostProjectType:
		target, ok := c.Asm.ResolveTypeName(op.TypeName)
		if !ok {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown type "+op.TypeName, map[string]any{"type": op.TypeName})
		}
		names := conceptFieldNames(target, c.Asm)
		result, err := rtype.ProjectConcept(typ, names, c.Asm)
		if err != nil {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, err.Error(), nil)
		}
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitProjectType(dst, reg, op.TypeName)
		return dst, result, env, nil

	case external.PostModifyIndices:
		updates := make(map[int]external.Register, len(op.Replacement))
		tupleUpdates := make([]rtype.TupleUpdate, 0, len(op.Replacement))
		for _, a := range op.Replacement {
			idx, convErr := strconv.Atoi(a.Name)
			if convErr != nil {
				return 0, nil, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "modify index must be numeric, got "+a.Name, nil)
			}
			valReg, valTyp, _, err := c.checkOne(env, a.Value, nil)
			if err != nil {
				return 0, nil, nil, err
			}
			updates[idx] = valReg
			tupleUpdates = append(tupleUpdates, rtype.TupleUpdate{Index: idx, Type: valTyp})
		}
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitModifyWithIndices(dst, reg, updates)
		return dst, updateTupleAcrossAtoms(typ, tupleUpdates), env, nil

	case external.PostModifyNames:
		updates := make(map[string]external.Register, len(op.Replacement))
		recordUpdates := make([]rtype.RecordUpdate, 0, len(op.Replacement))
		for _, a := range op.Replacement {
			valReg, valTyp, _, err := c.checkOne(env, a.Value, nil)
			if err != nil {
				return 0, nil, nil, err
			}
			updates[a.Name] = valReg
			recordUpdates = append(recordUpdates, rtype.RecordUpdate{Name: a.Name, Type: valTyp})
		}
		result, err := updateRecordAcrossAtoms(typ, recordUpdates)
		if err != nil {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK014RecordMasksAnyMethod, err.Error(), nil)
		}
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitModifyWithNames(dst, reg, updates)
		return dst, result, env, nil

	case external.PostStructuredExtend:
		if len(op.Args) != 1 {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "structured extend requires exactly one operand", nil)
		}
		otherReg, otherTyp, _, err := c.checkOne(env, op.Args[0].Value, nil)
		if err != nil {
			return 0, nil, nil, err
		}
		return c.applyStructuredExtend(env, reg, typ, otherReg, otherTyp, n)

	case external.PostInvoke:
		return c.checkInvoke(env, reg, typ, op, n)

	case external.PostCallLambda:
		return c.checkCallLambda(env, reg, typ, op, n)

	case external.PostIsCheck:
		return c.applyConversion(env, reg, typ, op, n)

	default:
		return 0, nil, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "unrecognized postfix operator", nil)
	}
}

func tupleProjectEntries(typ *rtype.ResolvedType, indices []int, norm rtype.TupleNormalizer) []rtype.TupleEntry {
	entries := make([]rtype.TupleEntry, len(indices))
	for i, idx := range indices {
		entries[i] = rtype.TupleEntry{Type: rtype.LoadIndex(typ, idx, norm), Optional: true}
	}
	return entries
}

func recordProjectEntries(typ *rtype.ResolvedType, names []string, norm rtype.RecordNormalizer) map[string]rtype.RecordEntry {
	entries := make(map[string]rtype.RecordEntry, len(names))
	for _, name := range names {
		entries[name] = rtype.RecordEntry{Name: name, Type: rtype.LoadName(typ, name, norm), Optional: true}
	}
	return entries
}

func conceptFieldNames(t *rtype.ResolvedType, asm external.Assembly) []string {
	seen := map[string]bool{}
	var names []string
	for _, a := range t.Atoms {
		ca, ok := a.(rtype.ConceptAtom)
		if !ok {
			continue
		}
		for _, ref := range ca.Concepts {
			for name := range asm.GetAllOOFields(ref.D, ref.Binds) {
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	sort.Strings(names)
	return names
}

func updateTupleAcrossAtoms(t *rtype.ResolvedType, updates []rtype.TupleUpdate) *rtype.ResolvedType {
	var results []*rtype.ResolvedType
	for _, a := range t.Atoms {
		tup, ok := a.(rtype.TupleAtom)
		if !ok {
			continue
		}
		results = append(results, rtype.Single(rtype.UpdateTuple(tup, updates)))
	}
	return rtype.Union(results...)
}

func updateRecordAcrossAtoms(t *rtype.ResolvedType, updates []rtype.RecordUpdate) (*rtype.ResolvedType, error) {
	var results []*rtype.ResolvedType
	for _, a := range t.Atoms {
		rec, ok := a.(rtype.RecordAtom)
		if !ok {
			continue
		}
		updated, err := rtype.UpdateRecord(rec, updates)
		if err != nil {
			return nil, err
		}
		results = append(results, rtype.Single(updated))
	}
	return rtype.Union(results...), nil
}

// applyStructuredExtend dispatches the structured-extend family over the
// pairwise cross-product of both operands' atoms: tuple+tuple appends,
// record+record merges, and nominal+record merges the record's fields into
// the nominal atom's own declared fields without changing its type.
func (c *Checker) applyStructuredExtend(env *tenv.TypeEnvironment, reg external.Register, typ *rtype.ResolvedType, otherReg external.Register, otherTyp *rtype.ResolvedType, n *external.PostfixExpr) (external.Register, *rtype.ResolvedType, *tenv.TypeEnvironment, error) {
	dst := c.Emit.GenerateTmpRegister()
	emitted := false
	var results []*rtype.ResolvedType
	for _, a := range typ.Atoms {
		for _, b := range otherTyp.Atoms {
			switch base := a.(type) {
			case rtype.TupleAtom:
				other, ok := b.(rtype.TupleAtom)
				if !ok {
					return 0, nil, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "structured extend requires matching tuple operands", nil)
				}
				if !emitted {
					c.Emit.EmitStructuredExtendAppendTuple(dst, reg, otherReg)
					emitted = true
				}
				results = append(results, rtype.Single(rtype.AppendTuple(base, other)))

			case rtype.RecordAtom:
				other, ok := b.(rtype.RecordAtom)
				if !ok {
					return 0, nil, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "structured extend requires matching record operands", nil)
				}
				if !emitted {
					c.Emit.EmitStructuredExtendMergeRecord(dst, reg, otherReg)
					emitted = true
				}
				merged, err := rtype.MergeRecord(base, other)
				if err != nil {
					return 0, nil, nil, c.fail(n.Span(), cerrors.CHK014RecordMasksAnyMethod, err.Error(), nil)
				}
				results = append(results, rtype.Single(merged))

			case rtype.EntityAtom:
				other, ok := b.(rtype.RecordAtom)
				if !ok {
					return 0, nil, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "structured extend onto an entity requires a record operand", nil)
				}
				if err := rtype.MergeObjectWithRecord(a, other, c.Asm, c.Asm); err != nil {
					return 0, nil, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, err.Error(), nil)
				}
				if !emitted {
					c.Emit.EmitStructuredExtendMergeObject(dst, reg, otherReg)
					emitted = true
				}
				results = append(results, rtype.Single(a))

			default:
				return 0, nil, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "structured extend does not support this operand shape", nil)
			}
		}
	}
	return dst, rtype.Union(results...), env, nil
}

// checkInvoke implements `root.method(args)`: resolve the method (unique
// or, failing that, a unified virtual signature across its override set),
// resolve its arguments via C2, and emit either a known- or virtual-target
// call with the receiver as the first argument.
func (c *Checker) checkInvoke(env *tenv.TypeEnvironment, reg external.Register, typ *rtype.ResolvedType, op external.PostfixOp, n *external.PostfixExpr) (external.Register, *rtype.ResolvedType, *tenv.TypeEnvironment, error) {
	var fn rtype.FunctionAtom
	var form external.CallForm
	var key string

	if member, ok := c.Asm.TryGetOOMemberDeclUnique(typ, external.MemberMethod, op.Name); ok {
		f, isFn := uniqueFunctionAtom(member.Type)
		if !isFn {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, op.Name+" does not resolve to a callable method", nil)
		}
		fn = f
		form = external.CallFormKnownTarget
		key = c.IR.MethodKey(typeNameOf(typ), op.Name)
	} else {
		options := c.Asm.TryGetOOMemberDeclOptions(typ, external.MemberMethod, op.Name)
		if len(options) == 0 {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown method "+op.Name, map[string]any{"name": op.Name})
		}
		if options[0].Root == nil {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK008AmbiguousField, "method "+op.Name+" does not resolve uniquely", nil)
		}
		candidates := make([]rtype.FunctionAtom, 0, len(options))
		for _, o := range options {
			if f, isFn := uniqueFunctionAtom(o.Type); isFn {
				candidates = append(candidates, f)
			}
		}
		unified, ok := c.Asm.ComputeUnifiedFunctionType(candidates, options[0].Root)
		if !ok {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK008AmbiguousField, "method "+op.Name+" overrides do not unify", nil)
		}
		fn = *unified
		form = external.CallFormVirtualTarget
		key = c.IR.VirtualMethodKey(options[0].Root, op.Name)
	}

	res, err := c.resolveArgs(env, fn, op.Args)
	if err != nil {
		return 0, nil, nil, err
	}
	callArgs := append([]external.Register{reg}, regsOf(res)...)

	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitCall(dst, form, key, callArgs)
	switch form {
	case external.CallFormKnownTarget:
		c.IR.RegisterMethodCall(key)
	case external.CallFormVirtualTarget:
		c.IR.RegisterVirtualMethodCall(key)
	}
	return dst, fn.Result, env, nil
}

// checkCallLambda implements `root(args)` where root is itself a value of
// function type, dispatching through the callee's own register rather
// than a statically known key.
func (c *Checker) checkCallLambda(env *tenv.TypeEnvironment, reg external.Register, typ *rtype.ResolvedType, op external.PostfixOp, n *external.PostfixExpr) (external.Register, *rtype.ResolvedType, *tenv.TypeEnvironment, error) {
	fn, ok := uniqueFunctionAtom(typ)
	if !ok {
		return 0, nil, nil, c.fail(n.Span(), cerrors.CHK007AmbiguousCall, "value is not a unique callable function", nil)
	}
	res, err := c.resolveArgs(env, fn, op.Args)
	if err != nil {
		return 0, nil, nil, err
	}
	callArgs := append([]external.Register{reg}, regsOf(res)...)
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitCall(dst, external.CallFormLambdaCall, "", callArgs)
	return dst, fn.Result, env, nil
}

// resolveArgs is the shared C2-driving step behind checkInvoke and
// checkCallLambda: build slots from fn's declared parameters and resolve
// args against them.
func (c *Checker) resolveArgs(env *tenv.TypeEnvironment, fn rtype.FunctionAtom, args []external.Arg) (argresolve.Result, error) {
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
	res, err := r.ResolveCall(slots, rest, args,
		func(a external.Arg, hint *rtype.ResolvedType) (external.Register, *rtype.ResolvedType, error) {
			reg, typ, _, err := c.checkOne(env, a.Value, hint)
			return reg, typ, err
		},
		func(expr external.Expr) (external.Register, *rtype.ResolvedType, error) {
			reg, typ, _, err := c.checkOne(env, expr, nil)
			return reg, typ, err
		})
	if err != nil {
		return argresolve.Result{}, c.fail(args0Span(args), codeFor(err), err.Error(), nil)
	}
	return res, nil
}

func args0Span(args []external.Arg) (sp ast.Span) {
	if len(args) > 0 {
		return args[0].Value.Span()
	}
	return sp
}

func regsOf(res argresolve.Result) []external.Register {
	out := make([]external.Register, len(res.Slots))
	for i, s := range res.Slots {
		out[i] = s.Reg
	}
	if res.HasRest {
		out = append(out, res.RestReg)
	}
	return out
}

func typeNameOf(t *rtype.ResolvedType) string {
	if len(t.Atoms) == 1 {
		if e, ok := t.Atoms[0].(rtype.EntityAtom); ok {
			return e.D.DeclName()
		}
	}
	return t.String()
}

// applyConversion implements the as/tryAs/defaultAs value-producing
// conversions (spec.md §4.4): as requires static subtyping proof, tryAs
// yields T|None, defaultAs falls back to a supplied default.
func (c *Checker) applyConversion(env *tenv.TypeEnvironment, reg external.Register, typ *rtype.ResolvedType, op external.PostfixOp, n *external.PostfixExpr) (external.Register, *rtype.ResolvedType, *tenv.TypeEnvironment, error) {
	target, ok := c.Asm.ResolveTypeName(op.TypeName)
	if !ok {
		return 0, nil, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown type "+op.TypeName, map[string]any{"type": op.TypeName})
	}
	switch op.Name {
	case "as":
		if !c.Asm.SubtypeOf(typ, target) {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, "value is not statically known to be "+op.TypeName, nil)
		}
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitPrefixOp(dst, "as:"+op.TypeName, reg)
		return dst, target, env, nil

	case "tryAs":
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitPrefixOp(dst, "tryAs:"+op.TypeName, reg)
		return dst, rtype.Union(target, rtype.None()), env, nil

	case "defaultAs":
		if len(op.Args) != 1 {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "defaultAs requires exactly one default-value operand", nil)
		}
		defReg, defTyp, _, err := c.checkOne(env, op.Args[0].Value, target)
		if err != nil {
			return 0, nil, nil, err
		}
		if !c.Asm.SubtypeOf(defTyp, target) {
			return 0, nil, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, "defaultAs default value is not a "+op.TypeName, nil)
		}
		dst := c.Emit.GenerateTmpRegister()
		c.Emit.EmitPrefixOp(dst, "defaultAs:"+op.TypeName, reg)
		c.Emit.EmitRegAssign(dst, defReg)
		return dst, target, env, nil

	default:
		return 0, nil, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "narrowing operator "+op.Name+" must be the final operator of its chain", nil)
	}
}
