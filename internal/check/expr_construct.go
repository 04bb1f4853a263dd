package check

import (
	"github.com/sunholo/checkercore/internal/argresolve"
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

// checkTupleConstruct implements spec.md §4.3 "Tuple/record construction":
// evaluate arguments with no signature bias, then build a closed tuple
// atom from the evaluated types.
func (c *Checker) checkTupleConstruct(env *tenv.TypeEnvironment, n *external.TupleExpr) (external.Register, tenv.MultiFlow, error) {
	regs := make([]external.Register, len(n.Elements))
	entries := make([]rtype.TupleEntry, len(n.Elements))
	for i, el := range n.Elements {
		reg, typ, _, err := c.checkOne(env, el, nil)
		if err != nil {
			return 0, nil, err
		}
		regs[i] = reg
		entries[i] = rtype.TupleEntry{Type: typ}
	}
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitConstructorTuple(dst, regs)
	result := rtype.Single(rtype.TupleAtom{Entries: entries, Open: false})
	return dst, tenv.MultiFlow{env.WithResult(result, tenv.Unknown)}, nil
}

// checkRecordConstruct is the record-literal counterpart of
// checkTupleConstruct.
func (c *Checker) checkRecordConstruct(env *tenv.TypeEnvironment, n *external.RecordExpr) (external.Register, tenv.MultiFlow, error) {
	fieldRegs := make(map[string]external.Register, len(n.Fields))
	entries := make(map[string]rtype.RecordEntry, len(n.Fields))
	for _, f := range n.Fields {
		reg, typ, _, err := c.checkOne(env, f.Value, nil)
		if err != nil {
			return 0, nil, err
		}
		fieldRegs[f.Name] = reg
		entries[f.Name] = rtype.RecordEntry{Name: f.Name, Type: typ}
	}
	atom, err := rtype.NewRecordAtom(entries, false)
	if err != nil {
		return 0, nil, c.fail(n.Span(), cerrors.CHK014RecordMasksAnyMethod, err.Error(), nil)
	}
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitConstructorRecord(dst, fieldRegs)
	return dst, tenv.MultiFlow{env.WithResult(rtype.Single(atom), tenv.Unknown)}, nil
}

// checkEntityConstruct implements spec.md §4.3 "Entity construction":
// resolve the type, validate bounds, and either go through the collection
// path (for collection/map entities) or the entity-field resolver. The
// factory-constructor variant additionally invokes the named static
// function first and re-runs field resolution using its structural result
// as an expando record.
func (c *Checker) checkEntityConstruct(env *tenv.TypeEnvironment, n *external.EntityConstructExpr) (external.Register, tenv.MultiFlow, error) {
	typ, ok := c.Asm.ResolveTypeName(n.TypeName)
	if !ok {
		return 0, nil, c.fail(n.Span(), cerrors.CHK002UnknownName, "unknown type "+n.TypeName, map[string]any{"type": n.TypeName})
	}
	ent, ok := uniqueEntity(typ)
	if !ok {
		return 0, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, n.TypeName+" is not a constructible entity", nil)
	}

	if elem, isMap, isColl := c.Asm.CollectionElementType(typ); isColl {
		return c.checkCollectionConstruct(env, n, elem, isMap)
	}

	if n.IsFactory {
		return c.checkFactoryConstruct(env, n, ent)
	}
	return c.checkPlainEntityConstruct(env, n, ent, typ, nil)
}

func (c *Checker) checkCollectionConstruct(env *tenv.TypeEnvironment, n *external.EntityConstructExpr, elem *rtype.ResolvedType, isMap bool) (external.Register, tenv.MultiFlow, error) {
	items := make([]argresolve.CollectionItem, len(n.Args))
	for i, a := range n.Args {
		if a.Name != "" {
			return 0, nil, c.fail(n.Span(), cerrors.CHK016UnsupportedOp, "collection construction arguments must be unnamed", nil)
		}
		hint := elem
		if a.IsSpread {
			hint = nil
		}
		reg, typ, _, err := c.checkOne(env, a.Value, hint)
		if err != nil {
			return 0, nil, err
		}
		if a.IsSpread {
			srcElem, srcIsMap, ok := c.Asm.CollectionElementType(typ)
			if !ok || srcIsMap != isMap {
				return 0, nil, c.fail(a.Value.Span(), cerrors.CHK001TypeMismatch, "spread source is not a compatible container", nil)
			}
			items[i] = argresolve.CollectionItem{Reg: reg, Type: srcElem, IsSpread: true}
		} else {
			items[i] = argresolve.CollectionItem{Reg: reg, Type: typ}
		}
	}
	dst, err := argresolve.BuildCollection(c.Emit, c.Asm, c.Asm, n.TypeName, elem, items)
	if err != nil {
		return 0, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, err.Error(), nil)
	}
	resultType, _ := c.Asm.ResolveTypeName(n.TypeName)
	return dst, tenv.MultiFlow{env.WithResult(resultType, tenv.Unknown)}, nil
}

// checkPlainEntityConstruct resolves every declared field (inherited +
// declared) of ent to the argument list via the argument resolver (C2's
// sibling "entity constructor"). expandoFields, when non-nil, overrides the
// evaluated-arguments path with a pre-built record (the factory-
// constructor's structural result, spec.md §4.3).
func (c *Checker) checkPlainEntityConstruct(env *tenv.TypeEnvironment, n *external.EntityConstructExpr, ent rtype.EntityAtom, typ *rtype.ResolvedType, expandoFields map[string]external.Register) (external.Register, tenv.MultiFlow, error) {
	fields := c.Asm.GetAllOOFields(ent.D, ent.Binds)
	slots := argresolve.FieldsToSlots(fields)

	r := &argresolve.Resolver{Sub: c.Asm, Norm: c.Asm, Emit: c.Emit}

	args := n.Args
	if expandoFields != nil {
		args = nil
		for name, reg := range expandoFields {
			args = append(args, external.Arg{Name: name, Value: preEvaluated{reg: reg}})
		}
	}

	res, err := r.ResolveCall(slots, nil, args,
		func(a external.Arg, hint *rtype.ResolvedType) (external.Register, *rtype.ResolvedType, error) {
			if pe, ok := a.Value.(preEvaluated); ok {
				return pe.reg, fields[a.Name].Type, nil
			}
			reg, typ2, _, err := c.checkOne(env, a.Value, hint)
			return reg, typ2, err
		},
		func(expr external.Expr) (external.Register, *rtype.ResolvedType, error) {
			reg, typ2, _, err := c.checkOne(env, expr, nil)
			return reg, typ2, err
		})
	if err != nil {
		return 0, nil, c.fail(n.Span(), codeFor(err), err.Error(), nil)
	}

	fieldRegs := make(map[string]external.Register, len(res.Slots))
	for _, s := range res.Slots {
		fieldRegs[s.Name] = s.Reg
	}
	dst := c.Emit.GenerateTmpRegister()
	c.Emit.EmitConstructorPrimary(dst, n.TypeName, fieldRegs)
	key := c.IR.TypeKey(ent.D, ent.Binds)
	c.IR.RegisterTypeInstantiation(key, typ)
	return dst, tenv.MultiFlow{env.WithResult(typ, tenv.Unknown)}, nil
}

// checkFactoryConstruct implements the factory-constructor variant: call
// the named static function, then re-run entity-field resolution using
// its structural (record) result as an expando.
func (c *Checker) checkFactoryConstruct(env *tenv.TypeEnvironment, n *external.EntityConstructExpr, ent rtype.EntityAtom) (external.Register, tenv.MultiFlow, error) {
	member, ok := c.Asm.TryGetOOMemberDeclUnique(rtype.Single(ent), external.MemberStatic, n.FactoryName)
	if !ok {
		return 0, nil, c.fail(n.Span(), cerrors.CHK008AmbiguousField, "factory function "+n.FactoryName+" does not resolve uniquely", nil)
	}
	fn, _ := member.Type.Atoms[0].(rtype.FunctionAtom)

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
	factoryDst := c.Emit.GenerateTmpRegister()
	key := c.IR.StaticKey(n.TypeName, n.FactoryName)
	c.Emit.EmitCall(factoryDst, external.CallFormStaticFunction, key, callArgs)
	c.IR.RegisterStaticCall(key)

	recExp := rtype.RecordExpando(fn.Result, c.Asm)
	if !recExp.OK {
		return 0, nil, c.fail(n.Span(), cerrors.CHK001TypeMismatch, "factory result is not record-expandable", nil)
	}
	expandoFields := make(map[string]external.Register, len(recExp.AllNames))
	for _, name := range recExp.AllNames {
		fieldReg := c.Emit.GenerateTmpRegister()
		c.Emit.EmitLoadProperty(fieldReg, factoryDst, name)
		expandoFields[name] = fieldReg
	}
	typ := rtype.Single(ent)
	return c.checkPlainEntityConstruct(env, n, ent, typ, expandoFields)
}

// preEvaluated is a synthetic external.Expr used internally to thread an
// already-computed register (from a factory result's expando fields)
// through the shared argument-evaluation closure without re-checking it.
type preEvaluated struct {
	external.Node
	reg external.Register
}

func (preEvaluated) exprNode() {}

// codeFor maps an argresolve error's message prefix to a CHK code for
// reporting; argresolve itself stays decoupled from cerrors so it can be
// unit-tested without pulling in the whole error-report machinery.
func codeFor(err error) string {
	msg := err.Error()
	switch {
	case hasPrefix(msg, "UnknownName"):
		return cerrors.CHK002UnknownName
	case hasPrefix(msg, "DuplicateName"):
		return cerrors.CHK003DuplicateName
	case hasPrefix(msg, "MissingRequired"):
		return cerrors.CHK004MissingRequired
	case hasPrefix(msg, "TypeMismatch"):
		return cerrors.CHK001TypeMismatch
	case hasPrefix(msg, "UnsupportedOp"):
		return cerrors.CHK016UnsupportedOp
	default:
		return cerrors.CHK001TypeMismatch
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
