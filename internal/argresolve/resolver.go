// Package argresolve implements spec.md §4.2 (component C2): binding an
// expanded argument list to constructor fields or function parameters
// under positional/named/spread/optional/rest rules. Grounded on the
// teacher's named-argument lookup in internal/elaborate/expressions.go and
// internal/types/typechecker_core.go's inferApp, generalized from AILANG's
// positional-only application to this spec's full argument model, with the
// emit-while-resolving pattern grounded on inferRecord/inferRecordAccess.
package argresolve

import (
	"fmt"
	"sort"

	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
)

// Slot is one fillable target of a call or construction: a function
// parameter or an entity field.
type Slot struct {
	Name     string
	Type     *rtype.ResolvedType
	Optional bool
	Default  external.Expr
}

// BoundSlot is a Slot after resolution: the register holding its bound
// value and whether the binding is definite (mustDef).
type BoundSlot struct {
	Slot
	Reg     external.Register
	MustDef bool
	Filled  bool
}

// RestSlot describes a declared rest parameter: its element type (or (K,V)
// tuple for a map rest) and the type name used to emit the collection
// construction opcode.
type RestSlot struct {
	TypeName string
	ElemType *rtype.ResolvedType
	IsMap    bool
}

// EvalFunc evaluates one argument's value expression under an optional
// contextual type hint (nil when no bias applies), returning the register
// holding the checked value and its resulting type. Supplied by the
// checker (C3), which alone knows how to recurse into sub-expressions;
// argresolve never imports internal/check; it only imports the computed
// closure.
type EvalFunc func(arg external.Arg, hint *rtype.ResolvedType) (external.Register, *rtype.ResolvedType, error)

// Result is what ResolveCall produces: every declared slot bound (or
// defaulted/None), and, if the signature declares a rest parameter, the
// register holding the packed rest collection.
type Result struct {
	Slots   []BoundSlot
	RestReg external.Register
	HasRest bool
}

// Resolver closes over the narrow slice of the external Assembly oracle
// and body emitter that argument resolution needs.
type Resolver struct {
	Sub  rtype.Subtyper
	Norm interface {
		rtype.TupleNormalizer
		rtype.RecordNormalizer
	}
	Emit external.BodyEmitter
}

type deferredPositional struct {
	arg      external.Arg
	isSpread bool
	// set only when isSpread: the spread source was already evaluated in
	// phase 1 to learn its type and decide it was NOT record-expandable.
	reg external.Register
	typ *rtype.ResolvedType
}

// ResolveCall implements spec.md §4.2's two-phase resolution plus
// optional/rest completion. evalDefault evaluates a slot's declared
// default-value expression in the enclosing declaration's own environment
// (not the call-site argument environment).
func (r *Resolver) ResolveCall(slots []Slot, rest *RestSlot, args []external.Arg,
	eval EvalFunc, evalDefault func(external.Expr) (external.Register, *rtype.ResolvedType, error)) (Result, error) {

	bound := make([]BoundSlot, len(slots))
	for i, s := range slots {
		bound[i] = BoundSlot{Slot: s}
	}
	byName := make(map[string]int, len(slots))
	for i, s := range slots {
		byName[s.Name] = i
	}

	var deferred []deferredPositional

	// Phase 1: named & record-spread.
	for _, a := range args {
		switch {
		case a.Name != "":
			idx, ok := byName[a.Name]
			if !ok {
				return Result{}, fmt.Errorf("UnknownName: no parameter or field named %q", a.Name)
			}
			if bound[idx].Filled {
				return Result{}, fmt.Errorf("DuplicateName: slot %q filled more than once", a.Name)
			}
			reg, typ, err := eval(a, bound[idx].Type)
			if err != nil {
				return Result{}, err
			}
			if r.Sub != nil && !r.Sub.SubtypeOf(typ, bound[idx].Type) {
				return Result{}, fmt.Errorf("TypeMismatch: argument for %q has type %s, expected %s", a.Name, typ, bound[idx].Type)
			}
			bound[idx].Reg, bound[idx].MustDef, bound[idx].Filled = reg, true, true

		case a.IsSpread:
			reg, typ, err := eval(a, nil)
			if err != nil {
				return Result{}, err
			}
			recExp := rtype.RecordExpando(typ, r.Norm)
			if recExp.OK {
				for _, name := range recExp.AllNames {
					idx, ok := byName[name]
					if !ok {
						return Result{}, fmt.Errorf("UnknownName: spread provides field %q with no matching slot", name)
					}
					if bound[idx].Filled {
						return Result{}, fmt.Errorf("DuplicateName: slot %q filled more than once", name)
					}
					fieldReg := r.Emit.GenerateTmpRegister()
					r.Emit.EmitLoadProperty(fieldReg, reg, name)
					required := contains(recExp.RequiredNames, name)
					if !required && !bound[idx].Optional && bound[idx].Default == nil {
						return Result{}, fmt.Errorf("MissingRequired: required slot %q filled by an only-optional provider with no declared default", name)
					}
					bound[idx].Reg, bound[idx].MustDef, bound[idx].Filled = fieldReg, required, true
				}
				continue
			}
			// Not record-expandable: defer as a tuple-spread candidate for
			// phase 2, carrying the already-evaluated register/type along.
			deferred = append(deferred, deferredPositional{arg: a, isSpread: true, reg: reg, typ: typ})

		default:
			deferred = append(deferred, deferredPositional{arg: a})
		}
	}

	// Phase 2: positional & tuple-spread, advancing a cursor over unfilled
	// slots. The cursor only skips slots already filled by phase 1; it
	// never skips an unfilled slot (binding always targets the very next
	// one), which is this implementation's resolution of spec.md §4.2's
	// "error on skipping an optional slot" ambiguity rule.
	cursor := 0
	nextUnfilled := func() int {
		for cursor < len(bound) && bound[cursor].Filled {
			cursor++
		}
		return cursor
	}

	var restArgs []external.Register
	for _, d := range deferred {
		if !d.isSpread {
			idx := nextUnfilled()
			if idx >= len(bound) {
				if rest == nil {
					return Result{}, fmt.Errorf("too many positional arguments")
				}
				reg, typ, err := eval(d.arg, rest.ElemType)
				if err != nil {
					return Result{}, err
				}
				if r.Sub != nil && rest.ElemType != nil && !r.Sub.SubtypeOf(typ, rest.ElemType) {
					return Result{}, fmt.Errorf("TypeMismatch: rest argument has type %s, expected %s", typ, rest.ElemType)
				}
				restArgs = append(restArgs, reg)
				continue
			}
			reg, typ, err := eval(d.arg, bound[idx].Type)
			if err != nil {
				return Result{}, err
			}
			if r.Sub != nil && !r.Sub.SubtypeOf(typ, bound[idx].Type) {
				return Result{}, fmt.Errorf("TypeMismatch: argument %d has type %s, expected %s", idx, typ, bound[idx].Type)
			}
			bound[idx].Reg, bound[idx].MustDef, bound[idx].Filled = reg, true, true
			cursor++
			continue
		}

		tupExp := rtype.TupleExpando(d.typ, r.Norm)
		if !tupExp.OK {
			return Result{}, fmt.Errorf("UnsupportedOp: spread source %s is neither record- nor tuple-expandable", d.typ)
		}
		for i := 0; i < tupExp.MaxLen; i++ {
			entryReg := r.Emit.GenerateTmpRegister()
			r.Emit.EmitLoadTupleIndex(entryReg, d.reg, i)
			mustDef := i < tupExp.ReqLen
			idx := nextUnfilled()
			if idx >= len(bound) {
				if rest == nil {
					return Result{}, fmt.Errorf("too many positional arguments from tuple spread")
				}
				restArgs = append(restArgs, entryReg)
				continue
			}
			bound[idx].Reg, bound[idx].MustDef, bound[idx].Filled = entryReg, mustDef, true
			cursor++
		}
	}

	// Optional/rest completion.
	for i := range bound {
		if bound[i].Filled {
			continue
		}
		if bound[i].Default != nil {
			reg, typ, err := evalDefault(bound[i].Default)
			if err != nil {
				return Result{}, err
			}
			if r.Sub != nil && !r.Sub.SubtypeOf(typ, bound[i].Type) {
				return Result{}, fmt.Errorf("TypeMismatch: default for %q has type %s, expected %s", bound[i].Name, typ, bound[i].Type)
			}
			bound[i].Reg, bound[i].MustDef, bound[i].Filled = reg, true, true
			continue
		}
		if bound[i].Optional {
			reg := r.Emit.GenerateTmpRegister()
			r.Emit.EmitLoadConstNone(reg)
			bound[i].Reg, bound[i].MustDef, bound[i].Filled = reg, false, true
			continue
		}
		return Result{}, fmt.Errorf("MissingRequired: required field %s", bound[i].Name)
	}

	result := Result{Slots: bound}
	if rest != nil {
		restReg, err := buildCollection(r.Emit, r.Sub, r.Norm, rest.TypeName, rest.ElemType, allSingletonItems(restArgs))
		if err != nil {
			return Result{}, err
		}
		result.RestReg = restReg
		result.HasRest = true
	}
	return result, nil
}

func contains(names []string, name string) bool {
	i := sort.SearchStrings(names, name)
	return i < len(names) && names[i] == name
}
