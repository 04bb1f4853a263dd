package argresolve_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/checkercore/internal/argresolve"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/ir"
	"github.com/sunholo/checkercore/internal/rtype"
)

func newFixtures(t *testing.T) (*ir.Assembly, *ir.Emitter, *argresolve.Resolver) {
	t.Helper()
	asm := ir.NewAssembly()
	emit := ir.NewEmitter()
	r := &argresolve.Resolver{Sub: asm, Norm: asm, Emit: emit}
	return asm, emit, r
}

// evalByName resolves an argument's type from the Name field of the
// *external.VarExpr carried as its Value, so tests can script arbitrary
// argument types without a real checker driving evaluation.
func evalByName(emit *ir.Emitter, types map[string]*rtype.ResolvedType) argresolve.EvalFunc {
	return func(a external.Arg, hint *rtype.ResolvedType) (external.Register, *rtype.ResolvedType, error) {
		v, ok := a.Value.(*external.VarExpr)
		reg := emit.GenerateTmpRegister()
		if !ok {
			return reg, hint, nil
		}
		typ, ok := types[v.Name]
		if !ok {
			return reg, hint, nil
		}
		return reg, typ, nil
	}
}

func noDefault(e external.Expr) (external.Register, *rtype.ResolvedType, error) {
	return 0, nil, nil
}

func TestResolveCallPositionalBinding(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}, {Name: "y", Type: intT}}
	args := []external.Arg{
		{Value: &external.VarExpr{Name: "a"}},
		{Value: &external.VarExpr{Name: "b"}},
	}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"a": intT, "b": intT})

	res, err := r.ResolveCall(slots, nil, args, eval, noDefault)
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)
	require.True(t, res.Slots[0].Filled)
	require.True(t, res.Slots[0].MustDef)
	require.True(t, res.Slots[1].Filled)
	require.False(t, res.HasRest)
}

func TestResolveCallNamedBinding(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}, {Name: "y", Type: intT}}
	args := []external.Arg{
		{Name: "y", Value: &external.VarExpr{Name: "b"}},
		{Name: "x", Value: &external.VarExpr{Name: "a"}},
	}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"a": intT, "b": intT})

	res, err := r.ResolveCall(slots, nil, args, eval, noDefault)
	require.NoError(t, err)
	require.True(t, res.Slots[0].Filled)
	require.True(t, res.Slots[1].Filled)
}

func TestResolveCallUnknownNameErrors(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}}
	args := []external.Arg{{Name: "z", Value: &external.VarExpr{Name: "a"}}}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"a": intT})

	_, err := r.ResolveCall(slots, nil, args, eval, noDefault)
	require.ErrorContains(t, err, "UnknownName")
}

func TestResolveCallDuplicateNameErrors(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}}
	args := []external.Arg{
		{Name: "x", Value: &external.VarExpr{Name: "a"}},
		{Name: "x", Value: &external.VarExpr{Name: "b"}},
	}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"a": intT, "b": intT})

	_, err := r.ResolveCall(slots, nil, args, eval, noDefault)
	require.ErrorContains(t, err, "DuplicateName")
}

func TestResolveCallTypeMismatchErrors(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()
	strT := asm.StringType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}}
	args := []external.Arg{{Value: &external.VarExpr{Name: "a"}}}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"a": strT})

	_, err := r.ResolveCall(slots, nil, args, eval, noDefault)
	require.ErrorContains(t, err, "TypeMismatch")
}

func TestResolveCallTooManyPositionalErrors(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}}
	args := []external.Arg{
		{Value: &external.VarExpr{Name: "a"}},
		{Value: &external.VarExpr{Name: "b"}},
	}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"a": intT, "b": intT})

	_, err := r.ResolveCall(slots, nil, args, eval, noDefault)
	require.ErrorContains(t, err, "too many positional arguments")
}

func TestResolveCallOptionalWithoutDefaultFillsNone(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT, Optional: true}}
	eval := evalByName(emit, nil)

	res, err := r.ResolveCall(slots, nil, nil, eval, noDefault)
	require.NoError(t, err)
	require.True(t, res.Slots[0].Filled)
	require.False(t, res.Slots[0].MustDef)
}

func TestResolveCallDefaultValueIsEvaluatedViaEvalDefault(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	defaultExpr := &external.LitExpr{Kind: external.LitInt, Value: int64(7)}
	slots := []argresolve.Slot{{Name: "x", Type: intT, Default: defaultExpr}}
	eval := evalByName(emit, nil)
	evalDefault := func(e external.Expr) (external.Register, *rtype.ResolvedType, error) {
		require.Same(t, defaultExpr, e)
		return emit.GenerateTmpRegister(), intT, nil
	}

	res, err := r.ResolveCall(slots, nil, nil, eval, evalDefault)
	require.NoError(t, err)
	require.True(t, res.Slots[0].Filled)
	require.True(t, res.Slots[0].MustDef)
}

func TestResolveCallMissingRequiredErrors(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}}
	eval := evalByName(emit, nil)

	_, err := r.ResolveCall(slots, nil, nil, eval, noDefault)
	require.ErrorContains(t, err, "MissingRequired")
}

func TestResolveCallRecordSpreadFillsMatchingSlots(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}, {Name: "y", Type: intT}}
	rec, err := rtype.NewRecordAtom(map[string]rtype.RecordEntry{
		"x": {Name: "x", Type: intT},
		"y": {Name: "y", Type: intT},
	}, false)
	require.NoError(t, err)
	recT := rtype.Single(rec)

	args := []external.Arg{{IsSpread: true, Value: &external.VarExpr{Name: "src"}}}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"src": recT})

	res, resErr := r.ResolveCall(slots, nil, args, eval, noDefault)
	require.NoError(t, resErr)
	require.True(t, res.Slots[0].Filled)
	require.True(t, res.Slots[1].Filled)
}

func TestResolveCallTupleSpreadFillsPositionalSlotsInOrder(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}, {Name: "y", Type: intT}}
	tup := rtype.TupleAtom{Entries: []rtype.TupleEntry{{Type: intT}, {Type: intT}}}
	tupT := rtype.Single(tup)

	args := []external.Arg{{IsSpread: true, Value: &external.VarExpr{Name: "src"}}}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"src": tupT})

	res, err := r.ResolveCall(slots, nil, args, eval, noDefault)
	require.NoError(t, err)
	require.True(t, res.Slots[0].Filled)
	require.True(t, res.Slots[0].MustDef)
	require.True(t, res.Slots[1].Filled)
}

func TestResolveCallSpreadUnsupportedSourceErrors(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}}
	args := []external.Arg{{IsSpread: true, Value: &external.VarExpr{Name: "src"}}}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"src": intT})

	_, err := r.ResolveCall(slots, nil, args, eval, noDefault)
	require.ErrorContains(t, err, "UnsupportedOp")
}

func TestResolveCallRestParameterPacksLeftoverPositionals(t *testing.T) {
	asm, emit, r := newFixtures(t)
	intT := asm.IntType()

	slots := []argresolve.Slot{{Name: "x", Type: intT}}
	rest := &argresolve.RestSlot{TypeName: "List", ElemType: intT}
	args := []external.Arg{
		{Value: &external.VarExpr{Name: "a"}},
		{Value: &external.VarExpr{Name: "b"}},
		{Value: &external.VarExpr{Name: "c"}},
	}
	eval := evalByName(emit, map[string]*rtype.ResolvedType{"a": intT, "b": intT, "c": intT})

	res, err := r.ResolveCall(slots, rest, args, eval, noDefault)
	require.NoError(t, err)
	require.True(t, res.Slots[0].Filled)
	require.True(t, res.HasRest)
}
