package external

import "github.com/sunholo/checkercore/internal/rtype"

// Register names a fresh IR temporary allocated by the body emitter.
type Register int

// BlockID names a basic block created by the body emitter.
type BlockID int

// CollectionConstructKind selects which of the four collection-construction
// opcodes C2's collection constructor emits (spec.md §4.2).
type CollectionConstructKind int

const (
	CollectionEmpty CollectionConstructKind = iota
	CollectionSingletons
	CollectionCopies
	CollectionMixed
)

// CallForm selects which call opcode family C3/C4 emit.
type CallForm int

const (
	CallFormNamespaceFunction CallForm = iota
	CallFormStaticFunction
	CallFormLambdaCall
	CallFormVirtualTarget
	CallFormKnownTarget
)

// AccessForm selects which access opcode C3 emits for a name binding.
type AccessForm int

const (
	AccessNamespaceConstant AccessForm = iota
	AccessConst
	AccessLocal
	AccessArg
	AccessCaptured
)

// BodyEmitter is the IR body emitter the checker core appends opcodes
// into: register allocator, opcode sink, and basic-block manager
// (spec.md §6). Never implemented by this CORE itself — internal/ir
// provides a toy implementation for tests and cmd/typecheck.
type BodyEmitter interface {
	GenerateTmpRegister() Register
	CreateNewBlock(label string) BlockID
	SetActiveBlock(b BlockID)

	EmitLoadConstNone(dst Register)
	EmitLoadConstBool(dst Register, v bool)
	EmitLoadConstInt(dst Register, v int64)
	EmitLoadConstString(dst Register, v string)
	EmitLoadConstTypedString(dst Register, typeName, literal string)

	EmitLoadProperty(dst Register, base Register, name string)
	EmitLoadField(dst Register, base Register, name string)
	EmitLoadTupleIndex(dst Register, base Register, index int)

	EmitAccess(dst Register, form AccessForm, namespace, name string)

	EmitConstructorTuple(dst Register, elems []Register)
	EmitConstructorRecord(dst Register, fields map[string]Register)
	EmitConstructorLambda(dst Register, lambdaKey string, captures map[string]Register)
	EmitConstructorPrimary(dst Register, typeName string, fields map[string]Register)
	EmitConstructorPrimaryCollection(dst Register, typeName string, kind CollectionConstructKind, elems []Register)

	EmitCall(dst Register, form CallForm, target string, args []Register)

	EmitProjectIndices(dst Register, base Register, indices []int)
	EmitProjectNames(dst Register, base Register, names []string)
	EmitProjectType(dst Register, base Register, typeName string)

	EmitModifyWithIndices(dst Register, base Register, updates map[int]Register)
	EmitModifyWithNames(dst Register, base Register, updates map[string]Register)

	EmitStructuredExtendAppendTuple(dst Register, base, other Register)
	EmitStructuredExtendMergeRecord(dst Register, base, other Register)
	EmitStructuredExtendMergeObject(dst Register, base, other Register)

	EmitPrefixOp(dst Register, op string, operand Register)
	EmitBinOp(dst Register, op string, left, right Register)
	EmitBinEq(dst Register, op string, left, right Register)
	EmitBinCmp(dst Register, op string, left, right Register)

	EmitTruthyConversion(dst Register, src Register)
	EmitBoolJump(cond Register, onTrue, onFalse BlockID)
	EmitNoneJump(cond Register, onNone, onSome BlockID)
	EmitDirectJump(target BlockID)

	EmitRegAssign(dst Register, src Register)
	EmitReturnAssign(src Register)
	EmitAssert(test Register)
	EmitCheck(test Register)

	RegisterVar(name string, reg Register, t *rtype.ResolvedType)
	LocalLifetimeStart(name string, reg Register)
	LocalLifetimeEnd(name string)

	GetBody() Body
}

// Body is the opaque compiled-body handle the emitter hands back to C6.
type Body interface {
	// OpcodeCount returns the emitted instruction count, enough for the
	// idempotent-duplicate-check testable property (spec.md §8) to
	// compare re-check runs without needing the full opcode encoding.
	OpcodeCount() int
}
