package ir

import (
	"fmt"

	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
)

// Instr is one emitted opcode, kept as a human-readable op name plus its
// operand registers/literals, printable via String. Grounded on the
// teacher's linear IR dump style in
// internal/eval's tracer, simplified to a flat struct.
type Instr struct {
	Op       string
	Dst      external.Register
	Operands []external.Register
	Literal  interface{}
	Block    external.BlockID
}

func (i Instr) String() string {
	return fmt.Sprintf("b%d: %s -> r%d %v %v", i.Block, i.Op, i.Dst, i.Operands, i.Literal)
}

// Body is the toy compiled-body handle: the flat opcode list plus the
// variable/lifetime bookkeeping the emitter accumulated.
type Body struct {
	Instrs []Instr
	Vars   map[string]external.Register
}

func (b *Body) OpcodeCount() int { return len(b.Instrs) }

// Emitter is the toy BodyEmitter: it appends Instr values to a flat list
// tagged with whichever block is currently active, rather than building a
// real basic-block graph — enough for internal/check's straight-line and
// branching emission to exercise every opcode and be replayed for tests.
type Emitter struct {
	body        Body
	nextReg     external.Register
	nextBlock   external.BlockID
	activeBlock external.BlockID
}

// NewEmitter starts a fresh emitter with one implicit entry block.
func NewEmitter() *Emitter {
	return &Emitter{body: Body{Vars: make(map[string]external.Register)}}
}

func (e *Emitter) emit(op string, dst external.Register, operands []external.Register, lit interface{}) {
	e.body.Instrs = append(e.body.Instrs, Instr{Op: op, Dst: dst, Operands: operands, Literal: lit, Block: e.activeBlock})
}

func (e *Emitter) GenerateTmpRegister() external.Register {
	e.nextReg++
	return e.nextReg
}

func (e *Emitter) CreateNewBlock(label string) external.BlockID {
	e.nextBlock++
	e.emit("block:"+label, 0, nil, e.nextBlock)
	return e.nextBlock
}

func (e *Emitter) SetActiveBlock(b external.BlockID) { e.activeBlock = b }

func (e *Emitter) EmitLoadConstNone(dst external.Register) { e.emit("loadConstNone", dst, nil, nil) }
func (e *Emitter) EmitLoadConstBool(dst external.Register, v bool) {
	e.emit("loadConstBool", dst, nil, v)
}
func (e *Emitter) EmitLoadConstInt(dst external.Register, v int64) {
	e.emit("loadConstInt", dst, nil, v)
}
func (e *Emitter) EmitLoadConstString(dst external.Register, v string) {
	e.emit("loadConstString", dst, nil, v)
}
func (e *Emitter) EmitLoadConstTypedString(dst external.Register, typeName, literal string) {
	e.emit("loadConstTypedString", dst, nil, [2]string{typeName, literal})
}

func (e *Emitter) EmitLoadProperty(dst, base external.Register, name string) {
	e.emit("loadProperty", dst, []external.Register{base}, name)
}
func (e *Emitter) EmitLoadField(dst, base external.Register, name string) {
	e.emit("loadField", dst, []external.Register{base}, name)
}
func (e *Emitter) EmitLoadTupleIndex(dst, base external.Register, index int) {
	e.emit("loadTupleIndex", dst, []external.Register{base}, index)
}

func (e *Emitter) EmitAccess(dst external.Register, form external.AccessForm, namespace, name string) {
	e.emit("access", dst, nil, [3]string{fmt.Sprint(form), namespace, name})
}

func (e *Emitter) EmitConstructorTuple(dst external.Register, elems []external.Register) {
	e.emit("constructTuple", dst, elems, nil)
}
func (e *Emitter) EmitConstructorRecord(dst external.Register, fields map[string]external.Register) {
	e.emit("constructRecord", dst, regsOfMap(fields), fields)
}
func (e *Emitter) EmitConstructorLambda(dst external.Register, lambdaKey string, captures map[string]external.Register) {
	e.emit("constructLambda", dst, regsOfMap(captures), lambdaKey)
}
func (e *Emitter) EmitConstructorPrimary(dst external.Register, typeName string, fields map[string]external.Register) {
	e.emit("constructPrimary", dst, regsOfMap(fields), typeName)
}
func (e *Emitter) EmitConstructorPrimaryCollection(dst external.Register, typeName string, kind external.CollectionConstructKind, elems []external.Register) {
	e.emit("constructPrimaryCollection", dst, elems, [2]interface{}{typeName, kind})
}

func (e *Emitter) EmitCall(dst external.Register, form external.CallForm, target string, args []external.Register) {
	e.emit("call", dst, args, [2]interface{}{form, target})
}

func (e *Emitter) EmitProjectIndices(dst, base external.Register, indices []int) {
	e.emit("projectIndices", dst, []external.Register{base}, indices)
}
func (e *Emitter) EmitProjectNames(dst, base external.Register, names []string) {
	e.emit("projectNames", dst, []external.Register{base}, names)
}
func (e *Emitter) EmitProjectType(dst, base external.Register, typeName string) {
	e.emit("projectType", dst, []external.Register{base}, typeName)
}

func (e *Emitter) EmitModifyWithIndices(dst, base external.Register, updates map[int]external.Register) {
	e.emit("modifyWithIndices", dst, append([]external.Register{base}, regsOfIntMap(updates)...), updates)
}
func (e *Emitter) EmitModifyWithNames(dst, base external.Register, updates map[string]external.Register) {
	e.emit("modifyWithNames", dst, append([]external.Register{base}, regsOfMap(updates)...), updates)
}

func (e *Emitter) EmitStructuredExtendAppendTuple(dst, base, other external.Register) {
	e.emit("extendAppendTuple", dst, []external.Register{base, other}, nil)
}
func (e *Emitter) EmitStructuredExtendMergeRecord(dst, base, other external.Register) {
	e.emit("extendMergeRecord", dst, []external.Register{base, other}, nil)
}
func (e *Emitter) EmitStructuredExtendMergeObject(dst, base, other external.Register) {
	e.emit("extendMergeObject", dst, []external.Register{base, other}, nil)
}

func (e *Emitter) EmitPrefixOp(dst external.Register, op string, operand external.Register) {
	e.emit("prefix:"+op, dst, []external.Register{operand}, nil)
}
func (e *Emitter) EmitBinOp(dst external.Register, op string, left, right external.Register) {
	e.emit("bin:"+op, dst, []external.Register{left, right}, nil)
}
func (e *Emitter) EmitBinEq(dst external.Register, op string, left, right external.Register) {
	e.emit("eq:"+op, dst, []external.Register{left, right}, nil)
}
func (e *Emitter) EmitBinCmp(dst external.Register, op string, left, right external.Register) {
	e.emit("cmp:"+op, dst, []external.Register{left, right}, nil)
}

func (e *Emitter) EmitTruthyConversion(dst, src external.Register) {
	e.emit("truthy", dst, []external.Register{src}, nil)
}
func (e *Emitter) EmitBoolJump(cond external.Register, onTrue, onFalse external.BlockID) {
	e.emit("boolJump", cond, nil, [2]external.BlockID{onTrue, onFalse})
}
func (e *Emitter) EmitNoneJump(cond external.Register, onNone, onSome external.BlockID) {
	e.emit("noneJump", cond, nil, [2]external.BlockID{onNone, onSome})
}
func (e *Emitter) EmitDirectJump(target external.BlockID) {
	e.emit("jump", 0, nil, target)
}

func (e *Emitter) EmitRegAssign(dst, src external.Register) { e.emit("regAssign", dst, []external.Register{src}, nil) }
func (e *Emitter) EmitReturnAssign(src external.Register)   { e.emit("returnAssign", 0, []external.Register{src}, nil) }
func (e *Emitter) EmitAssert(test external.Register)        { e.emit("assert", 0, []external.Register{test}, nil) }
func (e *Emitter) EmitCheck(test external.Register)         { e.emit("check", 0, []external.Register{test}, nil) }

func (e *Emitter) RegisterVar(name string, reg external.Register, t *rtype.ResolvedType) {
	e.body.Vars[name] = reg
}
func (e *Emitter) LocalLifetimeStart(name string, reg external.Register) {
	e.emit("lifetimeStart:"+name, reg, nil, nil)
}
func (e *Emitter) LocalLifetimeEnd(name string) { e.emit("lifetimeEnd:"+name, 0, nil, nil) }

func (e *Emitter) GetBody() external.Body { return &e.body }

func regsOfMap(m map[string]external.Register) []external.Register {
	out := make([]external.Register, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	return out
}

func regsOfIntMap(m map[int]external.Register) []external.Register {
	out := make([]external.Register, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	return out
}
