// Package check implements the CORE expression/statement checker of
// spec.md §4 (components C3-C7): the recursive routine that verifies
// well-formedness of expressions and statements, computes flow-sensitive
// result types, and emits straight-line IR into the external body emitter.
// Grounded on the teacher's per-node-kind dispatch in
// internal/types/typechecker_core.go (inferCore → inferLit/inferVar/...),
// its match-arm narrowing in typechecker_patterns.go, and its per-
// declaration-kind driver shape in internal/elaborate/elaborate.go.
package check

import (
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"

	"github.com/sirupsen/logrus"
)

// Checker holds the external collaborators the CORE consults but never
// owns (spec.md §6): the Assembly oracle, the IR body emitter, the IR
// assembly, and the error channel. The outer driver (cmd/typecheck) builds
// a fresh Checker, with its own emitter and IR assembly, for each
// declaration; only the error channel is shared across declarations.
type Checker struct {
	Asm  external.Assembly
	Emit external.BodyEmitter
	IR   external.IRAssembly
	Errs external.ErrorChannel
	Log  *logrus.Entry

	// enclosingKey is the IR key of the declaration currently being
	// checked, used as the prefix for lambda keys (spec.md §4.3 "Lambda
	// construction"). Set by the C7 declaration drivers.
	enclosingKey string

	// declErrors counts the errors reported while checking the current
	// declaration; beginDecl resets it. The twenty-error abort threshold
	// itself is applied by the outer driver against the error channel.
	declErrors int
}

// New builds a Checker. log may be nil, in which case a disabled logger is
// used (logging is diagnostic-only; no component decision depends on it).
func New(asm external.Assembly, emit external.BodyEmitter, ir external.IRAssembly, errs external.ErrorChannel, log *logrus.Entry) *Checker {
	if log == nil {
		l := logrus.New()
		l.SetOutput(nopWriter{})
		log = logrus.NewEntry(l)
	}
	return &Checker{Asm: asm, Emit: emit, IR: ir, Errs: errs, Log: log}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// checkerError is a declaration-local abort signal, caught by the C7
// declaration driver (spec.md §6 "a raised error aborts the current
// declaration via an unwind and is then caught at the declaration
// driver"). It is not a Go panic: every C3/C4/C5 routine returns it as a
// normal error value, which is why every such routine's signature ends in
// `error` rather than relying on recover().
type checkerError struct{ err error }

func (e *checkerError) Error() string { return e.err.Error() }
func (e *checkerError) Unwrap() error { return e.err }

// uniqueEntity reports whether a ResolvedType is exactly one EntityAtom (a
// "uniquely-typed nominal").
func uniqueEntity(t *rtype.ResolvedType) (rtype.EntityAtom, bool) {
	if len(t.Atoms) != 1 {
		return rtype.EntityAtom{}, false
	}
	e, ok := t.Atoms[0].(rtype.EntityAtom)
	return e, ok
}

// uniqueFunctionAtom reports whether a ResolvedType is exactly one
// FunctionAtom, required wherever a type must be "unique function atom"
// (auto-sig lambdas, call-lambda dispatch, spec.md §4.3/§4.4).
func uniqueFunctionAtom(t *rtype.ResolvedType) (rtype.FunctionAtom, bool) {
	if t == nil || len(t.Atoms) != 1 {
		return rtype.FunctionAtom{}, false
	}
	f, ok := t.Atoms[0].(rtype.FunctionAtom)
	return f, ok
}

// accessForm maps a VarInfo's storage kind to the BodyEmitter's access
// opcode family.
func accessForm(k tenv.AccessKind) external.AccessForm {
	switch k {
	case tenv.AccessArg:
		return external.AccessArg
	case tenv.AccessCaptured:
		return external.AccessCaptured
	default:
		return external.AccessLocal
	}
}

// templateNames extracts the declared names from a template-parameter
// list, the shape ResolveBindsForCall's termDecls parameter expects.
func templateNames(templates []external.TemplateParam) []string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	return names
}
