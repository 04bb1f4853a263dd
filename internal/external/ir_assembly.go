package external

import (
	"github.com/sunholo/checkercore/internal/ast"
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/rtype"
)

// IRAssembly is the compiled-output registry the checker core reports into
// as it checks each declaration (spec.md §6 "IR assembly"): instantiation
// and call-site registration, pending-processing flags for lazily-checked
// globals/consts, and the key generators every cross-reference (calls,
// field access, lambdas) is keyed by. Never implemented by this CORE
// itself — internal/ir provides a toy implementation for tests and
// cmd/typecheck.
type IRAssembly interface {
	RegisterTypeInstantiation(key string, t *rtype.ResolvedType)
	RegisterResolvedTypeReference(key string, t *rtype.ResolvedType)
	RegisterFunctionCall(key string)
	RegisterStaticCall(key string)
	RegisterMethodCall(key string)
	RegisterVirtualMethodCall(key string)
	RegisterLambda(key string, fn rtype.FunctionAtom)
	RegisterPendingGlobalProcessing(key string)
	RegisterPendingConstProcessing(key string)

	TypeKey(d rtype.Decl, binds map[string]*rtype.ResolvedType) string
	FunctionKey(namespace, name string) string
	StaticKey(typeName, name string) string
	MethodKey(typeName, name string) string
	VirtualMethodKey(rootDecl rtype.Decl, name string) string
	FieldKey(typeName, name string) string
	GlobalKey(namespace, name string) string
	ConstKey(namespace, name string) string
	// LambdaKey builds a globally unique key from the enclosing declaration
	// key, the lambda's source position, and a fingerprint of its template
	// binds (spec.md §4.3 "Lambda construction").
	LambdaKey(enclosingKey string, span ast.Span, binds map[string]*rtype.ResolvedType) string
}

// ErrorChannel is the accumulation point for Reports across a whole
// compilation (spec.md §6 "Error channel" / §7). cerrors.Channel satisfies
// this interface; it is declared here, in package external, so that
// internal/check depends only on an interface, not on cerrors' concrete
// accumulator type, mirroring how it consumes Assembly/BodyEmitter/
// IRAssembly.
type ErrorChannel interface {
	Append(r *cerrors.Report)
	Reports() []*cerrors.Report
	Count() int
	Catastrophic() bool
}
