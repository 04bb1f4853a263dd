package ir

import (
	"fmt"
	"sort"

	"github.com/sunholo/checkercore/internal/ast"
	"github.com/sunholo/checkercore/internal/rtype"
)

// IRAssembly is the toy compiled-output registry: key generation is plain
// string concatenation (no hashing/mangling) and every Register* call just
// appends to an in-memory log, enough to assert "was this call site
// registered" in tests without a real linker backing it.
type IRAssembly struct {
	Instantiations  map[string]*rtype.ResolvedType
	References      map[string]*rtype.ResolvedType
	FunctionCalls   []string
	StaticCalls     []string
	MethodCalls     []string
	VirtualCalls    []string
	Lambdas         map[string]rtype.FunctionAtom
	PendingGlobals  map[string]bool
	PendingConsts   map[string]bool
}

func NewIRAssembly() *IRAssembly {
	return &IRAssembly{
		Instantiations: make(map[string]*rtype.ResolvedType),
		References:     make(map[string]*rtype.ResolvedType),
		Lambdas:        make(map[string]rtype.FunctionAtom),
		PendingGlobals: make(map[string]bool),
		PendingConsts:  make(map[string]bool),
	}
}

func (r *IRAssembly) RegisterTypeInstantiation(key string, t *rtype.ResolvedType) {
	r.Instantiations[key] = t
}
func (r *IRAssembly) RegisterResolvedTypeReference(key string, t *rtype.ResolvedType) {
	r.References[key] = t
}
func (r *IRAssembly) RegisterFunctionCall(key string)      { r.FunctionCalls = append(r.FunctionCalls, key) }
func (r *IRAssembly) RegisterStaticCall(key string)        { r.StaticCalls = append(r.StaticCalls, key) }
func (r *IRAssembly) RegisterMethodCall(key string)        { r.MethodCalls = append(r.MethodCalls, key) }
func (r *IRAssembly) RegisterVirtualMethodCall(key string) { r.VirtualCalls = append(r.VirtualCalls, key) }
func (r *IRAssembly) RegisterLambda(key string, fn rtype.FunctionAtom) { r.Lambdas[key] = fn }
func (r *IRAssembly) RegisterPendingGlobalProcessing(key string)      { r.PendingGlobals[key] = true }
func (r *IRAssembly) RegisterPendingConstProcessing(key string)       { r.PendingConsts[key] = true }

func (r *IRAssembly) TypeKey(d rtype.Decl, binds map[string]*rtype.ResolvedType) string {
	return fmt.Sprintf("type:%s%s", d.DeclName(), bindsSuffix(binds))
}
func (r *IRAssembly) FunctionKey(namespace, name string) string { return "fn:" + namespace + "." + name }
func (r *IRAssembly) StaticKey(typeName, name string) string    { return "static:" + typeName + "::" + name }
func (r *IRAssembly) MethodKey(typeName, name string) string    { return "method:" + typeName + "." + name }
func (r *IRAssembly) VirtualMethodKey(rootDecl rtype.Decl, name string) string {
	return "vmethod:" + rootDecl.DeclName() + "." + name
}
func (r *IRAssembly) FieldKey(typeName, name string) string { return "field:" + typeName + "." + name }
func (r *IRAssembly) GlobalKey(namespace, name string) string { return "global:" + namespace + "." + name }
func (r *IRAssembly) ConstKey(namespace, name string) string  { return "const:" + namespace + "." + name }

func (r *IRAssembly) LambdaKey(enclosingKey string, span ast.Span, binds map[string]*rtype.ResolvedType) string {
	return fmt.Sprintf("lambda:%s@%d:%d%s", enclosingKey, span.Start.Line, span.Start.Column, bindsSuffix(binds))
}

func bindsSuffix(binds map[string]*rtype.ResolvedType) string {
	if len(binds) == 0 {
		return ""
	}
	names := make([]string, 0, len(binds))
	for n := range binds {
		names = append(names, n)
	}
	sort.Strings(names)
	s := ""
	for _, n := range names {
		s += "," + n + "=" + binds[n].Key()
	}
	return "[" + s[1:] + "]"
}
