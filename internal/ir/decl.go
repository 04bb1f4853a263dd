// Package ir provides the toy Assembly / BodyEmitter / IRAssembly backing
// internal/check consumes through the external package's interfaces
// (spec.md §6). A real compiler wires its own name resolver and code
// generator in place of this package; ir exists only so cmd/typecheck and
// internal/check's tests have something concrete to run against.
//
// Grounded on the teacher's internal/core (Core AST node registry) and
// internal/link (linked.go's post-link symbol table) for how a resolved
// declaration set is represented once parsing/name-resolution is done.
package ir

import "github.com/sunholo/checkercore/internal/rtype"

// EntityDecl is a toy entity (nominal struct-like type) declaration.
type EntityDecl struct {
	Name        string
	Supertypes  []rtype.ConceptRef
	Fields      map[string]FieldSpec
	Methods     map[string]MethodSpec
	Statics     map[string]MethodSpec
	Consts      map[string]ConstSpec
	Templates   []string // declared template parameter names, unbounded in this toy
}

func (d *EntityDecl) DeclName() string { return d.Name }

// ConceptDecl is a toy concept (structural interface) declaration: a set
// of required field/method signatures other atoms may structurally or
// nominally satisfy.
type ConceptDecl struct {
	Name    string
	Fields  map[string]FieldSpec
	Methods map[string]MethodSpec
}

func (d *ConceptDecl) DeclName() string { return d.Name }

// FieldSpec is one declared field's type and optional default-value key
// (resolved separately, since Expr lives in package external).
type FieldSpec struct {
	Type    *rtype.ResolvedType
	HasInit bool
}

// MethodSpec is one declared method/static function's signature.
type MethodSpec struct {
	Params []rtype.Param
	Rest   *rtype.ResolvedType
	Result *rtype.ResolvedType
}

// ConstSpec is one declared const's type.
type ConstSpec struct {
	Type *rtype.ResolvedType
}

func (m MethodSpec) asFunctionAtom() rtype.FunctionAtom {
	return rtype.FunctionAtom{Params: m.Params, Rest: m.Rest, Result: m.Result}
}
