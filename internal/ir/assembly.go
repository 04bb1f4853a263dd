package ir

import (
	"fmt"
	"sort"

	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
)

// Namespace holds a namespace's own functions, globals, and consts.
type Namespace struct {
	Functions map[string]MethodSpec
	FuncTpls  map[string][]external.TemplateParam
	Globals   map[string]*rtype.ResolvedType
	Consts    map[string]*rtype.ResolvedType
}

// Assembly is the toy name-resolution database: a flat registry of
// entities, concepts, and namespaces built by NewAssembly/LoadFixtureFile.
// It satisfies external.Assembly the way a real front-end's resolved
// module graph would, minus persistence and incremental re-resolution.
type Assembly struct {
	entities   map[string]*EntityDecl
	concepts   map[string]*ConceptDecl
	namespaces map[string]*Namespace
}

// NewAssembly builds an empty toy Assembly; callers populate it with
// DefineEntity/DefineConcept/DefineNamespace before handing it to
// check.New, or use LoadFixtureFile to build one from a YAML document.
func NewAssembly() *Assembly {
	return &Assembly{
		entities:   make(map[string]*EntityDecl),
		concepts:   make(map[string]*ConceptDecl),
		namespaces: make(map[string]*Namespace),
	}
}

func (a *Assembly) DefineEntity(d *EntityDecl)   { a.entities[d.Name] = d }
func (a *Assembly) DefineConcept(d *ConceptDecl) { a.concepts[d.Name] = d }

func (a *Assembly) Namespace(name string) *Namespace {
	ns, ok := a.namespaces[name]
	if !ok {
		ns = &Namespace{
			Functions: make(map[string]MethodSpec),
			FuncTpls:  make(map[string][]external.TemplateParam),
			Globals:   make(map[string]*rtype.ResolvedType),
			Consts:    make(map[string]*rtype.ResolvedType),
		}
		a.namespaces[name] = ns
	}
	return ns
}

// ---- built-in types ----

func (a *Assembly) GetSpecialNoneType() *rtype.ResolvedType { return rtype.None() }
func (a *Assembly) AnyType() *rtype.ResolvedType            { return rtype.Any() }
func (a *Assembly) BoolType() *rtype.ResolvedType            { return special("Bool") }
func (a *Assembly) IntType() *rtype.ResolvedType             { return special("Int") }
func (a *Assembly) StringType() *rtype.ResolvedType          { return special("String") }
func (a *Assembly) GUIDType() *rtype.ResolvedType            { return special("GUID") }

func special(kind string) *rtype.ResolvedType { return rtype.Single(rtype.SpecialAtom{Kind: kind}) }

func (a *Assembly) SomeType(inner *rtype.ResolvedType) *rtype.ResolvedType { return inner }

// namedConcept lazily registers and returns one of the built-in marker
// concepts (Parsable, Enum, CustomKey, Tuple/Record/Object/Function shape
// markers): a concrete entity opts into one of these by listing it among
// its own Supertypes, which entitySatisfiesConcept then recognizes.
func (a *Assembly) namedConcept(name string) *rtype.ResolvedType {
	if _, ok := a.concepts[name]; !ok {
		a.concepts[name] = &ConceptDecl{Name: name}
	}
	return rtype.Single(rtype.ConceptAtom{Concepts: []rtype.ConceptRef{{D: a.concepts[name]}}})
}

// ParsableConcept is the built-in concept every T'...' constructor-form
// type argument must satisfy (declares a static tryParse).
func (a *Assembly) ParsableConcept() *rtype.ResolvedType { return a.namedConcept("Parsable") }

// EnumType is the marker concept an enum entity declares among its
// Supertypes; checkEquality uses it to recognize same-enum equality
// (spec.md §4.3 rule (c)).
func (a *Assembly) EnumType() *rtype.ResolvedType { return a.namedConcept("Enum") }

// CustomKeyType is the marker concept a custom-key entity declares among
// its Supertypes, the counterpart of EnumType for rule (c)'s other case.
func (a *Assembly) CustomKeyType() *rtype.ResolvedType { return a.namedConcept("CustomKey") }

// TupleConceptType, RecordConceptType, ObjectConceptType, and
// FunctionConceptType are the structural-shape marker concepts spec.md §6
// lists alongside the scalar Specials, for `T is Tuple`-style shape tests
// against a template-bound T.
func (a *Assembly) TupleConceptType() *rtype.ResolvedType    { return a.namedConcept("Tuple") }
func (a *Assembly) RecordConceptType() *rtype.ResolvedType   { return a.namedConcept("Record") }
func (a *Assembly) ObjectConceptType() *rtype.ResolvedType   { return a.namedConcept("Object") }
func (a *Assembly) FunctionConceptType() *rtype.ResolvedType { return a.namedConcept("Function") }

// TypedStringType builds String<T> as a single-field record view, the toy
// stand-in for the teacher's parametrized nominal String<T> entity.
func (a *Assembly) TypedStringType(inner *rtype.ResolvedType) *rtype.ResolvedType {
	rec, _ := rtype.NewRecordAtom(map[string]rtype.RecordEntry{
		"value": {Name: "value", Type: inner},
	}, false)
	return rtype.Single(rec)
}

// ---- name resolution ----

func (a *Assembly) ResolveTypeName(name string) (*rtype.ResolvedType, bool) {
	if d, ok := a.entities[name]; ok {
		return rtype.Single(rtype.EntityAtom{D: d, Binds: map[string]*rtype.ResolvedType{}}), true
	}
	if d, ok := a.concepts[name]; ok {
		return rtype.Single(rtype.ConceptAtom{Concepts: []rtype.ConceptRef{{D: d}}}), true
	}
	return nil, false
}

func (a *Assembly) ResolveConst(namespace, name string) (*rtype.ResolvedType, bool) {
	ns, ok := a.namespaces[namespace]
	if !ok {
		return nil, false
	}
	if t, ok := ns.Consts[name]; ok {
		return t, true
	}
	if t, ok := ns.Globals[name]; ok {
		return t, true
	}
	return nil, false
}

func (a *Assembly) ResolveFunction(namespace, name string) (*rtype.ResolvedType, []external.TemplateParam, bool) {
	ns, ok := a.namespaces[namespace]
	if !ok {
		return nil, nil, false
	}
	fn, ok := ns.Functions[name]
	if !ok {
		return nil, nil, false
	}
	return rtype.Single(fn.asFunctionAtom()), ns.FuncTpls[name], true
}

func (a *Assembly) HasNamespace(ns string) bool {
	_, ok := a.namespaces[ns]
	return ok
}

// CollectionElementType recognizes the two built-in collection shapes this
// toy supports: an entity named "List" (single template bind "T") and
// "Map" (binds "K","V").
func (a *Assembly) CollectionElementType(t *rtype.ResolvedType) (*rtype.ResolvedType, bool, bool) {
	ent, ok := uniqueEntityAtom(t)
	if !ok {
		return nil, false, false
	}
	switch ent.D.DeclName() {
	case "List":
		return ent.Binds["T"], false, true
	case "Map":
		return rtype.Single(tupleOf(ent.Binds["K"], ent.Binds["V"])), true, true
	default:
		return nil, false, false
	}
}

func tupleOf(types ...*rtype.ResolvedType) rtype.TupleAtom {
	entries := make([]rtype.TupleEntry, len(types))
	for i, t := range types {
		entries[i] = rtype.TupleEntry{Type: t}
	}
	return rtype.TupleAtom{Entries: entries}
}

func uniqueEntityAtom(t *rtype.ResolvedType) (rtype.EntityAtom, bool) {
	if t == nil || len(t.Atoms) != 1 {
		return rtype.EntityAtom{}, false
	}
	e, ok := t.Atoms[0].(rtype.EntityAtom)
	return e, ok
}

// ---- normalization ----

func (a *Assembly) ToTupleRepresentation(atom rtype.Atom) (rtype.TupleAtom, bool) {
	return rtype.TupleAtom{}, false
}

// ToRecordRepresentation gives an EntityAtom its field-based record view,
// the toy counterpart of the teacher's structural-interface projection.
func (a *Assembly) ToRecordRepresentation(atom rtype.Atom) (rtype.RecordAtom, bool) {
	ent, ok := atom.(rtype.EntityAtom)
	if !ok {
		return rtype.RecordAtom{}, false
	}
	d, ok := a.entities[ent.D.DeclName()]
	if !ok {
		return rtype.RecordAtom{}, false
	}
	entries := make(map[string]rtype.RecordEntry, len(d.Fields))
	for name, f := range d.Fields {
		entries[name] = rtype.RecordEntry{Name: name, Type: substBinds(f.Type, ent.Binds)}
	}
	return rtype.RecordAtom{Entries: entries, Open: false}, true
}

func (a *Assembly) EnsureTupleStructuralRepresentation(t *rtype.ResolvedType) bool {
	for _, atom := range t.Atoms {
		if _, ok := atom.(rtype.TupleAtom); ok {
			continue
		}
		if _, ok := a.ToTupleRepresentation(atom); !ok {
			return false
		}
	}
	return true
}

func (a *Assembly) EnsureRecordStructuralRepresentation(t *rtype.ResolvedType) bool {
	for _, atom := range t.Atoms {
		if _, ok := atom.(rtype.RecordAtom); ok {
			continue
		}
		if _, ok := a.ToRecordRepresentation(atom); !ok {
			return false
		}
	}
	return true
}

func (a *Assembly) ResolveField(atom rtype.Atom, name string) (*rtype.ResolvedType, bool, error) {
	ent, ok := atom.(rtype.EntityAtom)
	if !ok {
		return nil, false, nil
	}
	d, ok := a.entities[ent.D.DeclName()]
	if !ok {
		return nil, false, nil
	}
	if f, ok := d.Fields[name]; ok {
		return substBinds(f.Type, ent.Binds), true, nil
	}
	return nil, false, nil
}

// substBinds returns t unchanged: the toy never builds a dedicated
// term-var atom, so field and method types are used exactly as declared and
// no template-bind substitution is performed.
func substBinds(t *rtype.ResolvedType, binds map[string]*rtype.ResolvedType) *rtype.ResolvedType {
	if t == nil {
		return t
	}
	return t
}

// NormalizeType resolves a signature fragment described generically
// (the toy only ever passes *rtype.ResolvedType through unchanged; real
// Assemblies would re-instantiate a parsed nominal signature against
// binds here).
func (a *Assembly) NormalizeType(signature interface{}, binds map[string]*rtype.ResolvedType) (*rtype.ResolvedType, error) {
	t, ok := signature.(*rtype.ResolvedType)
	if !ok {
		return nil, fmt.Errorf("ir: NormalizeType: unsupported signature value %T", signature)
	}
	return substBinds(t, binds), nil
}

func (a *Assembly) TypeUnion(types []*rtype.ResolvedType) *rtype.ResolvedType {
	return rtype.Union(types...)
}

// ---- member resolution ----

func methodSpecFor(kind external.MemberKind, d *EntityDecl, name string) (MethodSpec, rtype.Decl, bool) {
	switch kind {
	case external.MemberMethod:
		m, ok := d.Methods[name]
		return m, d, ok
	case external.MemberStatic:
		m, ok := d.Statics[name]
		return m, d, ok
	}
	return MethodSpec{}, nil, false
}

func (a *Assembly) TryGetOOMemberDeclUnique(t *rtype.ResolvedType, kind external.MemberKind, name string) (external.Member, bool) {
	opts := a.TryGetOOMemberDeclOptions(t, kind, name)
	if len(opts) != 1 {
		return external.Member{}, false
	}
	return opts[0], true
}

func (a *Assembly) TryGetOOMemberDeclOptions(t *rtype.ResolvedType, kind external.MemberKind, name string) []external.Member {
	var out []external.Member
	for _, atom := range t.Atoms {
		ent, ok := atom.(rtype.EntityAtom)
		if !ok {
			continue
		}
		d, ok := a.entities[ent.D.DeclName()]
		if !ok {
			continue
		}
		switch kind {
		case external.MemberField:
			if f, ok := d.Fields[name]; ok {
				out = append(out, external.Member{Decl: d, Type: substBinds(f.Type, ent.Binds), Root: d})
			}
		case external.MemberConst:
			if c, ok := d.Consts[name]; ok {
				out = append(out, external.Member{Decl: d, Type: substBinds(c.Type, ent.Binds), Root: d})
			}
		case external.MemberMethod, external.MemberStatic:
			if m, root, ok := methodSpecFor(kind, d, name); ok {
				fn := m.asFunctionAtom()
				out = append(out, external.Member{Decl: d, Type: rtype.Single(fn), Root: root})
			}
		}
	}
	return out
}

func (a *Assembly) GetAllOOFields(decl rtype.Decl, binds map[string]*rtype.ResolvedType) map[string]external.FieldInfo {
	d, ok := a.entities[decl.DeclName()]
	if !ok {
		return nil
	}
	out := make(map[string]external.FieldInfo, len(d.Fields))
	for name, f := range d.Fields {
		out[name] = external.FieldInfo{Decl: decl, FieldName: name, Type: substBinds(f.Type, binds), Binds: binds}
	}
	return out
}

// ResolveBindsForCall unifies each template name against the caller's
// explicit template argument (when given) or falls back to the receiver's
// or enclosing declaration's own bind of the same name; a name found in none
// of these is bound to Any, so ok is always true (this toy doesn't check bounds).
func (a *Assembly) ResolveBindsForCall(termDecls []string, termArgs []*rtype.ResolvedType,
	receiverBinds, callerBinds map[string]*rtype.ResolvedType) (map[string]*rtype.ResolvedType, bool) {
	out := make(map[string]*rtype.ResolvedType, len(termDecls))
	for i, name := range termDecls {
		if i < len(termArgs) && termArgs[i] != nil {
			out[name] = termArgs[i]
			continue
		}
		if t, ok := receiverBinds[name]; ok {
			out[name] = t
			continue
		}
		if t, ok := callerBinds[name]; ok {
			out[name] = t
			continue
		}
		out[name] = rtype.Any()
	}
	return out, true
}

// ComputeUnifiedFunctionType unifies N override candidates into one
// virtual-dispatch signature: params widen to their union (contravariant
// in spirit, simplified to union for this toy), and the result is likewise
// the union of the candidates' results.
func (a *Assembly) ComputeUnifiedFunctionType(candidates []rtype.FunctionAtom, root rtype.Decl) (*rtype.FunctionAtom, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	base := candidates[0]
	if len(candidates) == 1 {
		return &base, true
	}
	for _, c := range candidates[1:] {
		if len(c.Params) != len(base.Params) {
			return nil, false
		}
	}
	params := make([]rtype.Param, len(base.Params))
	for i := range base.Params {
		types := make([]*rtype.ResolvedType, len(candidates))
		for j, c := range candidates {
			types[j] = c.Params[i].Type
		}
		params[i] = rtype.Param{Name: base.Params[i].Name, Type: rtype.Union(types...), Optional: base.Params[i].Optional}
	}
	results := make([]*rtype.ResolvedType, len(candidates))
	for i, c := range candidates {
		results[i] = c.Result
	}
	fn := rtype.FunctionAtom{Params: params, Rest: base.Rest, Result: rtype.Union(results...)}
	return &fn, true
}

// ---- narrowing ----

func (a *Assembly) RestrictT(t, target *rtype.ResolvedType) *rtype.ResolvedType {
	var atoms []rtype.Atom
	for _, atom := range t.Atoms {
		single := rtype.Single(atom)
		if a.SubtypeOf(single, target) {
			atoms = append(atoms, atom)
		}
	}
	if len(atoms) == 0 {
		return rtype.None()
	}
	return rtype.Intern(&rtype.ResolvedType{Atoms: atoms})
}

func (a *Assembly) RestrictNotT(t, target *rtype.ResolvedType) *rtype.ResolvedType {
	var atoms []rtype.Atom
	for _, atom := range t.Atoms {
		single := rtype.Single(atom)
		if !a.SubtypeOf(single, target) {
			atoms = append(atoms, atom)
		}
	}
	if len(atoms) == 0 {
		return rtype.None()
	}
	return rtype.Intern(&rtype.ResolvedType{Atoms: atoms})
}

// ---- subtyping ----

// SubtypeOf reports whether every atom of a resolves against some atom of
// b, per spec.md §6's nominal+structural subtype oracle. Grounded on the
// teacher's unify/subsumption pass (internal/types/unification.go) in
// shape only: this toy never solves constraints, it just walks both
// unions directly.
func (a *Assembly) SubtypeOf(sub, sup *rtype.ResolvedType) bool {
	if sub == nil || sup == nil {
		return sub == sup
	}
	for _, sa := range sub.Atoms {
		if !a.atomIsSubtypeOfUnion(sa, sup) {
			return false
		}
	}
	return true
}

func (a *Assembly) atomIsSubtypeOfUnion(sa rtype.Atom, sup *rtype.ResolvedType) bool {
	for _, ta := range sup.Atoms {
		if s, ok := ta.(rtype.SpecialAtom); ok && s.Kind == "Any" {
			return true
		}
		if a.atomSubtype(sa, ta) {
			return true
		}
	}
	return false
}

func (a *Assembly) atomSubtype(sa, ta rtype.Atom) bool {
	switch s := sa.(type) {
	case rtype.SpecialAtom:
		t, ok := ta.(rtype.SpecialAtom)
		return ok && (t.Kind == "Any" || t.Kind == s.Kind)
	case rtype.TupleAtom:
		if t, ok := ta.(rtype.TupleAtom); ok {
			return a.tupleSubtype(s, t)
		}
		if t, ok := ta.(rtype.ConceptAtom); ok {
			return conceptNamed(t, "Tuple")
		}
		return false
	case rtype.RecordAtom:
		if t, ok := ta.(rtype.RecordAtom); ok {
			return a.recordSubtype(s, t)
		}
		if t, ok := ta.(rtype.ConceptAtom); ok {
			return conceptNamed(t, "Record")
		}
		return false
	case rtype.EntityAtom:
		return a.entitySubtype(s, ta)
	case rtype.ConceptAtom:
		t, ok := ta.(rtype.ConceptAtom)
		return ok && a.conceptSubtype(s, t)
	case rtype.FunctionAtom:
		if t, ok := ta.(rtype.FunctionAtom); ok {
			return a.functionSubtype(s, t)
		}
		if t, ok := ta.(rtype.ConceptAtom); ok {
			return conceptNamed(t, "Function")
		}
		return false
	default:
		return sa.Key() == ta.Key()
	}
}

func (a *Assembly) tupleSubtype(s, t rtype.TupleAtom) bool {
	if len(s.Entries) < len(t.Entries) {
		return false
	}
	if len(s.Entries) > len(t.Entries) && !s.Open && !t.Open {
		return false
	}
	for i, te := range t.Entries {
		if !a.SubtypeOf(s.Entries[i].Type, te.Type) {
			return false
		}
		if te.Optional && !s.Entries[i].Optional {
			continue
		}
		if !te.Optional && s.Entries[i].Optional {
			return false
		}
	}
	return true
}

func (a *Assembly) recordSubtype(s, t rtype.RecordAtom) bool {
	for name, te := range t.Entries {
		se, ok := s.Entries[name]
		if !ok {
			if te.Optional {
				continue
			}
			return false
		}
		if !a.SubtypeOf(se.Type, te.Type) {
			return false
		}
		if !te.Optional && se.Optional {
			return false
		}
	}
	if !t.Open && s.Open {
		return false
	}
	return true
}

func (a *Assembly) entitySubtype(s rtype.EntityAtom, ta rtype.Atom) bool {
	switch t := ta.(type) {
	case rtype.EntityAtom:
		return s.D.DeclName() == t.D.DeclName() && bindsEqual(s.Binds, t.Binds)
	case rtype.ConceptAtom:
		d, ok := a.entities[s.D.DeclName()]
		if !ok {
			return false
		}
		for _, want := range t.Concepts {
			// every declared entity is an Object; the rest require an
			// explicit Supertypes entry (e.g. Enum, CustomKey).
			if want.D.DeclName() == "Object" {
				continue
			}
			if !a.entitySatisfiesConcept(d, want.D.DeclName(), map[string]bool{}) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// conceptNamed reports whether t's concept list includes (only) the given
// marker name, the check used to recognize a bare structural-shape atom
// (Tuple/Record/Function) against its matching §6 *ConceptType marker.
func conceptNamed(t rtype.ConceptAtom, name string) bool {
	for _, c := range t.Concepts {
		if c.D.DeclName() != name {
			return false
		}
	}
	return len(t.Concepts) > 0
}

func (a *Assembly) entitySatisfiesConcept(d *EntityDecl, conceptName string, seen map[string]bool) bool {
	if seen[d.Name] {
		return false
	}
	seen[d.Name] = true
	for _, sup := range d.Supertypes {
		if sup.D.DeclName() == conceptName {
			return true
		}
	}
	return false
}

func (a *Assembly) conceptSubtype(s, t rtype.ConceptAtom) bool {
	have := make(map[string]bool, len(s.Concepts))
	for _, c := range s.Concepts {
		have[c.D.DeclName()] = true
	}
	for _, want := range t.Concepts {
		if !have[want.D.DeclName()] {
			return false
		}
	}
	return true
}

func (a *Assembly) functionSubtype(s, t rtype.FunctionAtom) bool {
	if len(s.Params) != len(t.Params) {
		return false
	}
	for i := range s.Params {
		// contravariant in parameter position
		if !a.SubtypeOf(t.Params[i].Type, s.Params[i].Type) {
			return false
		}
	}
	return a.SubtypeOf(s.Result, t.Result)
}

func bindsEqual(a, b map[string]*rtype.ResolvedType) bool {
	if len(a) != len(b) {
		return false
	}
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		bv, ok := b[n]
		if !ok || !a[n].Equals(bv) {
			return false
		}
	}
	return true
}
