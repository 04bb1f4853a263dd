package rtype

import (
	"sort"
	"strings"
	"sync"
)

// ResolvedType is a union of atoms, normalized to contain no duplicates
// (spec.md §3). Value-semantic and interned by Key() per spec.md's
// "Lifecycles" note; interning is implemented by Intern below, grounded on
// the teacher's value-equality-by-String() pattern for Type (types.go).
type ResolvedType struct {
	Atoms []Atom
}

// None is the built-in None singleton type.
func None() *ResolvedType { return Intern(&ResolvedType{Atoms: []Atom{SpecialAtom{Kind: "None"}}}) }

// Any is the built-in Any singleton type, used for open-tuple/record
// trailing-entry results.
func Any() *ResolvedType { return Intern(&ResolvedType{Atoms: []Atom{SpecialAtom{Kind: "Any"}}}) }

// IsNone reports whether t is exactly the None type (a single None atom).
func IsNone(t *ResolvedType) bool {
	if len(t.Atoms) != 1 {
		return false
	}
	s, ok := t.Atoms[0].(SpecialAtom)
	return ok && s.Kind == "None"
}

// HasNone reports whether None participates in t's union.
func HasNone(t *ResolvedType) bool {
	for _, a := range t.Atoms {
		if s, ok := a.(SpecialAtom); ok && s.Kind == "None" {
			return true
		}
	}
	return false
}

// Single builds a ResolvedType out of one atom.
func Single(a Atom) *ResolvedType {
	return Intern(&ResolvedType{Atoms: []Atom{a}})
}

// Union normalizes a set of ResolvedTypes into one ResolvedType with no
// duplicate atoms (by Key()), preserving first-seen order for determinism.
func Union(types ...*ResolvedType) *ResolvedType {
	seen := make(map[string]bool)
	var atoms []Atom
	for _, t := range types {
		if t == nil {
			continue
		}
		for _, a := range t.Atoms {
			k := a.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			atoms = append(atoms, a)
		}
	}
	return Intern(&ResolvedType{Atoms: atoms})
}

// WithoutNone returns t with the None atom (if any) removed from its union.
func WithoutNone(t *ResolvedType) *ResolvedType {
	var atoms []Atom
	for _, a := range t.Atoms {
		if s, ok := a.(SpecialAtom); ok && s.Kind == "None" {
			continue
		}
		atoms = append(atoms, a)
	}
	return Intern(&ResolvedType{Atoms: atoms})
}

// Key returns a deterministic identity string for the whole union,
// independent of the atoms' original order (Load-from-index/name etc.
// build unions incrementally and must still intern to the same type).
func (t *ResolvedType) Key() string {
	if t == nil {
		return "Resolved()"
	}
	keys := make([]string, len(t.Atoms))
	for i, a := range t.Atoms {
		keys[i] = a.Key()
	}
	sort.Strings(keys)
	return "Resolved(" + strings.Join(keys, "|") + ")"
}

func (t *ResolvedType) String() string {
	parts := make([]string, len(t.Atoms))
	for i, a := range t.Atoms {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}

// Equals compares two ResolvedTypes by structural identity (Key()).
func (t *ResolvedType) Equals(o *ResolvedType) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.Key() == o.Key()
}

var (
	internMu    sync.Mutex
	internTable = make(map[string]*ResolvedType)
)

// Intern returns the canonical *ResolvedType for t's Key(), so that two
// structurally identical ResolvedTypes built at different call sites
// compare equal by pointer and share one Key() computation thereafter.
func Intern(t *ResolvedType) *ResolvedType {
	k := t.Key()
	internMu.Lock()
	defer internMu.Unlock()
	if existing, ok := internTable[k]; ok {
		return existing
	}
	internTable[k] = t
	return t
}
