package rtype

import "sort"

// TupleExpandability is the result of TupleExpando: ok is true when no atom
// in the union is open; ReqLen is the minimum, over atoms, of the count of
// required entries; MaxLen is the maximum entry count over atoms.
type TupleExpandability struct {
	OK     bool
	ReqLen int
	MaxLen int
}

// TupleExpando implements spec.md §4.1's feasibility predicate used by the
// argument resolver (C2) to decide whether a tuple-spread argument may
// expand into positional slots.
func TupleExpando(t *ResolvedType, norm TupleNormalizer) TupleExpandability {
	ok := true
	reqLen := -1
	maxLen := 0
	for _, a := range t.Atoms {
		tup, isT := asTuple(a, norm)
		if !isT {
			ok = false
			continue
		}
		if tup.Open {
			ok = false
		}
		req := 0
		for _, e := range tup.Entries {
			if !e.Optional {
				req++
			}
		}
		if reqLen == -1 || req < reqLen {
			reqLen = req
		}
		if len(tup.Entries) > maxLen {
			maxLen = len(tup.Entries)
		}
	}
	if reqLen == -1 {
		reqLen = 0
	}
	return TupleExpandability{OK: ok, ReqLen: reqLen, MaxLen: maxLen}
}

// RecordExpandability is the result of RecordExpando.
type RecordExpandability struct {
	OK            bool
	RequiredNames []string
	AllNames      []string
}

// RecordExpando implements spec.md §4.1's feasibility predicate used by C2
// for record-spread arguments: a name is required iff it is required in
// every atom.
func RecordExpando(t *ResolvedType, norm RecordNormalizer) RecordExpandability {
	ok := true
	requiredCounts := make(map[string]int)
	allSeen := make(map[string]bool)
	atomCount := 0
	for _, a := range t.Atoms {
		rec, isR := asRecord(a, norm)
		if !isR {
			ok = false
			continue
		}
		atomCount++
		if rec.Open {
			ok = false
		}
		for name, e := range rec.Entries {
			allSeen[name] = true
			if !e.Optional {
				requiredCounts[name]++
			}
		}
	}
	var required, all []string
	for name := range allSeen {
		all = append(all, name)
		if requiredCounts[name] == atomCount {
			required = append(required, name)
		}
	}
	sort.Strings(all)
	sort.Strings(required)
	return RecordExpandability{OK: ok, RequiredNames: required, AllNames: all}
}
