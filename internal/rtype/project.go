package rtype

import "fmt"

// Subtyper is the narrow slice of the external Assembly oracle's
// subtypeOf that C1's projection operators need.
type Subtyper interface {
	SubtypeOf(a, b *ResolvedType) bool
}

// ProjectTuple implements spec.md §4.1 Project(tuple-pattern) over every
// atom of t, unioning the per-atom results. A failure on any atom aborts
// the whole projection (the caller — C3/C4 — surfaces it as a TypeMismatch).
func ProjectTuple(t *ResolvedType, pattern TupleAtom, norm TupleNormalizer, sub Subtyper) (*ResolvedType, error) {
	var results []*ResolvedType
	for _, a := range t.Atoms {
		src, ok := asTuple(a, norm)
		if !ok {
			return nil, fmt.Errorf("%s has no tuple structural representation", a)
		}
		projected, err := projectTupleAtom(src, pattern, sub)
		if err != nil {
			return nil, err
		}
		results = append(results, Single(projected))
	}
	return Union(results...), nil
}

func projectTupleAtom(source, pattern TupleAtom, sub Subtyper) (TupleAtom, error) {
	if !pattern.Open && len(source.Entries) > len(pattern.Entries) {
		return TupleAtom{}, fmt.Errorf("source tuple has %d entries but closed pattern only expects %d",
			len(source.Entries), len(pattern.Entries))
	}
	result := make([]TupleEntry, 0, len(pattern.Entries))
	for i, pe := range pattern.Entries {
		if i < len(source.Entries) {
			se := source.Entries[i]
			if !pe.Optional && se.Optional {
				return TupleAtom{}, fmt.Errorf("tuple position %d is optional in source but required by pattern", i)
			}
			if sub != nil && !pe.Type.Equals(Any()) && !sub.SubtypeOf(se.Type, pe.Type) {
				return TupleAtom{}, fmt.Errorf("tuple position %d: %s is not a subtype of %s", i, se.Type, pe.Type)
			}
			result = append(result, TupleEntry{Type: se.Type, Optional: pe.Optional})
		} else if pe.Optional {
			result = append(result, TupleEntry{Type: None(), Optional: true})
		} else {
			return TupleAtom{}, fmt.Errorf("tuple position %d required by pattern but absent from source", i)
		}
	}
	open := pattern.Open && source.Open
	if pattern.Open {
		for i := len(pattern.Entries); i < len(source.Entries); i++ {
			result = append(result, source.Entries[i])
		}
	}
	return TupleAtom{Entries: result, Open: open}, nil
}

// ProjectRecord implements spec.md §4.1 Project(record-pattern), symmetric
// to ProjectTuple over named entries.
func ProjectRecord(t *ResolvedType, pattern RecordAtom, norm RecordNormalizer, sub Subtyper) (*ResolvedType, error) {
	var results []*ResolvedType
	for _, a := range t.Atoms {
		src, ok := asRecord(a, norm)
		if !ok {
			return nil, fmt.Errorf("%s has no record structural representation", a)
		}
		projected, err := projectRecordAtom(src, pattern, sub)
		if err != nil {
			return nil, err
		}
		results = append(results, Single(projected))
	}
	return Union(results...), nil
}

func projectRecordAtom(source, pattern RecordAtom, sub Subtyper) (RecordAtom, error) {
	if !pattern.Open {
		for name := range source.Entries {
			if _, wanted := pattern.Entries[name]; !wanted {
				return RecordAtom{}, fmt.Errorf("source record has field %q not named by closed pattern", name)
			}
		}
	}
	result := make(map[string]RecordEntry, len(pattern.Entries))
	for name, pe := range pattern.Entries {
		se, found := source.Entries[name]
		if !found {
			if pe.Optional {
				result[name] = RecordEntry{Name: name, Type: None(), Optional: true}
				continue
			}
			return RecordAtom{}, fmt.Errorf("field %q required by pattern but absent from source", name)
		}
		if !pe.Optional && se.Optional {
			return RecordAtom{}, fmt.Errorf("field %q is optional in source but required by pattern", name)
		}
		if sub != nil && !pe.Type.Equals(Any()) && !sub.SubtypeOf(se.Type, pe.Type) {
			return RecordAtom{}, fmt.Errorf("field %q: %s is not a subtype of %s", name, se.Type, pe.Type)
		}
		result[name] = RecordEntry{Name: name, Type: se.Type, Optional: pe.Optional}
	}
	if pattern.Open {
		for name, se := range source.Entries {
			if _, already := result[name]; !already {
				result[name] = se
			}
		}
	}
	open := pattern.Open && source.Open
	return RecordAtom{Entries: result, Open: open}, nil
}

// ProjectConcept implements spec.md §4.1 Project(nominal concept-pattern):
// fieldNames is the union of declared field names of the concept set
// (already sorted lexicographically by the caller for determinism); each
// name must resolve uniquely on every atom of t via resolver. The result is
// a closed record atom per source atom with those fields and their
// resolved types.
func ProjectConcept(t *ResolvedType, fieldNames []string, resolver FieldResolver) (*ResolvedType, error) {
	var results []*ResolvedType
	for _, a := range t.Atoms {
		entries := make(map[string]RecordEntry, len(fieldNames))
		for _, name := range fieldNames {
			typ, ok, err := resolver.ResolveField(a, name)
			if err != nil {
				return nil, fmt.Errorf("field %q is ambiguous on %s: %w", name, a, err)
			}
			if !ok {
				return nil, fmt.Errorf("field %q does not resolve on %s", name, a)
			}
			entries[name] = RecordEntry{Name: name, Type: typ, Optional: false}
		}
		rec, err := NewRecordAtom(entries, false)
		if err != nil {
			return nil, err
		}
		results = append(results, Single(rec))
	}
	return Union(results...), nil
}
