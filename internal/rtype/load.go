package rtype

// LoadIndex implements spec.md §4.1 "Load-from-index" t[i]: for each atom of
// t, normalized to tuple representation, if i < len yield the entry type
// (union'd with None when the entry is optional); else if open yield Any;
// else yield None. Result is the union over atoms.
func LoadIndex(t *ResolvedType, i int, norm TupleNormalizer) *ResolvedType {
	var results []*ResolvedType
	for _, a := range t.Atoms {
		tup, ok := asTuple(a, norm)
		if !ok {
			results = append(results, None())
			continue
		}
		if i < len(tup.Entries) {
			e := tup.Entries[i]
			if e.Optional {
				results = append(results, Union(e.Type, None()))
			} else {
				results = append(results, e.Type)
			}
		} else if tup.Open {
			results = append(results, Any())
		} else {
			results = append(results, None())
		}
	}
	return Union(results...)
}

// LoadName implements spec.md §4.1 "Load-from-name" r.f, symmetric to
// LoadIndex over records.
func LoadName(t *ResolvedType, name string, norm RecordNormalizer) *ResolvedType {
	var results []*ResolvedType
	for _, a := range t.Atoms {
		rec, ok := asRecord(a, norm)
		if !ok {
			results = append(results, None())
			continue
		}
		if e, found := rec.Entries[name]; found {
			if e.Optional {
				results = append(results, Union(e.Type, None()))
			} else {
				results = append(results, e.Type)
			}
		} else if rec.Open {
			results = append(results, Any())
		} else {
			results = append(results, None())
		}
	}
	return Union(results...)
}
