package rtype

import "fmt"

// AppendTuple implements spec.md §4.1 Append(tuple ← tuple): if either atom
// is open or the source has optional entries, the result is conservatively
// open; otherwise the entries are concatenated.
func AppendTuple(left, right TupleAtom) TupleAtom {
	open := left.Open || right.Open || hasOptional(left)
	entries := make([]TupleEntry, 0, len(left.Entries)+len(right.Entries))
	entries = append(entries, left.Entries...)
	entries = append(entries, right.Entries...)
	return TupleAtom{Entries: entries, Open: open}
}

func hasOptional(t TupleAtom) bool {
	for _, e := range t.Entries {
		if e.Optional {
			return true
		}
	}
	return false
}

// MergeRecord implements spec.md §4.1 Merge(record ← record): for each
// incoming entry, if required it overrides the existing entry of the same
// name; if optional and the name exists, the result type widens to the
// union of both and stays optional; if the name is absent from the base,
// the incoming entry is carried over as-is. Base entries the incoming
// record never mentions are carried over unchanged.
func MergeRecord(base, incoming RecordAtom) (RecordAtom, error) {
	entries := make(map[string]RecordEntry, len(base.Entries)+len(incoming.Entries))
	for name, e := range base.Entries {
		entries[name] = e
	}
	for name, ie := range incoming.Entries {
		if UniversalMethodNames[name] {
			return RecordAtom{}, &ErrRecordMasksAnyMethod{Name: name}
		}
		if !ie.Optional {
			entries[name] = RecordEntry{Name: name, Type: ie.Type, Optional: false}
			continue
		}
		if existing, found := entries[name]; found {
			entries[name] = RecordEntry{Name: name, Type: Union(existing.Type, ie.Type), Optional: true}
		} else {
			entries[name] = ie
		}
	}
	return RecordAtom{Entries: entries, Open: base.Open}, nil
}

// MergeObjectWithRecord implements spec.md §4.1 Merge(entity/concept ←
// record): merge is type-only (no new structural result); the incoming
// record must be closed and every name must resolve uniquely to a field of
// the nominal atom a. Returns nil on success (the nominal atom's own type
// is unchanged) or an error describing why the merge is infeasible.
func MergeObjectWithRecord(a Atom, incoming RecordAtom, resolver FieldResolver, sub Subtyper) error {
	if incoming.Open {
		return fmt.Errorf("merge source record must be closed")
	}
	for name, e := range incoming.Entries {
		typ, ok, err := resolver.ResolveField(a, name)
		if err != nil {
			return fmt.Errorf("field %q is ambiguous on %s: %w", name, a, err)
		}
		if !ok {
			return fmt.Errorf("field %q does not resolve on %s", name, a)
		}
		if sub != nil && !sub.SubtypeOf(e.Type, typ) {
			return fmt.Errorf("field %q: %s is not a subtype of declared field type %s", name, e.Type, typ)
		}
	}
	return nil
}
