package rtype

// TupleUpdate is one (index, replacement-type) pair for Update(tuple, ...).
type TupleUpdate struct {
	Index int
	Type  *ResolvedType
}

// UpdateTuple implements spec.md §4.1 Update(tuple, {(i, τ)}): extends the
// sequence if any index exceeds the current length (filling intermediate
// slots from the source, substituting None/Any as dictated by open/optional
// per the conservative TODO noted in spec.md §9), then overwrites at each
// index with τ. The result is open when the source is open or when any
// index extends past the source's length (the conservative approximation
// noted below).
func UpdateTuple(source TupleAtom, updates []TupleUpdate) TupleAtom {
	maxIdx := len(source.Entries) - 1
	for _, u := range updates {
		if u.Index > maxIdx {
			maxIdx = u.Index
		}
	}
	entries := make([]TupleEntry, maxIdx+1)
	for i := range entries {
		if i < len(source.Entries) {
			entries[i] = source.Entries[i]
		} else if source.Open {
			// Conservative: filled slot beyond the known prefix is Any,
			// and per spec.md §9 this keeps the result open rather than
			// trying to prove it's narrower. TODO: a precise policy would
			// need flow information this operator doesn't receive.
			entries[i] = TupleEntry{Type: Any(), Optional: true}
		} else {
			entries[i] = TupleEntry{Type: None(), Optional: true}
		}
	}
	for _, u := range updates {
		entries[u.Index] = TupleEntry{Type: u.Type, Optional: false}
	}
	open := source.Open
	for _, u := range updates {
		if u.Index > len(source.Entries)-1 {
			open = true
		}
	}
	return TupleAtom{Entries: entries, Open: open}
}

// RecordUpdate is one (name, replacement-type) pair for Update(record, ...).
type RecordUpdate struct {
	Name string
	Type *ResolvedType
}

// UpdateRecord implements spec.md §4.1 Update(record, {(n, τ)}): for each
// name, replace by value or append; mark the updated entry required.
func UpdateRecord(source RecordAtom, updates []RecordUpdate) (RecordAtom, error) {
	entries := make(map[string]RecordEntry, len(source.Entries)+len(updates))
	for name, e := range source.Entries {
		entries[name] = e
	}
	for _, u := range updates {
		if UniversalMethodNames[u.Name] {
			return RecordAtom{}, &ErrRecordMasksAnyMethod{Name: u.Name}
		}
		entries[u.Name] = RecordEntry{Name: u.Name, Type: u.Type, Optional: false}
	}
	return RecordAtom{Entries: entries, Open: source.Open}, nil
}
