package rtype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testDecl string

func (d testDecl) DeclName() string { return string(d) }

// nameSubtyper treats types as subtypes only when their Key()s match, which
// is enough to exercise the structural operators without a real Assembly.
type nameSubtyper struct{}

func (nameSubtyper) SubtypeOf(a, b *ResolvedType) bool {
	if b.Equals(Any()) {
		return true
	}
	return a.Equals(b)
}

func mkTuple(entries ...TupleEntry) TupleAtom {
	return TupleAtom{Entries: entries}
}

func TestLoadIndex(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	tup := Single(mkTuple(TupleEntry{Type: intT}, TupleEntry{Type: intT, Optional: true}))

	require.True(t, LoadIndex(tup, 0, nil).Equals(intT))
	require.True(t, LoadIndex(tup, 1, nil).Equals(Union(intT, None())))
	require.True(t, LoadIndex(tup, 2, nil).Equals(None()))

	open := Single(TupleAtom{Entries: []TupleEntry{{Type: intT}}, Open: true})
	require.True(t, LoadIndex(open, 1, nil).Equals(Any()))
}

func TestLoadName(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	rec, err := NewRecordAtom(map[string]RecordEntry{
		"x": {Name: "x", Type: intT},
		"y": {Name: "y", Type: intT, Optional: true},
	}, false)
	require.NoError(t, err)
	r := Single(rec)

	require.True(t, LoadName(r, "x", nil).Equals(intT))
	require.True(t, LoadName(r, "y", nil).Equals(Union(intT, None())))
	require.True(t, LoadName(r, "z", nil).Equals(None()))
}

func TestRecordAtomRejectsUniversalMethodName(t *testing.T) {
	_, err := NewRecordAtom(map[string]RecordEntry{"isSome": {Name: "isSome", Type: None()}}, false)
	require.Error(t, err)
	var masks *ErrRecordMasksAnyMethod
	require.ErrorAs(t, err, &masks)
}

func TestProjectTupleRequiredAndOpen(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	strT := Single(EntityAtom{D: testDecl("String")})
	source := mkTuple(TupleEntry{Type: intT}, TupleEntry{Type: strT})
	sourceType := Single(source)

	pattern := mkTuple(TupleEntry{Type: intT})
	pattern.Open = true

	projected, err := ProjectTuple(sourceType, pattern, nil, nameSubtyper{})
	require.NoError(t, err)
	require.Len(t, projected.Atoms, 1)
	tup := projected.Atoms[0].(TupleAtom)
	require.Len(t, tup.Entries, 2)
	require.False(t, tup.Open) // open = pattern.open && source.open = true && false
}

func TestProjectTupleClosedPatternRejectsExtraEntries(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	source := mkTuple(TupleEntry{Type: intT}, TupleEntry{Type: intT})
	sourceType := Single(source)
	pattern := mkTuple(TupleEntry{Type: intT})

	_, err := ProjectTuple(sourceType, pattern, nil, nameSubtyper{})
	require.Error(t, err)
}

func TestProjectTupleMissingRequired(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	source := mkTuple(TupleEntry{Type: intT})
	sourceType := Single(source)
	pattern := mkTuple(TupleEntry{Type: intT}, TupleEntry{Type: intT})

	_, err := ProjectTuple(sourceType, pattern, nil, nameSubtyper{})
	require.Error(t, err)
}

func TestProjectRecordClosedRejectsExtraFields(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	source, err := NewRecordAtom(map[string]RecordEntry{
		"x": {Name: "x", Type: intT},
		"y": {Name: "y", Type: intT},
	}, false)
	require.NoError(t, err)
	pattern, err := NewRecordAtom(map[string]RecordEntry{"x": {Name: "x", Type: intT}}, false)
	require.NoError(t, err)

	_, err = ProjectRecord(Single(source), pattern, nil, nameSubtyper{})
	require.Error(t, err)
}

func TestUpdateTupleExtendsAndOverwrites(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	strT := Single(EntityAtom{D: testDecl("String")})
	source := mkTuple(TupleEntry{Type: intT})

	updated := UpdateTuple(source, []TupleUpdate{{Index: 2, Type: strT}})
	require.Len(t, updated.Entries, 3)
	require.True(t, updated.Entries[0].Type.Equals(intT))
	require.True(t, updated.Entries[2].Type.Equals(strT))
	require.False(t, updated.Entries[2].Optional)
}

func TestUpdateRecordAppendsAndMarksRequired(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	source, err := NewRecordAtom(map[string]RecordEntry{
		"x": {Name: "x", Type: intT, Optional: true},
	}, false)
	require.NoError(t, err)

	updated, err := UpdateRecord(source, []RecordUpdate{{Name: "x", Type: intT}, {Name: "y", Type: intT}})
	require.NoError(t, err)
	require.False(t, updated.Entries["x"].Optional)
	require.False(t, updated.Entries["y"].Optional)
}

func TestAppendTupleConservativelyOpensOnOptional(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	left := mkTuple(TupleEntry{Type: intT, Optional: true})
	right := mkTuple(TupleEntry{Type: intT})

	result := AppendTuple(left, right)
	require.True(t, result.Open)
	require.Len(t, result.Entries, 2)
}

func TestMergeRecordWidensOptionalOverlap(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	strT := Single(EntityAtom{D: testDecl("String")})
	base, err := NewRecordAtom(map[string]RecordEntry{
		"x": {Name: "x", Type: intT, Optional: true},
	}, false)
	require.NoError(t, err)
	incoming, err := NewRecordAtom(map[string]RecordEntry{
		"x": {Name: "x", Type: strT, Optional: true},
		"y": {Name: "y", Type: intT},
	}, false)
	require.NoError(t, err)

	merged, err := MergeRecord(base, incoming)
	require.NoError(t, err)
	require.True(t, merged.Entries["x"].Optional)
	require.True(t, merged.Entries["x"].Type.Equals(Union(intT, strT)))
	require.False(t, merged.Entries["y"].Optional)
}

func TestTupleExpando(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	closed := Single(mkTuple(TupleEntry{Type: intT}, TupleEntry{Type: intT, Optional: true}))
	exp := TupleExpando(closed, nil)
	require.True(t, exp.OK)
	require.Equal(t, 1, exp.ReqLen)
	require.Equal(t, 2, exp.MaxLen)

	open := Single(TupleAtom{Entries: []TupleEntry{{Type: intT}}, Open: true})
	require.False(t, TupleExpando(open, nil).OK)
}

func TestRecordExpando(t *testing.T) {
	intT := Single(EntityAtom{D: testDecl("Int")})
	rec, err := NewRecordAtom(map[string]RecordEntry{
		"x": {Name: "x", Type: intT},
		"y": {Name: "y", Type: intT, Optional: true},
	}, false)
	require.NoError(t, err)
	exp := RecordExpando(Single(rec), nil)
	require.True(t, exp.OK)
	require.ElementsMatch(t, []string{"x"}, exp.RequiredNames)
	require.ElementsMatch(t, []string{"x", "y"}, exp.AllNames)
}
