package argresolve

import (
	"fmt"

	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
)

// CollectionItem is one argument to a collection/map entity construction
// (spec.md §4.2 "Collection constructor"): either a plain element value or
// a spread of another container.
type CollectionItem struct {
	Reg      external.Register
	Type     *rtype.ResolvedType
	IsSpread bool
}

func allSingletonItems(regs []external.Register) []CollectionItem {
	items := make([]CollectionItem, len(regs))
	for i, r := range regs {
		items[i] = CollectionItem{Reg: r}
	}
	return items
}

// BuildCollection implements spec.md §4.2's collection constructor: for
// collection entities (element type T) or map entities (element type
// (K,V)), all arguments must be unnamed; non-spread arguments require
// element-type conformance; spread arguments require the source to itself
// be a container entity whose element type is a subtype of T. Emits one of
// the four opcodes (empty/all-singletons/all-copies/mixed) depending on the
// item mix.
func BuildCollection(emit external.BodyEmitter, sub rtype.Subtyper,
	norm interface {
		rtype.TupleNormalizer
		rtype.RecordNormalizer
	}, typeName string, elemType *rtype.ResolvedType, items []CollectionItem) (external.Register, error) {
	return buildCollection(emit, sub, norm, typeName, elemType, items)
}

func buildCollection(emit external.BodyEmitter, sub rtype.Subtyper,
	_ interface {
		rtype.TupleNormalizer
		rtype.RecordNormalizer
	}, typeName string, elemType *rtype.ResolvedType, items []CollectionItem) (external.Register, error) {
	dst := emit.GenerateTmpRegister()

	if len(items) == 0 {
		emit.EmitConstructorPrimaryCollection(dst, typeName, external.CollectionEmpty, nil)
		return dst, nil
	}

	hasSpread, hasPlain := false, false
	regs := make([]external.Register, len(items))
	for i, it := range items {
		regs[i] = it.Reg
		if it.IsSpread {
			hasSpread = true
			if sub != nil && elemType != nil && it.Type != nil && !sub.SubtypeOf(it.Type, elemType) {
				return dst, fmt.Errorf("TypeMismatch: spread element type %s is not a subtype of %s", it.Type, elemType)
			}
		} else {
			hasPlain = true
			if sub != nil && elemType != nil && it.Type != nil && !sub.SubtypeOf(it.Type, elemType) {
				return dst, fmt.Errorf("TypeMismatch: element type %s is not a subtype of %s", it.Type, elemType)
			}
		}
	}

	switch {
	case hasSpread && hasPlain:
		emit.EmitConstructorPrimaryCollection(dst, typeName, external.CollectionMixed, regs)
	case hasSpread:
		emit.EmitConstructorPrimaryCollection(dst, typeName, external.CollectionCopies, regs)
	default:
		emit.EmitConstructorPrimaryCollection(dst, typeName, external.CollectionSingletons, regs)
	}
	return dst, nil
}
