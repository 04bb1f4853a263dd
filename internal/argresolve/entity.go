package argresolve

import (
	"sort"

	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
)

// FieldsToSlots converts an entity's full field set (inherited + declared,
// per Assembly.GetAllOOFields) into the sorted Slot list spec.md §4.2's
// "Entity constructor" resolves against: "symmetric to function-parameter
// binding but over the sorted list of all fields of the target entity".
// A field is treated as optional (bindable to None with no explicit
// default) exactly when its declared type itself admits None — a field
// with neither a default nor a None-admitting type is unconditionally
// required.
func FieldsToSlots(fields map[string]external.FieldInfo) []Slot {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)

	slots := make([]Slot, len(names))
	for i, n := range names {
		f := fields[n]
		slots[i] = Slot{
			Name:     n,
			Type:     f.Type,
			Optional: rtype.HasNone(f.Type),
			Default:  f.Default,
		}
	}
	return slots
}
