// Package records defines the row type shared by every pipeline stage.
package records

// Record is a single row keyed by column name. A nil value is a missing cell.
type Record map[string]any

// Clone returns a shallow copy of r. Cell values are immutable scalars, so a
// shallow copy is enough to make the row independently mutable.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Missing reports whether the cell for key is absent or nil.
func (r Record) Missing(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}
