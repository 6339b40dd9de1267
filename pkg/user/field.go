package user

// Field is a tagged update value: either Set(v), which upserts the
// field, or Remove(), which deletes it from the record entirely. Using a
// tagged value instead of a nil sentinel keeps nil usable as a stored
// value.
type Field struct {
	value  any
	remove bool
}

// Set returns a Field that upserts the given value.
func Set(value any) Field {
	return Field{value: value}
}

// Remove returns a Field that deletes the key from the record.
func Remove() Field {
	return Field{remove: true}
}

// IsRemove reports whether the field marks a deletion.
func (f Field) IsRemove() bool { return f.remove }

// Value returns the value to upsert; meaningless when IsRemove is true.
func (f Field) Value() any { return f.value }
