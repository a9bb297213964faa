package domain

import "unique"

// InternedString is a canonicalized string backed by a unique.Handle.
// Node names and file paths repeat heavily across a build graph, so
// interning keeps one copy per distinct value and makes map keys cheap
// to compare.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString interns s and returns its handle wrapper.
func NewInternedString(s string) InternedString {
	return InternedString{
		h: unique.Make(s),
	}
}

// NewInternedStrings interns each element of s, returning the handle
// wrappers in the same order.
func NewInternedStrings(s []string) []InternedString {
	res := make([]InternedString, len(s))
	for i, s := range s {
		res[i] = NewInternedString(s)
	}
	return res
}

// String returns the interned value. The zero InternedString reads as
// the empty string.
func (is InternedString) String() string {
	var zero unique.Handle[string]
	if is.h == zero {
		return ""
	}
	return is.h.Value()
}

// Value exposes the underlying handle for identity comparisons.
func (is InternedString) Value() unique.Handle[string] {
	return is.h
}

// MarshalText implements encoding.TextMarshaler.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.h.Value()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, interning the
// decoded text.
func (is *InternedString) UnmarshalText(text []byte) error {
	is.h = unique.Make(string(text))
	return nil
}
