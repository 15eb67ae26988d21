// Package namecsa locates path names inside the index's concatenated,
// delimited name text. The sole query is Locate, which returns the starting
// offsets of a pattern; the caller converts an offset to a path rank with the
// name-start bit vector it owns.
//
// The engine is the standard library suffix array. The structure is a view
// over its text: only the text is persisted and the array is rebuilt on
// decode, which keeps the serialized form deterministic across builds.
package namecsa

import (
	"errors"
	"index/suffixarray"
	"sort"
)

var ErrEmptyPattern = errors.New("namecsa: empty pattern")

type Index struct {
	text []byte
	sa   *suffixarray.Index
}

// New builds the suffix index over text. The caller retains no obligation to
// keep text alive; the index copies it.
func New(text []byte) *Index {
	own := make([]byte, len(text))
	copy(own, text)
	return &Index{text: own, sa: suffixarray.New(own)}
}

func (x *Index) Len() int { return len(x.text) }

// Text returns the indexed text. Callers must not modify it.
func (x *Index) Text() []byte { return x.text }

// Locate returns the ascending starting offsets of pattern in the text.
func (x *Index) Locate(pattern []byte) ([]int, error) {
	if len(pattern) == 0 {
		return nil, ErrEmptyPattern
	}
	offs := x.sa.Lookup(pattern, -1)
	sort.Ints(offs)
	return offs, nil
}

// MarshalBinary persists the text; the suffix array is rebuilt on decode.
func (x *Index) MarshalBinary() ([]byte, error) {
	out := make([]byte, len(x.text))
	copy(out, x.text)
	return out, nil
}

// Decode rebuilds an Index from a MarshalBinary payload.
func Decode(payload []byte) (*Index, error) {
	return New(payload), nil
}
