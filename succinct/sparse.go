package succinct

import (
	"fmt"

	"github.com/hillbig/rsdic"
)

// SparseBits is the compressed bit vector variant, used where the index
// stores low-density vectors: node-start marks over the sequence text, path
// membership over the entity space, and edge orientation sides. It wraps a
// rank/select dictionary whose space approaches the zero-order entropy of
// the bits.
//
// The dictionary is append-only, so construction takes the vector length and
// the sorted positions of the set bits. Persistence stores exactly those
// construction parameters; the dictionary is rebuilt on decode.
type SparseBits struct {
	dic *rsdic.RSDic
}

// NewSparseBits builds a compressed vector of length n with set bits at ones,
// which must be strictly ascending.
func NewSparseBits(n uint64, ones []uint64) (*SparseBits, error) {
	dic := rsdic.New()
	next := uint64(0)
	for _, p := range ones {
		if p >= n {
			return nil, fmt.Errorf("%w: one position %d in vector of %d", ErrIndexRange, p, n)
		}
		if next > 0 && p < next {
			return nil, fmt.Errorf("%w: one positions not ascending at %d", ErrBadPayload, p)
		}
		for ; next < p; next++ {
			dic.PushBack(false)
		}
		dic.PushBack(true)
		next = p + 1
	}
	for ; next < n; next++ {
		dic.PushBack(false)
	}
	return &SparseBits{dic: dic}, nil
}

// SparseFromBitVec compresses a sealed plain vector.
func SparseFromBitVec(v *BitVec) (*SparseBits, error) {
	ones := make([]uint64, 0, v.Ones())
	for k := uint64(1); k <= v.Ones(); k++ {
		p, err := v.Select1(k)
		if err != nil {
			return nil, err
		}
		ones = append(ones, p)
	}
	return NewSparseBits(v.Len(), ones)
}

func (s *SparseBits) Len() uint64  { return s.dic.Num() }
func (s *SparseBits) Ones() uint64 { return s.dic.OneNum() }

func (s *SparseBits) Bit(i uint64) bool {
	if i >= s.dic.Num() {
		panic(fmt.Sprintf("succinct: sparse bit %d out of range %d", i, s.dic.Num()))
	}
	return s.dic.Bit(i)
}

// Rank1 returns the number of set bits in [0,i).
func (s *SparseBits) Rank1(i uint64) uint64 {
	if i > s.dic.Num() {
		panic(fmt.Sprintf("succinct: sparse rank position %d out of range %d", i, s.dic.Num()))
	}
	return s.dic.Rank(i, true)
}

// Select1 returns the position of the k-th set bit, k counted from 1.
func (s *SparseBits) Select1(k uint64) (uint64, error) {
	if k == 0 || k > s.dic.OneNum() {
		return 0, fmt.Errorf("%w: select1(%d) of %d ones", ErrRankRange, k, s.dic.OneNum())
	}
	return s.dic.Select(k-1, true), nil
}

// MarshalBinary encodes n_le8, ones_le8, then the ascending set positions.
func (s *SparseBits) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 16+s.Ones()*8)
	out = appendU64LE(out, s.Len())
	out = appendU64LE(out, s.Ones())
	for k := uint64(0); k < s.Ones(); k++ {
		out = appendU64LE(out, s.dic.Select(k, true))
	}
	return out, nil
}

// DecodeSparseBits decodes a MarshalBinary payload, rebuilding the
// dictionary from its construction parameters.
func DecodeSparseBits(payload []byte) (*SparseBits, error) {
	if len(payload) < 16 {
		return nil, ErrBadPayload
	}
	n := readU64LE(payload)
	ones := readU64LE(payload[8:])
	if uint64(len(payload)) != 16+ones*8 {
		return nil, fmt.Errorf("%w: %d ones in %d bytes", ErrBadPayload, ones, len(payload))
	}
	positions := make([]uint64, ones)
	for i := range positions {
		positions[i] = readU64LE(payload[16+i*8:])
	}
	return NewSparseBits(n, positions)
}
