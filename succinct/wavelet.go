package succinct

import (
	"fmt"
)

// WaveletTree is an immutable indexable sequence of unsigned integers
// supporting access, value rank and value select, laid out level-wise with no
// pointers (the wavelet matrix arrangement). The index stores each path's
// walk through node rank space in one of these so that loops can be resolved
// by occurrence.
//
// Level l holds bit (width-1-l) of every element, in the order induced by
// stably partitioning the previous level into zeros then ones. zeros[l]
// records where the one-partition begins.
type WaveletTree struct {
	n      uint64
	width  uint8
	levels []*BitVec
	zeros  []uint64
}

// NewWaveletTree builds the sequence. The element width is the smallest that
// holds the maximum value.
func NewWaveletTree(values []uint64) *WaveletTree {
	var maxv uint64
	for _, v := range values {
		if v > maxv {
			maxv = v
		}
	}
	width := WidthFor(maxv)

	n := uint64(len(values))
	wt := &WaveletTree{
		n:      n,
		width:  width,
		levels: make([]*BitVec, width),
		zeros:  make([]uint64, width),
	}

	cur := make([]uint64, len(values))
	copy(cur, values)
	next := make([]uint64, len(values))
	for l := uint8(0); l < width; l++ {
		bit := width - 1 - l
		bv := NewBitVec(n)
		for i, v := range cur {
			if (v>>bit)&1 == 1 {
				bv.Set(uint64(i))
			}
		}
		bv.Seal()
		wt.levels[l] = bv
		wt.zeros[l] = n - bv.Ones()

		// stable partition: zeros keep order, ones follow
		j := 0
		for _, v := range cur {
			if (v>>bit)&1 == 0 {
				next[j] = v
				j++
			}
		}
		for _, v := range cur {
			if (v>>bit)&1 == 1 {
				next[j] = v
				j++
			}
		}
		cur, next = next, cur
	}
	return wt
}

func (wt *WaveletTree) Len() uint64 { return wt.n }

// Access returns the i-th element.
func (wt *WaveletTree) Access(i uint64) uint64 {
	if i >= wt.n {
		panic(fmt.Sprintf("succinct: wavelet access %d out of range %d", i, wt.n))
	}
	var v uint64
	for l := uint8(0); l < wt.width; l++ {
		bv := wt.levels[l]
		v <<= 1
		if bv.Bit(i) {
			v |= 1
			i = wt.zeros[l] + bv.Rank1(i)
		} else {
			i = i - bv.Rank1(i)
		}
	}
	return v
}

// Rank returns the number of occurrences of v in the prefix [0,j).
func (wt *WaveletTree) Rank(v uint64, j uint64) uint64 {
	if j > wt.n {
		panic(fmt.Sprintf("succinct: wavelet rank position %d out of range %d", j, wt.n))
	}
	if v >= 1<<wt.width || j == 0 {
		return 0
	}
	p, e := uint64(0), j
	for l := uint8(0); l < wt.width; l++ {
		bv := wt.levels[l]
		if (v>>(wt.width-1-l))&1 == 0 {
			p = p - bv.Rank1(p)
			e = e - bv.Rank1(e)
		} else {
			p = wt.zeros[l] + bv.Rank1(p)
			e = wt.zeros[l] + bv.Rank1(e)
		}
	}
	return e - p
}

// Select returns the position of the k-th occurrence of v, k counted from 1.
func (wt *WaveletTree) Select(v uint64, k uint64) (uint64, error) {
	if k == 0 || wt.Rank(v, wt.n) < k {
		return 0, fmt.Errorf("%w: select(%d, %d)", ErrRankRange, v, k)
	}
	// descend to the start of v's bucket on the bottom ordering
	p := uint64(0)
	for l := uint8(0); l < wt.width; l++ {
		bv := wt.levels[l]
		if (v>>(wt.width-1-l))&1 == 0 {
			p = p - bv.Rank1(p)
		} else {
			p = wt.zeros[l] + bv.Rank1(p)
		}
	}
	i := p + k - 1
	// walk back up, undoing each partition
	for l := int(wt.width) - 1; l >= 0; l-- {
		bv := wt.levels[l]
		var err error
		if (v>>(wt.width-1-uint8(l)))&1 == 0 {
			i, err = bv.Select0(i + 1)
		} else {
			i, err = bv.Select1(i - wt.zeros[l] + 1)
		}
		if err != nil {
			return 0, err
		}
	}
	return i, nil
}

// MarshalBinary encodes n_le8, width_u8, then each level as len_le8+payload.
func (wt *WaveletTree) MarshalBinary() ([]byte, error) {
	out := appendU64LE(nil, wt.n)
	out = append(out, wt.width)
	for _, bv := range wt.levels {
		p, err := bv.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = appendU64LE(out, uint64(len(p)))
		out = append(out, p...)
	}
	return out, nil
}

// DecodeWaveletTree decodes a MarshalBinary payload, rebuilding the level
// directories and partition boundaries.
func DecodeWaveletTree(payload []byte) (*WaveletTree, error) {
	if len(payload) < 9 {
		return nil, ErrBadPayload
	}
	wt := &WaveletTree{
		n:     readU64LE(payload),
		width: payload[8],
	}
	if wt.width == 0 || wt.width > 64 {
		return nil, ErrWidthRange
	}
	wt.levels = make([]*BitVec, wt.width)
	wt.zeros = make([]uint64, wt.width)
	off := uint64(9)
	for l := range wt.levels {
		if uint64(len(payload)) < off+8 {
			return nil, ErrBadPayload
		}
		n := readU64LE(payload[off:])
		off += 8
		if uint64(len(payload)) < off+n {
			return nil, ErrBadPayload
		}
		bv, err := DecodeBitVec(payload[off : off+n])
		if err != nil {
			return nil, err
		}
		if bv.Len() != wt.n {
			return nil, ErrLengthMismatch
		}
		wt.levels[l] = bv
		wt.zeros[l] = wt.n - bv.Ones()
		off += n
	}
	if off != uint64(len(payload)) {
		return nil, ErrBadPayload
	}
	return wt, nil
}
