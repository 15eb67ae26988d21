package seqidx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sequia/go-seqgraph/succinct"
)

// pathStore is the succinct form of one named walk.
//
// members marks, over the unified entity space, every node the walk visits
// and, for each pair of consecutive steps, the first stored link from the
// earlier step's node to the later one's, if any. ids is the walk itself in
// node-rank space, indexable by occurrence so loops stay resolvable.
// directions marks reverse traversals. positions[i] is the cumulative base
// offset of step i, and offsets marks each step's first base over the path's
// total sequence length, so positions[i] == offsets.Select1(i+1) and
// offsets.Rank1(pos+1)-1 inverts a base position to its step.
type pathStore struct {
	name       string
	members    *succinct.SparseBits
	ids        *succinct.WaveletTree
	directions *succinct.SparseBits
	positions  *succinct.IntVec
	offsets    *succinct.BitVec
}

// length returns the total base length of the walk.
func (p *pathStore) length() uint64 {
	return p.offsets.Len()
}

// stepCount returns the number of steps in the walk.
func (p *pathStore) stepCount() uint64 {
	return p.ids.Len()
}

// stepAtPosition maps a base position to its 0-based step index.
func (p *pathStore) stepAtPosition(pos uint64) (uint64, error) {
	if pos >= p.length() {
		return 0, fmt.Errorf("%w: position %d of %d", ErrOutOfRange, pos, p.length())
	}
	return p.offsets.Rank1(pos+1) - 1, nil
}

func (p *pathStore) serialize(w io.Writer) error {
	blobs := []struct {
		tag     byte
		payload func() ([]byte, error)
	}{
		{tagPathMembers, p.members.MarshalBinary},
		{tagPathIDs, p.ids.MarshalBinary},
		{tagPathDirections, p.directions.MarshalBinary},
		{tagPathPositions, p.positions.MarshalBinary},
		{tagPathOffsets, p.offsets.MarshalBinary},
	}
	for _, b := range blobs {
		payload, err := b.payload()
		if err != nil {
			return err
		}
		if err := succinct.WriteBlob(w, b.tag, payload); err != nil {
			return err
		}
	}
	// rank/select views over offsets: tags only, rebuilt on load
	if err := succinct.WriteBlob(w, tagPathOffsetsRank, nil); err != nil {
		return err
	}
	return succinct.WriteBlob(w, tagPathOffsetsSelect, nil)
}

func decodePathStore(r io.Reader) (*pathStore, error) {
	p := &pathStore{}

	payload, err := readBlobChecked(r, tagPathMembers)
	if err != nil {
		return nil, err
	}
	if p.members, err = succinct.DecodeSparseBits(payload); err != nil {
		return nil, fmt.Errorf("%w: path members: %v", ErrCorruptIndex, err)
	}

	if payload, err = readBlobChecked(r, tagPathIDs); err != nil {
		return nil, err
	}
	if p.ids, err = succinct.DecodeWaveletTree(payload); err != nil {
		return nil, fmt.Errorf("%w: path ids: %v", ErrCorruptIndex, err)
	}

	if payload, err = readBlobChecked(r, tagPathDirections); err != nil {
		return nil, err
	}
	if p.directions, err = succinct.DecodeSparseBits(payload); err != nil {
		return nil, fmt.Errorf("%w: path directions: %v", ErrCorruptIndex, err)
	}

	if payload, err = readBlobChecked(r, tagPathPositions); err != nil {
		return nil, err
	}
	if p.positions, err = succinct.DecodeIntVec(payload); err != nil {
		return nil, fmt.Errorf("%w: path positions: %v", ErrCorruptIndex, err)
	}

	if payload, err = readBlobChecked(r, tagPathOffsets); err != nil {
		return nil, err
	}
	if p.offsets, err = succinct.DecodeBitVec(payload); err != nil {
		return nil, fmt.Errorf("%w: path offsets: %v", ErrCorruptIndex, err)
	}

	if _, err = readBlobChecked(r, tagPathOffsetsRank); err != nil {
		return nil, err
	}
	if _, err = readBlobChecked(r, tagPathOffsetsSelect); err != nil {
		return nil, err
	}

	if p.ids.Len() != p.directions.Len() || p.ids.Len() != p.positions.Len() {
		return nil, fmt.Errorf("%w: path step structures disagree", ErrCorruptIndex)
	}
	return p, nil
}

// buildPathStore assembles the succinct walk for the resolved steps of one
// path. memberOnes must already hold the ascending entity-rank-1 positions
// the walk touches; labelLen resolves node lengths.
func buildPathStore(
	name string,
	steps []Traversal,
	entityCount uint64,
	memberOnes []uint64,
	rankOf func(int64) uint64,
	labelLen func(int64) uint64,
) (*pathStore, error) {

	var pathLen uint64
	ranks := make([]uint64, len(steps))
	for i, s := range steps {
		ranks[i] = rankOf(s.ID)
		pathLen += labelLen(s.ID)
	}

	offsets := succinct.NewBitVec(pathLen)
	positions, err := succinct.NewIntVec(uint64(len(steps)), 64)
	if err != nil {
		return nil, err
	}
	var dirOnes []uint64
	var off uint64
	for i, s := range steps {
		positions.Set(uint64(i), off)
		offsets.Set(off)
		if s.Reverse {
			dirOnes = append(dirOnes, uint64(i))
		}
		off += labelLen(s.ID)
	}
	offsets.Seal()

	members, err := succinct.NewSparseBits(entityCount, memberOnes)
	if err != nil {
		return nil, err
	}
	directions, err := succinct.NewSparseBits(uint64(len(steps)), dirOnes)
	if err != nil {
		return nil, err
	}

	return &pathStore{
		name:       name,
		members:    members,
		ids:        succinct.NewWaveletTree(ranks),
		directions: directions,
		positions:  positions.BitCompress(),
		offsets:    offsets,
	}, nil
}

// encodeName renders the delimited form used in the concatenated name text.
func encodeName(name string) []byte {
	var b bytes.Buffer
	b.WriteByte(nameStartMarker)
	b.WriteString(name)
	b.WriteByte(nameEndMarker)
	return b.Bytes()
}
