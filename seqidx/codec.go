package seqidx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sequia/go-seqgraph/namecsa"
	"github.com/sequia/go-seqgraph/succinct"
)

// On-disk layout: the magic and format version, then every component as a
// tagged little-endian blob in the fixed order below. Rank/select helpers
// keep their tag slots but carry empty payloads; they are views and are
// rebuilt against their parent vectors on load.

var indexMagic = [4]byte{'S', 'G', 'I', 'X'}

const indexFormatV1 = byte(1)

const (
	tagSeqLength = byte(iota + 1)
	tagNodeCount
	tagEdgeCount
	tagPathCount
	tagMinID
	tagMaxID
	tagIIV
	tagRIV
	tagSIV
	tagSCBV
	tagSCBVRank
	tagSCBVSelect
	tagFIV
	tagFBV
	tagFBVRank
	tagFBVSelect
	tagFFromStartCBV
	tagFToEndCBV
	tagTIV
	tagTBV
	tagTBVRank
	tagTBVSelect
	tagTToEndCBV
	tagTFromStartCBV
	tagPNIV
	tagPNCSA
	tagPNBV
	tagPNBVRank
	tagPNBVSelect
	tagPIIV
	tagPathTableCount
	tagPathMembers
	tagPathIDs
	tagPathDirections
	tagPathPositions
	tagPathOffsets
	tagPathOffsetsRank
	tagPathOffsetsSelect
	tagEPIV
	tagEPBV
	tagEPBVRank
	tagEPBVSelect
)

func writeScalar(w io.Writer, tag byte, v uint64) error {
	var payload [8]byte
	binary.LittleEndian.PutUint64(payload[:], v)
	return succinct.WriteBlob(w, tag, payload[:])
}

// readBlobChecked reads one framed blob, folding a tag mismatch into the
// CorruptIndex kind.
func readBlobChecked(r io.Reader, tag byte) ([]byte, error) {
	payload, err := succinct.ReadBlob(r, tag)
	if err != nil {
		if errors.Is(err, succinct.ErrBadBlobTag) {
			return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		}
		return nil, err
	}
	return payload, nil
}

func readScalar(r io.Reader, tag byte) (uint64, error) {
	payload, err := readBlobChecked(r, tag)
	if err != nil {
		return 0, err
	}
	if len(payload) != 8 {
		return 0, fmt.Errorf("%w: scalar 0x%02x has %d bytes", ErrCorruptIndex, tag, len(payload))
	}
	return binary.LittleEndian.Uint64(payload), nil
}

type marshaler interface {
	MarshalBinary() ([]byte, error)
}

func writeStructure(w io.Writer, tag byte, m marshaler) error {
	payload, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return succinct.WriteBlob(w, tag, payload)
}

// Serialize writes the whole index to w. Two indexes built from the same
// record set serialize to identical bytes.
func (x *Index) Serialize(w io.Writer) error {
	if _, err := w.Write(indexMagic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{indexFormatV1}); err != nil {
		return err
	}

	scalars := []struct {
		tag byte
		v   uint64
	}{
		{tagSeqLength, x.seqLen},
		{tagNodeCount, x.nodeCount},
		{tagEdgeCount, x.edgeCount},
		{tagPathCount, x.pathCount},
		{tagMinID, uint64(x.minID)},
		{tagMaxID, uint64(x.maxID)},
	}
	for _, s := range scalars {
		if err := writeScalar(w, s.tag, s.v); err != nil {
			return err
		}
	}

	structures := []struct {
		tag byte
		m   marshaler
	}{
		{tagIIV, x.iIV},
		{tagRIV, x.rIV},
		{tagSIV, x.sIV},
		{tagSCBV, x.sCBV},
	}
	for _, s := range structures {
		if err := writeStructure(w, s.tag, s.m); err != nil {
			return err
		}
	}
	for _, tag := range []byte{tagSCBVRank, tagSCBVSelect} {
		if err := succinct.WriteBlob(w, tag, nil); err != nil {
			return err
		}
	}

	if err := writeStructure(w, tagFIV, x.fIV); err != nil {
		return err
	}
	if err := writeStructure(w, tagFBV, x.fBV); err != nil {
		return err
	}
	for _, tag := range []byte{tagFBVRank, tagFBVSelect} {
		if err := succinct.WriteBlob(w, tag, nil); err != nil {
			return err
		}
	}
	if err := writeStructure(w, tagFFromStartCBV, x.fFromStartCBV); err != nil {
		return err
	}
	if err := writeStructure(w, tagFToEndCBV, x.fToEndCBV); err != nil {
		return err
	}

	if err := writeStructure(w, tagTIV, x.tIV); err != nil {
		return err
	}
	if err := writeStructure(w, tagTBV, x.tBV); err != nil {
		return err
	}
	for _, tag := range []byte{tagTBVRank, tagTBVSelect} {
		if err := succinct.WriteBlob(w, tag, nil); err != nil {
			return err
		}
	}
	if err := writeStructure(w, tagTToEndCBV, x.tToEndCBV); err != nil {
		return err
	}
	if err := writeStructure(w, tagTFromStartCBV, x.tFromStartCBV); err != nil {
		return err
	}

	if err := succinct.WriteBlob(w, tagPNIV, x.pnIV); err != nil {
		return err
	}
	if err := writeStructure(w, tagPNCSA, x.pnCSA); err != nil {
		return err
	}
	if err := writeStructure(w, tagPNBV, x.pnBV); err != nil {
		return err
	}
	for _, tag := range []byte{tagPNBVRank, tagPNBVSelect} {
		if err := succinct.WriteBlob(w, tag, nil); err != nil {
			return err
		}
	}
	if err := writeStructure(w, tagPIIV, x.piIV); err != nil {
		return err
	}

	if err := writeScalar(w, tagPathTableCount, uint64(len(x.paths))); err != nil {
		return err
	}
	for _, p := range x.paths {
		if err := p.serialize(w); err != nil {
			return err
		}
	}

	if err := writeStructure(w, tagEPIV, x.epIV); err != nil {
		return err
	}
	if err := writeStructure(w, tagEPBV, x.epBV); err != nil {
		return err
	}
	for _, tag := range []byte{tagEPBVRank, tagEPBVSelect} {
		if err := succinct.WriteBlob(w, tag, nil); err != nil {
			return err
		}
	}
	return nil
}

// SerializeBytes renders the index to a byte slice.
func (x *Index) SerializeBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := x.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads an index in the Serialize layout and rebuilds every rank/select
// view. The returned index is immutable and ready to query.
func Load(r io.Reader, opts ...Option) (*Index, error) {
	options := LoadOptions{}
	for _, o := range opts {
		o(&options)
	}

	var head [5]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, err
	}
	if !bytes.Equal(head[:4], indexMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptIndex)
	}
	if head[4] != indexFormatV1 {
		return nil, fmt.Errorf("%w: unknown format version %d", ErrCorruptIndex, head[4])
	}

	x := &Index{log: options.Log}

	var err error
	if x.seqLen, err = readScalar(r, tagSeqLength); err != nil {
		return nil, err
	}
	if x.nodeCount, err = readScalar(r, tagNodeCount); err != nil {
		return nil, err
	}
	if x.edgeCount, err = readScalar(r, tagEdgeCount); err != nil {
		return nil, err
	}
	if x.pathCount, err = readScalar(r, tagPathCount); err != nil {
		return nil, err
	}
	v, err := readScalar(r, tagMinID)
	if err != nil {
		return nil, err
	}
	x.minID = int64(v)
	if v, err = readScalar(r, tagMaxID); err != nil {
		return nil, err
	}
	x.maxID = int64(v)

	readIntVec := func(tag byte) (*succinct.IntVec, error) {
		payload, err := readBlobChecked(r, tag)
		if err != nil {
			return nil, err
		}
		iv, err := succinct.DecodeIntVec(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: component 0x%02x: %v", ErrCorruptIndex, tag, err)
		}
		return iv, nil
	}
	readBitVec := func(tag byte) (*succinct.BitVec, error) {
		payload, err := readBlobChecked(r, tag)
		if err != nil {
			return nil, err
		}
		bv, err := succinct.DecodeBitVec(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: component 0x%02x: %v", ErrCorruptIndex, tag, err)
		}
		return bv, nil
	}
	readSparse := func(tag byte) (*succinct.SparseBits, error) {
		payload, err := readBlobChecked(r, tag)
		if err != nil {
			return nil, err
		}
		sb, err := succinct.DecodeSparseBits(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: component 0x%02x: %v", ErrCorruptIndex, tag, err)
		}
		return sb, nil
	}
	skipView := func(tags ...byte) error {
		for _, tag := range tags {
			if _, err := readBlobChecked(r, tag); err != nil {
				return err
			}
		}
		return nil
	}

	if x.iIV, err = readIntVec(tagIIV); err != nil {
		return nil, err
	}
	if x.rIV, err = readIntVec(tagRIV); err != nil {
		return nil, err
	}
	if x.sIV, err = readIntVec(tagSIV); err != nil {
		return nil, err
	}
	if x.sCBV, err = readSparse(tagSCBV); err != nil {
		return nil, err
	}
	if err = skipView(tagSCBVRank, tagSCBVSelect); err != nil {
		return nil, err
	}

	if x.fIV, err = readIntVec(tagFIV); err != nil {
		return nil, err
	}
	if x.fBV, err = readBitVec(tagFBV); err != nil {
		return nil, err
	}
	if err = skipView(tagFBVRank, tagFBVSelect); err != nil {
		return nil, err
	}
	if x.fFromStartCBV, err = readSparse(tagFFromStartCBV); err != nil {
		return nil, err
	}
	if x.fToEndCBV, err = readSparse(tagFToEndCBV); err != nil {
		return nil, err
	}

	if x.tIV, err = readIntVec(tagTIV); err != nil {
		return nil, err
	}
	if x.tBV, err = readBitVec(tagTBV); err != nil {
		return nil, err
	}
	if err = skipView(tagTBVRank, tagTBVSelect); err != nil {
		return nil, err
	}
	if x.tToEndCBV, err = readSparse(tagTToEndCBV); err != nil {
		return nil, err
	}
	if x.tFromStartCBV, err = readSparse(tagTFromStartCBV); err != nil {
		return nil, err
	}

	if x.pnIV, err = readBlobChecked(r, tagPNIV); err != nil {
		return nil, err
	}
	csaPayload, err := readBlobChecked(r, tagPNCSA)
	if err != nil {
		return nil, err
	}
	if x.pnCSA, err = namecsa.Decode(csaPayload); err != nil {
		return nil, fmt.Errorf("%w: path name csa: %v", ErrCorruptIndex, err)
	}
	if x.pnBV, err = readBitVec(tagPNBV); err != nil {
		return nil, err
	}
	if err = skipView(tagPNBVRank, tagPNBVSelect); err != nil {
		return nil, err
	}
	if x.piIV, err = readIntVec(tagPIIV); err != nil {
		return nil, err
	}

	pathTableCount, err := readScalar(r, tagPathTableCount)
	if err != nil {
		return nil, err
	}
	if pathTableCount != x.pathCount {
		return nil, fmt.Errorf("%w: path table count %d, header says %d", ErrCorruptIndex, pathTableCount, x.pathCount)
	}
	x.paths = make([]*pathStore, 0, pathTableCount)
	for i := uint64(0); i < pathTableCount; i++ {
		p, err := decodePathStore(r)
		if err != nil {
			return nil, err
		}
		x.paths = append(x.paths, p)
	}
	for rank := uint64(1); rank <= x.pathCount; rank++ {
		name, err := x.PathName(rank)
		if err != nil {
			return nil, err
		}
		x.paths[rank-1].name = name
	}

	if x.epIV, err = readIntVec(tagEPIV); err != nil {
		return nil, err
	}
	if x.epBV, err = readBitVec(tagEPBV); err != nil {
		return nil, err
	}
	if err = skipView(tagEPBVRank, tagEPBVSelect); err != nil {
		return nil, err
	}

	if err := x.checkShape(); err != nil {
		return nil, err
	}
	return x, nil
}

// checkShape cross-checks component sizes against the header counts.
func (x *Index) checkShape() error {
	entityCount := x.nodeCount + x.edgeCount
	if x.sIV.Len() != x.seqLen {
		return fmt.Errorf("%w: sequence text has %d bases, header says %d", ErrCorruptIndex, x.sIV.Len(), x.seqLen)
	}
	if x.sCBV.Len() != x.seqLen || x.sCBV.Ones() != x.nodeCount {
		return fmt.Errorf("%w: node start marks disagree with counts", ErrCorruptIndex)
	}
	if x.iIV.Len() != x.nodeCount {
		return fmt.Errorf("%w: rank to id table has %d entries, header says %d", ErrCorruptIndex, x.iIV.Len(), x.nodeCount)
	}
	if x.fIV.Len() != entityCount || x.fBV.Len() != entityCount || x.fBV.Ones() != x.nodeCount {
		return fmt.Errorf("%w: forward table shape invalid", ErrCorruptIndex)
	}
	if x.tIV.Len() != entityCount || x.tBV.Len() != entityCount || x.tBV.Ones() != x.nodeCount {
		return fmt.Errorf("%w: reverse table shape invalid", ErrCorruptIndex)
	}
	if x.pnBV.Len() != uint64(len(x.pnIV)) || x.pnBV.Ones() != x.pathCount {
		return fmt.Errorf("%w: path name marks disagree with counts", ErrCorruptIndex)
	}
	if uint64(len(x.paths)) != x.pathCount {
		return fmt.Errorf("%w: %d path tables, header says %d", ErrCorruptIndex, len(x.paths), x.pathCount)
	}
	return nil
}
