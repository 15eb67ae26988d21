package seqidx

import (
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/sequia/go-seqgraph/namecsa"
	"github.com/sequia/go-seqgraph/succinct"
)

// Index is the built, immutable form of a sequence graph. All fields are
// populated either by Builder.Build or by Load; nothing mutates them
// afterwards, so any number of goroutines may query one Index.
type Index struct {
	seqLen    uint64
	nodeCount uint64
	edgeCount uint64
	pathCount uint64
	minID     int64
	maxID     int64

	// id space. iIV maps rank-1 to id-minID; rIV maps id-minID to rank,
	// zero marking an absent id in a discontiguous range.
	iIV *succinct.IntVec
	rIV *succinct.IntVec

	// sequence text: 3-bit bases with a sparse mark at each node start
	sIV  *succinct.IntVec
	sCBV *succinct.SparseBits

	// forward adjacency: headers carry the source rank, links the
	// destination rank, with orientation sides in sparse vectors
	fIV           *succinct.IntVec
	fBV           *succinct.BitVec
	fFromStartCBV *succinct.SparseBits
	fToEndCBV     *succinct.SparseBits

	// reverse adjacency, same layout with the roles swapped
	tIV           *succinct.IntVec
	tBV           *succinct.BitVec
	tToEndCBV     *succinct.SparseBits
	tFromStartCBV *succinct.SparseBits

	// path names: delimited concatenation, name-start marks, suffix index,
	// and the name-rank to path-rank map
	pnIV  []byte
	pnCSA *namecsa.Index
	pnBV  *succinct.BitVec
	piIV  *succinct.IntVec

	paths []*pathStore

	// entity to path membership: one zero sentinel per entity followed by
	// the ranks of the paths that traverse it
	epIV *succinct.IntVec
	epBV *succinct.BitVec

	log logger.Logger
}

func (x *Index) SeqLength() uint64 { return x.seqLen }
func (x *Index) NodeCount() uint64 { return x.nodeCount }
func (x *Index) EdgeCount() uint64 { return x.edgeCount }
func (x *Index) PathCount() uint64 { return x.pathCount }
func (x *Index) MinID() int64      { return x.minID }
func (x *Index) MaxID() int64      { return x.maxID }

// IDToRank maps a node id to its 1-based rank in ascending id order.
func (x *Index) IDToRank(id int64) (uint64, error) {
	if x.nodeCount == 0 || id < x.minID || id > x.maxID {
		return 0, fmt.Errorf("%w: node %d", ErrNotFound, id)
	}
	r := x.rIV.Get(uint64(id - x.minID))
	if r == 0 {
		return 0, fmt.Errorf("%w: node %d", ErrNotFound, id)
	}
	return r, nil
}

// RankToID maps a 1-based node rank back to its id.
func (x *Index) RankToID(rank uint64) (int64, error) {
	if rank == 0 || rank > x.nodeCount {
		return 0, fmt.Errorf("%w: node rank %d", ErrNotFound, rank)
	}
	return x.rankToID(rank), nil
}

// rankToID is the unchecked form for ranks the caller has already proven.
func (x *Index) rankToID(rank uint64) int64 {
	return x.minID + int64(x.iIV.Get(rank-1))
}

// HasNode reports whether id is indexed.
func (x *Index) HasNode(id int64) bool {
	_, err := x.IDToRank(id)
	return err == nil
}

// NodeSequence decodes the stored label of node id from the sequence text.
func (x *Index) NodeSequence(id int64) (string, error) {
	rank, err := x.IDToRank(id)
	if err != nil {
		return "", err
	}
	start, err := x.sCBV.Select1(rank)
	if err != nil {
		return "", err
	}
	end := x.seqLen
	if rank < x.nodeCount {
		if end, err = x.sCBV.Select1(rank + 1); err != nil {
			return "", err
		}
	}
	s := make([]byte, end-start)
	for i := start; i < end; i++ {
		s[i-start] = revdna3bit(x.sIV.Get(i))
	}
	return string(s), nil
}

// Node materializes the node record for id.
func (x *Index) Node(id int64) (Node, error) {
	s, err := x.NodeSequence(id)
	if err != nil {
		return Node{}, err
	}
	return Node{ID: id, Sequence: s}, nil
}

// MaxNodeRank returns the highest node rank, which is also the node count.
func (x *Index) MaxNodeRank() uint64 {
	return x.sCBV.Rank1(x.sCBV.Len())
}

// NodeRankAsEntity maps a node id into the unified entity numbering.
func (x *Index) NodeRankAsEntity(id int64) (uint64, error) {
	rank, err := x.IDToRank(id)
	if err != nil {
		return 0, err
	}
	p, err := x.fBV.Select1(rank)
	if err != nil {
		return 0, err
	}
	return p + 1, nil
}

// EntityIsNode reports whether entity rank e addresses a node.
func (x *Index) EntityIsNode(e uint64) (bool, error) {
	if e == 0 || e > x.nodeCount+x.edgeCount {
		return false, fmt.Errorf("%w: entity %d", ErrNotFound, e)
	}
	return x.fBV.Bit(e - 1), nil
}

// EntityRankAsNodeRank returns the node rank of entity e, or zero when e is
// an edge.
func (x *Index) EntityRankAsNodeRank(e uint64) (uint64, error) {
	isNode, err := x.EntityIsNode(e)
	if err != nil {
		return 0, err
	}
	if !isNode {
		return 0, nil
	}
	return x.fIV.Get(e - 1), nil
}
