package seqidx

import "fmt"

// forwardRange returns the [start,end) entry range of node rank in the
// forward table, excluding the header.
func (x *Index) forwardRange(rank uint64) (uint64, uint64, error) {
	start, err := x.fBV.Select1(rank)
	if err != nil {
		return 0, 0, err
	}
	end := x.fBV.Len()
	if rank < x.nodeCount {
		if end, err = x.fBV.Select1(rank + 1); err != nil {
			return 0, 0, err
		}
	}
	return start + 1, end, nil
}

func (x *Index) reverseRange(rank uint64) (uint64, uint64, error) {
	start, err := x.tBV.Select1(rank)
	if err != nil {
		return 0, 0, err
	}
	end := x.tBV.Len()
	if rank < x.nodeCount {
		if end, err = x.tBV.Select1(rank + 1); err != nil {
			return 0, 0, err
		}
	}
	return start + 1, end, nil
}

// EdgesFrom returns the edges whose source is id, in the stored entry order.
func (x *Index) EdgesFrom(id int64) ([]Edge, error) {
	rank, err := x.IDToRank(id)
	if err != nil {
		return nil, err
	}
	start, end, err := x.forwardRange(rank)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, end-start)
	for i := start; i < end; i++ {
		edges = append(edges, Edge{
			From:      id,
			To:        x.rankToID(x.fIV.Get(i)),
			FromStart: x.fFromStartCBV.Bit(i),
			ToEnd:     x.fToEndCBV.Bit(i),
		})
	}
	return edges, nil
}

// EdgesTo returns the edges whose destination is id.
func (x *Index) EdgesTo(id int64) ([]Edge, error) {
	rank, err := x.IDToRank(id)
	if err != nil {
		return nil, err
	}
	start, end, err := x.reverseRange(rank)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, end-start)
	for i := start; i < end; i++ {
		edges = append(edges, Edge{
			From:      x.rankToID(x.tIV.Get(i)),
			To:        id,
			FromStart: x.tFromStartCBV.Bit(i),
			ToEnd:     x.tToEndCBV.Bit(i),
		})
	}
	return edges, nil
}

// EdgesOf returns the union of EdgesTo and EdgesFrom with duplicates (such
// as self loops appearing in both tables) removed.
func (x *Index) EdgesOf(id int64) ([]Edge, error) {
	to, err := x.EdgesTo(id)
	if err != nil {
		return nil, err
	}
	from, err := x.EdgesFrom(id)
	if err != nil {
		return nil, err
	}
	seen := make(map[Edge]bool, len(to)+len(from))
	out := make([]Edge, 0, len(to)+len(from))
	for _, e := range append(to, from...) {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out, nil
}

// EdgesOnStart returns the edges of id that touch the start of id.
func (x *Index) EdgesOnStart(id int64) ([]Edge, error) {
	all, err := x.EdgesOf(id)
	if err != nil {
		return nil, err
	}
	var out []Edge
	for _, e := range all {
		if (e.To == id && !e.ToEnd) || (e.From == id && e.FromStart) {
			out = append(out, e)
		}
	}
	return out, nil
}

// EdgesOnEnd returns the edges of id that touch the end of id.
func (x *Index) EdgesOnEnd(id int64) ([]Edge, error) {
	all, err := x.EdgesOf(id)
	if err != nil {
		return nil, err
	}
	var out []Edge
	for _, e := range all {
		if (e.From == id && !e.FromStart) || (e.To == id && e.ToEnd) {
			out = append(out, e)
		}
	}
	return out, nil
}

// HasEdge reports whether any edge from id1 to id2 is stored, scanning id1's
// forward entries.
func (x *Index) HasEdge(id1, id2 int64) (bool, error) {
	rank1, err := x.IDToRank(id1)
	if err != nil {
		return false, err
	}
	rank2, err := x.IDToRank(id2)
	if err != nil {
		return false, err
	}
	start, end, err := x.forwardRange(rank1)
	if err != nil {
		return false, err
	}
	for i := start; i < end; i++ {
		if x.fIV.Get(i) == rank2 {
			return true, nil
		}
	}
	return false, nil
}

// EdgeRankAsEntity returns the entity rank of the edge from id1 to id2,
// which is the 1-based position of the link entry in the forward table.
func (x *Index) EdgeRankAsEntity(id1, id2 int64) (uint64, error) {
	rank1, err := x.IDToRank(id1)
	if err != nil {
		return 0, err
	}
	rank2, err := x.IDToRank(id2)
	if err != nil {
		return 0, err
	}
	start, end, err := x.forwardRange(rank1)
	if err != nil {
		return 0, err
	}
	for i := start; i < end; i++ {
		if x.fIV.Get(i) == rank2 {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: edge %d -> %d", ErrNotFound, id1, id2)
}
