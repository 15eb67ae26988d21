package seqidx

import (
	"fmt"
)

// Path names are concatenated as #name$#name$... The markers are fixed
// configuration of the name index and are rejected inside names at ingest.
const (
	nameStartMarker = byte('#') // 0x23
	nameEndMarker   = byte('$') // 0x24
)

// PathRank resolves a path name to its 1-based rank via the suffix index
// over the delimited name text.
func (x *Index) PathRank(name string) (uint64, error) {
	occs, err := x.pnCSA.Locate(encodeName(name))
	if err != nil {
		return 0, err
	}
	if len(occs) == 0 {
		return 0, fmt.Errorf("%w: path %q", ErrNotFound, name)
	}
	if len(occs) > 1 {
		return 0, fmt.Errorf("%w: path %q has %d hits", ErrNotUnique, name, len(occs))
	}
	// the hit lands on the leading marker; counting markers before it and
	// stepping past it yields the rank
	return x.pnBV.Rank1(uint64(occs[0])) + 1, nil
}

// PathName returns the name of the path with the given rank.
func (x *Index) PathName(rank uint64) (string, error) {
	if rank == 0 || rank > x.pathCount {
		return "", fmt.Errorf("%w: path rank %d", ErrNotFound, rank)
	}
	start, err := x.pnBV.Select1(rank)
	if err != nil {
		return "", err
	}
	start++ // step past '#'
	end := uint64(len(x.pnIV))
	if rank < x.pathCount {
		if end, err = x.pnBV.Select1(rank + 1); err != nil {
			return "", err
		}
	}
	end-- // step before '$'
	return string(x.pnIV[start:end]), nil
}

// MaxPathRank returns the number of stored paths.
func (x *Index) MaxPathRank() uint64 {
	return x.pnBV.Rank1(x.pnBV.Len())
}

func (x *Index) pathByRank(rank uint64) (*pathStore, error) {
	if rank == 0 || rank > uint64(len(x.paths)) {
		return nil, fmt.Errorf("%w: path rank %d", ErrNotFound, rank)
	}
	return x.paths[rank-1], nil
}

func (x *Index) pathByName(name string) (*pathStore, error) {
	rank, err := x.PathRank(name)
	if err != nil {
		return nil, err
	}
	return x.pathByRank(rank)
}

// PathContainsEntity reports whether the named path traverses entity rank e.
func (x *Index) PathContainsEntity(name string, e uint64) (bool, error) {
	p, err := x.pathByName(name)
	if err != nil {
		return false, err
	}
	if e == 0 || e > p.members.Len() {
		return false, fmt.Errorf("%w: entity %d", ErrNotFound, e)
	}
	return p.members.Bit(e - 1), nil
}

// PathContainsNode reports whether the named path visits node id.
func (x *Index) PathContainsNode(name string, id int64) (bool, error) {
	e, err := x.NodeRankAsEntity(id)
	if err != nil {
		return false, err
	}
	return x.PathContainsEntity(name, e)
}

// PathContainsEdge reports whether the named path crosses the edge from id1
// to id2.
func (x *Index) PathContainsEdge(name string, id1, id2 int64) (bool, error) {
	e, err := x.EdgeRankAsEntity(id1, id2)
	if err != nil {
		return false, err
	}
	return x.PathContainsEntity(name, e)
}

// PathsOfEntity returns the ascending ranks of the paths traversing entity
// rank e.
func (x *Index) PathsOfEntity(e uint64) ([]uint64, error) {
	if e == 0 || e > x.nodeCount+x.edgeCount {
		return nil, fmt.Errorf("%w: entity %d", ErrNotFound, e)
	}
	off, err := x.epBV.Select1(e)
	if err != nil {
		return nil, err
	}
	if !x.epBV.Bit(off) {
		return nil, fmt.Errorf("%w: entity path map sentinel missing at %d", ErrCorruptIndex, off)
	}
	off++
	var ranks []uint64
	for ; off < x.epBV.Len() && !x.epBV.Bit(off); off++ {
		ranks = append(ranks, x.epIV.Get(off))
	}
	return ranks, nil
}

// PathsOfNode returns the ranks of the paths visiting node id.
func (x *Index) PathsOfNode(id int64) ([]uint64, error) {
	e, err := x.NodeRankAsEntity(id)
	if err != nil {
		return nil, err
	}
	return x.PathsOfEntity(e)
}

// PathsOfEdge returns the ranks of the paths crossing the edge from id1 to
// id2.
func (x *Index) PathsOfEdge(id1, id2 int64) ([]uint64, error) {
	e, err := x.EdgeRankAsEntity(id1, id2)
	if err != nil {
		return nil, err
	}
	return x.PathsOfEntity(e)
}

// NodeMappings returns, keyed by path name, a mapping record for each path
// that visits node id.
func (x *Index) NodeMappings(id int64) (map[string]Mapping, error) {
	e, err := x.NodeRankAsEntity(id)
	if err != nil {
		return nil, err
	}
	ranks, err := x.PathsOfEntity(e)
	if err != nil {
		return nil, err
	}
	mappings := make(map[string]Mapping, len(ranks))
	for _, r := range ranks {
		name, err := x.PathName(r)
		if err != nil {
			return nil, err
		}
		mappings[name] = Mapping{Position: Position{NodeID: id}}
	}
	return mappings, nil
}

// PathLength returns the total base length of the named path.
func (x *Index) PathLength(name string) (uint64, error) {
	p, err := x.pathByName(name)
	if err != nil {
		return 0, err
	}
	return p.length(), nil
}

// NodeOccsInPath counts the occurrences of node id in the named path.
func (x *Index) NodeOccsInPath(id int64, name string) (uint64, error) {
	rank, err := x.IDToRank(id)
	if err != nil {
		return 0, err
	}
	p, err := x.pathByName(name)
	if err != nil {
		return 0, err
	}
	return p.ids.Rank(rank, p.ids.Len()), nil
}

// NodePositionInPath returns the base position of node id in the named
// path. When the path loops through id more than once a diagnostic is
// logged and the first occurrence's position is returned.
func (x *Index) NodePositionInPath(id int64, name string) (uint64, error) {
	occs, err := x.NodeOccsInPath(id, name)
	if err != nil {
		return 0, err
	}
	if occs == 0 {
		return 0, fmt.Errorf("%w: node %d in path %q", ErrNotFound, id, name)
	}
	if occs > 1 && x.log != nil {
		x.log.Infof("path %s contains a loop through node %d, reporting first occurrence", name, id)
	}
	rank, err := x.IDToRank(id)
	if err != nil {
		return 0, err
	}
	p, err := x.pathByName(name)
	if err != nil {
		return 0, err
	}
	step, err := p.ids.Select(rank, 1)
	if err != nil {
		return 0, err
	}
	return p.positions.Get(step), nil
}

// NodeAtPathPosition returns the id of the node whose step covers base
// position pos of the named path.
func (x *Index) NodeAtPathPosition(name string, pos uint64) (int64, error) {
	p, err := x.pathByName(name)
	if err != nil {
		return 0, err
	}
	step, err := p.stepAtPosition(pos)
	if err != nil {
		return 0, err
	}
	return x.RankToID(p.ids.Access(step))
}
