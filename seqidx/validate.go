package seqidx

import (
	"fmt"
	"sort"
)

// validateIndex replays the accumulated source records against the finished
// structures. It runs before the accumulation maps are released and aborts
// the build on the first inconsistency.
func (b *Builder) validateIndex(x *Index) error {
	if b.log != nil {
		b.log.Debugf("validating graph sequence")
	}
	for id, label := range b.nodeLabel {
		rank, err := x.IDToRank(id)
		if err != nil {
			return err
		}
		start, err := x.sCBV.Select1(rank)
		if err != nil {
			return err
		}
		if got := x.sCBV.Rank1(start + 1); got != rank {
			return fmt.Errorf("%w: node %d start mark ranks %d, want %d", ErrCorruptIndex, id, got, rank)
		}
		s, err := x.NodeSequence(id)
		if err != nil {
			return err
		}
		if len(s) != len(label) {
			return fmt.Errorf("%w: node %d sequence length %d, want %d", ErrCorruptIndex, id, len(s), len(label))
		}
		for i := 0; i < len(label); i++ {
			if dna3bit(label[i]) != dna3bit(s[i]) {
				return fmt.Errorf("%w: node %d sequence differs at base %d", ErrCorruptIndex, id, i)
			}
		}
	}

	if b.log != nil {
		b.log.Debugf("validating edge tables")
	}
	for from, tos := range b.fromTo {
		for to := range tos {
			edges, err := x.EdgesFrom(from.ID)
			if err != nil {
				return err
			}
			if !containsEdge(edges, Edge{From: from.ID, To: to.ID, FromStart: from.End, ToEnd: to.End}) {
				return fmt.Errorf("%w: forward table missing edge %d -> %d", ErrCorruptIndex, from.ID, to.ID)
			}
		}
	}
	for to, froms := range b.toFrom {
		for from := range froms {
			edges, err := x.EdgesTo(to.ID)
			if err != nil {
				return err
			}
			if !containsEdge(edges, Edge{From: from.ID, To: to.ID, FromStart: from.End, ToEnd: to.End}) {
				return fmt.Errorf("%w: reverse table missing edge %d -> %d", ErrCorruptIndex, from.ID, to.ID)
			}
		}
	}

	if b.log != nil {
		b.log.Debugf("validating paths")
	}
	names := make([]string, 0, len(b.pathNodes))
	for name := range b.pathNodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rank, err := x.PathRank(name)
		if err != nil {
			return err
		}
		got, err := x.PathName(rank)
		if err != nil {
			return err
		}
		if got != name {
			return fmt.Errorf("%w: path rank %d names %q, want %q", ErrCorruptIndex, rank, got, name)
		}

		p := x.paths[rank-1]
		var pos uint64
		for i, step := range b.pathNodes[name] {
			e, err := x.NodeRankAsEntity(step.ID)
			if err != nil {
				return err
			}
			if !p.members.Bit(e - 1) {
				return fmt.Errorf("%w: path %q step %d not in membership", ErrCorruptIndex, name, i)
			}
			if p.directions.Bit(uint64(i)) != step.Reverse {
				return fmt.Errorf("%w: path %q step %d direction differs", ErrCorruptIndex, name, i)
			}
			for k := uint64(0); k < uint64(len(b.nodeLabel[step.ID])); k++ {
				id, err := x.NodeAtPathPosition(name, pos+k)
				if err != nil {
					return err
				}
				if id != step.ID {
					return fmt.Errorf("%w: path %q position %d resolves node %d, want %d",
						ErrCorruptIndex, name, pos+k, id, step.ID)
				}
			}
			pos += uint64(len(b.nodeLabel[step.ID]))
		}
	}

	if b.log != nil {
		b.log.Debugf("graph ok")
	}
	return nil
}

func containsEdge(edges []Edge, want Edge) bool {
	for _, e := range edges {
		if e == want {
			return true
		}
	}
	return false
}
