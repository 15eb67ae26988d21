// Package graphtest generates deterministic pseudo-random sequence graphs
// for tests. Generation is seeded so failures reproduce.
package graphtest

import (
	"fmt"
	"math/rand"

	"github.com/sequia/go-seqgraph/seqidx"
)

type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

var bases = []byte("ATCG")

// DNA returns a random sequence of n bases.
func (g *Generator) DNA(n int) string {
	s := make([]byte, n)
	for i := range s {
		s[i] = bases[g.rng.Intn(len(bases))]
	}
	return string(s)
}

// ChainGraph builds nodes ids baseID..baseID+n-1 with random labels of
// 1..maxLabel bases, chained by forward edges, and one path walking the
// whole chain.
func (g *Generator) ChainGraph(n int, baseID int64, maxLabel int) *seqidx.Graph {
	out := &seqidx.Graph{}
	walk := seqidx.Path{Name: fmt.Sprintf("chain-%d", baseID)}
	for i := 0; i < n; i++ {
		id := baseID + int64(i)
		out.AddNode(seqidx.Node{ID: id, Sequence: g.DNA(1 + g.rng.Intn(maxLabel))})
		if i > 0 {
			out.AddEdge(seqidx.Edge{From: id - 1, To: id})
		}
		walk.Mappings = append(walk.Mappings, seqidx.Mapping{Position: seqidx.Position{NodeID: id}})
	}
	out.AddPath(walk)
	return out
}

// BranchingGraph builds a chain with extra random skip edges, exercising
// nodes with several incident edges per side.
func (g *Generator) BranchingGraph(n int, baseID int64, extraEdges int) *seqidx.Graph {
	out := g.ChainGraph(n, baseID, 8)
	for i := 0; i < extraEdges; i++ {
		a := baseID + int64(g.rng.Intn(n))
		b := baseID + int64(g.rng.Intn(n))
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		out.AddEdge(seqidx.Edge{From: a, To: b})
	}
	return out
}
