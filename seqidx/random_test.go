package seqidx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sequia/go-seqgraph/graphtest"
	"github.com/sequia/go-seqgraph/seqidx"
)

// The generated-graph tests replay every source record against the built
// index, which is the same contract the builder's own validation enforces,
// and then round trip the serialization.

func TestGeneratedChainInvariants(t *testing.T) {
	gen := graphtest.NewGenerator(42)
	g := gen.ChainGraph(200, 1000, 11)

	b := seqidx.NewBuilder(seqidx.WithValidation())
	require.NoError(t, b.ConsumeGraph(g))
	x, err := b.Build()
	require.NoError(t, err)

	for _, n := range g.Nodes {
		seq, err := x.NodeSequence(n.ID)
		require.NoError(t, err)
		require.Equal(t, n.Sequence, seq, "node %d", n.ID)

		rank, err := x.IDToRank(n.ID)
		require.NoError(t, err)
		id, err := x.RankToID(rank)
		require.NoError(t, err)
		require.Equal(t, n.ID, id)
	}
	for _, e := range g.Edges {
		ok, err := x.HasEdge(e.From, e.To)
		require.NoError(t, err)
		require.True(t, ok, "edge %v", e)

		from, err := x.EdgesFrom(e.From)
		require.NoError(t, err)
		require.Contains(t, from, e)
		to, err := x.EdgesTo(e.To)
		require.NoError(t, err)
		require.Contains(t, to, e)
	}

	// every base position of the walk resolves to the covering node
	name := g.Paths[0].Name
	var pos uint64
	for _, m := range g.Paths[0].Mappings {
		label, err := x.NodeSequence(m.Position.NodeID)
		require.NoError(t, err)
		for k := 0; k < len(label); k++ {
			id, err := x.NodeAtPathPosition(name, pos)
			require.NoError(t, err)
			require.Equal(t, m.Position.NodeID, id, "position %d", pos)
			pos++
		}
	}
	plen, err := x.PathLength(name)
	require.NoError(t, err)
	require.Equal(t, pos, plen)
}

func TestGeneratedBranchingRoundTrip(t *testing.T) {
	gen := graphtest.NewGenerator(7)
	g := gen.BranchingGraph(120, 1, 60)

	b := seqidx.NewBuilder(seqidx.WithValidation())
	require.NoError(t, b.ConsumeGraph(g))
	x, err := b.Build()
	require.NoError(t, err)

	blob, err := x.SerializeBytes()
	require.NoError(t, err)
	loaded, err := seqidx.Load(bytes.NewReader(blob))
	require.NoError(t, err)

	again, err := loaded.SerializeBytes()
	require.NoError(t, err)
	require.True(t, bytes.Equal(blob, again))

	for _, n := range g.Nodes {
		want, err := x.EdgesOf(n.ID)
		require.NoError(t, err)
		got, err := loaded.EdgesOf(n.ID)
		require.NoError(t, err)
		require.Equal(t, want, got)

		wantPaths, err := x.PathsOfNode(n.ID)
		require.NoError(t, err)
		gotPaths, err := loaded.PathsOfNode(n.ID)
		require.NoError(t, err)
		require.Equal(t, wantPaths, gotPaths)
	}
}
