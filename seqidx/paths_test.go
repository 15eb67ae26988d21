package seqidx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathPositionalQueries(t *testing.T) {
	x := buildTriple(t, WithValidation())

	plen, err := x.PathLength("p")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), plen)

	tests := []struct {
		pos  uint64
		want int64
	}{
		{0, 1}, {1, 1}, {2, 1},
		{3, 2}, {4, 2},
		{5, 3}, {6, 3},
	}
	for _, tt := range tests {
		got, err := x.NodeAtPathPosition("p", tt.pos)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "position %d", tt.pos)
	}

	pos, err := x.NodePositionInPath(2, "p")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), pos)

	_, err = x.NodeAtPathPosition("p", 7)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestPathRankAndName(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: 1, Sequence: "A"}, {ID: 2, Sequence: "T"}},
		Paths: []Path{
			{Name: "chr1", Mappings: []Mapping{{Position: Position{NodeID: 1}}}},
			{Name: "chr10", Mappings: []Mapping{{Position: Position{NodeID: 2}}}},
			{Name: "alt", Mappings: []Mapping{{Position: Position{NodeID: 1}}}},
		},
	}
	b := NewBuilder(WithValidation())
	require.NoError(t, b.ConsumeGraph(g))
	x, err := b.Build()
	require.NoError(t, err)

	// paths rank in name order
	for rank, want := range map[uint64]string{1: "alt", 2: "chr1", 3: "chr10"} {
		name, err := x.PathName(rank)
		require.NoError(t, err)
		assert.Equal(t, want, name)
		got, err := x.PathRank(want)
		require.NoError(t, err)
		assert.Equal(t, rank, got)
	}

	_, err = x.PathRank("chr2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoopingPath(t *testing.T) {
	// path "q" = [1+, 2+, 1+]
	g := &Graph{
		Nodes: []Node{{ID: 1, Sequence: "ACG"}, {ID: 2, Sequence: "TT"}},
		Edges: []Edge{{From: 1, To: 2}, {From: 2, To: 1}},
		Paths: []Path{{
			Name: "q",
			Mappings: []Mapping{
				{Position: Position{NodeID: 1}},
				{Position: Position{NodeID: 2}},
				{Position: Position{NodeID: 1}},
			},
		}},
	}
	b := NewBuilder(WithValidation())
	require.NoError(t, b.ConsumeGraph(g))
	x, err := b.Build()
	require.NoError(t, err)

	occs, err := x.NodeOccsInPath(1, "q")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), occs)

	// positions: 1 at [0,3), 2 at [3,5), 1 again at [5,8)
	id, err := x.NodeAtPathPosition("q", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	// the loop diagnostic reports the first occurrence
	pos, err := x.NodePositionInPath(1, "q")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)

	// first and last steps are the same node, so its bases count twice in
	// the path length: 3 + 2 + 3
	plen, err := x.PathLength("q")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), plen)
}

func TestPathMembership(t *testing.T) {
	x := buildTriple(t)

	for _, id := range []int64{1, 2, 3} {
		ok, err := x.PathContainsNode("p", id)
		require.NoError(t, err)
		assert.True(t, ok, "node %d", id)
	}
	ok, err := x.PathContainsEdge("p", 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = x.PathContainsEdge("p", 2, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ranks, err := x.PathsOfNode(2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ranks)

	ranks, err = x.PathsOfEdge(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ranks)

	mappings, err := x.NodeMappings(2)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, int64(2), mappings["p"].Position.NodeID)
}

func TestReverseDirectionStored(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: 1, Sequence: "ACG"}, {ID: 2, Sequence: "TT"}},
		Edges: []Edge{{From: 1, To: 2}},
		Paths: []Path{{
			Name: "r",
			Mappings: []Mapping{
				{Position: Position{NodeID: 1}},
				{Position: Position{NodeID: 2}, IsReverse: true},
			},
		}},
	}
	b := NewBuilder(WithValidation())
	require.NoError(t, b.ConsumeGraph(g))
	x, err := b.Build()
	require.NoError(t, err)

	p, err := x.pathByName("r")
	require.NoError(t, err)
	assert.False(t, p.directions.Bit(0))
	assert.True(t, p.directions.Bit(1))
}
