package seqidx

import (
	"sort"
)

// Neighborhood seeds g with node id and expands it by steps hops.
func (x *Index) Neighborhood(id int64, steps uint64, g *Graph) error {
	n, err := x.Node(id)
	if err != nil {
		return err
	}
	g.AddNode(n)
	return x.ExpandContext(g, steps)
}

// sidePair keys an edge by its two oriented ends, the shape expansion uses
// to deduplicate edges already present in g.
type sidePair struct {
	from Side
	to   Side
}

func edgeSides(e Edge) sidePair {
	return sidePair{
		from: Side{ID: e.From, End: e.FromStart},
		to:   Side{ID: e.To, End: e.ToEnd},
	}
}

// ExpandContext grows g by steps hops of breadth-first neighborhood
// expansion, then adds any nodes needed so no edge in g is orphaned, and
// finally attaches the mappings of every path crossing the collected nodes.
func (x *Index) ExpandContext(g *Graph, steps uint64) error {
	nodes := make(map[int64]bool)
	edges := make(map[sidePair]bool)
	toVisit := make(map[int64]bool)

	for _, n := range g.Nodes {
		toVisit[n.ID] = true
		nodes[n.ID] = true
	}
	for _, e := range g.Edges {
		toVisit[e.From] = true
		toVisit[e.To] = true
		edges[edgeSides(e)] = true
	}

	addNode := func(id int64) error {
		if nodes[id] {
			return nil
		}
		n, err := x.Node(id)
		if err != nil {
			return err
		}
		g.AddNode(n)
		nodes[id] = true
		return nil
	}

	for hop := uint64(0); hop < steps; hop++ {
		next := make(map[int64]bool)
		for _, id := range sortedIDs(toVisit) {
			if err := addNode(id); err != nil {
				return err
			}
			incident, err := x.EdgesOf(id)
			if err != nil {
				return err
			}
			for _, e := range incident {
				if key := edgeSides(e); !edges[key] {
					g.AddEdge(e)
					edges[key] = true
				}
				if e.From == id {
					next[e.To] = true
				} else {
					next[e.From] = true
				}
			}
		}
		toVisit = next
	}

	// pull in nodes referenced by collected edges so none are orphaned
	appended := make(map[int64]bool)
	for _, key := range sortedSidePairs(edges) {
		for _, id := range []int64{key.from.ID, key.to.ID} {
			if !nodes[id] {
				if err := addNode(id); err != nil {
					return err
				}
				appended[id] = true
			}
		}
	}

	// edges between the appended nodes themselves; anything else would
	// orphan or is already present
	for _, id := range sortedIDs(appended) {
		incident, err := x.EdgesOf(id)
		if err != nil {
			return err
		}
		for _, e := range incident {
			if !appended[e.From] || !appended[e.To] {
				continue
			}
			if key := edgeSides(e); !edges[key] {
				g.AddEdge(e)
				edges[key] = true
			}
		}
	}

	return x.addPathsToGraph(nodes, g)
}

// addPathsToGraph appends, for every collected node, one mapping per path
// crossing it. Mappings arrive in ascending node id order, so a path's
// mapping order reflects id order rather than walk order.
func (x *Index) addPathsToGraph(nodes map[int64]bool, g *Graph) error {
	pathIdx := make(map[string]int, len(g.Paths))
	for i, p := range g.Paths {
		pathIdx[p.Name] = i
	}
	for _, id := range sortedIDs(nodes) {
		mappings, err := x.NodeMappings(id)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(mappings))
		for name := range mappings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			i, ok := pathIdx[name]
			if !ok {
				g.AddPath(Path{Name: name})
				i = len(g.Paths) - 1
				pathIdx[name] = i
			}
			g.Paths[i].Mappings = append(g.Paths[i].Mappings, mappings[name])
		}
	}
	return nil
}

// GetPathRange populates g with the nodes covering base positions
// [start,stop] of the named path, their incident edges, and the node
// mappings of every path crossing them. stop is clamped to the path length;
// a start beyond the path yields an empty graph.
func (x *Index) GetPathRange(name string, start, stop int64, g *Graph) error {
	p, err := x.pathByName(name)
	if err != nil {
		return err
	}
	plen := p.length()
	if start < 0 {
		start = 0
	}
	if uint64(start) >= plen {
		return nil
	}
	if stop < 0 {
		stop = 0
	}
	if uint64(stop) >= plen {
		stop = int64(plen - 1)
	}
	if stop < start {
		return nil
	}

	step1, err := p.stepAtPosition(uint64(start))
	if err != nil {
		return err
	}
	step2, err := p.stepAtPosition(uint64(stop))
	if err != nil {
		return err
	}

	nodes := make(map[int64]bool)
	edges := make(map[sidePair]bool)
	var edgeOrder []Edge
	for i := step1; i <= step2; i++ {
		id, err := x.RankToID(p.ids.Access(i))
		if err != nil {
			return err
		}
		if nodes[id] {
			continue
		}
		nodes[id] = true
		for _, dir := range []func(int64) ([]Edge, error){x.EdgesFrom, x.EdgesTo} {
			incident, err := dir(id)
			if err != nil {
				return err
			}
			for _, e := range incident {
				if key := edgeSides(e); !edges[key] {
					edges[key] = true
					edgeOrder = append(edgeOrder, e)
				}
			}
		}
	}

	for _, id := range sortedIDs(nodes) {
		n, err := x.Node(id)
		if err != nil {
			return err
		}
		g.AddNode(n)
	}
	if err := x.addPathsToGraph(nodes, g); err != nil {
		return err
	}
	for _, e := range edgeOrder {
		g.AddEdge(e)
	}
	return nil
}

// GetIDRange populates g with every indexed node whose id lies in [id1,id2].
func (x *Index) GetIDRange(id1, id2 int64, g *Graph) error {
	if id1 < x.minID {
		id1 = x.minID
	}
	if id2 > x.maxID {
		id2 = x.maxID
	}
	for id := id1; id <= id2; id++ {
		// discontiguous id spaces leave holes in the range
		if !x.HasNode(id) {
			continue
		}
		n, err := x.Node(id)
		if err != nil {
			return err
		}
		g.AddNode(n)
	}
	return nil
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedSidePairs(set map[sidePair]bool) []sidePair {
	pairs := make([]sidePair, 0, len(set))
	for p := range set {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.from.ID != b.from.ID {
			return a.from.ID < b.from.ID
		}
		if a.from.End != b.from.End {
			return !a.from.End
		}
		if a.to.ID != b.to.ID {
			return a.to.ID < b.to.ID
		}
		return !a.to.End && b.to.End
	})
	return pairs
}
