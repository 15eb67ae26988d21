package seqidx

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/sequia/go-seqgraph/namecsa"
	"github.com/sequia/go-seqgraph/succinct"
)

// Builder accumulates graph records and assembles the index in a single
// deterministic pass. The accumulation maps are held from the first Consume
// call until Build returns; they are still held while the succinct structures
// are materialized and validated, and are released only at the end of Build.
type Builder struct {
	log      logger.Logger
	validate bool

	seqLen    uint64
	edgeCount uint64

	nodeLabel map[int64]string
	fromTo    map[Side]map[Side]bool
	toFrom    map[Side]map[Side]bool
	pathNodes map[string][]Traversal
}

func NewBuilder(opts ...Option) *Builder {
	options := BuilderOptions{}
	for _, o := range opts {
		o(&options)
	}
	return &Builder{
		log:       options.Log,
		validate:  options.Validate,
		nodeLabel: make(map[int64]string),
		fromTo:    make(map[Side]map[Side]bool),
		toFrom:    make(map[Side]map[Side]bool),
		pathNodes: make(map[string][]Traversal),
	}
}

// ConsumeStream drains graph batches from src until it reports io.EOF.
func (b *Builder) ConsumeStream(src GraphSource) error {
	for {
		g, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := b.ConsumeGraph(g); err != nil {
			return err
		}
	}
}

// ConsumeGraph folds one batch into the accumulation maps. Errors abort the
// build; callers must not continue after a failure.
func (b *Builder) ConsumeGraph(g *Graph) error {
	for _, n := range g.Nodes {
		if err := b.addNode(n); err != nil {
			return err
		}
	}
	for _, e := range g.Edges {
		b.addEdge(e)
	}
	for _, p := range g.Paths {
		if err := b.addPath(p); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addNode(n Node) error {
	if len(n.Sequence) == 0 {
		return fmt.Errorf("%w: node %d has an empty sequence", ErrInvalidInput, n.ID)
	}
	if prev, ok := b.nodeLabel[n.ID]; ok {
		if prev != n.Sequence {
			return fmt.Errorf("%w: node %d stored twice with conflicting sequences", ErrInvalidInput, n.ID)
		}
		return nil
	}
	if i := strings.IndexFunc(n.Sequence, func(r rune) bool {
		return r != 'A' && r != 'T' && r != 'C' && r != 'G'
	}); i >= 0 && b.log != nil {
		b.log.Debugf("node %d sequence byte %d outside DNA alphabet, will read back as N", n.ID, i)
	}
	b.nodeLabel[n.ID] = n.Sequence
	b.seqLen += uint64(len(n.Sequence))
	return nil
}

func (b *Builder) addEdge(e Edge) {
	from := Side{ID: e.From, End: e.FromStart}
	to := Side{ID: e.To, End: e.ToEnd}
	if b.fromTo[from][to] {
		return
	}
	if b.fromTo[from] == nil {
		b.fromTo[from] = make(map[Side]bool)
	}
	if b.toFrom[to] == nil {
		b.toFrom[to] = make(map[Side]bool)
	}
	b.fromTo[from][to] = true
	b.toFrom[to][from] = true
	b.edgeCount++
}

func (b *Builder) addPath(p Path) error {
	if strings.IndexByte(p.Name, nameStartMarker) >= 0 || strings.IndexByte(p.Name, nameEndMarker) >= 0 {
		return fmt.Errorf("%w: path name %q contains a reserved marker byte", ErrInvalidInput, p.Name)
	}
	for _, m := range p.Mappings {
		b.pathNodes[p.Name] = append(b.pathNodes[p.Name], Traversal{
			ID:      m.Position.NodeID,
			Reverse: m.IsReverse,
		})
	}
	// a path record with no mappings still names the path
	if _, ok := b.pathNodes[p.Name]; !ok {
		b.pathNodes[p.Name] = nil
	}
	return nil
}

// Build materializes the index. The builder must not be reused afterwards.
func (b *Builder) Build() (*Index, error) {
	if len(b.nodeLabel) == 0 {
		return nil, fmt.Errorf("%w: graph has no nodes", ErrInvalidInput)
	}
	for side := range b.fromTo {
		if _, ok := b.nodeLabel[side.ID]; !ok {
			return nil, fmt.Errorf("%w: edge names unknown node %d", ErrInvalidInput, side.ID)
		}
	}
	for side := range b.toFrom {
		if _, ok := b.nodeLabel[side.ID]; !ok {
			return nil, fmt.Errorf("%w: edge names unknown node %d", ErrInvalidInput, side.ID)
		}
	}

	ids := make([]int64, 0, len(b.nodeLabel))
	for id := range b.nodeLabel {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	x := &Index{
		seqLen:    b.seqLen,
		nodeCount: uint64(len(ids)),
		edgeCount: b.edgeCount,
		pathCount: uint64(len(b.pathNodes)),
		minID:     ids[0],
		maxID:     ids[len(ids)-1],
		log:       b.log,
	}
	if b.log != nil {
		b.log.Debugf("graph has %d bp in sequence, %d nodes, %d edges and %d paths",
			x.seqLen, x.nodeCount, x.edgeCount, x.pathCount)
	}

	if err := b.buildIDSpace(x, ids); err != nil {
		return nil, err
	}
	if err := b.buildSequence(x, ids); err != nil {
		return nil, err
	}
	if err := b.buildEdgeTables(x, ids); err != nil {
		return nil, err
	}
	if err := b.buildPaths(x); err != nil {
		return nil, err
	}
	if err := b.buildEntityPathMap(x); err != nil {
		return nil, err
	}

	if b.validate {
		if err := b.validateIndex(x); err != nil {
			return nil, err
		}
	}

	// release the accumulation maps before handing the index out
	b.nodeLabel = nil
	b.fromTo = nil
	b.toFrom = nil
	b.pathNodes = nil

	return x, nil
}

func (b *Builder) buildIDSpace(x *Index, ids []int64) error {
	span := uint64(x.maxID-x.minID) + 1
	rIV, err := succinct.NewIntVec(span, succinct.WidthFor(x.nodeCount))
	if err != nil {
		return err
	}
	iIV, err := succinct.NewIntVec(x.nodeCount, succinct.WidthFor(uint64(x.maxID-x.minID)))
	if err != nil {
		return err
	}
	for k, id := range ids {
		rank := uint64(k) + 1
		rIV.Set(uint64(id-x.minID), rank)
		iIV.Set(rank-1, uint64(id-x.minID))
	}
	x.rIV = rIV
	x.iIV = iIV
	return nil
}

func (b *Builder) buildSequence(x *Index, ids []int64) error {
	if b.log != nil {
		b.log.Debugf("storing node labels")
	}
	sIV, err := succinct.NewIntVec(x.seqLen, 3)
	if err != nil {
		return err
	}
	starts := make([]uint64, 0, len(ids))
	var off uint64
	for _, id := range ids {
		starts = append(starts, off)
		for i := 0; i < len(b.nodeLabel[id]); i++ {
			sIV.Set(off, dna3bit(b.nodeLabel[id][i]))
			off++
		}
	}
	x.sIV = sIV
	x.sCBV, err = succinct.NewSparseBits(x.seqLen, starts)
	return err
}

// sideTargets returns the stored opposite sides of (id,end) from table,
// ordered ascending by (rank, side) so that link emission, and with it the
// edge entity numbering, is reproducible.
func (b *Builder) sideTargets(table map[Side]map[Side]bool, id int64, end bool, rankOf func(int64) uint64) []Side {
	set := table[Side{ID: id, End: end}]
	if len(set) == 0 {
		return nil
	}
	sides := make([]Side, 0, len(set))
	for s := range set {
		sides = append(sides, s)
	}
	sort.Slice(sides, func(i, j int) bool {
		ri, rj := rankOf(sides[i].ID), rankOf(sides[j].ID)
		if ri != rj {
			return ri < rj
		}
		return !sides[i].End && sides[j].End
	})
	return sides
}

func (b *Builder) buildEdgeTables(x *Index, ids []int64) error {
	if b.log != nil {
		b.log.Debugf("storing forward and reverse adjacency tables")
	}
	entityCount := x.nodeCount + x.edgeCount
	rankOf := func(id int64) uint64 { return x.rIV.Get(uint64(id - x.minID)) }

	width := succinct.WidthFor(x.nodeCount)
	fIV, err := succinct.NewIntVec(entityCount, width)
	if err != nil {
		return err
	}
	fBV := succinct.NewBitVec(entityCount)
	var fFromStart, fToEnd []uint64

	itr := uint64(0)
	for k, id := range ids {
		rank := uint64(k) + 1
		fIV.Set(itr, rank)
		fBV.Set(itr)
		itr++
		for _, fromStart := range []bool{false, true} {
			for _, to := range b.sideTargets(b.fromTo, id, fromStart, rankOf) {
				fIV.Set(itr, rankOf(to.ID))
				if fromStart {
					fFromStart = append(fFromStart, itr)
				}
				if to.End {
					fToEnd = append(fToEnd, itr)
				}
				itr++
			}
		}
	}
	fBV.Seal()
	x.fIV = fIV
	x.fBV = fBV
	if x.fFromStartCBV, err = succinct.NewSparseBits(entityCount, fFromStart); err != nil {
		return err
	}
	if x.fToEndCBV, err = succinct.NewSparseBits(entityCount, fToEnd); err != nil {
		return err
	}

	tIV, err := succinct.NewIntVec(entityCount, width)
	if err != nil {
		return err
	}
	tBV := succinct.NewBitVec(entityCount)
	var tToEnd, tFromStart []uint64

	itr = 0
	for k, id := range ids {
		rank := uint64(k) + 1
		tIV.Set(itr, rank)
		tBV.Set(itr)
		itr++
		for _, toEnd := range []bool{false, true} {
			for _, from := range b.sideTargets(b.toFrom, id, toEnd, rankOf) {
				tIV.Set(itr, rankOf(from.ID))
				if toEnd {
					tToEnd = append(tToEnd, itr)
				}
				if from.End {
					tFromStart = append(tFromStart, itr)
				}
				itr++
			}
		}
	}
	tBV.Seal()
	x.tIV = tIV
	x.tBV = tBV
	if x.tToEndCBV, err = succinct.NewSparseBits(entityCount, tToEnd); err != nil {
		return err
	}
	x.tFromStartCBV, err = succinct.NewSparseBits(entityCount, tFromStart)
	return err
}

func (b *Builder) buildPaths(x *Index) error {
	if b.log != nil {
		b.log.Debugf("storing paths")
	}
	names := make([]string, 0, len(b.pathNodes))
	for name := range b.pathNodes {
		names = append(names, name)
	}
	sort.Strings(names)

	entityCount := x.nodeCount + x.edgeCount
	var nameText []byte
	for _, name := range names {
		nameText = append(nameText, encodeName(name)...)
	}

	x.pnIV = nameText
	x.pnCSA = namecsa.New(nameText)
	pnBV := succinct.NewBitVec(uint64(len(nameText)))
	for i, c := range nameText {
		if c == nameStartMarker {
			pnBV.Set(uint64(i))
		}
	}
	pnBV.Seal()
	x.pnBV = pnBV

	piIV, err := succinct.NewIntVec(x.pathCount, succinct.WidthFor(x.pathCount))
	if err != nil {
		return err
	}
	for r := uint64(1); r <= x.pathCount; r++ {
		piIV.Set(r-1, r)
	}
	x.piIV = piIV

	labelLen := func(id int64) uint64 { return uint64(len(b.nodeLabel[id])) }
	rankOf := func(id int64) uint64 { return x.rIV.Get(uint64(id - x.minID)) }

	for _, name := range names {
		steps := b.pathNodes[name]
		for _, s := range steps {
			if _, ok := b.nodeLabel[s.ID]; !ok {
				return fmt.Errorf("%w: path %q traverses unknown node %d", ErrInvalidInput, name, s.ID)
			}
		}

		members := roaring64.New()
		for i, s := range steps {
			e, err := x.NodeRankAsEntity(s.ID)
			if err != nil {
				return err
			}
			members.Add(e - 1)
			if i+1 < len(steps) {
				ok, err := x.HasEdge(s.ID, steps[i+1].ID)
				if err != nil {
					return err
				}
				if ok {
					e, err := x.EdgeRankAsEntity(s.ID, steps[i+1].ID)
					if err != nil {
						return err
					}
					members.Add(e - 1)
				}
			}
		}

		p, err := buildPathStore(name, steps, entityCount, members.ToArray(), rankOf, labelLen)
		if err != nil {
			return err
		}
		x.paths = append(x.paths, p)
	}
	return nil
}

func (b *Builder) buildEntityPathMap(x *Index) error {
	entityCount := x.nodeCount + x.edgeCount
	var pathEntities uint64
	for _, p := range x.paths {
		pathEntities += p.members.Ones()
	}

	epIV, err := succinct.NewIntVec(entityCount+pathEntities, succinct.WidthFor(x.pathCount))
	if err != nil {
		return err
	}
	epBV := succinct.NewBitVec(entityCount + pathEntities)
	off := uint64(0)
	for e := uint64(0); e < entityCount; e++ {
		epBV.Set(off)
		epIV.Set(off, 0) // sentinel, entities with no membership stay empty
		off++
		for j, p := range x.paths {
			if p.members.Bit(e) {
				epIV.Set(off, uint64(j)+1)
				off++
			}
		}
	}
	if off != entityCount+pathEntities {
		return fmt.Errorf("%w: entity path map filled %d of %d entries", ErrCorruptIndex, off, entityCount+pathEntities)
	}
	epBV.Seal()
	x.epIV = epIV
	x.epBV = epBV
	return nil
}
