package seqidx

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ToText renders g line-oriented: a header, one S line per node, one P line
// per path step, one L line per edge. This is a collaborator-facing
// convenience over the record schema, not part of the index contract.
func ToText(w io.Writer, g *Graph) error {
	if _, err := fmt.Fprintf(w, "H\tHVN:Z:1.0\n"); err != nil {
		return err
	}
	for _, n := range g.Nodes {
		if _, err := fmt.Fprintf(w, "S\t%d\t%s\n", n.ID, n.Sequence); err != nil {
			return err
		}
	}
	for _, p := range g.Paths {
		for _, m := range p.Mappings {
			orientation := "+"
			if m.IsReverse {
				orientation = "-"
			}
			if _, err := fmt.Fprintf(w, "P\t%d\t%s\t%s\n", m.Position.NodeID, p.Name, orientation); err != nil {
				return err
			}
		}
	}
	for _, e := range g.Edges {
		fromOrient, toOrient := "+", "+"
		if e.FromStart {
			fromOrient = "-"
		}
		if e.ToEnd {
			toOrient = "-"
		}
		if _, err := fmt.Fprintf(w, "L\t%d\t%s\t%d\t%s\n", e.From, fromOrient, e.To, toOrient); err != nil {
			return err
		}
	}
	return nil
}

// ParseRegion splits a target of the form name, name:pos or name:start-end.
// start and end are -1 when the target carries no positions; a bare position
// sets both to it.
func ParseRegion(target string) (name string, start, end int64) {
	start, end = -1, -1
	colon := strings.Index(target, ":")
	if colon < 0 {
		return target, start, end
	}
	name = target[:colon]
	rest := target[colon+1:]
	dash := strings.Index(rest, "-")
	if dash < 0 {
		start = atoi64(rest)
		end = start
		return name, start, end
	}
	start = atoi64(rest[:dash])
	end = atoi64(rest[dash+1:])
	return name, start, end
}

// atoi64 matches the permissive numeric parsing of the region grammar:
// leading digits parse, anything unparseable is zero.
func atoi64(s string) int64 {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	v, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
