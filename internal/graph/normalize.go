package graph

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/psidex/kgviz/internal/lib"
)

// Normalize deep-copies the caller's nodes and edges into a Graph. Nodes without an ID
// get "node-<i>", labels default to the ID. Edges referencing an unknown node are
// logged and dropped, they never abort the pipeline.
func Normalize(nodes []Node, edges []Edge, logger *slog.Logger) *Graph {
	logger = lib.LoggerOr(logger)

	g := &Graph{
		Nodes: make([]Node, 0, len(nodes)),
		Edges: make([]Edge, 0, len(edges)),
		Src:   make([]int, 0, len(edges)),
		Dst:   make([]int, 0, len(edges)),
		index: lib.NewInterner(),
	}

	for i, raw := range nodes {
		n := raw.Clone()
		if n.ID == "" {
			n.ID = "node-" + strconv.Itoa(i)
		}
		if n.Label == "" {
			n.Label = n.ID
		}
		if _, dup := g.index.Index(n.ID); dup {
			logger.Warn("dropping duplicate node", "node", n.ID, "position", i)
			continue
		}
		g.index.Intern(n.ID)
		g.Nodes = append(g.Nodes, n)
	}

	seenEdges := lib.NewSet()
	for i, e := range edges {
		src, srcOk := g.index.Index(e.Source)
		dst, dstOk := g.index.Index(e.Target)
		if !srcOk || !dstOk {
			logger.Warn("dropping edge with unknown endpoint",
				"edge", e.ID, "source", e.Source, "target", e.Target,
				"sourceKnown", srcOk, "targetKnown", dstOk,
			)
			continue
		}

		if e.ID == "" {
			e.ID = fmt.Sprintf("%s-%s-%d", e.Source, e.Target, i)
		}
		if !seenEdges.Insert(e.ID) {
			renamed := fmt.Sprintf("%s~%d", e.ID, i)
			logger.Warn("renaming duplicate edge id", "edge", e.ID, "renamed", renamed)
			e.ID = renamed
			seenEdges.Add(renamed)
		}
		if e.Weight <= 0 {
			e.Weight = 1
		}

		g.Edges = append(g.Edges, e)
		g.Src = append(g.Src, src)
		g.Dst = append(g.Dst, dst)
	}

	return g
}

// Clone returns an independent deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
		Src:   append([]int(nil), g.Src...),
		Dst:   append([]int(nil), g.Dst...),
		index: g.index.Clone(),
	}
	for i, n := range g.Nodes {
		c.Nodes[i] = n.Clone()
	}
	copy(c.Edges, g.Edges)
	return c
}
