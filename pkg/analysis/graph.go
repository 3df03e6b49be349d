// Package analysis derives structural insights from a board's link graph:
// degrees, components, cycles, and a PageRank-based notion of which cards
// anchor the board. Boards are small, so everything is computed eagerly.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/mune-tada/corkboard/pkg/metrics"
	"github.com/mune-tada/corkboard/pkg/model"
)

// Stats holds the results of analyzing one board.
type Stats struct {
	NodeCount int
	EdgeCount int
	Density   float64

	// Per-card degrees, keyed by card id.
	OutDegree map[string]int
	InDegree  map[string]int

	// Components groups card ids by weakly connected component, largest
	// first. Isolated cards form single-element components.
	Components [][]string

	// Cycles lists strongly connected components with more than one card.
	Cycles [][]string

	// TopologicalOrder is set only when the graph is acyclic.
	TopologicalOrder []string

	// PageRank scores, keyed by card id. Links are treated as endorsements
	// of their target.
	PageRank map[string]float64
}

// Isolated returns the ids of cards with no links at all.
func (s *Stats) Isolated() []string {
	var out []string
	for _, comp := range s.Components {
		if len(comp) == 1 {
			id := comp[0]
			if s.OutDegree[id] == 0 && s.InDegree[id] == 0 {
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}

// TopByPageRank returns up to n card ids ordered by descending rank. Ties
// break on id for stable output.
func (s *Stats) TopByPageRank(n int) []string {
	ids := make([]string, 0, len(s.PageRank))
	for id := range s.PageRank {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if s.PageRank[ids[i]] != s.PageRank[ids[j]] {
			return s.PageRank[ids[i]] > s.PageRank[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if n < len(ids) {
		ids = ids[:n]
	}
	return ids
}

// HasCycles reports whether any link cycle exists.
func (s *Stats) HasCycles() bool { return len(s.Cycles) > 0 }

// Analyzer builds the gonum graph for one board.
type Analyzer struct {
	g        *simple.DirectedGraph
	idToNode map[string]int64
	nodeToID map[int64]string
}

// NewAnalyzer builds the link graph from a board. Links whose endpoints are
// not both present are skipped; they carry no structural information.
func NewAnalyzer(b *model.Board) *Analyzer {
	g := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(b.Cards))
	nodeToID := make(map[int64]string, len(b.Cards))

	for i := range b.Cards {
		n := g.NewNode()
		g.AddNode(n)
		idToNode[b.Cards[i].ID] = n.ID()
		nodeToID[n.ID()] = b.Cards[i].ID
	}

	for i := range b.Links {
		l := b.Links[i]
		u, okFrom := idToNode[l.FromID]
		v, okTo := idToNode[l.ToID]
		if !okFrom || !okTo || u == v {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(u), g.Node(v)))
	}

	return &Analyzer{g: g, idToNode: idToNode, nodeToID: nodeToID}
}

// Analyze computes all stats.
func (a *Analyzer) Analyze() *Stats {
	nodeCount := len(a.idToNode)
	edgeCount := a.g.Edges().Len()

	stats := &Stats{
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
		OutDegree: make(map[string]int, nodeCount),
		InDegree:  make(map[string]int, nodeCount),
		PageRank:  make(map[string]float64, nodeCount),
	}
	if nodeCount == 0 {
		return stats
	}
	if nodeCount > 1 {
		stats.Density = float64(edgeCount) / float64(nodeCount*(nodeCount-1))
	}

	for id, n := range a.idToNode {
		stats.OutDegree[id] = a.g.From(n).Len()
		stats.InDegree[id] = a.g.To(n).Len()
	}

	stats.Components = a.components()
	stats.Cycles = a.cycles()

	if len(stats.Cycles) == 0 {
		if sorted, err := topo.Sort(a.g); err == nil {
			order := make([]string, 0, len(sorted))
			for _, n := range sorted {
				order = append(order, a.nodeToID[n.ID()])
			}
			stats.TopologicalOrder = order
		}
	}

	for n, score := range network.PageRank(a.g, 0.85, 1e-6) {
		stats.PageRank[a.nodeToID[n]] = score
	}

	return stats
}

// components finds weakly connected components via an undirected projection.
func (a *Analyzer) components() [][]string {
	u := simple.NewUndirectedGraph()
	nodes := a.g.Nodes()
	for nodes.Next() {
		u.AddNode(simple.Node(nodes.Node().ID()))
	}
	edges := a.g.Edges()
	for edges.Next() {
		e := edges.Edge()
		u.SetEdge(u.NewEdge(u.Node(e.From().ID()), u.Node(e.To().ID())))
	}

	var out [][]string
	for _, comp := range topo.ConnectedComponents(u) {
		ids := make([]string, 0, len(comp))
		for _, n := range comp {
			ids = append(ids, a.nodeToID[n.ID()])
		}
		sort.Strings(ids)
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}

// cycles returns strongly connected components with more than one member.
func (a *Analyzer) cycles() [][]string {
	var out [][]string
	for _, scc := range topo.TarjanSCC(a.g) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, a.nodeToID[n.ID()])
		}
		sort.Strings(ids)
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Analyze is the convenience entry point for one board.
func Analyze(b *model.Board) *Stats {
	defer metrics.Timer(metrics.GraphAnalysis)()
	return NewAnalyzer(b).Analyze()
}
