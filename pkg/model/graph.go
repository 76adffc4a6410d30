package model

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// NodeAttrs carries the reconciled attributes of one graph node. Member and
// OwningUnit are both always populated: Member marks nodes declared by the
// unit that owns them, OwningUnit names that unit (empty for nodes that were
// only ever referenced by edges, i.e. external dependencies). Render policy
// decides which of the two it cares about.
type NodeAttrs struct {
	Label       string      `json:"label"`
	Criticality Criticality `json:"criticality"`
	Description string      `json:"description"`
	Member      bool        `json:"member"`
	OwningUnit  string      `json:"owning_unit,omitempty"`
}

// Graph is the built artifact consumed by both render backends: a node-id to
// attributes mapping plus a set of directed edges. Duplicate edges collapse
// and self-loops are allowed. The node/edge structure is mirrored into a
// gonum directed graph so the layout package can consume it directly.
type Graph struct {
	dg    *simple.DirectedGraph
	attrs map[string]*NodeAttrs
	ids   map[string]int64
	order []string

	edges    [][2]string
	edgeSeen map[[2]string]struct{}
	nextID   int64
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		dg:       simple.NewDirectedGraph(),
		attrs:    make(map[string]*NodeAttrs),
		ids:      make(map[string]int64),
		edgeSeen: make(map[[2]string]struct{}),
	}
}

// SetNode inserts a node with the given attributes, or replaces the
// attributes of an existing node. Builders call this for explicitly declared
// components; precedence over materialized defaults is the builder's
// responsibility.
func (g *Graph) SetNode(id string, attrs NodeAttrs) {
	if existing, ok := g.attrs[id]; ok {
		*existing = attrs
		return
	}
	g.attrs[id] = &attrs
	g.ids[id] = g.nextID
	g.order = append(g.order, id)
	g.dg.AddNode(simple.Node(g.nextID))
	g.nextID++
}

// EnsureNode materializes a node with default attributes if it does not
// already exist, and returns its attributes. Existing attributes are never
// touched, which is what gives explicit declarations precedence regardless
// of processing order.
func (g *Graph) EnsureNode(id string) *NodeAttrs {
	if attrs, ok := g.attrs[id]; ok {
		return attrs
	}
	g.SetNode(id, NodeAttrs{
		Label:       id,
		Criticality: CriticalityUnknown,
	})
	return g.attrs[id]
}

// Node returns the attributes for id, if present.
func (g *Graph) Node(id string) (*NodeAttrs, bool) {
	attrs, ok := g.attrs[id]
	return attrs, ok
}

// HasNode reports whether id is in the node set.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.attrs[id]
	return ok
}

// AddEdge registers the directed edge (from, to), materializing missing
// endpoints with default attributes. Registering the identical pair again is
// a no-op.
func (g *Graph) AddEdge(from, to string) {
	g.EnsureNode(from)
	g.EnsureNode(to)

	key := [2]string{from, to}
	if _, ok := g.edgeSeen[key]; ok {
		return
	}
	g.edgeSeen[key] = struct{}{}
	g.edges = append(g.edges, key)

	// simple.DirectedGraph rejects self loops; they live only in the pair
	// set, which is fine since they carry no layout information.
	if from != to {
		g.dg.SetEdge(g.dg.NewEdge(g.dg.Node(g.ids[from]), g.dg.Node(g.ids[to])))
	}
}

// HasEdge reports whether the directed edge (from, to) is registered.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edgeSeen[[2]string{from, to}]
	return ok
}

// Nodes returns all node ids in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all directed edges as (from, to) pairs in insertion order.
func (g *Graph) Edges() [][2]string {
	out := make([][2]string, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of distinct directed edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// orderedDirected overrides Nodes to iterate in insertion order.
// simple.DirectedGraph iterates its internal map in random order, and the
// layout optimizer seeds initial positions by drawing from its random
// source once per node in iteration order, so a stable order is required
// for reproducible layouts.
type orderedDirected struct {
	*simple.DirectedGraph
	ordered []graph.Node
}

func (g orderedDirected) Nodes() graph.Nodes {
	return iterator.NewOrderedNodes(g.ordered)
}

// Directed exposes the underlying gonum graph for layout, with node
// iteration fixed to insertion order.
func (g *Graph) Directed() graph.Directed {
	ordered := make([]graph.Node, len(g.order))
	for i, id := range g.order {
		ordered[i] = simple.Node(g.ids[id])
	}
	return orderedDirected{DirectedGraph: g.dg, ordered: ordered}
}

// LayoutID returns the gonum node id assigned to a graph node id.
func (g *Graph) LayoutID(id string) int64 { return g.ids[id] }
