package layout

import (
	"insightvector/internal/insight"
)

// HubID is the node id of the center node.
const HubID = "center"

// Kind distinguishes the hub from leaves.
type Kind int

const (
	KindHub Kind = iota
	KindLeaf
)

func (k Kind) String() string {
	if k == KindHub {
		return "center"
	}
	return "vector"
}

// Node is a simulated body. Positions are in layout units.
type Node struct {
	ID       string
	Label    string
	Kind     Kind
	Weight   float64
	Explored bool

	X, Y   float64
	VX, VY float64

	pinned bool
	fx, fy float64
	index  int
}

// Pinned reports whether the node is held in place.
func (n *Node) Pinned() bool { return n.pinned }

func (n *Node) pin(x, y float64) {
	n.pinned = true
	n.fx, n.fy = x, y
}

func (n *Node) unpin() { n.pinned = false }

// Link joins the hub to one leaf.
type Link struct {
	Source, Target *Node
}

// Graph is the star graph derived from one result.
type Graph struct {
	Nodes []*Node
	Links []*Link
	byID  map[string]*Node
}

// Build creates a hub labelled center plus one leaf per vector. Leaves whose
// keyword is in explored are flagged. Vectors sharing an id collapse onto the
// first occurrence so node identity stays unique.
func Build(center string, vectors []insight.Vector, explored insight.Explored) *Graph {
	g := &Graph{byID: make(map[string]*Node, len(vectors)+1)}
	hub := &Node{ID: HubID, Label: center, Kind: KindHub, Weight: 1}
	g.add(hub)

	for _, v := range vectors {
		if _, dup := g.byID[v.ID]; dup || v.ID == "" {
			continue
		}
		leaf := &Node{ID: v.ID, Label: v.Keyword, Kind: KindLeaf, Weight: v.Weight}
		if explored != nil {
			leaf.Explored = explored.Has(v.Keyword)
		}
		g.add(leaf)
		g.Links = append(g.Links, &Link{Source: hub, Target: leaf})
	}
	return g
}

func (g *Graph) add(n *Node) {
	n.index = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	g.byID[n.ID] = n
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Leaves returns the number of leaf nodes.
func (g *Graph) Leaves() int { return len(g.Nodes) - 1 }

// Annotate refreshes the explored flags against a new explored set.
func (g *Graph) Annotate(explored insight.Explored) {
	for _, n := range g.Nodes {
		if n.Kind == KindLeaf {
			n.Explored = explored != nil && explored.Has(n.Label)
		}
	}
}
