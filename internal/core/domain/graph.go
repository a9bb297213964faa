package domain

import (
	"sync"

	"go.trai.ch/zerr"
)

// NodeGraph holds all nodes of a build, keyed by name.
// Insertion order is preserved so walks are deterministic.
type NodeGraph struct {
	mu    sync.RWMutex
	nodes map[InternedString]Node
	order []InternedString
}

// NewNodeGraph creates a new empty NodeGraph.
func NewNodeGraph() *NodeGraph {
	return &NodeGraph{
		nodes: make(map[InternedString]Node),
	}
}

// FindNode returns the node with the given name, or nil if none exists.
func (g *NodeGraph) FindNode(name string) Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[NewInternedString(name)]
}

// AddNode adds a node to the graph.
// It returns an error if a node with the same name already exists.
func (g *NodeGraph) AddNode(n Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[n.Name()]; exists {
		return zerr.With(ErrNodeAlreadyExists, "node", n.Name().String())
	}
	g.nodes[n.Name()] = n
	g.order = append(g.order, n.Name())
	return nil
}

// FileNodeFor finds or creates the node standing for the file at path.
// An existing exec node satisfies the lookup since it produces its output
// file. A collision with any other node kind is a configuration error.
func (g *NodeGraph) FileNodeFor(path string) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := NewInternedString(path)
	if existing, ok := g.nodes[name]; ok {
		if !ProducesFile(existing) {
			return nil, zerr.With(zerr.With(ErrNotAFileNode, "path", path), "kind", existing.Kind().String())
		}
		return existing, nil
	}

	n := &FileNode{name: name}
	g.nodes[name] = n
	g.order = append(g.order, name)
	return n, nil
}

// DirListFor finds or creates the listing node for the given scan
// specification. Scans with identical configuration share one node.
func (g *NodeGraph) DirListFor(spec DirScanSpec) (*DirListNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := NewInternedString(spec.ListingName())
	if existing, ok := g.nodes[name]; ok {
		dln, ok := existing.(*DirListNode)
		if !ok {
			return nil, zerr.With(zerr.With(ErrNotAFileNode, "path", spec.Path), "kind", existing.Kind().String())
		}
		return dln, nil
	}

	n := &DirListNode{name: name, spec: spec}
	g.nodes[name] = n
	g.order = append(g.order, name)
	return n, nil
}

// ExecNodes returns all exec nodes in insertion order.
func (g *NodeGraph) ExecNodes() []*ExecNode {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var result []*ExecNode
	for _, name := range g.order {
		if en, ok := g.nodes[name].(*ExecNode); ok {
			result = append(result, en)
		}
	}
	return result
}

// DirListNodes returns all listing nodes in insertion order.
func (g *NodeGraph) DirListNodes() []*DirListNode {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var result []*DirListNode
	for _, name := range g.order {
		if dln, ok := g.nodes[name].(*DirListNode); ok {
			result = append(result, dln)
		}
	}
	return result
}

// NodeCount returns the number of nodes in the graph.
func (g *NodeGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}
