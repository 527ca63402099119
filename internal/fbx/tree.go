package fbx

// NodeID addresses a node in a Tree.
type NodeID int

// NoNode is the parent of root-level nodes.
const NoNode NodeID = -1

// Node is one decoded node record.
type Node struct {
	Name      string
	AttrCount int
	AttrStart int
	Parent    NodeID
	Children  []NodeID
	// Sentinel marks the synthetic header and footer nodes.
	Sentinel bool
}

// Tree is an arena of nodes. Roots and children are kept in insertion
// order, which is stream order.
type Tree struct {
	nodes []Node
	roots []NodeID
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Append adds a node under parent, or at root level when parent is NoNode.
func (t *Tree) Append(parent NodeID, name string, count, start int) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Name:      name,
		AttrCount: count,
		AttrStart: start,
		Parent:    parent,
	})
	if parent == NoNode {
		t.roots = append(t.roots, id)
	} else {
		p := &t.nodes[parent]
		p.Children = append(p.Children, id)
	}
	return id
}

// AppendSentinel adds a root-level marker node without attributes.
func (t *Tree) AppendSentinel(name string) NodeID {
	id := t.Append(NoNode, name, 0, 0)
	t.nodes[id].Sentinel = true
	return id
}

// Len reports the number of nodes, sentinels included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given id. It panics on an id the tree
// did not hand out.
func (t *Tree) Node(id NodeID) Node {
	return t.nodes[id]
}

// Roots returns the root-level nodes in stream order.
func (t *Tree) Roots() []NodeID {
	return append([]NodeID(nil), t.roots...)
}

// Path returns the names from the root down to id.
func (t *Tree) Path(id NodeID) []string {
	var path []string
	for cur := id; cur != NoNode; cur = t.nodes[cur].Parent {
		path = append(path, t.nodes[cur].Name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Walk visits every node depth-first in stream order. Returning false from
// fn stops the walk.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	var visit func(id NodeID, depth int) bool
	visit = func(id NodeID, depth int) bool {
		if !fn(id, depth) {
			return false
		}
		for _, child := range t.nodes[id].Children {
			if !visit(child, depth+1) {
				return false
			}
		}
		return true
	}
	for _, root := range t.roots {
		if !visit(root, 0) {
			return
		}
	}
}
