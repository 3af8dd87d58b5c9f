package scene

import "github.com/go-gl/mathgl/mgl64"

// Graph owns the root of a scene.
type Graph struct {
	Root *Node
}

func NewGraph() *Graph {
	return &Graph{Root: NewNode("root")}
}

// Add attaches n directly under the root.
func (g *Graph) Add(n *Node) {
	g.Root.Add(n)
}

// VisitVisible calls fn for every effectively visible node that has geometry,
// with its accumulated world matrix.
func (g *Graph) VisitVisible(fn func(n *Node, world mgl64.Mat4)) {
	var visit func(n *Node, parent mgl64.Mat4)
	visit = func(n *Node, parent mgl64.Mat4) {
		if !n.Visible {
			return
		}
		world := parent.Mul4(n.LocalMatrix())
		if n.Mesh != nil {
			fn(n, world)
		}
		for _, c := range n.children {
			visit(c, world)
		}
	}
	visit(g.Root, mgl64.Ident4())
}

// Find returns the first node with the given name.
func (g *Graph) Find(name string) *Node {
	var found *Node
	g.Root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Attachment records an ownership transfer made by Reparent.
type Attachment struct {
	node     *Node
	original *Node
	index    int
	released bool
}

// Reparent moves node under newParent, keeping its local transform, and
// returns a handle that puts it back. Release must be called on teardown.
func (g *Graph) Reparent(node, newParent *Node) *Attachment {
	a := &Attachment{node: node, original: node.parent, index: -1}
	if p := node.parent; p != nil {
		for i, c := range p.children {
			if c == node {
				a.index = i
				break
			}
		}
	}
	newParent.Add(node)
	return a
}

// Node returns the transferred node.
func (a *Attachment) Node() *Node { return a.node }

// Release detaches the node from its temporary parent and restores it to the
// original parent at its original position among siblings. Safe to call twice.
func (a *Attachment) Release() {
	if a == nil || a.released {
		return
	}
	a.released = true
	a.node.Detach()
	p := a.original
	if p == nil {
		return
	}
	a.node.parent = p
	if a.index < 0 || a.index > len(p.children) {
		p.children = append(p.children, a.node)
		return
	}
	p.children = append(p.children, nil)
	copy(p.children[a.index+1:], p.children[a.index:])
	p.children[a.index] = a.node
}
