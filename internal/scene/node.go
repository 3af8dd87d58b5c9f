package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
)

// Node is a scene graph element with a local TRS transform. A node without a
// mesh is a pure grouping node.
type Node struct {
	Name     string
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
	Visible  bool

	Mesh     *Mesh
	Material Material

	// PortalTarget marks geometry that accepts portal placement.
	PortalTarget bool

	parent   *Node
	children []*Node
}

// NewNode returns a visible node with identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
		Visible:  true,
	}
}

// NewMeshNode returns a visible node carrying geometry.
func NewMeshNode(name string, mesh *Mesh, mat Material) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	n.Material = mat
	return n
}

func (n *Node) Parent() *Node { return n.parent }

// Children returns the live child slice; callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// Add attaches child under n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
}

// Detach removes n from its parent. Detaching a root is a no-op.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Attached reports whether n is still reachable from root.
func (n *Node) Attached(root *Node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == root {
			return true
		}
	}
	return false
}

// LocalMatrix returns T·R·S for the node's own transform.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	return mathutil.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix accumulates local transforms from the root down.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// SetWorldMatrix poses the node so that its world transform equals m.
func (n *Node) SetWorldMatrix(m mgl64.Mat4) {
	local := m
	if n.parent != nil {
		local = n.parent.WorldMatrix().Inv().Mul4(m)
	}
	n.Position, n.Rotation, n.Scale = mathutil.Decompose(local)
}

// WorldPosition is the translation part of WorldMatrix.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// EffectiveVisible is false if n or any ancestor is hidden.
func (n *Node) EffectiveVisible() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.Visible {
			return false
		}
	}
	return true
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}
