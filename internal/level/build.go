package level

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/scene"
	"portal-sandbox/internal/texture"
)

// ErrNoSurfaces is returned by Build when nothing in the level accepts portals.
var ErrNoSurfaces = errors.New("level: no portal surfaces")

// Surfaces is the set of portal-eligible nodes of a built level.
type Surfaces struct {
	nodes []*scene.Node
}

// NewSurfaces wraps nodes as a surface set.
func NewSurfaces(nodes ...*scene.Node) *Surfaces {
	return &Surfaces{nodes: nodes}
}

// Raycast returns the nearest hit on a visible eligible surface.
func (s *Surfaces) Raycast(ray scene.Ray) (scene.Hit, bool) {
	visible := make([]*scene.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		if n.EffectiveVisible() {
			visible = append(visible, n)
		}
	}
	return scene.Raycast(ray, visible)
}

// Nodes returns the eligible nodes.
func (s *Surfaces) Nodes() []*scene.Node { return s.nodes }

func (s *Surfaces) Len() int { return len(s.nodes) }

// Build adds the level geometry to graph under a node named after the level
// and returns its portal surfaces. textures may be nil.
func (lv *Level) Build(graph *scene.Graph, textures texture.Resolver) (*Surfaces, error) {
	if err := lv.Validate(); err != nil {
		return nil, fmt.Errorf("level: build %s: %w", lv.Name, err)
	}
	name := lv.Name
	if name == "" {
		name = "level"
	}
	root := scene.NewNode(name)
	surfaces := &Surfaces{}

	if lv.Floor.Size > 0 {
		floor := scene.NewMeshNode("floor", scene.Plane(lv.Floor.Size, lv.Floor.Size), lv.material(lv.Floor.Color, lv.Floor.Texture, textures))
		floor.Rotation = mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})
		root.Add(floor)
		if lv.Floor.Eligible {
			surfaces.nodes = append(surfaces.nodes, floor)
		}
	}

	wallMesh := scene.Box(1, 1, 0.25)
	for i, w := range lv.Walls {
		n := scene.NewMeshNode(fmt.Sprintf("wall_%d", i), wallMesh, lv.material(w.Color, w.Texture, textures))
		n.Position = w.Position.Vec3()
		n.Rotation = mgl64.QuatRotate(w.RotationY, mgl64.Vec3{0, 1, 0})
		n.Scale = w.Scale.Vec3()
		root.Add(n)
		surfaces.nodes = append(surfaces.nodes, n)
	}

	for i, p := range lv.Pillars {
		n := scene.NewMeshNode(fmt.Sprintf("pillar_%d", i), scene.Cylinder(p.Radius, p.Height, 12), lv.material(p.Color, "", nil))
		n.Position = p.Position.Vec3()
		root.Add(n)
	}

	for i, p := range lv.Props {
		var mesh *scene.Mesh
		switch p.Kind {
		case "box":
			mesh = scene.Box(p.Size, p.Size, p.Size)
		case "ico":
			mesh = scene.Icosahedron(p.Size)
		}
		n := scene.NewMeshNode(fmt.Sprintf("prop_%d", i), mesh, lv.material(p.Color, "", nil))
		n.Position = p.Position.Vec3()
		root.Add(n)
	}

	if len(surfaces.nodes) == 0 {
		return nil, fmt.Errorf("level: build %s: %w", name, ErrNoSurfaces)
	}
	graph.Add(root)
	return surfaces, nil
}

// material never fails: Validate has already checked the color, and a
// texture that does not resolve leaves the flat color.
func (lv *Level) material(hex, tex string, textures texture.Resolver) scene.Material {
	c, _ := ParseColor(hex)
	m := scene.Material{Color: c}
	if tex != "" && textures != nil {
		m.Texture = textures.Resolve(tex)
	}
	return m
}
