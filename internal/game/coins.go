package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/scene"
)

// CollectRadius is how close the viewer must come to take a coin.
const CollectRadius = 1.1

var coinColor = color.NRGBA{R: 0xf0, G: 0xc7, B: 0x4b, A: 0xff}

// DefaultCoins are the sandbox coin positions.
var DefaultCoins = []mgl64.Vec3{
	{2.5, 1.2, -4},
	{-3.2, 1, -1.5},
	{0, 2, 3},
	{4, 1.5, 1.5},
	{-2, 3, 4.5},
	{1.5, 1, -6},
}

type coin struct {
	id   int
	base mgl64.Vec3
	node *scene.Node
	spin float64
}

// CoinField spins and bobs coins and collects them when the viewer is near.
type CoinField struct {
	coins []*coin
	board *Scoreboard
}

// NewCoinField adds one coin per position under a "coins" group node.
func NewCoinField(graph *scene.Graph, positions []mgl64.Vec3, board *Scoreboard) *CoinField {
	group := scene.NewNode("coins")
	graph.Add(group)
	f := &CoinField{board: board}
	mesh := scene.Icosahedron(0.25)
	for i, p := range positions {
		n := scene.NewMeshNode(fmt.Sprintf("coin_%d", i), mesh, scene.Material{Color: coinColor})
		n.Position = p
		group.Add(n)
		f.coins = append(f.coins, &coin{id: i, base: p, node: n})
	}
	return f
}

// Len returns the number of coins in the field.
func (f *CoinField) Len() int { return len(f.coins) }

// Update animates the coins for elapsed time t and collects any within
// CollectRadius of viewer. It returns the ids collected this call.
func (f *CoinField) Update(dt, t float64, viewer mgl64.Vec3) []int {
	var taken []int
	for _, c := range f.coins {
		active := !f.board.Collected(c.id)
		c.node.Visible = active
		if !active {
			continue
		}
		c.spin += dt * 1.5
		c.node.Rotation = mgl64.QuatRotate(c.spin, mgl64.Vec3{0, 1, 0})
		c.node.Position = mgl64.Vec3{c.base[0], c.base[1] + math.Sin(t*3+float64(c.id))*0.1, c.base[2]}
		if c.node.Position.Sub(viewer).Len() < CollectRadius && f.board.CollectCoin(c.id) {
			c.node.Visible = false
			taken = append(taken, c.id)
		}
	}
	return taken
}
