package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/level"
	"portal-sandbox/internal/portal"
	"portal-sandbox/internal/scene"
)

func main() {
	dump := flag.String("dump", "", "Write the level as JSON to this path")
	ox := flag.Float64("ox", 0, "Ray origin X (default: spawn)")
	oy := flag.Float64("oy", 0, "Ray origin Y")
	oz := flag.Float64("oz", 0, "Ray origin Z")
	dx := flag.Float64("dx", 0, "Ray direction X")
	dy := flag.Float64("dy", 0, "Ray direction Y")
	dz := flag.Float64("dz", -1, "Ray direction Z")
	flag.Parse()

	lv, err := level.LoadOrDefault(flag.Arg(0))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if *dump != "" {
		if err := lv.Save(*dump); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *dump)
	}

	g := scene.NewGraph()
	surfaces, err := lv.Build(g, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Level %q: walls=%d, pillars=%d, props=%d, coins=%d, portals=%d\n",
		lv.Name, len(lv.Walls), len(lv.Pillars), len(lv.Props), len(lv.Coins), len(lv.Portals))
	fmt.Printf("Spawn: (%.2f, %.2f, %.2f)\n", lv.Spawn[0], lv.Spawn[1], lv.Spawn[2])

	tris := 0
	g.Root.Walk(func(n *scene.Node) bool {
		if n.Mesh != nil {
			tris += n.Mesh.Triangles()
		}
		return true
	})
	fmt.Printf("Triangles: %d\n", tris)

	fmt.Printf("Portal surfaces: %d\n", surfaces.Len())
	for _, n := range surfaces.Nodes() {
		p := n.WorldPosition()
		fmt.Printf("  %-8s pos=(%.2f, %.2f, %.2f) tris=%d\n", n.Name, p[0], p[1], p[2], n.Mesh.Triangles())
	}

	origin := lv.Spawn.Vec3()
	if *ox != 0 || *oy != 0 || *oz != 0 {
		origin = mgl64.Vec3{*ox, *oy, *oz}
	}
	ray := scene.Ray{Origin: origin, Dir: mgl64.Vec3{*dx, *dy, *dz}}
	pl, ok := portal.ResolvePlacement(surfaces, ray)
	if !ok {
		fmt.Println("Ray: miss")
		return
	}
	hit, _ := surfaces.Raycast(ray)
	fmt.Printf("Ray: hit %s at %.2f units\n", hit.Node.Name, hit.Distance)
	fmt.Printf("  portal pos=(%.3f, %.3f, %.3f) normal=(%.3f, %.3f, %.3f)\n",
		pl.Position[0], pl.Position[1], pl.Position[2], pl.Normal[0], pl.Normal[1], pl.Normal[2])
}
