package portal

import (
	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
	"portal-sandbox/internal/scene"
)

// SyncCamera derives the virtual camera of link: the viewer carried through
// the source and out of the destination. Projection intrinsics are copied
// from the viewer so resizes and FOV changes apply the same frame. The
// camera clips at the destination plane so the wall hosting it does not
// block the view.
func SyncCamera(link Link, viewerWorld mgl64.Mat4, proj scene.Projection) scene.Camera {
	m := link.Transform().Mul4(viewerWorld)
	pos, rot, scale := mathutil.Decompose(m)
	return scene.Camera{
		World:      mathutil.Compose(pos, rot, scale),
		Projection: proj,
		Clip:       scene.ClipPlaneAt(link.Dest.Position, link.Dest.Normal),
		HasClip:    true,
	}
}
