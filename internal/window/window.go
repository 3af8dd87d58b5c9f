package window

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"portal-sandbox/internal/app"
)

// Options configures the window.
type Options struct {
	Title string
	// Scale multiplies the output size for the initial window size.
	Scale int
	TPS   int
	Debug bool
}

// Run opens a window and drives a until the window closes. a must be
// initialised; Run does not shut it down.
func Run(a *app.App, width, height int, opts Options) error {
	if opts.Title == "" {
		opts.Title = "Portal Sandbox"
	}
	if opts.Scale <= 0 {
		opts.Scale = 3
	}
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	g := &game{app: a, opts: opts, dt: 1 / float64(opts.TPS)}
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(width*opts.Scale, height*opts.Scale)
	ebiten.SetTPS(opts.TPS)
	return ebiten.RunGame(g)
}

type game struct {
	app  *app.App
	opts Options
	dt   float64

	captured     bool
	lastX, lastY int
}

func (g *game) Update() error {
	_, err := g.app.Tick(g.dt, g.poll().FrameInput())
	return err
}

// poll reads the keyboard and mouse. A click while the cursor is free
// captures it instead of firing.
func (g *game) poll() app.Controls {
	var c app.Controls
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && g.captured {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
		g.captured = false
	}

	lmb := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	rmb := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	if !g.captured {
		if lmb {
			ebiten.SetCursorMode(ebiten.CursorModeCaptured)
			g.captured = true
			g.lastX, g.lastY = ebiten.CursorPosition()
		}
		return c
	}

	c.Forward = ebiten.IsKeyPressed(ebiten.KeyW)
	c.Back = ebiten.IsKeyPressed(ebiten.KeyS)
	c.Left = ebiten.IsKeyPressed(ebiten.KeyA)
	c.Right = ebiten.IsKeyPressed(ebiten.KeyD)
	c.Sprint = ebiten.IsKeyPressed(ebiten.KeyShift)
	c.Jump = ebiten.IsKeyPressed(ebiten.KeySpace)
	c.Primary = lmb
	c.Secondary = rmb
	c.Cycle = inpututil.IsKeyJustPressed(ebiten.KeyF)
	c.Reset = inpututil.IsKeyJustPressed(ebiten.KeyR)

	x, y := ebiten.CursorPosition()
	c.MouseDX, c.MouseDY = float64(x-g.lastX), float64(y-g.lastY)
	g.lastX, g.lastY = x, y
	return c
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.WritePixels(g.app.Screen().Pix)
	if !g.opts.Debug {
		return
	}
	hud := g.app.HUD()
	pos := g.app.Viewer().Position()
	report := g.app.LastReport()
	msg := fmt.Sprintf("TPS %.0f FPS %.0f\npos %.1f %.1f %.1f\nlinks %d rendered %d\nshots %d teleports %d coins %d/%d",
		ebiten.ActualTPS(), ebiten.ActualFPS(),
		pos[0], pos[1], pos[2],
		report.Links, report.Rendered,
		hud.Shots, hud.Teleports, hud.Coins, hud.CoinsTotal)
	if !g.captured {
		msg += "\nclick to capture the mouse"
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.app.Screen().Bounds()
	return b.Dx(), b.Dy()
}
