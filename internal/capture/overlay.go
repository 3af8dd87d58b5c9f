package capture

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// HUD is the counter block burned into captured frames.
type HUD struct {
	Tick       int
	Shots      int
	Teleports  int
	Coins      int
	CoinsTotal int
}

// Lines formats the counters one per line.
func (h HUD) Lines() []string {
	return []string{
		fmt.Sprintf("tick %d", h.Tick),
		fmt.Sprintf("shots %d", h.Shots),
		fmt.Sprintf("teleports %d", h.Teleports),
		fmt.Sprintf("coins %d/%d", h.Coins, h.CoinsTotal),
	}
}

var (
	hudBack = color.NRGBA{R: 0x06, G: 0x09, B: 0x15, A: 0xb0}
	hudText = color.NRGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff}
)

const hudPad = 3

// Overlay draws lines in the top-left corner of img on a dark panel.
func Overlay(img *image.NRGBA, lines []string) {
	if len(lines) == 0 {
		return
	}
	face := basicfont.Face7x13
	width := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > width {
			width = w
		}
	}
	lineH := face.Metrics().Height.Ceil()
	b := img.Bounds()
	panel := image.Rect(b.Min.X, b.Min.Y, b.Min.X+width+2*hudPad, b.Min.Y+lineH*len(lines)+2*hudPad).Intersect(b)
	draw.Draw(img, panel, image.NewUniform(hudBack), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(hudText),
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	for i, l := range lines {
		d.Dot = fixed.P(b.Min.X+hudPad, b.Min.Y+hudPad+ascent+i*lineH)
		d.DrawString(l)
	}
}
