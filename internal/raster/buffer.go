package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer is a render target held as flat slices for cache locality.
// Depth stores 1/w of the nearest fragment; larger values are closer.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, cleared to -inf

	img *image.NRGBA
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Resize(w, h)
	return fb
}

// Resize reallocates the buffer for a new size. Images returned by Image
// before the call keep pointing at the old pixels.
func (fb *FrameBuffer) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	n := w * h
	fb.Width = w
	fb.Height = h
	fb.Color = make([]uint8, n*4)
	fb.ZBuf = make([]float64, n)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = math.Inf(-1)
	}
	fb.img = &image.NRGBA{Pix: fb.Color, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

// Empty reports whether the buffer has no pixels.
func (fb *FrameBuffer) Empty() bool {
	return fb == nil || fb.Width <= 0 || fb.Height <= 0
}

// Clear fills the color buffer with bg and resets depth.
func (fb *FrameBuffer) Clear(bg color.NRGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = bg.R
		fb.Color[i+1] = bg.G
		fb.Color[i+2] = bg.B
		fb.Color[i+3] = bg.A
	}
	for i := range fb.ZBuf {
		fb.ZBuf[i] = math.Inf(-1)
	}
}

// Image returns an NRGBA view sharing the color buffer. Materials use it to
// sample another target without copying.
func (fb *FrameBuffer) Image() *image.NRGBA { return fb.img }

// Snapshot returns a copy of the current pixels.
func (fb *FrameBuffer) Snapshot() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// At returns the color of pixel (x, y).
func (fb *FrameBuffer) At(x, y int) color.NRGBA {
	i := (y*fb.Width + x) * 4
	return color.NRGBA{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}
