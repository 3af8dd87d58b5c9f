package capture

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/webp"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestDownsample(t *testing.T) {
	c := color.NRGBA{R: 40, G: 200, B: 90, A: 255}
	src := solid(64, 36, c)

	got := Downsample(src, 32, 18)
	if b := got.Bounds(); b.Dx() != 32 || b.Dy() != 18 {
		t.Fatalf("Downsample() size = %v, want 32x18", b)
	}
	if px := got.NRGBAAt(16, 9); px != c {
		t.Errorf("Downsample() center = %v, want %v", px, c)
	}
	if same := Downsample(src, 64, 36); same != src {
		t.Error("Downsample() to the same size should return the input")
	}
}

func TestOverlayDrawsInCorner(t *testing.T) {
	bg := color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	img := solid(160, 90, bg)
	Overlay(img, HUD{Tick: 12, Shots: 3, Teleports: 1, Coins: 2, CoinsTotal: 6}.Lines())

	if img.NRGBAAt(1, 1) == bg {
		t.Error("Overlay() left the panel corner untouched")
	}
	if img.NRGBAAt(150, 85) != bg {
		t.Error("Overlay() drew outside the panel")
	}
}

func TestWriterWritesFramesAndManifest(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(Options{Dir: dir, Width: 32, Height: 18, Workers: 2, Overlay: true})
	if err != nil {
		t.Fatal(err)
	}

	frames := []Frame{
		{Tick: 2, Slot: MainView, Image: solid(64, 36, color.NRGBA{R: 255, A: 255}), Viewer: mgl64.Vec3{1, 2, 3}, HUD: HUD{Tick: 2, Shots: 1}},
		{Tick: 1, Slot: 1, Image: solid(32, 18, color.NRGBA{G: 255, A: 255})},
		{Tick: 1, Slot: MainView, Image: solid(64, 36, color.NRGBA{B: 255, A: 255})},
	}
	for _, f := range frames {
		if err := w.Submit(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if w.Written() != 3 {
		t.Errorf("Written() = %d, want 3", w.Written())
	}

	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	wantNames := []string{"frame_000001.webp", "portal_1_000001.webp", "frame_000002.webp"}
	if len(entries) != len(wantNames) {
		t.Fatalf("manifest has %d entries, want %d", len(entries), len(wantNames))
	}
	for i, e := range entries {
		if e.Image != wantNames[i] {
			t.Errorf("entries[%d].Image = %q, want %q", i, e.Image, wantNames[i])
		}
	}
	if entries[2].Viewer != [3]float64{1, 2, 3} || entries[2].Shots != 1 {
		t.Errorf("entries[2] = %+v", entries[2])
	}

	f, err := os.Open(filepath.Join(dir, "portal_1_000001.webp"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := webp.Decode(f)
	if err != nil {
		t.Fatalf("webp.Decode() = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 18 {
		t.Errorf("decoded size = %v, want 32x18", b)
	}
	r, g, _, _ := img.At(16, 9).RGBA()
	if r>>8 != 0 || g>>8 != 255 {
		t.Errorf("decoded pixel = %v, want green", img.At(16, 9))
	}
}

func TestWriterClosed(t *testing.T) {
	w, err := NewWriter(Options{Dir: t.TempDir(), Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Submit(Frame{Image: solid(2, 2, color.NRGBA{A: 255})}); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() after Close = %v, want ErrClosed", err)
	}
	if err := w.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() = %v, want ErrClosed", err)
	}
}

func TestWriterRejectsEmptyFrame(t *testing.T) {
	w, err := NewWriter(Options{Dir: t.TempDir(), Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Close() })
	if err := w.Submit(Frame{Tick: 4}); err == nil {
		t.Error("Submit() without image = nil, want error")
	}
}
