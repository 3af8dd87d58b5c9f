package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/HugoSmits86/nativewebp"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("capture: writer closed")

// Frame is one image queued for encoding. The writer owns Image once it is
// submitted; callers pass a copy of their render target.
type Frame struct {
	Tick   int
	Slot   int // -1 for the main view
	Image  *image.NRGBA
	Viewer mgl64.Vec3
	HUD    HUD
}

// MainView is the Slot of a main-view frame.
const MainView = -1

func (f Frame) name() string {
	if f.Slot == MainView {
		return fmt.Sprintf("frame_%06d.webp", f.Tick)
	}
	return fmt.Sprintf("portal_%d_%06d.webp", f.Slot, f.Tick)
}

// Options configures a Writer.
type Options struct {
	Dir string
	// Width and Height, when set, downsample larger frames to this size.
	Width, Height int
	Workers       int
	// Overlay burns the HUD counters into main-view frames.
	Overlay bool
}

// ManifestEntry describes one written image.
type ManifestEntry struct {
	Tick      int        `json:"tick"`
	Slot      int        `json:"slot"`
	Image     string     `json:"image"`
	Viewer    [3]float64 `json:"viewer"`
	Shots     int        `json:"shots"`
	Teleports int        `json:"teleports"`
	Coins     int        `json:"coins"`
}

// Writer encodes frames to WebP on a worker pool and records a manifest.
type Writer struct {
	opts Options
	jobs chan Frame
	wg   sync.WaitGroup

	sendMu sync.Mutex
	closed bool

	mu      sync.Mutex
	entries []ManifestEntry
	errs    []error

	written atomic.Int64
}

// NewWriter creates opts.Dir and starts the workers.
func NewWriter(opts Options) (*Writer, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("capture: create %s: %w", opts.Dir, err)
	}
	w := &Writer{opts: opts, jobs: make(chan Frame, opts.Workers*2)}
	for i := 0; i < opts.Workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for f := range w.jobs {
				w.process(f)
			}
		}()
	}
	return w, nil
}

// Submit queues f. It blocks while the queue is full.
func (w *Writer) Submit(f Frame) error {
	if f.Image == nil {
		return fmt.Errorf("capture: frame %d has no image", f.Tick)
	}
	w.sendMu.Lock()
	defer w.sendMu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.jobs <- f
	return nil
}

// Written returns the number of images encoded so far.
func (w *Writer) Written() int { return int(w.written.Load()) }

// Close drains the queue, writes manifest.json and returns every encode
// error joined.
func (w *Writer) Close() error {
	w.sendMu.Lock()
	if w.closed {
		w.sendMu.Unlock()
		return ErrClosed
	}
	w.closed = true
	close(w.jobs)
	w.sendMu.Unlock()

	w.wg.Wait()

	sort.Slice(w.entries, func(i, j int) bool {
		a, b := w.entries[i], w.entries[j]
		if a.Tick != b.Tick {
			return a.Tick < b.Tick
		}
		return a.Slot < b.Slot
	})
	if err := WriteManifest(filepath.Join(w.opts.Dir, "manifest.json"), w.entries); err != nil {
		w.errs = append(w.errs, err)
	}
	return errors.Join(w.errs...)
}

func (w *Writer) process(f Frame) {
	img := Downsample(f.Image, w.opts.Width, w.opts.Height)
	if w.opts.Overlay && f.Slot == MainView {
		if img == f.Image {
			img = cloneNRGBA(img)
		}
		Overlay(img, f.HUD.Lines())
	}

	name := f.name()
	if err := encodeFile(filepath.Join(w.opts.Dir, name), img); err != nil {
		w.mu.Lock()
		w.errs = append(w.errs, err)
		w.mu.Unlock()
		return
	}
	w.written.Add(1)

	w.mu.Lock()
	w.entries = append(w.entries, ManifestEntry{
		Tick:      f.Tick,
		Slot:      f.Slot,
		Image:     name,
		Viewer:    [3]float64(f.Viewer),
		Shots:     f.HUD.Shots,
		Teleports: f.HUD.Teleports,
		Coins:     f.HUD.Coins,
	})
	w.mu.Unlock()
}

// EncodeFile writes img to path as lossless WebP.
func EncodeFile(path string, img image.Image) error {
	return encodeFile(path, img)
}

func encodeFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: create %s: %w", path, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("capture: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("capture: close %s: %w", path, err)
	}
	return nil
}

// WriteManifest writes entries as indented JSON.
func WriteManifest(path string, entries []ManifestEntry) error {
	if entries == nil {
		entries = []ManifestEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("capture: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("capture: write %s: %w", path, err)
	}
	return nil
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
