package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// extension priority: TGA keeps alpha, PNG may, JPEG never does.
var extRank = map[string]int{".tga": 3, ".png": 2, ".jpg": 1, ".jpeg": 1}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]string)}
}

// BuildIndex scans dir and its subdirectories for TGA, PNG and JPEG files.
// When several files share a stem the one most likely to carry alpha wins.
func BuildIndex(dir string) *Index {
	idx := NewIndex()
	if dir == "" {
		return idx
	}
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		idx.Add(path)
		return nil
	})
	return idx
}

// Add indexes a single file. Unsupported extensions are ignored.
func (idx *Index) Add(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	rank, ok := extRank[ext]
	if !ok {
		return
	}
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	existing, exists := idx.entries[stem]
	if !exists || rank > extRank[strings.ToLower(filepath.Ext(existing))] {
		idx.entries[stem] = path
	}
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
// Names may carry a directory prefix or extension ("walls\\tile.png" → "tile").
func (idx *Index) ResolvePath(texName string) (string, bool) {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
