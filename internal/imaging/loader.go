package imaging

import (
	"errors"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	errs "github.com/ironsheep/glyptodon/internal/errors"
)

// PageCache provides thread-safe caching of decoded page scans to avoid
// redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once a
// page is loaded, subsequent Load() calls for the same path return the cached
// copy without disk I/O.
//
// # Memory Management
//
// Cached pages remain in memory until explicitly removed via Evict() or Clear().
// Saving new scans over existing file names must be followed by Evict() so the
// next Load() sees the new content.
//
// # Example Usage
//
//	cache := imaging.NewPageCache()
//	img, err := cache.Load("/manuscripts/codex/images/p1.png")
//	if err != nil {
//	    return err
//	}
//	// Use img...
//	cache.Evict("/manuscripts/codex/images/p1.png")
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]image.Image
}

// NewPageCache creates and initializes a new empty page cache.
func NewPageCache() *PageCache {
	return &PageCache{
		pages: make(map[string]image.Image),
	}
}

// Load retrieves a page from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: Absolute path to the page image. Supported formats are PNG, JPEG,
//     GIF, TIFF, BMP and WebP.
//
// Returns:
//   - image.Image: The decoded page. JPEG scans are rotated according to their
//     EXIF orientation so that annotation coordinates match what is displayed.
//   - error: NOT_FOUND if the file does not exist, INVALID_IMAGE if it cannot be
//     decoded, IO_ERROR otherwise.
//
// The page is cached using the exact path string provided.
func (c *PageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.pages[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, classifyOpenError(path, err)
	}

	c.mu.Lock()
	c.pages[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all pages from the cache.
func (c *PageCache) Clear() {
	c.mu.Lock()
	c.pages = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific page from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *PageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.pages, path)
	c.mu.Unlock()
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

func classifyOpenError(path string, err error) error {
	name := filepath.Base(path)
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errs.Wrap(errs.ErrCodeNotFound, err, name, "page image does not exist")
	case errors.As(err, &pathErr):
		return errs.Wrap(errs.ErrCodeIO, err, name, "failed to open page image")
	default:
		return errs.Wrap(errs.ErrCodeInvalidImage, err, name, "failed to decode page image")
	}
}

// PageInfo contains metadata about a page scan.
type PageInfo struct {
	// Name is the image file name, which identifies the page.
	Name string `json:"name"`

	// Width is the page width in pixels after orientation is applied.
	Width int `json:"width"`

	// Height is the page height in pixels after orientation is applied.
	Height int `json:"height"`

	// Format is the format sniffed from the file contents, such as "png",
	// "jpeg" or "tiff". The file extension is not consulted.
	Format string `json:"format"`

	// HasAlpha indicates whether the stored color model carries transparency.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadPageInfo loads a page into the cache (if not already cached) and returns
// its dimensions, sniffed format and file size.
func LoadPageInfo(cache *PageCache, path string) (*PageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, classifyOpenError(path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, filepath.Base(path), "failed to stat page image")
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidImage, err, filepath.Base(path), "failed to read image header")
	}

	bounds := img.Bounds()
	return &PageInfo{
		Name:          filepath.Base(path),
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		HasAlpha:      hasAlpha(cfg.ColorModel),
		FileSizeBytes: stat.Size(),
	}, nil
}

func hasAlpha(m color.Model) bool {
	switch m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
