// Package imaging provides the page image operations behind annotation:
// loading and caching page scans, cropping annotation regions, rendering
// annotation overlays and preparing images for layout detection and OCR.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward. Annotation coordinates are float64 page pixels as stored
// by the geometry package.
//
// # Coordinate System
//
// Annotation regions are converted to pixel rectangles by flooring the top-left
// corner and ceiling the bottom-right corner, so a region always covers every
// pixel it touches. Regions are clipped to the image bounds; a region that lies
// entirely outside the image is an error.
//
// # Thread Safety
//
// The PageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images. Images
// returned by the cache are shared and must not be modified.
//
// # Overlays
//
// RenderOverlay draws the lines and boxes of a page in a palette with one
// distinct hue per line, so boxes can be matched to their line at a glance.
// Boxes that belong to no line are drawn in a neutral color. The palette is
// generated with go-colorful in HSV space and is deterministic.
//
// # Preprocessing
//
// Binarize converts a scan to black ink on white using bild's grayscale and
// threshold filters. With a zero level the threshold is chosen by Otsu's method
// from bild's histogram of the grayscale image.
//
// # Error Handling
//
// Functions return coded errors from the errors package:
//   - NOT_FOUND when a page image does not exist
//   - INVALID_IMAGE when a file cannot be decoded
//   - INVALID_INPUT for regions outside the image or bad options
//   - IO_ERROR for other filesystem failures
//
// # Performance Considerations
//
// For repeated operations on the same page, use PageCache to avoid redundant
// disk reads. Large scans may consume significant memory when cached; evict a
// page when its file is replaced.
package imaging
