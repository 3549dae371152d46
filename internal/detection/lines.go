package detection

import (
	"image"
	"math"

	"github.com/ironsheep/glyptodon/internal/geometry"
	"github.com/ironsheep/glyptodon/internal/imaging"
)

// DetectLines finds the text lines of a page. Each line is the band of rows
// holding one line of ink, tightened to the ink's horizontal extent, so the
// result is a band line rather than a stroke. Lines are sorted top to bottom
// and indexed from 1.
func DetectLines(img image.Image, opts Options) ([]geometry.Line, error) {
	p, err := newPage(img, opts)
	if err != nil {
		return nil, err
	}
	return p.lines(), nil
}

// page is a binarized scan with the settings used to analyze it.
type page struct {
	bin    *image.Gray
	origin image.Point
	level  uint8
	opts   Options
}

func newPage(img image.Image, opts Options) (*page, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	level := opts.Threshold
	if level == 0 {
		level = imaging.OtsuLevel(img)
	}
	// Analysis runs in zero-based coordinates; origin maps results back.
	bin := imaging.Binarize(img, level)
	origin := bin.Rect.Min
	bin.Rect = bin.Rect.Sub(origin)

	return &page{
		bin:    bin,
		origin: origin,
		level:  level,
		opts:   opts,
	}, nil
}

func (p *page) lines() []geometry.Line {
	bands := p.bands()
	lines := make([]geometry.Line, 0, len(bands))
	for _, b := range bands {
		b = b.Add(p.origin)
		lines = append(lines, geometry.NewLine(float64(b.Min.X), float64(b.Min.Y), float64(b.Max.X), float64(b.Max.Y)))
	}
	return geometry.SortLines(lines)
}

// bands returns the ink bands of the page in binarized-image coordinates,
// top to bottom.
func (p *page) bands() []image.Rectangle {
	rows, _ := imaging.InkProfile(p.bin)
	width := p.bin.Bounds().Dx()
	minInk := max(1, int(math.Ceil(p.opts.MinRowInk*float64(width))))

	var out []image.Rectangle
	flush := func(y0, y1 int) {
		if y1-y0 < p.opts.MinLineHeight {
			return
		}
		if r, ok := inkExtent(p.bin, image.Rect(0, y0, width, y1)); ok {
			out = append(out, r)
		}
	}

	start, last := -1, -1
	for y, n := range rows {
		if n < minInk {
			continue
		}
		if start >= 0 && y-last-1 > p.opts.MaxRowGap {
			flush(start, last+1)
			start = -1
		}
		if start < 0 {
			start = y
		}
		last = y
	}
	if start >= 0 {
		flush(start, last+1)
	}
	return out
}

// inkExtent returns the smallest rectangle inside r holding all of r's ink.
func inkExtent(bin *image.Gray, r image.Rectangle) (image.Rectangle, bool) {
	r = r.Intersect(bin.Bounds())
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := -1, -1
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := bin.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			if bin.Pix[off+x-r.Min.X] != imaging.Ink {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
