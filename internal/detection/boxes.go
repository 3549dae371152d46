package detection

import (
	"image"
	"math"

	"github.com/ironsheep/glyptodon/internal/geometry"
	"github.com/ironsheep/glyptodon/internal/imaging"
)

// Layout is a proposed annotation for a page.
type Layout struct {
	Lines []geometry.Line `json:"lines"`
	Boxes []geometry.BBox `json:"boxes"`

	// Threshold is the binarization level that was used.
	Threshold uint8 `json:"threshold"`
}

// Detect proposes lines and the word boxes on them for a page.
func Detect(img image.Image, opts Options) (*Layout, error) {
	p, err := newPage(img, opts)
	if err != nil {
		return nil, err
	}
	lines := p.lines()
	return &Layout{
		Lines:     lines,
		Boxes:     p.boxes(lines),
		Threshold: p.level,
	}, nil
}

// DetectBoxes splits every line into word boxes at blank column runs of at
// least MinGap pixels. Lines may be bands or strokes: a stroke is widened to
// the detected ink band it crosses, and a stroke crossing no band yields no
// boxes. Lines are sorted first; each box carries the index of the line it
// was found on, and boxes are sorted and indexed like stored boxes.
func DetectBoxes(img image.Image, lines []geometry.Line, opts Options) ([]geometry.BBox, error) {
	p, err := newPage(img, opts)
	if err != nil {
		return nil, err
	}
	return p.boxes(geometry.SortLines(lines)), nil
}

func (p *page) boxes(lines []geometry.Line) []geometry.BBox {
	var bands []image.Rectangle
	out := make([]geometry.BBox, 0)

	for _, l := range lines {
		lr := lineRect(l).Sub(p.origin)
		r := lr.Intersect(p.bin.Bounds())
		if lr.Dy() < p.opts.MinLineHeight {
			if bands == nil {
				bands = p.bands()
			}
			band, ok := bandAt(bands, int(math.Floor(l.Midpoint()))-p.origin.Y)
			if !ok {
				continue
			}
			r = image.Rect(lr.Min.X, band.Min.Y, lr.Max.X, band.Max.Y).Intersect(p.bin.Bounds())
		}

		for _, w := range p.words(r) {
			w = w.Add(p.origin)
			box := geometry.NewBBox(float64(w.Min.X), float64(w.Min.Y), float64(w.Max.X), float64(w.Max.Y))
			box.LineNo = l.Index
			out = append(out, box)
		}
	}
	return geometry.SortBoxes(out)
}

// words splits the band r into word rectangles tightened to their ink.
func (p *page) words(r image.Rectangle) []image.Rectangle {
	if r.Empty() {
		return nil
	}

	inked := make([]bool, r.Dx())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := p.bin.PixOffset(r.Min.X, y)
		for i := range inked {
			if p.bin.Pix[off+i] == imaging.Ink {
				inked[i] = true
			}
		}
	}

	var out []image.Rectangle
	flush := func(x0, x1 int) {
		if x1-x0 < p.opts.MinBoxWidth {
			return
		}
		if w, ok := inkExtent(p.bin, image.Rect(r.Min.X+x0, r.Min.Y, r.Min.X+x1, r.Max.Y)); ok {
			out = append(out, w)
		}
	}

	start, last := -1, -1
	for i, ink := range inked {
		if !ink {
			continue
		}
		if start >= 0 && i-last-1 >= p.opts.MinGap {
			flush(start, last+1)
			start = -1
		}
		if start < 0 {
			start = i
		}
		last = i
	}
	if start >= 0 {
		flush(start, last+1)
	}
	return out
}

// lineRect returns the pixel rows and columns covered by a line.
func lineRect(l geometry.Line) image.Rectangle {
	return image.Rect(
		int(math.Floor(math.Min(l.X0, l.X1))), int(math.Floor(math.Min(l.Y0, l.Y1))),
		int(math.Ceil(math.Max(l.X0, l.X1))), int(math.Ceil(math.Max(l.Y0, l.Y1))),
	)
}

func bandAt(bands []image.Rectangle, y int) (image.Rectangle, bool) {
	for _, b := range bands {
		if y >= b.Min.Y && y < b.Max.Y {
			return b, true
		}
	}
	return image.Rectangle{}, false
}
