package geometry

import (
	"image"
	"math"
)

// Unassigned marks a line number or index that has not been computed yet.
const Unassigned = -1

// BBox is a rectangular annotation region on a page image.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`

	// LineNo is the Index of the Line this box belongs to, or Unassigned.
	LineNo int `json:"line_no"`

	// Index is the 1-based rank among the page's boxes after sorting, or Unassigned.
	Index int `json:"index"`
}

// NewBBox creates a box with unassigned line number and index.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1, LineNo: Unassigned, Index: Unassigned}
}

// Midpoint returns the vertical center of the box.
func (b BBox) Midpoint() float64 {
	return (b.Y0 + b.Y1) / 2
}

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 {
	return math.Abs(b.Y0 - b.Y1)
}

// WithIndex returns a copy of the box carrying index i.
func (b BBox) WithIndex(i int) BBox {
	b.Index = i
	return b
}

// Normalize returns the box with its corners ordered so that X0 <= X1 and
// Y0 <= Y1. Shapes dragged upward or leftward arrive with swapped corners.
func (b BBox) Normalize() BBox {
	if b.X0 > b.X1 {
		b.X0, b.X1 = b.X1, b.X0
	}
	if b.Y0 > b.Y1 {
		b.Y0, b.Y1 = b.Y1, b.Y0
	}
	return b
}

// Rect returns the smallest integer pixel rectangle covering the box.
func (b BBox) Rect() image.Rectangle {
	n := b.Normalize()
	return image.Rect(
		int(math.Floor(n.X0)), int(math.Floor(n.Y0)),
		int(math.Ceil(n.X1)), int(math.Ceil(n.Y1)),
	)
}

// Line is a horizontal band grouping the boxes of one text line. Lines are
// usually drawn as a stroke through the text, so Y0 and Y1 may be equal.
type Line struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`

	// Index is the 1-based rank top-to-bottom after sorting, or Unassigned.
	Index int `json:"index"`
}

// NewLine creates a line with an unassigned index.
func NewLine(x0, y0, x1, y1 float64) Line {
	return Line{X0: x0, Y0: y0, X1: x1, Y1: y1, Index: Unassigned}
}

// Midpoint returns the vertical center of the line.
func (l Line) Midpoint() float64 {
	return (l.Y0 + l.Y1) / 2
}

// Height returns the vertical extent of the line's band.
func (l Line) Height() float64 {
	return math.Abs(l.Y0 - l.Y1)
}

// WithIndex returns a copy of the line carrying index i.
func (l Line) WithIndex(i int) Line {
	l.Index = i
	return l
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
