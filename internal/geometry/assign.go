package geometry

import "math"

// AssignLine decides whether box belongs to line and, if so, sets box.LineNo
// to line.Index.
//
// A line with vertical extent is a band: the box is accepted when its
// midpoint lies strictly inside the band's span. A zero-height line is a
// stroke drawn through the text: the box is accepted when the stroke lies
// strictly inside the box's span. A box of zero height is never crossed.
// Lines that have not been sorted (Index below 1) are rejected. On rejection
// the box is left untouched.
func AssignLine(box *BBox, line Line) bool {
	if box == nil || line.Index < 1 {
		return false
	}
	accepted := boxWithinLine(*box, line)
	if line.Height() == 0 {
		accepted = lineCrossesBox(*box, line)
	}
	if !accepted {
		return false
	}
	box.LineNo = line.Index
	return true
}

func lineCrossesBox(b BBox, l Line) bool {
	return within(l.Midpoint(), b.Y0, b.Y1)
}

func boxWithinLine(b BBox, l Line) bool {
	return within(b.Midpoint(), l.Y0, l.Y1)
}

// within reports whether y lies strictly between edges a and b.
func within(y, a, b float64) bool {
	span := math.Abs(a - b)
	return span > math.Abs(y-a) && span > math.Abs(y-b)
}

// AssignLines assigns every box in place to its owning line and reports how
// many boxes found a line. Each box is checked against all candidate lines;
// among the accepting lines the one whose midpoint is nearest the box's
// midpoint wins, the earlier line on ties. Boxes with no accepting line get
// LineNo = Unassigned.
func AssignLines(boxes []BBox, lines []Line) (assigned int) {
	for i := range boxes {
		boxes[i].LineNo = Unassigned

		best := -1
		bestDist := math.Inf(1)
		for j, line := range lines {
			trial := boxes[i]
			if !AssignLine(&trial, line) {
				continue
			}
			dist := math.Abs(line.Midpoint() - boxes[i].Midpoint())
			if dist < bestDist {
				best, bestDist = j, dist
			}
		}

		if best >= 0 {
			boxes[i].LineNo = lines[best].Index
			assigned++
		}
	}
	return assigned
}

// BoxesOnLine returns the boxes assigned to the line with the given index,
// in their current order.
func BoxesOnLine(boxes []BBox, index int) []BBox {
	out := make([]BBox, 0)
	for _, b := range boxes {
		if b.LineNo == index {
			out = append(out, b)
		}
	}
	return out
}
