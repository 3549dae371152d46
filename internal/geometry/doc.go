// Package geometry implements the annotation geometry of a manuscript page:
// bounding boxes drawn around words or glyph groups, and lines drawn through
// each text line.
//
// # Coordinate System
//
// Coordinates are page-image pixels stored as float64, so shapes drawn at
// sub-pixel precision survive persistence:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward, Y increases downward
//   - (X0, Y0) is the top-left corner, (X1, Y1) the bottom-right corner
//
// # Ordering
//
// Both entity kinds are ordered top-to-bottom by their vertical midpoint
// (Y0+Y1)/2. Sorting is stable, so entities sharing a midpoint keep their
// input order, and assigns dense 1-based indices.
//
// # Line Assignment
//
// A box belongs to a line when the box's midpoint falls strictly inside the
// line's band. A zero-height line has no band and is read as a stroke: it
// claims the boxes it crosses vertically. AssignLine checks a single
// candidate; AssignLines picks, for every box, the nearest accepting line.
//
// # Persistence
//
// Entities are stored as header-less CSV, one row per entity:
//
//	boxes: x0,y0,x1,y1,lineNo,index
//	lines: x0,y0,x1,y1,index
//
// Unassigned line numbers and indices are written as -1. Files are replaced
// atomically through a temporary sibling and a rename.
package geometry
