// Package detection proposes an initial layout for a page scan: text lines
// and the word boxes on each line.
//
// Proposals are a starting point for manual annotation. They are returned as
// geometry.Line and geometry.BBox values, sorted and assigned exactly as if
// the user had drawn them, so they can be saved, corrected and overlaid
// without conversion.
//
// # Algorithm Overview
//
// Both detectors work on projection profiles of a binarized page:
//
//  1. Binarization: Convert to grayscale and threshold (Otsu by default)
//  2. Line bands: Count ink pixels per row; consecutive inked rows form a band,
//     short blank runs inside a band are bridged, thin bands are dropped
//  3. Word boxes: Inside each band count ink pixels per column; blank column
//     runs wider than MinGap separate words
//  4. Tightening: Every band and box is shrunk to the ink it contains
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Regions cover [X0,X1) x [Y0,Y1) in pixels
//
// # Limitations
//
// Projection profiles assume roughly horizontal, non-overlapping lines.
// Skewed scans, marginalia and lines with touching ascenders and descenders
// produce merged or split bands that have to be corrected by hand.
package detection
