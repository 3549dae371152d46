package geometry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/fsutil"
)

const (
	boxFields  = 6 // x0,y0,x1,y1,lineNo,index
	lineFields = 5 // x0,y0,x1,y1,index
)

// WriteBoxesCSV stores boxes as dir/fileName, one row per box, replacing any
// existing file atomically. A box with a NaN or infinite coordinate is an
// INVALID_INPUT error and nothing is written.
func WriteBoxesCSV(dir, fileName string, boxes []BBox) error {
	for i, b := range boxes {
		if !finite(b.X0, b.Y0, b.X1, b.Y1) {
			return errs.New(errs.ErrCodeInvalidInput, fmt.Sprintf("box %d", i+1), "coordinates must be finite")
		}
	}
	return writeCSV(dir, fileName, len(boxes), func(i int) []string {
		b := boxes[i]
		return []string{
			formatCoord(b.X0), formatCoord(b.Y0), formatCoord(b.X1), formatCoord(b.Y1),
			strconv.Itoa(b.LineNo), strconv.Itoa(b.Index),
		}
	})
}

// WriteLinesCSV stores lines as dir/fileName, one row per line, replacing any
// existing file atomically. Non-finite coordinates are rejected as for boxes.
func WriteLinesCSV(dir, fileName string, lines []Line) error {
	for i, l := range lines {
		if !finite(l.X0, l.Y0, l.X1, l.Y1) {
			return errs.New(errs.ErrCodeInvalidInput, fmt.Sprintf("line %d", i+1), "coordinates must be finite")
		}
	}
	return writeCSV(dir, fileName, len(lines), func(i int) []string {
		l := lines[i]
		return []string{
			formatCoord(l.X0), formatCoord(l.Y0), formatCoord(l.X1), formatCoord(l.Y1),
			strconv.Itoa(l.Index),
		}
	})
}

func writeCSV(dir, fileName string, n int, row func(i int) []string) error {
	if err := errs.ValidateFileName(fileName); err != nil {
		return err
	}
	path := filepath.Join(dir, fileName)

	err := fsutil.WriteAtomic(path, 0644, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		for i := 0; i < n; i++ {
			if err := cw.Write(row(i)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, fileName, "failed to write annotation CSV")
	}
	return nil
}

// formatCoord renders the shortest decimal that parses back to v exactly.
// Whole numbers carry no fraction ("12", not "12.0").
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadBoxesCSV parses box rows (x0,y0,x1,y1,lineNo,index). A row with the
// wrong number of fields or a malformed number fails the parse with an
// INVALID_CSV error naming the row.
func ReadBoxesCSV(r io.Reader) ([]BBox, error) {
	boxes := make([]BBox, 0)
	err := readCSV(r, boxFields, func(row int, rec []string) error {
		coords, err := parseCoords(row, rec[:4])
		if err != nil {
			return err
		}
		lineNo, err := parseInt(row, "lineNo", rec[4])
		if err != nil {
			return err
		}
		index, err := parseInt(row, "index", rec[5])
		if err != nil {
			return err
		}
		boxes = append(boxes, BBox{
			X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3],
			LineNo: lineNo, Index: index,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return boxes, nil
}

// ReadLinesCSV parses line rows (x0,y0,x1,y1,index).
func ReadLinesCSV(r io.Reader) ([]Line, error) {
	lines := make([]Line, 0)
	err := readCSV(r, lineFields, func(row int, rec []string) error {
		coords, err := parseCoords(row, rec[:4])
		if err != nil {
			return err
		}
		index, err := parseInt(row, "index", rec[4])
		if err != nil {
			return err
		}
		lines = append(lines, Line{
			X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3],
			Index: index,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadBoxesCSV reads boxes from a file.
func LoadBoxesCSV(path string) ([]BBox, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, filepath.Base(path), "failed to open box CSV")
	}
	defer f.Close()
	return ReadBoxesCSV(f)
}

// LoadLinesCSV reads lines from a file.
func LoadLinesCSV(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, filepath.Base(path), "failed to open line CSV")
	}
	defer f.Close()
	return ReadLinesCSV(f)
}

func readCSV(r io.Reader, fields int, each func(row int, rec []string) error) error {
	cr := csv.NewReader(r)
	// Column count is checked per row so the error can name the row.
	cr.FieldsPerRecord = -1

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidCSV, err, rowSubject(row), "malformed CSV")
		}
		if len(rec) != fields {
			return errs.New(errs.ErrCodeInvalidCSV, rowSubject(row), "expected %d fields, got %d", fields, len(rec))
		}
		if err := each(row, rec); err != nil {
			return err
		}
	}
}

func parseCoords(row int, rec []string) ([4]float64, error) {
	var out [4]float64
	names := [4]string{"x0", "y0", "x1", "y1"}
	for i, s := range rec {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || !finite(v) {
			return out, errs.New(errs.ErrCodeInvalidCSV, rowSubject(row), "%s is not a finite number: %q", names[i], s)
		}
		out[i] = v
	}
	return out, nil
}

func parseInt(row int, name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidCSV, rowSubject(row), "%s is not an integer: %q", name, s)
	}
	return v, nil
}

func rowSubject(row int) string {
	return fmt.Sprintf("row %d", row)
}
