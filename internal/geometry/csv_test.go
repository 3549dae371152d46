package geometry

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	errs "github.com/ironsheep/glyptodon/internal/errors"
)

func TestWriteBoxesCSV_Format(t *testing.T) {
	dir := t.TempDir()
	boxes := []BBox{
		{X0: 12, Y0: 30.5, X1: 80, Y1: 61.25, LineNo: 1, Index: 1},
		NewBBox(1, 2, 3, 4),
	}

	if err := WriteBoxesCSV(dir, "p1_bboxes.csv", boxes); err != nil {
		t.Fatalf("WriteBoxesCSV failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "p1_bboxes.csv"))
	if err != nil {
		t.Fatal(err)
	}
	want := "12,30.5,80,61.25,1,1\n1,2,3,4,-1,-1\n"
	if string(data) != want {
		t.Errorf("CSV = %q, want %q", data, want)
	}
}

func TestWriteLinesCSV_Format(t *testing.T) {
	dir := t.TempDir()
	lines := []Line{{X0: 0, Y0: 100, X1: 800, Y1: 102, Index: 1}}

	if err := WriteLinesCSV(dir, "p1_lines.csv", lines); err != nil {
		t.Fatalf("WriteLinesCSV failed: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "p1_lines.csv"))
	if string(data) != "0,100,800,102,1\n" {
		t.Errorf("CSV = %q", data)
	}
}

func TestWriteCSV_Overwrites(t *testing.T) {
	dir := t.TempDir()
	many := []Line{NewLine(0, 1, 2, 1), NewLine(0, 3, 2, 3), NewLine(0, 5, 2, 5)}
	if err := WriteLinesCSV(dir, "lines.csv", many); err != nil {
		t.Fatal(err)
	}
	if err := WriteLinesCSV(dir, "lines.csv", many[:1]); err != nil {
		t.Fatal(err)
	}

	got, err := LoadLinesCSV(filepath.Join(dir, "lines.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("stale rows survived overwrite: %d rows", len(got))
	}
}

func TestWriteCSV_RejectsPathInName(t *testing.T) {
	err := WriteBoxesCSV(t.TempDir(), "../escape.csv", nil)
	if !errs.Is(err, errs.ErrCodeInvalidName) {
		t.Errorf("expected INVALID_NAME, got %v", err)
	}
}

func TestWriteCSV_RejectsNonFinite(t *testing.T) {
	dir := t.TempDir()

	boxes := []BBox{NewBBox(0, 0, 1, 1), NewBBox(0, math.NaN(), 1, 1)}
	err := WriteBoxesCSV(dir, "b.csv", boxes)
	if !errs.Is(err, errs.ErrCodeInvalidInput) || errs.SubjectOf(err) != "box 2" {
		t.Errorf("NaN box: got %v", err)
	}

	lines := []Line{NewLine(0, math.Inf(1), 1, 1)}
	err = WriteLinesCSV(dir, "l.csv", lines)
	if !errs.Is(err, errs.ErrCodeInvalidInput) || errs.SubjectOf(err) != "line 1" {
		t.Errorf("Inf line: got %v", err)
	}

	for _, name := range []string{"b.csv", "l.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s written despite invalid input", name)
		}
	}
}

func TestWriteCSV_MissingDirectory(t *testing.T) {
	err := WriteBoxesCSV(filepath.Join(t.TempDir(), "nope"), "b.csv", []BBox{NewBBox(0, 0, 1, 1)})
	if !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("expected IO_ERROR, got %v", err)
	}
}

func TestBoxesCSV_RoundTrip(t *testing.T) {
	for _, n := range []int{1, 3, 150} {
		dir := t.TempDir()
		boxes := make([]BBox, n)
		for i := range boxes {
			f := float64(i)
			boxes[i] = BBox{X0: f * 1.5, Y0: f / 3, X1: f*1.5 + 40.125, Y1: f/3 + 17, LineNo: i%7 + 1, Index: i + 1}
		}
		boxes[0].LineNo = Unassigned

		if err := WriteBoxesCSV(dir, "b.csv", boxes); err != nil {
			t.Fatalf("n=%d: write failed: %v", n, err)
		}
		got, err := LoadBoxesCSV(filepath.Join(dir, "b.csv"))
		if err != nil {
			t.Fatalf("n=%d: read failed: %v", n, err)
		}
		if !reflect.DeepEqual(got, boxes) {
			t.Errorf("n=%d: round trip mismatch", n)
		}
	}
}

func TestLinesCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	lines := make([]Line, 120)
	for i := range lines {
		y := float64(i)*24.7 + 0.1
		lines[i] = Line{X0: 3, Y0: y, X1: 797.5, Y1: y + 1e-3, Index: i + 1}
	}

	if err := WriteLinesCSV(dir, "l.csv", lines); err != nil {
		t.Fatal(err)
	}
	got, err := LoadLinesCSV(filepath.Join(dir, "l.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, lines) {
		t.Error("round trip mismatch")
	}
}

func TestReadCSV_Empty(t *testing.T) {
	boxes, err := ReadBoxesCSV(strings.NewReader(""))
	if err != nil || len(boxes) != 0 {
		t.Errorf("ReadBoxesCSV(empty) = %v, %v", boxes, err)
	}
	lines, err := ReadLinesCSV(strings.NewReader(""))
	if err != nil || len(lines) != 0 {
		t.Errorf("ReadLinesCSV(empty) = %v, %v", lines, err)
	}
}

func TestReadCSV_Malformed(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		lines       bool
		wantSubject string
	}{
		{"box too few columns", "1,2,3,4,1,1\n1,2,3,4,1\n", false, "row 2"},
		{"line too many columns", "1,2,3,4,1,1\n", true, "row 1"},
		{"non numeric coordinate", "1,abc,3,4,1,1\n", false, "row 1"},
		{"NaN coordinate", "1,2,NaN,4,1\n", true, "row 1"},
		{"fractional index", "1,2,3,4,1.5\n", true, "row 1"},
		{"bad line number", "1,2,3,4,x,2\n", false, "row 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.lines {
				_, err = ReadLinesCSV(strings.NewReader(tt.input))
			} else {
				_, err = ReadBoxesCSV(strings.NewReader(tt.input))
			}
			if !errs.Is(err, errs.ErrCodeInvalidCSV) {
				t.Fatalf("expected INVALID_CSV, got %v", err)
			}
			if got := errs.SubjectOf(err); got != tt.wantSubject {
				t.Errorf("subject = %q, want %q", got, tt.wantSubject)
			}
		})
	}
}

func TestReadBoxesCSV_LegacyRows(t *testing.T) {
	// Rows written before any sort carry -1 for both identifiers.
	got, err := ReadBoxesCSV(strings.NewReader("10,20,30,40,-1,-1\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := []BBox{NewBBox(10, 20, 30, 40)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadBoxesCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("expected IO_ERROR, got %v", err)
	}
}
