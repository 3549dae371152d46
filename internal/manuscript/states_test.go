package manuscript

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/geometry"
)

func TestPageFiles(t *testing.T) {
	tests := []struct {
		page, boxes, lines string
	}{
		{"p1.png", "p1.png_bboxes.csv", "p1.png_lines.csv"},
		{"folio.12r.tiff", "folio.12r.tiff_bboxes.csv", "folio.12r.tiff_lines.csv"},
		{"scan", "scan_bboxes.csv", "scan_lines.csv"},
	}
	for _, tt := range tests {
		boxes, lines := PageFiles(tt.page)
		if boxes != tt.boxes || lines != tt.lines {
			t.Errorf("PageFiles(%q) = %q, %q", tt.page, boxes, lines)
		}
	}
}

func TestSavePage_SortsAndAssigns(t *testing.T) {
	dir := t.TempDir()
	lines := []geometry.Line{
		geometry.NewLine(0, 210, 500, 210),
		geometry.NewLine(0, 110, 500, 110),
	}
	boxes := []geometry.BBox{
		geometry.NewBBox(10, 200, 60, 220),
		geometry.NewBBox(300, 120, 260, 100), // dragged upward and leftward
		geometry.NewBBox(10, 400, 60, 420),   // below every line
	}

	state, err := SavePage(dir, "p1.png", boxes, lines)
	if err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}

	if state.Lines[0].Y0 != 110 || state.Lines[0].Index != 1 || state.Lines[1].Index != 2 {
		t.Errorf("lines = %+v", state.Lines)
	}
	want := []geometry.BBox{
		{X0: 260, Y0: 100, X1: 300, Y1: 120, LineNo: 1, Index: 1},
		{X0: 10, Y0: 200, X1: 60, Y1: 220, LineNo: 2, Index: 2},
		{X0: 10, Y0: 400, X1: 60, Y1: 420, LineNo: geometry.Unassigned, Index: 3},
	}
	if !reflect.DeepEqual(state.Boxes, want) {
		t.Errorf("boxes = %+v, want %+v", state.Boxes, want)
	}
	if state.Unassigned != 1 {
		t.Errorf("Unassigned = %d", state.Unassigned)
	}

	// Caller's slices stay untouched.
	if boxes[1].X0 != 300 || lines[0].Index != geometry.Unassigned {
		t.Error("input slices modified")
	}

	for _, name := range []string{"p1.png_bboxes.csv", "p1.png_lines.csv"} {
		if _, err := os.Stat(filepath.Join(dir, StatesDir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestArrangePage_WritesNothing(t *testing.T) {
	lines := []geometry.Line{geometry.NewLine(0, 50, 100, 50)}
	boxes := []geometry.BBox{
		geometry.NewBBox(40, 60, 10, 40),
		geometry.NewBBox(10, 90, 40, 99),
	}

	state := ArrangePage("", boxes, lines)

	if state.Page != "" || len(state.Boxes) != 2 || len(state.Lines) != 1 {
		t.Fatalf("state = %+v", state)
	}
	if b := state.Boxes[0]; b.X0 != 10 || b.Y0 != 40 || b.LineNo != 1 || b.Index != 1 {
		t.Errorf("first box = %+v", b)
	}
	if state.Boxes[1].LineNo != geometry.Unassigned || state.Unassigned != 1 {
		t.Errorf("second box = %+v, unassigned = %d", state.Boxes[1], state.Unassigned)
	}
	if boxes[0].X0 != 40 {
		t.Error("input boxes modified")
	}
}

func TestSaveLoadPage_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	lines := []geometry.Line{
		geometry.NewLine(0, 50.5, 400, 50.5),
		geometry.NewLine(0, 150.25, 400, 150.25),
	}
	boxes := []geometry.BBox{
		geometry.NewBBox(12.5, 40, 80, 61.75),
		geometry.NewBBox(90, 41, 150, 60),
		geometry.NewBBox(12, 140, 80, 160),
	}

	saved, err := SavePage(dir, "folio1r.jpg", boxes, lines)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadPage(dir, "folio1r.jpg")
	if err != nil {
		t.Fatalf("LoadPage failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, saved) {
		t.Errorf("loaded = %+v, saved = %+v", loaded, saved)
	}
}

func TestSavePage_Empty(t *testing.T) {
	dir := t.TempDir()
	state, err := SavePage(dir, "p1.png", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Boxes) != 0 || len(state.Lines) != 0 || state.Unassigned != 0 {
		t.Errorf("state = %+v", state)
	}

	loaded, err := LoadPage(dir, "p1.png")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Boxes) != 0 || len(loaded.Lines) != 0 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadPage_NeverAnnotated(t *testing.T) {
	state, err := LoadPage(t.TempDir(), "p9.png")
	if err != nil {
		t.Fatalf("LoadPage failed: %v", err)
	}
	if state.Boxes == nil || state.Lines == nil || len(state.Boxes) != 0 {
		t.Errorf("expected empty non-nil sets, got %+v", state)
	}
}

func TestLoadPage_CorruptState(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, StatesDir), 0755)
	os.WriteFile(filepath.Join(dir, StatesDir, "p1.png_bboxes.csv"), []byte("1,2,3\n"), 0644)

	_, err := LoadPage(dir, "p1.png")
	if !errs.Is(err, errs.ErrCodeInvalidCSV) {
		t.Fatalf("expected INVALID_CSV, got %v", err)
	}
	if errs.SubjectOf(err) != "p1.png_bboxes.csv" {
		t.Errorf("subject = %q", errs.SubjectOf(err))
	}
}

func TestSavePage_BadPageName(t *testing.T) {
	if _, err := SavePage(t.TempDir(), "../p1.png", nil, nil); !errs.Is(err, errs.ErrCodeInvalidName) {
		t.Errorf("expected INVALID_NAME, got %v", err)
	}
}

func TestSavePage_SameStemDifferentFormat(t *testing.T) {
	dir := t.TempDir()
	boxes := []geometry.BBox{geometry.NewBBox(10, 10, 50, 30)}
	if _, err := SavePage(dir, "p1.png", boxes, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := SavePage(dir, "p1.jpg", nil, nil); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadPage(dir, "p1.png")
	if err != nil {
		t.Fatalf("LoadPage failed: %v", err)
	}
	if len(loaded.Boxes) != 1 {
		t.Errorf("p1.png boxes = %+v, want the saved box", loaded.Boxes)
	}
}

func TestLoadPage_StatError(t *testing.T) {
	dir := t.TempDir()
	// states is a file, so every lookup below it fails with ENOTDIR
	if err := os.WriteFile(filepath.Join(dir, StatesDir), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadPage(dir, "p1.png")
	if !errs.Is(err, errs.ErrCodeIO) {
		t.Fatalf("expected IO_ERROR, got %v", err)
	}
	if errs.SubjectOf(err) != "p1.png_lines.csv" {
		t.Errorf("subject = %q", errs.SubjectOf(err))
	}
}

func TestLoadPage_StaleLines(t *testing.T) {
	dir := t.TempDir()
	lines := []geometry.Line{
		geometry.NewLine(0, 20, 100, 20),
		geometry.NewLine(0, 60, 100, 60),
	}
	boxes := []geometry.BBox{
		geometry.NewBBox(0, 10, 40, 30),
		geometry.NewBBox(0, 50, 40, 70),
	}
	if _, err := SavePage(dir, "p1.png", boxes, lines); err != nil {
		t.Fatal(err)
	}
	// Lines file from an older save holding a single line
	_, linesFile := PageFiles("p1.png")
	if err := geometry.WriteLinesCSV(filepath.Join(dir, StatesDir), linesFile, geometry.SortLines(lines[:1])); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadPage(dir, "p1.png")
	if err != nil {
		t.Fatalf("LoadPage failed: %v", err)
	}
	if loaded.Boxes[0].LineNo != 1 || loaded.Boxes[1].LineNo != geometry.Unassigned || loaded.Unassigned != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
}
