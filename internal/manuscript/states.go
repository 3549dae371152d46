package manuscript

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/geometry"
)

// PageState is the annotation of one page.
type PageState struct {
	Page       string          `json:"page"`
	Boxes      []geometry.BBox `json:"boxes"`
	Lines      []geometry.Line `json:"lines"`
	Unassigned int             `json:"unassigned"`
}

// PageFiles returns the state file names of a page image:
// <page>_bboxes.csv and <page>_lines.csv. The full file name is kept so
// p1.png and p1.jpg never share state.
func PageFiles(page string) (boxesFile, linesFile string) {
	return page + "_bboxes.csv", page + "_lines.csv"
}

// ArrangePage normalizes the boxes, orders lines and boxes top to bottom and
// assigns every box to its line. The inputs are not modified.
func ArrangePage(page string, boxes []geometry.BBox, lines []geometry.Line) *PageState {
	normalized := make([]geometry.BBox, len(boxes))
	for i, b := range boxes {
		normalized[i] = b.Normalize()
	}

	sortedLines := geometry.SortLines(lines)
	sortedBoxes := geometry.SortBoxes(normalized)
	assigned := geometry.AssignLines(sortedBoxes, sortedLines)

	return &PageState{
		Page:       page,
		Boxes:      sortedBoxes,
		Lines:      sortedLines,
		Unassigned: len(sortedBoxes) - assigned,
	}
}

// SavePage arranges the page's lines and boxes with ArrangePage and stores
// both sets under dir/states. Each file is replaced atomically; the boxes go
// first, so an interrupted save leaves new boxes beside old lines, which
// LoadPage reports as unassigned where they no longer match.
func SavePage(dir, page string, boxes []geometry.BBox, lines []geometry.Line) (*PageState, error) {
	if err := errs.ValidateFileName(page); err != nil {
		return nil, err
	}
	state := ArrangePage(page, boxes, lines)

	statesDir := filepath.Join(dir, StatesDir)
	if err := os.MkdirAll(statesDir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, page, "failed to create states directory")
	}

	boxesFile, linesFile := PageFiles(page)
	if err := geometry.WriteBoxesCSV(statesDir, boxesFile, state.Boxes); err != nil {
		return nil, err
	}
	if err := geometry.WriteLinesCSV(statesDir, linesFile, state.Lines); err != nil {
		return nil, err
	}
	return state, nil
}

// LoadPage reads the stored annotation of a page. A page that was never
// annotated yields empty sets. Boxes pointing at a line the lines file does
// not hold are returned as unassigned.
func LoadPage(dir, page string) (*PageState, error) {
	if err := errs.ValidateFileName(page); err != nil {
		return nil, err
	}
	statesDir := filepath.Join(dir, StatesDir)
	boxesFile, linesFile := PageFiles(page)

	state := &PageState{
		Page:  page,
		Boxes: []geometry.BBox{},
		Lines: []geometry.Line{},
	}

	path := filepath.Join(statesDir, linesFile)
	if ok, err := stateExists(path, linesFile); err != nil {
		return nil, err
	} else if ok {
		lines, err := geometry.LoadLinesCSV(path)
		if err != nil {
			return nil, errs.Wrap(errs.GetCode(err), err, linesFile, "failed to load lines")
		}
		state.Lines = lines
	}
	path = filepath.Join(statesDir, boxesFile)
	if ok, err := stateExists(path, boxesFile); err != nil {
		return nil, err
	} else if ok {
		boxes, err := geometry.LoadBoxesCSV(path)
		if err != nil {
			return nil, errs.Wrap(errs.GetCode(err), err, boxesFile, "failed to load boxes")
		}
		state.Boxes = boxes
	}

	known := make(map[int]bool, len(state.Lines))
	for _, l := range state.Lines {
		known[l.Index] = true
	}
	for i, b := range state.Boxes {
		if b.LineNo == geometry.Unassigned || !known[b.LineNo] {
			state.Boxes[i].LineNo = geometry.Unassigned
			state.Unassigned++
		}
	}
	return state, nil
}

// stateExists reports whether a state file is present. Only a missing file
// means "never annotated"; any other stat failure is an IO_ERROR.
func stateExists(path, name string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, errs.Wrap(errs.ErrCodeIO, err, name, "failed to read page state")
	}
}
