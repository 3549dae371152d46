package ocr

import (
	"errors"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/geometry"
)

// Suggestion is an OCR-derived layout for a page, ready to be reviewed and
// saved like a hand-drawn annotation.
type Suggestion struct {
	// Lines are Tesseract's text lines as bands, sorted and indexed.
	Lines []geometry.Line `json:"lines"`

	// Boxes are the word boxes, sorted, indexed and assigned to Lines.
	Boxes []geometry.BBox `json:"boxes"`

	// Words carries the recognized text of each box, in the order of Boxes.
	Words []Word `json:"words"`

	// Unassigned counts boxes that fell outside every line.
	Unassigned int `json:"unassigned"`
}

// Suggest runs whole-page OCR on imagePath and converts Tesseract's text lines
// (RIL_TEXTLINE) and words (RIL_WORD) into annotation geometry.
func Suggest(imagePath, language string) (*Suggestion, error) {
	if _, err := os.Stat(imagePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, filepath.Base(imagePath), "page image does not exist")
		}
		return nil, errs.Wrap(errs.ErrCodeIO, err, filepath.Base(imagePath), "failed to stat page image")
	}

	client, err := newClient(language)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImage(imagePath); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, engineSubject, "failed to set image")
	}

	lineBoxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, engineSubject, "failed to get text lines")
	}
	wordBoxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, engineSubject, "failed to get words")
	}

	return buildSuggestion(lineBoxes, wordBoxes), nil
}

// buildSuggestion sorts lines and words top to bottom and assigns every word
// box to its line.
func buildSuggestion(lineBoxes, wordBoxes []gosseract.BoundingBox) *Suggestion {
	lines := make([]geometry.Line, 0, len(lineBoxes))
	for _, b := range lineBoxes {
		if b.Box.Empty() {
			continue
		}
		lines = append(lines, geometry.NewLine(
			float64(b.Box.Min.X), float64(b.Box.Min.Y),
			float64(b.Box.Max.X), float64(b.Box.Max.Y),
		))
	}
	lines = geometry.SortLines(lines)

	words := geometry.Sort(toWords(wordBoxes, image.Point{}, 1))
	boxes := make([]geometry.BBox, len(words))
	for i, w := range words {
		boxes[i] = w.Box
	}
	assigned := geometry.AssignLines(boxes, lines)
	for i := range words {
		words[i].Box = boxes[i]
	}

	return &Suggestion{
		Lines:      lines,
		Boxes:      boxes,
		Words:      words,
		Unassigned: len(boxes) - assigned,
	}
}
