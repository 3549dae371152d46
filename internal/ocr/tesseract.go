package ocr

import (
	"bytes"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/geometry"
	pageimg "github.com/ironsheep/glyptodon/internal/imaging"
)

// DefaultLanguage is used when no language is given.
const DefaultLanguage = "eng"

// MinTextHeight is the crop height RecognizeBox enlarges short boxes to.
const MinTextHeight = 48

// cropPadding is the margin kept around a box so glyph edges are not cut.
const cropPadding = 4

// engineSubject names the engine in errors.
const engineSubject = "tesseract"

// Word is a recognized word with its location on the page.
type Word struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Box is the word's region in page coordinates.
	Box geometry.BBox `json:"box"`
}

// Midpoint returns the vertical center of the word's box.
func (w Word) Midpoint() float64 {
	return w.Box.Midpoint()
}

// WithIndex returns a copy of the word whose box carries index i.
func (w Word) WithIndex(i int) Word {
	w.Box = w.Box.WithIndex(i)
	return w
}

// Result contains the text recognized inside one annotation box.
type Result struct {
	// Text is all recognized text with Tesseract's spacing and newlines trimmed.
	Text string `json:"text"`

	// Confidence is the mean word confidence (0.0 to 1.0), 0 without words.
	Confidence float64 `json:"confidence"`

	// Words contains the individual words in page coordinates.
	// May be empty if bounding box extraction fails (text will still be in Text).
	Words []Word `json:"words"`
}

// RecognizeBox performs OCR on the region of img covered by box.
//
// Parameters:
//   - img: The page image (already loaded into memory).
//   - box: The annotation box to read. Corners may be in any order.
//   - language: Tesseract language code; empty selects DefaultLanguage.
//
// Returns:
//   - *Result: Recognized text. Word boxes are mapped back to page coordinates,
//     undoing the crop offset and any enlargement.
//   - error: INVALID_INPUT if the box lies outside the page, INTERNAL_ERROR if
//     Tesseract fails.
func RecognizeBox(img image.Image, box geometry.BBox, language string) (*Result, error) {
	region, err := pageimg.Region(img, box, cropPadding)
	if err != nil {
		return nil, err
	}
	scale := math.Min(math.Max(1, float64(MinTextHeight)/float64(region.Dy())), pageimg.MaxScale)

	cropped, region, err := pageimg.Crop(img, box, cropPadding, scale)
	if err != nil {
		return nil, err
	}
	prepared := pageimg.Binarize(cropped, 0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, prepared, imaging.PNG); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, engineSubject, "failed to encode crop")
	}

	client, err := newClient(language)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, engineSubject, "failed to set segmentation mode")
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, engineSubject, "failed to set image")
	}

	text, err := client.Text()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, engineSubject, "OCR failed")
	}

	result := &Result{
		Text:  strings.TrimSpace(text),
		Words: []Word{},
	}

	// Return just text if boxes fail
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}

	result.Words = toWords(boxes, region.Min, scale)
	result.Confidence = meanConfidence(result.Words)
	return result, nil
}

func newClient(language string) (*gosseract.Client, error) {
	if language == "" {
		language = DefaultLanguage
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(strings.Split(language, "+")...); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, engineSubject, "invalid language %q", language)
	}
	return client, nil
}

// toWords converts Tesseract boxes of a crop taken at origin and enlarged by
// scale into page-coordinate words. Empty words are dropped.
func toWords(boxes []gosseract.BoundingBox, origin image.Point, scale float64) []Word {
	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		words = append(words, Word{
			Text:       text,
			Confidence: b.Confidence / 100.0,
			Box:        toPage(b.Box, origin, scale),
		})
	}
	return words
}

// toPage maps a rectangle of an enlarged crop back onto the page.
func toPage(r image.Rectangle, origin image.Point, scale float64) geometry.BBox {
	return geometry.NewBBox(
		float64(origin.X)+float64(r.Min.X)/scale,
		float64(origin.Y)+float64(r.Min.Y)/scale,
		float64(origin.X)+float64(r.Max.X)/scale,
		float64(origin.Y)+float64(r.Max.Y)/scale,
	)
}

func meanConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range words {
		sum += w.Confidence
	}
	return math.Round(sum/float64(len(words))*1000) / 1000
}
