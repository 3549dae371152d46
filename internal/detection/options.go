package detection

import (
	"image"

	errs "github.com/ironsheep/glyptodon/internal/errors"
)

// Options tunes layout detection. Zero values select the defaults.
type Options struct {
	// Threshold is the binarization level; 0 selects Otsu's method.
	Threshold uint8 `json:"threshold"`

	// MinRowInk is the fraction of the page width that must be inked for a
	// row to count as text. Default 0.005.
	MinRowInk float64 `json:"min_row_ink"`

	// MaxRowGap is the number of blank rows bridged inside one line. Default 1.
	MaxRowGap int `json:"max_row_gap"`

	// MinLineHeight drops bands thinner than this many pixels. Default 4.
	MinLineHeight int `json:"min_line_height"`

	// MinGap is the number of blank columns that separates two words. Default 6.
	MinGap int `json:"min_gap"`

	// MinBoxWidth drops boxes narrower than this many pixels. Default 2.
	MinBoxWidth int `json:"min_box_width"`
}

// DefaultOptions returns the settings used for zero-valued fields.
func DefaultOptions() Options {
	return Options{
		MinRowInk:     0.005,
		MaxRowGap:     1,
		MinLineHeight: 4,
		MinGap:        6,
		MinBoxWidth:   2,
	}
}

func (o Options) withDefaults() (Options, error) {
	if o.MinRowInk < 0 || o.MinRowInk >= 1 || o.MaxRowGap < 0 || o.MinLineHeight < 0 || o.MinGap < 0 || o.MinBoxWidth < 0 {
		return o, errs.New(errs.ErrCodeInvalidInput, "options", "detection options out of range: %+v", o)
	}
	d := DefaultOptions()
	if o.MinRowInk == 0 {
		o.MinRowInk = d.MinRowInk
	}
	if o.MaxRowGap == 0 {
		o.MaxRowGap = d.MaxRowGap
	}
	if o.MinLineHeight == 0 {
		o.MinLineHeight = d.MinLineHeight
	}
	if o.MinGap == 0 {
		o.MinGap = d.MinGap
	}
	if o.MinBoxWidth == 0 {
		o.MinBoxWidth = d.MinBoxWidth
	}
	return o, nil
}

func checkImage(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return errs.New(errs.ErrCodeInvalidInput, "image", "image is empty")
	}
	return nil
}
