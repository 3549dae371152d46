package imaging

import (
	"bytes"
	"encoding/base64"
	"image"

	"github.com/disintegration/imaging"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/geometry"
)

// MaxScale bounds the enlargement factor accepted by CropBox.
const MaxScale = 8.0

// CropResult contains the cropped image data
type CropResult struct {
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Bounds      [4]int        `json:"bounds"` // x0,y0,x1,y1 of the crop in page pixels
	Box         geometry.BBox `json:"box"`
	ImageBase64 string        `json:"image_base64"`
	MimeType    string        `json:"mime_type"`
}

// Region returns the pixel rectangle covered by box, clipped to the image.
// A box that does not overlap the image is an INVALID_INPUT error.
func Region(img image.Image, box geometry.BBox, pad int) (image.Rectangle, error) {
	r := box.Rect().Inset(-pad).Intersect(img.Bounds())
	if r.Empty() {
		b := img.Bounds()
		return image.Rectangle{}, errs.New(errs.ErrCodeInvalidInput, "box",
			"region (%g,%g)-(%g,%g) outside image bounds (%d,%d)-(%d,%d)",
			box.X0, box.Y0, box.X1, box.Y1, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}
	return r, nil
}

// Crop extracts the pixels of box from img, optionally scaled.
// The returned rectangle is the crop's position on the page.
func Crop(img image.Image, box geometry.BBox, pad int, scale float64) (*image.NRGBA, image.Rectangle, error) {
	r, err := Region(img, box, pad)
	if err != nil {
		return nil, r, err
	}
	if scale <= 0 || scale > MaxScale {
		return nil, r, errs.New(errs.ErrCodeInvalidInput, "scale", "scale must be in (0, %g], got %g", MaxScale, scale)
	}

	cropped := imaging.Crop(img, r)
	if scale != 1.0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}
	return cropped, r, nil
}

// CropBox extracts an annotation region as a base64 PNG, for showing the
// contents of a single box next to its transcription.
func CropBox(img image.Image, box geometry.BBox, scale float64) (*CropResult, error) {
	cropped, r, err := Crop(img, box, 0, scale)
	if err != nil {
		return nil, err
	}

	encoded, err := encodePNG(cropped)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		Bounds:      [4]int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y},
		Box:         box,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", errs.Wrap(errs.ErrCodeInternal, err, "", "failed to encode image")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
