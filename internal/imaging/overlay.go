package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/geometry"
)

// Default overlay settings.
const (
	DefaultStroke          = 2
	DefaultUnassignedColor = "#808080"
)

// goldenAngle spreads consecutive hues as far apart as possible.
const goldenAngle = 137.50776405

// OverlayOptions controls RenderOverlay.
type OverlayOptions struct {
	// Stroke is the outline thickness in pixels; 0 selects DefaultStroke.
	Stroke int `json:"stroke"`

	// Labels draws box indices at the top-left of each box and line indices
	// at the left end of each line.
	Labels bool `json:"labels"`

	// MaxWidth downscales the rendered page to at most this width; 0 keeps the
	// original size.
	MaxWidth int `json:"max_width"`

	// UnassignedColor is the "#RRGGBB" or "#RRGGBBAA" color of boxes that belong
	// to no line. Empty selects DefaultUnassignedColor.
	UnassignedColor string `json:"unassigned_color"`
}

// OverlayResult contains the page with its annotation drawn on top.
type OverlayResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Scale       float64 `json:"scale"`
	Lines       int     `json:"lines"`
	Boxes       int     `json:"boxes"`
	Unassigned  int     `json:"unassigned"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
}

// LinePalette returns n visually distinct opaque colors. The same n always
// yields the same colors.
func LinePalette(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		hue := math.Mod(float64(i)*goldenAngle, 360)
		r, g, b := colorful.Hsv(hue, 0.85, 0.9).RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// RenderOverlay draws lines and boxes over the page. Each line gets its own
// color from LinePalette, in line order, and every box is outlined in the
// color of the line it is assigned to.
func RenderOverlay(img image.Image, boxes []geometry.BBox, lines []geometry.Line, opts OverlayOptions) (*OverlayResult, error) {
	if opts.Stroke < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "stroke", "stroke must not be negative")
	}
	if opts.MaxWidth < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "max_width", "max_width must not be negative")
	}
	stroke := opts.Stroke
	if stroke == 0 {
		stroke = DefaultStroke
	}
	unassignedHex := opts.UnassignedColor
	if unassignedHex == "" {
		unassignedHex = DefaultUnassignedColor
	}
	unassignedColor, err := parseHexColor(unassignedHex)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "unassigned_color", "invalid color %q", unassignedHex)
	}

	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	palette := LinePalette(len(lines))
	lineColors := make(map[int]color.RGBA, len(lines))
	for i, l := range lines {
		lineColors[l.Index] = palette[i]
	}

	labelColor := color.RGBA{255, 255, 255, 255}

	for i, l := range lines {
		c := palette[i]
		r := lineRect(l, stroke)
		if l.Height() < float64(stroke) {
			fillRect(result, r, c)
		} else {
			outlineRect(result, r, stroke, c)
		}
		if opts.Labels && l.Index > 0 {
			drawLabel(result, r.Min.X, r.Min.Y-labelHeight-1, strconv.Itoa(l.Index), labelColor, c)
		}
	}

	unassigned := 0
	for _, b := range boxes {
		c, ok := lineColors[b.LineNo]
		if !ok || b.LineNo == geometry.Unassigned {
			c = unassignedColor
			unassigned++
		}
		r := b.Rect()
		outlineRect(result, r, stroke, c)
		if opts.Labels && b.Index > 0 {
			drawLabel(result, r.Min.X+stroke+1, r.Min.Y+stroke+1, strconv.Itoa(b.Index), labelColor, c)
		}
	}

	var out image.Image = result
	scale := 1.0
	if opts.MaxWidth > 0 && bounds.Dx() > opts.MaxWidth {
		scale = float64(opts.MaxWidth) / float64(bounds.Dx())
		out = imaging.Resize(result, opts.MaxWidth, 0, imaging.Lanczos)
	}

	encoded, err := encodePNG(out)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Scale:       scale,
		Lines:       len(lines),
		Boxes:       len(boxes),
		Unassigned:  unassigned,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// lineRect returns the pixel band of a line. A stroke thinner than the
// outline width is widened around its midpoint.
func lineRect(l geometry.Line, stroke int) image.Rectangle {
	x0, x1 := math.Min(l.X0, l.X1), math.Max(l.X0, l.X1)
	y0, y1 := math.Min(l.Y0, l.Y1), math.Max(l.Y0, l.Y1)
	if y1-y0 < float64(stroke) {
		mid := l.Midpoint()
		y0 = mid - float64(stroke)/2
		y1 = y0 + float64(stroke)
	}
	return image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, &image.Uniform{C: c}, image.Point{}, draw.Over)
}

// outlineRect draws the border of r, stroke pixels thick, inside r.
func outlineRect(dst *image.RGBA, r image.Rectangle, stroke int, c color.RGBA) {
	if r.Dx() <= 2*stroke || r.Dy() <= 2*stroke {
		fillRect(dst, r, c)
		return
	}
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+stroke), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-stroke, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+stroke, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-stroke, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	// image.RGBA stores premultiplied alpha.
	if a != 255 {
		r = uint8(uint16(r) * uint16(a) / 255)
		g = uint8(uint16(g) * uint16(a) / 255)
		b = uint8(uint16(b) * uint16(a) / 255)
	}
	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// labelHeight is the height of a drawn label including its background.
const labelHeight = 7

// glyphs is a 3x5 pixel font for digits.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws a number with its background box at the given position,
// clipped to the image.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth

	fillRect(img, image.Rect(x-1, y-1, x+labelWidth, y+labelHeight-1), bg)

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if image.Pt(px, py).In(bounds) {
						img.SetRGBA(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
