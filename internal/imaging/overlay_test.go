package imaging

import (
	"image/color"
	"testing"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/geometry"
)

func rgb8(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestLinePalette(t *testing.T) {
	palette := LinePalette(12)
	if len(palette) != 12 {
		t.Fatalf("len = %d", len(palette))
	}

	seen := make(map[color.RGBA]bool)
	for i, c := range palette {
		if c.A != 255 {
			t.Errorf("color %d not opaque", i)
		}
		if seen[c] {
			t.Errorf("color %d repeats %v", i, c)
		}
		seen[c] = true
	}

	again := LinePalette(12)
	for i := range palette {
		if palette[i] != again[i] {
			t.Fatalf("palette not deterministic at %d", i)
		}
	}

	if len(LinePalette(0)) != 0 {
		t.Error("LinePalette(0) not empty")
	}
}

func TestRenderOverlay(t *testing.T) {
	img := createInMemoryImage(200, 100, color.White)
	lines := []geometry.Line{
		{X0: 0, Y0: 30, X1: 200, Y1: 30, Index: 1},
		{X0: 0, Y0: 70, X1: 200, Y1: 70, Index: 2},
	}
	boxes := []geometry.BBox{
		{X0: 10, Y0: 20, X1: 60, Y1: 40, LineNo: 1, Index: 1},
		{X0: 10, Y0: 60, X1: 60, Y1: 80, LineNo: 2, Index: 2},
		{X0: 100, Y0: 85, X1: 150, Y1: 95, LineNo: geometry.Unassigned, Index: 3},
	}

	result, err := RenderOverlay(img, boxes, lines, OverlayOptions{})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}
	if result.Width != 200 || result.Height != 100 || result.Scale != 1.0 {
		t.Errorf("dimensions: got %dx%d scale %g", result.Width, result.Height, result.Scale)
	}
	if result.Lines != 2 || result.Boxes != 3 || result.Unassigned != 1 {
		t.Errorf("counts: %+v", result)
	}

	out := decodeResult(t, result.ImageBase64)
	palette := LinePalette(2)

	// Box outlines take the color of their line.
	if r, g, b := rgb8(out.At(10, 25)); r != palette[0].R || g != palette[0].G || b != palette[0].B {
		t.Errorf("box 1 edge: got (%d,%d,%d), want %v", r, g, b, palette[0])
	}
	if r, g, b := rgb8(out.At(10, 75)); r != palette[1].R || g != palette[1].G || b != palette[1].B {
		t.Errorf("box 2 edge: got (%d,%d,%d), want %v", r, g, b, palette[1])
	}
	// Unassigned box in gray.
	if r, g, b := rgb8(out.At(100, 90)); r != 0x80 || g != 0x80 || b != 0x80 {
		t.Errorf("unassigned edge: got (%d,%d,%d)", r, g, b)
	}
	// Line stroke across the page.
	if r, g, b := rgb8(out.At(180, 30)); r != palette[0].R || g != palette[0].G || b != palette[0].B {
		t.Errorf("line 1 stroke: got (%d,%d,%d)", r, g, b)
	}
	// Untouched paper.
	if r, g, b := rgb8(out.At(180, 50)); r != 255 || g != 255 || b != 255 {
		t.Errorf("background: got (%d,%d,%d)", r, g, b)
	}
}

func TestRenderOverlay_BandLineOutlined(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	lines := []geometry.Line{{X0: 10, Y0: 20, X1: 90, Y1: 60, Index: 1}}

	result, err := RenderOverlay(img, nil, lines, OverlayOptions{Stroke: 1})
	if err != nil {
		t.Fatal(err)
	}
	out := decodeResult(t, result.ImageBase64)
	if r, g, b := rgb8(out.At(50, 40)); r != 255 || g != 255 || b != 255 {
		t.Errorf("band interior filled: (%d,%d,%d)", r, g, b)
	}
	want := LinePalette(1)[0]
	if r, g, b := rgb8(out.At(50, 20)); r != want.R || g != want.G || b != want.B {
		t.Errorf("band edge: got (%d,%d,%d), want %v", r, g, b, want)
	}
}

func TestRenderOverlay_Labels(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	boxes := []geometry.BBox{{X0: 10, Y0: 10, X1: 90, Y1: 90, LineNo: geometry.Unassigned, Index: 8}}

	plain, err := RenderOverlay(img, boxes, nil, OverlayOptions{})
	if err != nil {
		t.Fatal(err)
	}
	labeled, err := RenderOverlay(img, boxes, nil, OverlayOptions{Labels: true})
	if err != nil {
		t.Fatal(err)
	}
	if plain.ImageBase64 == labeled.ImageBase64 {
		t.Error("labels not drawn")
	}

	// Label background sits just inside the box's top-left corner.
	out := decodeResult(t, labeled.ImageBase64)
	if r, g, b := rgb8(out.At(12, 12)); r != 0x80 || g != 0x80 || b != 0x80 {
		t.Errorf("label background: got (%d,%d,%d)", r, g, b)
	}
}

func TestRenderOverlay_MaxWidth(t *testing.T) {
	img := createInMemoryImage(400, 200, color.White)
	result, err := RenderOverlay(img, nil, nil, OverlayOptions{MaxWidth: 100})
	if err != nil {
		t.Fatal(err)
	}
	if result.Width != 100 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 100x50", result.Width, result.Height)
	}
	if result.Scale != 0.25 {
		t.Errorf("Scale: got %g", result.Scale)
	}
}

func TestRenderOverlay_StaleLineNumberIsUnassigned(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	boxes := []geometry.BBox{{X0: 5, Y0: 5, X1: 40, Y1: 40, LineNo: 7, Index: 1}}

	result, err := RenderOverlay(img, boxes, nil, OverlayOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Unassigned != 1 {
		t.Errorf("Unassigned: got %d", result.Unassigned)
	}
}

func TestRenderOverlay_InvalidOptions(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	tests := []struct {
		name string
		opts OverlayOptions
	}{
		{"negative stroke", OverlayOptions{Stroke: -1}},
		{"negative width", OverlayOptions{MaxWidth: -10}},
		{"bad color", OverlayOptions{UnassignedColor: "#GGG"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderOverlay(img, nil, nil, tt.opts)
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00FF00", color.RGBA{0, 255, 0, 255}, false},
		{"#0000FFFF", color.RGBA{0, 0, 255, 255}, false},
		{"#FFFFFF00", color.RGBA{0, 0, 0, 0}, false},
		{"", color.RGBA{}, true},
		{"#FFF", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHexColor(%q) error = %v", tt.input, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseHexColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
