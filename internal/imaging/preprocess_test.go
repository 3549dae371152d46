package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInkImage creates white paper with dark ink rectangles.
func createInkImage(width, height int, ink ...image.Rectangle) *image.RGBA {
	img := createInMemoryImage(width, height, color.RGBA{235, 230, 220, 255})
	for _, r := range ink {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, color.RGBA{30, 25, 20, 255})
			}
		}
	}
	return img
}

func TestOtsuLevel(t *testing.T) {
	img := createInkImage(100, 100, image.Rect(10, 10, 40, 40))
	level := OtsuLevel(img)
	if level <= 25 || level > 230 {
		t.Errorf("OtsuLevel = %d, want between ink and paper", level)
	}
}

func TestOtsuLevel_Flat(t *testing.T) {
	if got := OtsuLevel(createInMemoryImage(20, 20, color.White)); got != 128 {
		t.Errorf("OtsuLevel(white) = %d, want 128", got)
	}
}

func TestBinarize(t *testing.T) {
	img := createInkImage(60, 40, image.Rect(5, 5, 15, 15))

	for _, level := range []uint8{0, 128} {
		bin := Binarize(img, level)
		if bin.Bounds() != img.Bounds() {
			t.Fatalf("bounds = %v", bin.Bounds())
		}
		if bin.GrayAt(10, 10).Y != Ink {
			t.Errorf("level %d: ink pixel is %d", level, bin.GrayAt(10, 10).Y)
		}
		if bin.GrayAt(30, 30).Y != 0xFF {
			t.Errorf("level %d: paper pixel is %d", level, bin.GrayAt(30, 30).Y)
		}
	}
}

func TestInkProfile(t *testing.T) {
	img := createInkImage(50, 30, image.Rect(10, 5, 20, 8), image.Rect(30, 20, 35, 30))
	rows, cols := InkProfile(Binarize(img, 0))

	if len(rows) != 30 || len(cols) != 50 {
		t.Fatalf("profile sizes = %d, %d", len(rows), len(cols))
	}
	if rows[6] != 10 || rows[25] != 5 || rows[0] != 0 {
		t.Errorf("rows[0,6,25] = %d, %d, %d", rows[0], rows[6], rows[25])
	}
	if cols[12] != 3 || cols[32] != 10 || cols[0] != 0 {
		t.Errorf("cols[0,12,32] = %d, %d, %d", cols[0], cols[12], cols[32])
	}
}
