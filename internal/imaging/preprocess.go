package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
)

// Ink is the value of ink pixels in a binarized page; paper is 0xFF.
const Ink = 0x00

// Binarize converts img to black ink on white paper. Pixels darker than level
// become Ink. A zero level selects the threshold with OtsuLevel.
func Binarize(img image.Image, level uint8) *image.Gray {
	gray := effect.Grayscale(img)
	if level == 0 {
		level = OtsuLevel(gray)
	}
	return segment.Threshold(gray, level)
}

// OtsuLevel picks the threshold that best separates the two intensity classes
// of img, which for a page scan are ink and paper. The returned level is the
// first intensity of the bright class, suitable for segment.Threshold.
// A flat image yields 128.
func OtsuLevel(img image.Image) uint8 {
	// On a grayscale image every color channel carries the intensity.
	bins := histogram.NewRGBAHistogram(effect.Grayscale(img)).R.Bins

	total, sum := 0, 0.0
	for v, n := range bins {
		total += n
		sum += float64(v * n)
	}
	if total == 0 {
		return 128
	}

	best, level, found := -1.0, 128, false
	weightBg, sumBg := 0, 0.0
	for t := 0; t < 255; t++ {
		weightBg += bins[t]
		if weightBg == 0 {
			continue
		}
		weightFg := total - weightBg
		if weightFg == 0 {
			break
		}
		sumBg += float64(t * bins[t])

		meanBg := sumBg / float64(weightBg)
		meanFg := (sum - sumBg) / float64(weightFg)
		between := float64(weightBg) * float64(weightFg) * (meanBg - meanFg) * (meanBg - meanFg)
		if between > best {
			best, level, found = between, t+1, true
		}
	}
	if !found {
		return 128
	}
	return uint8(level)
}

// InkProfile counts ink pixels of a binarized page per row and per column.
func InkProfile(bin *image.Gray) (rows, cols []int) {
	b := bin.Bounds()
	rows = make([]int, b.Dy())
	cols = make([]int, b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := bin.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			if bin.Pix[off+x] == Ink {
				rows[y-b.Min.Y]++
				cols[x]++
			}
		}
	}
	return rows, cols
}
