package vision

import (
	"image"
	"image/color"
)

// Preprocessing parameters for plate crops before OCR. The threshold seed and
// contrast values are fixed; Otsu picks the effective threshold from the
// histogram, threshold 150 is only the fallback for degenerate histograms.
const (
	thresholdSeed = 150
	contrastAlpha = 1.2
	contrastBeta  = 10
)

// Preprocess converts a plate crop to the binarized, contrast-enhanced image
// fed to the text recognizer: grayscale, Otsu binary threshold, then a linear
// contrast stretch (alpha=1.2, beta=10).
func Preprocess(img image.Image) *image.Gray {
	gray := toGray(img)
	threshold := otsuThreshold(gray)

	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := gray.GrayAt(x, y).Y
			var bin float64
			if v > threshold {
				bin = 255
			}
			enhanced := contrastAlpha*bin + contrastBeta
			if enhanced > 255 {
				enhanced = 255
			}
			out.SetGray(x, y, color.Gray{Y: uint8(enhanced)})
		}
	}
	return out
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// otsuThreshold picks the threshold maximizing between-class variance of the
// grayscale histogram.
func otsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return thresholdSeed
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVariance float64
	best := -1
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		variance := wB * wF * (mB - mF) * (mB - mF)
		if variance > maxVariance {
			maxVariance = variance
			best = t
		}
	}
	if best < 0 {
		return thresholdSeed
	}
	return uint8(best)
}
