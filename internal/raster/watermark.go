package raster

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/dmitrijs2005/photogallery/internal/fonts"
	"github.com/fogleman/gg"
)

// Watermark badge geometry.
const (
	WatermarkInset       = 15
	WatermarkMinFontSize = 14
	watermarkDivisor     = 40
	DefaultOpacity       = 0.7
)

// ErrWatermarkDoesNotFit is returned when the badge is larger than the image.
var ErrWatermarkDoesNotFit = errors.New("watermark does not fit the image")

// Watermark draws a semi-transparent labelled badge in the bottom-right
// corner of img, inset by WatermarkInset. The label size follows
// min(width, height) so the badge scales with the image. opacity outside
// (0,1] falls back to DefaultOpacity.
//
// compositor.RenderExport is the bytes-in, bytes-out entry point; it keeps
// the unwatermarked image when Watermark fails.
func Watermark(img image.Image, text string, opacity float64) (image.Image, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty watermark text")
	}
	if opacity <= 0 || opacity > 1 || math.IsNaN(opacity) {
		opacity = DefaultOpacity
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	size := math.Max(WatermarkMinFontSize, math.Min(w, h)/watermarkDivisor)

	face, err := fonts.Face(fonts.SansBold, size)
	if err != nil {
		return nil, fmt.Errorf("watermark font: %w", err)
	}

	dc := gg.NewContextForImage(img)
	dc.SetFontFace(face)

	tw, th := dc.MeasureString(text)
	pad := size / 2
	bw, bh := tw+2*pad, th+2*pad
	if bw+2*WatermarkInset > w || bh+2*WatermarkInset > h {
		return nil, ErrWatermarkDoesNotFit
	}

	x := w - WatermarkInset - bw
	y := h - WatermarkInset - bh

	dc.SetRGBA(0, 0, 0, 0.5*opacity)
	dc.DrawRoundedRectangle(x, y, bw, bh, pad/2)
	dc.Fill()

	dc.SetRGBA(1, 1, 1, opacity)
	dc.DrawStringAnchored(text, x+pad, y+bh/2, 0, 0.5)

	return dc.Image(), nil
}
