// Package compositor burns text overlays into image pixels and assembles
// downloadable exports.
//
// Overlays are authored in display coordinates; Composite rescales them to
// the image's native resolution before drawing.
package compositor

import (
	"fmt"
	"image"
	"math"

	"github.com/dmitrijs2005/photogallery/internal/apperrors"
	"github.com/dmitrijs2005/photogallery/internal/fonts"
	"github.com/dmitrijs2005/photogallery/internal/overlay"
	"github.com/fogleman/gg"
)

// DefaultDisplayWidth is the widest an image is shown in the editor.
const DefaultDisplayWidth = 800

// strokeSamples is the number of offsets used to draw the text outline.
const strokeSamples = 16

// Display is the on-screen size an image was edited at.
type Display struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DisplaySize returns the editor size of a native w x h image shown at most
// maxWidth wide, keeping the aspect ratio.
func DisplaySize(w, h, maxWidth int) Display {
	if w <= 0 || h <= 0 {
		return Display{}
	}
	dw := math.Min(float64(w), float64(maxWidth))
	return Display{Width: dw, Height: float64(h) * dw / float64(w)}
}

func (d Display) valid() bool {
	return d.Width > 0 && d.Height > 0 && !math.IsInf(d.Width, 0) && !math.IsInf(d.Height, 0)
}

// Result is the outcome of Composite. On failure Image is nil and Err
// holds the reason; the caller decides how to fall back.
type Result struct {
	Image image.Image
	Err   error
}

func (r Result) OK() bool { return r.Err == nil && r.Image != nil }

func failed(reason string, cause error) Result {
	return Result{Err: apperrors.NewCompositingError(reason, cause)}
}

// Rescale maps overlays from display space onto a native w x h canvas.
func Rescale(overlays []overlay.TextOverlay, w, h int, display Display) []overlay.TextOverlay {
	sx := float64(w) / display.Width
	sy := float64(h) / display.Height
	out := make([]overlay.TextOverlay, len(overlays))
	for i, o := range overlays {
		out[i] = o.Scale(sx, sy)
	}
	return out
}

// Composite draws overlays onto a copy of src. Each overlay is rotated about
// its own origin and drawn left/top aligned, outlined in a contrasting
// color and then filled.
func Composite(src image.Image, overlays []overlay.TextOverlay, display Display) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed("overlay rendering panicked", fmt.Errorf("%v", r))
		}
	}()

	if src == nil {
		return failed("no source image", nil)
	}
	if !display.valid() {
		return failed(fmt.Sprintf("invalid display size %vx%v", display.Width, display.Height), nil)
	}

	b := src.Bounds()
	scaled := Rescale(overlays, b.Dx(), b.Dy(), display)

	dc := gg.NewContextForImage(src)
	for _, o := range scaled {
		if err := o.Validate(); err != nil {
			return failed("invalid overlay geometry", err)
		}
		if err := draw(dc, o); err != nil {
			return failed("failed to draw overlay "+o.ID, err)
		}
	}
	return Result{Image: dc.Image()}
}

func draw(dc *gg.Context, o overlay.TextOverlay) error {
	if o.Text == "" {
		return nil
	}
	face, err := fonts.Face(o.FontFamily, o.FontSize)
	if err != nil {
		return err
	}
	fill, err := ParseHexColor(o.Color)
	if err != nil {
		fill, _ = ParseHexColor(overlay.DefaultColor)
	}

	dc.Push()
	defer dc.Pop()

	dc.SetFontFace(face)
	dc.Translate(o.X, o.Y)
	dc.Rotate(gg.Radians(o.Rotation))

	// top-aligned: the baseline sits one ascent below the origin
	baseline := float64(face.Metrics().Ascent) / 64

	lw := math.Max(2, o.FontSize/16)
	dc.SetColor(StrokeColor(fill))
	for i := 0; i < strokeSamples; i++ {
		a := 2 * math.Pi * float64(i) / strokeSamples
		dc.DrawString(o.Text, lw*math.Cos(a), baseline+lw*math.Sin(a))
	}

	dc.SetColor(fill)
	dc.DrawString(o.Text, 0, baseline)
	return nil
}
