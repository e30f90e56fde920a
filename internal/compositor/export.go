package compositor

import (
	"github.com/dmitrijs2005/photogallery/internal/overlay"
	"github.com/dmitrijs2005/photogallery/internal/raster"
)

// ExportOptions describes one download. The zero Display means "derive it
// from the image width capped at DefaultDisplayWidth".
type ExportOptions struct {
	Overlays         []overlay.TextOverlay
	Display          Display
	Quality          raster.Quality
	Watermark        bool
	WatermarkText    string
	WatermarkOpacity float64
}

// Export is the outcome of a download render. CompositeErr and WatermarkErr
// report best-effort steps that were skipped; Data is valid either way.
type Export struct {
	Data         []byte
	Width        int
	Height       int
	Composited   bool
	Watermarked  bool
	CompositeErr error
	WatermarkErr error
}

// RenderExport turns stored image bytes into a download: overlays are burned
// in when possible, the watermark is stamped when requested and the result
// is encoded at the tier's quality. Only an undecodable source or an encoder
// failure is returned as an error.
//
// The original tier with nothing to draw returns src untouched.
func RenderExport(src []byte, opts ExportOptions) (*Export, error) {
	if !opts.Quality.Recompresses() && len(opts.Overlays) == 0 && !opts.Watermark {
		md, err := raster.GetMetadata(src)
		if err != nil {
			return nil, err
		}
		return &Export{Data: src, Width: md.Width, Height: md.Height}, nil
	}

	img, err := raster.Decode(src)
	if err != nil {
		return nil, err
	}
	out := &Export{}

	if len(opts.Overlays) > 0 {
		display := opts.Display
		if display == (Display{}) {
			b := img.Bounds()
			display = DisplaySize(b.Dx(), b.Dy(), DefaultDisplayWidth)
		}
		res := Composite(img, opts.Overlays, display)
		if res.OK() {
			img = res.Image
			out.Composited = true
		} else {
			out.CompositeErr = res.Err
		}
	}

	if opts.Watermark {
		marked, err := raster.Watermark(img, opts.WatermarkText, opts.WatermarkOpacity)
		if err != nil {
			out.WatermarkErr = err
		} else {
			img = marked
			out.Watermarked = true
		}
	}

	data, err := raster.Encode(img, opts.Quality.EncoderQuality())
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	out.Data, out.Width, out.Height = data, b.Dx(), b.Dy()
	return out, nil
}
