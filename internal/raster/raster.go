// Package raster implements the image byte pipeline: metadata extraction,
// bounded resize with recompression, square thumbnails and the download
// watermark.
//
// All functions are stateless and safe for concurrent use. They are CPU
// bound; servers run them through a workerpool.Pool.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/dmitrijs2005/photogallery/internal/apperrors"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ThumbnailQuality is the fixed tier for thumbnails.
const ThumbnailQuality = QualityMedium

// Metadata describes an encoded image.
type Metadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int    `json:"size"`
}

// GetMetadata reads the header of data. It fails with a decode error when
// data is not a recognized raster format.
func GetMetadata(data []byte) (Metadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, apperrors.NewDecodeError("unrecognized image format", err)
	}
	return Metadata{Width: cfg.Width, Height: cfg.Height, Format: format, Size: len(data)}, nil
}

// Decode decodes data honoring EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to decode image", err)
	}
	return img, nil
}

// Encode writes img as JPEG at quality, clamped to [1,100]. Transparent
// pixels are flattened onto white.
func Encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flatten(img), imaging.JPEG, imaging.JPEGQuality(clampQuality(quality))); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit scales img down with a Lanczos filter so that it fits in maxWidth x
// maxHeight, preserving the aspect ratio. Images that already fit are
// returned as a copy at their own size.
func Fit(img image.Image, maxWidth, maxHeight int) image.Image {
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

// ResizeAndCompress decodes data, scales it down to fit the bounds and
// re-encodes it as JPEG at quality. It never upscales.
func ResizeAndCompress(data []byte, maxWidth, maxHeight, quality int) ([]byte, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid bounds %dx%d", maxWidth, maxHeight), nil)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Encode(Fit(img, maxWidth, maxHeight), quality)
}

// Thumbnail returns a center-cropped square of side size. Sources whose
// shorter side is below size are cropped to that side instead of being
// upscaled.
func Thumbnail(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid thumbnail size %d", size), nil)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Encode(Square(img, size), ThumbnailQuality.EncoderQuality())
}

// Square center-crops img to a square of side min(size, width, height).
func Square(img image.Image, size int) image.Image {
	b := img.Bounds()
	side := min(size, b.Dx(), b.Dy())
	return imaging.Fill(img, side, side, imaging.Center, imaging.Lanczos)
}

func clampQuality(q int) int {
	return min(max(q, 1), 100)
}

func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
