// Package models defines server-side records persisted in the database.
package models

import "time"

// Public URL prefixes under which stored files are served.
const (
	ImagesURLPrefix     = "/uploads/images/"
	ThumbnailsURLPrefix = "/uploads/thumbnails/"
	ThumbnailPrefix     = "thumb_"
)

// Image is a stored gallery image. Width and Height describe the stored
// (already resized) file, not the upload.
type Image struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	FileSize     int64     `json:"fileSize"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// ImageView is the API shape of an Image with its derived url.
type ImageView struct {
	Image
	URL string `json:"url"`
}

// View returns i with its derived public url.
func (i Image) View() ImageView {
	return ImageView{Image: i, URL: ImageURL(i.Filename)}
}

// ImageURL is the public path of a stored image file.
func ImageURL(filename string) string { return ImagesURLPrefix + filename }

// ThumbnailName is the stored name of filename's thumbnail.
func ThumbnailName(filename string) string { return ThumbnailPrefix + filename }

// ThumbnailURL is the public path of filename's thumbnail.
func ThumbnailURL(filename string) string {
	return ThumbnailsURLPrefix + ThumbnailName(filename)
}
