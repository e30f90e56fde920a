package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/photogallery/internal/apperrors"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/services"
	"github.com/gin-gonic/gin"
)

func views(images []models.Image) []models.ImageView {
	out := make([]models.ImageView, len(images))
	for i, img := range images {
		out[i] = img.View()
	}
	return out
}

func (h *handler) listImages(c *gin.Context) {
	q := models.ImageQuery{Search: c.Query("search"), Sort: models.SortOrder(c.Query("sort"))}
	images, err := h.images.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views(images))
}

func (h *handler) getImage(c *gin.Context) {
	img, err := h.images.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, img.View())
}

func (h *handler) uploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, h.logger, apperrors.NewTooLargeError("upload too large", err))
			return
		}
		respondError(c, h.logger, apperrors.NewValidationError("expected multipart form data", err))
		return
	}
	defer form.RemoveAll()

	headers := form.File[UploadField]
	if len(headers) > h.opts.MaxFiles {
		respondError(c, h.logger, apperrors.NewValidationError(fmt.Sprintf("too many files (max %d)", h.opts.MaxFiles), nil))
		return
	}

	files := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		data, err := h.readPart(fh)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		files = append(files, services.Upload{Name: fh.Filename, Data: data})
	}

	images, err := h.images.Upload(c.Request.Context(), files)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, views(images))
}

func (h *handler) readPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > h.opts.MaxFileSize {
		return nil, apperrors.NewTooLargeError(fmt.Sprintf("file %q exceeds the %d byte limit", fh.Filename, h.opts.MaxFileSize), nil)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.opts.MaxFileSize+1))
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable upload", err)
	}
	return data, nil
}

func (h *handler) deleteImage(c *gin.Context) {
	if err := h.images.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) processImage(c *gin.Context) {
	var req services.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, h.logger, apperrors.NewValidationError("invalid request body", err))
		return
	}

	opts, err := req.Options()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out, err := h.images.Process(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, "image/jpeg", out.Data)
}
