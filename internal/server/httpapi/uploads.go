package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/photogallery/internal/apperrors"
	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/filex"
	"github.com/dmitrijs2005/photogallery/internal/server/blobstore"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// serveUpload serves /uploads/{images|thumbnails}/<name>. Stores that can
// presign answer with a redirect instead of the bytes.
func (h *handler) serveUpload(c *gin.Context) {
	kind, ok := blobstore.ParseKind(c.Param("kind"))
	name := c.Param("name")
	if !ok || !filex.IsPlainName(name) {
		respondError(c, h.logger, apperrors.NewNotFoundError("file not found", common.ErrorNotFound))
		return
	}

	if p, ok := h.store.(blobstore.Presigner); ok {
		url, err := p.PresignGet(c.Request.Context(), kind, name, h.opts.PresignTTL)
		if err != nil {
			respondError(c, h.logger, apperrors.NewPersistenceError("failed to presign file", err))
			return
		}
		c.Redirect(http.StatusFound, url)
		return
	}

	data, err := h.store.Get(c.Request.Context(), kind, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(c, h.logger, apperrors.NewNotFoundError("file not found", err))
			return
		}
		respondError(c, h.logger, apperrors.NewPersistenceError("failed to read file", err))
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
