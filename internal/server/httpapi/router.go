// Package httpapi is the gin HTTP surface of the gallery: admin auth, image
// CRUD, the export endpoint and the uploaded-file routes.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/blobstore"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Authenticator is the gate consumed by the handlers.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.AdminSession, error)
	IsValid(ctx context.Context, token string) bool
	Revoke(ctx context.Context, token string) error
}

// Images is the image service consumed by the handlers.
type Images interface {
	List(ctx context.Context, q models.ImageQuery) ([]models.Image, error)
	Get(ctx context.Context, id string) (*models.Image, error)
	Upload(ctx context.Context, files []services.Upload) ([]models.Image, error)
	Delete(ctx context.Context, id string) error
	Process(ctx context.Context, id string, opts services.ProcessOptions) (*services.Processed, error)
}

// Options carries the HTTP limits.
type Options struct {
	MaxFileSize    int64
	MaxFiles       int
	RequestTimeout time.Duration
	PresignTTL     time.Duration
}

// UploadField is the multipart field holding uploaded files.
const UploadField = "images"

type handler struct {
	auth   Authenticator
	images Images
	store  blobstore.Store
	logger logging.Logger
	opts   Options
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(auth Authenticator, images Images, store blobstore.Store, logger logging.Logger, opts Options) *gin.Engine {
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 15 * time.Minute
	}
	h := &handler{auth: auth, images: images, store: store, logger: logger, opts: opts}

	r := gin.New()
	r.Use(
		requestLogger(logger),
		gin.CustomRecovery(h.handlePanics()),
		requestTimeout(opts.RequestTimeout),
	)

	r.GET("/health", healthCheck)
	r.GET("/uploads/:kind/:name", h.serveUpload)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.logout)
		authGroup.GET("/validate", h.validate)

		img := api.Group("/images")
		img.GET("", h.listImages)
		img.GET("/:id", h.getImage)
		img.POST("/:id/process", h.processImage)

		uploadLimit := requestSizeLimiter(int64(opts.MaxFiles)*opts.MaxFileSize + multipartOverhead)
		img.POST("", h.requireAdmin(), uploadLimit, h.uploadImages)
		img.POST("/upload", h.requireAdmin(), uploadLimit, h.uploadImages)
		img.DELETE("/:id", h.requireAdmin(), h.deleteImage)
	}

	return r
}
