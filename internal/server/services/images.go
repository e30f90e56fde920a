package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/photogallery/internal/apperrors"
	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/compositor"
	"github.com/dmitrijs2005/photogallery/internal/dbx"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/overlay"
	"github.com/dmitrijs2005/photogallery/internal/raster"
	"github.com/dmitrijs2005/photogallery/internal/server/blobstore"
	"github.com/dmitrijs2005/photogallery/internal/server/config"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/photogallery/internal/workerpool"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StoredMimeType is the format of every stored image and thumbnail.
const StoredMimeType = "image/jpeg"

// ImageOptions are the upload limits and derivation settings.
type ImageOptions struct {
	MaxFileSize      int64
	MaxFiles         int
	AllowedMimeTypes []string
	MaxWidth         int
	MaxHeight        int
	ThumbnailSize    int
	UploadQuality    raster.Quality
	DisplayWidth     int
	WatermarkText    string
	WatermarkOpacity float64
}

// ImageOptionsFromConfig copies the image settings out of cfg.
func ImageOptionsFromConfig(cfg *config.Config) ImageOptions {
	return ImageOptions{
		MaxFileSize:      cfg.MaxFileSize,
		MaxFiles:         cfg.MaxFiles,
		AllowedMimeTypes: cfg.AllowedMimeTypes,
		MaxWidth:         cfg.MaxImageWidth,
		MaxHeight:        cfg.MaxImageHeight,
		ThumbnailSize:    cfg.ThumbnailSize,
		UploadQuality:    cfg.UploadQuality,
		DisplayWidth:     cfg.DisplayWidth,
		WatermarkText:    cfg.WatermarkText,
		WatermarkOpacity: cfg.WatermarkOpacity,
	}
}

// Upload is one file of an upload request.
type Upload struct {
	Name string
	Data []byte
}

// ImageService implements the gallery operations over the images table and
// the blob store. CPU-bound work runs on the worker pool.
type ImageService struct {
	db          dbx.DB
	repomanager repomanager.RepositoryManager
	store       blobstore.Store
	pool        *workerpool.Pool
	opts        ImageOptions
	logger      logging.Logger
}

func NewImageService(db dbx.DB, m repomanager.RepositoryManager, store blobstore.Store,
	pool *workerpool.Pool, opts ImageOptions, logger logging.Logger) *ImageService {
	return &ImageService{db: db, repomanager: m, store: store, pool: pool, opts: opts, logger: logger}
}

// List returns the images whose original name contains q.Search, ignoring
// case, in q.Sort order. An empty sort means newest first; an unknown one is
// a validation error.
func (s *ImageService) List(ctx context.Context, q models.ImageQuery) ([]models.Image, error) {
	order, ok := models.ParseSortOrder(string(q.Sort))
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown sort order %q", q.Sort), nil)
	}
	q.Sort = order
	q.Search = strings.TrimSpace(q.Search)

	images, err := s.repomanager.Images(s.db).List(ctx, q)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list images", err)
	}
	return images, nil
}

// Get returns one image or a not-found AppError.
func (s *ImageService) Get(ctx context.Context, id string) (*models.Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFoundError("image not found", common.ErrorNotFound)
	}
	img, err := s.repomanager.Images(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("image not found", err)
		}
		return nil, apperrors.NewPersistenceError("failed to load image", err)
	}
	return img, nil
}

// Upload validates every file first, so a batch that fails validation
// stores nothing, then stores the files concurrently. Each stored file is
// resized to fit MaxWidth x MaxHeight and gets a square thumbnail.
//
// After validation each file succeeds or fails on its own: a file that
// fails leaves no blobs behind, but files of the same batch that were
// already stored are kept.
func (s *ImageService) Upload(ctx context.Context, files []Upload) ([]models.Image, error) {
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("no files uploaded", nil)
	}
	if len(files) > s.opts.MaxFiles {
		return nil, apperrors.NewValidationError(fmt.Sprintf("too many files (max %d)", s.opts.MaxFiles), nil)
	}
	for _, f := range files {
		if err := s.validate(f); err != nil {
			return nil, err
		}
	}

	out := make([]models.Image, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			img, err := s.storeOne(gctx, f)
			if err != nil {
				return err
			}
			out[i] = *img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "images uploaded", "count", len(out))
	return out, nil
}

func (s *ImageService) validate(f Upload) error {
	if int64(len(f.Data)) > s.opts.MaxFileSize {
		return apperrors.NewTooLargeError(
			fmt.Sprintf("file %q exceeds the %d byte limit", f.Name, s.opts.MaxFileSize), nil)
	}
	if len(f.Data) == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("file %q is empty", f.Name), nil)
	}
	detected := mimetype.Detect(f.Data)
	if !allowedType(detected, s.opts.AllowedMimeTypes) {
		return apperrors.NewValidationError(
			fmt.Sprintf("file %q has unsupported type %s", f.Name, detected.String()), nil)
	}
	return nil
}

func allowedType(m *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if m.Is(a) {
			return true
		}
	}
	return false
}

// asAppError passes AppErrors through and wraps anything else (pool
// cancellation, recovered panics) as internal.
func asAppError(err error, message string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewInternalError(message, err)
}

type derived struct {
	stored []byte
	thumb  []byte
	meta   raster.Metadata
}

func (s *ImageService) derive(data []byte) (derived, error) {
	stored, err := raster.ResizeAndCompress(data, s.opts.MaxWidth, s.opts.MaxHeight, s.opts.UploadQuality.EncoderQuality())
	if err != nil {
		return derived{}, err
	}
	thumb, err := raster.Thumbnail(data, s.opts.ThumbnailSize)
	if err != nil {
		return derived{}, err
	}
	meta, err := raster.GetMetadata(stored)
	if err != nil {
		return derived{}, err
	}
	return derived{stored: stored, thumb: thumb, meta: meta}, nil
}

func (s *ImageService) storeOne(ctx context.Context, f Upload) (*models.Image, error) {
	d, err := workerpool.Run(ctx, s.pool, func() (derived, error) { return s.derive(f.Data) })
	if err != nil {
		return nil, asAppError(err, "image processing failed")
	}

	id := uuid.NewString()
	filename := id + ".jpg"
	thumbName := models.ThumbnailName(filename)

	if err := s.store.Put(ctx, blobstore.KindImages, filename, d.stored, StoredMimeType); err != nil {
		return nil, apperrors.NewPersistenceError("failed to store image", err)
	}
	if err := s.store.Put(ctx, blobstore.KindThumbnails, thumbName, d.thumb, StoredMimeType); err != nil {
		s.removeFiles(ctx, filename)
		return nil, apperrors.NewPersistenceError("failed to store thumbnail", err)
	}

	img := &models.Image{
		ID:           id,
		Filename:     filename,
		OriginalName: originalName(f.Name),
		MimeType:     StoredMimeType,
		FileSize:     int64(len(d.stored)),
		Width:        d.meta.Width,
		Height:       d.meta.Height,
		ThumbnailURL: models.ThumbnailURL(filename),
	}
	if err := s.repomanager.Images(s.db).Create(ctx, img); err != nil {
		s.removeFiles(ctx, filename)
		return nil, apperrors.NewPersistenceError("failed to record image", err)
	}
	return img, nil
}

// Delete removes the record, then both files. The lookup and the delete
// share a transaction. File removal is best-effort: failures are logged and
// the call still succeeds.
func (s *ImageService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFoundError("image not found", common.ErrorNotFound)
	}

	var img *models.Image
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Images(tx)
		found, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, found.ID); err != nil {
			return err
		}
		img = found
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperrors.NewNotFoundError("image not found", err)
		}
		return apperrors.NewPersistenceError("failed to delete image", err)
	}

	s.removeFiles(ctx, img.Filename)
	s.logger.Info(ctx, "image deleted", "id", img.ID)
	return nil
}

func (s *ImageService) removeFiles(ctx context.Context, filename string) {
	if err := s.store.Delete(ctx, blobstore.KindImages, filename); err != nil {
		s.logger.Warn(ctx, "failed to delete image file", "filename", filename, "error", err)
	}
	thumb := models.ThumbnailName(filename)
	if err := s.store.Delete(ctx, blobstore.KindThumbnails, thumb); err != nil {
		s.logger.Warn(ctx, "failed to delete thumbnail file", "filename", thumb, "error", err)
	}
}

// ProcessRequest is the body of an export request. Pointer fields are
// optional and defaulted by Options.
type ProcessRequest struct {
	Overlays      []overlay.TextOverlay `json:"overlays"`
	Quality       string                `json:"quality"`
	AddWatermark  *bool                 `json:"addWatermark"`
	DisplayWidth  *float64              `json:"displayWidth"`
	DisplayHeight *float64              `json:"displayHeight"`
}

// ProcessOptions is a validated ProcessRequest. A zero Display is derived
// from the stored image size.
type ProcessOptions struct {
	Overlays  []overlay.TextOverlay
	Quality   raster.Quality
	Watermark bool
	Display   compositor.Display
}

// Options validates r and fills in defaults: medium quality, watermark on.
func (r ProcessRequest) Options() (ProcessOptions, error) {
	q, err := raster.ParseQuality(r.Quality)
	if err != nil {
		return ProcessOptions{}, apperrors.NewValidationError(err.Error(), err)
	}
	for _, o := range r.Overlays {
		if err := o.Validate(); err != nil {
			return ProcessOptions{}, apperrors.NewValidationError("invalid overlay: "+err.Error(), err)
		}
	}

	opts := ProcessOptions{Overlays: r.Overlays, Quality: q, Watermark: true}
	if r.AddWatermark != nil {
		opts.Watermark = *r.AddWatermark
	}

	if r.DisplayWidth != nil || r.DisplayHeight != nil {
		if r.DisplayWidth == nil || r.DisplayHeight == nil || *r.DisplayWidth <= 0 || *r.DisplayHeight <= 0 {
			return ProcessOptions{}, apperrors.NewValidationError("displayWidth and displayHeight must both be positive", nil)
		}
		opts.Display = compositor.Display{Width: *r.DisplayWidth, Height: *r.DisplayHeight}
	}
	return opts, nil
}

// Processed is a rendered download.
type Processed struct {
	Data     []byte
	Filename string
}

// Process renders the stored image with opts: overlays are burned in at
// native resolution, the watermark is applied and the result is encoded at
// the requested tier. Compositing and watermark failures degrade the output
// instead of failing the request.
func (s *ImageService) Process(ctx context.Context, id string, opts ProcessOptions) (*Processed, error) {
	img, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	src, err := s.store.Get(ctx, blobstore.KindImages, img.Filename)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("image file not found", err)
		}
		return nil, apperrors.NewPersistenceError("failed to read image file", err)
	}

	display := opts.Display
	if display == (compositor.Display{}) {
		display = compositor.DisplaySize(img.Width, img.Height, s.opts.DisplayWidth)
	}

	export, err := workerpool.Run(ctx, s.pool, func() (*compositor.Export, error) {
		return compositor.RenderExport(src, compositor.ExportOptions{
			Overlays:         opts.Overlays,
			Display:          display,
			Quality:          opts.Quality,
			Watermark:        opts.Watermark,
			WatermarkText:    s.opts.WatermarkText,
			WatermarkOpacity: s.opts.WatermarkOpacity,
		})
	})
	if err != nil {
		return nil, asAppError(err, "export failed")
	}

	if export.CompositeErr != nil {
		s.logger.Warn(ctx, "overlay compositing failed, exporting without overlays", "id", id, "error", export.CompositeErr)
	}
	if export.WatermarkErr != nil {
		s.logger.Warn(ctx, "watermark skipped", "id", id, "error", export.WatermarkErr)
	}

	return &Processed{Data: export.Data, Filename: "edited_" + originalName(img.OriginalName)}, nil
}

// originalName reduces a client-supplied file name to a safe base name.
func originalName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "image.jpg"
	}
	return name
}
