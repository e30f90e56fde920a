package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/client/api"
	"github.com/dmitrijs2005/photogallery/internal/client/repositories/exports"
	"github.com/dmitrijs2005/photogallery/internal/compositor"
	"github.com/dmitrijs2005/photogallery/internal/filex"
	"github.com/dmitrijs2005/photogallery/internal/raster"
)

// recentExports is how many rows 'exports' prints.
const recentExports = 20

// Export renders the open image locally: overlays are burned in, the
// watermark is stamped and the result is encoded at the requested tier
// (args[0], default medium).
func (a *App) Export(ctx context.Context, args []string) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	q, err := qualityArg(args)
	if err != nil {
		return err
	}

	overlays := s.editor.Overlays()
	out, err := compositor.RenderExport(s.source, compositor.ExportOptions{
		Overlays:         overlays,
		Display:          s.display,
		Quality:          q,
		Watermark:        true,
		WatermarkText:    WatermarkText,
		WatermarkOpacity: raster.DefaultOpacity,
	})
	if err != nil {
		return err
	}
	if out.CompositeErr != nil {
		a.printf("Warning: overlays skipped: %v\n", out.CompositeErr)
	}
	if out.WatermarkErr != nil {
		a.printf("Warning: watermark skipped: %v\n", out.WatermarkErr)
	}

	path, err := a.writeExport(fmt.Sprintf("edited_image_%s.jpg", s.image.ID), out.Data)
	if err != nil {
		return err
	}
	a.recordExport(ctx, &exports.Export{ImageID: s.image.ID, Path: path, Quality: string(q), Source: exports.SourceLocal, Overlays: len(overlays)})
	a.printf("Saved %s (%dx%d, %s)\n", path, out.Width, out.Height, humanSize(int64(len(out.Data))))
	return nil
}

// ExportServer asks the server to render the open image with the current
// overlays and saves the attachment it returns.
func (a *App) ExportServer(ctx context.Context, args []string) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	q, err := qualityArg(args)
	if err != nil {
		return err
	}

	overlays := s.editor.Overlays()
	watermark := true
	dw, dh := s.display.Width, s.display.Height
	res, err := a.api.Process(ctx, s.image.ID, api.ProcessRequest{
		Overlays:      overlays,
		Quality:       string(q),
		AddWatermark:  &watermark,
		DisplayWidth:  &dw,
		DisplayHeight: &dh,
	})
	if err != nil {
		return err
	}

	name := filepath.Base(res.Filename)
	if !filex.IsPlainName(name) {
		name = fmt.Sprintf("edited_image_%s.jpg", s.image.ID)
	}
	path, err := a.writeExport(name, res.Data)
	if err != nil {
		return err
	}
	a.recordExport(ctx, &exports.Export{ImageID: s.image.ID, Path: path, Quality: string(q), Source: exports.SourceServer, Overlays: len(overlays)})
	a.printf("Saved %s (%s)\n", path, humanSize(int64(len(res.Data))))
	return nil
}

// Exports prints the most recent downloads.
func (a *App) Exports(ctx context.Context) error {
	list, err := a.exports.Recent(ctx, recentExports)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No exports yet\n")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{
			e.CreatedAt.Local().Format(time.DateTime), shortID(e.ImageID), e.Quality, e.Source,
			strconv.Itoa(e.Overlays), e.Path,
		})
	}
	a.printf("%s\n", renderTable(
		[]string{"WHEN", "IMAGE", "QUALITY", "SOURCE", "OVERLAYS", "PATH"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
	return nil
}

func (a *App) writeExport(name string, data []byte) (string, error) {
	dir, err := filex.EnsureDir(a.config.OutputDir)
	if err != nil {
		return "", fmt.Errorf("output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := filex.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (a *App) recordExport(ctx context.Context, e *exports.Export) {
	if err := a.exports.Record(ctx, e); err != nil {
		a.logger.Warn(ctx, "export not recorded", "path", e.Path, "error", err)
	}
}

func qualityArg(args []string) (raster.Quality, error) {
	if len(args) == 0 {
		return raster.DefaultQuality, nil
	}
	return raster.ParseQuality(args[0])
}
