package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/client/api"
	"github.com/dmitrijs2005/photogallery/internal/compositor"
	"github.com/dmitrijs2005/photogallery/internal/editor"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
)

// List prints the gallery. Arguments of the form sort=<order> pick the
// order; the remaining words are the name search.
func (a *App) List(ctx context.Context, args []string) error {
	q, err := parseListArgs(args)
	if err != nil {
		return err
	}
	images, err := a.api.List(ctx, q)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		if q.Search != "" {
			a.printf("No images match %q\n", q.Search)
			return nil
		}
		a.printf("Gallery is empty\n")
		return nil
	}

	rows := make([][]string, 0, len(images))
	for _, img := range images {
		rows = append(rows, []string{
			img.ID, img.OriginalName, humanSize(img.FileSize),
			fmt.Sprintf("%dx%d", img.Width, img.Height),
			img.UploadedAt.Local().Format(time.DateTime),
		})
	}
	a.printf("%s\n", renderTable(
		[]string{"ID", "NAME", "SIZE", "DIMENSIONS", "UPLOADED"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
	return nil
}

// Open fetches image args[0] and starts a new editing session on it. Any
// previous session is discarded.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: open <id>")
	}

	img, err := a.api.Get(ctx, args[0])
	if err != nil {
		return err
	}
	data, err := a.api.Fetch(ctx, img.URL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", img.URL, err)
	}

	a.session = &editSession{
		image:   *img,
		source:  data,
		display: compositor.DisplaySize(img.Width, img.Height, compositor.DefaultDisplayWidth),
		editor:  editor.New(nil),
	}
	a.printf("Opened %s (%dx%d, editing at %.0fx%.0f)\n",
		img.OriginalName, img.Width, img.Height, a.session.display.Width, a.session.display.Height)
	return nil
}

// Upload sends the files named in args in one batch.
func (a *App) Upload(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: upload <file> [file...]")
	}

	files := make([]api.File, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, api.File{Name: filepath.Base(path), Data: data})
	}

	images, err := a.api.Upload(ctx, files)
	if err != nil {
		return err
	}
	for _, img := range images {
		a.printf("Uploaded %s as %s (%dx%d, %s)\n", img.OriginalName, img.ID, img.Width, img.Height, humanSize(img.FileSize))
	}
	return nil
}

// Delete removes image args[0] after confirmation and closes the editing
// session if it was showing that image.
func (a *App) Delete(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id := args[0]

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete image %s?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Cancelled\n")
		return nil
	}

	if err := a.api.Delete(ctx, id); err != nil {
		return err
	}
	if a.session != nil && a.session.image.ID == id {
		a.session = nil
	}
	a.printf("Deleted %s\n", id)
	return nil
}

func parseListArgs(args []string) (api.ListQuery, error) {
	var (
		q     api.ListQuery
		words []string
	)
	for _, arg := range args {
		value, ok := strings.CutPrefix(arg, "sort=")
		if !ok {
			words = append(words, arg)
			continue
		}
		order, valid := models.ParseSortOrder(value)
		if !valid {
			return api.ListQuery{}, fmt.Errorf("unknown sort order %q (one of %s)", value, sortOrderNames())
		}
		q.Sort = string(order)
	}
	q.Search = strings.Join(words, " ")
	return q, nil
}

func sortOrderNames() string {
	names := make([]string, len(models.SortOrders))
	for i, o := range models.SortOrders {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}
