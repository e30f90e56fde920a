package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/photogallery/internal/compositor"
	"github.com/dmitrijs2005/photogallery/internal/overlay"
)

// Add appends a default overlay and selects it.
func (a *App) Add(ctx context.Context) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	o := s.editor.Add()
	a.printf("Added overlay %d (%s)\n", len(s.editor.Overlays()), shortID(o.ID))
	return nil
}

// Select makes args[0] the selected overlay. It accepts a 1-based position
// from 'show', a full id or a unique id prefix.
func (a *App) Select(ctx context.Context, args []string) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: select <n|id>")
	}
	id, err := resolveOverlay(s.editor.Overlays(), args[0])
	if err != nil {
		return err
	}
	s.editor.Select(id)
	a.printf("Selected %s\n", shortID(id))
	return nil
}

// Set changes one field of the selected overlay.
//
//	set text Hello world
//	set size 48
//	set color #ff0000
func (a *App) Set(ctx context.Context, args []string) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	id, ok := s.editor.Selected()
	if !ok {
		return errNoSelection
	}
	if len(args) < 2 {
		return errors.New("usage: set <text|x|y|size|font|color|rotation> <value>")
	}
	p, err := buildPatch(args[0], args[1:])
	if err != nil {
		return err
	}
	s.editor.Update(id, p)
	return nil
}

// Duplicate copies the selected overlay and selects the copy.
func (a *App) Duplicate(ctx context.Context) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	id, ok := s.editor.Selected()
	if !ok {
		return errNoSelection
	}
	dup, _ := s.editor.Duplicate(id)
	a.printf("Duplicated as %s\n", shortID(dup.ID))
	return nil
}

// Remove deletes the selected overlay.
func (a *App) Remove(ctx context.Context) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	id, ok := s.editor.Selected()
	if !ok {
		return errNoSelection
	}
	s.editor.Delete(id)
	a.printf("Removed %s\n", shortID(id))
	return nil
}

func (a *App) Undo(ctx context.Context) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	if !s.editor.Undo() {
		a.printf("Nothing to undo\n")
	}
	return nil
}

func (a *App) Redo(ctx context.Context) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	if !s.editor.Redo() {
		a.printf("Nothing to redo\n")
	}
	return nil
}

// Show prints the overlays of the open image. The selected one is marked
// with '>'.
func (a *App) Show(ctx context.Context) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	img := s.image
	a.printf("%s  %s  %dx%d  history %d/%d\n", img.ID, img.OriginalName, img.Width, img.Height,
		s.editor.HistoryIndex()+1, s.editor.HistoryLen())

	overlays := s.editor.Overlays()
	if len(overlays) == 0 {
		a.printf("  no overlays\n")
		return nil
	}
	selected, _ := s.editor.Selected()
	for i, o := range overlays {
		mark := " "
		if o.ID == selected {
			mark = ">"
		}
		a.printf("%s %d. %q at (%.0f,%.0f) %.0fpx %s %s rot %.0f [%s]\n",
			mark, i+1, o.Text, o.X, o.Y, o.FontSize, o.FontFamily, o.Color, o.Rotation, shortID(o.ID))
	}
	return nil
}

// buildPatch parses one field assignment. Font size and rotation are clamped
// to the editor bounds.
func buildPatch(field string, values []string) (overlay.Patch, error) {
	raw := strings.Join(values, " ")
	var p overlay.Patch

	switch strings.ToLower(field) {
	case "text":
		p.Text = &raw
	case "font", "family":
		if !slices.Contains(overlay.RecommendedFamilies, raw) {
			return p, fmt.Errorf("unknown font %q (one of: %s)", raw, strings.Join(overlay.RecommendedFamilies, ", "))
		}
		p.FontFamily = &raw
	case "color", "colour":
		c, err := compositor.ParseHexColor(raw)
		if err != nil {
			return p, err
		}
		hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
		p.Color = &hex
	case "x", "y", "size", "rotation":
		v, err := parseNumber(raw)
		if err != nil {
			return p, fmt.Errorf("%s: %w", field, err)
		}
		switch strings.ToLower(field) {
		case "x":
			p.X = &v
		case "y":
			p.Y = &v
		case "size":
			p.FontSize = &v
		case "rotation":
			p.Rotation = &v
		}
	default:
		return p, fmt.Errorf("unknown field %q", field)
	}
	return p.Clamp(), nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func resolveOverlay(overlays []overlay.TextOverlay, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(overlays) {
			return "", fmt.Errorf("no overlay #%d", n)
		}
		return overlays[n-1].ID, nil
	}

	var match string
	for _, o := range overlays {
		if o.ID == ref {
			return o.ID, nil
		}
		if strings.HasPrefix(o.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("overlay id %q is ambiguous", ref)
			}
			match = o.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no overlay %q", ref)
	}
	return match, nil
}
