// Package overlay defines the text overlay entity authored in the editor and
// consumed by the compositor.
//
// Positions and font sizes are expressed in display coordinates: the pixel
// space of the image as shown on screen, not the image's native pixel space.
package overlay

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Defaults applied to a freshly added overlay.
const (
	DefaultText       = "New Text"
	DefaultX          = 50
	DefaultY          = 50
	DefaultFontSize   = 32
	DefaultFontFamily = "Inter"
	DefaultColor      = "#ffffff"
	DefaultRotation   = 0

	// DuplicateOffset is added to both coordinates of a duplicated overlay.
	DuplicateOffset = 20
)

// Bounds the editing UI clamps to. The data layer does not enforce them.
const (
	MinFontSize = 12
	MaxFontSize = 72
	MinRotation = -180
	MaxRotation = 180
)

// RecommendedFamilies is the font family set offered by the editor.
var RecommendedFamilies = []string{
	"Inter",
	"Arial",
	"Helvetica",
	"Times New Roman",
	"Georgia",
	"Courier New",
	"Verdana",
	"Trebuchet MS",
}

// TextOverlay is a positioned, styled text element layered onto an image.
type TextOverlay struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	Color      string  `json:"color"`
	Rotation   float64 `json:"rotation"`
}

// NewID returns an identity that is unique within an editing session.
func NewID() string {
	return "overlay_" + uuid.NewString()
}

// New returns an overlay carrying the editor defaults and a fresh identity.
func New() TextOverlay {
	return TextOverlay{
		ID:         NewID(),
		Text:       DefaultText,
		X:          DefaultX,
		Y:          DefaultY,
		FontSize:   DefaultFontSize,
		FontFamily: DefaultFontFamily,
		Color:      DefaultColor,
		Rotation:   DefaultRotation,
	}
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Text       *string  `json:"text,omitempty"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
	Color      *string  `json:"color,omitempty"`
	Rotation   *float64 `json:"rotation,omitempty"`
}

// Apply returns o with the fields present in p replaced.
func (p Patch) Apply(o TextOverlay) TextOverlay {
	if p.Text != nil {
		o.Text = *p.Text
	}
	if p.X != nil {
		o.X = *p.X
	}
	if p.Y != nil {
		o.Y = *p.Y
	}
	if p.FontSize != nil {
		o.FontSize = *p.FontSize
	}
	if p.FontFamily != nil {
		o.FontFamily = *p.FontFamily
	}
	if p.Color != nil {
		o.Color = *p.Color
	}
	if p.Rotation != nil {
		o.Rotation = *p.Rotation
	}
	return o
}

// Clamp limits the font size and rotation present in p to the editor's UI
// bounds. Data-layer updates are not clamped.
func (p Patch) Clamp() Patch {
	if p.FontSize != nil {
		v := math.Min(math.Max(*p.FontSize, MinFontSize), MaxFontSize)
		p.FontSize = &v
	}
	if p.Rotation != nil {
		v := math.Min(math.Max(*p.Rotation, MinRotation), MaxRotation)
		p.Rotation = &v
	}
	return p
}

// Validate checks the geometry an overlay needs to be rendered at all:
// finite coordinates and a positive font size.
func (o TextOverlay) Validate() error {
	for name, v := range map[string]float64{"x": o.X, "y": o.Y, "fontSize": o.FontSize, "rotation": o.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("overlay %s: %s is not a finite number", o.ID, name)
		}
	}
	if o.FontSize <= 0 {
		return fmt.Errorf("overlay %s: font size must be positive", o.ID)
	}
	return nil
}

// Scale maps an overlay from display space into native space. fontSize
// follows the horizontal factor.
func (o TextOverlay) Scale(scaleX, scaleY float64) TextOverlay {
	o.X *= scaleX
	o.Y *= scaleY
	o.FontSize *= scaleX
	return o
}

// Clone returns a copy of list that shares no backing array with it.
func Clone(list []TextOverlay) []TextOverlay {
	if list == nil {
		return []TextOverlay{}
	}
	out := make([]TextOverlay, len(list))
	copy(out, list)
	return out
}
