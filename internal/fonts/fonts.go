// Package fonts resolves requested font families to the faces bundled with
// the binary and builds sized font.Face values from them.
package fonts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomonobold"
)

// Bundled face names.
const (
	SansBold = "Go Bold"
	Medium   = "Go Medium"
	MonoBold = "Go Mono Bold"
)

var ttf = map[string][]byte{
	SansBold: gobold.TTF,
	Medium:   gomedium.TTF,
	MonoBold: gomonobold.TTF,
}

// fallback maps editor font families (lower-cased) to bundled faces.
var fallback = map[string]string{
	"inter":           SansBold,
	"arial":           SansBold,
	"helvetica":       SansBold,
	"verdana":         SansBold,
	"trebuchet ms":    SansBold,
	"times new roman": Medium,
	"georgia":         Medium,
	"courier new":     MonoBold,
}

var (
	mu     sync.Mutex
	parsed = map[string]*truetype.Font{}
)

// Resolve returns the bundled face used for family. Unknown families get the
// generic sans-serif face.
func Resolve(family string) string {
	if name, ok := fallback[strings.ToLower(strings.TrimSpace(family))]; ok {
		return name
	}
	return SansBold
}

// Face returns a face for family at size pixels.
func Face(family string, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", size)
	}
	f, err := load(Resolve(family))
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

func load(name string) (*truetype.Font, error) {
	mu.Lock()
	defer mu.Unlock()

	if f, ok := parsed[name]; ok {
		return f, nil
	}
	data, ok := ttf[name]
	if !ok {
		return nil, fmt.Errorf("font %q is not bundled", name)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", name, err)
	}
	parsed[name] = f
	return f, nil
}
