package raster

import (
	"fmt"
	"strings"
)

// Quality is an export quality tier.
type Quality string

const (
	QualityOriginal Quality = "original"
	QualityHigh     Quality = "high"
	QualityMedium   Quality = "medium"
	QualityLow      Quality = "low"
)

// DefaultQuality is used when a request names no tier.
const DefaultQuality = QualityMedium

var encoderQuality = map[Quality]int{
	QualityOriginal: 100,
	QualityHigh:     90,
	QualityMedium:   75,
	QualityLow:      60,
}

// ParseQuality accepts a tier name case-insensitively. An empty name yields
// DefaultQuality.
func ParseQuality(s string) (Quality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultQuality, nil
	}
	q := Quality(s)
	if _, ok := encoderQuality[q]; !ok {
		return "", fmt.Errorf("unknown quality tier %q", s)
	}
	return q, nil
}

// EncoderQuality maps the tier to a JPEG quality in [1,100]. Unknown tiers
// map like DefaultQuality.
func (q Quality) EncoderQuality() int {
	if v, ok := encoderQuality[q]; ok {
		return v
	}
	return encoderQuality[DefaultQuality]
}

// Recompresses reports whether exporting at q re-encodes the stored bytes.
func (q Quality) Recompresses() bool {
	return q != QualityOriginal
}
