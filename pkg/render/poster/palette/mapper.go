package palette

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/series"
)

// Band limits.
const (
	DefaultBands = 4
	MaxBands     = 10
)

// Mapper quantizes values into discrete color bands.
type Mapper struct {
	background string
	special    string
	bands      []string
	threshold  float64
}

// MapperOption configures a [Mapper].
type MapperOption func(*Mapper) error

// WithBands sets the number of color bands (1..MaxBands).
func WithBands(n int) MapperOption {
	return func(m *Mapper) error {
		if n < 1 || n > MaxBands {
			return errors.New(errors.ErrCodeInvalidInput, "bands must be between 1 and %d, got %d", MaxBands, n)
		}
		m.bands = make([]string, n)
		return nil
	}
}

// WithSpecialThreshold paints values at or above v with the special color.
// Zero disables the special color.
func WithSpecialThreshold(v float64) MapperOption {
	return func(m *Mapper) error {
		if v < 0 {
			return errors.New(errors.ErrCodeNegativeValue, "special threshold %v is negative", v)
		}
		m.threshold = v
		return nil
	}
}

// NewMapper builds a mapper that blends from the palette background toward
// track. An empty track uses the palette's track color.
func NewMapper(p Palette, track string, opts ...MapperOption) (*Mapper, error) {
	if track == "" {
		track = p.Track
	}
	bg, err := colorful.Hex(p.Background)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "background color %q", p.Background)
	}
	tc, err := colorful.Hex(track)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "track color %q", track)
	}

	m := &Mapper{
		background: p.Background,
		special:    p.Special,
		bands:      make([]string, DefaultBands),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	n := len(m.bands)
	for i := range m.bands {
		m.bands[i] = bg.BlendLab(tc, float64(i+1)/float64(n)).Clamped().Hex()
	}
	return m, nil
}

// Background returns the color used for zero and absent values.
func (m *Mapper) Background() string { return m.background }

// Bands returns the band colors from lowest to highest.
func (m *Mapper) Bands() []string {
	out := make([]string, len(m.bands))
	copy(out, m.bands)
	return out
}

// Band returns the band index of v within r, or -1 for values that render
// as background.
func (m *Mapper) Band(v float64, r series.ValueRange) int {
	if v <= 0 {
		return -1
	}
	i := int(r.Normalize(v) * float64(len(m.bands)))
	if i >= len(m.bands) {
		i = len(m.bands) - 1
	}
	return i
}

// ColorFor returns the hex color of v within r.
func (m *Mapper) ColorFor(v float64, r series.ValueRange) string {
	if v <= 0 {
		return m.background
	}
	if m.threshold > 0 && v >= m.threshold && m.special != "" {
		return m.special
	}
	return m.bands[m.Band(v, r)]
}
