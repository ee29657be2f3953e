// Package palette defines poster colors and maps daily values to them.
//
// A [Palette] names the four poster colors (background, text, special and
// track) plus optional per-type track colors. A [Mapper] turns a value into
// one of a fixed number of discrete color bands blended from the background
// toward the track color. Zero and absent values always get the background
// color.
package palette

import (
	"sort"

	"github.com/matzehuels/heatposter/pkg/errors"
)

// Default colors.
const (
	DefaultBackground = "#222222"
	DefaultText       = "#FFFFFF"
	DefaultSpecial    = "#FFFF00"
	DefaultTrack      = "#4DD2FF"
)

// extraTracks colors additional types when no per-type color is configured.
var extraTracks = []string{"#4DD2FF", "#FF7F50", "#7CFC00", "#DA70D6", "#FFD700", "#40E0D0"}

// Palette holds the colors of one poster.
type Palette struct {
	Background string            `json:"background" toml:"background" yaml:"background"`
	Text       string            `json:"text" toml:"text" yaml:"text"`
	Special    string            `json:"special" toml:"special" yaml:"special"`
	Track      string            `json:"track" toml:"track" yaml:"track"`
	Tracks     map[string]string `json:"tracks,omitempty" toml:"tracks" yaml:"tracks"`
}

// Default returns the standard dark palette.
func Default() Palette {
	return Palette{
		Background: DefaultBackground,
		Text:       DefaultText,
		Special:    DefaultSpecial,
		Track:      DefaultTrack,
	}
}

// WithDefaults fills empty colors from [Default].
func (p Palette) WithDefaults() Palette {
	d := Default()
	if p.Background == "" {
		p.Background = d.Background
	}
	if p.Text == "" {
		p.Text = d.Text
	}
	if p.Special == "" {
		p.Special = d.Special
	}
	if p.Track == "" {
		p.Track = d.Track
	}
	return p
}

// Validate checks every configured color.
func (p Palette) Validate() error {
	for _, c := range []string{p.Background, p.Text, p.Special, p.Track} {
		if err := errors.ValidateColor(c); err != nil {
			return err
		}
	}
	keys := make([]string, 0, len(p.Tracks))
	for k := range p.Tracks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := errors.ValidateColor(p.Tracks[k]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "track color for %q", k)
		}
	}
	return nil
}

// TrackFor returns the track color of the i-th type typ. Single-type posters
// use Track; others fall back to a fixed rotation.
func (p Palette) TrackFor(typ string, i, total int) string {
	if c, ok := p.Tracks[typ]; ok {
		return c
	}
	if total <= 1 || i == 0 {
		return p.Track
	}
	return extraTracks[i%len(extraTracks)]
}
