package palette

import (
	"strings"
	"testing"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/series"
)

func TestPaletteValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default palette invalid: %v", err)
	}

	bad := Default()
	bad.Track = "blue"
	if err := bad.Validate(); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("err = %v, want INVALID_COLOR", err)
	}

	badTrack := Default()
	badTrack.Tracks = map[string]string{"run": "#12"}
	if err := badTrack.Validate(); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("err = %v, want INVALID_COLOR", err)
	}
}

func TestPaletteWithDefaults(t *testing.T) {
	p := Palette{Track: "#00FF00"}.WithDefaults()
	if p.Track != "#00FF00" || p.Background != DefaultBackground || p.Text != DefaultText {
		t.Errorf("WithDefaults() = %+v", p)
	}
}

func TestTrackFor(t *testing.T) {
	p := Default()
	p.Tracks = map[string]string{"read": "#AA00AA"}

	tests := []struct {
		name  string
		typ   string
		i     int
		total int
		want  string
	}{
		{"single type", "run", 0, 1, DefaultTrack},
		{"configured", "read", 1, 2, "#AA00AA"},
		{"first of many", "run", 0, 3, DefaultTrack},
		{"rotation", "swim", 2, 3, extraTracks[2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.TrackFor(tt.typ, tt.i, tt.total); got != tt.want {
				t.Errorf("TrackFor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMapperBackgroundForZero(t *testing.T) {
	m, err := NewMapper(Default(), "")
	if err != nil {
		t.Fatal(err)
	}
	r := series.NewValueRange(1, 10)
	for _, v := range []float64{0, -0} {
		if got := m.ColorFor(v, r); got != DefaultBackground {
			t.Errorf("ColorFor(%v) = %s, want background", v, got)
		}
	}
	var empty series.ValueRange
	if got := m.ColorFor(0, empty); got != DefaultBackground {
		t.Errorf("ColorFor(0, empty) = %s, want background", got)
	}
}

func TestMapperBands(t *testing.T) {
	m, err := NewMapper(Default(), "", WithBands(4))
	if err != nil {
		t.Fatal(err)
	}
	r := series.NewValueRange(0, 100)

	tests := []struct {
		v    float64
		band int
	}{
		{1, 0},
		{24, 0},
		{25, 1},
		{60, 2},
		{99, 3},
		{100, 3},
		{500, 3},
	}

	for _, tt := range tests {
		if got := m.Band(tt.v, r); got != tt.band {
			t.Errorf("Band(%v) = %d, want %d", tt.v, got, tt.band)
		}
	}

	bands := m.Bands()
	if len(bands) != 4 {
		t.Fatalf("len(Bands()) = %d", len(bands))
	}
	if !strings.EqualFold(bands[3], DefaultTrack) {
		t.Errorf("top band = %s, want track color %s", bands[3], DefaultTrack)
	}
	seen := map[string]bool{}
	for _, b := range bands {
		if seen[b] {
			t.Errorf("duplicate band color %s", b)
		}
		seen[b] = true
	}
}

func TestMapperDegenerateRange(t *testing.T) {
	m, _ := NewMapper(Default(), "")
	var r series.ValueRange
	r.Extend(5)
	a, b := m.ColorFor(5, r), m.ColorFor(50, r)
	if a != b {
		t.Errorf("degenerate range mapped to different colors %s, %s", a, b)
	}
	if a == DefaultBackground {
		t.Error("positive value mapped to background")
	}
}

func TestMapperSpecialThreshold(t *testing.T) {
	m, err := NewMapper(Default(), "", WithSpecialThreshold(10))
	if err != nil {
		t.Fatal(err)
	}
	r := series.NewValueRange(1, 20)
	if got := m.ColorFor(12, r); got != DefaultSpecial {
		t.Errorf("ColorFor(12) = %s, want special", got)
	}
	if got := m.ColorFor(9, r); got == DefaultSpecial {
		t.Error("value below threshold got special color")
	}
}

func TestMapperOptionsValidate(t *testing.T) {
	if _, err := NewMapper(Default(), "", WithBands(0)); err == nil {
		t.Error("WithBands(0) accepted")
	}
	if _, err := NewMapper(Default(), "", WithBands(MaxBands+1)); err == nil {
		t.Error("WithBands(MaxBands+1) accepted")
	}
	if _, err := NewMapper(Default(), "", WithSpecialThreshold(-1)); err == nil {
		t.Error("negative threshold accepted")
	}
	if _, err := NewMapper(Default(), "nope"); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("bad track: err = %v", err)
	}
}
