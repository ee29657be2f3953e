package poster

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
	"github.com/matzehuels/heatposter/pkg/render/poster/layout"
	"github.com/matzehuels/heatposter/pkg/render/poster/palette"
)

// Canvas defaults in millimeters.
const (
	DefaultWidth = 200.0
	TitleSize    = 6.0
	titleY       = 10.0
	bottomMargin = 4.0
)

// DefaultOrigin is the top-left corner of the first year block.
var DefaultOrigin = draw.Point{X: 10, Y: 14}

type config struct {
	layout    layout.Kind
	width     float64
	height    float64
	palette   palette.Palette
	title     string
	unit      string
	showStats bool
	summary   bool
	legend    bool
	bands     int
	special   float64
	weekStart time.Weekday
	asOf      *civil.Date
}

func defaultConfig() config {
	return config{
		layout:    layout.KindGrid,
		width:     DefaultWidth,
		palette:   palette.Default(),
		legend:    true,
		bands:     palette.DefaultBands,
		weekStart: time.Sunday,
	}
}

// Option configures [Compose].
type Option func(*config)

// WithLayout selects the grid or circular layout.
func WithLayout(k layout.Kind) Option {
	return func(c *config) { c.layout = k }
}

// WithSize sets the canvas size. A zero height is derived from the layout.
func WithSize(width, height float64) Option {
	return func(c *config) {
		c.width = width
		c.height = height
	}
}

// WithPalette sets the poster colors. Empty colors keep their defaults.
func WithPalette(p palette.Palette) Option {
	return func(c *config) { c.palette = p.WithDefaults() }
}

// WithTitle draws a title line at the top of the poster.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// WithUnit labels totals, for example "commits" or "km".
func WithUnit(unit string) Option {
	return func(c *config) { c.unit = unit }
}

// WithStatistics adds a streak and distribution line to each year header.
func WithStatistics(on bool) Option {
	return func(c *config) { c.showStats = on }
}

// WithSummary draws one cell per month instead of one per day (grid only).
func WithSummary(on bool) Option {
	return func(c *config) { c.summary = on }
}

// WithLegend toggles the type legend of multi-type posters.
func WithLegend(on bool) Option {
	return func(c *config) { c.legend = on }
}

// WithBands sets the number of color bands.
func WithBands(n int) Option {
	return func(c *config) { c.bands = n }
}

// WithSpecialThreshold paints values at or above v in the special color.
func WithSpecialThreshold(v float64) Option {
	return func(c *config) { c.special = v }
}

// WithWeekStart sets the weekday of the first grid row.
func WithWeekStart(d time.Weekday) Option {
	return func(c *config) { c.weekStart = d }
}

// WithAsOf sets the day current streaks are measured at.
func WithAsOf(d civil.Date) Option {
	return func(c *config) { c.asOf = &d }
}
