// Package pipeline provides the load → compose → render pipeline of heatposter.
//
// This package implements the complete pipeline that is shared by the CLI and
// the HTTP API. By centralizing this logic, every entry point applies the same
// defaults, caching and validation.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read day series from files, Notion, GitHub or MongoDB
//  2. Compose: Compute statistics and lay out the poster ([poster.Compose])
//  3. Render: Write the poster as SVG, PNG, PDF or JSON
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Sources: []pipeline.SourceSpec{{Kind: pipeline.SourceFile, Path: "runs.csv"}},
//	    Years:   series.NewYearSet(2023),
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Callers that already hold a series skip the load stage:
//
//	result, err := runner.ComposeSeries(ctx, s, opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/matzehuels/heatposter/pkg/cache"
	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/render/poster"
	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
	"github.com/matzehuels/heatposter/pkg/render/poster/layout"
	"github.com/matzehuels/heatposter/pkg/render/poster/palette"
	"github.com/matzehuels/heatposter/pkg/series"
	"github.com/matzehuels/heatposter/pkg/stats"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default poster width in millimeters.
	DefaultWidth = poster.DefaultWidth

	// DefaultLayout is the default layout engine.
	DefaultLayout = string(layout.KindGrid)

	// DefaultBands is the default number of color bands.
	DefaultBands = palette.DefaultBands

	// DefaultAnimation is the fade-in duration in seconds used when
	// animation is requested without a duration.
	DefaultAnimation = 10.0

	// DefaultPNGScale is the raster scale of PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Source kinds.
const (
	SourceFile   = "file"
	SourceNotion = "notion"
	SourceGitHub = "github"
	SourceMongo  = "mongo"
)

// ValidSourceKinds is the set of supported source kinds.
var ValidSourceKinds = map[string]bool{
	SourceFile:   true,
	SourceNotion: true,
	SourceGitHub: true,
	SourceMongo:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// SourceSpec describes one data source. Fields apply to the kinds noted.
type SourceSpec struct {
	Kind string `json:"kind" toml:"kind" yaml:"kind"`
	Name string `json:"name,omitempty" toml:"name" yaml:"name"` // type label

	Path string `json:"path,omitempty" toml:"path" yaml:"path"` // file

	Database      string `json:"database,omitempty" toml:"database" yaml:"database"`                   // notion database id, mongo database
	DateProperty  string `json:"date_property,omitempty" toml:"date_property" yaml:"date_property"`    // notion, mongo date field
	ValueProperty string `json:"value_property,omitempty" toml:"value_property" yaml:"value_property"` // notion, mongo value field
	Filter        string `json:"filter,omitempty" toml:"filter" yaml:"filter"`                         // notion "property#option"

	Login string `json:"login,omitempty" toml:"login" yaml:"login"` // github

	URI        string `json:"-" toml:"uri" yaml:"uri"`                                  // mongo
	Collection string `json:"collection,omitempty" toml:"collection" yaml:"collection"` // mongo
}

// Label returns the type label of the source, falling back to what the
// source itself would pick.
func (s SourceSpec) Label() string {
	if s.Name != "" {
		return s.Name
	}
	switch s.Kind {
	case SourceFile:
		base := s.Path[strings.LastIndexAny(s.Path, `/\`)+1:]
		if i := strings.LastIndex(base, "."); i > 0 {
			base = base[:i]
		}
		return base
	case SourceMongo:
		if s.Collection != "" {
			return s.Collection
		}
	}
	return s.Kind
}

// ref identifies the data a source reads, for cache keys.
func (s SourceSpec) ref() string {
	switch s.Kind {
	case SourceNotion:
		return s.Database
	case SourceGitHub:
		return s.Login
	case SourceMongo:
		return cache.Hash([]byte(s.URI)) + "/" + s.Database + "/" + s.Collection
	}
	return s.Path
}

// Validate checks the fields required by the source kind.
func (s SourceSpec) Validate() error {
	if !ValidSourceKinds[s.Kind] {
		return errors.New(errors.ErrCodeInvalidSource,
			"invalid source kind: %q (must be one of: file, notion, github, mongo)", s.Kind)
	}
	missing := func(field string) error {
		return errors.New(errors.ErrCodeInvalidSource, "%s source requires %s", s.Kind, field)
	}
	switch s.Kind {
	case SourceFile:
		if s.Path == "" {
			return missing("path")
		}
	case SourceNotion:
		if s.Database == "" {
			return missing("database")
		}
	case SourceGitHub:
		if s.Login == "" {
			return missing("login")
		}
	case SourceMongo:
		if s.URI == "" {
			return missing("uri")
		}
		if s.Database == "" || s.Collection == "" {
			return missing("database and collection")
		}
	}
	return nil
}

// Options contains all configuration for the poster pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Sources []SourceSpec   `json:"sources,omitempty"`
	Years   series.YearSet `json:"years"`
	Refresh bool           `json:"refresh,omitempty"`

	// Compose options
	Types             []string        `json:"types,omitempty"` // display order; derived from the series when empty
	Layout            string          `json:"layout,omitempty"`
	Title             string          `json:"title,omitempty"`
	Unit              string          `json:"unit,omitempty"`
	Width             float64         `json:"width,omitempty"`
	Height            float64         `json:"height,omitempty"`
	Palette           palette.Palette `json:"palette"`
	Bands             int             `json:"bands,omitempty"`
	Statistics        bool            `json:"statistics,omitempty"`
	Summary           bool            `json:"summary,omitempty"`
	NoLegend          bool            `json:"no_legend,omitempty"`
	SpecialThreshold  float64         `json:"special_threshold,omitempty"`
	SpecialPercentile float64         `json:"special_percentile,omitempty"` // derives SpecialThreshold when it is zero
	WeekStart         string          `json:"week_start,omitempty"`         // "sunday" or "monday"
	AsOf              string          `json:"as_of,omitempty"`              // ISO date current streaks end on

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Animation float64  `json:"animation,omitempty"` // fade-in seconds, SVG only
	NoTooltip bool     `json:"no_tooltip,omitempty"`

	// Runtime options (not serialized)
	Logger        *log.Logger `json:"-"`
	NotionToken   string      `json:"-"`
	GitHubToken   string      `json:"-"`
	NotionBaseURL string      `json:"-"` // API endpoint override
	GitHubBaseURL string      `json:"-"` // API endpoint override

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Series is the loaded day series.
	Series *series.DaySeries

	// SeriesHash is the content hash of the series.
	SeriesHash string

	// Types are the type labels drawn, in display order.
	Types []string

	// Poster is the composed poster.
	Poster *poster.Poster

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Timing contains stage durations.
	Timing Timing

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Document returns the composed primitive stream.
func (r *Result) Document() *draw.Document { return r.Poster.Document }

// Stats returns the per-type, per-year statistics.
func (r *Result) Stats() map[string]stats.Table { return r.Poster.Stats }

// DateCounts returns the number of dates with an entry per year.
func (r *Result) DateCounts() map[int]int { return r.Series.CountByYear() }

// Timing contains pipeline stage durations.
type Timing struct {
	LoadTime    time.Duration
	ComposeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SeriesHits   int // Sources whose series came from cache
	ArtifactHits int // Formats whose artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseWeekStart maps "sunday" or "monday" to a weekday.
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "", "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "invalid week start: %q (must be sunday or monday)", s)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Sources) == 0 {
		return errors.New(errors.ErrCodeInvalidSource, "at least one source is required")
	}
	for _, s := range o.Sources {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCompose validates and sets defaults for composing and rendering
// an already loaded series.
func (o *Options) ValidateForCompose() error {
	o.SetDefaults()
	if err := o.Years.Validate(); err != nil {
		return err
	}
	kind, err := layout.ParseKind(o.Layout)
	if err != nil {
		return err
	}
	if o.Summary && kind == layout.KindCircular {
		return errors.New(errors.ErrCodeInvalidLayout, "monthly summary is only available for the grid layout")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if _, err := ParseWeekStart(o.WeekStart); err != nil {
		return err
	}
	if o.AsOf != "" {
		if _, err := errors.ValidateDate(o.AsOf); err != nil {
			return err
		}
	}
	if o.Width <= 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidCanvas, "invalid canvas size %vx%v", o.Width, o.Height)
	}
	if o.SpecialPercentile < 0 || o.SpecialPercentile > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "special percentile must be in (0, 100]")
	}
	if o.Animation < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "animation duration must not be negative")
	}
	return o.Palette.Validate()
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	o.Years = series.NewYearSet(o.Years...)
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Bands == 0 {
		o.Bands = DefaultBands
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Formats = lo.Uniq(o.Formats)
	o.Palette = o.Palette.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ComposeOptions translates the options into [poster.Option] values.
// threshold is the effective special threshold.
func (o *Options) ComposeOptions(threshold float64) ([]poster.Option, error) {
	kind, err := layout.ParseKind(o.Layout)
	if err != nil {
		return nil, err
	}
	weekStart, err := ParseWeekStart(o.WeekStart)
	if err != nil {
		return nil, err
	}
	opts := []poster.Option{
		poster.WithLayout(kind),
		poster.WithSize(o.Width, o.Height),
		poster.WithPalette(o.Palette),
		poster.WithTitle(o.Title),
		poster.WithUnit(o.Unit),
		poster.WithStatistics(o.Statistics),
		poster.WithSummary(o.Summary),
		poster.WithLegend(!o.NoLegend),
		poster.WithBands(o.Bands),
		poster.WithSpecialThreshold(threshold),
		poster.WithWeekStart(weekStart),
	}
	if o.AsOf != "" {
		d, err := errors.ValidateDate(o.AsOf)
		if err != nil {
			return nil, err
		}
		opts = append(opts, poster.WithAsOf(d))
	}
	return opts, nil
}

// SeriesKeyOpts returns cache key options for loading one source.
func (o *Options) SeriesKeyOpts(s SourceSpec) cache.SeriesKeyOpts {
	return cache.SeriesKeyOpts{
		Ref:    s.ref(),
		Years:  o.Years.String(),
		Filter: s.Filter,
		Value:  s.ValueProperty,
		Date:   s.DateProperty,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string, types []string, threshold float64) cache.ArtifactKeyOpts {
	var flags []string
	if o.Statistics {
		flags = append(flags, "stats")
	}
	if o.Summary {
		flags = append(flags, "summary")
	}
	if o.NoLegend {
		flags = append(flags, "no-legend")
	}
	if o.NoTooltip {
		flags = append(flags, "no-tooltip")
	}
	if o.Animation > 0 && format == FormatSVG {
		flags = append(flags, fmt.Sprintf("animate=%g", o.Animation))
	}
	flags = append(flags,
		fmt.Sprintf("bands=%d", o.Bands),
		fmt.Sprintf("special=%g", threshold),
		"week="+strings.ToLower(o.WeekStart),
		"unit="+o.Unit,
		"asof="+o.AsOf)

	paletteJSON, _ := json.Marshal(o.Palette)
	return cache.ArtifactKeyOpts{
		Format:  format,
		Layout:  o.Layout,
		Years:   o.Years.String(),
		Types:   types,
		Width:   o.Width,
		Height:  o.Height,
		Title:   o.Title,
		Palette: cache.Hash(paletteJSON),
		Flags:   flags,
	}
}
