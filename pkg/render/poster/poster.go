// Package poster composes a heatmap poster from a day series.
//
// [Compose] validates its input, computes per-year statistics for every
// tracked type, builds the color mapping and hands the scene to the selected
// layout engine. The result is a [draw.Document] whose primitives appear in
// a fixed order:
//
//  1. the background rectangle
//  2. the title, when set
//  3. per year: header text, one cell per date, month labels
//  4. the type legend, when more than one type is tracked
//
// Invalid input is rejected before anything is drawn, including canvases
// narrower than the layout needs and a monthly summary on the circular
// layout. Dates missing from the
// series are drawn in the background color.
//
// # Example
//
//	p, err := poster.Compose(poster.Input{
//	    Series: s,
//	    Years:  series.NewYearSet(2023),
//	    Types:  []string{"commits"},
//	}, poster.WithTitle("Commits"), poster.WithStatistics(true))
package poster

import (
	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
	"github.com/matzehuels/heatposter/pkg/render/poster/layout"
	"github.com/matzehuels/heatposter/pkg/render/poster/palette"
	"github.com/matzehuels/heatposter/pkg/series"
	"github.com/matzehuels/heatposter/pkg/stats"
)

// Input is the data of one poster.
type Input struct {
	Series *series.DaySeries
	Years  series.YearSet
	// Types lists the tracked type labels in display order. A scalar
	// series is drawn under its single label.
	Types []string
}

// Poster is a composed poster.
type Poster struct {
	Document *draw.Document
	Stats    map[string]stats.Table
	Layout   layout.Kind
}

// Compose validates in and lays out a poster.
func Compose(in Input, opts ...Option) (*Poster, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := errors.ValidateTypeList(in.Types); err != nil {
		return nil, err
	}
	in.Years = series.NewYearSet(in.Years...)
	if err := in.Years.Validate(); err != nil {
		return nil, err
	}
	if cfg.width <= 0 || cfg.height < 0 {
		return nil, errors.New(errors.ErrCodeInvalidCanvas, "invalid canvas size %vx%v", cfg.width, cfg.height)
	}
	if err := cfg.palette.Validate(); err != nil {
		return nil, err
	}
	if cfg.summary && cfg.layout == layout.KindCircular {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "monthly summary is only available for the grid layout")
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	s := in.Series
	if s == nil {
		s = series.New()
	}

	var statOpts []stats.Option
	if cfg.asOf != nil {
		statOpts = append(statOpts, stats.WithAsOf(*cfg.asOf))
	}
	tables, err := stats.ComputeAll(s, in.Years, in.Types, statOpts...)
	if err != nil {
		return nil, err
	}

	sc := &layout.Scene{
		Series:    s,
		Years:     in.Years,
		Stats:     tables,
		Palette:   cfg.palette,
		Width:     cfg.width,
		Origin:    DefaultOrigin,
		Unit:      cfg.unit,
		ShowStats: cfg.showStats,
		Summary:   cfg.summary,
	}
	for i, typ := range in.Types {
		color := cfg.palette.TrackFor(typ, i, len(in.Types))
		m, err := palette.NewMapper(cfg.palette, color,
			palette.WithBands(cfg.bands),
			palette.WithSpecialThreshold(cfg.special))
		if err != nil {
			return nil, err
		}
		sc.Tracks = append(sc.Tracks, layout.Track{
			Type:   typ,
			Color:  color,
			Mapper: m,
			Range:  s.Range(typ, in.Years),
		})
	}

	if minW := engine.MinWidth(sc); cfg.width < minW {
		return nil, errors.New(errors.ErrCodeInvalidCanvas,
			"canvas width %v is below the %s layout minimum of %.1f", cfg.width, engine.Kind(), minW)
	}

	height := cfg.height
	if height == 0 {
		height = engine.Height(sc) + bottomMargin
	}

	doc := draw.NewDocument(cfg.width, height)
	doc.Title = cfg.title
	doc.Add(draw.Rect{W: cfg.width, H: height, Style: draw.Style{Fill: cfg.palette.Background}})
	if cfg.title != "" {
		doc.Add(draw.Text{
			X:       sc.Origin.X,
			Y:       titleY,
			Content: cfg.title,
			Style: draw.Style{
				Fill:       cfg.palette.Text,
				FontSize:   TitleSize,
				FontFamily: layout.FontFamily,
				FontWeight: "bold",
			},
		})
	}
	engine.Draw(doc, sc)
	if cfg.legend && len(sc.Tracks) > 1 {
		engine.DrawFooter(doc, sc)
	}

	return &Poster{Document: doc, Stats: tables, Layout: engine.Kind()}, nil
}

func newEngine(cfg config) (layout.Engine, error) {
	switch cfg.layout {
	case layout.KindGrid:
		return layout.NewGrid(layout.WithWeekStart(cfg.weekStart)), nil
	case layout.KindCircular:
		return layout.NewCircular(), nil
	}
	return layout.New(cfg.layout)
}
