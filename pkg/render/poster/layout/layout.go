// Package layout positions day cells on a poster canvas.
//
// Two engines implement [Engine]:
//
//   - [Grid]: the contribution-graph arrangement. Each year is a block of
//     week columns with seven weekday rows; years are stacked vertically.
//   - [Circular]: each year (and, for several types, each type within a
//     year) is a ring; a day is a wedge whose angle is proportional to its
//     position in the year.
//
// Engines are deterministic: the same [Scene] always produces the same
// primitives in the same order.
package layout

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
	"github.com/matzehuels/heatposter/pkg/render/poster/palette"
	"github.com/matzehuels/heatposter/pkg/series"
	"github.com/matzehuels/heatposter/pkg/stats"
)

// Kind selects a layout engine.
type Kind string

// Layout kinds.
const (
	KindGrid     Kind = "grid"
	KindCircular Kind = "circular"
)

// ParseKind maps a layout name to a Kind. "github" is accepted for grid.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grid", "github", "":
		return KindGrid, nil
	case "circular", "circle":
		return KindCircular, nil
	}
	return "", errors.New(errors.ErrCodeInvalidLayout, "unknown layout %q (want grid or circular)", s)
}

// Engine draws the cells, headers and footer of a scene.
type Engine interface {
	Kind() Kind
	// Height returns the canvas height the scene needs at the given width.
	Height(sc *Scene) float64
	// MinWidth returns the narrowest canvas that holds every cell.
	MinWidth(sc *Scene) float64
	// Draw appends per-year headers, cells and labels to doc.
	Draw(doc *draw.Document, sc *Scene)
	// DrawFooter appends the legend. Callers skip it for single-type scenes.
	DrawFooter(doc *draw.Document, sc *Scene)
}

// New returns the engine for kind.
func New(kind Kind) (Engine, error) {
	switch kind {
	case KindGrid:
		return NewGrid(), nil
	case KindCircular:
		return NewCircular(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidLayout, "unknown layout %q", kind)
}

// Track is one tracked type with its color mapping.
type Track struct {
	Type   string
	Color  string
	Mapper *palette.Mapper
	Range  series.ValueRange
}

// Scene is everything an engine needs to draw.
type Scene struct {
	Series    *series.DaySeries
	Years     series.YearSet
	Tracks    []Track
	Stats     map[string]stats.Table
	Palette   palette.Palette
	Width     float64
	Origin    draw.Point
	Unit      string
	ShowStats bool
	Summary   bool
}

// Cell is a positioned day.
type Cell struct {
	Date  civil.Date
	Value float64

	// Grid placement.
	Col, Row int
	X, Y     float64

	// Circular placement: wedge start angle (radians) and inner radius.
	Ring   int
	Angle  float64
	Radius float64
}

// Font sizes shared by both engines.
const (
	YearLabelSize = 5.0
	TotalSize     = 3.0
	StatsSize     = 2.2
	MonthSize     = 2.5
	LegendSize    = 3.0
	FontFamily    = "Arial"
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func textStyle(p palette.Palette, size float64) draw.Style {
	return draw.Style{Fill: p.Text, FontSize: size, FontFamily: FontFamily}
}

// cellTitle is the tooltip of a day cell.
func cellTitle(d civil.Date, typ string, v float64, unit string) string {
	s := d.String()
	if typ != "" {
		s += " " + typ
	}
	s += " " + formatValue(v)
	if unit != "" {
		s += " " + unit
	}
	return s
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// totalLine renders the yearly totals of every track.
func totalLine(sc *Scene, year int) string {
	parts := make([]string, 0, len(sc.Tracks))
	for _, tr := range sc.Tracks {
		total := formatValue(sc.Stats[tr.Type][year].Total)
		if len(sc.Tracks) > 1 {
			parts = append(parts, tr.Type+" "+total)
		} else {
			parts = append(parts, total)
		}
	}
	line := strings.Join(parts, " | ")
	if sc.Unit != "" {
		line += " " + sc.Unit
	}
	return line
}

// statsLine renders the streak and distribution summary of one track.
func statsLine(s stats.YearStatistics) string {
	if !s.HasData() {
		return "no data"
	}
	return fmt.Sprintf("days %d  streak %d  longest %d  avg %s  std %s  max %s  min %s",
		s.Count, s.CurrentStreak, s.LongestStreak,
		formatValue(s.Average), formatValue(s.StandardDeviation),
		formatValue(s.Max.Float64), formatValue(s.Min.Float64))
}

// drawLegend appends a row of color swatches with type labels.
func drawLegend(doc *draw.Document, sc *Scene, y float64) {
	x := sc.Origin.X
	for _, tr := range sc.Tracks {
		doc.Add(
			draw.Rect{X: x, Y: y - LegendSize*0.8, W: LegendSize, H: LegendSize * 0.8, Style: draw.Style{Fill: tr.Color}},
			draw.Text{X: x + LegendSize + 1, Y: y, Content: tr.Type, Style: textStyle(sc.Palette, LegendSize)},
		)
		x += LegendSize + 3 + float64(len(tr.Type))*LegendSize*0.6
	}
}
