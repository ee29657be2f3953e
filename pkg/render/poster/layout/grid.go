package layout

import (
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
	"github.com/matzehuels/heatposter/pkg/series"
)

// Grid geometry in canvas units.
const (
	CellSize        = 2.6
	Pitch           = 3.5
	YearBlockHeight = 43.0
	FooterHeight    = 10.0

	yearBaseline  = 5.0
	statsBaseline = 9.0
	statsLeading  = 2.8
	monthBaseline = 13.0
	cellTop       = 14.5
	summaryGap    = 1.0
)

// Grid lays out each year as week columns of seven weekday rows.
type Grid struct {
	// WeekStart is the weekday drawn in row 0.
	WeekStart time.Weekday
}

// GridOption configures a Grid.
type GridOption func(*Grid)

// WithWeekStart sets the weekday of row 0 (Sunday by default).
func WithWeekStart(d time.Weekday) GridOption {
	return func(g *Grid) { g.WeekStart = d }
}

// NewGrid returns a Grid with weeks starting on Sunday.
func NewGrid(opts ...GridOption) *Grid {
	g := &Grid{WeekStart: time.Sunday}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Kind implements Engine.
func (g *Grid) Kind() Kind { return KindGrid }

// lead returns the number of empty rows before January 1 in its first column.
func (g *Grid) lead(year int) int {
	return (int(series.FirstDay(year).Weekday()) - int(g.WeekStart) + 7) % 7
}

// Weeks returns the number of columns year spans.
func (g *Grid) Weeks(year int) int {
	return (g.lead(year)+series.DaysIn(year)-1)/7 + 1
}

// Position places d in its year's block whose first cell is at origin.
func (g *Grid) Position(d civil.Date, origin draw.Point) Cell {
	idx := g.lead(d.Year) + series.DayOfYear(d)
	col, row := idx/7, idx%7
	return Cell{
		Date: d,
		Col:  col,
		Row:  row,
		X:    origin.X + float64(col)*Pitch,
		Y:    origin.Y + float64(row)*Pitch,
	}
}

// extraStatsLines is the number of statistics lines beyond the first.
func extraStatsLines(sc *Scene) int {
	if !sc.ShowStats || len(sc.Tracks) < 2 {
		return 0
	}
	return len(sc.Tracks) - 1
}

func (g *Grid) blockHeight(sc *Scene) float64 {
	return YearBlockHeight + float64(extraStatsLines(sc))*statsLeading
}

func (g *Grid) blockOrigin(sc *Scene, i int) draw.Point {
	return draw.Point{X: sc.Origin.X, Y: sc.Origin.Y + float64(i)*g.blockHeight(sc)}
}

func (g *Grid) contentWidth(year int) float64 {
	return float64(g.Weeks(year))*Pitch - (Pitch - CellSize)
}

// Height implements Engine.
func (g *Grid) Height(sc *Scene) float64 {
	h := sc.Origin.Y + float64(len(sc.Years))*g.blockHeight(sc)
	if len(sc.Tracks) > 1 {
		h += FooterHeight
	}
	return h
}

// MinWidth implements Engine. Cell geometry is fixed, so the widest year
// block plus the left margin must fit.
func (g *Grid) MinWidth(sc *Scene) float64 {
	var w float64
	for _, year := range sc.Years {
		w = max(w, g.contentWidth(year))
	}
	return sc.Origin.X + w
}

// Draw implements Engine.
func (g *Grid) Draw(doc *draw.Document, sc *Scene) {
	sum := newSummary(sc)
	for i, year := range sc.Years {
		o := g.blockOrigin(sc, i)
		shift := float64(extraStatsLines(sc)) * statsLeading
		g.drawHeader(doc, sc, year, o)

		cellOrigin := draw.Point{X: o.X, Y: o.Y + cellTop + shift}
		labelY := o.Y + monthBaseline + shift
		if sc.Summary {
			g.drawSummary(doc, sc, sum, year, cellOrigin, labelY)
			continue
		}
		g.drawDays(doc, sc, year, cellOrigin)
		g.drawMonths(doc, sc, year, cellOrigin, labelY)
	}
}

func (g *Grid) drawHeader(doc *draw.Document, sc *Scene, year int, o draw.Point) {
	yearStyle := textStyle(sc.Palette, YearLabelSize)
	yearStyle.FontWeight = "bold"
	totalStyle := textStyle(sc.Palette, TotalSize)
	totalStyle.Anchor = "end"

	doc.Add(
		draw.Text{X: o.X, Y: o.Y + yearBaseline, Content: strconv.Itoa(year), Style: yearStyle},
		draw.Text{X: o.X + g.contentWidth(year), Y: o.Y + yearBaseline, Content: totalLine(sc, year), Style: totalStyle},
	)
	if !sc.ShowStats {
		return
	}
	for j, tr := range sc.Tracks {
		line := statsLine(sc.Stats[tr.Type][year])
		if len(sc.Tracks) > 1 {
			line = tr.Type + ": " + line
		}
		doc.Add(draw.Text{
			X:       o.X,
			Y:       o.Y + statsBaseline + float64(j)*statsLeading,
			Content: line,
			Style:   textStyle(sc.Palette, StatsSize),
		})
	}
}

func (g *Grid) drawDays(doc *draw.Document, sc *Scene, year int, origin draw.Point) {
	n := float64(len(sc.Tracks))
	for _, d := range series.Days(year) {
		c := g.Position(d, origin)
		if len(sc.Tracks) == 1 {
			doc.Add(dayRect(sc, sc.Tracks[0], d, c.X, c.Y, CellSize))
			continue
		}
		group := draw.Group{ID: "day-" + d.String(), Title: d.String()}
		w := CellSize / n
		for j, tr := range sc.Tracks {
			group.Children = append(group.Children, dayRect(sc, tr, d, c.X+float64(j)*w, c.Y, w))
		}
		doc.Add(group)
	}
}

func dayRect(sc *Scene, tr Track, d civil.Date, x, y, w float64) draw.Rect {
	v := sc.Series.Value(d, tr.Type)
	typ := ""
	if len(sc.Tracks) > 1 {
		typ = tr.Type
	}
	return draw.Rect{
		X: x, Y: y, W: w, H: CellSize,
		Style: draw.Style{Fill: tr.Mapper.ColorFor(v, tr.Range)},
		Title: cellTitle(d, typ, v, sc.Unit),
		Meta:  &draw.Meta{Date: d.String(), Type: typ, Value: v},
	}
}

func (g *Grid) drawMonths(doc *draw.Document, sc *Scene, year int, origin draw.Point, y float64) {
	for m := time.January; m <= time.December; m++ {
		c := g.Position(civil.Date{Year: year, Month: m, Day: 1}, origin)
		doc.Add(draw.Text{X: c.X, Y: y, Content: monthNames[m-1], Style: textStyle(sc.Palette, MonthSize)})
	}
}

func (g *Grid) drawSummary(doc *draw.Document, sc *Scene, sum *summary, year int, origin draw.Point, labelY float64) {
	width := g.contentWidth(year)
	w := (width - 11*summaryGap) / 12
	h := 7*Pitch - (Pitch - CellSize)
	for m := 0; m < 12; m++ {
		x := origin.X + float64(m)*(w+summaryGap)
		key := monthKey(year, time.Month(m+1))
		sub := w / float64(len(sc.Tracks))
		var children []draw.Primitive
		for j, tr := range sc.Tracks {
			v := sum.totals[tr.Type][key]
			typ := ""
			if len(sc.Tracks) > 1 {
				typ = tr.Type
			}
			children = append(children, draw.Rect{
				X: x + float64(j)*sub, Y: origin.Y, W: sub, H: h,
				Style: draw.Style{Fill: tr.Mapper.ColorFor(v, sum.ranges[tr.Type])},
				Title: key + " " + formatValue(v),
				Meta:  &draw.Meta{Date: key, Type: typ, Value: v},
			})
		}
		if len(children) == 1 {
			doc.Add(children[0])
		} else {
			doc.Add(draw.Group{ID: "month-" + key, Title: key, Children: children})
		}
		doc.Add(draw.Text{X: x, Y: labelY, Content: monthNames[m], Style: textStyle(sc.Palette, MonthSize)})
	}
}

// DrawFooter implements Engine.
func (g *Grid) DrawFooter(doc *draw.Document, sc *Scene) {
	y := sc.Origin.Y + float64(len(sc.Years))*g.blockHeight(sc) + LegendSize + 2
	drawLegend(doc, sc, y)
}
