package layout

import (
	"math"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
	"github.com/matzehuels/heatposter/pkg/series"
)

// Circular geometry in canvas units.
const (
	CircularMargin = 10.0
	InnerRatio     = 0.3
	RingGap        = 0.3

	monthRingOffset = 3.0
	headerLeading   = 4.0
	minOuterRadius  = 5.0
)

// Circular lays out each year as a ring of day wedges. Ring 0 is innermost;
// several types in one year occupy consecutive rings.
type Circular struct {
	Center draw.Point
	Inner  float64
	Outer  float64
	Rings  int
}

// NewCircular returns an unfitted Circular engine. Draw fits the rings to
// the scene; set the fields directly to use Position on its own.
func NewCircular() *Circular {
	return &Circular{}
}

// Kind implements Engine.
func (c *Circular) Kind() Kind { return KindCircular }

// fit sizes the rings to the canvas width and scene.
func (c *Circular) fit(sc *Scene) Circular {
	outer := sc.Width/2 - CircularMargin
	rings := ringCount(sc)
	return Circular{
		Center: draw.Point{X: sc.Width / 2, Y: sc.Origin.Y + monthRingOffset + MonthSize + outer},
		Inner:  outer * InnerRatio,
		Outer:  outer,
		Rings:  rings,
	}
}

func ringCount(sc *Scene) int {
	return max(len(sc.Years)*len(sc.Tracks), 1)
}

// MinWidth implements Engine. Every ring must stay wider than the gap
// between rings.
func (c *Circular) MinWidth(sc *Scene) float64 {
	outer := max(minOuterRadius, 2*float64(ringCount(sc))*RingGap/(1-InnerRatio))
	return 2 * (CircularMargin + outer)
}

// RingWidth returns the radial width of one ring.
func (c *Circular) RingWidth() float64 {
	if c.Rings < 1 {
		return c.Outer - c.Inner
	}
	return (c.Outer - c.Inner) / float64(c.Rings)
}

// Angle returns the start angle of d: 2π × day-of-year / days-in-year.
func Angle(d civil.Date) float64 {
	return 2 * math.Pi * float64(series.DayOfYear(d)) / float64(series.DaysIn(d.Year))
}

// Position places d on ring. Each ring restarts at angle 0 on January 1.
func (c *Circular) Position(d civil.Date, ring int) Cell {
	return Cell{
		Date:   d,
		Ring:   ring,
		Angle:  Angle(d),
		Radius: c.Inner + float64(ring)*c.RingWidth(),
	}
}

func headerLines(sc *Scene) int {
	n := 1
	if sc.ShowStats {
		n += len(sc.Tracks)
	}
	return n
}

// Height implements Engine.
func (c *Circular) Height(sc *Scene) float64 {
	f := c.fit(sc)
	h := f.Center.Y + f.Outer + monthRingOffset + headerLeading
	h += float64(len(sc.Years)*headerLines(sc)) * headerLeading
	if len(sc.Tracks) > 1 {
		h += FooterHeight
	}
	return h
}

// Draw implements Engine. Monthly summaries are grid-only and are rejected
// before a scene reaches this engine.
func (c *Circular) Draw(doc *draw.Document, sc *Scene) {
	f := c.fit(sc)

	y := f.Center.Y + f.Outer + monthRingOffset + headerLeading
	for i, year := range sc.Years {
		y = f.drawHeader(doc, sc, year, y)
		for j, tr := range sc.Tracks {
			f.drawRing(doc, sc, tr, year, i*len(sc.Tracks)+j)
		}
	}
	f.drawMonths(doc, sc)
}

func (c *Circular) drawHeader(doc *draw.Document, sc *Scene, year int, y float64) float64 {
	style := textStyle(sc.Palette, TotalSize)
	style.FontWeight = "bold"
	doc.Add(draw.Text{X: sc.Origin.X, Y: y, Content: strconv.Itoa(year) + "  " + totalLine(sc, year), Style: style})
	y += headerLeading
	if !sc.ShowStats {
		return y
	}
	for _, tr := range sc.Tracks {
		line := statsLine(sc.Stats[tr.Type][year])
		if len(sc.Tracks) > 1 {
			line = tr.Type + ": " + line
		}
		doc.Add(draw.Text{X: sc.Origin.X, Y: y, Content: line, Style: textStyle(sc.Palette, StatsSize)})
		y += headerLeading
	}
	return y
}

func (c *Circular) drawRing(doc *draw.Document, sc *Scene, tr Track, year, ring int) {
	step := 2 * math.Pi / float64(series.DaysIn(year))
	w := c.RingWidth()
	typ := ""
	if len(sc.Tracks) > 1 {
		typ = tr.Type
	}
	for _, d := range series.Days(year) {
		cell := c.Position(d, ring)
		v := sc.Series.Value(d, tr.Type)
		doc.Add(draw.Path{
			D:     draw.Wedge(c.Center, cell.Radius+RingGap/2, cell.Radius+w-RingGap/2, cell.Angle, cell.Angle+step),
			Style: draw.Style{Fill: tr.Mapper.ColorFor(v, tr.Range)},
			Title: cellTitle(d, typ, v, sc.Unit),
			Meta:  &draw.Meta{Date: d.String(), Type: typ, Value: v},
		})
	}
}

func (c *Circular) drawMonths(doc *draw.Document, sc *Scene) {
	if len(sc.Years) == 0 {
		return
	}
	year := sc.Years[0]
	style := textStyle(sc.Palette, MonthSize)
	style.Anchor = "middle"
	for m := time.January; m <= time.December; m++ {
		a := Angle(civil.Date{Year: year, Month: m, Day: 1})
		p := c.Center.Polar(c.Outer+monthRingOffset, a)
		doc.Add(draw.Text{X: p.X, Y: p.Y, Content: monthNames[m-1], Style: style})
	}
}

// DrawFooter implements Engine.
func (c *Circular) DrawFooter(doc *draw.Document, sc *Scene) {
	drawLegend(doc, sc, c.Height(sc)-FooterHeight+LegendSize+2)
}
