// Package draw defines the vector primitives a poster is made of.
//
// A [Document] is a canvas size plus an ordered list of primitives:
// [Rect], [Text], [Path] and [Group]. Layout code appends primitives in
// drawing order; sinks consume them in that same order and never reorder.
// Primitives are plain values and are not modified after they are added.
package draw

import (
	"math"
	"strconv"
)

// Kind tags a primitive variant.
type Kind string

// Primitive kinds.
const (
	KindRect  Kind = "rect"
	KindText  Kind = "text"
	KindPath  Kind = "path"
	KindGroup Kind = "group"
)

// Primitive is one drawing instruction.
type Primitive interface {
	Kind() Kind
}

// Point is a position in canvas units.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Polar returns the point at radius r and angle a (radians, clockwise from
// twelve o'clock) around p.
func (p Point) Polar(r, a float64) Point {
	return Point{p.X + r*math.Sin(a), p.Y - r*math.Cos(a)}
}

// Style carries fill, stroke and font attributes.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
	FontFamily  string  `json:"font_family,omitempty"`
	FontWeight  string  `json:"font_weight,omitempty"`
	Anchor      string  `json:"anchor,omitempty"`
}

// Meta describes the data behind a cell primitive.
type Meta struct {
	Date  string  `json:"date,omitempty"`
	Type  string  `json:"type,omitempty"`
	Value float64 `json:"value"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
	Style      Style
	Title      string
	Meta       *Meta
}

// Kind implements Primitive.
func (Rect) Kind() Kind { return KindRect }

// Text is a single line of text anchored at X, Y (baseline).
type Text struct {
	X, Y    float64
	Content string
	Style   Style
}

// Kind implements Primitive.
func (Text) Kind() Kind { return KindText }

// Path is an SVG path outline.
type Path struct {
	D     string
	Style Style
	Title string
	Meta  *Meta
}

// Kind implements Primitive.
func (Path) Kind() Kind { return KindPath }

// Group nests primitives that share a style or belong to one cell.
type Group struct {
	ID       string
	Style    Style
	Title    string
	Children []Primitive
}

// Kind implements Primitive.
func (Group) Kind() Kind { return KindGroup }

// Num formats a coordinate with at most three decimals.
func Num(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
