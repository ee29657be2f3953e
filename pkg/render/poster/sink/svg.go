package sink

import (
	"bytes"
	"fmt"

	svg "github.com/ajstarks/svgo/float"

	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	tooltips  bool
	animation float64
	decimals  int

	canvas *svg.SVG
	cells  int
	cell   int
}

// WithTooltips toggles the date/value hover title of each cell.
func WithTooltips(on bool) SVGOption { return func(r *svgRenderer) { r.tooltips = on } }

// WithAnimation fades cells in sequentially over seconds. Zero disables it.
func WithAnimation(seconds float64) SVGOption {
	return func(r *svgRenderer) { r.animation = seconds }
}

// WithDecimals sets the number of decimals written for coordinates.
func WithDecimals(n int) SVGOption { return func(r *svgRenderer) { r.decimals = n } }

// RenderSVG writes doc as an SVG document.
func RenderSVG(doc *draw.Document, opts ...SVGOption) []byte {
	r := svgRenderer{tooltips: true, decimals: 2}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	r.canvas = svg.New(&buf)
	r.canvas.Decimals = r.decimals
	r.cells = len(doc.Cells())

	vb := doc.ViewBox()
	unit := doc.Unit
	if unit == "" {
		unit = draw.DefaultUnit
	}
	r.canvas.StartviewUnit(doc.Width, doc.Height, unit, vb[0], vb[1], vb[2], vb[3])
	if doc.Title != "" {
		r.canvas.Title(doc.Title)
	}
	for _, p := range doc.Primitives {
		r.primitive(p)
	}
	r.canvas.End()
	return buf.Bytes()
}

func (r *svgRenderer) primitive(p draw.Primitive) {
	switch v := p.(type) {
	case draw.Rect:
		r.rect(v)
	case draw.Text:
		r.canvas.Text(v.X, v.Y, v.Content, attrs(v.Style)...)
	case draw.Path:
		r.path(v)
	case draw.Group:
		args := attrs(v.Style)
		if v.ID != "" {
			args = append([]string{fmt.Sprintf(`id="%s"`, v.ID)}, args...)
		}
		r.canvas.Group(args...)
		if v.Title != "" && r.tooltips {
			r.canvas.Title(v.Title)
		}
		for _, c := range v.Children {
			r.primitive(c)
		}
		r.canvas.Gend()
	}
}

func (r *svgRenderer) rect(v draw.Rect) {
	args := attrs(v.Style)
	id, animated := r.cellID(v.Meta)
	if animated {
		args = append(args, fmt.Sprintf(`id="%s"`, id), `opacity="0"`)
	}
	if v.Title != "" && r.tooltips {
		r.canvas.Group()
		r.canvas.Title(v.Title)
		r.canvas.Rect(v.X, v.Y, v.W, v.H, args...)
		r.animate(id, animated)
		r.canvas.Gend()
		return
	}
	r.canvas.Rect(v.X, v.Y, v.W, v.H, args...)
	r.animate(id, animated)
}

func (r *svgRenderer) path(v draw.Path) {
	args := attrs(v.Style)
	id, animated := r.cellID(v.Meta)
	if animated {
		args = append(args, fmt.Sprintf(`id="%s"`, id), `opacity="0"`)
	}
	if v.Title != "" && r.tooltips {
		r.canvas.Group()
		r.canvas.Title(v.Title)
		r.canvas.Path(v.D, args...)
		r.animate(id, animated)
		r.canvas.Gend()
		return
	}
	r.canvas.Path(v.D, args...)
	r.animate(id, animated)
}

// cellID numbers cells in drawing order when animation is on.
func (r *svgRenderer) cellID(m *draw.Meta) (string, bool) {
	if m == nil || r.animation <= 0 {
		return "", false
	}
	r.cell++
	return fmt.Sprintf("c%d", r.cell), true
}

func (r *svgRenderer) animate(id string, animated bool) {
	if !animated {
		return
	}
	begin := r.animation * float64(r.cell-1) / float64(max(r.cells, 1))
	r.canvas.Animate(id, "opacity", 0, 1, 0.5, 1,
		fmt.Sprintf(`begin="%.3fs"`, begin), `fill="freeze"`)
}

// attrs converts a style into raw SVG attributes.
func attrs(s draw.Style) []string {
	var out []string
	if s.Fill != "" {
		out = append(out, fmt.Sprintf(`fill="%s"`, s.Fill))
	}
	if s.Stroke != "" {
		out = append(out, fmt.Sprintf(`stroke="%s"`, s.Stroke))
	}
	if s.StrokeWidth > 0 {
		out = append(out, fmt.Sprintf(`stroke-width="%s"`, draw.Num(s.StrokeWidth)))
	}
	if s.FontSize > 0 {
		out = append(out, fmt.Sprintf(`font-size="%s"`, draw.Num(s.FontSize)))
	}
	if s.FontFamily != "" {
		out = append(out, fmt.Sprintf(`font-family="%s"`, s.FontFamily))
	}
	if s.FontWeight != "" {
		out = append(out, fmt.Sprintf(`font-weight="%s"`, s.FontWeight))
	}
	if s.Anchor != "" {
		out = append(out, fmt.Sprintf(`text-anchor="%s"`, s.Anchor))
	}
	return out
}
