package sink

import (
	"github.com/goccy/go-json"

	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
	"github.com/matzehuels/heatposter/pkg/stats"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	stats  map[string]stats.Table
	layout string
	indent bool
}

// WithJSONStats includes the per-type statistics tables in the output.
func WithJSONStats(t map[string]stats.Table) JSONOption {
	return func(r *jsonRenderer) { r.stats = t }
}

// WithJSONLayout records the layout name ("grid", "circular").
func WithJSONLayout(name string) JSONOption { return func(r *jsonRenderer) { r.layout = name } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Width      float64                `json:"width"`
	Height     float64                `json:"height"`
	Unit       string                 `json:"unit"`
	Title      string                 `json:"title,omitempty"`
	Layout     string                 `json:"layout,omitempty"`
	Primitives []jsonPrimitive        `json:"primitives"`
	Stats      map[string]stats.Table `json:"stats,omitempty"`
}

type jsonPrimitive struct {
	Kind     draw.Kind       `json:"kind"`
	X        *float64        `json:"x,omitempty"`
	Y        *float64        `json:"y,omitempty"`
	W        *float64        `json:"w,omitempty"`
	H        *float64        `json:"h,omitempty"`
	D        string          `json:"d,omitempty"`
	Content  string          `json:"content,omitempty"`
	ID       string          `json:"id,omitempty"`
	Title    string          `json:"title,omitempty"`
	Style    *draw.Style     `json:"style,omitempty"`
	Meta     *draw.Meta      `json:"meta,omitempty"`
	Children []jsonPrimitive `json:"children,omitempty"`
}

// RenderJSON writes the primitive stream of doc as JSON.
func RenderJSON(doc *draw.Document, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:      doc.Width,
		Height:     doc.Height,
		Unit:       doc.Unit,
		Title:      doc.Title,
		Layout:     r.layout,
		Primitives: convertPrimitives(doc.Primitives),
		Stats:      r.stats,
	}
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func convertPrimitives(ps []draw.Primitive) []jsonPrimitive {
	out := make([]jsonPrimitive, 0, len(ps))
	for _, p := range ps {
		out = append(out, convertPrimitive(p))
	}
	return out
}

func convertPrimitive(p draw.Primitive) jsonPrimitive {
	jp := jsonPrimitive{Kind: p.Kind()}
	switch v := p.(type) {
	case draw.Rect:
		jp.X, jp.Y, jp.W, jp.H = ptr(v.X), ptr(v.Y), ptr(v.W), ptr(v.H)
		jp.Style, jp.Title, jp.Meta = stylePtr(v.Style), v.Title, v.Meta
	case draw.Text:
		jp.X, jp.Y = ptr(v.X), ptr(v.Y)
		jp.Content, jp.Style = v.Content, stylePtr(v.Style)
	case draw.Path:
		jp.D, jp.Style, jp.Title, jp.Meta = v.D, stylePtr(v.Style), v.Title, v.Meta
	case draw.Group:
		jp.ID, jp.Style, jp.Title = v.ID, stylePtr(v.Style), v.Title
		jp.Children = convertPrimitives(v.Children)
	}
	return jp
}

func ptr(v float64) *float64 { return &v }

func stylePtr(s draw.Style) *draw.Style {
	if s == (draw.Style{}) {
		return nil
	}
	return &s
}
