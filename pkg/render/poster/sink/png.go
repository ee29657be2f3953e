package sink

import (
	"context"

	"github.com/matzehuels/heatposter/pkg/render"
	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the document as PNG via SVG conversion.
func RenderPNG(ctx context.Context, doc *draw.Document, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	// Animation is meaningless in a raster.
	svg := RenderSVG(doc, append(r.svgOpts, WithAnimation(0))...)
	return render.ToPNG(ctx, svg, r.scale)
}
