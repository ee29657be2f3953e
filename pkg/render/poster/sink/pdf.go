package sink

import (
	"context"

	"github.com/matzehuels/heatposter/pkg/render"
	"github.com/matzehuels/heatposter/pkg/render/poster/draw"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// RenderPDF renders the document as PDF via SVG conversion.
func RenderPDF(ctx context.Context, doc *draw.Document, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	svg := RenderSVG(doc, append(r.svgOpts, WithAnimation(0))...)
	return render.ToPDF(ctx, svg)
}
