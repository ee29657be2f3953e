package pipeline

import (
	"context"

	"github.com/matzehuels/heatposter/pkg/render/poster"
	"github.com/matzehuels/heatposter/pkg/render/poster/sink"
)

// Render writes a composed poster in one format.
func Render(ctx context.Context, p *poster.Poster, format string, opts Options) ([]byte, error) {
	svgOpts := []sink.SVGOption{sink.WithTooltips(!opts.NoTooltip)}

	switch format {
	case FormatSVG:
		svgOpts = append(svgOpts, sink.WithAnimation(opts.Animation))
		return sink.RenderSVG(p.Document, svgOpts...), nil
	case FormatJSON:
		return sink.RenderJSON(p.Document,
			sink.WithJSONStats(p.Stats),
			sink.WithJSONLayout(string(p.Layout)))
	case FormatPNG:
		return sink.RenderPNG(ctx, p.Document,
			sink.WithScale(DefaultPNGScale),
			sink.WithPNGSVGOptions(svgOpts...))
	case FormatPDF:
		return sink.RenderPDF(ctx, p.Document, sink.WithPDFSVGOptions(svgOpts...))
	}
	return nil, ValidateFormat(format)
}
