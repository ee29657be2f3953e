// Package sink writes a composed poster to an output format.
//
// # Overview
//
// A "sink" transforms a [draw.Document] into bytes. Primitives are written
// exactly once, in the order the document holds them. This package provides:
//
//   - SVG: vector output sized in millimeters with a matching viewBox
//   - JSON: the primitive stream for external tools
//   - PDF: print-ready output (requires rsvg-convert)
//   - PNG: raster output (requires rsvg-convert)
//
// # SVG Output
//
// [RenderSVG] writes the document with [github.com/ajstarks/svgo/float]:
//
//	svg := sink.RenderSVG(doc,
//	    sink.WithTooltips(true),
//	    sink.WithAnimation(10),
//	)
//
// Cells carry a hover tooltip with their date and value. [WithAnimation]
// fades cells in one after another over the given number of seconds.
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] render SVG first, then convert it with
// [render.ToPDF] and [render.ToPNG].
package sink
