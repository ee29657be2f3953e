// Package render holds output helpers shared by poster renderers.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg, _ := sink.RenderSVG(doc)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Poster Rendering
//
// The poster subpackages turn a day series into vector primitives:
//   - [poster]: composition (validation, statistics, engine selection)
//   - [poster/layout]: Grid and Circular cell placement
//   - [poster/palette]: colors and value-to-band mapping
//   - [poster/draw]: the primitive model
//   - [poster/sink]: SVG, JSON, PNG and PDF writers
package render
