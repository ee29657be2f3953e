// Package pkg provides the core libraries for Heatposter calendar heatmaps.
//
// # Overview
//
// Heatposter turns per-day values (distances run, commits made, pages read)
// into heatmap posters: one cell per calendar day, colored by value band,
// arranged as a GitHub-style grid or as concentric year rings. The pkg
// directory is organized into these areas:
//
//  1. [series] and [stats] - the day series model and per-year statistics
//  2. [render] - poster composition, layouts, palettes and output sinks
//  3. [source] and [integrations] - loading series from files, Notion,
//     GitHub and MongoDB
//  4. [pipeline] - orchestration (load → compose → render) with caching
//  5. [api] and [config] - the HTTP surface and file/env configuration
//
// # Architecture
//
// The typical data flow through Heatposter:
//
//	CSV/JSON file, Notion, GitHub, MongoDB
//	         ↓
//	    [source] package (load and merge per type)
//	         ↓
//	    [series] package (DaySeries, YearSet, ValueRange)
//	         ↓
//	    [render/poster] package (statistics + layout engine)
//	         ↓
//	    SVG/PDF/PNG/JSON output
//
// # Quick Start
//
// Compose a poster from an in-memory series:
//
//	import (
//	    "github.com/matzehuels/heatposter/pkg/render/poster"
//	    "github.com/matzehuels/heatposter/pkg/render/poster/sink"
//	    "github.com/matzehuels/heatposter/pkg/series"
//	)
//
//	s := series.New()
//	_ = s.Add(civil.Date{Year: 2023, Month: 1, Day: 2}, "run", 5.2)
//
//	p, err := poster.Compose(poster.Input{
//	    Series: s,
//	    Years:  series.NewYearSet(2023),
//	    Types:  []string{"run"},
//	}, poster.WithTitle("Running"), poster.WithUnit("km"))
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(p.Document)
//
// Or run the whole pipeline with caching:
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Sources: []pipeline.SourceSpec{{Kind: pipeline.SourceFile, Path: "runs.csv"}},
//	    Years:   series.NewYearSet(2023),
//	    Formats: []string{pipeline.FormatSVG},
//	})
package pkg
