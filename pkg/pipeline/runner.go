package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heatposter/pkg/cache"
	"github.com/matzehuels/heatposter/pkg/observability"
	"github.com/matzehuels/heatposter/pkg/render/poster"
	"github.com/matzehuels/heatposter/pkg/series"
	"github.com/matzehuels/heatposter/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → compose → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	ctx = log.WithContext(ctx, opts.Logger)

	// Stage 1: Load
	loadStart := time.Now()
	s, seriesHits, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	opts.Logger.Info("loaded series",
		"sources", len(opts.Sources),
		"days", s.Len(),
		"years", opts.Years.String(),
		"duration", loadTime)

	// Stages 2 and 3
	result, err := r.ComposeSeries(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	result.Timing.LoadTime = loadTime
	result.CacheInfo.SeriesHits = seriesHits
	return result, nil
}

// Load reads every source of opts and merges them into one series. It
// reports how many sources were served from the cache.
func (r *Runner) Load(ctx context.Context, opts Options) (*series.DaySeries, int, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, err
	}

	var hits atomic.Int32
	sources, closeSources, err := r.openSources(ctx, opts, &hits)
	if err != nil {
		return nil, 0, err
	}
	defer closeSources()

	s, err := source.LoadAll(ctx, opts.Years, sources...)
	if err != nil {
		return nil, 0, err
	}
	return s, int(hits.Load()), nil
}

// ComposeSeries composes and renders a poster from an already loaded series.
func (r *Runner) ComposeSeries(ctx context.Context, s *series.DaySeries, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCompose(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if s == nil {
		s = series.New()
	}

	result := &Result{
		Series:    s,
		Types:     ResolveTypes(opts, s),
		Artifacts: make(map[string][]byte),
	}
	data, err := s.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("serialize series for cache key: %w", err)
	}
	result.SeriesHash = cache.Hash(data)

	threshold, err := r.specialThreshold(s, result.Types, opts)
	if err != nil {
		return nil, err
	}

	// Stage 2: Compose
	composeStart := time.Now()
	p, err := r.Compose(ctx, s, result.Types, threshold, opts)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	result.Poster = p
	result.Timing.ComposeTime = time.Since(composeStart)

	opts.Logger.Info("composed poster",
		"layout", p.Layout,
		"types", len(result.Types),
		"cells", len(p.Document.Cells()),
		"duration", result.Timing.ComposeTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hits, err := r.RenderWithCacheInfo(ctx, p, result.SeriesHash, result.Types, threshold, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Timing.RenderTime = time.Since(renderStart)
	result.CacheInfo.ArtifactHits = hits

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hits,
		"duration", result.Timing.RenderTime)

	return result, nil
}

// Compose lays out a poster for types and reports it to the pipeline hooks.
func (r *Runner) Compose(ctx context.Context, s *series.DaySeries, types []string, threshold float64, opts Options) (*poster.Poster, error) {
	composeOpts, err := opts.ComposeOptions(threshold)
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, opts.Layout, len(opts.Years))
	start := time.Now()

	p, err := poster.Compose(poster.Input{Series: s, Years: opts.Years, Types: types}, composeOpts...)
	cells := 0
	if p != nil {
		cells = len(p.Document.Cells())
	}
	hooks.OnComposeComplete(ctx, opts.Layout, cells, time.Since(start), err)
	return p, err
}

// RenderWithCacheInfo renders every requested format, reusing cached
// artifacts, and returns how many formats were served from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *poster.Poster, seriesHash string, types []string, threshold float64, opts Options) (map[string][]byte, int, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, 0, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	hits := 0
	var renderErr error
	for _, format := range opts.Formats {
		render := func(ctx context.Context) ([]byte, error) {
			return Render(ctx, p, format, opts)
		}
		key := r.Keyer.ArtifactKey(seriesHash, opts.ArtifactKeyOpts(format, types, threshold))

		var (
			data []byte
			hit  bool
			err  error
		)
		if opts.Refresh {
			data, err = render(ctx)
			if err == nil {
				_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
			}
		} else {
			data, hit, err = cache.GetOrLoad(ctx, r.Cache, key, cache.TTLArtifact, render)
		}
		if err != nil {
			renderErr = fmt.Errorf("render %s: %w", format, err)
			break
		}
		if hit {
			hits++
		}
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), renderErr)
	if renderErr != nil {
		return nil, hits, renderErr
	}
	return artifacts, hits, nil
}

// specialThreshold returns the explicit threshold, or derives one from the
// configured percentile of the first type.
func (r *Runner) specialThreshold(s *series.DaySeries, types []string, opts Options) (float64, error) {
	if opts.SpecialThreshold > 0 || opts.SpecialPercentile == 0 || len(types) == 0 {
		return opts.SpecialThreshold, nil
	}
	v, err := source.SpecialThreshold(s, types[0], opts.Years, opts.SpecialPercentile)
	if err != nil {
		return 0, err
	}
	opts.Logger.Debug("derived special threshold",
		"percentile", opts.SpecialPercentile,
		"threshold", v)
	return v, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
