package source

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	mstats "github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/integrations"
	"github.com/matzehuels/heatposter/pkg/observability"
	"github.com/matzehuels/heatposter/pkg/series"
)

// maxConcurrentLoads bounds the number of sources loading at once.
const maxConcurrentLoads = 4

// Source yields the daily values of one tracked type.
type Source interface {
	// Name is the type label of the source's values.
	Name() string

	// Load returns a scalar series restricted to years.
	Load(ctx context.Context, years series.YearSet) (*series.DaySeries, error)
}

// LoadAll loads sources concurrently. One source yields its scalar series
// unchanged; several are merged into a series typed by source name, so
// names must be distinct.
func LoadAll(ctx context.Context, years series.YearSet, sources ...Source) (*series.DaySeries, error) {
	if len(sources) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSource, "no source configured")
	}
	if err := years.Validate(); err != nil {
		return nil, err
	}
	names := lo.Map(sources, func(s Source, _ int) string { return s.Name() })
	if len(sources) > 1 {
		if err := errors.ValidateTypeList(names); err != nil {
			return nil, err
		}
	}

	results := make([]*series.DaySeries, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, src := range sources {
		g.Go(func() error {
			s, err := load(gctx, src, years)
			if err != nil {
				return err
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(results) == 1 {
		return results[0], nil
	}
	merged := series.New()
	for i, s := range results {
		if err := merged.Merge(names[i], s); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func load(ctx context.Context, src Source, years series.YearSet) (*series.DaySeries, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, src.Name())
	start := time.Now()

	s, err := src.Load(ctx, years)
	n := 0
	if s != nil {
		n = s.Len()
	}
	hooks.OnLoadComplete(ctx, src.Name(), n, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(classify(err), err, "load %s", src.Name())
	}
	log.FromContext(ctx).Debug("loaded source", "source", src.Name(), "days", n, "duration", time.Since(start))
	return s, nil
}

// classify maps integration and context errors onto error codes.
func classify(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	switch {
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.ErrCodeNotFound
	case stderrors.Is(err, integrations.ErrUnauthorized):
		return errors.ErrCodeUnauthorized
	case stderrors.Is(err, integrations.ErrNetwork):
		return errors.ErrCodeNetwork
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.ErrCodeTimeout
	}
	return errors.ErrCodeInternal
}

// FromDays builds a scalar series from ISO-date keyed values, keeping only
// dates inside years. Zero values are kept.
func FromDays(days map[string]float64, years series.YearSet) (*series.DaySeries, error) {
	s := series.New()
	for key, v := range days {
		d, err := series.ParseDate(key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDate, err, "invalid date %q", key)
		}
		if !years.Contains(d.Year) {
			continue
		}
		if err := s.Add(d, "", v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SpecialThreshold returns the given percentile (0-100] of the positive
// values of typ in years, for use as the special color threshold. It
// returns 0 when there are no positive values.
func SpecialThreshold(s *series.DaySeries, typ string, years series.YearSet, percentile float64) (float64, error) {
	if !(percentile > 0 && percentile <= 100) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "percentile %v out of range (0, 100]", percentile)
	}
	var data mstats.Float64Data
	for _, d := range s.Dates() {
		if !years.Contains(d.Year) {
			continue
		}
		if v := s.Value(d, typ); v > 0 {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return 0, nil
	}
	return mstats.Percentile(data, percentile)
}
