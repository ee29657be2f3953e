package layout

import (
	"fmt"
	"time"

	"github.com/matzehuels/heatposter/pkg/series"
)

// summary holds monthly totals per track for summary posters.
type summary struct {
	totals map[string]map[string]float64
	ranges map[string]series.ValueRange
}

func monthKey(year int, m time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(m))
}

// newSummary aggregates the scene's series by month. Ranges span the
// positive monthly totals of all rendered years so months compare across
// years.
func newSummary(sc *Scene) *summary {
	s := &summary{
		totals: make(map[string]map[string]float64, len(sc.Tracks)),
		ranges: make(map[string]series.ValueRange, len(sc.Tracks)),
	}
	if !sc.Summary {
		return s
	}
	for _, tr := range sc.Tracks {
		totals := make(map[string]float64)
		for _, year := range sc.Years {
			for _, d := range series.Days(year) {
				if v := sc.Series.Value(d, tr.Type); v > 0 {
					totals[monthKey(d.Year, d.Month)] += v
				}
			}
		}
		var r series.ValueRange
		for _, v := range totals {
			r.Extend(v)
		}
		s.totals[tr.Type] = totals
		s.ranges[tr.Type] = r
	}
	return s
}
