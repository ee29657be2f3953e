package source

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/heatposter/pkg/integrations/github"
	"github.com/matzehuels/heatposter/pkg/series"
)

// GitHub reads a user's contribution calendar.
type GitHub struct {
	client  *github.Client
	login   string
	name    string
	refresh bool
}

// NewGitHub returns a GitHub source labelled name (default "github").
func NewGitHub(client *github.Client, login, name string, refresh bool) *GitHub {
	if name == "" {
		name = "github"
	}
	return &GitHub{client: client, login: login, name: name, refresh: refresh}
}

// Name returns the type label.
func (g *GitHub) Name() string { return g.name }

// Load fetches one calendar per year concurrently.
func (g *GitHub) Load(ctx context.Context, years series.YearSet) (*series.DaySeries, error) {
	var mu sync.Mutex
	days := make(map[string]float64)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentLoads)
	for _, year := range years {
		eg.Go(func() error {
			cal, err := g.client.Contributions(ctx, g.login, year, g.refresh)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, d := range cal {
				days[d.Date] += float64(d.Count)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return FromDays(days, years)
}
