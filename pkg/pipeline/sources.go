package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/heatposter/pkg/cache"
	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/integrations/github"
	"github.com/matzehuels/heatposter/pkg/integrations/notion"
	"github.com/matzehuels/heatposter/pkg/series"
	"github.com/matzehuels/heatposter/pkg/source"
)

// openSources builds the sources of opts. The returned close function
// releases database connections and must be called after loading.
func (r *Runner) openSources(ctx context.Context, opts Options, hits *atomic.Int32) ([]source.Source, func(), error) {
	var (
		sources      []source.Source
		mongoClients []*mongo.Client
		notionClient *notion.Client
		githubClient *github.Client
	)
	closeAll := func() {
		for _, c := range mongoClients {
			_ = c.Disconnect(context.WithoutCancel(ctx))
		}
	}

	for _, spec := range opts.Sources {
		var src source.Source
		switch spec.Kind {
		case SourceFile:
			src = source.NewFile(spec.Path, spec.Name)
		case SourceNotion:
			if opts.NotionToken == "" {
				closeAll()
				return nil, nil, errors.New(errors.ErrCodeInvalidSource, "notion source requires a token (NOTION_TOKEN)")
			}
			if notionClient == nil {
				notionClient = notion.NewClient(opts.NotionToken, r.Cache, cache.TTLHTTP)
				if opts.NotionBaseURL != "" {
					notionClient.SetBaseURL(opts.NotionBaseURL)
				}
			}
			src = source.NewNotion(notionClient, notion.Query{
				DatabaseID:    spec.Database,
				DateProperty:  spec.DateProperty,
				ValueProperty: spec.ValueProperty,
				Filter:        spec.Filter,
			}, spec.Name, opts.Refresh)
		case SourceGitHub:
			if err := github.ValidateLogin(spec.Login); err != nil {
				closeAll()
				return nil, nil, err
			}
			if githubClient == nil {
				c, err := github.NewClient(opts.GitHubToken, r.Cache, cache.TTLHTTP)
				if err != nil {
					closeAll()
					return nil, nil, err
				}
				if opts.GitHubBaseURL != "" {
					c.SetBaseURL(opts.GitHubBaseURL)
				}
				githubClient = c
			}
			src = source.NewGitHub(githubClient, spec.Login, spec.Name, opts.Refresh)
		case SourceMongo:
			client, coll, err := source.ConnectMongo(ctx, spec.URI, spec.Database, spec.Collection)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			mongoClients = append(mongoClients, client)
			src = source.NewMongo(coll, spec.Name, source.WithMongoFields(spec.DateProperty, spec.ValueProperty))
		default:
			closeAll()
			return nil, nil, spec.Validate()
		}

		if spec.Kind != SourceFile && !opts.Refresh {
			src = &cachedSource{
				Source: src,
				cache:  r.Cache,
				key:    r.Keyer.SeriesKey(spec.Kind, opts.SeriesKeyOpts(spec)),
				hits:   hits,
			}
		}
		sources = append(sources, src)
	}
	return sources, closeAll, nil
}

// cachedSource keeps the loaded series of a remote source in the cache.
type cachedSource struct {
	source.Source
	cache cache.Cache
	key   string
	hits  *atomic.Int32
}

func (c *cachedSource) Load(ctx context.Context, years series.YearSet) (*series.DaySeries, error) {
	data, hit, err := cache.GetOrLoad(ctx, c.cache, c.key, cache.TTLSeries, func(ctx context.Context) ([]byte, error) {
		s, err := c.Source.Load(ctx, years)
		if err != nil {
			return nil, err
		}
		return s.MarshalJSON()
	})
	if err != nil {
		return nil, err
	}
	if hit && c.hits != nil {
		c.hits.Add(1)
	}
	s := series.New()
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultType labels a scalar series loaded without a named source.
const DefaultType = "value"

// ResolveTypes returns the type labels to draw, in display order.
func ResolveTypes(opts Options, s *series.DaySeries) []string {
	if len(opts.Types) > 0 {
		return opts.Types
	}
	labels := lo.Map(opts.Sources, func(spec SourceSpec, _ int) string { return spec.Label() })
	typed := s.Types()
	switch {
	case len(labels) > 1:
		return lo.Uniq(append(labels, typed...))
	case len(typed) > 0:
		return typed
	case len(labels) == 1:
		return labels
	}
	return []string{DefaultType}
}
