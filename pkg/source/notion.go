package source

import (
	"context"

	"github.com/matzehuels/heatposter/pkg/integrations/notion"
	"github.com/matzehuels/heatposter/pkg/series"
)

// Notion reads a Notion database through a [notion.Client].
type Notion struct {
	client  *notion.Client
	query   notion.Query
	name    string
	refresh bool
}

// NewNotion returns a Notion source labelled name (default "notion").
func NewNotion(client *notion.Client, q notion.Query, name string, refresh bool) *Notion {
	if name == "" {
		name = "notion"
	}
	return &Notion{client: client, query: q, name: name, refresh: refresh}
}

// Name returns the type label.
func (n *Notion) Name() string { return n.name }

// Load queries the database and keeps the days of years.
func (n *Notion) Load(ctx context.Context, years series.YearSet) (*series.DaySeries, error) {
	days, err := n.client.Load(ctx, n.query, n.refresh)
	if err != nil {
		return nil, err
	}
	return FromDays(days, years)
}
