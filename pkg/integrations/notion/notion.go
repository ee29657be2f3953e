package notion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/heatposter/pkg/cache"
	"github.com/matzehuels/heatposter/pkg/httputil"
	"github.com/matzehuels/heatposter/pkg/integrations"
)

const (
	// DefaultBaseURL is the Notion REST endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// APIVersion is sent as the Notion-Version header.
	APIVersion = "2022-06-28"

	// DefaultDateProperty is the date property read when none is given.
	DefaultDateProperty = "Datetime"

	pageSize = 100
)

// Query selects the pages and properties to read.
type Query struct {
	DatabaseID    string
	DateProperty  string // defaults to DefaultDateProperty
	ValueProperty string // empty: count pages per day
	Filter        string // "property#option" select filter
}

// Client queries Notion databases.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Notion client for an integration token.
func NewClient(token string, c cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"Accept":         "application/json",
		"Authorization":  "Bearer " + token,
		"Notion-Version": APIVersion,
	}
	client := integrations.NewClient(c, "notion", cacheTTL, headers)
	client.SetLimiter(httputil.NewLimiter(3, 1))
	return &Client{Client: client, baseURL: DefaultBaseURL}
}

// SetBaseURL points the client at another endpoint.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimRight(u, "/") }

// Load returns the value of every day found in the database, keyed by ISO
// date. Pages without a readable date are skipped. If refresh is true,
// cached data is bypassed.
func (c *Client) Load(ctx context.Context, q Query, refresh bool) (map[string]float64, error) {
	if q.DatabaseID == "" {
		return nil, fmt.Errorf("notion: database id is required")
	}
	if q.DateProperty == "" {
		q.DateProperty = DefaultDateProperty
	}
	if _, _, err := ParseFilter(q.Filter); err != nil {
		return nil, err
	}

	key := strings.Join([]string{q.DatabaseID, q.DateProperty, q.ValueProperty, q.Filter}, "|")
	var days map[string]float64
	err := c.Cached(ctx, key, refresh, &days, func() error {
		pages, err := c.Pages(ctx, q.DatabaseID, q.Filter)
		if err != nil {
			return err
		}
		days = Aggregate(pages, q.DateProperty, q.ValueProperty)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return days, nil
}

// Pages returns the raw JSON of every page in the database matching filter.
func (c *Client) Pages(ctx context.Context, databaseID, filter string) ([]gjson.Result, error) {
	url := fmt.Sprintf("%s/databases/%s/query", c.baseURL, databaseID)
	body, err := queryBody(filter)
	if err != nil {
		return nil, err
	}

	var pages []gjson.Result
	for {
		raw, err := c.PostJSONRaw(ctx, url, body)
		if err != nil {
			return nil, fmt.Errorf("notion query %s: %w", databaseID, err)
		}
		if !gjson.ValidBytes(raw) {
			return nil, fmt.Errorf("notion query %s: invalid JSON response", databaseID)
		}
		resp := gjson.ParseBytes(raw)
		pages = append(pages, resp.Get("results").Array()...)

		next := resp.Get("next_cursor").String()
		if !resp.Get("has_more").Bool() || next == "" {
			return pages, nil
		}
		body["start_cursor"] = next
	}
}

func queryBody(filter string) (map[string]any, error) {
	body := map[string]any{"page_size": pageSize}
	prop, option, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	if prop != "" {
		body["filter"] = map[string]any{
			"property": prop,
			"select":   map[string]string{"equals": option},
		}
	}
	return body, nil
}

// ParseFilter splits "property#option". An empty filter yields empty parts.
func ParseFilter(filter string) (property, option string, err error) {
	if filter == "" {
		return "", "", nil
	}
	property, option, ok := strings.Cut(filter, "#")
	if !ok || property == "" || option == "" {
		return "", "", fmt.Errorf("notion: filter %q must have the form property#option", filter)
	}
	return property, option, nil
}

// Aggregate sums page values per day. With an empty valueProp every page
// counts as 1.
func Aggregate(pages []gjson.Result, dateProp, valueProp string) map[string]float64 {
	days := make(map[string]float64)
	for _, page := range pages {
		props := page.Get("properties")
		date := DateOf(property(props, dateProp))
		if date == "" {
			continue
		}
		if valueProp == "" {
			days[date]++
			continue
		}
		days[date] += ValueOf(property(props, valueProp))
	}
	return days
}

// DateOf returns the YYYY-MM-DD part of a date property's start.
func DateOf(prop gjson.Result) string {
	start := prop.Get("date.start").String()
	if len(start) < 10 {
		return ""
	}
	return start[:10]
}

// ValueOf reads a formula, number or checkbox property. Missing values and
// unsupported types read as 0.
func ValueOf(prop gjson.Result) float64 {
	switch prop.Get("type").String() {
	case "formula":
		f := prop.Get("formula")
		switch f.Get("type").String() {
		case "boolean":
			if f.Get("boolean").Bool() {
				return 1
			}
			return 0
		default:
			return f.Get("number").Float()
		}
	case "number":
		return prop.Get("number").Float()
	case "checkbox":
		if prop.Get("checkbox").Bool() {
			return 1
		}
	}
	return 0
}

// property finds a property by exact name. Notion names may contain dots
// and other gjson path characters, so keys are compared rather than pathed.
func property(props gjson.Result, name string) gjson.Result {
	var found gjson.Result
	props.ForEach(func(k, v gjson.Result) bool {
		if k.String() == name {
			found = v
			return false
		}
		return true
	})
	return found
}
