package github

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/matzehuels/heatposter/pkg/cache"
	"github.com/matzehuels/heatposter/pkg/httputil"
	"github.com/matzehuels/heatposter/pkg/integrations"
)

// DefaultBaseURL is the GitHub GraphQL endpoint.
const DefaultBaseURL = "https://api.github.com/graphql"

// Client fetches contribution calendars from the GitHub GraphQL API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub client. The GraphQL API requires a token.
func NewClient(token string, c cache.Cache, cacheTTL time.Duration) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: github token is required", integrations.ErrUnauthorized)
	}
	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"Accept":        "application/json",
	}
	client := integrations.NewClient(c, "github", cacheTTL, headers)
	client.SetLimiter(httputil.NewLimiter(10, 5))
	return &Client{Client: client, baseURL: DefaultBaseURL}, nil
}

// SetBaseURL points the client at another endpoint (tests, GitHub Enterprise).
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Contributions returns the contribution calendar of login for one year.
// Days outside the year are dropped. If refresh is true, cached data is
// bypassed.
func (c *Client) Contributions(ctx context.Context, login string, year int, refresh bool) ([]Day, error) {
	if err := ValidateLogin(login); err != nil {
		return nil, err
	}

	key := login + "/" + strconv.Itoa(year)
	var days []Day
	err := c.Cached(ctx, key, refresh, &days, func() error {
		var err error
		days, err = c.fetchYear(ctx, login, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return days, nil
}

func (c *Client) fetchYear(ctx context.Context, login string, year int) ([]Day, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	req := graphQLRequest{
		Query: calendarQuery,
		Variables: map[string]any{
			"login": login,
			"from":  from.Format(time.RFC3339),
			"to":    to.Format(time.RFC3339),
		},
	}

	var resp calendarResponse
	if err := c.PostJSON(ctx, c.baseURL, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		if resp.Errors[0].Type == "NOT_FOUND" {
			return nil, fmt.Errorf("%w: github user %s", integrations.ErrNotFound, login)
		}
		return nil, fmt.Errorf("github graphql: %s", resp.Errors[0].Message)
	}
	if resp.Data.User == nil {
		return nil, fmt.Errorf("%w: github user %s", integrations.ErrNotFound, login)
	}

	prefix := strconv.Itoa(year) + "-"
	var days []Day
	for _, w := range resp.Data.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, d := range w.ContributionDays {
			if len(d.Date) >= 5 && d.Date[:5] == prefix {
				days = append(days, d)
			}
		}
	}
	return days, nil
}
