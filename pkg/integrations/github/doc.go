// Package github fetches contribution calendars from the GitHub GraphQL API.
//
// # Usage
//
//	client, err := github.NewClient(token, cache.NewNullCache(), 6*time.Hour)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	days, err := client.Contributions(ctx, "octocat", 2023, false)
//
// Each [Day] carries an ISO date and a contribution count. One query covers
// one calendar year; weeks that straddle the year boundary are trimmed.
//
// # Authentication
//
// The GraphQL API rejects anonymous requests, so a personal access token
// (read:user) is required.
package github
