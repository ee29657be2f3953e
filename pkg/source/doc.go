// Package source loads day series from files, APIs and databases.
//
// Every backend implements [Source]: a name that becomes the type label on
// multi-source posters, and a Load that returns the days of the requested
// years. [LoadAll] runs several sources concurrently and merges them:
//
//	s, err := source.LoadAll(ctx, years,
//	    source.NewFile("runs.csv", "running"),
//	    source.NewGitHub(gh, "octocat", "commits"),
//	)
//
// A single source yields a scalar series; several yield a series typed by
// source name.
package source
