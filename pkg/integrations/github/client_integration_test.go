//go:build integration

package github

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/heatposter/pkg/cache"
)

func TestContributions_Integration(t *testing.T) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		t.Skip("GITHUB_TOKEN not set, skipping integration test")
	}

	client, err := NewClient(token, cache.NewNullCache(), time.Hour)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	days, err := client.Contributions(ctx, "octocat", 2023, true)
	if err != nil {
		t.Fatalf("Contributions() error: %v", err)
	}
	if len(days) != 365 {
		t.Errorf("got %d days, want 365", len(days))
	}
}
