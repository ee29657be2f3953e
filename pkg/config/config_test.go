package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/pipeline"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const tomlConfig = `
[poster]
years  = "2022-2023"
layout = "circular"
title  = "Running"
unit   = "km"
legend = false

[poster.palette]
track = "#4DD2FF"

[[sources]]
kind = "file"
path = "runs.csv"

[[sources]]
kind     = "notion"
name     = "study"
database = "abc123"
filter   = "Type#Study"

[cache]
redis_url = "redis://localhost:6379/0"
`

const yamlConfig = `
poster:
  years: "2023"
  statistics: true
  formats: [svg, json]
sources:
  - kind: github
    login: octocat
server:
  addr: ":9000"
  rate_limit: 5
`

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "heatposter.toml", tomlConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Poster.Layout != "circular" || cfg.Poster.Title != "Running" {
		t.Errorf("poster = %+v", cfg.Poster)
	}
	if cfg.Poster.Palette.Track != "#4DD2FF" {
		t.Errorf("track = %q", cfg.Poster.Palette.Track)
	}
	if cfg.Poster.Palette.Background == "" {
		t.Error("palette defaults not applied")
	}
	if len(cfg.Sources) != 2 || cfg.Sources[1].Filter != "Type#Study" {
		t.Errorf("sources = %+v", cfg.Sources)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("redis url = %q", cfg.Cache.RedisURL)
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Years.String() != "2022,2023" {
		t.Errorf("years = %s", opts.Years)
	}
	if !opts.NoLegend {
		t.Error("legend = false should set NoLegend")
	}
	want := filepath.Join(filepath.Dir(path), "runs.csv")
	if opts.Sources[0].Path != want {
		t.Errorf("file path = %q, want %q", opts.Sources[0].Path, want)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "heatposter.yaml", yamlConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Poster.Statistics || len(cfg.Poster.Formats) != 2 {
		t.Errorf("poster = %+v", cfg.Poster)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.RateLimit != 5 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Sources[0].Kind != pipeline.SourceGitHub || cfg.Sources[0].Login != "octocat" {
		t.Errorf("sources = %+v", cfg.Sources)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr == "" {
		t.Error("addr default not applied")
	}
	if cfg.Poster.Layout != pipeline.DefaultLayout || cfg.Poster.Width != pipeline.DefaultWidth {
		t.Errorf("poster defaults = %+v", cfg.Poster)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.Code
	}{
		{"unknown extension", "config.ini", "x=1", errors.ErrCodeInvalidConfig},
		{"bad toml", "config.toml", "[poster\n", errors.ErrCodeInvalidConfig},
		{"bad yaml", "config.yaml", "poster: [", errors.ErrCodeInvalidConfig},
		{"bad years", "config.toml", "[poster]\nyears = \"soon\"\n", errors.ErrCodeInvalidYear},
		{"bad source", "config.toml", "[[sources]]\nkind = \"ftp\"\n", errors.ErrCodeInvalidSource},
		{"bad color", "config.toml", "[poster.palette]\ntrack = \"blue\"\n", errors.ErrCodeInvalidColor},
		{"bad base url", "config.toml", "[integrations]\nnotion_base_url = \"ftp://x\"\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"HEATPOSTER_YEARS":        "2021",
		"HEATPOSTER_LAYOUT":       "grid",
		"HEATPOSTER_REDIS_URL":    "redis://cache:6379",
		"HEATPOSTER_NO_CACHE":     "true",
		"PORT":                    "3000",
		"NOTION_TOKEN":            "fallback",
		"HEATPOSTER_GITHUB_TOKEN": "gh-token",
		"GITHUB_TOKEN":            "ignored",
	}
	cfg := &Config{}
	cfg.applyEnv(func(k string) string { return env[k] })

	if cfg.Poster.Years != "2021" || cfg.Poster.Layout != "grid" {
		t.Errorf("poster = %+v", cfg.Poster)
	}
	if cfg.Cache.RedisURL != "redis://cache:6379" || !cfg.Cache.Disabled {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("addr = %q, want :3000", cfg.Server.Addr)
	}
	if cfg.Integrations.NotionToken != "fallback" {
		t.Errorf("notion token = %q", cfg.Integrations.NotionToken)
	}
	if cfg.Integrations.GitHubToken != "gh-token" {
		t.Errorf("github token = %q", cfg.Integrations.GitHubToken)
	}
}
