// Package config loads heatposter settings from TOML or YAML files, a .env
// file and HEATPOSTER_* environment variables.
//
// Settings are applied in this order, later ones winning:
//
//  1. built-in defaults
//  2. the config file (format picked by extension: .toml, .yaml, .yml)
//  3. environment variables, including those loaded from .env
//
// Command-line flags are applied on top by the CLI.
//
// A TOML file looks like:
//
//	[poster]
//	years  = "2022-2023"
//	layout = "circular"
//	title  = "Running"
//	unit   = "km"
//
//	[poster.palette]
//	track = "#4DD2FF"
//
//	[[sources]]
//	kind = "file"
//	path = "runs.csv"
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/pipeline"
	"github.com/matzehuels/heatposter/pkg/render/poster/palette"
	"github.com/matzehuels/heatposter/pkg/series"
)

// envPrefix prefixes every environment variable read by [Load].
const envPrefix = "HEATPOSTER_"

// DefaultAddr is the listen address of the HTTP API.
const DefaultAddr = ":8080"

// Config is the complete heatposter configuration.
type Config struct {
	Poster       PosterConfig          `toml:"poster" yaml:"poster"`
	Sources      []pipeline.SourceSpec `toml:"sources" yaml:"sources"`
	Cache        CacheConfig           `toml:"cache" yaml:"cache"`
	Server       ServerConfig          `toml:"server" yaml:"server"`
	Integrations IntegrationsConfig    `toml:"integrations" yaml:"integrations"`

	// dir is the directory of the loaded file; relative source paths
	// resolve against it.
	dir string
}

// PosterConfig holds the poster settings.
type PosterConfig struct {
	Years             string          `toml:"years" yaml:"years"` // e.g. "2023" or "2020-2023"
	Types             []string        `toml:"types" yaml:"types"`
	Layout            string          `toml:"layout" yaml:"layout"`
	Title             string          `toml:"title" yaml:"title"`
	Unit              string          `toml:"unit" yaml:"unit"`
	Width             float64         `toml:"width" yaml:"width"`
	Height            float64         `toml:"height" yaml:"height"`
	Bands             int             `toml:"bands" yaml:"bands"`
	Statistics        bool            `toml:"statistics" yaml:"statistics"`
	Summary           bool            `toml:"summary" yaml:"summary"`
	Legend            *bool           `toml:"legend" yaml:"legend"`
	SpecialThreshold  float64         `toml:"special_threshold" yaml:"special_threshold"`
	SpecialPercentile float64         `toml:"special_percentile" yaml:"special_percentile"`
	WeekStart         string          `toml:"week_start" yaml:"week_start"`
	Formats           []string        `toml:"formats" yaml:"formats"`
	Animation         float64         `toml:"animation" yaml:"animation"`
	Palette           palette.Palette `toml:"palette" yaml:"palette"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Disabled bool   `toml:"disabled" yaml:"disabled"`
	Dir      string `toml:"dir" yaml:"dir"`             // file cache directory
	RedisURL string `toml:"redis_url" yaml:"redis_url"` // redis://host:port/db, takes precedence over Dir
	Prefix   string `toml:"prefix" yaml:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr      string  `toml:"addr" yaml:"addr"`
	DataDir   string  `toml:"data_dir" yaml:"data_dir"`     // series files servable by name
	RateLimit float64 `toml:"rate_limit" yaml:"rate_limit"` // requests per second, 0 = unlimited
}

// IntegrationsConfig holds API credentials and endpoints. Tokens are only
// read from the environment.
type IntegrationsConfig struct {
	NotionToken   string `toml:"-" yaml:"-"`
	GitHubToken   string `toml:"-" yaml:"-"`
	NotionBaseURL string `toml:"notion_base_url" yaml:"notion_base_url"`
	GitHubBaseURL string `toml:"github_base_url" yaml:"github_base_url"`
}

// Load reads path (optional), the .env file in the working directory and
// the environment, then applies defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config toml")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config yaml")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}

	c.dir = filepath.Dir(path)
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "heatposter:"
	}
	if c.Poster.Layout == "" {
		c.Poster.Layout = pipeline.DefaultLayout
	}
	if c.Poster.Width == 0 {
		c.Poster.Width = pipeline.DefaultWidth
	}
	if c.Poster.Bands == 0 {
		c.Poster.Bands = pipeline.DefaultBands
	}
	if len(c.Poster.Formats) == 0 {
		c.Poster.Formats = []string{pipeline.FormatSVG}
	}
	c.Poster.Palette = c.Poster.Palette.WithDefaults()
}

// applyEnv overrides settings from the environment. Tokens also fall back
// to the conventional NOTION_TOKEN and GITHUB_TOKEN.
func (c *Config) applyEnv(getenv func(string) string) {
	str := func(name string, dst *string) {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	float := func(name string, dst *float64) {
		if v := getenv(envPrefix + name); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	str("YEARS", &c.Poster.Years)
	str("LAYOUT", &c.Poster.Layout)
	str("TITLE", &c.Poster.Title)
	float("WIDTH", &c.Poster.Width)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_URL", &c.Cache.RedisURL)
	if v := getenv(envPrefix + "NO_CACHE"); v != "" {
		c.Cache.Disabled = v == "true" || v == "1"
	}
	str("ADDR", &c.Server.Addr)
	if v := getenv("PORT"); v != "" && getenv(envPrefix+"ADDR") == "" {
		c.Server.Addr = ":" + v
	}
	str("DATA_DIR", &c.Server.DataDir)
	float("RATE_LIMIT", &c.Server.RateLimit)

	c.Integrations.NotionToken = firstNonEmpty(getenv(envPrefix+"NOTION_TOKEN"), getenv("NOTION_TOKEN"), c.Integrations.NotionToken)
	c.Integrations.GitHubToken = firstNonEmpty(getenv(envPrefix+"GITHUB_TOKEN"), getenv("GITHUB_TOKEN"), c.Integrations.GitHubToken)
	str("NOTION_BASE_URL", &c.Integrations.NotionBaseURL)
	str("GITHUB_BASE_URL", &c.Integrations.GitHubBaseURL)
}

// Validate checks the settings that can be checked without loading data.
func (c *Config) Validate() error {
	for _, s := range c.Sources {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if c.Poster.Years != "" {
		if _, err := series.ParseYears(c.Poster.Years); err != nil {
			return err
		}
	}
	for _, u := range []string{c.Integrations.NotionBaseURL, c.Integrations.GitHubBaseURL} {
		if u == "" {
			continue
		}
		if err := errors.ValidateURL(u); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "integration base URL")
		}
	}
	if c.Server.RateLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "rate_limit must not be negative")
	}
	return c.Poster.Palette.Validate()
}

// Options converts the configuration into pipeline options. Relative file
// source paths resolve against the config file's directory.
func (c *Config) Options() (pipeline.Options, error) {
	var years series.YearSet
	if c.Poster.Years != "" {
		ys, err := series.ParseYears(c.Poster.Years)
		if err != nil {
			return pipeline.Options{}, err
		}
		years = ys
	}

	sources := make([]pipeline.SourceSpec, len(c.Sources))
	for i, s := range c.Sources {
		if s.Kind == pipeline.SourceFile && c.dir != "" && !filepath.IsAbs(s.Path) {
			s.Path = filepath.Join(c.dir, s.Path)
		}
		sources[i] = s
	}

	p := c.Poster
	return pipeline.Options{
		Sources:           sources,
		Years:             years,
		Types:             p.Types,
		Layout:            p.Layout,
		Title:             p.Title,
		Unit:              p.Unit,
		Width:             p.Width,
		Height:            p.Height,
		Palette:           p.Palette,
		Bands:             p.Bands,
		Statistics:        p.Statistics,
		Summary:           p.Summary,
		NoLegend:          p.Legend != nil && !*p.Legend,
		SpecialThreshold:  p.SpecialThreshold,
		SpecialPercentile: p.SpecialPercentile,
		WeekStart:         p.WeekStart,
		Formats:           p.Formats,
		Animation:         p.Animation,
		NotionToken:       c.Integrations.NotionToken,
		GitHubToken:       c.Integrations.GitHubToken,
		NotionBaseURL:     c.Integrations.NotionBaseURL,
		GitHubBaseURL:     c.Integrations.GitHubBaseURL,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
