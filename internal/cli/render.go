package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/heatposter/pkg/config"
	"github.com/matzehuels/heatposter/pkg/pipeline"
	"github.com/matzehuels/heatposter/pkg/series"
)

// defaultOutput is the base name of written posters when --output is unset.
const defaultOutput = "poster"

// sourceFlags holds the flags that select data sources.
type sourceFlags struct {
	files        []string // CSV or JSON series files
	notionDB     string   // Notion database id
	notionDate   string   // Notion date property
	notionValue  string   // Notion number property, empty counts rows
	notionFilter string   // Notion "property#option" select filter
	githubUser   string   // GitHub login for the contribution calendar
	mongoURI     string   // MongoDB connection string
	mongoDB      string   // MongoDB database
	mongoColl    string   // MongoDB collection
}

// register adds the source flags to fs.
func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&f.files, "file", nil, "series file (.csv, .json), repeatable")
	fs.StringVar(&f.notionDB, "notion-db", "", "Notion database id")
	fs.StringVar(&f.notionDate, "notion-date", "", "Notion date property (default \"Date\")")
	fs.StringVar(&f.notionValue, "notion-value", "", "Notion number property (default: count rows)")
	fs.StringVar(&f.notionFilter, "notion-filter", "", "Notion select filter as property#option")
	fs.StringVar(&f.githubUser, "github-user", "", "GitHub login whose contributions to load")
	fs.StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB connection string")
	fs.StringVar(&f.mongoDB, "mongo-db", "", "MongoDB database")
	fs.StringVar(&f.mongoColl, "mongo-coll", "", "MongoDB collection")
}

// specs converts the flags into source specs.
func (f *sourceFlags) specs() []pipeline.SourceSpec {
	var specs []pipeline.SourceSpec
	for _, path := range f.files {
		specs = append(specs, pipeline.SourceSpec{Kind: pipeline.SourceFile, Path: path})
	}
	if f.notionDB != "" {
		specs = append(specs, pipeline.SourceSpec{
			Kind:          pipeline.SourceNotion,
			Database:      f.notionDB,
			DateProperty:  f.notionDate,
			ValueProperty: f.notionValue,
			Filter:        f.notionFilter,
		})
	}
	if f.githubUser != "" {
		specs = append(specs, pipeline.SourceSpec{Kind: pipeline.SourceGitHub, Login: f.githubUser})
	}
	if f.mongoURI != "" {
		specs = append(specs, pipeline.SourceSpec{
			Kind:       pipeline.SourceMongo,
			URI:        f.mongoURI,
			Database:   f.mongoDB,
			Collection: f.mongoColl,
		})
	}
	return specs
}

// cacheFlags holds the cache flags shared by render and stats.
type cacheFlags struct {
	noCache  bool   // disable caching
	redisURL string // use redis instead of the file cache
	refresh  bool   // bypass cached series and artifacts
}

func (f *cacheFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.StringVar(&f.redisURL, "cache-redis", "", "redis URL for a shared cache")
	fs.BoolVar(&f.refresh, "refresh", false, "reload sources and re-render, updating the cache")
}

// apply overrides the configured cache settings.
func (f *cacheFlags) apply(cfg *config.CacheConfig) {
	if f.noCache {
		cfg.Disabled = true
	}
	if f.redisURL != "" {
		cfg.RedisURL = f.redisURL
	}
}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	sources sourceFlags
	cache   cacheFlags

	output  string // output file (single format) or base path
	formats string // comma-separated output formats
	years   string // "2023", "2020-2023" or "2019,2021"
	types   []string

	layout    string
	title     string
	unit      string
	width     float64
	height    float64
	bands     int
	stats     bool
	summary   bool
	noLegend  bool
	animate   float64 // fade-in seconds (SVG)
	noTooltip bool
	weekStart string
	asOf      string

	special           float64 // absolute special threshold
	specialPercentile float64 // percentile deriving the special threshold

	background   string
	textColor    string
	specialColor string
	trackColor   string
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var o renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a heatmap poster",
		Long: `Render a heatmap poster from one or more data sources.

Sources come from flags and from the [[sources]] table of the --config file.
Files are CSV (date,value or date,type,value) or JSON ({"2024-01-01": 3}).
Posters cover the years given by --year, the config file, or the current year.

Series from remote sources and rendered artifacts are cached locally; use
--refresh to reload them.`,
		Example: `  heatposter render --file runs.csv --year 2023 --unit km
  heatposter render --github-user octocat --year 2020-2023 --layout circular -f svg,png
  heatposter render --notion-db 1f2e... --notion-value Distance --stats --summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := buildRenderOptions(cmd.Flags(), cfg, &o)
			if err != nil {
				return err
			}
			return c.runRender(ctx, cfg, opts, &o)
		},
	}

	o.register(cmd.Flags())

	return cmd
}

// register adds the render flags to fs.
func (o *renderOpts) register(fs *pflag.FlagSet) {
	o.sources.register(fs)
	o.cache.register(fs)

	fs.StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fs.StringVarP(&o.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	fs.StringVarP(&o.years, "year", "y", "", "years to draw, e.g. 2023 or 2020-2023")
	fs.StringSliceVarP(&o.types, "type", "t", nil, "types to draw, in order (default: every type in the data)")

	fs.StringVarP(&o.layout, "layout", "l", "", "layout: grid (default), circular")
	fs.StringVar(&o.title, "title", "", "poster title")
	fs.StringVar(&o.unit, "unit", "", "unit shown in tooltips and statistics")
	fs.Float64Var(&o.width, "width", 0, "canvas width")
	fs.Float64Var(&o.height, "height", 0, "canvas height (default: derived from width)")
	fs.IntVar(&o.bands, "bands", 0, "number of color bands")
	fs.BoolVar(&o.stats, "stats", false, "draw per-year statistics")
	fs.BoolVar(&o.summary, "summary", false, "draw a multi-year summary line")
	fs.BoolVar(&o.noLegend, "no-legend", false, "omit the color legend")
	fs.Float64Var(&o.animate, "animate", 0, "fade cells in over this many seconds (SVG)")
	fs.BoolVar(&o.noTooltip, "no-tooltip", false, "omit hover tooltips (SVG)")
	fs.StringVar(&o.weekStart, "week-start", "", "first weekday of grid columns: sunday (default), monday")
	fs.StringVar(&o.asOf, "as-of", "", "date current streaks end on (default: latest data)")
	fs.Float64Var(&o.special, "special", 0, "values at or above this get the special color")
	fs.Float64Var(&o.specialPercentile, "special-percentile", 0, "derive --special from this percentile of active days")

	fs.StringVar(&o.background, "background", "", "background color")
	fs.StringVar(&o.textColor, "text-color", "", "text color")
	fs.StringVar(&o.specialColor, "special-color", "", "special day color")
	fs.StringVar(&o.trackColor, "track-color", "", "track color of the highest band")
}

// buildRenderOptions layers the flags that were set on top of the
// configuration.
func buildRenderOptions(fs *pflag.FlagSet, cfg *config.Config, o *renderOpts) (pipeline.Options, error) {
	opts, err := cfg.Options()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts.Sources = append(opts.Sources, o.sources.specs()...)
	o.cache.apply(&cfg.Cache)
	opts.Refresh = o.cache.refresh

	if o.years != "" {
		ys, err := series.ParseYears(o.years)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Years = ys
	}
	if len(opts.Years) == 0 {
		opts.Years = series.NewYearSet(time.Now().Year())
	}
	if o.formats != "" {
		opts.Formats = parseFormats(o.formats)
	}

	setString := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	setFloat := func(name string, dst *float64, v float64) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool, v bool) {
		if fs.Changed(name) {
			*dst = v
		}
	}

	if fs.Changed("type") {
		opts.Types = o.types
	}
	setString("layout", &opts.Layout, o.layout)
	setString("title", &opts.Title, o.title)
	setString("unit", &opts.Unit, o.unit)
	setFloat("width", &opts.Width, o.width)
	setFloat("height", &opts.Height, o.height)
	if fs.Changed("bands") {
		opts.Bands = o.bands
	}
	setBool("stats", &opts.Statistics, o.stats)
	setBool("summary", &opts.Summary, o.summary)
	setBool("no-legend", &opts.NoLegend, o.noLegend)
	setFloat("animate", &opts.Animation, o.animate)
	setBool("no-tooltip", &opts.NoTooltip, o.noTooltip)
	setString("week-start", &opts.WeekStart, o.weekStart)
	setString("as-of", &opts.AsOf, o.asOf)
	setFloat("special", &opts.SpecialThreshold, o.special)
	setFloat("special-percentile", &opts.SpecialPercentile, o.specialPercentile)

	setString("background", &opts.Palette.Background, o.background)
	setString("text-color", &opts.Palette.Text, o.textColor)
	setString("special-color", &opts.Palette.Special, o.specialColor)
	setString("track-color", &opts.Palette.Track, o.trackColor)

	return opts, nil
}

// runRender executes the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, cfg *config.Config, opts pipeline.Options, o *renderOpts) error {
	if len(opts.Sources) == 0 {
		return fmt.Errorf("no data source: pass --file, --notion-db, --github-user or --mongo-uri, or list sources in --config")
	}

	runner, err := c.newRunner(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Preparing %s poster for %s...", layoutName(opts.Layout), opts.Years))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(result.Artifacts, o.output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", strings.Join(result.Types, ", "))
	if daysIn(result.DateCounts(), opts.Years) == 0 {
		printWarning("No data in %s", opts.Years)
	}
	for _, p := range paths {
		printFile(p)
	}
	cached := result.CacheInfo.ArtifactHits == len(result.Artifacts) && len(result.Artifacts) > 0
	printStats(result.Series.Len(), len(opts.Years), len(result.Types), cached)
	if !opts.Statistics {
		printNextStep("Per-year statistics", appName+" stats "+statsHint(opts))
	}
	return nil
}

// writeArtifacts writes each format to its file and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, output string) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := outputPath(output, format, len(formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath derives the file for format. A single format writes output
// as given; otherwise output is a base path and the format extension is
// appended.
func outputPath(output, format string, single bool) string {
	if output == "" {
		return defaultOutput + "." + format
	}
	if single && filepath.Ext(output) != "" {
		return output
	}
	return basePath(output) + "." + format
}

// basePath strips a known format extension from output.
func basePath(output string) string {
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// daysIn sums the per-year day counts of years.
func daysIn(counts map[int]int, years series.YearSet) int {
	n := 0
	for _, y := range years {
		n += counts[y]
	}
	return n
}

func layoutName(l string) string {
	if l == "" {
		return pipeline.DefaultLayout
	}
	return l
}

// statsHint repeats the source flags for the suggested stats command.
func statsHint(opts pipeline.Options) string {
	var parts []string
	for _, s := range opts.Sources {
		switch s.Kind {
		case pipeline.SourceFile:
			parts = append(parts, "--file "+s.Path)
		case pipeline.SourceGitHub:
			parts = append(parts, "--github-user "+s.Login)
		case pipeline.SourceNotion:
			parts = append(parts, "--notion-db "+s.Database)
		}
	}
	parts = append(parts, "--year "+yearsFlag(opts.Years))
	return strings.Join(parts, " ")
}

// yearsFlag formats years as a --year value.
func yearsFlag(ys series.YearSet) string {
	if len(ys) > 1 && ys[len(ys)-1]-ys[0] == len(ys)-1 {
		return fmt.Sprintf("%d-%d", ys[0], ys[len(ys)-1])
	}
	return ys.String()
}
