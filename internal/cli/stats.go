package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/pipeline"
	"github.com/matzehuels/heatposter/pkg/series"
	"github.com/matzehuels/heatposter/pkg/stats"
)

// statsOpts holds the command-line flags for the stats command.
type statsOpts struct {
	sources sourceFlags
	cache   cacheFlags

	years       string
	types       []string
	asOf        string // date current streaks end on
	interactive bool   // browse in a terminal UI
	jsonOut     bool   // print JSON instead of tables
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var o statsOpts

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-year statistics",
		Long: `Print totals, active days, streaks, averages and extrema per year and type.

Sources are selected exactly as for 'render'. Use --interactive to browse
types and years in a terminal UI, or --json for machine-readable output.`,
		Example: `  heatposter stats --file runs.csv --year 2020-2023
  heatposter stats --github-user octocat --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runStats(ctx, &o)
		},
	}

	fs := cmd.Flags()
	o.sources.register(fs)
	o.cache.register(fs)
	fs.StringVarP(&o.years, "year", "y", "", "years to summarize, e.g. 2023 or 2020-2023")
	fs.StringSliceVarP(&o.types, "type", "t", nil, "types to summarize (default: every type in the data)")
	fs.StringVar(&o.asOf, "as-of", "", "date current streaks end on (default: latest data)")
	fs.BoolVarP(&o.interactive, "interactive", "i", false, "browse statistics interactively")
	fs.BoolVar(&o.jsonOut, "json", false, "print statistics as JSON")

	return cmd
}

// runStats loads the series and prints its statistics.
func (c *CLI) runStats(ctx context.Context, o *statsOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts.Sources = append(opts.Sources, o.sources.specs()...)
	if len(opts.Sources) == 0 {
		return fmt.Errorf("no data source: pass --file, --notion-db, --github-user or --mongo-uri, or list sources in --config")
	}
	o.cache.apply(&cfg.Cache)
	opts.Refresh = o.cache.refresh
	if o.years != "" {
		if opts.Years, err = series.ParseYears(o.years); err != nil {
			return err
		}
	}
	if len(opts.Years) == 0 {
		opts.Years = series.NewYearSet(time.Now().Year())
	}
	if len(o.types) > 0 {
		opts.Types = o.types
	}

	var statOpts []stats.Option
	if o.asOf != "" {
		d, err := errors.ValidateDate(o.asOf)
		if err != nil {
			return err
		}
		statOpts = append(statOpts, stats.WithAsOf(d))
	}

	runner, err := c.newRunner(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Loading series...")
	spinner.Start()
	s, _, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Loaded %s", plural(s.Len(), "day")))

	types := pipeline.ResolveTypes(opts, s)
	tables, err := stats.ComputeAll(s, series.NewYearSet(opts.Years...), types, statOpts...)
	if err != nil {
		return err
	}

	if !o.jsonOut {
		printKeyValue("Years", opts.Years.String())
		printKeyValue("Types", strings.Join(types, ", "))
		printNewline()
	}

	switch {
	case o.jsonOut:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tables)
	case o.interactive:
		_, err := tea.NewProgram(NewStatsModel(types, tables, opts.Unit), tea.WithContext(ctx)).Run()
		return err
	}

	for i, typ := range types {
		if i > 0 {
			printNewline()
		}
		fmt.Println(StyleTitle.Render(typ))
		t := tables[typ]
		rows := make([]stats.YearStatistics, 0, len(t))
		for _, y := range t.Years() {
			rows = append(rows, t[y])
		}
		fmt.Println(statsTable(rows, -1).Render())
	}
	return nil
}
