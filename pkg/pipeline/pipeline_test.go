package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/heatposter/pkg/cache"
	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/render/poster/palette"
	"github.com/matzehuels/heatposter/pkg/series"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseWeekStart(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "Sunday", false},
		{"sunday", "Sunday", false},
		{"Monday", "Monday", false},
		{"mon", "Monday", false},
		{"friday", "", true},
	}
	for _, tt := range tests {
		got, err := ParseWeekStart(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWeekStart(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got.String() != tt.want {
			t.Errorf("ParseWeekStart(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSourceSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    SourceSpec
		wantErr bool
	}{
		{"file", SourceSpec{Kind: SourceFile, Path: "a.csv"}, false},
		{"file without path", SourceSpec{Kind: SourceFile}, true},
		{"notion", SourceSpec{Kind: SourceNotion, Database: "db"}, false},
		{"notion without database", SourceSpec{Kind: SourceNotion}, true},
		{"github", SourceSpec{Kind: SourceGitHub, Login: "octocat"}, false},
		{"github without login", SourceSpec{Kind: SourceGitHub}, true},
		{"mongo", SourceSpec{Kind: SourceMongo, URI: "mongodb://localhost", Database: "d", Collection: "c"}, false},
		{"mongo without collection", SourceSpec{Kind: SourceMongo, URI: "mongodb://localhost", Database: "d"}, true},
		{"unknown kind", SourceSpec{Kind: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidSource) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidSource)
			}
		})
	}
}

func TestSourceSpecLabel(t *testing.T) {
	tests := []struct {
		spec SourceSpec
		want string
	}{
		{SourceSpec{Kind: SourceFile, Path: "data/runs.csv"}, "runs"},
		{SourceSpec{Kind: SourceFile, Path: "data/runs.csv", Name: "km"}, "km"},
		{SourceSpec{Kind: SourceMongo, Collection: "workouts"}, "workouts"},
		{SourceSpec{Kind: SourceNotion, Database: "abc"}, "notion"},
		{SourceSpec{Kind: SourceGitHub, Login: "octocat"}, "github"},
	}
	for _, tt := range tests {
		if got := tt.spec.Label(); got != tt.want {
			t.Errorf("Label(%+v) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestResolveTypes(t *testing.T) {
	d, err := series.ParseDate("2023-01-02")
	if err != nil {
		t.Fatal(err)
	}
	scalar := series.New()
	_ = scalar.Set(d, series.Scalar(1))
	typed := series.New()
	_ = typed.Add(d, "swim", 1)
	_ = typed.Add(d, "run", 2)

	file := SourceSpec{Kind: SourceFile, Path: "data/runs.csv"}
	hub := SourceSpec{Kind: SourceGitHub, Login: "octocat"}

	tests := []struct {
		name string
		opts Options
		s    *series.DaySeries
		want string
	}{
		{"explicit types win", Options{Types: []string{"b", "a"}, Sources: []SourceSpec{file}}, typed, "b,a"},
		{"typed series", Options{Sources: []SourceSpec{file}}, typed, strings.Join(typed.Types(), ",")},
		{"single source label", Options{Sources: []SourceSpec{file}}, scalar, "runs"},
		{"source labels first", Options{Sources: []SourceSpec{file, hub}}, scalar, "runs,github"},
		{"no sources", Options{}, scalar, DefaultType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Join(ResolveTypes(tt.opts, tt.s), ","); got != tt.want {
				t.Errorf("ResolveTypes = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{
		Sources: []SourceSpec{{Kind: SourceFile, Path: "a.csv"}},
		Years:   series.YearSet{2023, 2022, 2023},
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Layout != DefaultLayout {
		t.Errorf("Layout = %q, want %q", opts.Layout, DefaultLayout)
	}
	if opts.Width != DefaultWidth {
		t.Errorf("Width = %v, want %v", opts.Width, DefaultWidth)
	}
	if opts.Bands != DefaultBands {
		t.Errorf("Bands = %d, want %d", opts.Bands, DefaultBands)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Years.String() != "2022,2023" {
		t.Errorf("Years = %s, want 2022,2023", opts.Years)
	}
	if opts.Palette.Background == "" || opts.Logger == nil {
		t.Error("palette and logger defaults not applied")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	file := []SourceSpec{{Kind: SourceFile, Path: "a.csv"}}
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no sources", Options{Years: series.YearSet{2023}}, errors.ErrCodeInvalidSource},
		{"no years", Options{Sources: file}, errors.ErrCodeEmptyYears},
		{"bad layout", Options{Sources: file, Years: series.YearSet{2023}, Layout: "spiral"}, errors.ErrCodeInvalidLayout},
		{"bad format", Options{Sources: file, Years: series.YearSet{2023}, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"circular summary", Options{Sources: file, Years: series.YearSet{2023}, Layout: "circular", Summary: true}, errors.ErrCodeInvalidLayout},
		{"bad canvas", Options{Sources: file, Years: series.YearSet{2023}, Width: -1}, errors.ErrCodeInvalidCanvas},
		{"bad color", Options{Sources: file, Years: series.YearSet{2023}, Palette: palette.Palette{Track: "not-a-color"}}, errors.ErrCodeInvalidColor},
		{"bad as-of", Options{Sources: file, Years: series.YearSet{2023}, AsOf: "2023-02-30"}, errors.ErrCodeInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), tt.code)
			}
			if tt.code != errors.ErrCodeInvalidSource && !errors.IsPrecondition(err) {
				t.Errorf("%v should be a precondition failure", err)
			}
		})
	}
}

func TestExecuteFile(t *testing.T) {
	path := writeFile(t, "runs.csv", "date,value\n2023-01-01,5\n2023-01-02,10\n2023-01-04,3\n2022-12-31,7\n")

	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		Sources: []SourceSpec{{Kind: SourceFile, Path: path}},
		Years:   series.NewYearSet(2023),
		Formats: []string{FormatSVG, FormatJSON},
		Title:   "Running",
		Unit:    "km",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(result.Types) != 1 || result.Types[0] != "runs" {
		t.Errorf("Types = %v, want [runs]", result.Types)
	}
	if result.Series.Len() != 3 {
		t.Errorf("series days = %d, want 3 (2022 filtered)", result.Series.Len())
	}
	if got := len(result.Document().Cells()); got != 365 {
		t.Errorf("cells = %d, want 365", got)
	}
	st := result.Stats()["runs"][2023]
	if st.Total != 18 || st.Count != 3 || st.LongestStreak != 2 {
		t.Errorf("stats = %+v", st)
	}
	if result.DateCounts()[2023] != 3 {
		t.Errorf("DateCounts = %v", result.DateCounts())
	}
	if result.SeriesHash == "" {
		t.Error("SeriesHash should be set")
	}

	svg := string(result.Artifacts[FormatSVG])
	if !strings.HasPrefix(strings.TrimSpace(svg), "<?xml") || !strings.Contains(svg, "Running") {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}

	var doc map[string]any
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("JSON artifact: %v", err)
	}
	if doc["layout"] != "grid" {
		t.Errorf("layout = %v, want grid", doc["layout"])
	}
}

func TestExecuteMultipleSources(t *testing.T) {
	runs := writeFile(t, "runs.csv", "2023-03-01,4\n")
	swims := writeFile(t, "swims.csv", "2023-03-01,1\n2023-03-02,2\n")

	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		Sources: []SourceSpec{
			{Kind: SourceFile, Path: runs},
			{Kind: SourceFile, Path: swims},
		},
		Years:  series.NewYearSet(2023),
		Layout: "circular",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.Join(result.Types, ",") != "runs,swims" {
		t.Errorf("Types = %v, want [runs swims]", result.Types)
	}
	if result.Stats()["swims"][2023].Total != 3 {
		t.Errorf("swims total = %v, want 3", result.Stats()["swims"][2023].Total)
	}
	// One ring per year and type.
	if got := len(result.Document().Cells()); got != 2*365 {
		t.Errorf("cells = %d, want %d", got, 2*365)
	}
}

func TestExecuteArtifactCache(t *testing.T) {
	path := writeFile(t, "runs.csv", "2023-01-01,5\n")
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{
		Sources: []SourceSpec{{Kind: SourceFile, Path: path}},
		Years:   series.NewYearSet(2023),
		Formats: []string{FormatSVG, FormatJSON},
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.ArtifactHits != 0 {
		t.Errorf("first run hits = %d, want 0", first.CacheInfo.ArtifactHits)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if second.CacheInfo.ArtifactHits != 2 {
		t.Errorf("second run hits = %d, want 2", second.CacheInfo.ArtifactHits)
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached SVG differs from rendered SVG")
	}

	opts.Title = "Changed"
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.ArtifactHits != 0 {
		t.Errorf("changed options should miss the cache, got %d hits", third.CacheInfo.ArtifactHits)
	}
}

func TestComposeSeries(t *testing.T) {
	s := series.New()
	for _, day := range []string{"2023-06-01", "2023-06-02", "2023-06-03"} {
		d, _ := series.ParseDate(day)
		if err := s.Add(d, "", 10); err != nil {
			t.Fatal(err)
		}
	}

	runner := NewRunner(nil, nil, nil)
	result, err := runner.ComposeSeries(context.Background(), s, Options{
		Years:             series.NewYearSet(2023),
		SpecialPercentile: 100,
		Statistics:        true,
	})
	if err != nil {
		t.Fatalf("ComposeSeries: %v", err)
	}
	if len(result.Types) != 1 || result.Types[0] != DefaultType {
		t.Errorf("Types = %v, want [%s]", result.Types, DefaultType)
	}
	if result.Stats()[DefaultType][2023].Average != 10 {
		t.Errorf("average = %v, want 10", result.Stats()[DefaultType][2023].Average)
	}
	if len(result.Artifacts[FormatSVG]) == 0 {
		t.Error("missing SVG artifact")
	}
}

func TestComposeSeriesPrecondition(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.ComposeSeries(context.Background(), series.New(), Options{})
	if err == nil || !errors.IsPrecondition(err) {
		t.Fatalf("empty years: got %v, want precondition failure", err)
	}
}

func TestExecuteNotionRequiresToken(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{
		Sources: []SourceSpec{{Kind: SourceNotion, Database: "db"}},
		Years:   series.NewYearSet(2023),
	})
	if !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Fatalf("got %v, want %s", err, errors.ErrCodeInvalidSource)
	}
}

func TestExecuteNotionSeriesCache(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"results":[
		  {"properties":{"Datetime":{"type":"date","date":{"start":"2023-06-01"}},"Hours":{"type":"number","number":2.5}}},
		  {"properties":{"Datetime":{"type":"date","date":{"start":"2023-06-02"}},"Hours":{"type":"number","number":1}}}
		],"has_more":false}`)
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	opts := Options{
		Sources: []SourceSpec{{
			Kind:          SourceNotion,
			Name:          "study",
			Database:      "db",
			ValueProperty: "Hours",
		}},
		Years:         series.NewYearSet(2023),
		NotionToken:   "secret",
		NotionBaseURL: srv.URL,
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if got := first.Stats()["study"][2023].Total; got != 3.5 {
		t.Errorf("total = %v, want 3.5", got)
	}
	if first.CacheInfo.SeriesHits != 0 {
		t.Errorf("first run series hits = %d, want 0", first.CacheInfo.SeriesHits)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if second.CacheInfo.SeriesHits != 1 {
		t.Errorf("second run series hits = %d, want 1", second.CacheInfo.SeriesHits)
	}
	if requests.Load() != 1 {
		t.Errorf("requests = %d, want 1", requests.Load())
	}

	opts.Refresh = true
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if requests.Load() != 2 {
		t.Errorf("refresh should query again, requests = %d", requests.Load())
	}
}
