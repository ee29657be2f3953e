package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/heatposter/pkg/buildinfo"
	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/pipeline"
	"github.com/matzehuels/heatposter/pkg/series"
	"github.com/matzehuels/heatposter/pkg/stats"
)

// contentTypes maps output formats to their media type.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// statsRequest is the body of POST /v1/stats.
type statsRequest struct {
	Series *series.DaySeries `json:"series"`
	Years  series.YearSet    `json:"years"`
	Types  []string          `json:"types,omitempty"`
	AsOf   string            `json:"as_of,omitempty"`
}

// statsResponse maps type → year → statistics.
type statsResponse struct {
	Stats map[string]stats.Table `json:"stats"`
	Days  map[int]int            `json:"days"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var req statsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Series == nil {
		req.Series = series.New()
	}
	types := pipeline.ResolveTypes(pipeline.Options{Types: req.Types}, req.Series)

	var opts []stats.Option
	if req.AsOf != "" {
		d, err := errors.ValidateDate(req.AsOf)
		if err != nil {
			writeError(w, r, err)
			return
		}
		opts = append(opts, stats.WithAsOf(d))
	}
	tables, err := stats.ComputeAll(req.Series, series.NewYearSet(req.Years...), types, opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: tables, Days: req.Series.CountByYear()})
}

// posterRequest is the body of POST /v1/poster. Options.Sources is ignored.
type posterRequest struct {
	Series  *series.DaySeries `json:"series"`
	Options pipeline.Options  `json:"options"`
}

func (s *Server) handlePoster(w http.ResponseWriter, r *http.Request) {
	var req posterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	format, err := formatParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts := req.Options
	opts.Sources = nil
	opts.Formats = []string{format}
	result, err := s.runner.ComposeSeries(r.Context(), req.Series, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeArtifact(w, format, result)
}

// handleFilePoster renders a series file from the data directory. Poster
// options come from query parameters.
func (s *Server) handleFilePoster(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidatePath(name); err != nil {
		writeError(w, r, err)
		return
	}
	format, err := formatParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := queryOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Sources = []pipeline.SourceSpec{{
		Kind: pipeline.SourceFile,
		Path: filepath.Join(s.dataDir, filepath.FromSlash(name)),
		Name: strings.TrimSuffix(name, filepath.Ext(name)),
	}}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeArtifact(w, format, result)
}

func writeArtifact(w http.ResponseWriter, format string, result *pipeline.Result) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Series-Hash", result.SeriesHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

func formatParam(r *http.Request) (string, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		return pipeline.FormatSVG, nil
	}
	return format, pipeline.ValidateFormat(format)
}

// queryOptions reads poster options from query parameters:
// years, layout, title, unit, width, height, bands, stats, summary, legend.
func queryOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options

	years, err := series.ParseYears(q.Get("years"))
	if err != nil {
		return opts, err
	}
	opts.Years = years
	opts.Layout = q.Get("layout")
	opts.Title = q.Get("title")
	opts.Unit = q.Get("unit")
	opts.WeekStart = q.Get("week_start")

	for name, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height} {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidCanvas, "invalid %s %q", name, v)
			}
			*dst = f
		}
	}
	if v := q.Get("bands"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid bands %q", v)
		}
		opts.Bands = n
	}
	opts.Statistics = q.Get("stats") == "true"
	opts.Summary = q.Get("summary") == "true"
	opts.NoLegend = q.Get("legend") == "false"
	return opts, nil
}
