package source

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/series"
)

// File reads a local JSON or CSV file.
//
// JSON files hold an object keyed by ISO date whose values are numbers, or
// objects of numbers per type (see [series.DaySeries.UnmarshalJSON]).
// CSV files have rows "date,value" or "date,value,type"; a header row whose
// second column is not numeric is skipped. Rows for the same date add up.
type File struct {
	path string
	name string
}

// NewFile returns a file source labelled name. An empty name uses the file
// name without extension.
func NewFile(path, name string) *File {
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &File{path: path, name: name}
}

// Name returns the type label.
func (f *File) Name() string { return f.name }

// Load reads the file and keeps the days of years.
func (f *File) Load(ctx context.Context, years series.YearSet) (*series.DaySeries, error) {
	fh, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", f.path)
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var all *series.DaySeries
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".json":
		all, err = readJSON(fh)
	case ".csv":
		all, err = readCSV(fh)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported file type %q (want .json or .csv)", filepath.Ext(f.path))
	}
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "read %s", f.path)
	}
	return restrict(all, years)
}

func readJSON(r io.Reader) (*series.DaySeries, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := series.New()
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

func readCSV(r io.Reader) (*series.DaySeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	s := series.New()
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "csv")
		}
		if len(rec) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "line %d: want date,value[,type]", line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: bad value %q", line, rec[1])
		}
		d, err := series.ParseDate(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDate, err, "line %d: bad date %q", line, rec[0])
		}
		typ := ""
		if len(rec) > 2 {
			typ = strings.TrimSpace(rec[2])
		}
		if err := s.Add(d, typ, v); err != nil {
			return nil, err
		}
	}
}

// restrict returns the entries of s inside years.
func restrict(s *series.DaySeries, years series.YearSet) (*series.DaySeries, error) {
	out := series.New()
	for _, d := range s.Dates() {
		if !years.Contains(d.Year) {
			continue
		}
		e, _ := s.Entry(d)
		if err := out.Set(d, e); err != nil {
			return nil, err
		}
	}
	return out, nil
}
