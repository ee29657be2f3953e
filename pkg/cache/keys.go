package cache

import "strings"

// Keyer builds cache keys for each entry kind.
type Keyer interface {
	// HTTPKey identifies a raw API response.
	HTTPKey(namespace, key string) string

	// SeriesKey identifies a loaded day series.
	SeriesKey(source string, opts SeriesKeyOpts) string

	// ArtifactKey identifies a rendered poster.
	ArtifactKey(seriesHash string, opts ArtifactKeyOpts) string
}

// SeriesKeyOpts are the inputs that change a loaded series.
type SeriesKeyOpts struct {
	Ref    string `json:"ref"`              // database id, user name, file path or collection
	Years  string `json:"years"`            // canonical year list, e.g. "2022-2023"
	Filter string `json:"filter,omitempty"` // property#value filter
	Value  string `json:"value,omitempty"`  // value property
	Date   string `json:"date,omitempty"`   // date property
}

// ArtifactKeyOpts are the inputs that change a rendered poster.
type ArtifactKeyOpts struct {
	Format  string   `json:"format"`
	Layout  string   `json:"layout"`
	Years   string   `json:"years"`
	Types   []string `json:"types,omitempty"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height,omitempty"`
	Title   string   `json:"title,omitempty"`
	Palette string   `json:"palette,omitempty"` // hash of the effective palette
	Flags   []string `json:"flags,omitempty"`   // stats, summary, legend, animate
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key builder.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// SeriesKey returns "series:<source>:<hash(opts)>".
func (DefaultKeyer) SeriesKey(source string, opts SeriesKeyOpts) string {
	return hashKey("series:"+strings.ToLower(source), opts)
}

// ArtifactKey returns "artifact:<hash(series, opts)>".
func (DefaultKeyer) ArtifactKey(seriesHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", seriesHash, opts)
}
