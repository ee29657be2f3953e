package notion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/heatposter/pkg/cache"
	"github.com/matzehuels/heatposter/pkg/httputil"
)

func page(date, valueProp string) string {
	return fmt.Sprintf(`{"object":"page","properties":{"Datetime":{"type":"date","date":{"start":%q}}%s}}`, date, valueProp)
}

func TestAggregate(t *testing.T) {
	pages := gjson.Parse(`[` + strings.Join([]string{
		page("2023-01-01", `,"Hours":{"type":"number","number":1.5}`),
		page("2023-01-01T21:30:00.000+08:00", `,"Hours":{"type":"number","number":2}`),
		page("2023-01-02", `,"Hours":{"type":"formula","formula":{"type":"number","number":3}}`),
		page("2023-01-03", `,"Hours":{"type":"checkbox","checkbox":true}`),
		page("2023-01-04", `,"Hours":{"type":"number","number":null}`),
		`{"properties":{"Datetime":{"type":"date","date":null}}}`,
	}, ",") + `]`).Array()

	tests := []struct {
		name      string
		valueProp string
		want      map[string]float64
	}{
		{
			// Both 2023-01-01 pages add up.
			name:      "value property",
			valueProp: "Hours",
			want:      map[string]float64{"2023-01-01": 3.5, "2023-01-02": 3, "2023-01-03": 1, "2023-01-04": 0},
		},
		{
			name: "count pages",
			want: map[string]float64{"2023-01-01": 2, "2023-01-02": 1, "2023-01-03": 1, "2023-01-04": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(pages, "Datetime", tt.valueProp)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for d, v := range tt.want {
				if got[d] != v {
					t.Errorf("%s = %v, want %v", d, got[d], v)
				}
			}
		})
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		json string
		want float64
	}{
		{`{"type":"number","number":4.25}`, 4.25},
		{`{"type":"formula","formula":{"type":"number","number":7}}`, 7},
		{`{"type":"formula","formula":{"type":"boolean","boolean":true}}`, 1},
		{`{"type":"checkbox","checkbox":false}`, 0},
		{`{"type":"rich_text","rich_text":[]}`, 0},
		{`{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.json, func(t *testing.T) {
			if got := ValueOf(gjson.Parse(tt.json)); got != tt.want {
				t.Errorf("ValueOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPropertyWithDots(t *testing.T) {
	props := gjson.Parse(`{"Time.spent":{"type":"number","number":2}}`)
	if got := ValueOf(property(props, "Time.spent")); got != 2 {
		t.Errorf("property with dot = %v, want 2", got)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		prop    string
		option  string
		wantErr bool
	}{
		{"", "", "", false},
		{"Type#Run", "Type", "Run", false},
		{"Type#A#B", "Type", "A#B", false},
		{"Type", "", "", true},
		{"#Run", "", "", true},
		{"Type#", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			prop, option, err := ParseFilter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if prop != tt.prop || option != tt.option {
				t.Errorf("ParseFilter(%q) = %q, %q", tt.in, prop, option)
			}
		})
	}
}

func TestLoadPaginates(t *testing.T) {
	var calls atomic.Int32
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/db1/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Notion-Version") != APIVersion {
			t.Errorf("Notion-Version = %q", r.Header.Get("Notion-Version"))
		}
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		switch calls.Add(1) {
		case 1:
			fmt.Fprintf(w, `{"results":[%s],"has_more":true,"next_cursor":"c2"}`, page("2023-03-01", ""))
		default:
			fmt.Fprintf(w, `{"results":[%s,%s],"has_more":false,"next_cursor":null}`,
				page("2023-03-01", ""), page("2023-03-02", ""))
		}
	}))
	defer srv.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient("secret", c, time.Hour)
	client.SetBaseURL(srv.URL)
	client.SetHTTPClient(srv.Client())
	client.SetLimiter(httputil.NewLimiter(0, 0))

	days, err := client.Load(context.Background(), Query{DatabaseID: "db1", Filter: "Type#Run"}, false)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if days["2023-03-01"] != 2 || days["2023-03-02"] != 1 {
		t.Errorf("days = %v", days)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
	if !strings.Contains(bodies[0], `"select":{"equals":"Run"}`) || !strings.Contains(bodies[0], `"property":"Type"`) {
		t.Errorf("first body missing filter: %s", bodies[0])
	}
	if !strings.Contains(bodies[1], `"start_cursor":"c2"`) {
		t.Errorf("second body missing cursor: %s", bodies[1])
	}

	// Cached on second call.
	if _, err := client.Load(context.Background(), Query{DatabaseID: "db1", Filter: "Type#Run"}, false); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d after cached Load, want 2", calls.Load())
	}
}

func TestLoadValidation(t *testing.T) {
	client := NewClient("secret", nil, time.Hour)
	tests := []struct {
		name string
		q    Query
	}{
		{"missing database", Query{}},
		{"bad filter", Query{DatabaseID: "db", Filter: "nohash"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.Load(context.Background(), tt.q, false); err == nil {
				t.Error("expected error")
			}
		})
	}
}
