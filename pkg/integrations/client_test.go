package integrations

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/matzehuels/heatposter/pkg/cache"
	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/httputil"
)

func newTestClient(t *testing.T, srv *httptest.Server, headers map[string]string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(c, "test", time.Hour, headers)
	if srv != nil {
		client.SetHTTPClient(srv.Client())
	}
	return client
}

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client := newTestClient(t, nil, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("nil cache should fall back to NullCache")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	var ua, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		ua, auth = r.Header.Get("User-Agent"), r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv, map[string]string{"Authorization": "Bearer t"})

	var resp response
	if err := client.Get(context.Background(), srv.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
	if ua == "" {
		t.Error("User-Agent not sent")
	}
	if auth != "Bearer t" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get("X-Override")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, map[string]string{"X-Override": "default"})

	var resp map[string]any
	err := client.GetWithHeaders(context.Background(), srv.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if received != "overridden" {
		t.Errorf("header = %q, want overridden", received)
	}
}

func TestClientPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)

	var echo map[string]int
	if err := client.PostJSON(context.Background(), srv.URL, map[string]int{"page_size": 100}, &echo); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if echo["page_size"] != 100 {
		t.Errorf("echo = %v", echo)
	}

	raw, err := client.PostJSONRaw(context.Background(), srv.URL, map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("PostJSONRaw() error: %v", err)
	}
	if string(raw) != `{"a":"b"}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, func(err error) bool { return stderrors.Is(err, ErrNotFound) }},
		{"unauthorized", http.StatusUnauthorized, func(err error) bool { return stderrors.Is(err, ErrUnauthorized) }},
		{"forbidden", http.StatusForbidden, func(err error) bool { return stderrors.Is(err, ErrUnauthorized) }},
		{"bad request", http.StatusBadRequest, func(err error) bool { return stderrors.Is(err, ErrNetwork) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := newTestClient(t, srv, nil)
			var v any
			err := client.Get(context.Background(), srv.URL, &v)
			if err == nil || !tt.check(err) {
				t.Errorf("Get() error = %v", err)
			}
		})
	}
}

func TestClientRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	var v any
	err := client.Get(context.Background(), srv.URL, &v)

	var rl *errors.RateLimitedError
	if !stderrors.As(err, &rl) {
		t.Fatalf("error = %T %v, want RateLimitedError", err, err)
	}
	if rl.RetryAfter != 12 {
		t.Errorf("RetryAfter = %d, want 12", rl.RetryAfter)
	}
	if errors.GetCode(err) != errors.ErrCodeRateLimited {
		t.Errorf("GetCode = %v", errors.GetCode(err))
	}
}

func TestClientLimiterCancel(t *testing.T) {
	client := newTestClient(t, nil, nil)
	client.SetLimiter(httputil.NewLimiter(0.001, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var v any
	if err := client.Get(ctx, "http://127.0.0.1:0", &v); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestClientCached(t *testing.T) {
	client := newTestClient(t, nil, nil)

	type testData struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	var value testData
	fetch := func() error {
		fetchCount++
		value = testData{Value: "fetched"}
		return nil
	}

	ctx := context.Background()
	if err := client.Cached(ctx, "k", false, &value, fetch); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}

	var again testData
	if err := client.Cached(ctx, "k", false, &again, func() error {
		fetchCount++
		return nil
	}); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if again.Value != "fetched" {
		t.Errorf("cached value = %q, want fetched", again.Value)
	}
}

func TestClientCachedRefresh(t *testing.T) {
	client := newTestClient(t, nil, nil)
	ctx := context.Background()

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	for range 2 {
		if err := client.Cached(ctx, "refresh-key", true, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := newTestClient(t, nil, nil)

	var value string
	err := client.Cached(context.Background(), "err-key", false, &value, func() error {
		return ErrNotFound
	})
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantErr   error
		retryable bool
	}{
		{"200 OK", http.StatusOK, nil, false},
		{"204 No Content", http.StatusNoContent, nil, false},
		{"404 Not Found", http.StatusNotFound, ErrNotFound, false},
		{"401 Unauthorized", http.StatusUnauthorized, ErrUnauthorized, false},
		{"500 Internal", http.StatusInternalServerError, ErrNetwork, true},
		{"503 Unavailable", http.StatusServiceUnavailable, ErrNetwork, true},
		{"400 Bad Request", http.StatusBadRequest, ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if !stderrors.Is(err, tt.wantErr) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantErr)
			}
			var re *httputil.RetryableError
			if got := stderrors.As(err, &re); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}
