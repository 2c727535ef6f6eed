package fortune

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"remcalc/internal/config"
)

const fallback = "One that would have the fruit must climb the tree."

func newTestClient(primary, proxy string) *Client {
	return &Client{
		HTTP:       &http.Client{},
		PrimaryURL: primary,
		ProxyURL:   proxy,
		Timeout:    time.Second,
		Fallback:   fallback,
		Logger:     zap.NewNop(),
	}
}

func TestFetch_Primary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  Fortune favors the rested.  "}`))
	}))
	defer srv.Close()

	got := newTestClient(srv.URL, "").Fetch(context.Background())
	assert.Equal(t, Fortune{Text: "Fortune favors the rested.", Source: SourcePrimary}, got)
}

func TestFetch_ProxyAfterPrimaryFailure(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer primary.Close()

	var gotURL atomic.Value
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL.Store(r.URL.Query().Get("url"))
		_, _ = w.Write([]byte(`{"contents":"{\"text\":\"Sleep is a journey.\"}"}`))
	}))
	defer proxy.Close()

	c := newTestClient(primary.URL+"/v1/fortunecookie?mode=random", proxy.URL+"/get?url=")
	got := c.Fetch(context.Background())

	assert.Equal(t, Fortune{Text: "Sleep is a journey.", Source: SourceProxy}, got)
	assert.Equal(t, primary.URL+"/v1/fortunecookie?mode=random", gotURL.Load())
}

func TestFetch_FallbackWhenEverythingFails(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		proxy   string
	}{
		{"empty text", `{"text":""}`, `{"contents":""}`},
		{"not json", `<html>`, `{"contents":"not json"}`},
		{"missing field", `{"fortune":"x"}`, `{"contents":"{\"fortune\":\"x\"}"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.primary))
			}))
			defer primary.Close()
			proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.proxy))
			}))
			defer proxy.Close()

			got := newTestClient(primary.URL, proxy.URL+"/?url=").Fetch(context.Background())
			assert.Equal(t, Fortune{Text: fallback, Source: SourceFallback}, got)
		})
	}
}

func TestFetch_PrimaryTimeout(t *testing.T) {
	release := make(chan struct{})
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer primary.Close()
	defer close(release)

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"contents":"{\"text\":\"Patience.\"}"}`))
	}))
	defer proxy.Close()

	c := newTestClient(primary.URL, proxy.URL+"/?url=")
	c.Timeout = 50 * time.Millisecond

	start := time.Now()
	got := c.Fetch(context.Background())
	assert.Equal(t, SourceProxy, got.Source)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFetch_CancelledContextSkipsProxy(t *testing.T) {
	var proxyHits atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxyHits.Add(1)
		_, _ = w.Write([]byte(`{"contents":"{\"text\":\"nope\"}"}`))
	}))
	defer proxy.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := newTestClient("http://127.0.0.1:1/", proxy.URL+"/?url=").Fetch(ctx)
	assert.Equal(t, SourceFallback, got.Source)
	assert.Zero(t, proxyHits.Load())
}

func TestNewClient(t *testing.T) {
	cfg := config.Default().Fortune
	c := NewClient(cfg, nil)
	require.NotNil(t, c.Logger)
	assert.Equal(t, cfg.PrimaryURL, c.PrimaryURL)
	assert.Equal(t, 6*time.Second, c.Timeout)

	u, err := url.Parse(c.ProxyURL + url.QueryEscape(c.PrimaryURL))
	require.NoError(t, err)
	assert.Equal(t, cfg.PrimaryURL, u.Query().Get("url"))
}
