package crawling

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/apk-official/PrepLink-Backend/internal/config"
)

// testSite serves an in-memory website. Every request is recorded as
// host+path so tests can assert which URLs were (not) fetched.
type testSite struct {
	pages  map[string]string
	status map[string]int

	mu    sync.Mutex
	hits  []string
	times map[string]time.Time
}

func newTestSite(pages map[string]string) *testSite {
	return &testSite{pages: pages, status: map[string]int{}, times: map[string]time.Time{}}
}

func (s *testSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits = append(s.hits, r.Host+r.URL.Path)
	s.times[r.URL.Path] = time.Now()
	s.mu.Unlock()

	if code, ok := s.status[r.URL.Path]; ok {
		w.WriteHeader(code)
		return
	}
	body, ok := s.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.URL.Path == "/robots.txt" {
		w.Header().Set("Content-Type", "text/plain")
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	_, _ = io.WriteString(w, body)
}

func (s *testSite) requested(hostPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.hits {
		if h == hostPath {
			return true
		}
	}
	return false
}

func (s *testSite) requestedAt(path string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.times[path]
}

// rewriteTransport sends every request to target while keeping the
// original host in the Host header, so tests can use real-looking URLs.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	out.Host = req.URL.Host
	return http.DefaultTransport.RoundTrip(out)
}

func siteClient(t *testing.T, handler http.Handler) *http.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	target, err := url.Parse(server.URL)
	require.NoError(t, err)
	return &http.Client{Transport: rewriteTransport{target: target}}
}

func testConfig() config.ScrapeConfig {
	cfg := config.DefaultScrapeConfig()
	cfg.PolitenessDelay = 0
	cfg.RequestTimeout = 5 * time.Second
	cfg.Browser.BackoffBase = time.Millisecond
	return cfg
}

func newTestCrawler(t *testing.T, cfg config.ScrapeConfig, handler http.Handler) *Crawler {
	t.Helper()
	return New(cfg, WithHTTPClient(siteClient(t, handler)), WithLogger(zaptest.NewLogger(t)))
}

var errNavigation = errors.New("navigation failed: net::ERR_CONNECTION_RESET")

// fakeRenderer stands in for the headless browser.
type fakeRenderer struct {
	homeResult *homePage
	homeErr    error
	pages      map[string]string
	pageFunc   func(ctx context.Context, pageURL string) (string, error)

	mu     sync.Mutex
	visits []string
	modes  []textMode
	closed int
}

func (f *fakeRenderer) home(_ context.Context, pageURL string) (*homePage, error) {
	f.mu.Lock()
	f.visits = append(f.visits, pageURL)
	f.mu.Unlock()
	return f.homeResult, f.homeErr
}

func (f *fakeRenderer) page(ctx context.Context, pageURL string, mode textMode) (string, error) {
	f.mu.Lock()
	f.visits = append(f.visits, pageURL)
	f.modes = append(f.modes, mode)
	f.mu.Unlock()

	if f.pageFunc != nil {
		return f.pageFunc(ctx, pageURL)
	}
	if text, ok := f.pages[pageURL]; ok {
		return text, nil
	}
	return "", errNavigation
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeRenderer) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeClassifier struct {
	dynamic bool
}

func (f fakeClassifier) IsDynamic(context.Context, string) bool {
	return f.dynamic
}

func useRenderer(c *Crawler, s Strategy, r renderer) {
	c.renderers[s] = func(context.Context) (renderer, error) { return r, nil }
}
