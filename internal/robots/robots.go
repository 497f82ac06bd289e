// Package robots decides whether a URL may be crawled according to the
// host's robots.txt. Decisions fail open: an unreachable or unreadable
// robots.txt allows the crawl.
package robots

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"

	"github.com/apk-official/PrepLink-Backend/internal/fetch"
)

// robotsTxtPath is the well-known path for robots.txt files.
const robotsTxtPath = "/robots.txt"

// maxRobotsBodyBytes limits the size of robots.txt responses we will read.
const maxRobotsBodyBytes = 512 * 1024

// DefaultTimeout bounds the robots.txt fetch.
const DefaultTimeout = 10 * time.Second

// Gatekeeper checks and caches robots.txt rules per host. A Gatekeeper is
// meant to live for one crawl; create a new one per crawl so no decision
// outlives it. It is safe for concurrent use.
type Gatekeeper struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger

	mu    sync.Mutex
	cache map[string]*rules
}

// rules is the outcome of one robots.txt fetch. A nil data means allow all.
type rules struct {
	data       *robotstxt.RobotsData
	disallowed bool
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithHTTPClient overrides the client used to fetch robots.txt.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gatekeeper) { g.client = c }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gatekeeper) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the logger used for decisions and fetch failures.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gatekeeper) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Gatekeeper that tests URLs for userAgent.
// An empty userAgent means fetch.DefaultUserAgent.
func New(userAgent string, opts ...Option) *Gatekeeper {
	if userAgent == "" {
		userAgent = fetch.DefaultUserAgent
	}
	g := &Gatekeeper{
		client:    http.DefaultClient,
		userAgent: userAgent,
		timeout:   DefaultTimeout,
		logger:    zap.L(),
		cache:     make(map[string]*rules),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// UserAgent returns the agent the gatekeeper identifies as.
func (g *Gatekeeper) UserAgent() string {
	return g.userAgent
}

// IsAllowed reports whether rawURL may be fetched by the gatekeeper's user agent.
func (g *Gatekeeper) IsAllowed(ctx context.Context, rawURL string) bool {
	return g.IsAllowedFor(ctx, rawURL, g.userAgent)
}

// IsAllowedFor reports whether rawURL may be fetched by userAgent.
// Unparseable URLs, network failures and unreadable robots.txt all allow.
func (g *Gatekeeper) IsAllowedFor(ctx context.Context, rawURL, userAgent string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		g.logger.Debug("robots: unparseable url, allowing", zap.String("url", rawURL))
		return true
	}

	r := g.rulesFor(ctx, parsed)
	allowed := r.allows(requestPath(parsed), userAgent)
	g.logger.Debug("robots decision",
		zap.String("url", rawURL),
		zap.String("agent", userAgent),
		zap.Bool("allowed", allowed),
	)
	return allowed
}

func (r *rules) allows(path, userAgent string) bool {
	if r.disallowed {
		return false
	}
	if r.data == nil {
		return true
	}
	return r.data.TestAgent(path, userAgent)
}

// rulesFor returns the cached rules for the URL's host, fetching them once.
func (g *Gatekeeper) rulesFor(ctx context.Context, u *url.URL) *rules {
	key := strings.ToLower(u.Scheme + "://" + u.Host)

	g.mu.Lock()
	if r, ok := g.cache[key]; ok {
		g.mu.Unlock()
		return r
	}
	g.mu.Unlock()

	r := g.fetch(ctx, key+robotsTxtPath)

	// Cancellation is not a decision about the host.
	if ctx.Err() != nil {
		return r
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.cache[key]; ok {
		return existing
	}
	g.cache[key] = r
	return r
}

func (g *Gatekeeper) fetch(ctx context.Context, robotsURL string) *rules {
	allowAll := &rules{}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		g.logger.Warn("robots: could not build request, allowing", zap.String("robots_url", robotsURL), zap.Error(err))
		return allowAll
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("robots: could not read robots.txt, allowing", zap.String("robots_url", robotsURL), zap.Error(err))
		return allowAll
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &rules{disallowed: true}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return allowAll
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		g.logger.Warn("robots: could not read robots.txt body, allowing", zap.String("robots_url", robotsURL), zap.Error(err))
		return allowAll
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		g.logger.Warn("robots: could not parse robots.txt, allowing", zap.String("robots_url", robotsURL), zap.Error(err))
		return allowAll
	}
	return &rules{data: data}
}

// requestPath is the path and query robots rules are matched against.
func requestPath(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
