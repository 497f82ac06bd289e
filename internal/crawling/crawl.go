package crawling

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/apk-official/PrepLink-Backend/internal/config"
	"github.com/apk-official/PrepLink-Backend/internal/fetch"
	"github.com/apk-official/PrepLink-Backend/internal/robots"
	"github.com/apk-official/PrepLink-Backend/internal/types"
)

const (
	// defaultPageKey names a crawled page whose URL has no path.
	defaultPageKey = "page"
	// defaultLegalKey names a legal page whose URL has no path.
	defaultLegalKey = "legal"
)

// siteClassifier picks a rendering strategy for a site.
type siteClassifier interface {
	IsDynamic(ctx context.Context, pageURL string) bool
}

// Crawler runs bounded crawls of company websites. All mutable crawl state
// lives in each call, so one Crawler may serve concurrent crawls.
type Crawler struct {
	cfg        config.ScrapeConfig
	logger     *zap.Logger
	httpClient *http.Client

	classifier siteClassifier
	renderers  map[Strategy]rendererFactory
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets the crawler's logger. The default is zap.L().
func WithLogger(l *zap.Logger) Option {
	return func(c *Crawler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient sets the client used for page, classifier and robots.txt requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) {
		c.httpClient = client
	}
}

// New creates a Crawler with the given policy.
func New(cfg config.ScrapeConfig, opts ...Option) *Crawler {
	c := &Crawler{
		cfg:    cfg,
		logger: zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.classifier = NewClassifier(cfg.Classifier, c.fetchOptions(), c.logger)
	c.renderers = map[Strategy]rendererFactory{
		StrategyStatic: func(context.Context) (renderer, error) {
			return newStaticRenderer(c.fetchOptions()), nil
		},
		StrategyDynamic: func(ctx context.Context) (renderer, error) {
			return openDynamicRenderer(ctx, cfg.Browser, cfg.UserAgent, c.logger)
		},
	}
	return c
}

// Config returns the crawl policy.
func (c *Crawler) Config() config.ScrapeConfig {
	return c.cfg
}

func (c *Crawler) fetchOptions() *fetch.Options {
	return &fetch.Options{
		Timeout:      c.cfg.RequestTimeout,
		UserAgent:    c.cfg.UserAgent,
		MaxBodyBytes: c.cfg.MaxBodyBytes,
		Client:       c.httpClient,
	}
}

func (c *Crawler) newGatekeeper(log *zap.Logger) *robots.Gatekeeper {
	opts := []robots.Option{robots.WithTimeout(c.cfg.RequestTimeout), robots.WithLogger(log)}
	if c.httpClient != nil {
		opts = append(opts, robots.WithHTTPClient(c.httpClient))
	}
	return robots.New(c.cfg.UserAgent, opts...)
}

// newLimiter spaces page fetches PolitenessDelay apart. The first fetch
// takes the initial token without waiting.
func (c *Crawler) newLimiter() *rate.Limiter {
	if c.cfg.PolitenessDelay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(c.cfg.PolitenessDelay), 1)
}

// crawlLogger tags every log line of one crawl.
func (c *Crawler) crawlLogger(op, pageURL string) *zap.Logger {
	return c.logger.With(
		zap.String("crawl_id", uuid.NewString()),
		zap.String("op", op),
		zap.String("base_url", pageURL),
	)
}

// GetScrapedData classifies the site and crawls it with the matching strategy.
func (c *Crawler) GetScrapedData(ctx context.Context, rawURL string) (*types.ScrapeBundle, error) {
	pageURL, err := checkURL(rawURL)
	if err != nil {
		return nil, err
	}
	strategy := StrategyStatic
	if c.classifier.IsDynamic(ctx, pageURL) {
		strategy = StrategyDynamic
	}
	return c.scrape(ctx, pageURL, strategy)
}

// ScrapeStatic crawls rawURL with plain HTTP requests.
func (c *Crawler) ScrapeStatic(ctx context.Context, rawURL string) (*types.ScrapeBundle, error) {
	pageURL, err := checkURL(rawURL)
	if err != nil {
		return nil, err
	}
	return c.scrape(ctx, pageURL, StrategyStatic)
}

// ScrapeDynamic crawls rawURL in a headless browser. If robots.txt allowed
// at least one internal link and none could be loaded, it returns a
// *BlockedByServerError.
func (c *Crawler) ScrapeDynamic(ctx context.Context, rawURL string) (*types.ScrapeBundle, error) {
	pageURL, err := checkURL(rawURL)
	if err != nil {
		return nil, err
	}
	return c.scrape(ctx, pageURL, StrategyDynamic)
}

// scrape is the crawl shared by both strategies: robots check, homepage,
// then relevant internal links one at a time within the page and
// character budgets.
func (c *Crawler) scrape(ctx context.Context, pageURL string, strategy Strategy) (*types.ScrapeBundle, error) {
	log := c.crawlLogger("scrape", pageURL).With(zap.String("strategy", string(strategy)))
	gate := c.newGatekeeper(log)

	if !gate.IsAllowed(ctx, pageURL) {
		return nil, &PermissionDeniedError{URL: pageURL}
	}

	r, err := c.renderers[strategy](ctx)
	if err != nil {
		return nil, &CrawlError{Message: "failed to start " + string(strategy) + " renderer", Cause: err}
	}
	defer closeRenderer(r, log)

	limiter := c.newLimiter()
	if err := limiter.Wait(ctx); err != nil {
		return nil, cancelled(ctx, err)
	}
	home, err := r.home(ctx, pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx, err)
		}
		return nil, &FetchFailureError{URL: pageURL, Cause: err}
	}

	budget := newCharBudget(c.cfg.MaxCharsPerPage, c.cfg.MaxTotalChars)
	bundle := &types.ScrapeBundle{
		BaseURL:          pageURL,
		HomeTitle:        home.Title,
		CompanyNameGuess: CompanyNameFromTitle(home.Title),
		FaviconURL:       home.FaviconURL,
		Pages: []types.PageDocument{{
			Key:  types.HomePageKey,
			URL:  pageURL,
			Text: budget.take(home.Text),
		}},
	}

	maxLinks := c.cfg.MaxPages - 1
	if budget.exhausted() || maxLinks <= 0 {
		log.Info("crawl finished with homepage only", zap.Int("total_chars", bundle.TotalChars()))
		return bundle, nil
	}

	mode := MatchURL
	if strategy == StrategyDynamic {
		mode = MatchPath
	}
	links, err := FilterLinks(home.Hrefs, pageURL, RelevantKeywords, mode, maxLinks)
	if err != nil {
		return nil, err
	}
	log.Debug("internal links discovered", zap.Strings("links", links))

	attempted, succeeded := 0, 0
	var lastErr error
	for _, link := range links {
		if budget.exhausted() {
			break
		}
		if !gate.IsAllowed(ctx, link) {
			log.Info("skipping link disallowed by robots.txt", zap.String("url", link))
			continue
		}

		attempted++
		if err := limiter.Wait(ctx); err != nil {
			return nil, cancelled(ctx, err)
		}
		text, err := r.page(ctx, link, bodyText)
		if err != nil {
			if ctx.Err() != nil {
				return nil, cancelled(ctx, err)
			}
			lastErr = &FetchFailureError{URL: link, Cause: err}
			log.Warn("page fetch failed, skipping", zap.String("url", link), zap.Error(err))
			continue
		}

		succeeded++
		bundle.Pages = append(bundle.Pages, types.PageDocument{
			Key:  PageKey(link, defaultPageKey),
			URL:  link,
			Text: budget.take(text),
		})
	}

	if strategy == StrategyDynamic && attempted > 0 && succeeded == 0 {
		return nil, &BlockedByServerError{URL: pageURL, Attempted: attempted, Cause: lastErr}
	}

	log.Info("crawl finished",
		zap.Int("pages", len(bundle.Pages)),
		zap.Int("attempted", attempted),
		zap.Int("succeeded", succeeded),
		zap.Int("total_chars", bundle.TotalChars()),
	)
	return bundle, nil
}

// checkURL rejects empty input before any network activity.
func checkURL(rawURL string) (string, error) {
	pageURL := strings.TrimSpace(rawURL)
	if pageURL == "" {
		return "", &InvalidInputError{Message: "URL must not be empty"}
	}
	return pageURL, nil
}

func closeRenderer(r renderer, log *zap.Logger) {
	if err := r.Close(); err != nil {
		log.Warn("failed to close renderer", zap.Error(err))
	}
}

func cancelled(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &CrawlError{Message: "crawl cancelled", Cause: ctxErr}
	}
	return &CrawlError{Message: "crawl interrupted", Cause: err}
}

// charBudget enforces the per-page and total character caps of one crawl.
type charBudget struct {
	perPage   int
	remaining int
}

func newCharBudget(perPage, total int) *charBudget {
	return &charBudget{perPage: perPage, remaining: total}
}

// take truncates text to what the budget still allows and charges for it.
func (b *charBudget) take(text string) string {
	limit := b.perPage
	if b.remaining < limit {
		limit = b.remaining
	}
	text = fetch.Truncate(text, limit)
	b.remaining -= fetch.CharCount(text)
	return text
}

func (b *charBudget) exhausted() bool {
	return b.remaining <= 0
}
