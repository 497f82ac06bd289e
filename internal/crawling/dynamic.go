package crawling

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/apk-official/PrepLink-Backend/internal/config"
	"github.com/apk-official/PrepLink-Backend/internal/fetch"
	"github.com/apk-official/PrepLink-Backend/internal/resilience"
)

// maxNavigationBackoff caps a single retry sleep.
const maxNavigationBackoff = 2 * time.Minute

// dynamicRenderer renders pages in a headless browser, one tab per page.
type dynamicRenderer struct {
	browser *fetch.Browser
	cfg     config.BrowserConfig
	logger  *zap.Logger
}

func openDynamicRenderer(ctx context.Context, cfg config.BrowserConfig, userAgent string, logger *zap.Logger) (*dynamicRenderer, error) {
	ua := cfg.UserAgent
	if ua == "" {
		ua = userAgent
	}
	browser, err := fetch.OpenBrowser(ctx, fetch.BrowserOptions{
		Headless:  cfg.Headless,
		ExecPath:  cfg.ExecPath,
		UserAgent: ua,
		Width:     cfg.ViewportWidth,
		Height:    cfg.ViewportHeight,
	})
	if err != nil {
		return nil, err
	}
	return &dynamicRenderer{browser: browser, cfg: cfg, logger: logger}, nil
}

func (r *dynamicRenderer) home(ctx context.Context, pageURL string) (*homePage, error) {
	rendered, err := r.browser.Visit(ctx, pageURL, fetch.VisitOptions{
		NavigationTimeout:  r.cfg.HomeNavigationTimeout,
		NetworkIdleTimeout: r.cfg.NetworkIdleTimeout,
		BodyWaitTimeout:    r.cfg.BodyWaitTimeout,
		SettleDelay:        r.cfg.HomeSettleDelay,
	})
	if err != nil {
		return nil, err
	}

	home := &homePage{
		Title: fetch.CollapseWhitespace(rendered.Title),
		Text:  fetch.CollapseWhitespace(rendered.Text),
		Hrefs: rendered.Links,
	}
	if doc, err := fetch.ParseHTML(rendered.HTML); err == nil {
		home.FaviconURL = fetch.FaviconURL(doc, pageURL)
	}
	return home, nil
}

// page navigates with exponential backoff: BackoffMaxRetries retries
// after BackoffBase, 2×BackoffBase, ...
func (r *dynamicRenderer) page(ctx context.Context, pageURL string, mode textMode) (string, error) {
	retry := resilience.RetryConfig{
		MaxAttempts:    r.cfg.BackoffMaxRetries + 1,
		InitialBackoff: r.cfg.BackoffBase,
		MaxBackoff:     maxNavigationBackoff,
		Multiplier:     2.0,
		OnRetry:        resilience.RetryLogger(r.logger, "navigate", zap.String("url", pageURL)),
	}

	rendered, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*fetch.RenderedPage, error) {
		return r.browser.Visit(ctx, pageURL, fetch.VisitOptions{
			NavigationTimeout:  r.cfg.NavigationTimeout,
			NetworkIdleTimeout: r.cfg.NetworkIdleTimeout,
			BodyWaitTimeout:    r.cfg.BodyWaitTimeout,
			SettleDelay:        r.cfg.PageSettleDelay,
		})
	})
	if err != nil {
		return "", err
	}

	if mode == mainText {
		return fetch.CollapseWhitespace(rendered.MainText), nil
	}
	return fetch.CollapseWhitespace(rendered.Text), nil
}

func (r *dynamicRenderer) Close() error {
	return r.browser.Close()
}
