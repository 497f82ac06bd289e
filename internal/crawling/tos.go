package crawling

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/apk-official/PrepLink-Backend/internal/fetch"
	"github.com/apk-official/PrepLink-Backend/internal/types"
)

// GetTosData collects up to MaxTosPages legal pages (terms, privacy,
// cookies) of the site at baseURL for a compliance decision. If the
// classified strategy fails unexpectedly, the alternate strategy runs once.
func (c *Crawler) GetTosData(ctx context.Context, baseURL string) (*types.TosBundle, error) {
	pageURL, err := checkURL(baseURL)
	if err != nil {
		return nil, err
	}

	strategy := StrategyStatic
	if c.classifier.IsDynamic(ctx, pageURL) {
		strategy = StrategyDynamic
	}

	bundle, err := c.tos(ctx, pageURL, strategy)
	if err == nil || !shouldFallBack(ctx, err) {
		return bundle, err
	}

	c.logger.Warn("legal page extraction failed, trying alternate strategy",
		zap.String("base_url", pageURL),
		zap.String("failed_strategy", string(strategy)),
		zap.String("fallback_strategy", string(strategy.Other())),
		zap.Error(err),
	)
	return c.tos(ctx, pageURL, strategy.Other())
}

// shouldFallBack reports whether err is worth retrying with the other strategy.
func shouldFallBack(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var (
		invalid *InvalidInputError
		denied  *PermissionDeniedError
	)
	return !errors.As(err, &invalid) && !errors.As(err, &denied)
}

func (c *Crawler) tos(ctx context.Context, pageURL string, strategy Strategy) (*types.TosBundle, error) {
	log := c.crawlLogger("tos", pageURL).With(zap.String("strategy", string(strategy)))
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

	candidates, err := FilterLinks(home.Hrefs, pageURL, LegalKeywords, MatchURL, c.cfg.MaxTosPages)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates = GuessLegalURLs(pageURL)
		log.Debug("no legal links found, using guessed paths")
	}
	if len(candidates) > c.cfg.MaxTosPages {
		candidates = candidates[:c.cfg.MaxTosPages]
	}

	bundle := &types.TosBundle{BaseURL: pageURL, Pages: []types.PageDocument{}}
	for _, link := range candidates {
		if !gate.IsAllowed(ctx, link) {
			log.Info("skipping legal page disallowed by robots.txt", zap.String("url", link))
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, cancelled(ctx, err)
		}

		text, err := r.page(ctx, link, mainText)
		if err != nil {
			if ctx.Err() != nil {
				return nil, cancelled(ctx, err)
			}
			log.Warn("legal page fetch failed, skipping", zap.String("url", link), zap.Error(err))
			continue
		}

		bundle.Pages = append(bundle.Pages, types.PageDocument{
			Key:  PageKey(link, defaultLegalKey),
			URL:  link,
			Text: fetch.Truncate(text, c.cfg.TosMaxCharsPerPage),
		})
	}

	log.Info("legal pages collected", zap.Strings("keys", bundle.PageKeys()))
	return bundle, nil
}

// GuessLegalURLs returns LegalPathGuesses joined to the site root of baseURL.
func GuessLegalURLs(baseURL string) []string {
	base := strings.TrimRight(baseURL, "/")
	seen := make(map[string]bool)
	urls := make([]string, 0, len(LegalPathGuesses))
	for _, p := range LegalPathGuesses {
		u := base + p
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}
