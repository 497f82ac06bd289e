package crawling

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/apk-official/PrepLink-Backend/internal/config"
	"github.com/apk-official/PrepLink-Backend/internal/fetch"
)

// Strategy is the rendering strategy chosen for a site.
type Strategy string

const (
	// StrategyStatic reads pages with plain HTTP and HTML parsing.
	StrategyStatic Strategy = "static"
	// StrategyDynamic renders pages in a headless browser.
	StrategyDynamic Strategy = "dynamic"
)

// Other returns the alternate strategy.
func (s Strategy) Other() Strategy {
	if s == StrategyDynamic {
		return StrategyStatic
	}
	return StrategyDynamic
}

// Classifier decides whether a site needs a headless browser.
// The thresholds are heuristics, tunable through config.ClassifierConfig.
type Classifier struct {
	cfg       config.ClassifierConfig
	fetchOpts *fetch.Options
	logger    *zap.Logger
}

// NewClassifier creates a Classifier. A nil logger means zap.L().
func NewClassifier(cfg config.ClassifierConfig, fetchOpts *fetch.Options, logger *zap.Logger) *Classifier {
	if fetchOpts == nil {
		fetchOpts = fetch.DefaultOptions()
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Classifier{cfg: cfg, fetchOpts: fetchOpts, logger: logger}
}

// IsDynamic reports whether the page at pageURL should be rendered in a
// browser. A failed fetch counts as dynamic.
func (c *Classifier) IsDynamic(ctx context.Context, pageURL string) bool {
	strategy, err := c.Classify(ctx, pageURL)
	if err != nil {
		c.logger.Warn("classification failed, assuming dynamic site",
			zap.String("url", pageURL), zap.Error(err))
	}
	return strategy == StrategyDynamic
}

// Classify fetches pageURL once and applies ClassifyHTML. On fetch failure
// it returns StrategyDynamic together with a *ClassificationError.
func (c *Classifier) Classify(ctx context.Context, pageURL string) (Strategy, error) {
	result, err := fetch.URL(ctx, pageURL, c.fetchOpts)
	if err != nil {
		return StrategyDynamic, &ClassificationError{Message: "failed to fetch " + pageURL, Cause: err}
	}
	strategy, reason := ClassifyHTML(result.HTML, c.cfg)
	c.logger.Debug("site classified",
		zap.String("url", pageURL),
		zap.String("strategy", string(strategy)),
		zap.String("reason", reason),
	)
	return strategy, nil
}

// ClassifyHTML applies the heuristics to a page: too little body text, too
// many scripts, or a script src naming a frontend framework all mean
// dynamic. reason names the rule that fired.
func ClassifyHTML(htmlContent string, cfg config.ClassifierConfig) (Strategy, string) {
	doc, err := fetch.ParseHTML(htmlContent)
	if err != nil {
		return StrategyDynamic, "unparseable html"
	}

	if n := fetch.CharCount(fetch.CompactText(doc.Find("body"))); n < cfg.MinBodyTextChars {
		return StrategyDynamic, "little body text"
	}

	scripts := doc.Find("script")
	if scripts.Length() > cfg.MaxScriptTags {
		return StrategyDynamic, "many script tags"
	}

	framework := ""
	scripts.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok {
			return true
		}
		src = strings.ToLower(src)
		for _, token := range cfg.FrameworkTokens {
			if token != "" && strings.Contains(src, strings.ToLower(token)) {
				framework = token
				return false
			}
		}
		return true
	})
	if framework != "" {
		return StrategyDynamic, "framework script " + framework
	}

	return StrategyStatic, "static markup"
}
