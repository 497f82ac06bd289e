// Package pipeline gates a company-site crawl on the site's legal pages:
// the terms/privacy bundle is collected first and the content crawl runs
// only when a ComplianceDecider permits it.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/apk-official/PrepLink-Backend/internal/crawling"
	"github.com/apk-official/PrepLink-Backend/internal/types"
)

// Pipeline steps reported through ProgressEvent.Step.
const (
	StepValidate = "validate_url"
	StepTos      = "collect_tos"
	StepDecide   = "decide"
	StepScrape   = "scrape"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	BaseURL string `json:"base_url,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// ComplianceDecider decides whether a site's legal pages allow its content
// to be collected.
type ComplianceDecider interface {
	Permitted(ctx context.Context, tos *types.TosBundle) (bool, error)
}

// StaticDecider answers every bundle with the same decision.
type StaticDecider bool

// Permitted implements ComplianceDecider.
func (d StaticDecider) Permitted(context.Context, *types.TosBundle) (bool, error) {
	return bool(d), nil
}

// DeciderFunc adapts a function to ComplianceDecider.
type DeciderFunc func(ctx context.Context, tos *types.TosBundle) (bool, error)

// Permitted implements ComplianceDecider.
func (f DeciderFunc) Permitted(ctx context.Context, tos *types.TosBundle) (bool, error) {
	return f(ctx, tos)
}

// Crawler is the part of crawling.Crawler a run needs.
type Crawler interface {
	GetTosData(ctx context.Context, baseURL string) (*types.TosBundle, error)
	GetScrapedData(ctx context.Context, rawURL string) (*types.ScrapeBundle, error)
}

// RunOptions holds configuration for a run
type RunOptions struct {
	// AllowPrivate accepts loopback and private-network base URLs.
	AllowPrivate bool
	Logger       *zap.Logger
	OnProgress   ProgressCallback
}

// Result is the outcome of a run. Scrape is nil when the crawl was not permitted.
type Result struct {
	BaseURL   string              `json:"base_url"`
	Tos       *types.TosBundle    `json:"tos"`
	Permitted bool                `json:"permitted"`
	Scrape    *types.ScrapeBundle `json:"scrape,omitempty"`
}

func emitProgress(opts *RunOptions, step, baseURL, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:    step,
			Message: message,
			BaseURL: baseURL,
			Content: content,
		})
	}
}

// Run validates rawURL, collects the site's legal pages, asks decider and,
// when permitted, crawls the site. A refusal is reported in Result, not as
// an error. A site without any legal pages is permitted without asking.
func Run(ctx context.Context, crawler Crawler, decider ComplianceDecider, rawURL string, opts RunOptions) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.L()
	}

	baseURL, err := crawling.ValidateBaseURL(rawURL, opts.AllowPrivate)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("base_url", baseURL))
	emitProgress(&opts, StepValidate, baseURL, "base URL accepted", nil)

	tos, err := crawler.GetTosData(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	emitProgress(&opts, StepTos, baseURL, "legal pages collected", tos.PageKeys())

	result := &Result{BaseURL: baseURL, Tos: tos}
	if len(tos.Pages) == 0 {
		log.Info("no legal pages found, crawl permitted")
		result.Permitted = true
	} else {
		result.Permitted, err = decider.Permitted(ctx, tos)
		if err != nil {
			return nil, &crawling.CrawlError{Message: "compliance decision failed", Cause: err}
		}
	}
	emitProgress(&opts, StepDecide, baseURL, "compliance decided", result.Permitted)

	if !result.Permitted {
		log.Info("crawl not permitted by legal pages", zap.Strings("tos_keys", tos.PageKeys()))
		return result, nil
	}

	result.Scrape, err = crawler.GetScrapedData(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	emitProgress(&opts, StepScrape, baseURL, "site crawled", result.Scrape.PageKeys())
	log.Info("run finished",
		zap.Int("pages", len(result.Scrape.Pages)),
		zap.Int("total_chars", result.Scrape.TotalChars()),
	)
	return result, nil
}
