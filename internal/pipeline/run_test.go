package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/apk-official/PrepLink-Backend/internal/config"
	"github.com/apk-official/PrepLink-Backend/internal/crawling"
	"github.com/apk-official/PrepLink-Backend/internal/types"
)

type stubCrawler struct {
	tos       *types.TosBundle
	tosErr    error
	scrape    *types.ScrapeBundle
	scrapeErr error

	tosCalls    []string
	scrapeCalls []string
}

func (s *stubCrawler) GetTosData(_ context.Context, baseURL string) (*types.TosBundle, error) {
	s.tosCalls = append(s.tosCalls, baseURL)
	return s.tos, s.tosErr
}

func (s *stubCrawler) GetScrapedData(_ context.Context, rawURL string) (*types.ScrapeBundle, error) {
	s.scrapeCalls = append(s.scrapeCalls, rawURL)
	return s.scrape, s.scrapeErr
}

func tosWithTerms() *types.TosBundle {
	return &types.TosBundle{
		BaseURL: "https://example.com",
		Pages:   []types.PageDocument{{Key: "terms", URL: "https://example.com/terms", Text: "Be nice."}},
	}
}

func scrapeBundle() *types.ScrapeBundle {
	return &types.ScrapeBundle{
		BaseURL: "https://example.com",
		Pages:   []types.PageDocument{{Key: types.HomePageKey, URL: "https://example.com", Text: "Hello"}},
	}
}

func TestRun_PermittedCrawls(t *testing.T) {
	crawler := &stubCrawler{tos: tosWithTerms(), scrape: scrapeBundle()}
	var steps []string
	opts := RunOptions{
		Logger:     zaptest.NewLogger(t),
		OnProgress: func(e ProgressEvent) { steps = append(steps, e.Step) },
	}

	result, err := Run(context.Background(), crawler, StaticDecider(true), "https://Example.com/", opts)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", result.BaseURL)
	assert.True(t, result.Permitted)
	require.NotNil(t, result.Scrape)
	assert.Equal(t, []string{"home"}, result.Scrape.PageKeys())
	assert.Equal(t, []string{"https://example.com"}, crawler.tosCalls)
	assert.Equal(t, []string{"https://example.com"}, crawler.scrapeCalls)
	assert.Equal(t, []string{StepValidate, StepTos, StepDecide, StepScrape}, steps)
}

func TestRun_RefusalIsNotAnError(t *testing.T) {
	crawler := &stubCrawler{tos: tosWithTerms(), scrape: scrapeBundle()}

	var seen *types.TosBundle
	decider := DeciderFunc(func(_ context.Context, tos *types.TosBundle) (bool, error) {
		seen = tos
		return false, nil
	})

	result, err := Run(context.Background(), crawler, decider, "https://example.com", RunOptions{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	assert.False(t, result.Permitted)
	assert.Nil(t, result.Scrape)
	assert.Same(t, crawler.tos, seen)
	assert.Empty(t, crawler.scrapeCalls)
}

func TestRun_EmptyTosIsPermittedWithoutAsking(t *testing.T) {
	crawler := &stubCrawler{
		tos:    &types.TosBundle{BaseURL: "https://example.com", Pages: []types.PageDocument{}},
		scrape: scrapeBundle(),
	}
	decider := DeciderFunc(func(context.Context, *types.TosBundle) (bool, error) {
		t.Fatal("decider must not be consulted for an empty bundle")
		return false, nil
	})

	result, err := Run(context.Background(), crawler, decider, "https://example.com", RunOptions{})
	require.NoError(t, err)
	assert.True(t, result.Permitted)
	assert.NotNil(t, result.Scrape)
}

func TestRun_RejectsInvalidBaseURL(t *testing.T) {
	crawler := &stubCrawler{}

	for _, raw := range []string{"", "ftp://example.com", "https://example.com/about", "http://127.0.0.1"} {
		_, err := Run(context.Background(), crawler, StaticDecider(true), raw, RunOptions{})
		var invalid *crawling.InvalidInputError
		assert.ErrorAs(t, err, &invalid, raw)
	}
	assert.Empty(t, crawler.tosCalls)
}

func TestRun_AllowPrivate(t *testing.T) {
	crawler := &stubCrawler{tos: &types.TosBundle{Pages: []types.PageDocument{}}, scrape: scrapeBundle()}

	result, err := Run(context.Background(), crawler, StaticDecider(true), "http://127.0.0.1:8080", RunOptions{AllowPrivate: true})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", result.BaseURL)
}

func TestRun_PropagatesErrors(t *testing.T) {
	denied := &crawling.PermissionDeniedError{URL: "https://example.com"}

	_, err := Run(context.Background(), &stubCrawler{tosErr: denied}, StaticDecider(true), "https://example.com", RunOptions{})
	assert.ErrorIs(t, err, denied)

	failure := &crawling.FetchFailureError{URL: "https://example.com", Cause: errors.New("reset")}
	crawler := &stubCrawler{tos: tosWithTerms(), scrapeErr: failure}
	_, err = Run(context.Background(), crawler, StaticDecider(true), "https://example.com", RunOptions{})
	assert.ErrorIs(t, err, failure)

	boom := errors.New("model unavailable")
	decider := DeciderFunc(func(context.Context, *types.TosBundle) (bool, error) { return false, boom })
	_, err = Run(context.Background(), &stubCrawler{tos: tosWithTerms()}, decider, "https://example.com", RunOptions{})
	var crawlErr *crawling.CrawlError
	require.ErrorAs(t, err, &crawlErr)
	assert.ErrorIs(t, err, boom)
}

func TestRun_Live(t *testing.T) {
	target := os.Getenv("PREPLINK_LIVE_URL")
	if target == "" {
		t.Skip("Skipping live run: PREPLINK_LIVE_URL not set")
	}

	crawler := crawling.New(config.DefaultScrapeConfig(), crawling.WithLogger(zaptest.NewLogger(t)))
	result, err := Run(context.Background(), crawler, StaticDecider(true), target, RunOptions{})
	if err != nil {
		t.Logf("Run failed (expected if the site is unreachable): %v", err)
		return
	}
	assert.True(t, result.Permitted)
	require.NotNil(t, result.Scrape)
	assert.Equal(t, types.HomePageKey, result.Scrape.Pages[0].Key)
}
