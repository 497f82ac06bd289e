package crawling

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTosData_FollowsLegalLinks(t *testing.T) {
	cfg := testConfig()
	cfg.TosMaxCharsPerPage = 40

	site := newTestSite(map[string]string{
		"/": `<html><body><p>Shop home</p>
			<a href="/about">About</a>
			<a href="/legal/terms">Terms</a>
			<a href="/privacy-policy#top">Privacy</a>
			<a href="/cookie-policy">Cookies</a>
			<a href="/policies/returns">Returns</a>
			<a href="https://elsewhere.test/terms">Other terms</a>
		</body></html>`,
		"/legal/terms": `<html><body><nav>Menu</nav><main><h1>Terms</h1><p>You agree to everything.</p></main><footer>Footer</footer></body></html>`,
		"/privacy-policy": `<html><body><h1>Privacy</h1><p>` + strings.Repeat("data ", 20) + `</p>
			<svg><text>icon</text></svg></body></html>`,
		"/cookie-policy": `<html><body><p>Cookies are used.</p></body></html>`,
	})
	c := newTestCrawler(t, cfg, site)
	c.classifier = fakeClassifier{dynamic: false}

	bundle, err := c.GetTosData(context.Background(), "https://shop.test")
	require.NoError(t, err)

	assert.Equal(t, "https://shop.test", bundle.BaseURL)
	assert.Equal(t, []string{"legal-terms", "privacy-policy", "cookie-policy"}, bundle.PageKeys())
	assert.Equal(t, "https://shop.test/privacy-policy", bundle.Pages[1].URL)

	assert.Equal(t, "Terms You agree to everything.", bundle.Pages[0].Text)
	assert.Len(t, []rune(bundle.Pages[1].Text), 40)
	assert.NotContains(t, bundle.Pages[1].Text, "icon")

	assert.False(t, site.requested("shop.test/about"))
	assert.False(t, site.requested("shop.test/policies/returns"), "legal pages are capped at MaxTosPages")
	assert.False(t, site.requested("elsewhere.test/terms"))
}

func TestGetTosData_GuessesLegalPaths(t *testing.T) {
	site := newTestSite(map[string]string{
		"/":                 `<html><body><p>Minimal home</p><a href="/blog">Blog</a></body></html>`,
		"/terms-of-service": `<html><body><main>Service terms</main></body></html>`,
		"/privacy":          `<html><body><main>Privacy notice</main></body></html>`,
	})
	c := newTestCrawler(t, testConfig(), site)
	c.classifier = fakeClassifier{dynamic: false}

	bundle, err := c.GetTosData(context.Background(), "https://guess.test/")
	require.NoError(t, err)

	// The first three guesses are tried; /terms and /terms-of-use do not exist.
	assert.True(t, site.requested("guess.test/terms"))
	assert.True(t, site.requested("guess.test/terms-of-use"))
	assert.False(t, site.requested("guess.test/privacy"))
	assert.Equal(t, []string{"terms-of-service"}, bundle.PageKeys())
	assert.Equal(t, "Service terms", bundle.Pages[0].Text)
}

func TestGetTosData_EmptyWhenNoLegalPagesExist(t *testing.T) {
	site := newTestSite(map[string]string{
		"/": `<html><body><p>Nothing legal here</p></body></html>`,
	})
	c := newTestCrawler(t, testConfig(), site)
	c.classifier = fakeClassifier{dynamic: false}

	bundle, err := c.GetTosData(context.Background(), "https://bare.test")
	require.NoError(t, err)
	assert.NotNil(t, bundle.Pages)
	assert.Empty(t, bundle.Pages)
	assert.Zero(t, bundle.TotalChars())
}

func TestGetTosData_FallsBackToOtherStrategy(t *testing.T) {
	site := newTestSite(nil)
	site.status["/"] = http.StatusInternalServerError
	c := newTestCrawler(t, testConfig(), site)
	c.classifier = fakeClassifier{dynamic: false}

	fake := &fakeRenderer{
		homeResult: &homePage{Text: "Rendered", Hrefs: []string{"/terms", "https://spa.test/privacy"}},
		pages: map[string]string{
			"https://spa.test/terms":   "Rendered terms",
			"https://spa.test/privacy": "Rendered privacy",
		},
	}
	useRenderer(c, StrategyDynamic, fake)

	bundle, err := c.GetTosData(context.Background(), "https://spa.test")
	require.NoError(t, err)
	assert.Equal(t, []string{"terms", "privacy"}, bundle.PageKeys())
	assert.Equal(t, "Rendered terms", bundle.Pages[0].Text)
	for _, m := range fake.modes {
		assert.Equal(t, mainText, m)
	}
	assert.Equal(t, 1, fake.closeCount())
}

func TestGetTosData_FallbackRunsOnce(t *testing.T) {
	site := newTestSite(nil)
	site.status["/"] = http.StatusInternalServerError
	c := newTestCrawler(t, testConfig(), site)
	c.classifier = fakeClassifier{dynamic: true}

	fake := &fakeRenderer{homeErr: errNavigation}
	useRenderer(c, StrategyDynamic, fake)

	_, err := c.GetTosData(context.Background(), "https://broken.test")
	require.Error(t, err)

	var failure *FetchFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, []string{"https://broken.test"}, fake.visits)
	assert.True(t, site.requested("broken.test/"), "static strategy runs as the fallback")
}

func TestGetTosData_NoFallbackWhenDisallowed(t *testing.T) {
	site := newTestSite(map[string]string{
		"/robots.txt": "User-agent: *\nDisallow: /\n",
	})
	c := newTestCrawler(t, testConfig(), site)
	c.classifier = fakeClassifier{dynamic: false}

	fake := &fakeRenderer{homeResult: &homePage{}}
	useRenderer(c, StrategyDynamic, fake)

	_, err := c.GetTosData(context.Background(), "https://closed.test")
	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Empty(t, fake.visits)
	assert.Zero(t, fake.closeCount())
}

func TestGuessLegalURLs(t *testing.T) {
	urls := GuessLegalURLs("https://example.com/")
	require.Len(t, urls, len(LegalPathGuesses))
	assert.Equal(t, "https://example.com/terms", urls[0])
	assert.Equal(t, "https://example.com/cookie-policy", urls[len(urls)-1])
	for _, u := range urls {
		assert.True(t, strings.HasPrefix(u, "https://example.com/"))
		assert.NotContains(t, strings.TrimPrefix(u, "https://"), "//")
	}
}
