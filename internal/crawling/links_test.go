package crawling

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindInternalLinks_ExampleHomepage(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>
				<a href="/about-us">About us</a>
				<a href="/careers">Careers</a>
				<a href="https://other.com/about">Partner</a>
			</nav>
		</body>
	</html>`

	links, err := FindInternalLinks(html, "https://example.com", RelevantKeywords, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/about-us",
		"https://example.com/careers",
	}, links)
}

func TestFindInternalLinks_SameHostOnly(t *testing.T) {
	html := `
	<a href="https://example.com/team">Team</a>
	<a href="https://blog.example.com/news">Blog</a>
	<a href="https://example.com:8443/jobs">Jobs on another port</a>
	<a href="//cdn.other.com/about">CDN</a>
	<a href="http://EXAMPLE.com/contact">Contact</a>`

	links, err := FindInternalLinks(html, "https://example.com/", RelevantKeywords, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/team",
		"http://EXAMPLE.com/contact",
	}, links)

	for _, l := range links {
		u, err := url.Parse(l)
		require.NoError(t, err)
		assert.True(t, strings.EqualFold("example.com", u.Host))
	}
}

func TestFindInternalLinks_DeduplicatesInOrder(t *testing.T) {
	html := `
	<a href="/careers">Careers</a>
	<a href="/about">About</a>
	<a href="/careers#open-roles">Open roles</a>
	<a href="https://example.com/about">About again</a>`

	links, err := FindInternalLinks(html, "https://example.com", RelevantKeywords, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/careers",
		"https://example.com/about",
	}, links)
}

func TestFindInternalLinks_SkipsNonHTTPAndSelf(t *testing.T) {
	html := `
	<a href="mailto:careers@example.com">Mail</a>
	<a href="javascript:void(0)">JS about</a>
	<a href="tel:+100">Call</a>
	<a href="#about">Anchor</a>
	<a href="">Empty</a>
	<a href="/">Home</a>
	<a href="/about">About</a>`

	links, err := FindInternalLinks(html, "https://about.example.com", []string{"about"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://about.example.com/about"}, links)
}

func TestFindInternalLinks_KeywordMatchIsCaseInsensitive(t *testing.T) {
	html := `<a href="/Company/Leadership">Leaders</a><a href="/products">Products</a>`

	links, err := FindInternalLinks(html, "https://example.com", RelevantKeywords, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/Company/Leadership"}, links)
}

func TestFindInternalLinks_LimitAppliedAfterDedup(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, `<a href="/news/%d">n</a><a href="/news/%d">dup</a>`, i, i)
	}

	links, err := FindInternalLinks(sb.String(), "https://example.com", RelevantKeywords, 5)
	require.NoError(t, err)
	require.Len(t, links, 5)
	assert.Equal(t, "https://example.com/news/4", links[4])

	links, err = FindInternalLinks(sb.String(), "https://example.com", RelevantKeywords, 0)
	require.NoError(t, err)
	assert.Len(t, links, DefaultLinkLimit)
}

func TestFindInternalLinks_InvalidBaseURL(t *testing.T) {
	_, err := FindInternalLinks(`<a href="/about">About</a>`, "example.com", RelevantKeywords, 10)
	require.Error(t, err)

	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestFilterLinks_MatchPathIgnoresHost(t *testing.T) {
	hrefs := []string{
		"https://careers-portal.example/about",
		"https://careers-portal.example/products",
	}

	byURL, err := FilterLinks(hrefs, "https://careers-portal.example", []string{"careers"}, MatchURL, 10)
	require.NoError(t, err)
	assert.Len(t, byURL, 2)

	byPath, err := FilterLinks(hrefs, "https://careers-portal.example", []string{"careers", "about"}, MatchPath, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://careers-portal.example/about"}, byPath)
}

func TestFilterLinks_LegalKeywords(t *testing.T) {
	hrefs := []string{"/privacy-policy", "/about", "/legal/terms", "/cookies"}

	links, err := FilterLinks(hrefs, "https://example.com", LegalKeywords, MatchURL, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/privacy-policy",
		"https://example.com/legal/terms",
		"https://example.com/cookies",
	}, links)
}

func TestKeywordSetsAreDisjoint(t *testing.T) {
	legal := make(map[string]bool)
	for _, k := range LegalKeywords {
		legal[k] = true
	}
	for _, k := range RelevantKeywords {
		assert.False(t, legal[k], "keyword %q is in both sets", k)
	}
}

func TestPageKey(t *testing.T) {
	tests := []struct {
		url      string
		fallback string
		want     string
	}{
		{"https://example.com/about-us", "page", "about-us"},
		{"https://example.com/about-us/", "page", "about-us"},
		{"https://example.com/company/team/leaders", "page", "company-team-leaders"},
		{"https://example.com", "page", "page"},
		{"https://example.com/", "legal", "legal"},
		{"https://example.com/privacy?lang=en", "legal", "privacy"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, PageKey(tt.url, tt.fallback))
		})
	}
}
