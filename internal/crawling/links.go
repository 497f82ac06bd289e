package crawling

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/apk-official/PrepLink-Backend/internal/fetch"
)

// DefaultLinkLimit caps discovered links when the caller passes no limit.
const DefaultLinkLimit = 10

// MatchMode selects which part of a link keywords are matched against.
type MatchMode int

const (
	// MatchURL matches keywords anywhere in the lower-cased absolute URL.
	MatchURL MatchMode = iota
	// MatchPath matches keywords against the lower-cased path only.
	MatchPath
)

// FindInternalLinks extracts same-host links from htmlContent whose URL
// contains one of keywords. Links are absolute, fragment-free, unique, in
// first-seen order, and at most limit long (limit <= 0 means DefaultLinkLimit).
func FindInternalLinks(htmlContent, baseURL string, keywords []string, limit int) ([]string, error) {
	doc, err := fetch.ParseHTML(htmlContent)
	if err != nil {
		return nil, &CrawlError{Message: "failed to parse HTML", Cause: err}
	}
	return FilterLinks(anchorHrefs(doc), baseURL, keywords, MatchURL, limit)
}

// anchorHrefs returns the raw href of every anchor in document order.
func anchorHrefs(doc *goquery.Document) []string {
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// FilterLinks applies the internal-link rules to hrefs, which may be
// relative or absolute: resolve against baseURL, keep http(s) links on the
// base host that match a keyword, drop fragments and duplicates, cap at limit.
// The base page itself is never returned.
func FilterLinks(hrefs []string, baseURL string, keywords []string, mode MatchMode, limit int) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &InvalidInputError{Message: "failed to parse base URL", Cause: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &InvalidInputError{Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL)}
	}
	if limit <= 0 {
		limit = DefaultLinkLimit
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	self := strings.TrimSuffix(withoutFragment(base), "/")
	seen := make(map[string]bool)
	links := make([]string, 0)

	for _, href := range hrefs {
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			// Skip malformed URLs
			continue
		}
		abs := base.ResolveReference(ref)

		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		if !strings.EqualFold(abs.Host, base.Host) {
			continue
		}

		urlString := withoutFragment(abs)
		if strings.TrimSuffix(urlString, "/") == self {
			continue
		}

		subject := strings.ToLower(urlString)
		if mode == MatchPath {
			subject = strings.ToLower(abs.Path)
		}
		if !containsAny(subject, lowered) {
			continue
		}

		if !seen[urlString] {
			seen[urlString] = true
			links = append(links, urlString)
		}
	}

	if len(links) > limit {
		links = links[:limit]
	}
	return links, nil
}

func withoutFragment(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// PageKey derives a document key from a URL path: surrounding slashes
// trimmed, inner slashes replaced by "-". An empty path yields fallback.
func PageKey(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	key := strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", "-")
	if key == "" {
		return fallback
	}
	return key
}
