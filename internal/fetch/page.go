package fetch

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// iconRelTokens are the <link rel> values that name a site icon.
var iconRelTokens = []string{
	"icon",
	"shortcut icon",
	"apple-touch-icon",
	"apple-touch-icon-precomposed",
}

// Title returns the trimmed text of the first <title> element.
func Title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// FaviconURL returns the absolute URL of the first icon <link> in doc,
// or <origin>/favicon.ico when the page declares none.
func FaviconURL(doc *goquery.Document, pageURL string) string {
	var href string
	doc.Find("link[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		rel = strings.ToLower(strings.Join(strings.Fields(rel), " "))
		if rel == "" {
			return true
		}
		for _, token := range iconRelTokens {
			if strings.Contains(rel, token) {
				href, _ = s.Attr("href")
				href = strings.TrimSpace(href)
				return href == ""
			}
		}
		return true
	})

	if href != "" {
		if resolved, err := ResolveURL(pageURL, href); err == nil {
			return resolved
		}
	}
	resolved, err := ResolveURL(pageURL, "/favicon.ico")
	if err != nil {
		return ""
	}
	return resolved
}

// ResolveURL resolves ref against base the way a browser resolves an href.
func ResolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
