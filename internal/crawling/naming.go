package crawling

import (
	"regexp"
	"strings"

	"github.com/apk-official/PrepLink-Backend/internal/fetch"
)

var (
	titleSeparators = regexp.MustCompile(`\s*[|\-•·:–—]\s*`)
	titleNoise      = regexp.MustCompile(`(?i)\b(home|official website)\b`)
)

// genericPageWords are title segments that name a page rather than a company.
var genericPageWords = map[string]bool{
	"home":             true,
	"about":            true,
	"about us":         true,
	"contact":          true,
	"contact us":       true,
	"login":            true,
	"sign in":          true,
	"terms":            true,
	"terms of service": true,
	"terms of use":     true,
	"privacy":          true,
	"privacy policy":   true,
}

// CompanyNameFromTitle guesses a company name from a page title: the first
// separator-delimited segment that is not a generic page word, with "home"
// and "official website" removed. Returns "" for an empty title.
//
//	"De'Lead | Home" -> "De'Lead"
//	"Acme - About"   -> "Acme"
func CompanyNameFromTitle(title string) string {
	t := fetch.CollapseWhitespace(title)
	if t == "" {
		return ""
	}

	var parts []string
	for _, p := range titleSeparators.Split(t, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	for _, p := range parts {
		if genericPageWords[strings.ToLower(p)] {
			continue
		}
		if cleaned := fetch.CollapseWhitespace(titleNoise.ReplaceAllString(p, "")); cleaned != "" {
			return cleaned
		}
		return p
	}
	return t
}
