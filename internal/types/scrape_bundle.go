// Package types provides type definitions for the documents produced by the scraping core.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "unicode/utf8"

// HomePageKey is the key of the first document in a ScrapeBundle.
const HomePageKey = "home"

// PageDocument is the extracted text of one fetched page.
type PageDocument struct {
	Key  string `json:"key"` // slug derived from the URL path
	URL  string `json:"url"`
	Text string `json:"text"`
}

// ScrapeBundle is the result of crawling one company site.
// Pages are in fetch order; the homepage is always first when present.
type ScrapeBundle struct {
	BaseURL          string         `json:"base_url"`
	HomeTitle        string         `json:"home_title,omitempty"`
	CompanyNameGuess string         `json:"company_name_guess,omitempty"`
	FaviconURL       string         `json:"favicon_url,omitempty"`
	Pages            []PageDocument `json:"pages"`
}

// TosBundle holds the legal pages (terms, privacy, cookies) of a site.
type TosBundle struct {
	BaseURL string         `json:"base_url"`
	Pages   []PageDocument `json:"pages"`
}

// TotalChars returns the number of characters across all page texts.
func (b *ScrapeBundle) TotalChars() int {
	return totalChars(b.Pages)
}

// PageKeys returns the page keys in bundle order.
func (b *ScrapeBundle) PageKeys() []string {
	return pageKeys(b.Pages)
}

// TotalChars returns the number of characters across all page texts.
func (b *TosBundle) TotalChars() int {
	return totalChars(b.Pages)
}

// PageKeys returns the page keys in bundle order.
func (b *TosBundle) PageKeys() []string {
	return pageKeys(b.Pages)
}

func totalChars(pages []PageDocument) int {
	n := 0
	for _, p := range pages {
		n += utf8.RuneCountInString(p.Text)
	}
	return n
}

func pageKeys(pages []PageDocument) []string {
	keys := make([]string, 0, len(pages))
	for _, p := range pages {
		keys = append(keys, p.Key)
	}
	return keys
}
