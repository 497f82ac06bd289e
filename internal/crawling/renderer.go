package crawling

import "context"

// textMode selects which part of a page becomes its document text.
type textMode int

const (
	// bodyText reads the whole visible body.
	bodyText textMode = iota
	// mainText prefers the first <main> element and falls back to the body.
	mainText
)

// homePage is what a renderer reads from the base page of a crawl.
type homePage struct {
	Title      string
	FaviconURL string
	Text       string
	// Hrefs are the page's anchor targets, unfiltered and possibly relative.
	Hrefs []string
}

// renderer is the swappable fetch-and-extract step of a crawl. The budget,
// robots and politeness flow around it lives in the Crawler.
type renderer interface {
	home(ctx context.Context, pageURL string) (*homePage, error)
	page(ctx context.Context, pageURL string, mode textMode) (string, error)
	Close() error
}

// rendererFactory acquires a renderer for one crawl.
type rendererFactory func(ctx context.Context) (renderer, error)
