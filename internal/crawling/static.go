package crawling

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/apk-official/PrepLink-Backend/internal/fetch"
)

// staticRenderer reads pages with plain HTTP requests and HTML parsing.
type staticRenderer struct {
	opts *fetch.Options
}

func newStaticRenderer(opts *fetch.Options) *staticRenderer {
	return &staticRenderer{opts: opts}
}

func (r *staticRenderer) home(ctx context.Context, pageURL string) (*homePage, error) {
	doc, err := r.load(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	home := &homePage{
		Title:      fetch.Title(doc),
		FaviconURL: fetch.FaviconURL(doc, pageURL),
		Hrefs:      anchorHrefs(doc),
	}
	fetch.StripNoise(doc, fetch.PageNoiseSelector)
	home.Text = fetch.BodyText(doc)
	return home, nil
}

func (r *staticRenderer) page(ctx context.Context, pageURL string, mode textMode) (string, error) {
	doc, err := r.load(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if mode == mainText {
		fetch.StripNoise(doc, fetch.LegalNoiseSelector)
		return fetch.MainText(doc), nil
	}
	fetch.StripNoise(doc, fetch.PageNoiseSelector)
	return fetch.BodyText(doc), nil
}

func (r *staticRenderer) Close() error {
	return nil
}

func (r *staticRenderer) load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	result, err := fetch.URL(ctx, pageURL, r.opts)
	if err != nil {
		return nil, err
	}
	if result.Block != fetch.BlockNone {
		return nil, &fetch.Error{URL: pageURL, Message: fmt.Sprintf("blocked by %s challenge page", result.Block), StatusCode: result.StatusCode}
	}
	return fetch.ParseHTML(result.HTML)
}
