// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/apk-official/PrepLink-Backend/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewChars is how much of a page's text is shown
	previewChars = 40
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// shorten cuts s to at most n runes, marking the cut with "...".
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// writePages lists up to maxItemsToShow pages with a short text preview.
func writePages(sb *strings.Builder, pages []types.PageDocument) {
	count := min(len(pages), maxItemsToShow)
	for i := 0; i < count; i++ {
		page := pages[i]
		sb.WriteString(fmt.Sprintf("• %s (%d chars)\n", page.Key, utf8.RuneCountInString(page.Text)))
		sb.WriteString(fmt.Sprintf("  %s\n", page.URL))
		if preview := strings.TrimSpace(page.Text); preview != "" {
			sb.WriteString(fmt.Sprintf("  \"%s\"\n", shorten(preview, previewChars)))
		}
	}
	if len(pages) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more pages\n", len(pages)-maxItemsToShow))
	}
}

// PrintScrapeBundle outputs a human-readable summary of a crawled site.
func (p *Printer) PrintScrapeBundle(bundle *types.ScrapeBundle) {
	if bundle == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Site:     %s\n", bundle.BaseURL))
	if bundle.CompanyNameGuess != "" {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", bundle.CompanyNameGuess))
	}
	if bundle.HomeTitle != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", bundle.HomeTitle))
	}
	sb.WriteString(fmt.Sprintf("Pages:    %d (%d chars)\n", len(bundle.Pages), bundle.TotalChars()))
	sb.WriteString("\n")
	writePages(&sb, bundle.Pages)

	p.printBox("SCRAPE BUNDLE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTosBundle outputs the legal pages found for a site.
func (p *Printer) PrintTosBundle(bundle *types.TosBundle) {
	if bundle == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Site:     %s\n", bundle.BaseURL))
	if len(bundle.Pages) == 0 {
		sb.WriteString("No legal pages found")
		p.printBox("LEGAL PAGES", sb.String())
		return
	}
	sb.WriteString(fmt.Sprintf("Pages:    %d (%d chars)\n\n", len(bundle.Pages), bundle.TotalChars()))
	writePages(&sb, bundle.Pages)

	p.printBox("LEGAL PAGES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintClassification outputs the rendering strategy chosen for a site.
func (p *Printer) PrintClassification(pageURL, strategy, reason string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Site:     %s\n", pageURL))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", strategy))
	if reason != "" {
		sb.WriteString(fmt.Sprintf("Reason:   %s", reason))
	}
	p.printBox("SITE CLASSIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDecision outputs the compliance decision for a site.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDecision(baseURL string, permitted bool) {
	status := "✅ CRAWL PERMITTED"
	if !permitted {
		status = "⛔ CRAWL NOT PERMITTED"
	}
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, status)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(baseURL, boxWidth-4))
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}
