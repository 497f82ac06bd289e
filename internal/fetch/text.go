package fetch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PageNoiseSelector lists elements that never carry readable page text.
const PageNoiseSelector = "script, style, noscript"

// LegalNoiseSelector additionally drops inline SVG, which legal pages use for icons.
const LegalNoiseSelector = "script, style, noscript, svg"

// inlineElements do not break words when their text is joined.
var inlineElements = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Bdi: true, atom.Bdo: true,
	atom.Cite: true, atom.Code: true, atom.Data: true, atom.Dfn: true, atom.Em: true,
	atom.Font: true, atom.I: true, atom.Kbd: true, atom.Label: true, atom.Mark: true,
	atom.Q: true, atom.S: true, atom.Samp: true, atom.Small: true, atom.Span: true,
	atom.Strong: true, atom.Sub: true, atom.Sup: true, atom.Time: true, atom.U: true,
	atom.Var: true,
}

// ParseHTML parses an HTML document.
func ParseHTML(content string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// StripNoise removes every element matching selector from doc in place.
func StripNoise(doc *goquery.Document, selector string) {
	if selector == "" {
		return
	}
	doc.Find(selector).Remove()
}

// BodyText returns the whitespace-collapsed visible text of the body,
// or of the whole document when there is no body.
func BodyText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		return VisibleText(doc.Selection)
	}
	return VisibleText(body.First())
}

// MainText prefers the first <main> element and falls back to BodyText.
func MainText(doc *goquery.Document) string {
	if main := doc.Find("main"); main.Length() > 0 {
		return VisibleText(main.First())
	}
	return BodyText(doc)
}

// VisibleText walks the selection's nodes and joins their text, separating
// block-level elements with a space, then collapses whitespace.
func VisibleText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		writeText(&sb, n)
	}
	return CollapseWhitespace(sb.String())
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if n.DataAtom == atom.Br {
			sb.WriteByte(' ')
			return
		}
	}

	block := n.Type == html.ElementNode && !inlineElements[n.DataAtom]
	if block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if block {
		sb.WriteByte(' ')
	}
}

// CompactText concatenates every trimmed text node under sel, ignoring
// script and style content. It is a measure of how much text a page
// carries, not a readable rendition.
func CompactText(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			return
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Template) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return sb.String()
}

// CollapseWhitespace replaces every run of whitespace with a single space
// and trims the ends.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate returns at most maxChars characters of text. It never splits a
// multi-byte character. A negative maxChars is treated as zero.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(text) <= maxChars {
		return text
	}
	count := 0
	for i := range text {
		if count == maxChars {
			return text[:i]
		}
		count++
	}
	return text
}

// CharCount returns the number of characters (runes) in text.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}
