package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EllipsisMarker is appended to excerpts that were truncated.
const EllipsisMarker = "..."

var (
	scriptStylePattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)\s*>`)
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
)

// blockElements end a run of text, so their contents never fuse with the next block.
const blockElements = "p, div, br, li, ul, ol, h1, h2, h3, h4, h5, h6, blockquote, pre, tr, td, th, table, section, article, header, footer, figure, figcaption, hr"

// Normalize converts raw feed markup into plain text.
// Script and style blocks are dropped with their contents, remaining tags are
// stripped, entities are decoded and whitespace runs collapse to one space.
// An empty input yields "".
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return fallbackNormalize(raw)
	}

	doc.Find("script, style").Remove()
	doc.Find(blockElements).AfterHtml(" ")

	return CollapseWhitespace(doc.Text())
}

// fallbackNormalize strips markup with regular expressions when the HTML
// tokenizer cannot read the input.
func fallbackNormalize(raw string) string {
	text := scriptStylePattern.ReplaceAllString(raw, "")
	text = tagPattern.ReplaceAllString(text, "")
	return CollapseWhitespace(html.UnescapeString(text))
}

// CollapseWhitespace replaces every whitespace run with a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Excerpt caps text at maxChars characters, appending EllipsisMarker when
// anything was cut. A non-positive maxChars disables truncation.
func Excerpt(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + EllipsisMarker
}
