package extractor

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Compiled once; cascadia.Selector satisfies goquery.Matcher.
var (
	metaMatcher  = cascadia.MustCompile("meta")
	titleMatcher = cascadia.MustCompile("title")
	linkMatcher  = cascadia.MustCompile("link[rel]")
)

// page is the indexed view of one parsed document that the fallback rules
// read from. Each index keeps the first element seen for a key, so later
// duplicates never override earlier ones.
type page struct {
	url string

	// metaProperty and metaName map a meta key to the content attribute of
	// the first <meta property=key> / <meta name=key>.
	metaProperty map[string]string
	metaName     map[string]string

	// title is the text of the first <title>.
	title string

	// linkHref maps a lower-cased rel value to the href of the first <link>
	// carrying it. HTML attribute values for rel are case-insensitive, so
	// rel="Shortcut Icon" indexes as "shortcut icon".
	linkHref map[string]string
}

// parsePage indexes rawHTML. A document that cannot be read yields an empty
// page, which resolves every field to its default.
func parsePage(rawHTML, pageURL string) *page {
	p := &page{
		url:          pageURL,
		metaProperty: make(map[string]string),
		metaName:     make(map[string]string),
		linkHref:     make(map[string]string),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		slog.Warn("extractor: html parse failed", "url", pageURL, "error", err)
		return p
	}

	doc.FindMatcher(metaMatcher).Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if prop, ok := s.Attr("property"); ok {
			addFirst(p.metaProperty, prop, content)
		}
		if name, ok := s.Attr("name"); ok {
			addFirst(p.metaName, name, content)
		}
	})

	p.title = strings.TrimSpace(doc.FindMatcher(titleMatcher).First().Text())

	doc.FindMatcher(linkMatcher).Each(func(_ int, s *goquery.Selection) {
		rel := strings.ToLower(strings.TrimSpace(s.AttrOr("rel", "")))
		addFirst(p.linkHref, rel, strings.TrimSpace(s.AttrOr("href", "")))
	})

	return p
}

func addFirst(m map[string]string, key, value string) {
	if _, seen := m[key]; !seen {
		m[key] = value
	}
}

// meta looks key up as a property first and as a name second.
func (p *page) meta(key string) string {
	if v := p.metaProperty[key]; v != "" {
		return v
	}
	return p.metaName[key]
}
