// Package extractor turns an HTML document into a models.LinkMetadata record
// by resolving each field through an ordered list of sources: Open Graph
// tags, Twitter Card tags, then plain HTML fallbacks.
package extractor

import "github.com/use-agent/linkpreview/models"

// source yields one candidate value for a field, or "" when the page does
// not provide it.
type source func(p *page) string

// meta tries each key in order, property attribute before name attribute.
func meta(keys ...string) source {
	return func(p *page) string {
		for _, k := range keys {
			if v := p.meta(k); v != "" {
				return v
			}
		}
		return ""
	}
}

// linkRel tries each rel value in order and yields the link's href. rels
// must be lower-case; page rel attributes are folded when indexed.
func linkRel(rels ...string) source {
	return func(p *page) string {
		for _, rel := range rels {
			if v := p.linkHref[rel]; v != "" {
				return v
			}
		}
		return ""
	}
}

// literal always yields v; it terminates chains that have a fixed default.
func literal(v string) source {
	return func(*page) string { return v }
}

func documentTitle(p *page) string { return p.title }

func hostname(p *page) string { return siteNameFromURL(p.url) }

// rule binds one record field to its fallback chain. Asset fields are made
// absolute after the chain resolves.
type rule struct {
	name  string
	field func(*models.LinkMetadata) *string
	chain []source
	asset bool
}

// rules is the complete resolution table. Order within a chain is priority.
var rules = []rule{
	{
		name:  "title",
		field: func(m *models.LinkMetadata) *string { return &m.Title },
		chain: []source{meta("og:title"), documentTitle},
	},
	{
		name:  "description",
		field: func(m *models.LinkMetadata) *string { return &m.Description },
		chain: []source{meta("og:description", "description")},
	},
	{
		name:  "image",
		field: func(m *models.LinkMetadata) *string { return &m.Image },
		chain: []source{meta("og:image", "og:image:url", "twitter:image", "twitter:image:src")},
		asset: true,
	},
	{
		name:  "siteName",
		field: func(m *models.LinkMetadata) *string { return &m.SiteName },
		chain: []source{meta("og:site_name"), hostname},
	},
	{
		name:  "type",
		field: func(m *models.LinkMetadata) *string { return &m.Type },
		chain: []source{meta("og:type"), literal("website")},
	},
	{
		name:  "twitterCard",
		field: func(m *models.LinkMetadata) *string { return &m.TwitterCard },
		chain: []source{meta("twitter:card"), literal("summary")},
	},
	{
		name:  "twitterSite",
		field: func(m *models.LinkMetadata) *string { return &m.TwitterSite },
		chain: []source{meta("twitter:site")},
	},
	{
		name:  "twitterCreator",
		field: func(m *models.LinkMetadata) *string { return &m.TwitterCreator },
		chain: []source{meta("twitter:creator")},
	},
	{
		name:  "twitterTitle",
		field: func(m *models.LinkMetadata) *string { return &m.TwitterTitle },
		chain: []source{meta("twitter:title", "og:title"), documentTitle},
	},
	{
		name:  "twitterDescription",
		field: func(m *models.LinkMetadata) *string { return &m.TwitterDescription },
		chain: []source{meta("twitter:description", "og:description", "description")},
	},
	{
		name:  "twitterImage",
		field: func(m *models.LinkMetadata) *string { return &m.TwitterImage },
		chain: []source{meta("twitter:image", "twitter:image:src", "og:image")},
		asset: true,
	},
	{
		name:  "author",
		field: func(m *models.LinkMetadata) *string { return &m.Author },
		chain: []source{meta("author", "article:author")},
	},
	{
		name:  "publishedTime",
		field: func(m *models.LinkMetadata) *string { return &m.PublishedTime },
		chain: []source{meta("article:published_time", "og:published_time")},
	},
	{
		name:  "favicon",
		field: func(m *models.LinkMetadata) *string { return &m.Favicon },
		chain: []source{linkRel("icon", "shortcut icon", "apple-touch-icon"), literal("/favicon.ico")},
		asset: true,
	},
	{
		name:  "themeColor",
		field: func(m *models.LinkMetadata) *string { return &m.ThemeColor },
		chain: []source{meta("theme-color")},
	},
}

// Extract resolves every field of a LinkMetadata from rawHTML. pageURL must
// be the final (post-redirect) URL of the document; relative asset links
// resolve against it.
//
// Extract never fails: a field no source can supply is "" (or its fixed
// default), and a malformed document yields a mostly-empty record.
func Extract(rawHTML, pageURL string) models.LinkMetadata {
	p := parsePage(rawHTML, pageURL)

	md := models.LinkMetadata{URL: pageURL}
	for _, r := range rules {
		v := resolve(p, r.chain)
		if r.asset {
			v = ResolveURL(pageURL, v)
		}
		*r.field(&md) = v
	}
	return md
}

// resolve returns the first non-empty value produced by chain.
func resolve(p *page, chain []source) string {
	for _, src := range chain {
		if v := src(p); v != "" {
			return v
		}
	}
	return ""
}
