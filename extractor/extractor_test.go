package extractor

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/linkpreview/models"
)

const fullPage = `<!doctype html>
<html>
<head>
  <title>Document Title</title>
  <meta property="og:title" content="OG Title">
  <meta property="og:description" content="OG Description">
  <meta name="description" content="Plain Description">
  <meta property="og:image" content="/images/og.png">
  <meta property="og:site_name" content="Example Site">
  <meta property="og:type" content="article">
  <meta name="twitter:card" content="summary_large_image">
  <meta name="twitter:site" content="@example">
  <meta name="twitter:creator" content="@author">
  <meta name="twitter:title" content="Twitter Title">
  <meta name="twitter:description" content="Twitter Description">
  <meta name="twitter:image" content="//cdn.example.com/tw.png">
  <meta name="author" content="Jane Doe">
  <meta property="article:published_time" content="2024-05-01T10:00:00Z">
  <meta name="theme-color" content="#ff6600">
  <link rel="icon" href="/static/icon.png">
</head>
<body><p>Hello</p></body>
</html>`

func TestExtract_FullPage(t *testing.T) {
	md := Extract(fullPage, "https://www.example.com/blog/post")

	assert.Equal(t, models.LinkMetadata{
		URL:                "https://www.example.com/blog/post",
		Title:              "OG Title",
		Description:        "OG Description",
		Image:              "https://www.example.com/images/og.png",
		SiteName:           "Example Site",
		Favicon:            "https://www.example.com/static/icon.png",
		Type:               "article",
		TwitterCard:        "summary_large_image",
		TwitterSite:        "@example",
		TwitterCreator:     "@author",
		TwitterTitle:       "Twitter Title",
		TwitterDescription: "Twitter Description",
		TwitterImage:       "https://cdn.example.com/tw.png",
		Author:             "Jane Doe",
		PublishedTime:      "2024-05-01T10:00:00Z",
		ThemeColor:         "#ff6600",
	}, md)
}

func TestExtract_EmptyDocumentDefaults(t *testing.T) {
	md := Extract("", "https://www.example.com/")

	assert.Equal(t, models.LinkMetadata{
		URL:         "https://www.example.com/",
		SiteName:    "example.com",
		Type:        "website",
		TwitterCard: "summary",
		Favicon:     "https://www.example.com/favicon.ico",
	}, md)
}

func TestExtract_MalformedDocument(t *testing.T) {
	md := Extract(`<html><head><meta property="og:title" content="Still Here"<title>x`, "https://example.com")

	// Whatever the tokenizer recovers, no field is ever missing.
	assert.Equal(t, "website", md.Type)
	assert.Equal(t, "example.com", md.SiteName)
	assert.Equal(t, "https://example.com/favicon.ico", md.Favicon)
}

func TestExtract_TitleFallback(t *testing.T) {
	t.Run("title tag only", func(t *testing.T) {
		md := Extract(`<html><head><title>Foo</title></head></html>`, "https://example.com")
		assert.Equal(t, "Foo", md.Title)
		assert.Equal(t, "Foo", md.TwitterTitle)
	})

	t.Run("og:title wins over title tag", func(t *testing.T) {
		md := Extract(`<title>Foo</title><meta property="og:title" content="Bar">`, "https://example.com")
		assert.Equal(t, "Bar", md.Title)
		assert.Equal(t, "Bar", md.TwitterTitle)
	})

	t.Run("twitter:title wins for twitterTitle only", func(t *testing.T) {
		md := Extract(`<title>Foo</title><meta property="og:title" content="Bar"><meta name="twitter:title" content="Baz">`, "https://example.com")
		assert.Equal(t, "Bar", md.Title)
		assert.Equal(t, "Baz", md.TwitterTitle)
	})

	t.Run("title text is trimmed and first title wins", func(t *testing.T) {
		md := Extract("<title>\n  Spaced  \n</title><body><svg><title>icon</title></svg></body>", "https://example.com")
		assert.Equal(t, "Spaced", md.Title)
	})

	t.Run("nothing at all", func(t *testing.T) {
		md := Extract(`<p>no head</p>`, "https://example.com")
		assert.Equal(t, "", md.Title)
		assert.Equal(t, "", md.TwitterTitle)
	})
}

func TestExtract_DescriptionFallback(t *testing.T) {
	md := Extract(`<meta name="description" content="Plain">`, "https://example.com")
	assert.Equal(t, "Plain", md.Description)
	assert.Equal(t, "Plain", md.TwitterDescription)

	md = Extract(`<meta name="description" content="Plain"><meta property="og:description" content="OG">`, "https://example.com")
	assert.Equal(t, "OG", md.Description)
	assert.Equal(t, "OG", md.TwitterDescription)
}

func TestExtract_ImageFallback(t *testing.T) {
	tests := []struct {
		name             string
		html             string
		wantImage        string
		wantTwitterImage string
	}{
		{
			name:             "og:image feeds both",
			html:             `<meta property="og:image" content="https://a.test/og.png">`,
			wantImage:        "https://a.test/og.png",
			wantTwitterImage: "https://a.test/og.png",
		},
		{
			name:             "og:image:url second",
			html:             `<meta property="og:image:url" content="https://a.test/url.png">`,
			wantImage:        "https://a.test/url.png",
			wantTwitterImage: "",
		},
		{
			name:             "twitter:image feeds both",
			html:             `<meta name="twitter:image" content="https://a.test/tw.png">`,
			wantImage:        "https://a.test/tw.png",
			wantTwitterImage: "https://a.test/tw.png",
		},
		{
			name:             "twitter:image:src last resort",
			html:             `<meta name="twitter:image:src" content="https://a.test/src.png">`,
			wantImage:        "https://a.test/src.png",
			wantTwitterImage: "https://a.test/src.png",
		},
		{
			name: "opposite priorities",
			html: `<meta property="og:image" content="https://a.test/og.png">
			       <meta name="twitter:image" content="https://a.test/tw.png">`,
			wantImage:        "https://a.test/og.png",
			wantTwitterImage: "https://a.test/tw.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := Extract(tt.html, "https://example.com")
			assert.Equal(t, tt.wantImage, md.Image)
			assert.Equal(t, tt.wantTwitterImage, md.TwitterImage)
		})
	}
}

func TestExtract_ProtocolRelativeImage(t *testing.T) {
	md := Extract(`<meta property="og:image" content="//cdn.example.com/x.png">`, "https://example.com")
	assert.Equal(t, "https://cdn.example.com/x.png", md.Image)
	assert.Equal(t, "https://cdn.example.com/x.png", md.TwitterImage)
}

func TestExtract_MetaAttributeAgnostic(t *testing.T) {
	t.Run("og key under name", func(t *testing.T) {
		md := Extract(`<meta name="og:title" content="Named">`, "https://example.com")
		assert.Equal(t, "Named", md.Title)
	})

	t.Run("twitter key under property", func(t *testing.T) {
		md := Extract(`<meta property="twitter:card" content="summary_large_image">`, "https://example.com")
		assert.Equal(t, "summary_large_image", md.TwitterCard)
	})

	t.Run("property tried before name", func(t *testing.T) {
		md := Extract(`<meta name="og:title" content="ByName"><meta property="og:title" content="ByProperty">`, "https://example.com")
		assert.Equal(t, "ByProperty", md.Title)
	})

	t.Run("empty property content falls through to name", func(t *testing.T) {
		md := Extract(`<meta property="og:title" content=""><meta name="og:title" content="ByName">`, "https://example.com")
		assert.Equal(t, "ByName", md.Title)
	})

	t.Run("first duplicate wins", func(t *testing.T) {
		md := Extract(`<meta property="og:title" content="First"><meta property="og:title" content="Second">`, "https://example.com")
		assert.Equal(t, "First", md.Title)
	})

	t.Run("whitespace-only content counts as empty", func(t *testing.T) {
		md := Extract(`<meta property="og:title" content="   "><title>Doc</title>`, "https://example.com")
		assert.Equal(t, "Doc", md.Title)
	})
}

func TestExtract_SiteName(t *testing.T) {
	tests := []struct {
		html, url, want string
	}{
		{"", "https://www.example.com", "example.com"},
		{"", "https://blog.example.com/x", "blog.example.com"},
		{"", "https://WWW.Example.COM:8443/", "example.com"},
		{"", "https://example.www.com/", "example.www.com"},
		{`<meta property="og:site_name" content="Example">`, "https://www.example.com", "Example"},
		{"", "not a url", "not a url"},
	}
	for _, tt := range tests {
		md := Extract(tt.html, tt.url)
		assert.Equal(t, tt.want, md.SiteName, "url %q", tt.url)
	}
}

func TestExtract_Favicon(t *testing.T) {
	tests := []struct {
		name, html, url, want string
	}{
		{
			name: "relative icon on nested path",
			html: `<link rel="icon" href="/favicon.ico">`,
			url:  "https://example.com/path/",
			want: "https://example.com/favicon.ico",
		},
		{
			name: "path-relative icon",
			html: `<link rel="icon" href="img/icon.svg">`,
			url:  "https://example.com/docs/page.html",
			want: "https://example.com/docs/img/icon.svg",
		},
		{
			name: "shortcut icon second",
			html: `<link rel="apple-touch-icon" href="/apple.png"><link rel="shortcut icon" href="/short.ico">`,
			url:  "https://example.com",
			want: "https://example.com/short.ico",
		},
		{
			name: "apple-touch-icon third",
			html: `<link rel="apple-touch-icon" href="/apple.png">`,
			url:  "https://example.com",
			want: "https://example.com/apple.png",
		},
		{
			name: "rel matched case-insensitively",
			html: `<link rel="Shortcut Icon" href="/legacy.ico">`,
			url:  "https://example.com/",
			want: "https://example.com/legacy.ico",
		},
		{
			name: "upper-case icon",
			html: `<link rel="ICON" href="/upper.png">`,
			url:  "https://example.com/",
			want: "https://example.com/upper.png",
		},
		{
			name: "padded rel",
			html: `<link rel=" icon " href="/padded.png">`,
			url:  "https://example.com/",
			want: "https://example.com/padded.png",
		},
		{
			name: "default favicon.ico",
			html: `<link rel="stylesheet" href="/site.css">`,
			url:  "https://example.com/a/b/c",
			want: "https://example.com/favicon.ico",
		},
		{
			name: "resolved against final URL host",
			html: ``,
			url:  "http://redirected.test:8080/landing",
			want: "http://redirected.test:8080/favicon.ico",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.html, tt.url).Favicon)
		})
	}
}

func TestExtract_AuthorAndPublished(t *testing.T) {
	md := Extract(`<meta property="article:author" content="A. Writer"><meta property="og:published_time" content="2020-01-01">`, "https://example.com")
	assert.Equal(t, "A. Writer", md.Author)
	assert.Equal(t, "2020-01-01", md.PublishedTime)
}

func TestExtract_AssetFieldsAreAbsolute(t *testing.T) {
	pages := []string{
		fullPage,
		`<meta property="og:image" content="relative.png"><link rel="icon" href="../up.ico">`,
		`<meta name="twitter:image" content="?v=2"><link rel="icon" href="#frag">`,
		``,
	}
	for _, html := range pages {
		md := Extract(html, "https://example.com/a/b/")
		for _, v := range []string{md.Image, md.TwitterImage, md.Favicon} {
			if v == "" {
				continue
			}
			assert.True(t, strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "http://"), "not absolute: %q", v)
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	a, err := json.Marshal(Extract(fullPage, "https://example.com/x"))
	require.NoError(t, err)
	b, err := json.Marshal(Extract(fullPage, "https://example.com/x"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExtract_AllFieldsAreStrings(t *testing.T) {
	raw, err := json.Marshal(Extract(`<title>x</title>`, "https://example.com"))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Len(t, fields, 16)
	for k, v := range fields {
		_, ok := v.(string)
		assert.True(t, ok, "field %s is %T", k, v)
	}
}

func TestRules_CoverEveryField(t *testing.T) {
	// Every string field except URL must be owned by exactly one rule.
	typ := reflect.TypeOf(models.LinkMetadata{})
	assert.Equal(t, typ.NumField()-1, len(rules))

	seen := make(map[string]bool)
	for _, r := range rules {
		assert.False(t, seen[r.name], "duplicate rule %s", r.name)
		seen[r.name] = true
		assert.NotEmpty(t, r.chain, "rule %s has no sources", r.name)
	}

	var md models.LinkMetadata
	targets := make(map[*string]string)
	for _, r := range rules {
		ptr := r.field(&md)
		_, dup := targets[ptr]
		assert.False(t, dup, "rule %s writes a field already owned by %s", r.name, targets[ptr])
		targets[ptr] = r.name
	}
}
