package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/linkpreview/models"
)

func sample() *models.LinkMetadata {
	return &models.LinkMetadata{
		URL:                "https://www.example.com/post",
		Title:              "Generic Title",
		Description:        "Generic description",
		Image:              "https://www.example.com/og.png",
		SiteName:           "Example",
		Favicon:            "https://www.example.com/favicon.ico",
		Type:               "article",
		TwitterCard:        "summary_large_image",
		TwitterTitle:       "Tweet Title",
		TwitterDescription: "",
		TwitterImage:       "https://cdn.example.com/tw.png",
		ThemeColor:         "#ff6600",
	}
}

func TestCards_Order(t *testing.T) {
	cards := Cards(sample())
	require.Len(t, cards, 5)

	var platforms []string
	for _, c := range cards {
		platforms = append(platforms, c.Platform)
	}
	assert.Equal(t, []string{Twitter, Facebook, LinkedIn, Discord, Slack}, platforms)
}

func TestTwitterCard(t *testing.T) {
	md := sample()
	c := TwitterCard(md)

	assert.Equal(t, LayoutLarge, c.Layout)
	assert.Equal(t, "example.com", c.Domain)
	assert.Equal(t, "Tweet Title", c.Title)
	assert.Equal(t, "Generic description", c.Description, "falls back when twitter:description is empty")
	assert.Equal(t, "https://cdn.example.com/tw.png", c.Image)

	md.TwitterCard = "summary"
	assert.Equal(t, LayoutSummary, TwitterCard(md).Layout)

	md.TwitterCard = "player"
	assert.Equal(t, LayoutSummary, TwitterCard(md).Layout)
}

func TestFacebookCard(t *testing.T) {
	c := FacebookCard(sample())
	assert.Equal(t, "EXAMPLE.COM", c.Domain)
	assert.Equal(t, "Generic Title", c.Title)
	assert.Equal(t, "https://www.example.com/og.png", c.Image)
}

func TestLinkedInCard(t *testing.T) {
	c := LinkedInCard(sample())
	assert.Equal(t, "example.com", c.Domain)
	assert.Empty(t, c.Description)
}

func TestDiscordCard(t *testing.T) {
	md := sample()
	assert.Equal(t, "#ff6600", DiscordCard(md).AccentColor)
	assert.Equal(t, "Example", DiscordCard(md).SiteName)

	md.ThemeColor = ""
	assert.Equal(t, DefaultDiscordAccent, DiscordCard(md).AccentColor)
}

func TestSlackCard(t *testing.T) {
	c := SlackCard(sample())
	assert.Equal(t, "https://www.example.com/favicon.ico", c.Favicon)
	assert.Equal(t, "Example", c.SiteName)
}

func TestDisplayDomain_FallsBackToSiteName(t *testing.T) {
	md := &models.LinkMetadata{URL: "", SiteName: "Somewhere"}
	assert.Equal(t, "Somewhere", displayDomain(md))
	assert.Equal(t, "SOMEWHERE", FacebookCard(md).Domain)
}

func TestRenderPage(t *testing.T) {
	md := sample()
	md.Title = `<script>alert("x")</script>`

	var buf bytes.Buffer
	err := RenderPage(&buf, PageData{Input: md.URL, Metadata: md, Cards: Cards(md)})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `class="card card-twitter"`)
	assert.Contains(t, out, `class="card card-slack"`)
	assert.Contains(t, out, "border-left: 4px solid #ff6600")
	assert.NotContains(t, out, `<script>alert`)
	assert.Equal(t, 5, strings.Count(out, "<section"))
}

func TestRenderPage_Error(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, PageData{Input: "ftp://x", Error: models.MsgUnsupportedScheme}))
	assert.Contains(t, buf.String(), models.MsgUnsupportedScheme)
	assert.NotContains(t, buf.String(), "<section")
}

func TestSanitizeColor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"#1a2B3c", "#1a2B3c"},
		{"rebeccapurple", "rebeccapurple"},
		{"", DefaultDiscordAccent},
		{"red; background: url(x)", DefaultDiscordAccent},
		{"rgb(0,0,0)", DefaultDiscordAccent},
		{"#fff#", DefaultDiscordAccent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeColor(tt.in), "input %q", tt.in)
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown(sample())
	require.NoError(t, err)

	assert.Contains(t, out, "## Twitter / X")
	assert.Contains(t, out, "### Tweet Title")
	assert.Contains(t, out, "EXAMPLE.COM")
	assert.Contains(t, out, "![Generic Title](https://www.example.com/og.png)")
}
