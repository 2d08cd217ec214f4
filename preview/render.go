package preview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/use-agent/linkpreview/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"title": platformTitle,
	"cssColor": func(s string) template.CSS {
		return template.CSS(sanitizeColor(s))
	},
}).ParseFS(templateFS, "templates/*.html"))

// PageData is the input to the full preview page.
type PageData struct {
	// Input is what the user asked for; it is echoed back into the form.
	Input string

	Metadata *models.LinkMetadata
	Cards    []models.Card

	// Error is shown instead of cards when the preview failed.
	Error string
}

// RenderPage writes the HTML page listing every card.
func RenderPage(w io.Writer, data PageData) error {
	return templates.ExecuteTemplate(w, "page.html", data)
}

// RenderCard writes one card as a standalone HTML fragment.
func RenderCard(w io.Writer, card models.Card) error {
	return templates.ExecuteTemplate(w, "card.html", card)
}

// CardsHTML renders every card of md into one HTML fragment.
func CardsHTML(md *models.LinkMetadata) (string, error) {
	var buf bytes.Buffer
	for _, c := range Cards(md) {
		if err := RenderCard(&buf, c); err != nil {
			return "", fmt.Errorf("preview: render %s card: %w", c.Platform, err)
		}
	}
	return buf.String(), nil
}

func platformTitle(platform string) string {
	switch platform {
	case Twitter:
		return "Twitter / X"
	case Facebook:
		return "Facebook"
	case LinkedIn:
		return "LinkedIn"
	case Discord:
		return "Discord"
	case Slack:
		return "Slack"
	default:
		return platform
	}
}

// sanitizeColor only lets through values that are safe inside a CSS
// declaration: #hex colours and bare colour keywords.
func sanitizeColor(s string) string {
	if s == "" {
		return DefaultDiscordAccent
	}
	for i, r := range s {
		switch {
		case r == '#' && i == 0:
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return DefaultDiscordAccent
		}
	}
	return s
}
