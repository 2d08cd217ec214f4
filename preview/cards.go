// Package preview derives per-platform share cards from extracted metadata
// and renders them as HTML or Markdown.
package preview

import (
	"net/url"
	"strings"

	"github.com/use-agent/linkpreview/models"
)

// Platforms in display order.
const (
	Twitter  = "twitter"
	Facebook = "facebook"
	LinkedIn = "linkedin"
	Discord  = "discord"
	Slack    = "slack"
)

// Layout values.
const (
	LayoutLarge    = "summary_large_image"
	LayoutSummary  = "summary"
	LayoutStandard = "standard"
)

// DefaultDiscordAccent is the embed border colour Discord uses when the page
// declares no theme-color.
const DefaultDiscordAccent = "#1e90ff"

// Cards builds all five platform cards, in display order.
func Cards(md *models.LinkMetadata) []models.Card {
	return []models.Card{
		TwitterCard(md),
		FacebookCard(md),
		LinkedInCard(md),
		DiscordCard(md),
		SlackCard(md),
	}
}

// TwitterCard prefers the twitter:* overrides and picks the large layout
// only for summary_large_image.
func TwitterCard(md *models.LinkMetadata) models.Card {
	layout := LayoutSummary
	if md.TwitterCard == LayoutLarge {
		layout = LayoutLarge
	}
	return models.Card{
		Platform:    Twitter,
		Layout:      layout,
		Domain:      displayDomain(md),
		Title:       firstNonEmpty(md.TwitterTitle, md.Title),
		Description: firstNonEmpty(md.TwitterDescription, md.Description),
		Image:       firstNonEmpty(md.TwitterImage, md.Image),
	}
}

// FacebookCard shows the domain in capitals above the title.
func FacebookCard(md *models.LinkMetadata) models.Card {
	return models.Card{
		Platform:    Facebook,
		Layout:      LayoutStandard,
		Domain:      strings.ToUpper(displayDomain(md)),
		Title:       md.Title,
		Description: md.Description,
		Image:       md.Image,
	}
}

// LinkedInCard has no description line.
func LinkedInCard(md *models.LinkMetadata) models.Card {
	return models.Card{
		Platform: LinkedIn,
		Layout:   LayoutStandard,
		Domain:   displayDomain(md),
		Title:    md.Title,
		Image:    md.Image,
	}
}

func DiscordCard(md *models.LinkMetadata) models.Card {
	return models.Card{
		Platform:    Discord,
		Layout:      LayoutStandard,
		SiteName:    md.SiteName,
		Title:       md.Title,
		Description: md.Description,
		Image:       md.Image,
		AccentColor: firstNonEmpty(md.ThemeColor, DefaultDiscordAccent),
	}
}

func SlackCard(md *models.LinkMetadata) models.Card {
	return models.Card{
		Platform:    Slack,
		Layout:      LayoutStandard,
		SiteName:    md.SiteName,
		Favicon:     md.Favicon,
		Title:       md.Title,
		Description: md.Description,
		Image:       md.Image,
	}
}

// displayDomain is the hostname of md.URL without a leading "www.", or the
// site name when the URL has no host.
func displayDomain(md *models.LinkMetadata) string {
	u, err := url.Parse(md.URL)
	if err != nil || u.Hostname() == "" {
		return md.SiteName
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
