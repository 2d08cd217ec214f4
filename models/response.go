package models

// Card is the view model of one platform's share preview.
type Card struct {
	// Platform is one of "twitter", "facebook", "linkedin", "discord", "slack".
	Platform string `json:"platform"`

	// Layout is "summary_large_image" or "summary" for Twitter and
	// "standard" everywhere else.
	Layout string `json:"layout"`

	Domain      string `json:"domain,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	AccentColor string `json:"accentColor,omitempty"`
}

// CardsResponse is the response for POST /api/v1/preview/cards.
type CardsResponse struct {
	Metadata *LinkMetadata `json:"metadata"`
	Cards    []Card        `json:"cards"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
