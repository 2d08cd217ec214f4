package models

// PreviewRequest is the payload for POST /api/v1/preview.
//
// URL is validated by the fetcher rather than by binding tags so that
// callers get the classified INVALID_URL / UNSUPPORTED_SCHEME messages.
type PreviewRequest struct {
	URL string `json:"url"`
}

// BatchRequest is the payload for POST /api/v1/preview/batch.
type BatchRequest struct {
	// URLs are previewed independently. Required, 1..Batch.MaxURLs entries.
	URLs []string `json:"urls" binding:"required,min=1"`

	// WebhookURL, if set, receives a batch.completed event with the response.
	WebhookURL string `json:"webhook_url,omitempty"`
}
