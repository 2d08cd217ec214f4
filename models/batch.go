package models

// BatchItem is the outcome of previewing one URL inside a batch.
type BatchItem struct {
	URL      string        `json:"url"`
	Status   int           `json:"status"`
	Metadata *LinkMetadata `json:"metadata,omitempty"`
	Error    string        `json:"error,omitempty"`
	Code     string        `json:"code,omitempty"`
}

// BatchResponse is the response for POST /api/v1/preview/batch.
// Results are in request order.
type BatchResponse struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []*BatchItem `json:"results"`
}
