// Package unfurl expands a bare URL into its preview metadata by running
// the fetch → extract pipeline once.
package unfurl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/linkpreview/extractor"
	"github.com/use-agent/linkpreview/fetcher"
	"github.com/use-agent/linkpreview/models"
)

// Fetcher is the subset of *fetcher.Fetcher the service needs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Result, error)
}

// Service is safe for concurrent use; it keeps no state between calls.
type Service struct {
	fetcher Fetcher
}

// New creates a Service backed by f.
func New(f Fetcher) *Service {
	return &Service{fetcher: f}
}

// Preview fetches rawURL and extracts its metadata. Errors are always
// *models.PreviewError.
func (s *Service) Preview(ctx context.Context, rawURL string) (*models.LinkMetadata, error) {
	start := time.Now()

	res, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		pe := asPreviewError(err)
		slog.Info("preview failed",
			"url", rawURL,
			"code", pe.Code,
			"error", err,
			"ms", time.Since(start).Milliseconds(),
		)
		return nil, pe
	}

	md := extractor.Extract(res.HTML, res.FinalURL)
	slog.Info("preview extracted",
		"url", rawURL,
		"final_url", res.FinalURL,
		"status", res.StatusCode,
		"content_type", res.ContentType,
		"has_image", md.Image != "",
		"ms", time.Since(start).Milliseconds(),
	)
	return &md, nil
}

func asPreviewError(err error) *models.PreviewError {
	var pe *models.PreviewError
	if errors.As(err, &pe) {
		return pe
	}
	return models.NewPreviewError(models.ErrCodeUnexpected, err.Error(), err)
}
