package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/linkpreview/models"
	"github.com/use-agent/linkpreview/preview"
	"github.com/use-agent/linkpreview/unfurl"
)

// Preview returns a handler for POST /api/v1/preview (and the legacy
// POST /api/preview).
//
// Success is the flat metadata record. Failures are {"error", "code"} with
// 400 for input and upstream problems, 408 for timeouts and 500 otherwise.
func Preview(svc *unfurl.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		md, ok := runPreview(c, svc)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, md)
	}
}

// PreviewCards returns a handler for POST /api/v1/preview/cards.
// It responds with the metadata plus the derived per-platform cards.
func PreviewCards(svc *unfurl.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		md, ok := runPreview(c, svc)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, models.CardsResponse{
			Metadata: md,
			Cards:    preview.Cards(md),
		})
	}
}

// runPreview binds the request and runs the pipeline. On failure the error
// response has already been written and ok is false.
func runPreview(c *gin.Context, svc *unfurl.Service) (*models.LinkMetadata, bool) {
	var req models.PreviewRequest
	// An empty body is treated like a body without "url".
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, models.NewPreviewError(models.ErrCodeInvalidInput, "Invalid request body", err))
		return nil, false
	}

	md, err := svc.Preview(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return md, true
}

// respondError maps a PreviewError to the correct HTTP status code and
// writes the JSON error body.
func respondError(c *gin.Context, err error) {
	pe := toPreviewError(err)
	c.JSON(pe.HTTPStatus(), pe.ToResponse())
}

func toPreviewError(err error) *models.PreviewError {
	var pe *models.PreviewError
	if errors.As(err, &pe) {
		return pe
	}
	return models.NewPreviewError(models.ErrCodeUnexpected, err.Error(), err)
}
