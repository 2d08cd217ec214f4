package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/use-agent/linkpreview/config"
	"github.com/use-agent/linkpreview/fetcher"
	"github.com/use-agent/linkpreview/models"
	"github.com/use-agent/linkpreview/unfurl"
	"github.com/use-agent/linkpreview/webhook"
	"golang.org/x/sync/errgroup"
)

// PreviewBatch returns a handler for POST /api/v1/preview/batch.
//
// Every URL is previewed independently with at most cfg.Concurrency in
// flight. One URL failing never fails the batch: the response is always 200
// and each item carries its own status.
//
// When webhook_url is given the same response is also posted there as a
// batch.completed event after the handler returns.
func PreviewBatch(svc *unfurl.Service, cfg config.BatchConfig, notifier *webhook.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		// The rate limiter has already read the body; bind the cached copy.
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			respondError(c, models.NewPreviewError(models.ErrCodeInvalidInput, "urls must be a non-empty array", err))
			return
		}

		if cfg.MaxURLs > 0 && len(req.URLs) > cfg.MaxURLs {
			respondError(c, models.NewPreviewError(models.ErrCodeInvalidInput,
				fmt.Sprintf("maximum %d URLs per batch", cfg.MaxURLs), nil))
			return
		}

		if req.WebhookURL != "" {
			if _, err := fetcher.ValidateURL(req.WebhookURL); err != nil {
				respondError(c, models.NewPreviewError(models.ErrCodeInvalidInput,
					"webhook_url must be an absolute http(s) URL", err))
				return
			}
		}

		ctx := c.Request.Context()
		results := make([]*models.BatchItem, len(req.URLs))

		var g errgroup.Group
		if cfg.Concurrency > 0 {
			g.SetLimit(cfg.Concurrency)
		}
		for i, u := range req.URLs {
			g.Go(func() error {
				item := &models.BatchItem{URL: u, Status: http.StatusOK}
				md, err := svc.Preview(ctx, u)
				if err != nil {
					pe := toPreviewError(err)
					item.Status = pe.HTTPStatus()
					item.Error = pe.Message
					item.Code = pe.Code
				} else {
					item.Metadata = md
				}
				results[i] = item
				return nil
			})
		}
		_ = g.Wait()

		resp := models.BatchResponse{Total: len(results), Results: results}
		for _, r := range results {
			if r.Metadata != nil {
				resp.Succeeded++
			} else {
				resp.Failed++
			}
		}
		c.JSON(http.StatusOK, resp)

		if req.WebhookURL != "" && notifier != nil {
			notifier.DeliverAsync(req.WebhookURL, webhook.NewEvent(webhook.EventBatchCompleted, resp))
		}
	}
}
