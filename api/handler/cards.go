package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/linkpreview/fetcher"
	"github.com/use-agent/linkpreview/preview"
	"github.com/use-agent/linkpreview/unfurl"
)

// CardsPage returns a handler for GET /cards?url=...
//
// Without a url it renders the empty form. Input is normalised the way a
// person types it, so "example.com" is previewed as https://example.com.
func CardsPage(svc *unfurl.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		input := fetcher.NormalizeInput(c.Query("url"))
		data := preview.PageData{Input: input}
		status := http.StatusOK

		if input != "" {
			md, err := svc.Preview(c.Request.Context(), input)
			if err != nil {
				pe := toPreviewError(err)
				data.Error = pe.Message
				status = pe.HTTPStatus()
			} else {
				data.Metadata = md
				data.Cards = preview.Cards(md)
			}
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(status)
		if err := preview.RenderPage(c.Writer, data); err != nil {
			slog.Error("render cards page", "error", err)
		}
	}
}
