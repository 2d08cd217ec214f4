package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/linkpreview/models"
)

func fakeAPI(t *testing.T, gotKey *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotKey != nil {
			*gotKey = r.Header.Get("X-API-Key")
		}

		var req models.PreviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if req.URL == "https://down.example" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{
				Error: "Failed to fetch URL: 503 Service Unavailable",
				Code:  models.ErrCodeFetchFailed,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(models.LinkMetadata{
			URL:      req.URL,
			Title:    "Tool Title",
			SiteName: "example.com",
			Type:     "website",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = "preview_link"
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func TestPreviewLink_JSON(t *testing.T) {
	var key string
	api := fakeAPI(t, &key)

	res := call(t, handlePreviewLink(api.URL, "secret"), map[string]any{"url": "example.com"})
	require.False(t, res.IsError)

	var md models.LinkMetadata
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &md))
	assert.Equal(t, "https://example.com", md.URL)
	assert.Equal(t, "Tool Title", md.Title)
	assert.Equal(t, "secret", key)
}

func TestPreviewLink_Markdown(t *testing.T) {
	api := fakeAPI(t, nil)

	res := call(t, handlePreviewLink(api.URL, ""), map[string]any{"url": "https://example.com", "format": "markdown"})
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), "Tool Title")
	assert.Contains(t, text(t, res), "## Discord")
}

func TestPreviewLink_APIError(t *testing.T) {
	api := fakeAPI(t, nil)

	res := call(t, handlePreviewLink(api.URL, ""), map[string]any{"url": "https://down.example"})
	assert.True(t, res.IsError)
	assert.Equal(t, "[FETCH_FAILED] Failed to fetch URL: 503 Service Unavailable", text(t, res))
}

func TestPreviewLink_MissingURL(t *testing.T) {
	res := call(t, handlePreviewLink("http://127.0.0.1:0", ""), map[string]any{})
	assert.True(t, res.IsError)
	assert.Equal(t, "url is required", text(t, res))
}

func TestPreviewLink_Unreachable(t *testing.T) {
	res := call(t, handlePreviewLink("http://127.0.0.1:1", ""), map[string]any{"url": "https://example.com"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "preview request failed")
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, newServer("http://127.0.0.1:8080", ""))
}
