package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/linkpreview/fetcher"
	"github.com/use-agent/linkpreview/models"
	"github.com/use-agent/linkpreview/preview"
)

func main() {
	apiURL := os.Getenv("LINKPREVIEW_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	// Optional: servers started without API keys accept anonymous calls.
	apiKey := os.Getenv("LINKPREVIEW_API_KEY")

	s := newServer(apiURL, apiKey)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(apiURL, apiKey string) *server.MCPServer {
	s := server.NewMCPServer(
		"linkpreview",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	previewLinkTool := mcp.NewTool("preview_link",
		mcp.WithDescription("Fetch a web page and return the metadata social platforms use to build link previews: title, description, image, site name, favicon, Open Graph and Twitter Card fields."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to preview. A bare host such as example.com is treated as https://example.com"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'json' (default, the raw metadata) or 'markdown' (rendered Twitter, Facebook, LinkedIn, Discord and Slack cards)"),
			mcp.Enum("json", "markdown"),
		),
	)
	s.AddTool(previewLinkTool, handlePreviewLink(apiURL, apiKey))

	return s
}

func handlePreviewLink(apiURL, apiKey string) server.ToolHandlerFunc {
	// Upstream fetches are capped at 10s server-side.
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		format := request.GetString("format", "json")

		payload := models.PreviewRequest{URL: fetcher.NormalizeInput(url)}
		status, respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/preview", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("preview request failed: %v", err)), nil
		}

		if status != http.StatusOK {
			var errResp models.ErrorResponse
			if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error == "" {
				return mcp.NewToolResultError(fmt.Sprintf("preview failed: HTTP %d", status)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", errResp.Code, errResp.Error)), nil
		}

		var md models.LinkMetadata
		if err := json.Unmarshal(respBody, &md); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if format == "markdown" {
			out, err := preview.Markdown(&md)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to render markdown: %v", err)), nil
			}
			return mcp.NewToolResultText(out), nil
		}

		pretty, err := json.MarshalIndent(md, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format metadata: %v", err)), nil
		}
		return mcp.NewToolResultText(string(pretty)), nil
	}
}

// apiPost sends a POST request to the linkpreview API and returns the status
// code and response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
