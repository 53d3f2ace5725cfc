// pagepix-mcp exposes the pagepix HTTP API as MCP tools over stdio, so
// agent runtimes can pull image candidates and page content straight from
// a running pagepix instance.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// extractRequest mirrors the pagepix API request model.
type extractRequest struct {
	URL          string `json:"url"`
	Stealth      bool   `json:"stealth,omitempty"`
	ProbeSizes   bool   `json:"probe_sizes,omitempty"`
	MinSizeBytes int64  `json:"min_size_bytes,omitempty"`
	CSSSelector  string `json:"css_selector,omitempty"`
	Screenshot   bool   `json:"screenshot,omitempty"`
	Content      bool   `json:"content,omitempty"`
}

// imageRecord mirrors one image candidate in the API response.
type imageRecord struct {
	URL             string `json:"url"`
	AltText         string `json:"alt_text"`
	SourceKind      string `json:"source_kind"`
	FromCrossOrigin bool   `json:"from_cross_origin"`
	FromFrame       bool   `json:"from_frame"`
	SizeBytes       *int64 `json:"size_bytes"`
}

// extractResponse mirrors the pagepix API response model.
type extractResponse struct {
	Success  bool          `json:"success"`
	FinalURL string        `json:"final_url"`
	Images   []imageRecord `json:"images"`
	Content  *struct {
		Title     string `json:"title"`
		Headlines []struct {
			Text string `json:"text"`
			Tag  string `json:"tag"`
		} `json:"headlines"`
		Text string `json:"text"`
	} `json:"content"`
	ScreenshotPath string `json:"screenshot_path"`
	Stats          struct {
		Collected    int `json:"collected"`
		Deduplicated int `json:"deduplicated"`
	} `json:"stats"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("PAGEPIX_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PAGEPIX_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PAGEPIX_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"pagepix",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	getImagesTool := mcp.NewTool("get_images",
		mcp.WithDescription("Extract deduplicated image candidates from a web page. Renders the page in a headless browser, dismisses consent banners, triggers lazy loading and returns one best URL per logical image."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract images from"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Enable anti-bot-detection evasions before navigation"),
		),
		mcp.WithBoolean("probe_sizes",
			mcp.Description("Estimate each image's transfer size via HTTP HEAD requests"),
		),
		mcp.WithString("css_selector",
			mcp.Description("Restrict extraction to elements inside this CSS selector"),
		),
	)
	s.AddTool(getImagesTool, handleGetImages(apiURL, apiKey))

	getPageTool := mcp.NewTool("get_page",
		mcp.WithDescription("Extract images plus the textual content of a web page: title, h1-h3 headlines and the main article text."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Enable anti-bot-detection evasions before navigation"),
		),
	)
	s.AddTool(getPageTool, handleGetPage(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleGetImages(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 200 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := extractRequest{
			URL:         url,
			Stealth:     request.GetBool("stealth", false),
			ProbeSizes:  request.GetBool("probe_sizes", false),
			CSSSelector: request.GetString("css_selector", ""),
		}

		resp, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/images", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errorMessage(resp)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Found %d images on %s (from %d raw candidates)\n\n",
			len(resp.Images), resp.FinalURL, resp.Stats.Collected))
		for i, img := range resp.Images {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, img.URL))
			if img.AltText != "" {
				sb.WriteString(fmt.Sprintf("   alt: %s\n", img.AltText))
			}
			sb.WriteString(fmt.Sprintf("   source: %s", img.SourceKind))
			if img.FromCrossOrigin {
				sb.WriteString(", cross-origin")
			}
			if img.FromFrame {
				sb.WriteString(", from frame")
			}
			if img.SizeBytes != nil {
				sb.WriteString(fmt.Sprintf(", %d bytes", *img.SizeBytes))
			}
			sb.WriteString("\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleGetPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 200 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := extractRequest{
			URL:     url,
			Stealth: request.GetBool("stealth", false),
			Content: true,
		}

		resp, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/page", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errorMessage(resp)), nil
		}

		var sb strings.Builder
		if resp.Content != nil {
			sb.WriteString(fmt.Sprintf("Title: %s\nSource: %s\n\n", resp.Content.Title, resp.FinalURL))
			for _, h := range resp.Content.Headlines {
				sb.WriteString(fmt.Sprintf("[%s] %s\n", h.Tag, h.Text))
			}
			if resp.Content.Text != "" {
				sb.WriteString("\n" + resp.Content.Text + "\n")
			}
		}
		sb.WriteString(fmt.Sprintf("\n---\n%d images extracted\n", len(resp.Images)))
		for i, img := range resp.Images {
			if i >= 20 {
				sb.WriteString(fmt.Sprintf("... and %d more\n", len(resp.Images)-20))
				break
			}
			sb.WriteString(img.URL + "\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// apiPost sends a JSON POST to the pagepix API and decodes the response.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) (*extractResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out extractResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &out, nil
}

func errorMessage(resp *extractResponse) string {
	if resp.Error != nil {
		return fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
	}
	return "extraction failed"
}
