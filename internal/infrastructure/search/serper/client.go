// Package serper implements the web-search port against the Serper.dev
// Google search API. Search calls are deliberately single-shot: a failed
// strategy is dropped by the pipeline, and retrying here would stack on top
// of the per-run pacing.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

const defaultBaseURL = "https://google.serper.dev"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]domain.SearchHit, error) {
	const operation = "search"

	if pageSize <= 0 {
		pageSize = 10
	}
	body, err := json.Marshal(map[string]any{"q": query, "num": pageSize})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			return nil, fmt.Errorf("serper %s status: %s", operation, resp.Status)
		}
		return nil, fmt.Errorf("serper %s status: %s: %s", operation, resp.Status, msg)
	}

	var response struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}

	hits := make([]domain.SearchHit, 0, len(response.Organic))
	for _, item := range response.Organic {
		if item.Link == "" {
			continue
		}
		hits = append(hits, domain.SearchHit{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return hits, nil
}
