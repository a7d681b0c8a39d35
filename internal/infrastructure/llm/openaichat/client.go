// Package openaichat generates search strategies through an OpenAI-compatible
// chat completions endpoint. Calls go through the resilience executor; any
// failure surfaces as an error the strategy provider turns into fallbacks.
package openaichat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
	"github.com/kirillkom/lead-research-agent/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

// StrategyGenerator adapts the client to the strategy-generation port.
type StrategyGenerator struct {
	client *Client
}

func NewStrategyGenerator(client *Client) *StrategyGenerator {
	return &StrategyGenerator{client: client}
}

func (g *StrategyGenerator) GenerateStrategies(ctx context.Context, kind domain.ResearchKind, criteria domain.Criteria, rawQuery string) ([]domain.Strategy, error) {
	const op = "openaichat.GenerateStrategies"

	prompt, err := buildStrategyPrompt(kind, criteria, rawQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var content string
	execErr := g.client.executor.Execute(ctx, "chat_completion", func(ctx context.Context) error {
		var callErr error
		content, callErr = g.client.chatCompletion(ctx, prompt)
		return callErr
	}, classifyChatError)
	if execErr != nil {
		return nil, wrapTemporaryIfNeeded(op, execErr)
	}

	strategies, err := parseStrategies(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return strategies, nil
}

func (c *Client) chatCompletion(ctx context.Context, userPrompt string) (string, error) {
	request := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": 0.7,
		"max_tokens":  2000,
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, "/chat/completions", request, &response, "chat"); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// parseStrategies expects a JSON array of strategy objects, optionally inside
// a markdown code fence.
func parseStrategies(content string) ([]domain.Strategy, error) {
	var strategies []domain.Strategy
	if err := json.Unmarshal([]byte(extractJSONArray(content)), &strategies); err != nil {
		return nil, fmt.Errorf("parse strategies json: %w", err)
	}
	return strategies, nil
}

func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
