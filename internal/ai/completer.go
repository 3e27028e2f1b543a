// Package ai wraps the language-model provider behind the advisor operations used by
// matching, document analysis and deal guidance.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/idtoken"
)

// Request is one chat completion exchange.
type Request struct {
	System string
	Prompt string
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Completer is the opaque text-completion capability.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// OpenAIConfig configures the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Audience enables Google ID-token auth for an IAM-fronted gateway at BaseURL.
	Audience   string
	HTTPClient *http.Client
}

// OpenAICompleter talks to an OpenAI-compatible chat completions endpoint.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter builds a completer. With an audience and no explicit HTTP client it
// authenticates with an ID token. When no token can be minted it falls back to the API
// key, or fails if there is none.
func NewOpenAICompleter(ctx context.Context, cfg OpenAIConfig) (*OpenAICompleter, error) {
	if cfg.APIKey == "" && cfg.Audience == "" {
		return nil, errors.New("openai api key or gateway audience is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.GPT4o
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil && cfg.Audience != "" {
		idc, err := idtoken.NewClient(ctx, cfg.Audience)
		switch {
		case err == nil:
			httpClient = idc
		case cfg.APIKey == "":
			return nil, fmt.Errorf("build gateway id token client: %w", err)
		}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	clientCfg.HTTPClient = httpClient

	return &OpenAICompleter{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

// Complete sends a system + user message pair and returns the first choice's content.
func (c *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	chat := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.JSON {
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
