package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// openAIRatePer1K is the flat per-1k-token cost estimate for reporting
var openAIRatePer1K = decimal.NewFromFloat(0.0006)

// OpenAIConfig holds settings for the OpenAI-compatible chat completions API
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // e.g. "https://api.openai.com/v1"
	Model   string
	Timeout time.Duration
}

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint
type OpenAIProvider struct {
	httpClient *http.Client
	config     OpenAIConfig
	logger     *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI-compatible provider
func NewOpenAIProvider(config OpenAIConfig, logger *zap.Logger) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &OpenAIProvider{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     logger,
	}, nil
}

// Name implements Provider
func (p *OpenAIProvider) Name() string {
	return "openai"
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate implements Provider
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (*Response, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:    p.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openai: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("openai: failed to read response: %w", err)
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("openai: failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unexpected status"
		if out.Error != nil {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("openai: %s (status %d)", msg, resp.StatusCode)
	}

	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("openai: response contained no choices")
	}

	tokens := out.Usage.TotalTokens
	p.logger.Debug("OpenAI completion finished",
		zap.String("model", p.config.Model),
		zap.Int("tokens", tokens))

	return &Response{
		Provider:   p.Name(),
		Text:       out.Choices[0].Message.Content,
		TokensUsed: tokens,
		Cost:       estimateCost(tokens, openAIRatePer1K),
	}, nil
}

// Ensure OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
