package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// geminiRatePer1K is the flat per-1k-token cost estimate for reporting
var geminiRatePer1K = decimal.NewFromFloat(0.0003)

// GeminiConfig holds settings for the Gemini provider
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiProvider calls Google's Gemini API via the official SDK
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  config.Model,
		logger: logger,
	}, nil
}

// Name implements Provider
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Generate implements Provider
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (*Response, error) {
	model := p.client.GenerativeModel(p.model)

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini: generation failed: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini: response contained no candidates")
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	tokens := 0
	if res.UsageMetadata != nil {
		tokens = int(res.UsageMetadata.TotalTokenCount)
	}

	p.logger.Debug("Gemini completion finished",
		zap.String("model", p.model),
		zap.Int("tokens", tokens))

	return &Response{
		Provider:   p.Name(),
		Text:       sb.String(),
		TokensUsed: tokens,
		Cost:       estimateCost(tokens, geminiRatePer1K),
	}, nil
}

// Close releases the underlying client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
