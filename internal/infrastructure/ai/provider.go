// Package ai contains clients for the AI model providers the brand monitor
// fans out to. Each provider answers a plain-text prompt and reports token
// usage so analyses can carry a cost estimate.
package ai

import (
	"context"

	"github.com/shopspring/decimal"
)

// Response is a single provider's answer to a prompt
type Response struct {
	Provider   string
	Text       string
	TokensUsed int
	Cost       decimal.Decimal
}

// Provider is an AI model provider
type Provider interface {
	// Name identifies the provider in results and logs
	Name() string

	// Generate answers a prompt. Implementations must respect ctx cancellation.
	Generate(ctx context.Context, prompt string) (*Response, error)
}

// estimateCost converts a token count to an approximate cost using a flat
// per-1k-token rate. Good enough for per-analysis cost reporting; exact
// billing happens at the providers.
func estimateCost(tokens int, ratePer1K decimal.Decimal) decimal.Decimal {
	return ratePer1K.Mul(decimal.NewFromInt(int64(tokens))).Div(decimal.NewFromInt(1000))
}
