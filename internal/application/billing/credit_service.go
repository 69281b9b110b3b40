// Package billing contains the application services gating paid features:
// credit checks, usage tracking with idempotent replay protection, and
// subscription management against the external metering provider.
package billing

import (
	"context"
	"time"

	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// devBypassBalance is the balance reported while the dev bypass is active
const devBypassBalance = 9999

// devBypassTrackMessage is returned verbatim by track calls in dev mode;
// clients display it, so the wording is part of the contract.
const devBypassTrackMessage = "Dev mode - credits not tracked"

// CreditServiceConfig configures the credit service
type CreditServiceConfig struct {
	// DevBypass makes every check pass and every track a no-op. Never enabled
	// in production; config validation refuses to boot with it set there.
	DevBypass bool

	// IdempotencyTTL is how long a processed idempotency key blocks replays.
	// Default: 24 hours.
	IdempotencyTTL time.Duration
}

// CreditService gates metered features. Checks and tracking go to the external
// provider, which stays the source of truth for balances; every successful
// track is also appended to the local usage audit log.
type CreditService struct {
	provider    billing.Provider
	events      billing.UsageEventRepository
	idempotency shared.IdempotencyStore
	logger      *zap.Logger
	config      CreditServiceConfig
}

// NewCreditService creates a new CreditService
func NewCreditService(
	provider billing.Provider,
	events billing.UsageEventRepository,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
	config CreditServiceConfig,
) *CreditService {
	if config.IdempotencyTTL <= 0 {
		config.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	return &CreditService{
		provider:    provider,
		events:      events,
		idempotency: idempotency,
		logger:      logger,
		config:      config,
	}
}

// IsDevBypass reports whether the dev bypass is active
func (s *CreditService) IsDevBypass() bool {
	return s.config.DevBypass
}

// CheckCreditsInput holds parameters for a credit availability check
type CheckCreditsInput struct {
	UserID    uuid.UUID
	FeatureID billing.FeatureID
}

// CheckCredits reports whether the user may consume the feature right now.
// With the dev bypass active it always allows without contacting the provider.
func (s *CreditService) CheckCredits(ctx context.Context, input CheckCreditsInput) (*billing.CreditCheck, error) {
	if input.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !input.FeatureID.IsValid() {
		return nil, shared.NewDomainError("INVALID_FEATURE", "Unknown feature ID")
	}

	if s.config.DevBypass {
		s.logger.Debug("Dev bypass active, allowing credit check",
			zap.String("user_id", input.UserID.String()),
			zap.String("feature_id", input.FeatureID.String()))
		return &billing.CreditCheck{Allowed: true, Balance: devBypassBalance}, nil
	}

	return s.provider.Check(ctx, billing.CheckInput{
		CustomerID: input.UserID.String(),
		FeatureID:  input.FeatureID,
	})
}

// TrackCreditsInput holds parameters for reporting consumed usage.
// An empty IdempotencyKey means the call is not deduplicated: two identical
// calls deduct twice.
type TrackCreditsInput struct {
	UserID         uuid.UUID
	FeatureID      billing.FeatureID
	Count          int64 // defaults to 1
	IdempotencyKey string
}

// TrackCredits reports consumed usage to the provider. When an idempotency key
// is supplied, replays within the TTL are swallowed without a provider call.
// With the dev bypass active nothing is tracked or recorded.
func (s *CreditService) TrackCredits(ctx context.Context, input TrackCreditsInput) (*billing.TrackResult, error) {
	if input.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !input.FeatureID.IsValid() {
		return nil, shared.NewDomainError("INVALID_FEATURE", "Unknown feature ID")
	}
	if input.Count <= 0 {
		input.Count = 1
	}

	if s.config.DevBypass {
		s.logger.Debug("Dev bypass active, skipping usage tracking",
			zap.String("user_id", input.UserID.String()),
			zap.String("feature_id", input.FeatureID.String()),
			zap.Int64("count", input.Count))
		return &billing.TrackResult{Success: true, Message: devBypassTrackMessage}, nil
	}

	if input.IdempotencyKey != "" {
		newlyMarked, err := s.idempotency.MarkProcessed(ctx, input.IdempotencyKey, s.config.IdempotencyTTL)
		if err != nil {
			// Tracking availability wins over dedup: worst case a retry
			// deducts twice, which the provider tolerates.
			s.logger.Warn("Idempotency store unavailable, tracking anyway",
				zap.String("idempotency_key", input.IdempotencyKey),
				zap.Error(err))
		} else if !newlyMarked {
			s.logger.Info("Duplicate usage report suppressed",
				zap.String("user_id", input.UserID.String()),
				zap.String("feature_id", input.FeatureID.String()),
				zap.String("idempotency_key", input.IdempotencyKey))
			return &billing.TrackResult{Success: true, Message: "Usage already tracked"}, nil
		}
	}

	result, err := s.provider.Track(ctx, billing.TrackInput{
		CustomerID: input.UserID.String(),
		FeatureID:  input.FeatureID,
		Count:      input.Count,
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, input)
	return result, nil
}

// SetUsageValue sets the absolute usage value for a gauge-style feature
func (s *CreditService) SetUsageValue(ctx context.Context, userID uuid.UUID, featureID billing.FeatureID, value int64) (*billing.TrackResult, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !featureID.IsValid() {
		return nil, shared.NewDomainError("INVALID_FEATURE", "Unknown feature ID")
	}

	if s.config.DevBypass {
		s.logger.Debug("Dev bypass active, skipping usage value update",
			zap.String("user_id", userID.String()),
			zap.String("feature_id", featureID.String()))
		return &billing.TrackResult{Success: true, Message: devBypassTrackMessage}, nil
	}

	return s.provider.SetUsage(ctx, billing.SetUsageInput{
		CustomerID: userID.String(),
		FeatureID:  featureID,
		Value:      value,
	})
}

// recordEvent appends to the local usage audit log. Best effort: the provider
// already accepted the usage, so a log failure must not fail the request.
func (s *CreditService) recordEvent(ctx context.Context, input TrackCreditsInput) {
	event, err := billing.NewUsageEvent(input.UserID, input.FeatureID, input.Count, input.IdempotencyKey)
	if err != nil {
		s.logger.Warn("Failed to build usage event", zap.Error(err))
		return
	}
	if err := s.events.Save(ctx, event); err != nil {
		s.logger.Warn("Failed to record usage event",
			zap.String("user_id", input.UserID.String()),
			zap.String("feature_id", input.FeatureID.String()),
			zap.Error(err))
	}
}
