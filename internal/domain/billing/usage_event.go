package billing

import (
	"context"
	"time"

	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UsageEvent is an immutable local audit record of a usage report sent to the
// billing provider. The provider stays the source of truth for balances; this
// log only backs the usage stats endpoint and support investigations.
type UsageEvent struct {
	shared.BaseEntity
	CustomerID     uuid.UUID
	FeatureID      FeatureID
	Count          int64
	IdempotencyKey string
	RecordedAt     time.Time
}

// NewUsageEvent creates a usage event with validation
func NewUsageEvent(customerID uuid.UUID, featureID FeatureID, count int64, idempotencyKey string) (*UsageEvent, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !featureID.IsValid() {
		return nil, shared.NewDomainError("INVALID_FEATURE", "Unknown feature ID")
	}
	if count <= 0 {
		return nil, shared.NewDomainError("INVALID_COUNT", "Count must be positive")
	}

	return &UsageEvent{
		BaseEntity:     shared.NewBaseEntity(),
		CustomerID:     customerID,
		FeatureID:      featureID,
		Count:          count,
		IdempotencyKey: idempotencyKey,
		RecordedAt:     time.Now(),
	}, nil
}

// FeatureUsage is an aggregated per-feature usage count over a period
type FeatureUsage struct {
	FeatureID FeatureID `json:"featureId"`
	Count     int64     `json:"count"`
	Events    int64     `json:"events"`
}

// UsageEventRepository persists the local usage audit log
type UsageEventRepository interface {
	Save(ctx context.Context, event *UsageEvent) error
	FindByCustomer(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]*UsageEvent, error)
	AggregateByFeature(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]FeatureUsage, error)
}
