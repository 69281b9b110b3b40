package models

import (
	"time"

	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// UsageEventModel is the persistence model for the local usage audit log.
type UsageEventModel struct {
	BaseModel
	CustomerID     uuid.UUID `gorm:"type:uuid;not null;index:idx_usage_events_customer_recorded"`
	FeatureID      string    `gorm:"type:varchar(50);not null;index"`
	Count          int64     `gorm:"not null"`
	IdempotencyKey string    `gorm:"type:varchar(255)"`
	RecordedAt     time.Time `gorm:"not null;index:idx_usage_events_customer_recorded"`
}

// TableName returns the table name for GORM
func (UsageEventModel) TableName() string {
	return "usage_events"
}

// ToDomain converts the persistence model to a domain UsageEvent.
func (m *UsageEventModel) ToDomain() *billing.UsageEvent {
	return &billing.UsageEvent{
		BaseEntity:     m.BaseModel.ToDomain(),
		CustomerID:     m.CustomerID,
		FeatureID:      billing.FeatureID(m.FeatureID),
		Count:          m.Count,
		IdempotencyKey: m.IdempotencyKey,
		RecordedAt:     m.RecordedAt,
	}
}

// UsageEventModelFromDomain builds a persistence model from a domain UsageEvent.
func UsageEventModelFromDomain(e *billing.UsageEvent) *UsageEventModel {
	m := &UsageEventModel{
		CustomerID:     e.CustomerID,
		FeatureID:      e.FeatureID.String(),
		Count:          e.Count,
		IdempotencyKey: e.IdempotencyKey,
		RecordedAt:     e.RecordedAt,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}
