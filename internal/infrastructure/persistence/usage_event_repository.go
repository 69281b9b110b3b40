package persistence

import (
	"context"
	"time"

	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUsageEventRepository implements UsageEventRepository using GORM
type GormUsageEventRepository struct {
	db *gorm.DB
}

// NewGormUsageEventRepository creates a new GormUsageEventRepository
func NewGormUsageEventRepository(db *gorm.DB) *GormUsageEventRepository {
	return &GormUsageEventRepository{db: db}
}

// Save persists a usage event. Events are immutable; there is no update path.
func (r *GormUsageEventRepository) Save(ctx context.Context, event *billing.UsageEvent) error {
	model := models.UsageEventModelFromDomain(event)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByCustomer returns the customer's usage events in a period, newest first
func (r *GormUsageEventRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]*billing.UsageEvent, error) {
	var rows []models.UsageEventModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND recorded_at >= ? AND recorded_at < ?", customerID, from, to).
		Order("recorded_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	events := make([]*billing.UsageEvent, len(rows))
	for i := range rows {
		events[i] = rows[i].ToDomain()
	}
	return events, nil
}

// AggregateByFeature sums the customer's usage per feature over a period
func (r *GormUsageEventRepository) AggregateByFeature(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]billing.FeatureUsage, error) {
	type row struct {
		FeatureID string
		Total     int64
		Events    int64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.UsageEventModel{}).
		Select("feature_id, SUM(count) AS total, COUNT(*) AS events").
		Where("customer_id = ? AND recorded_at >= ? AND recorded_at < ?", customerID, from, to).
		Group("feature_id").
		Order("feature_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	usage := make([]billing.FeatureUsage, len(rows))
	for i, r := range rows {
		usage[i] = billing.FeatureUsage{
			FeatureID: billing.FeatureID(r.FeatureID),
			Count:     r.Total,
			Events:    r.Events,
		}
	}
	return usage, nil
}

// Ensure GormUsageEventRepository implements UsageEventRepository
var _ billing.UsageEventRepository = (*GormUsageEventRepository)(nil)
