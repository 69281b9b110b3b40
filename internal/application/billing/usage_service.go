package billing

import (
	"context"
	"time"

	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UsageStats is a customer's aggregated usage over a period, built from the
// local audit log. Balances come from the provider, not from here.
type UsageStats struct {
	PeriodStart time.Time              `json:"periodStart"`
	PeriodEnd   time.Time              `json:"periodEnd"`
	Features    []billing.FeatureUsage `json:"features"`
	TotalCount  int64                  `json:"totalCount"`
	TotalEvents int64                  `json:"totalEvents"`
}

// UsageService reads the local usage audit log
type UsageService struct {
	events billing.UsageEventRepository
	logger *zap.Logger
}

// NewUsageService creates a new UsageService
func NewUsageService(events billing.UsageEventRepository, logger *zap.Logger) *UsageService {
	return &UsageService{events: events, logger: logger}
}

// GetStats aggregates per-feature usage over an arbitrary period
func (s *UsageService) GetStats(ctx context.Context, customerID uuid.UUID, from, to time.Time) (*UsageStats, error) {
	features, err := s.events.AggregateByFeature(ctx, customerID, from, to)
	if err != nil {
		return nil, err
	}

	stats := &UsageStats{
		PeriodStart: from,
		PeriodEnd:   to,
		Features:    features,
	}
	for _, f := range features {
		stats.TotalCount += f.Count
		stats.TotalEvents += f.Events
	}
	return stats, nil
}

// GetCurrentMonthStats aggregates usage for the calendar month containing now
func (s *UsageService) GetCurrentMonthStats(ctx context.Context, customerID uuid.UUID, now time.Time) (*UsageStats, error) {
	from, to := monthPeriod(now)
	return s.GetStats(ctx, customerID, from, to)
}

// GetEvents returns the raw audit events for a period, newest first
func (s *UsageService) GetEvents(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]*billing.UsageEvent, error) {
	return s.events.FindByCustomer(ctx, customerID, from, to)
}

// GetCurrentMonthEvents returns the audit events for the calendar month
// containing now
func (s *UsageService) GetCurrentMonthEvents(ctx context.Context, customerID uuid.UUID, now time.Time) ([]*billing.UsageEvent, error) {
	from, to := monthPeriod(now)
	return s.GetEvents(ctx, customerID, from, to)
}

// monthPeriod is the single definition of the default reporting period.
func monthPeriod(now time.Time) (from, to time.Time) {
	from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}
