package billing

import (
	"context"
	"testing"
	"time"

	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// spyProvider records calls and returns canned results
type spyProvider struct {
	checkCalls  int
	trackCalls  int
	setCalls    int
	attachCalls int

	checkResult  *billing.CreditCheck
	trackResult  *billing.TrackResult
	attachResult *billing.AttachResult
	err          error
}

func (p *spyProvider) Check(ctx context.Context, input billing.CheckInput) (*billing.CreditCheck, error) {
	p.checkCalls++
	if p.err != nil {
		return nil, p.err
	}
	return p.checkResult, nil
}

func (p *spyProvider) Track(ctx context.Context, input billing.TrackInput) (*billing.TrackResult, error) {
	p.trackCalls++
	if p.err != nil {
		return nil, p.err
	}
	return p.trackResult, nil
}

func (p *spyProvider) SetUsage(ctx context.Context, input billing.SetUsageInput) (*billing.TrackResult, error) {
	p.setCalls++
	if p.err != nil {
		return nil, p.err
	}
	return p.trackResult, nil
}

func (p *spyProvider) Attach(ctx context.Context, input billing.AttachInput) (*billing.AttachResult, error) {
	p.attachCalls++
	if p.err != nil {
		return nil, p.err
	}
	return p.attachResult, nil
}

// memoryEventRepo collects saved events
type memoryEventRepo struct {
	saved []*billing.UsageEvent
}

func (r *memoryEventRepo) Save(ctx context.Context, event *billing.UsageEvent) error {
	r.saved = append(r.saved, event)
	return nil
}

func (r *memoryEventRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]*billing.UsageEvent, error) {
	return r.saved, nil
}

func (r *memoryEventRepo) AggregateByFeature(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]billing.FeatureUsage, error) {
	byFeature := map[billing.FeatureID]*billing.FeatureUsage{}
	order := []billing.FeatureID{}
	for _, e := range r.saved {
		if e.CustomerID != customerID || e.RecordedAt.Before(from) || !e.RecordedAt.Before(to) {
			continue
		}
		u, ok := byFeature[e.FeatureID]
		if !ok {
			u = &billing.FeatureUsage{FeatureID: e.FeatureID}
			byFeature[e.FeatureID] = u
			order = append(order, e.FeatureID)
		}
		u.Count += e.Count
		u.Events++
	}
	result := make([]billing.FeatureUsage, 0, len(order))
	for _, f := range order {
		result = append(result, *byFeature[f])
	}
	return result, nil
}

func newCreditService(t *testing.T, provider *spyProvider, events *memoryEventRepo, devBypass bool) *CreditService {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewCreditService(provider, events, store, zap.NewNop(), CreditServiceConfig{
		DevBypass: devBypass,
	})
}

func TestCreditService_CheckCredits(t *testing.T) {
	provider := &spyProvider{checkResult: &billing.CreditCheck{Allowed: true, Balance: 42}}
	svc := newCreditService(t, provider, &memoryEventRepo{}, false)

	check, err := svc.CheckCredits(context.Background(), CheckCreditsInput{
		UserID:    uuid.New(),
		FeatureID: billing.FeatureMessages,
	})
	require.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Equal(t, int64(42), check.Balance)
	assert.Equal(t, 1, provider.checkCalls)
}

func TestCreditService_CheckCredits_DevBypass(t *testing.T) {
	provider := &spyProvider{checkResult: &billing.CreditCheck{Allowed: false, Balance: 0}}
	svc := newCreditService(t, provider, &memoryEventRepo{}, true)

	check, err := svc.CheckCredits(context.Background(), CheckCreditsInput{
		UserID:    uuid.New(),
		FeatureID: billing.FeatureAnalysis,
	})
	require.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Equal(t, int64(9999), check.Balance)
	assert.Equal(t, 0, provider.checkCalls, "dev bypass must not contact the provider")
}

func TestCreditService_CheckCredits_Validation(t *testing.T) {
	svc := newCreditService(t, &spyProvider{}, &memoryEventRepo{}, false)

	_, err := svc.CheckCredits(context.Background(), CheckCreditsInput{
		UserID:    uuid.Nil,
		FeatureID: billing.FeatureMessages,
	})
	assert.Error(t, err)

	_, err = svc.CheckCredits(context.Background(), CheckCreditsInput{
		UserID:    uuid.New(),
		FeatureID: "bogus",
	})
	assert.Error(t, err)
}

func TestCreditService_TrackCredits(t *testing.T) {
	provider := &spyProvider{trackResult: &billing.TrackResult{Success: true, Message: "ok"}}
	events := &memoryEventRepo{}
	svc := newCreditService(t, provider, events, false)
	userID := uuid.New()

	result, err := svc.TrackCredits(context.Background(), TrackCreditsInput{
		UserID:    userID,
		FeatureID: billing.FeatureMessages,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, provider.trackCalls)

	// Count defaults to 1 and the audit log records it
	require.Len(t, events.saved, 1)
	assert.Equal(t, int64(1), events.saved[0].Count)
	assert.Equal(t, userID, events.saved[0].CustomerID)
}

func TestCreditService_TrackCredits_DevBypass(t *testing.T) {
	provider := &spyProvider{}
	events := &memoryEventRepo{}
	svc := newCreditService(t, provider, events, true)

	result, err := svc.TrackCredits(context.Background(), TrackCreditsInput{
		UserID:    uuid.New(),
		FeatureID: billing.FeatureMessages,
		Count:     5,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Dev mode - credits not tracked", result.Message)
	assert.Equal(t, 0, provider.trackCalls, "dev bypass must not contact the provider")
	assert.Empty(t, events.saved, "dev bypass must not write audit events")
}

func TestCreditService_TrackCredits_NoKeyDeductsTwice(t *testing.T) {
	provider := &spyProvider{trackResult: &billing.TrackResult{Success: true}}
	svc := newCreditService(t, provider, &memoryEventRepo{}, false)
	input := TrackCreditsInput{UserID: uuid.New(), FeatureID: billing.FeatureMessages}

	_, err := svc.TrackCredits(context.Background(), input)
	require.NoError(t, err)
	_, err = svc.TrackCredits(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 2, provider.trackCalls, "calls without a key are not deduplicated")
}

func TestCreditService_TrackCredits_IdempotencyKeyDeduplicates(t *testing.T) {
	provider := &spyProvider{trackResult: &billing.TrackResult{Success: true}}
	events := &memoryEventRepo{}
	svc := newCreditService(t, provider, events, false)
	input := TrackCreditsInput{
		UserID:         uuid.New(),
		FeatureID:      billing.FeatureAnalysis,
		IdempotencyKey: "analysis-abc",
	}

	first, err := svc.TrackCredits(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, first.Success)

	second, err := svc.TrackCredits(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Success)

	assert.Equal(t, 1, provider.trackCalls, "replay with the same key must not reach the provider")
	assert.Len(t, events.saved, 1)
}

func TestCreditService_TrackCredits_ProviderErrorPassthrough(t *testing.T) {
	perr := &billing.ProviderError{Code: "INSUFFICIENT_CREDITS", Message: "no balance", StatusCode: 402}
	provider := &spyProvider{err: perr}
	events := &memoryEventRepo{}
	svc := newCreditService(t, provider, events, false)

	_, err := svc.TrackCredits(context.Background(), TrackCreditsInput{
		UserID:    uuid.New(),
		FeatureID: billing.FeatureMessages,
	})
	require.ErrorIs(t, err, perr)
	assert.Empty(t, events.saved, "failed tracks must not hit the audit log")
}

func TestCreditService_SetUsageValue(t *testing.T) {
	provider := &spyProvider{trackResult: &billing.TrackResult{Success: true}}
	svc := newCreditService(t, provider, &memoryEventRepo{}, false)

	_, err := svc.SetUsageValue(context.Background(), uuid.New(), billing.FeatureMessages, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.setCalls)
}
