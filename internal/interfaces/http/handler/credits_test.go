package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	appbilling "github.com/brandlens/backend/internal/application/billing"
	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider counts calls and answers with canned results
type fakeProvider struct {
	checkCalls int
	trackCalls int
	check      *billing.CreditCheck
}

func (p *fakeProvider) Check(ctx context.Context, input billing.CheckInput) (*billing.CreditCheck, error) {
	p.checkCalls++
	if p.check != nil {
		return p.check, nil
	}
	return &billing.CreditCheck{Allowed: true, Balance: 42}, nil
}

func (p *fakeProvider) Track(ctx context.Context, input billing.TrackInput) (*billing.TrackResult, error) {
	p.trackCalls++
	return &billing.TrackResult{Success: true, Message: "tracked"}, nil
}

func (p *fakeProvider) SetUsage(ctx context.Context, input billing.SetUsageInput) (*billing.TrackResult, error) {
	return &billing.TrackResult{Success: true}, nil
}

func (p *fakeProvider) Attach(ctx context.Context, input billing.AttachInput) (*billing.AttachResult, error) {
	return &billing.AttachResult{}, nil
}

var _ billing.Provider = (*fakeProvider)(nil)

type discardEventRepo struct{}

func (discardEventRepo) Save(ctx context.Context, event *billing.UsageEvent) error { return nil }
func (discardEventRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]*billing.UsageEvent, error) {
	return nil, nil
}
func (discardEventRepo) AggregateByFeature(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]billing.FeatureUsage, error) {
	return nil, nil
}

func newCreditsEngine(t *testing.T, provider billing.Provider, devBypass bool) *gin.Engine {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	credits := appbilling.NewCreditService(provider, discardEventRepo{}, store, zap.NewNop(),
		appbilling.CreditServiceConfig{DevBypass: devBypass})

	engine := gin.New()
	engine.Use(authAs(uuid.New()))
	api := engine.Group("/api/v1")
	NewCreditsHandler(credits).RegisterRoutes(api)
	return engine
}

func TestCreditsCheck_ReportsProviderBalance(t *testing.T) {
	provider := &fakeProvider{check: &billing.CreditCheck{Allowed: true, Balance: 7}}
	engine := newCreditsEngine(t, provider, false)

	rec := doRequest(t, engine, http.MethodGet, "/api/v1/credits?feature=messages", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"allowed":true,"balance":7}`, rec.Body.String())
	assert.Equal(t, 1, provider.checkCalls)
}

func TestCreditsCheck_DevBypassSkipsProvider(t *testing.T) {
	provider := &fakeProvider{}
	engine := newCreditsEngine(t, provider, true)

	rec := doRequest(t, engine, http.MethodGet, "/api/v1/credits?feature=messages", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"allowed":true,"balance":9999}`, rec.Body.String())
	assert.Equal(t, 0, provider.checkCalls)
}

func TestCreditsCheck_UnknownFeatureRejected(t *testing.T) {
	engine := newCreditsEngine(t, &fakeProvider{}, false)

	rec := doRequest(t, engine, http.MethodGet, "/api/v1/credits?feature=time-travel", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	detail := decodeErrorEnvelope(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", detail.Code)
}

func TestCreditsCheck_MissingFeatureRejected(t *testing.T) {
	engine := newCreditsEngine(t, &fakeProvider{}, false)

	rec := doRequest(t, engine, http.MethodGet, "/api/v1/credits", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreditsTrack_HeaderKeyDeduplicates(t *testing.T) {
	provider := &fakeProvider{}
	engine := newCreditsEngine(t, provider, false)

	body := `{"feature":"messages","count":2}`
	for i := 0; i < 2; i++ {
		req := newJSONRequest(http.MethodPost, "/api/v1/credits/track", body)
		req.Header.Set("Idempotency-Key", "req-123")
		rec := serve(engine, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1, provider.trackCalls)
}

func TestCreditsTrack_NoKeyDeductsTwice(t *testing.T) {
	provider := &fakeProvider{}
	engine := newCreditsEngine(t, provider, false)

	body := `{"feature":"messages"}`
	for i := 0; i < 2; i++ {
		rec := doRequest(t, engine, http.MethodPost, "/api/v1/credits/track", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2, provider.trackCalls)
}

func TestCreditsTrack_DevBypassMessage(t *testing.T) {
	provider := &fakeProvider{}
	engine := newCreditsEngine(t, provider, true)

	rec := doRequest(t, engine, http.MethodPost, "/api/v1/credits/track", `{"feature":"analysis"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Dev mode - credits not tracked"}`, rec.Body.String())
	assert.Equal(t, 0, provider.trackCalls)
}
