package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/brandlens/backend/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL:   server.URL,
		SecretKey: "sk_test_123",
		Timeout:   5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestClient_Check(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/check", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cus_42", body["customer_id"])
		assert.Equal(t, "messages", body["feature_id"])

		json.NewEncoder(w).Encode(map[string]any{"allowed": true, "balance": 57})
	})

	result, err := client.Check(context.Background(), domain.CheckInput{
		CustomerID: "cus_42",
		FeatureID:  domain.FeatureMessages,
	})
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(57), result.Balance)
}

func TestClient_Check_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    "INSUFFICIENT_CREDITS",
				"message": "Not enough credits",
			},
		})
	})

	_, err := client.Check(context.Background(), domain.CheckInput{
		CustomerID: "cus_42",
		FeatureID:  domain.FeatureMessages,
	})
	require.Error(t, err)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "INSUFFICIENT_CREDITS", perr.Code)
	assert.Equal(t, "Not enough credits", perr.Message)
	assert.Equal(t, http.StatusPaymentRequired, perr.StatusCode)
}

func TestClient_Check_NonJSONError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	})

	_, err := client.Check(context.Background(), domain.CheckInput{
		CustomerID: "cus_42",
		FeatureID:  domain.FeatureMessages,
	})
	require.Error(t, err)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "EXTERNAL_SERVICE_ERROR", perr.Code)
	assert.Equal(t, http.StatusBadGateway, perr.StatusCode)
}

func TestClient_Track(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/track", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(3), body["count"])

		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "tracked"})
	})

	result, err := client.Track(context.Background(), domain.TrackInput{
		CustomerID: "cus_42",
		FeatureID:  domain.FeatureAnalysis,
		Count:      3,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, calls)
}

func TestClient_Attach(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/attach", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"checkout_url": "https://pay.example.com/cs_1"})
	})

	result, err := client.Attach(context.Background(), domain.AttachInput{
		CustomerID: "cus_42",
		ProductID:  "pro",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_1", result.CheckoutURL)
}

func TestConfig_Validate(t *testing.T) {
	valid := &Config{BaseURL: "https://api.example.com", SecretKey: "sk", Timeout: time.Second}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&Config{SecretKey: "sk", Timeout: time.Second}).Validate())
	assert.Error(t, (&Config{BaseURL: "ftp://x", SecretKey: "sk", Timeout: time.Second}).Validate())
	assert.Error(t, (&Config{BaseURL: "https://x", Timeout: time.Second}).Validate())
	assert.Error(t, (&Config{BaseURL: "https://x", SecretKey: "sk"}).Validate())
}
