package daraja_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"daraja-gateway/internal/config"
	"daraja-gateway/internal/infrastructure/daraja"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{ token string }

func (s staticTokens) Token(ctx context.Context) (string, error) { return s.token, nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*daraja.HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := daraja.NewHTTPClient(config.DarajaConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, staticTokens{token: "test-token"})

	return client, server
}

func pushRequest() *daraja.STKPushRequest {
	return &daraja.STKPushRequest{
		BusinessShortCode: "174379",
		Amount:            100,
		PartyA:            "254712345678",
		PartyB:            "174379",
		PhoneNumber:       "254712345678",
	}
}

func TestHTTPClient_STKPush_Accepted(t *testing.T) {
	var gotAuth string
	var gotBody daraja.STKPushRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(daraja.STKPushResponse{
			MerchantRequestID:   "29115-34620561-1",
			CheckoutRequestID:   "ws_CO_191220191020363925",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
			CustomerMessage:     "Success. Request accepted for processing",
		})
	})

	resp, err := client.STKPush(context.Background(), pushRequest())

	require.NoError(t, err)
	assert.True(t, resp.Accepted())
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", resp.MerchantRequestID)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "254712345678", gotBody.PhoneNumber)
}

func TestHTTPClient_STKPush_BusinessRejectionIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(daraja.STKPushResponse{
			ResponseCode:        "1",
			ResponseDescription: "Insufficient balance",
		})
	})

	resp, err := client.STKPush(context.Background(), pushRequest())

	require.NoError(t, err)
	assert.False(t, resp.Accepted())
	assert.Equal(t, "Insufficient balance", resp.ResponseDescription)
}

func TestHTTPClient_STKPush_4xxBecomesProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"requestId":    "1234",
			"errorCode":    "400.002.02",
			"errorMessage": "Bad Request - Invalid Timestamp",
		})
	})

	_, err := client.STKPush(context.Background(), pushRequest())

	require.Error(t, err)
	provErr, ok := daraja.IsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, "400.002.02", provErr.Code)
	assert.Equal(t, "Bad Request - Invalid Timestamp", provErr.Description)
}

func TestHTTPClient_STKPush_5xxBecomesTransportError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.STKPush(context.Background(), pushRequest())

	require.Error(t, err)
	assert.True(t, daraja.IsTransportError(err))
}

func TestRetryClient_STKPush_RetriesTransportThenSucceeds(t *testing.T) {
	var calls atomic.Int32

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(daraja.STKPushResponse{
			ResponseCode:      "0",
			CheckoutRequestID: "ws_CO_1",
		})
	})

	retryClient := daraja.NewRetryClient(client, daraja.SubmitRetryPolicy(2, time.Millisecond))

	resp, err := retryClient.STKPush(context.Background(), pushRequest())

	require.NoError(t, err)
	assert.True(t, resp.Accepted())
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryClient_STKPush_ExactAttemptCountOnPersistentFailure(t *testing.T) {
	var calls atomic.Int32

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	retryClient := daraja.NewRetryClient(client, daraja.SubmitRetryPolicy(2, time.Millisecond))

	_, err := retryClient.STKPush(context.Background(), pushRequest())

	require.Error(t, err)
	assert.True(t, daraja.IsTransportError(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryClient_STKPush_NoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"errorCode":    "500.001.1001",
			"errorMessage": "Wrong credentials",
		})
	})

	retryClient := daraja.NewRetryClient(client, daraja.SubmitRetryPolicy(3, time.Millisecond))

	_, err := retryClient.STKPush(context.Background(), pushRequest())

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBreakerClient_OpensAfterConsecutiveTransportFailures(t *testing.T) {
	var calls atomic.Int32

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	breakerClient := daraja.NewBreakerClient(client)

	for i := 0; i < 5; i++ {
		_, err := breakerClient.STKPush(context.Background(), pushRequest())
		require.Error(t, err)
	}

	// Breaker is now open: the call fails without reaching the server and
	// still surfaces as a transport failure.
	_, err := breakerClient.STKPush(context.Background(), pushRequest())
	require.Error(t, err)
	assert.True(t, daraja.IsTransportError(err))
	assert.Equal(t, int32(5), calls.Load())
}

func TestHTTPTokenExchanger_Exchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))

		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "sandbox-token",
			"expires_in":   "3599",
		})
	}))
	t.Cleanup(server.Close)

	exchanger := daraja.NewHTTPTokenExchanger(config.DarajaConfig{
		BaseURL:        server.URL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Timeout:        5 * time.Second,
	})

	grant, err := exchanger.Exchange(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "sandbox-token", grant.AccessToken)
	assert.Equal(t, 3599*time.Second, grant.ExpiresIn)
}

func TestHTTPTokenExchanger_MissingTokenField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"expires_in": "3599"})
	}))
	t.Cleanup(server.Close)

	exchanger := daraja.NewHTTPTokenExchanger(config.DarajaConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})

	_, err := exchanger.Exchange(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing access_token")
}
