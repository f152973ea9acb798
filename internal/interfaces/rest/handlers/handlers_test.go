package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"daraja-gateway/internal/application/services"
	"daraja-gateway/internal/config"
	"daraja-gateway/internal/domain"
	"daraja-gateway/internal/infrastructure/daraja"
	"daraja-gateway/internal/interfaces/rest/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token  string
	err    error
	cached bool
}

func (s *staticTokens) Token(ctx context.Context) (string, error) { return s.token, s.err }
func (s *staticTokens) Cached() bool                              { return s.cached }

type fixture struct {
	repo   *services.MockSessionRepository
	client *services.MockDarajaClient
	tokens *staticTokens
	router chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DarajaConfig{
		Shortcode:   "174379",
		Passkey:     "test-passkey",
		CallbackURL: "https://example.com/callback",
		AmountLimit: 70000,
	}

	repo := services.NewMockSessionRepository()
	client := &services.MockDarajaClient{
		Response: &daraja.STKPushResponse{
			MerchantRequestID:   "29115-34620561-1",
			CheckoutRequestID:   "ws_CO_191220191020363925",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
		},
	}
	tokens := &staticTokens{token: "test-token", cached: true}

	h := handlers.NewHandlers(
		services.NewInitiateService(repo, client, cfg, logger),
		services.NewCallbackService(repo, &services.MockDeduper{}, logger),
		services.NewQueryService(repo),
		tokens,
		logger,
	)

	router := chi.NewRouter()
	h.Routes(router)

	return &fixture{repo: repo, client: client, tokens: tokens, router: router}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestPay_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/pay", `{"phone":"0712345678","amount":100}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "STK push sent successfully", resp["message"])
	assert.Equal(t, "ws_CO_191220191020363925", resp["checkout_request_id"])
}

func TestPay_AmountAsString(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/pay", `{"phone":"0712345678","amount":"250.75"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, f.client.LastReq)
	assert.Equal(t, int64(250), f.client.LastReq.Amount)
}

func TestPay_InvalidPhone(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/pay", `{"phone":"12345","amount":100}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.NotEmpty(t, resp["message"])
	assert.Equal(t, 0, f.client.Calls)
}

func TestPay_ValidationMessageAtTopLevel(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/pay", `{"phone":"0712345678","amount":"0"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "amount must be greater than 0", resp["message"])
}

func TestPay_MalformedBody(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/pay", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.client.Calls)
}

func TestCallback_SuccessAcked(t *testing.T) {
	f := newFixture(t)

	session, err := domain.NewPaymentSession("sess-1", "254712345678", 100, "ORDER_1", "Payment")
	require.NoError(t, err)
	session.Submitted("ws_CO_191220191020363925", "29115-34620561-1", "0")
	f.repo.Put(session)

	body := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 100.00},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20191219102115},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`

	rec := f.do(http.MethodPost, "/callback", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var ack map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, float64(0), ack["ResultCode"])
	assert.Equal(t, "Accepted", ack["ResultDesc"])

	assert.Equal(t, domain.StatusConfirmed, f.repo.Get("sess-1").Status)
}

func TestCallback_UnknownCheckoutIDStillAcked(t *testing.T) {
	f := newFixture(t)

	body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_unknown","ResultCode":0,"ResultDesc":"ok"}}}`
	rec := f.do(http.MethodPost, "/callback", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var ack map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, float64(0), ack["ResultCode"])
}

func TestCallback_UndecodableBodyRejected(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/callback", `not json at all`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var ack map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, float64(1), ack["ResultCode"])
	assert.Equal(t, "Invalid data", ack["ResultDesc"])
}

func TestGetPayment_Found(t *testing.T) {
	f := newFixture(t)

	session, err := domain.NewPaymentSession("sess-1", "254712345678", 100, "ORDER_1", "Payment")
	require.NoError(t, err)
	session.Submitted("ws_CO_191220191020363925", "29115-34620561-1", "0")
	f.repo.Put(session)

	rec := f.do(http.MethodGet, "/payments/ws_CO_191220191020363925", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			SessionID string `json:"session_id"`
			Status    string `json:"status"`
			Amount    int64  `json:"amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "sess-1", resp.Data.SessionID)
	assert.Equal(t, "PENDING", resp.Data.Status)
	assert.Equal(t, int64(100), resp.Data.Amount)
}

func TestGetPayment_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/payments/ws_CO_missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth_Healthy(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, true, resp["token_cached"])
}

func TestHealth_TokenFailure(t *testing.T) {
	f := newFixture(t)
	f.tokens.err = &daraja.AuthError{Err: context.DeadlineExceeded}
	f.tokens.cached = false

	rec := f.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp["status"])
}
