package daraja

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"daraja-gateway/internal/config"
)

const defaultTokenTTL = time.Hour

// TokenGrant is the outcome of one credential exchange.
type TokenGrant struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// TokenExchanger performs the credential exchange against the provider.
type TokenExchanger interface {
	Exchange(ctx context.Context) (*TokenGrant, error)
}

// TokenManager caches the bearer token and refreshes it when the cached copy
// is within the safety margin of its expiry. The mutex is held across the
// exchange so concurrent callers hitting an expired cache produce a single
// refresh rather than a thundering herd.
type TokenManager struct {
	exchanger TokenExchanger
	margin    time.Duration
	policy    RetryPolicy

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

func NewTokenManager(exchanger TokenExchanger, margin time.Duration, policy RetryPolicy) *TokenManager {
	return &TokenManager{
		exchanger: exchanger,
		margin:    margin,
		policy:    policy,
		now:       time.Now,
	}
}

// Token returns the cached credential, refreshing it first if it is missing
// or past expiry-minus-margin.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.expiresAt) {
		return m.token, nil
	}

	grant, err := Retry(ctx, m.policy, func(ctx context.Context) (*TokenGrant, error) {
		return m.exchanger.Exchange(ctx)
	})
	if err != nil {
		return "", &AuthError{Err: err}
	}

	m.token = grant.AccessToken
	m.expiresAt = m.now().Add(grant.ExpiresIn - m.margin)

	return m.token, nil
}

// Cached reports whether an unexpired token is currently held.
func (m *TokenManager) Cached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && m.now().Before(m.expiresAt)
}

// HTTPTokenExchanger calls GET /oauth/v1/generate with basic auth.
type HTTPTokenExchanger struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
}

func NewHTTPTokenExchanger(cfg config.DarajaConfig) *HTTPTokenExchanger {
	return &HTTPTokenExchanger{
		baseURL:        cfg.BaseURL,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (e *HTTPTokenExchanger) Exchange(ctx context.Context) (*TokenGrant, error) {
	url := fmt.Sprintf("%s/oauth/v1/generate?grant_type=client_credentials", e.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating token request: %w", err)
	}
	req.SetBasicAuth(e.consumerKey, e.consumerSecret)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("error decoding token response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	ttl := defaultTokenTTL
	if secs, err := strconv.Atoi(tokenResp.ExpiresIn); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}

	return &TokenGrant{
		AccessToken: tokenResp.AccessToken,
		ExpiresIn:   ttl,
	}, nil
}
