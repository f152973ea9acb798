package daraja

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"daraja-gateway/internal/config"
)

// TokenSource supplies the bearer credential for outbound calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the port for the STK push endpoint.
type Client interface {
	STKPush(ctx context.Context, req *STKPushRequest) (*STKPushResponse, error)
}

type HTTPClient struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

func NewHTTPClient(cfg config.DarajaConfig, tokens TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// STKPush submits a single push request. Failure classification:
// network errors and 5xx become TransportError, 4xx becomes ProviderError.
// A 200 with a non-zero ResponseCode is returned as a response, not an
// error; interpretation belongs to the caller.
func (c *HTTPClient) STKPush(ctx context.Context, req *STKPushRequest) (*STKPushResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	url := fmt.Sprintf("%s/mpesa/stkpush/v1/processrequest", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &TransportError{
			Err: fmt.Errorf("daraja returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.ErrorCode == "" {
			return nil, &ProviderError{
				Code:        fmt.Sprintf("HTTP_%d", resp.StatusCode),
				Description: "Transaction failed",
			}
		}
		return nil, &ProviderError{
			Code:        errResp.ErrorCode,
			Description: errResp.ErrorMessage,
		}
	}

	var pushResp STKPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &pushResp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// RetryClient wraps a Client with the submission retry policy.
type RetryClient struct {
	inner  Client
	policy RetryPolicy
}

func NewRetryClient(inner Client, policy RetryPolicy) *RetryClient {
	return &RetryClient{
		inner:  inner,
		policy: policy,
	}
}

func (r *RetryClient) STKPush(ctx context.Context, req *STKPushRequest) (*STKPushResponse, error) {
	return Retry(
		ctx,
		r.policy,
		func(ctx context.Context) (*STKPushResponse, error) {
			return r.inner.STKPush(ctx, req)
		},
	)
}
