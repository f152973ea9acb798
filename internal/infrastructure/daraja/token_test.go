package daraja

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExchanger struct {
	calls int
	grant *TokenGrant
	err   error
}

func (f *fakeExchanger) Exchange(ctx context.Context) (*TokenGrant, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.grant, nil
}

func newTestTokenManager(exchanger TokenExchanger, now time.Time) (*TokenManager, *time.Time) {
	clock := now
	m := NewTokenManager(exchanger, 300*time.Second, TokenRetryPolicy(3, time.Millisecond))
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestTokenManager_FreshCallExchangesOnce(t *testing.T) {
	exchanger := &fakeExchanger{grant: &TokenGrant{AccessToken: "tok-1", ExpiresIn: time.Hour}}
	m, _ := newTestTokenManager(exchanger, time.Now())

	token, err := m.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 1, exchanger.calls)
	assert.True(t, m.Cached())
}

func TestTokenManager_CachedWindowSkipsExchange(t *testing.T) {
	exchanger := &fakeExchanger{grant: &TokenGrant{AccessToken: "tok-1", ExpiresIn: time.Hour}}
	m, clock := newTestTokenManager(exchanger, time.Now())

	_, err := m.Token(context.Background())
	require.NoError(t, err)

	*clock = clock.Add(30 * time.Minute)

	token, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 1, exchanger.calls)
}

func TestTokenManager_RefreshAfterExpiryMinusMargin(t *testing.T) {
	exchanger := &fakeExchanger{grant: &TokenGrant{AccessToken: "tok-1", ExpiresIn: time.Hour}}
	m, clock := newTestTokenManager(exchanger, time.Now())

	_, err := m.Token(context.Background())
	require.NoError(t, err)

	// 55m1s is within the hour but past expiry minus the 5 minute margin.
	*clock = clock.Add(55*time.Minute + time.Second)
	exchanger.grant = &TokenGrant{AccessToken: "tok-2", ExpiresIn: time.Hour}

	token, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, 2, exchanger.calls)
}

func TestTokenManager_ExchangeFailureRetriedThenAuthError(t *testing.T) {
	exchanger := &fakeExchanger{err: errors.New("connection refused")}
	m, _ := newTestTokenManager(exchanger, time.Now())

	_, err := m.Token(context.Background())

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, 3, exchanger.calls)
	assert.False(t, m.Cached())
}

func TestTokenManager_ConcurrentCallersSingleExchange(t *testing.T) {
	exchanger := &fakeExchanger{grant: &TokenGrant{AccessToken: "tok-1", ExpiresIn: time.Hour}}
	m := NewTokenManager(exchanger, 300*time.Second, TokenRetryPolicy(3, time.Millisecond))

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := m.Token(context.Background())
			done <- err
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-done)
	}

	assert.Equal(t, 1, exchanger.calls)
}
