package resilience

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBreakerOpensOnFailureRatio(t *testing.T) {
	ctx := context.Background()
	b := NewBreaker(4, 0.5, time.Hour)

	b.Report(ctx, true)
	b.Report(ctx, false)
	b.Report(ctx, false)
	require.True(t, b.Allow(ctx), "below the minimum sample the breaker stays closed")

	b.Report(ctx, false)
	require.False(t, b.Allow(ctx))
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	ctx := context.Background()
	b := NewBreaker(1, 0.5, 10*time.Millisecond)

	b.Report(ctx, false)
	require.False(t, b.Allow(ctx))

	time.Sleep(15 * time.Millisecond)
	require.True(t, b.Allow(ctx), "after the cool-off a probe is allowed")

	b.Report(ctx, true)
	require.True(t, b.Allow(ctx), "successful probe closes the breaker")
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	b := NewBreaker(1, 0.5, 10*time.Millisecond)

	b.Report(ctx, false)
	time.Sleep(15 * time.Millisecond)
	require.True(t, b.Allow(ctx))

	b.Report(ctx, false)
	require.False(t, b.Allow(ctx), "failed probe reopens the breaker")
}

func TestBackoffGrowsExponentially(t *testing.T) {
	base := 100 * time.Millisecond
	require.Equal(t, base, Backoff(base, 1, 0))
	require.Equal(t, 2*base, Backoff(base, 2, 0))
	require.Equal(t, 4*base, Backoff(base, 3, 0))

	jittered := Backoff(base, 2, 0.2)
	require.InDelta(t, float64(2*base), float64(jittered), float64(2*base)*0.2)
}

func TestHTTPClientRetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cl := HTTPClient{
		Client:      srv.Client(),
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestHTTPClientWithoutBreakerNeverShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cl := HTTPClient{
		Client:      srv.Client(),
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = cl.Do(context.Background(), req)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrOpenCircuit)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls), "every attempt reaches the server")
}

func TestHTTPClientBodyReadableAfterReturn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("primeira parte "))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte("segunda parte"))
	}))
	t.Cleanup(srv.Close)

	cl := HTTPClient{Client: srv.Client(), Timeout: 2 * time.Second}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "body stays readable after the call returns")
	require.Equal(t, "primeira parte segunda parte", string(body))
}

func TestHTTPClientOpenBreakerShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	breaker := NewBreaker(1, 0.5, time.Hour)
	breaker.Report(context.Background(), false) // trip it

	cl := HTTPClient{Client: srv.Client(), Breaker: breaker, MaxAttempts: 2, BaseBackoff: time.Millisecond}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = cl.Do(context.Background(), req)
	require.ErrorIs(t, err, ErrOpenCircuit)
	require.EqualValues(t, 0, atomic.LoadInt32(&calls), "no request leaves the process while open")
}

func TestHTTPClientFallback(t *testing.T) {
	breaker := NewBreaker(1, 0.5, time.Hour)
	breaker.Report(context.Background(), false)

	cl := HTTPClient{
		Client:  &http.Client{},
		Breaker: breaker,
		Fallback: func(_ context.Context, _ *http.Request, err error) (*http.Response, error) {
			require.ErrorIs(t, err, ErrOpenCircuit)
			rec := httptest.NewRecorder()
			rec.WriteHeader(http.StatusServiceUnavailable)
			return rec.Result(), nil
		},
	}
	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:0/", nil)
	require.NoError(t, err)

	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
