package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SocAIty/fastsdk-go/pkg/logger"
	"github.com/SocAIty/fastsdk-go/pkg/ratelimit"
)

func init() {
	logger.Init("error")
}

func okTransport() http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil)), Request: req}, nil
	})
}

func panicTransport() http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		panic("boom")
	})
}

func errTransport(err error) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, err
	})
}

func newRequest(t *testing.T, url string) *http.Request {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestRecovery_NormalExecution(t *testing.T) {
	rt := Recovery()(okTransport())
	resp, err := rt.RoundTrip(newRequest(t, "https://example.com"))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRecovery_RecoversPanic(t *testing.T) {
	rt := Recovery()(panicTransport())
	_, err := rt.RoundTrip(newRequest(t, "https://example.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRateLimit_Allows(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Config{Requests: 10, Window: time.Minute})
	rt := RateLimit(limiter, nil)(okTransport())
	_, err := rt.RoundTrip(newRequest(t, "https://example.com"))
	assert.NoError(t, err)
}

func TestRateLimit_Blocks(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Config{Requests: 1, Window: time.Hour})
	rt := RateLimit(limiter, nil)(okTransport())

	_, err := rt.RoundTrip(newRequest(t, "https://example.com"))
	require.NoError(t, err)

	_, err = rt.RoundTrip(newRequest(t, "https://example.com"))
	assert.Error(t, err)
}

func TestTracing_WrapsRequest(t *testing.T) {
	rt := Tracing()(okTransport())
	resp, err := rt.RoundTrip(newRequest(t, "https://example.com"))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMetrics_RecordsOnSuccessAndFailure(t *testing.T) {
	rt := Metrics()(okTransport())
	_, err := rt.RoundTrip(newRequest(t, "https://example.com"))
	assert.NoError(t, err)

	rt = Metrics()(errTransport(errors.New("down")))
	_, err = rt.RoundTrip(newRequest(t, "https://example.com"))
	assert.Error(t, err)
}

func TestLogging_LogsSuccessAndFailure(t *testing.T) {
	rt := Logging()(okTransport())
	_, err := rt.RoundTrip(newRequest(t, "https://example.com"))
	assert.NoError(t, err)

	rt = Logging()(errTransport(errors.New("down")))
	_, err = rt.RoundTrip(newRequest(t, "https://example.com"))
	assert.Error(t, err)
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(req)
			})
		}
	}

	rt := Chain(okTransport(), mark("A"), mark("B"))
	_, err := rt.RoundTrip(newRequest(t, "https://example.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, order)
}

func TestDefault_BuildsChain(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Config{Requests: 10, Window: time.Minute, BurstSize: 10})
	rt := Default(okTransport(), limiter)
	resp, err := rt.RoundTrip(newRequest(t, "https://example.com"))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
