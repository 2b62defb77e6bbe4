// Package middleware wraps an http.RoundTripper with a chain of
// cross-cutting concerns for outbound provider calls: recovery, per-provider
// rate limiting, tracing, metrics, and logging (SPEC_FULL.md §10) - the same
// "outermost-first" composition the teacher's gRPC interceptor chain used,
// rebuilt for a RoundTripper instead of a unary handler.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SocAIty/fastsdk-go/pkg/logger"
	"github.com/SocAIty/fastsdk-go/pkg/metrics"
	"github.com/SocAIty/fastsdk-go/pkg/ratelimit"
	"github.com/SocAIty/fastsdk-go/pkg/telemetry"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Middleware wraps a RoundTripper with additional behavior.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain composes mws around base, outermost first: Chain(base, A, B) calls
// A, then B, then base.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// Recovery turns a panic inside the wrapped transport into an error
// response instead of crashing the caller's goroutine.
func Recovery() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (resp *http.Response, err error) {
			defer func() {
				if p := recover(); p != nil {
					logger.Log.Error("recovered from panic in request transport",
						"panic", fmt.Sprintf("%v", p), "url", req.URL.String())
					err = fmt.Errorf("request transport panic: %v", p)
				}
			}()
			return next.RoundTrip(req)
		})
	}
}

// KeyFunc extracts the rate-limit key for a request, typically the
// provider/host name.
type KeyFunc func(*http.Request) string

// DefaultKeyFunc keys by request host.
func DefaultKeyFunc(req *http.Request) string {
	return req.URL.Host
}

// RateLimit throttles outbound calls per KeyFunc, failing open (letting
// the request through) if the limiter itself errors, mirroring the
// teacher's gRPC rate-limit interceptor.
func RateLimit(limiter ratelimit.Limiter, keyFn KeyFunc) Middleware {
	if keyFn == nil {
		keyFn = DefaultKeyFunc
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			key := keyFn(req)
			allowed, err := limiter.Allow(req.Context(), key)
			if err != nil {
				logger.Log.Warn("rate limit check failed, allowing request", "error", err, "key", key)
				return next.RoundTrip(req)
			}
			if !allowed {
				return nil, fmt.Errorf("rate limit exceeded for %s", key)
			}
			return next.RoundTrip(req)
		})
	}
}

// Tracing wraps the request in a span named after the request method and
// host.
func Tracing() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx, span := telemetry.StartSpan(req.Context(), fmt.Sprintf("%s %s", req.Method, req.URL.Host))
			defer span.End()

			resp, err := next.RoundTrip(req.WithContext(ctx))
			if err != nil {
				telemetry.SetError(ctx, err)
			}
			return resp, err
		})
	}
}

// Metrics records the outbound call's duration under the "request_layer"
// stage.
func Metrics() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			metrics.Get().RecordStageDuration("request_layer", time.Since(start))
			return resp, err
		})
	}
}

// Logging logs each outbound call's method, host, status, and duration.
func Logging() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			duration := time.Since(start)

			if err != nil {
				logger.Log.Error("outbound request failed",
					"method", req.Method, "host", req.URL.Host, "duration_ms", duration.Milliseconds(), "error", err.Error())
				return resp, err
			}
			logger.Log.Info("outbound request completed",
				"method", req.Method, "host", req.URL.Host, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())
			return resp, err
		})
	}
}

// Default builds the standard chain spec.md/SPEC_FULL.md §10 names:
// recovery, then per-host rate limiting, then tracing, then metrics,
// then logging, around base.
func Default(base http.RoundTripper, limiter ratelimit.Limiter) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	mws := []Middleware{Recovery()}
	if limiter != nil {
		mws = append(mws, RateLimit(limiter, DefaultKeyFunc))
	}
	mws = append(mws, Tracing(), Metrics(), Logging())
	return Chain(base, mws...)
}
