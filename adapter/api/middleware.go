package api

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// Request and correlation id headers.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

type middleware func(http.Handler) http.Handler

// chain wraps h so that the first middleware runs outermost.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// withCORS answers preflight requests and sets CORS headers for allowed
// origins. "*" allows any origin.
func withCORS(allowed []string) middleware {
	allowAll := slices.Contains(allowed, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || slices.Contains(allowed, origin)) {
				h := w.Header()
				if allowAll {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HeaderCorrelationID)
				h.Set("Access-Control-Expose-Headers", HeaderRunID+", "+HeaderStrategy+", "+HeaderCache+", "+HeaderRequestID)
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withRequestContext attaches correlation and request ids to the request
// context and echoes the request id back.
func withRequestContext() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := observability.NewRequestContext(r.Context(), r.Header.Get(HeaderCorrelationID))
			w.Header().Set(HeaderRequestID, observability.RequestIDFromContext(ctx))
			w.Header().Set(HeaderCorrelationID, observability.CorrelationIDFromContext(ctx))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withAccessLog logs each request and times it.
func withAccessLog(logger *slog.Logger, metrics observability.Metrics) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			timer := observability.StartTimer("http.request").WithTags(observability.T("method", r.Method))
			if metrics != nil {
				timer = timer.WithMetrics(metrics)
			}

			next.ServeHTTP(rec, r)

			elapsed := timer.Stop()
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				observability.StatusKey, rec.status,
				observability.DurationKey, elapsed.Milliseconds(),
			)
		})
	}
}

// withBodyLimit caps the request body.
func withBodyLimit(n int64) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
