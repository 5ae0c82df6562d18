package mwmetrics

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"net/http"
	"shareIt/internal/lib/metrics"
	"strconv"
	"time"
)

// unmatchedEndpoint labels requests that matched no route, so arbitrary paths
// never become label values.
const unmatchedEndpoint = "unmatched"

// New records request count, latency and in-flight requests, labelled by
// route pattern. A nil m disables recording.
func New(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			m.IncInFlight()

			defer func() {
				m.DecInFlight()
				m.RecordHTTPRequest(r.Method, endpoint(r), strconv.Itoa(ww.Status()), time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func endpoint(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unmatchedEndpoint
}
