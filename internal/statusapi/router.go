package statusapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openmx/mxnet/internal/logger"
	"github.com/openmx/mxnet/pkg/mxnet"
)

// NewRouter builds the chi router for the introspection API.
//
// Routes:
//   - GET /healthz - liveness probe
//   - GET /servers - all Server connections currently in dir
//   - GET /servers/{address} - a single Server's detail
//   - GET /metrics - Prometheus exposition
func NewRouter(dir *mxnet.Directory, startedAt time.Time) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	h := &handler{dir: dir, startedAt: startedAt}

	r.Get("/healthz", h.liveness)
	r.Get("/servers", h.listServers)
	r.Get("/servers/{address}", h.getServer)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestLogger logs every request using the internal logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("statusapi request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("statusapi request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
