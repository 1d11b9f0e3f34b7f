package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/metrics"
)

// Logging escreve um log estruturado por requisição e alimenta as métricas HTTP.
func Logging(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			// Logger da requisição no contexto; Session acrescenta o campo "session".
			r = r.WithContext(log.Logger.With().Logger().WithContext(r.Context()))
			logger := zerolog.Ctx(r.Context())

			next.ServeHTTP(ww, r)

			dur := time.Since(start)
			route := routePattern(r)
			collector.ObserveHTTP(r.Method, route, ww.Status(), dur)

			event := logger.Info()
			if ww.Status() >= http.StatusInternalServerError {
				event = logger.Warn()
			}
			event = event.Str("method", r.Method).Str("path", r.URL.Path).Str("route", route).
				Int("status", ww.Status()).Int("bytes", ww.BytesWritten()).Dur("duration", dur)

			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				event = event.Str("request_id", reqID)
			}
			event = event.Str("ip", clientIP(r))

			event.Msg("http_request")
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
