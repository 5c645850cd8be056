package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/metrics"
)

// MetricsConfig middleware ayarları
type MetricsConfig struct {
	SlowRequestThreshold time.Duration // bu süreyi aşan istekler loglanır
}

// DefaultMetricsConfig varsayılan ayarlar
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{SlowRequestThreshold: 2 * time.Second}
}

// metricsResponseWriter status code'u yakalar
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (mrw *metricsResponseWriter) WriteHeader(code int) {
	mrw.statusCode = code
	mrw.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware HTTP isteklerini Prometheus'a yazar.
// Etiket olarak ham path değil mux route şablonu kullanılır (/transactions/{id}).
func MetricsMiddleware(config *MetricsConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultMetricsConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			done := metrics.RequestStarted()

			wrapped := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			elapsed := time.Since(start)
			route := routeTemplate(r)
			done(r.Method, route, wrapped.statusCode, elapsed)

			if elapsed > config.SlowRequestThreshold {
				log.Warn().
					Str("method", r.Method).
					Str("route", route).
					Dur("response_time", elapsed).
					Msg("🐢 Slow request detected")
			}
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
