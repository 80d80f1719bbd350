package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "directory", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "directory", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "directory", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "directory", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "directory", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	FixupFiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "directory", Name: "fixup_files_total", Help: "Files seen by build fixups."},
		[]string{"fixup", "outcome"}, // outcome: scanned|changed|skipped
	)
	ImageChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "directory", Name: "image_checks_total", Help: "Appraiser image checks."},
		[]string{"result"}, // result: valid|invalid|placeholder
	)
	LookupMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "directory", Name: "lookup_misses_total", Help: "Resolver lookups that found nothing."},
		[]string{"kind", "reason"},
	)
)

// Serve exposes /metrics on its own listener. An empty addr disables it and
// returns nil.
func Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	reg := InitRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency,
		CacheEvents, FixupFiles, ImageChecks, LookupMisses)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveFixup adds one fixup run's file counts.
func ObserveFixup(fixup string, scanned, changed, skipped int) {
	FixupFiles.WithLabelValues(fixup, "scanned").Add(float64(scanned))
	FixupFiles.WithLabelValues(fixup, "changed").Add(float64(changed))
	FixupFiles.WithLabelValues(fixup, "skipped").Add(float64(skipped))
}

func ObserveImageCheck(result string) { ImageChecks.WithLabelValues(result).Inc() }

func ObserveLookupMiss(kind, reason string) { LookupMisses.WithLabelValues(kind, reason).Inc() }
