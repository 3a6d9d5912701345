package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rates", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rates", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	Quotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rates", Name: "quotes_total", Help: "Price quotes by outcome."},
		[]string{"result"}, // result: ok|failure|unavailable|error|cached
	)
	QuoteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rates", Name: "quote_duration_seconds",
			Help:    "Time to compute a quote, cache lookups included.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"}, // source: cache|engine
	)
	AllotmentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rates", Name: "allotment_ops_total", Help: "Per-date allotment reservations and releases."},
		[]string{"op", "result"},
	)
	StorageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rates", Name: "storage_query_duration_seconds",
			Help:    "Storage query duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "op", "status"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rates", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|error
	)
)

// Serve exposes the registry on a dedicated listener. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, Quotes, QuoteLatency, AllotmentOps, StorageLatency, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveQuote(result, source string, dur time.Duration) {
	Quotes.WithLabelValues(result).Inc()
	QuoteLatency.WithLabelValues(source).Observe(dur.Seconds())
}

func ObserveAllotment(op, result string) { // op: reserve|release
	AllotmentOps.WithLabelValues(op, result).Inc()
}

func ObserveStorage(store, op string, err error, dur time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StorageLatency.WithLabelValues(store, op, status).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}
