package httpapi

import (
    "net/http"
    "strconv"
    "time"

    chimw "github.com/go-chi/chi/v5/middleware"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    httpRequestsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "wallet",
            Name:      "http_requests_total",
            Help:      "Total number of HTTP requests",
        },
        []string{"method", "status"},
    )
    httpRequestDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "wallet",
            Name:      "http_request_duration_seconds",
            Help:      "Duration of HTTP requests in seconds",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"method", "status"},
    )
    walletErrorsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "wallet",
            Name:      "errors_total",
            Help:      "Wallet errors returned to API callers",
        },
        []string{"kind", "class"},
    )
)

func metricsHandler() http.Handler {
    return promhttp.Handler()
}

func metricsMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
        start := time.Now()
        next.ServeHTTP(ww, r)
        status := strconv.Itoa(ww.Status())
        httpRequestsTotal.WithLabelValues(r.Method, status).Inc()
        httpRequestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
    })
}
