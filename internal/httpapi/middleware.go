package httpapi

import (
    "log/slog"
    "net/http"
    "runtime/debug"
    "strings"
    "time"

    chimw "github.com/go-chi/chi/v5/middleware"
)

func reqID(r *http.Request) string { return chimw.GetReqID(r.Context()) }

// requestLogger logs basic request info at INFO.
func requestLogger(l *slog.Logger) func(next http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()

            id := reqID(r)
            l.Info("request started", "req_id", id, "method", r.Method, "path", r.URL.Path)

            next.ServeHTTP(ww, r)

            l.Info("request complete",
                "req_id", id,
                "status", ww.Status(),
                "bytes", ww.BytesWritten(),
                "duration", time.Since(start).String(),
            )
        })
    }
}

// recoverer logs panics as ERROR and returns 500.
func recoverer(l *slog.Logger) func(next http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            defer func() {
                if rec := recover(); rec != nil {
                    l.Error("panic", "req_id", reqID(r), "err", rec, "stack", string(debug.Stack()))
                    writeErr(w, http.StatusInternalServerError, "internal error", "internal")
                }
            }()
            next.ServeHTTP(w, r)
        })
    }
}

// requireJSON ensures the request has Content-Type application/json (optionally with params).
// Writes 415 if not JSON and returns false.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
    ct := r.Header.Get("Content-Type")
    if ct == "" { writeErr(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "unsupported_media_type"); return false }
    mime := strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
    if mime != "application/json" { writeErr(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "unsupported_media_type"); return false }
    return true
}
