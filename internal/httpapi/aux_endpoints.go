package httpapi

import (
    "context"
    "net/http"
    "time"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

// readyz reports 503 while the note cache is unreachable or the wallet is
// unlocked but offline.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
    ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
    defer cancel()
    if s.cache != nil {
        if err := s.cache.Ready(ctx); err != nil { w.WriteHeader(http.StatusServiceUnavailable); return }
    }
    if s.wallet.IsOpen() && !s.wallet.IsOnline(ctx) {
        w.WriteHeader(http.StatusServiceUnavailable)
        return
    }
    w.WriteHeader(http.StatusOK)
}
