package httpapi

import (
    "bytes"
    "crypto/sha256"
    "encoding/hex"
    "io"
    "net/http"
)

// Spends are replayed, not repeated, when retried with the same
// Idempotency-Key. Reusing a key with a different body is a conflict, and so
// is reusing it while the first request is still running.

type storedResponse struct {
    BodyHash string
    Status   int
    Payload  []byte
    // Pending marks a key reserved by a request that has not finished yet.
    Pending bool
}

func hashBytes(b []byte) string {
    h := sha256.Sum256(b)
    return hex.EncodeToString(h[:])
}

// settled reports whether a response is final for its key. Successes and
// domain rejections are; precondition, auth and server failures may change
// once the caller fixes the wallet state, so those keys are released.
func settled(status int) bool {
    return status < http.StatusBadRequest || status == http.StatusUnprocessableEntity
}

func (s *Server) idempotent(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        key := r.Header.Get("Idempotency-Key")
        if key == "" {
            next.ServeHTTP(w, r)
            return
        }
        body, err := io.ReadAll(r.Body)
        if err != nil {
            badRequest(w, "unreadable body", "invalid_body")
            return
        }
        r.Body = io.NopCloser(bytes.NewReader(body))
        key = r.URL.Path + "|" + key
        h := hashBytes(body)

        s.idemMu.Lock()
        prev, ok := s.idem[key]
        if !ok {
            s.idem[key] = storedResponse{BodyHash: h, Pending: true}
        }
        s.idemMu.Unlock()
        if ok {
            switch {
            case prev.BodyHash != h:
                writeErr(w, http.StatusConflict, "idempotency_mismatch", "idempotency_mismatch")
            case prev.Pending:
                writeErr(w, http.StatusConflict, "request with this idempotency key is in progress", "idempotency_in_progress")
            default:
                w.Header().Set("Content-Type", "application/json")
                w.Header().Set("Idempotent-Replayed", "true")
                w.WriteHeader(prev.Status)
                _, _ = w.Write(prev.Payload)
            }
            return
        }

        rw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
        defer func() {
            s.idemMu.Lock()
            defer s.idemMu.Unlock()
            if !rw.done || !settled(rw.status) {
                delete(s.idem, key)
                return
            }
            s.idem[key] = storedResponse{BodyHash: h, Status: rw.status, Payload: append([]byte(nil), rw.buf...)}
        }()
        next.ServeHTTP(rw, r)
        rw.done = true
    })
}

type captureWriter struct {
    http.ResponseWriter
    status int
    buf    []byte
    done   bool
}

func (w *captureWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *captureWriter) Write(b []byte) (int, error) {
    w.buf = append(w.buf, b...)
    return w.ResponseWriter.Write(b)
}
