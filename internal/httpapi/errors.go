package httpapi

import (
    "errors"
    "net/http"

    "github.com/grutesr1/DUSK-test/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
    Error     string `json:"error"`
    Code      string `json:"code,omitempty"`
    Class     string `json:"class,omitempty"`
    Retryable bool   `json:"retryable,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
    toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg, code string) { writeErr(w, http.StatusBadRequest, msg, code) }

// mapError turns a wallet error into an HTTP status, a stable code and a
// message that is safe to show the caller.
func mapError(err error) (status int, code, msg string) {
    var e *errs.Error
    if !errors.As(err, &e) || e == nil {
        return http.StatusInternalServerError, "internal", "internal error"
    }
    code, msg = errs.Code(err), errs.PublicMessage(err)
    switch e.Class() {
    case errs.ClassDomain:
        return http.StatusUnprocessableEntity, code, msg
    case errs.ClassPrecondition:
        switch e.Kind() {
        case errs.KindUnauthorized:
            return http.StatusUnauthorized, code, msg
        case errs.KindOffline:
            return http.StatusServiceUnavailable, code, msg
        }
        return http.StatusConflict, code, msg
    case errs.ClassSecurity:
        return http.StatusUnauthorized, "invalid_credential", msg
    case errs.ClassTransient:
        return http.StatusServiceUnavailable, code, msg
    }
    return http.StatusInternalServerError, code, msg
}

// fail writes the envelope for err, counts it and logs server-side failures
// with the full, unredacted error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
    status, code, msg := mapError(err)
    resp := errorResponse{Error: msg, Code: code, Retryable: errs.Retryable(err)}
    kind, class := "unknown", "unknown"
    if k, ok := errs.KindOf(err); ok {
        kind = k.String()
    }
    if c, ok := errs.ClassOf(err); ok {
        class = c.String()
        resp.Class = class
    }
    walletErrorsTotal.WithLabelValues(kind, class).Inc()

    attrs := []any{"req_id", reqID(r), "status", status, "kind", kind, "class", class, "err", err}
    if status >= http.StatusInternalServerError {
        s.log.Error("request failed", attrs...)
    } else {
        s.log.Info("request rejected", attrs...)
    }
    toJSON(w, status, resp)
}
