package httpapi

import (
    "net/http"
    "os"
    "strings"

    "github.com/golang-jwt/jwt/v5"
)

func parseBearerToken(r *http.Request) (string, bool) {
    h := r.Header.Get("Authorization")
    if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "Bearer ") { return "", false }
    return strings.TrimSpace(h[len("Bearer "):]), true
}

// authJWTFromEnv returns a middleware that enforces Authorization: Bearer JWT (HS256)
// when JWT_HS256_SECRET is set. Optional checks: JWT_ISSUER, JWT_AUDIENCE.
// Expiry and not-before are always checked when present.
func authJWTFromEnv() func(http.Handler) http.Handler {
    secret := strings.TrimSpace(os.Getenv("JWT_HS256_SECRET"))
    if secret == "" {
        return nil
    }
    opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
    if iss := strings.TrimSpace(os.Getenv("JWT_ISSUER")); iss != "" {
        opts = append(opts, jwt.WithIssuer(iss))
    }
    if aud := strings.TrimSpace(os.Getenv("JWT_AUDIENCE")); aud != "" {
        opts = append(opts, jwt.WithAudience(aud))
    }
    parser := jwt.NewParser(opts...)
    key := func(*jwt.Token) (any, error) { return []byte(secret), nil }

    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            switch r.URL.Path {
            case "/healthz", "/readyz", "/metrics":
                next.ServeHTTP(w, r)
                return
            }
            tok, ok := parseBearerToken(r)
            if !ok {
                writeErr(w, http.StatusUnauthorized, "invalid credential", "invalid_credential")
                return
            }
            if _, err := parser.Parse(tok, key); err != nil {
                writeErr(w, http.StatusUnauthorized, "invalid credential", "invalid_credential")
                return
            }
            next.ServeHTTP(w, r)
        })
    }
}
