package httpapi

import (
    "encoding/json"
    "net/http"
)

// toJSON writes a JSON response with status code.
func toJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object, rejecting unknown fields. An empty
// body leaves v untouched when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
    if optional && r.ContentLength == 0 {
        return true
    }
    if !requireJSON(w, r) {
        return false
    }
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(v); err != nil {
        writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "invalid_json")
        return false
    }
    return true
}
