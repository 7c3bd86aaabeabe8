package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wanderstay/wanderstay/internal/domain"
)

// maxJSONBodySize bounds request bodies for the JSON endpoints. File
// uploads have their own limits.
const maxJSONBodySize = 1 << 20 // 1MB

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads the request body into dst, rejecting oversized bodies
// and unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("handler.decodeJSON", "Invalid request body")
	}
	return nil
}
