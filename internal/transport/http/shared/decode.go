package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"perfeval/internal/platform/requestctx"
	"perfeval/internal/transport/http/api"
)

// DecodeJSON reads the request body into dst, answering 400 or 413 itself
// when it returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		requestID := requestctx.GetRequestID(r.Context())
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_json", "invalid request body", requestID)
		return false
	}
	return true
}
