package respond

import (
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Envelope is the JSON wrapper used by machine-facing endpoints.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, logger *zap.Logger, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Code: status, Message: message, Data: data}); err != nil {
		logger.Warn("respond: encode payload failed", zap.Error(err))
	}
}

// Redirect sends the browser to path, adding msg as the "msg" query parameter
// when it is not empty.
func Redirect(w http.ResponseWriter, r *http.Request, path, msg string, status int) {
	if msg != "" {
		path += "?" + url.Values{"msg": {msg}}.Encode()
	}
	http.Redirect(w, r, path, status)
}
