// Package api provides the HTTP API handlers for drishti.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/drishti/internal/app"
	"github.com/ayusman/drishti/internal/session"
)

// Controller is the part of the running application the API drives.
type Controller interface {
	Status() app.Status
	Settings() session.Settings
	ApplySettings(st session.Settings) error
	Calibrate() error
	RecordBreak(now time.Time) error
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
