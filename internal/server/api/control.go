package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayusman/drishti/internal/session"
)

// ControlHandler serves status, settings, calibration and break requests.
type ControlHandler struct {
	ctrl Controller
	now  func() time.Time
}

// NewControlHandler creates a ControlHandler for the given controller.
func NewControlHandler(ctrl Controller) *ControlHandler {
	return &ControlHandler{ctrl: ctrl, now: time.Now}
}

// Register adds the control routes to r.
func (h *ControlHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/status", h.status).Methods(http.MethodGet)
	r.HandleFunc("/api/settings", h.getSettings).Methods(http.MethodGet)
	r.HandleFunc("/api/settings", h.putSettings).Methods(http.MethodPut)
	r.HandleFunc("/api/calibrate", h.calibrate).Methods(http.MethodPost)
	r.HandleFunc("/api/break", h.recordBreak).Methods(http.MethodPost)
}

// status handles GET /api/status.
func (h *ControlHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

// getSettings handles GET /api/settings.
func (h *ControlHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Settings())
}

// putSettings handles PUT /api/settings. Fields missing from the body keep
// their current values.
func (h *ControlHandler) putSettings(w http.ResponseWriter, r *http.Request) {
	st := h.ctrl.Settings()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if err := h.ctrl.ApplySettings(st); err != nil {
		if errors.Is(err, session.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Failed to save settings: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, h.ctrl.Settings())
}

// calibrate handles POST /api/calibrate.
func (h *ControlHandler) calibrate(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Calibrate(); err != nil {
		if errors.Is(err, session.ErrNoFace) {
			writeError(w, http.StatusConflict, "No face in view to calibrate on")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordBreak handles POST /api/break.
func (h *ControlHandler) recordBreak(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.RecordBreak(h.now()); err != nil {
		log.Printf("Failed to record break: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to record break")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
