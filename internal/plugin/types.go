// Package plugin runs external hook executables when session events fire.
// A hook is a directory holding a plugin.json manifest and an executable that
// reads one JSON Request on stdin and writes one JSON Response on stdout.
package plugin

import (
	"encoding/json"
	"slices"
	"time"
)

// Manifest describes a hook and the event kinds it wants.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
	// Events lists the event kinds delivered to the hook. "*" matches all.
	Events []string `json:"events"`
	// Config is passed through to the hook untouched on every request.
	Config json.RawMessage `json:"config,omitempty"`
}

// Request is one event delivered to a hook.
type Request struct {
	Event      string          `json:"event"`
	SessionID  string          `json:"session_id,omitempty"`
	At         time.Time       `json:"at"`
	Detail     string          `json:"detail,omitempty"`
	DurationMS int64           `json:"duration_ms,omitempty"`
	Score      int             `json:"score,omitempty"`
	Config     json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribed to the event kind.
func (p *Plugin) Handles(event string) bool {
	return slices.Contains(p.Manifest.Events, "*") || slices.Contains(p.Manifest.Events, event)
}
