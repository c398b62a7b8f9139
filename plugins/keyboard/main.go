// Package main provides a keyboard hook. It turns held hand gestures and
// winks into keystrokes, via AppleScript on macOS and xdotool elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Request represents the event sent by the hook dispatcher.
type Request struct {
	Event      string          `json:"event"`
	SessionID  string          `json:"session_id,omitempty"`
	At         time.Time       `json:"at"`
	Detail     string          `json:"detail,omitempty"`
	DurationMS int64           `json:"duration_ms,omitempty"`
	Score      int             `json:"score,omitempty"`
	Config     json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Keystroke is one key with optional modifiers.
type Keystroke struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// Config binds triggers to keystrokes. Gesture events are looked up by gesture
// name ("thumbs_up"), other events by kind ("wink_left").
type Config struct {
	Bindings map[string]Keystroke `json:"bindings"`
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

// xdotoolModifiers maps modifier names to xdotool key names.
var xdotoolModifiers = map[string]string{
	"command": "super",
	"cmd":     "super",
	"option":  "alt",
	"alt":     "alt",
	"control": "ctrl",
	"ctrl":    "ctrl",
	"shift":   "shift",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}

	trigger := req.Event
	if req.Event == "gesture" {
		trigger = req.Detail
	}
	ks, ok := cfg.Bindings[trigger]
	if !ok {
		writeErrorResponse(fmt.Sprintf("no binding for %s", trigger))
		return
	}

	if err := press(ks); err != nil {
		writeErrorResponse(fmt.Sprintf("keystroke for %s failed: %v", trigger, err))
		return
	}

	writeSuccessResponse()
}

func press(ks Keystroke) error {
	if ks.Key == "" {
		return fmt.Errorf("key is required")
	}
	if runtime.GOOS == "darwin" {
		return run("osascript", "-e", buildKeystrokeScript(ks.Key, ks.Modifiers))
	}
	return run("xdotool", "key", buildXdotoolChord(ks.Key, ks.Modifiers))
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}

	modifierList := strings.Join(appleModifiers, ", ")
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, modifierList)
}

// buildXdotoolChord joins modifiers and key the way xdotool expects: ctrl+shift+k.
func buildXdotoolChord(key string, modifiers []string) string {
	parts := make([]string, 0, len(modifiers)+1)
	for _, mod := range modifiers {
		if m, ok := xdotoolModifiers[strings.ToLower(mod)]; ok {
			parts = append(parts, m)
		}
	}
	return strings.Join(append(parts, key), "+")
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// run executes a command and returns any error with its output.
func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
