// Package main provides a desktop notification hook. It announces break
// reminders, sleep episodes and yawns via osascript on macOS and notify-send
// elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
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

// Config controls which events produce a notification.
type Config struct {
	Title string `json:"title"`
	// Sound plays the platform's default alert sound on macOS.
	Sound bool `json:"sound"`
	// Mute lists event kinds that should stay silent.
	Mute []string `json:"mute"`
}

// messages maps event kinds to notification bodies.
var messages = map[string]func(Request) string{
	"break_due": func(r Request) string {
		if r.Detail != "" {
			return fmt.Sprintf("Time for a break. Fatigue is %s (score %d).", r.Detail, r.Score)
		}
		return "Time for a break."
	},
	"sleep_start": func(Request) string {
		return "Your eyes have been closed for a while. Wake up!"
	},
	"yawn": func(Request) string {
		return "That was a yawn. Consider stretching."
	},
	"head_droop": func(Request) string {
		return "Your head is drooping. Sit up straight."
	},
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	cfg := Config{Title: "Drishti"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}

	message, ok := messages[req.Event]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unsupported event: %s", req.Event))
		return
	}
	for _, m := range cfg.Mute {
		if m == req.Event {
			writeSuccessResponse()
			return
		}
	}

	if err := notify(cfg, message(req)); err != nil {
		writeErrorResponse(fmt.Sprintf("notify %s failed: %v", req.Event, err))
		return
	}

	writeSuccessResponse()
}

func notify(cfg Config, body string) error {
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf("display notification %q with title %q", body, cfg.Title)
		if cfg.Sound {
			script += ` sound name "Glass"`
		}
		return run("osascript", "-e", script)
	}
	return run("notify-send", cfg.Title, body)
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
