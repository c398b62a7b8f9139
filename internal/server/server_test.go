package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/drishti/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newStaticDir writes index.html and a file at api/status, which API routes
// must take precedence over.
func newStaticDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>drishti</html>"), 0644); err != nil {
		t.Fatalf("failed to create index.html: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "api"), 0755); err != nil {
		t.Fatalf("failed to create api dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "api", "status"), []byte("static"), 0644); err != nil {
		t.Fatalf("failed to create shadow file: %v", err)
	}
	return dir
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/api/health")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			if rec := serve(s, method, "/api/health"); rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_ControllerRoutes(t *testing.T) {
	bare := New(Config{Store: newTestStore(t)})
	full := New(Config{Store: newTestStore(t), Controller: newFakeApp()})

	// POST never reaches the streaming handlers, so an existing route answers 405.
	tests := []struct {
		name   string
		server *Server
		method string
		path   string
		want   int
	}{
		{"signals without controller", bare, http.MethodPost, "/api/signals", http.StatusNotFound},
		{"stream without controller", bare, http.MethodPost, "/api/stream", http.StatusNotFound},
		{"status without controller", bare, http.MethodGet, "/api/status", http.StatusNotFound},
		{"plugins without controller", bare, http.MethodGet, "/api/plugins", http.StatusNotFound},
		{"signals with controller", full, http.MethodPost, "/api/signals", http.StatusMethodNotAllowed},
		{"stream with controller", full, http.MethodPost, "/api/stream", http.StatusMethodNotAllowed},
		{"status with controller", full, http.MethodGet, "/api/status", http.StatusOK},
		{"sessions without controller", bare, http.MethodGet, "/api/sessions", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(tt.server, tt.method, tt.path); rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestServer_SessionMethods(t *testing.T) {
	plain := New(Config{Store: newTestStore(t)})
	static := New(Config{Store: newTestStore(t), StaticDir: newStaticDir(t)})

	for name, s := range map[string]*Server{"plain": plain, "with static dir": static} {
		t.Run(name, func(t *testing.T) {
			for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
				if rec := serve(s, method, "/api/sessions/run-1"); rec.Code != http.StatusMethodNotAllowed {
					t.Errorf("%s /api/sessions/run-1 = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
				}
			}
			if rec := serve(s, http.MethodGet, "/api/sessions/run-1"); rec.Code != http.StatusNotFound {
				t.Errorf("GET unknown session = %d, want %d", rec.Code, http.StatusNotFound)
			}
		})
	}
}

func TestServer_StaticFiles(t *testing.T) {
	s := New(Config{StaticDir: newStaticDir(t), Controller: newFakeApp()})

	t.Run("serves index.html at root path", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/")
		if rec.Code != http.StatusOK || rec.Body.String() != "<html>drishti</html>" {
			t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("API routes are not shadowed", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/api/status")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /api/status = %d, want %d", rec.Code, http.StatusOK)
		}
		var status struct {
			Running bool `json:"running"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			t.Fatalf("status is not JSON: %v", err)
		}
		if !status.Running {
			t.Error("expected the controller's status")
		}
	})

	t.Run("returns 404 for non-existent static files", func(t *testing.T) {
		if rec := serve(s, http.MethodGet, "/nonexistent.html"); rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestServer_NoStaticDir(t *testing.T) {
	s := New(Config{})

	if rec := serve(s, http.MethodGet, "/"); rec.Code != http.StatusNotFound {
		t.Errorf("root path = %d, want %d when no static dir is configured", rec.Code, http.StatusNotFound)
	}
	if rec := serve(s, http.MethodGet, "/api/nonexistent"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown API path = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
