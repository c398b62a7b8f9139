package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/drishti/internal/plugin"
)

// PluginSource lists and rescans the installed event hooks.
type PluginSource interface {
	Plugins() []*plugin.Plugin
	ReloadPlugins() error
}

// PluginHandler handles the plugin endpoints.
type PluginHandler struct {
	src PluginSource
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(src PluginSource) *PluginHandler {
	return &PluginHandler{src: src}
}

// Register adds the plugin routes to r.
func (h *PluginHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/plugins", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/plugins/reload", h.reload).Methods(http.MethodPost)
}

type pluginInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Events      []string `json:"events"`
}

type pluginListResponse struct {
	Plugins []pluginInfo `json:"plugins"`
}

func (h *PluginHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.listResponse())
}

func (h *PluginHandler) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.src.ReloadPlugins(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.listResponse())
}

func (h *PluginHandler) listResponse() pluginListResponse {
	resp := pluginListResponse{Plugins: []pluginInfo{}}
	for _, p := range h.src.Plugins() {
		resp.Plugins = append(resp.Plugins, pluginInfo{
			Name:        p.Manifest.Name,
			Version:     p.Manifest.Version,
			Description: p.Manifest.Description,
			Events:      p.Manifest.Events,
		})
	}
	return resp
}
