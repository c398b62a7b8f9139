package app

import (
	"log"

	"github.com/ayusman/drishti/internal/plugin"
	"github.com/ayusman/drishti/internal/session"
)

func (a *App) loadPlugins() {
	a.plugins = plugin.NewManager(a.config.PluginDir)
	if err := a.plugins.Discover(); err != nil {
		log.Printf("Error discovering plugins in %s: %v", a.config.PluginDir, err)
		return
	}
	for _, p := range a.plugins.List() {
		log.Printf("Loaded plugin %s %s for %v", p.Manifest.Name, p.Manifest.Version, p.Manifest.Events)
	}
	a.hooks = plugin.NewDispatcher(a.plugins, plugin.NewExecutor(a.config.PluginTimeout), a.config.PluginSlots)
}

// ReloadPlugins rescans the plugin directory.
func (a *App) ReloadPlugins() error {
	if a.plugins == nil {
		return nil
	}
	return a.plugins.Discover()
}

// Plugins returns the discovered hooks, or nil when hooks are disabled.
func (a *App) Plugins() []*plugin.Plugin {
	if a.plugins == nil {
		return nil
	}
	return a.plugins.List()
}

// dispatch hands events to the hooks in the background.
func (a *App) dispatch(sessionID string, events []session.Event) {
	if a.hooks == nil {
		return
	}
	for _, e := range events {
		a.hooks.Dispatch(plugin.Request{
			Event:      string(e.Kind),
			SessionID:  sessionID,
			At:         e.At,
			Detail:     e.Detail,
			DurationMS: e.Duration.Milliseconds(),
			Score:      e.Score,
		})
	}
}

// waitHooks blocks until in-flight hook deliveries finish.
func (a *App) waitHooks() {
	if a.hooks != nil {
		a.hooks.Wait()
	}
}
