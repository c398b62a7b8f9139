// Package tray provides the system tray interface for drishti.
package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/drishti/internal/app"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle    func(enabled bool)
	onBreak     func()
	onCalibrate func()
	onOpen      func()
	onQuit      func()
	enabled     bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuFatigue *systray.MenuItem
	menuSleep   *systray.MenuItem
	menuBreak   *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnBreak sets the callback for the take-a-break menu item.
func (t *Tray) OnBreak(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onBreak = fn
}

// OnCalibrate sets the callback for the recalibrate menu item.
func (t *Tray) OnCalibrate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCalibrate = fn
}

// OnOpen sets the callback for the open-dashboard menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Drishti")
	systray.SetTooltip("Drishti attention and fatigue monitor")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleLabel(t.enabled), "Toggle monitoring")
	systray.AddSeparator()

	t.menuFatigue = systray.AddMenuItem(fatigueLabel("", 0), "Current fatigue level")
	t.menuFatigue.Disable()
	t.menuSleep = systray.AddMenuItem(sleepLabel(0), "Time asleep this session")
	t.menuSleep.Disable()
	systray.AddSeparator()

	t.menuBreak = systray.AddMenuItem(breakLabel(false), "Record a break")
	menuCalibrate := systray.AddMenuItem("Recalibrate", "Re-center head tracking on the current pose")
	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Drishti")
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuBreak.ClickedCh:
				t.call(func() func() { return t.onBreak })
			case <-menuCalibrate.ClickedCh:
				t.call(func() func() { return t.onCalibrate })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.menuToggle.SetTitle(toggleLabel(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// call runs the callback returned by get outside the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.call(func() func() { return t.onQuit })
	systray.Quit()
}

// Update refreshes the menu from the application status.
func (t *Tray) Update(st app.Status) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuFatigue == nil {
		return
	}

	level, score := "", 0
	if st.Last != nil && st.Last.FaceDetected {
		level, score = string(st.Last.Fatigue.Level), st.Last.Fatigue.Score
	}
	t.menuFatigue.SetTitle(fatigueLabel(level, score))
	t.menuSleep.SetTitle(sleepLabel(st.SleepTotal))
	t.menuBreak.SetTitle(breakLabel(st.BreakDue))

	if st.BreakDue {
		systray.SetTitle("Drishti ⚠")
	} else {
		systray.SetTitle("Drishti")
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleLabel(enabled bool) string {
	if enabled {
		return "● Monitoring"
	}
	return "○ Paused"
}

func fatigueLabel(level string, score int) string {
	if level == "" {
		return "Fatigue: no face"
	}
	return fmt.Sprintf("Fatigue: %s (%d)", level, score)
}

func sleepLabel(d time.Duration) string {
	return "Asleep: " + d.Round(time.Second).String()
}

func breakLabel(due bool) string {
	if due {
		return "Break due: take a break"
	}
	return "Take a break"
}
