// Package tray provides the system tray control surface for the headless
// whiteboard variant.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/fingerboard/internal/app"
)

// Tray is a system tray menu that drives a whiteboard session. Menu clicks
// become queued events; the session status is mirrored back into the menu.
type Tray struct {
	queue        *app.Queue
	onOpenViewer func()
	onQuit       func()
	mu           sync.RWMutex

	drawing bool
	summary string
	ready   chan struct{}

	// Menu items stored for later updates
	menuDraw   *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a tray that pushes events into q.
func New(q *app.Queue) *Tray {
	return &Tray{
		queue:   q,
		summary: summarize(app.Status{}),
		ready:   make(chan struct{}),
	}
}

// OnOpenViewer sets the callback for the "Open Viewer" menu item.
func (t *Tray) OnOpenViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenViewer = fn
}

// OnQuit sets a callback run after the quit event is queued.
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

// Ready is closed once the menu is built.
func (t *Tray) Ready() <-chan struct{} {
	return t.ready
}

// Quit removes the tray icon and makes Run return. It waits for the menu
// to be up, since an earlier quit is lost.
func (t *Tray) Quit() {
	<-t.ready
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Fingerboard")
	systray.SetTooltip("Fingerboard whiteboard")

	t.mu.Lock()
	t.menuDraw = systray.AddMenuItem(drawTitle(t.drawing), "Toggle draw mode")
	systray.AddSeparator()
	t.menuStatus = systray.AddMenuItem(t.summary, "Session status")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuClear := systray.AddMenuItem("Clear", "Clear the canvas")
	menuSave := systray.AddMenuItem("Save", "Save the canvas")
	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the live view in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Fingerboard")
	close(t.ready)

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuDraw.ClickedCh:
				t.handleToggle()
			case <-menuClear.ClickedCh:
				t.queue.Push(app.Clear())
			case <-menuSave.ClickedCh:
				t.queue.Push(app.Save())
			case <-menuViewer.ClickedCh:
				t.handleOpenViewer()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle queues a draw toggle. The menu title follows the session
// status rather than flipping locally.
func (t *Tray) handleToggle() {
	t.queue.Push(app.ToggleDraw())
}

func (t *Tray) handleOpenViewer() {
	t.mu.RLock()
	callback := t.onOpenViewer
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit queues a quit for the session and closes the tray.
func (t *Tray) handleQuit() {
	t.queue.Push(app.Quit())

	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Show implements app.Sink. Menu titles are only touched when they change.
func (t *Tray) Show(v app.View) {
	summary := summarize(v.Status)

	t.mu.Lock()
	defer t.mu.Unlock()

	if v.Status.Drawing != t.drawing {
		t.drawing = v.Status.Drawing
		if t.menuDraw != nil {
			t.menuDraw.SetTitle(drawTitle(t.drawing))
		}
	}
	if summary != t.summary {
		t.summary = summary
		if t.menuStatus != nil {
			t.menuStatus.SetTitle(summary)
		}
	}
}

// IsDrawing returns the draw mode last reported by the session.
func (t *Tray) IsDrawing() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.drawing
}

// Summary returns the status line shown in the menu.
func (t *Tray) Summary() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.summary
}

func drawTitle(drawing bool) string {
	if drawing {
		return "● Drawing"
	}
	return "○ Not drawing"
}

func summarize(st app.Status) string {
	hand := "no hand"
	if st.Hand {
		hand = "hand"
	}
	return fmt.Sprintf("%s, %d segments", hand, st.Segments)
}
