// Package tray shows a system tray icon with a menu to open the viewer or
// quit.
package tray

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// ShutdownFunc is called when "Exit" is clicked.
type ShutdownFunc func()

type Tray struct {
	url          string
	shutdownFunc ShutdownFunc
	logger       *slog.Logger
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuExit     *systray.MenuItem
}

func New(url string, shutdownFn ShutdownFunc, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		url:          url,
		shutdownFunc: shutdownFn,
		logger:       logger,
	}
}

// Run shows the tray icon and blocks until Quit is called.
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, t.onExit)
}

// Quit removes the tray icon. It is safe to call when shutdown starts
// elsewhere.
func (t *Tray) Quit() {
	if t.shuttingDown.CompareAndSwap(false, true) {
		systray.Quit()
	}
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("padtable")
	systray.SetTooltip("padtable - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open Viewer", "Open the web viewer")
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	go t.handleMenuClicks()

	t.logger.Info("system tray initialized")
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.logger.Info("system tray exiting")
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	}
	return "xdg-open", []string{url}
}

func (t *Tray) openBrowser() {
	name, args := browserCommand(runtime.GOOS, t.url)
	if err := exec.Command(name, args...).Start(); err != nil {
		t.logger.Warn("failed to open browser", "url", t.url, "err", err)
	}
}
