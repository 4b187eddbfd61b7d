package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/padtable/internal/config"
	"github.com/soar/padtable/internal/console"
	"github.com/soar/padtable/internal/gamepad"
	"github.com/soar/padtable/internal/hub"
	"github.com/soar/padtable/internal/joydev"
	padlog "github.com/soar/padtable/internal/log"
	"github.com/soar/padtable/internal/server"
	"github.com/soar/padtable/internal/tray"
)

// inputSource is an input backend: it reports devices and emits their events.
type inputSource interface {
	gamepad.DeviceLookup
	Events() <-chan gamepad.Event
	Run(ctx context.Context) error
}

func main() {
	os.Exit(run())
}

var errNoSDL = errors.New("sdl backend not built in (rebuild with -tags sdl)")

// newSource picks the input backend. It returns a nil source for
// BackendNone.
func newSource(cfg *config.Config, reregister func(), logger *slog.Logger) (inputSource, error) {
	backend := cfg.Input.Backend
	if backend == config.BackendAuto {
		backend = config.BackendSDL
		if runtime.GOOS == "linux" {
			if _, err := os.Stat(cfg.Input.Path); err == nil || !sdlAvailable {
				backend = config.BackendJoydev
			}
		}
	}

	switch backend {
	case config.BackendJoydev:
		return joydev.NewSource(cfg.Input.Path, logger), nil
	case config.BackendSDL:
		return newSDLSource(cfg, reregister, logger)
	}
	return nil, nil
}

func run() int {
	cfg, err := config.Load("padtable", os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	hasConsole := console.IsRunningFromConsole()

	logger, closers, err := padlog.SetupLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	consoleShutdown := make(chan struct{})
	reregister := console.SetupConsoleHandler(consoleShutdown)

	table := gamepad.NewTable()

	h := hub.NewHub(logger)
	go h.Run(ctx)

	broadcaster := hub.NewBroadcaster(h, table, cfg.Tick, cfg.FullSync, logger)
	go broadcaster.Run(ctx)

	srv, err := server.New(h, broadcaster, table, frontendFS(), cfg.Addr, logger)
	if err != nil {
		logger.Error("server setup failed", "err", err)
		return 1
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	src, err := newSource(cfg, reregister, logger)
	if err != nil {
		logger.Error("input backend unavailable", "backend", cfg.Input.Backend, "err", err)
	}
	inputDone := make(chan struct{})
	if src != nil {
		agg := gamepad.NewAggregator(table, src, logger)
		go agg.Run(ctx, src.Events())
		go func() {
			defer close(inputDone)
			if err := src.Run(ctx); err != nil {
				logger.Error("input backend stopped", "err", err)
			}
		}()
	} else {
		logger.Warn("no input backend, serving an empty table")
		close(inputDone)
	}

	trayExit := make(chan struct{})
	var t *tray.Tray
	if cfg.Tray && runtime.GOOS == "windows" {
		t = tray.New(cfg.URL(), func() { close(trayExit) }, logger)
		go t.Run(tray.Icon())
	} else if hasConsole {
		logger.Info("press Ctrl+C to exit")
	}

	logger.Info("padtable started", "url", cfg.URL())

	code := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-consoleShutdown:
		logger.Info("shutting down")
	case <-trayExit:
		logger.Info("shutdown requested from tray")
	case err := <-serverErrCh:
		logger.Error("HTTP server error", "err", err)
		code = 1
	}
	cancel()
	if t != nil {
		t.Quit()
	}

	<-inputDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "err", err)
	}

	logger.Info("padtable stopped")
	return code
}
