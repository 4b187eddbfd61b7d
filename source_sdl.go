//go:build sdl || !linux

package main

import (
	"log/slog"

	"github.com/soar/padtable/internal/config"
	"github.com/soar/padtable/internal/sdlinput"
)

const sdlAvailable = true

func newSDLSource(cfg *config.Config, reregister func(), logger *slog.Logger) (inputSource, error) {
	r := sdlinput.NewReader(cfg.Input.Deadzone, logger)
	// SDL replaces the console control handler during init.
	r.OnInit = reregister
	return r, nil
}
