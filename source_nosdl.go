//go:build linux && !sdl

package main

import (
	"log/slog"

	"github.com/soar/padtable/internal/config"
)

const sdlAvailable = false

func newSDLSource(*config.Config, func(), *slog.Logger) (inputSource, error) {
	return nil, errNoSDL
}
