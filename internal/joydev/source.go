package joydev

import (
	"context"
	"log/slog"
	"sync"

	"github.com/soar/padtable/internal/gamepad"
)

// Source watches a joystick directory and emits gamepad events for every
// jsN node in it. It also serves as the device lookup for those events.
type Source struct {
	dir    string
	logger *slog.Logger
	events chan gamepad.Event

	mu      sync.RWMutex
	layouts map[gamepad.DeviceID]*Layout
}

func NewSource(dir string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		dir:     dir,
		logger:  logger.With("backend", "joydev"),
		events:  make(chan gamepad.Event, 256),
		layouts: make(map[gamepad.DeviceID]*Layout),
	}
}

// Events returns the channel on which input events are sent. It is closed
// when Run returns.
func (s *Source) Events() <-chan gamepad.Event {
	return s.events
}

func (s *Source) LookupDevice(id gamepad.DeviceID) (gamepad.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layouts[id]
	if !ok {
		return nil, false
	}
	return l, true
}

func (s *Source) DeviceIDs() []gamepad.DeviceID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]gamepad.DeviceID, 0, len(s.layouts))
	for id := range s.layouts {
		ids = append(ids, id)
	}
	return ids
}

func (s *Source) emit(ctx context.Context, ev gamepad.Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}
