//go:build sdl || !linux

package sdlinput

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/padtable/internal/gamepad"
	"github.com/soar/padtable/internal/padmap"
	padlog "github.com/soar/padtable/internal/log"
)

const pollDelayNS = 16_000_000 // ~60Hz

// ErrInit is returned by Run when SDL cannot be loaded or initialized.
var ErrInit = errors.New("sdl init failed")

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *padmap.DeviceMapping
	name     string
	id       sdl.JoystickID
	buttons  int32
	last     gamepad.AxisValues
	polled   bool
}

// Sources reports every SDL joystick as a joystick, and as a gamepad too
// when its layout is known.
func (j *joystickInfo) Sources() gamepad.Source {
	s := gamepad.SourceJoystick
	if j.mapping.Known || j.buttons >= 4 {
		s |= gamepad.SourceGamepad
	}
	return s
}

// Reader reads input from the SDL3 Joystick API and emits gamepad events.
// It also serves as the device lookup for those events.
type Reader struct {
	// OnInit runs on the SDL thread right after SDL initializes.
	OnInit func()

	deadzone  float64
	logger    *slog.Logger
	events    chan gamepad.Event
	mu        sync.RWMutex
	joysticks map[sdl.JoystickID]*joystickInfo
}

func NewReader(deadzone float64, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		deadzone:  deadzone,
		logger:    logger.With("backend", "sdl"),
		events:    make(chan gamepad.Event, 256),
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
	}
}

// Events returns the channel on which input events are sent. It is closed
// when Run returns.
func (r *Reader) Events() <-chan gamepad.Event {
	return r.events
}

func (r *Reader) LookupDevice(id gamepad.DeviceID) (gamepad.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.joysticks[sdl.JoystickID(id)]
	if !ok {
		return nil, false
	}
	return info, true
}

func (r *Reader) DeviceIDs() []gamepad.DeviceID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]gamepad.DeviceID, 0, len(r.joysticks))
	for id := range r.joysticks {
		ids = append(ids, gamepad.DeviceID(id))
	}
	return ids
}

// Run initializes SDL and runs the event and polling loop on a locked OS
// thread until ctx is cancelled.
func (r *Reader) Run(ctx context.Context) error {
	defer close(r.events)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("%w: %s", ErrInit, sdl.GetError())
	}
	defer sdl.Quit()

	r.logger.Info("SDL3 joystick subsystem initialized")
	if r.OnInit != nil {
		r.OnInit()
	}

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(ctx, id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		default:
		}

		r.processEvents(ctx)
		r.pollAxes(ctx)
		sdl.DelayNS(pollDelayNS)
	}
}

func (r *Reader) emit(ctx context.Context, ev gamepad.Event) {
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}

func (r *Reader) processEvents(ctx context.Context) {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(ctx, event.JDevice().Which)

		case sdl.EventJoystickRemoved:
			r.removeJoystick(ctx, event.JDevice().Which)

		case sdl.EventJoystickButtonDown, sdl.EventJoystickButtonUp:
			be := event.JButton()
			r.mu.RLock()
			info, ok := r.joysticks[be.Which]
			r.mu.RUnlock()
			if !ok {
				continue
			}
			code, ok := info.mapping.ButtonCode(int32(be.Button))
			if !ok {
				r.logger.Log(ctx, padlog.LevelTrace, "unmapped button", "index", be.Button, "joystick", be.Which)
				continue
			}
			action := gamepad.KeyUp
			if event.Type() == sdl.EventJoystickButtonDown {
				action = gamepad.KeyDown
			}
			r.emit(ctx, gamepad.Key(gamepad.KeyEvent{
				Device: gamepad.DeviceID(be.Which),
				Code:   code,
				Action: action,
			}))
		}
	}
}

func (r *Reader) openJoystick(ctx context.Context, instanceID sdl.JoystickID) {
	r.mu.RLock()
	_, exists := r.joysticks[instanceID]
	r.mu.RUnlock()
	if exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		r.logger.Warn("failed to open joystick", "joystick", instanceID, "err", sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := padmap.GetMapping(vendorID, productID)

	r.mu.Lock()
	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
		buttons:  sdl.GetNumJoystickButtons(js),
	}
	r.mu.Unlock()

	r.logger.Info("joystick connected",
		"name", name,
		"vid", fmt.Sprintf("%04X", vendorID),
		"pid", fmt.Sprintf("%04X", productID),
		"mapping", mapping.Name,
		"axes", sdl.GetNumJoystickAxes(js),
		"buttons", sdl.GetNumJoystickButtons(js),
		"hats", sdl.GetNumJoystickHats(js))

	r.emit(ctx, gamepad.AddedEvent(gamepad.DeviceID(jsID)))
}

func (r *Reader) removeJoystick(ctx context.Context, instanceID sdl.JoystickID) {
	r.mu.RLock()
	info, exists := r.joysticks[instanceID]
	r.mu.RUnlock()
	if !exists {
		return
	}

	r.logger.Info("joystick disconnected", "name", info.name)
	r.emit(ctx, gamepad.RemovedEvent(gamepad.DeviceID(instanceID)))

	r.mu.Lock()
	delete(r.joysticks, instanceID)
	r.mu.Unlock()
	sdl.CloseJoystick(info.joystick)
}

func (r *Reader) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
}

// pollAxes emits a motion event for every joystick whose analog state
// changed since the previous poll.
func (r *Reader) pollAxes(ctx context.Context) {
	r.mu.RLock()
	infos := make([]*joystickInfo, 0, len(r.joysticks))
	for _, info := range r.joysticks {
		infos = append(infos, info)
	}
	r.mu.RUnlock()

	for _, info := range infos {
		js := info.joystick
		if !sdl.JoystickConnected(js) {
			continue
		}

		var hat uint8
		if info.mapping.HasHat && sdl.GetNumJoystickHats(js) > 0 {
			hat = sdl.GetJoystickHat(js, 0)
		}
		numAxes := sdl.GetNumJoystickAxes(js)
		values := padmap.ReadAxes(info.mapping, func(index int32) (int16, bool) {
			if index >= numAxes {
				return 0, false
			}
			return sdl.GetJoystickAxis(js, index), true
		}, hat, r.deadzone)

		if info.polled && values == info.last {
			continue
		}
		info.last = values
		info.polled = true

		r.emit(ctx, gamepad.Motion(gamepad.MotionEvent{
			Device: gamepad.DeviceID(info.id),
			Source: gamepad.SourceJoystick,
			Axes:   values,
		}))
	}
}
