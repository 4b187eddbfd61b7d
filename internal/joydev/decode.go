// Package joydev reads gamepads through the Linux joystick interface
// (/dev/input/jsN) and turns them into gamepad events.
package joydev

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/soar/padtable/internal/gamepad"
)

var (
	ErrUnsupported = errors.New("joydev is only available on linux")
	ErrShortEvent  = errors.New("short joystick event")
)

// Event types of struct js_event.
const (
	eventButton uint8 = 0x01
	eventAxis   uint8 = 0x02
	eventInit   uint8 = 0x80
)

// EventSize is sizeof(struct js_event).
const EventSize = 8

// RawEvent is one struct js_event.
type RawEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

func (e RawEvent) IsInit() bool   { return e.Type&eventInit != 0 }
func (e RawEvent) IsButton() bool { return e.Type&^eventInit == eventButton }
func (e RawEvent) IsAxis() bool   { return e.Type&^eventInit == eventAxis }

// DecodeEvent decodes a js_event in host byte order.
func DecodeEvent(b []byte) (RawEvent, error) {
	if len(b) < EventSize {
		return RawEvent{}, fmt.Errorf("%w: %d bytes", ErrShortEvent, len(b))
	}
	return RawEvent{
		Time:   binary.NativeEndian.Uint32(b[0:4]),
		Value:  int16(binary.NativeEndian.Uint16(b[4:6])),
		Type:   b[6],
		Number: b[7],
	}, nil
}

// AbsCode is a Linux ABS_* axis code as reported by JSIOCGAXMAP.
type AbsCode uint8

const (
	AbsX     AbsCode = 0x00
	AbsY     AbsCode = 0x01
	AbsZ     AbsCode = 0x02
	AbsRX    AbsCode = 0x03
	AbsRY    AbsCode = 0x04
	AbsRZ    AbsCode = 0x05
	AbsGas   AbsCode = 0x09
	AbsBrake AbsCode = 0x0a
	AbsHat0X AbsCode = 0x10
	AbsHat0Y AbsCode = 0x11
)

// absMax is the joydev axis range after calibration.
const absMax = 32767

// Layout describes a joystick as reported by the driver.
type Layout struct {
	Name    string
	Axes    []AbsCode
	Buttons []gamepad.KeyCode
}

// Sources classifies the device. Anything with two sticks worth of axes and
// a face button cluster counts as a gamepad.
func (l *Layout) Sources() gamepad.Source {
	s := gamepad.SourceJoystick
	if len(l.Axes) >= 4 && len(l.Buttons) >= 4 {
		s |= gamepad.SourceGamepad
	}
	return s
}

// Present is the set of axes the device declares.
func (l *Layout) Present() gamepad.AxisMask {
	var m gamepad.AxisMask
	for _, a := range l.Axes {
		switch a {
		case AbsX, AbsY:
			m |= gamepad.HasLeftStick
		case AbsRX, AbsRY:
			m |= gamepad.HasRightStick
		case AbsZ:
			m |= gamepad.HasTriggerL
		case AbsRZ:
			m |= gamepad.HasTriggerR
		case AbsBrake:
			m |= gamepad.HasBrake
		case AbsGas:
			m |= gamepad.HasGas
		case AbsHat0X, AbsHat0Y:
			m |= gamepad.HasHat
		}
	}
	return m
}

func normalize(v int16) float32 {
	return float32(v) / absMax
}

// triggerValue remaps a joydev trigger, which rests at -32767, to [0, 1].
func triggerValue(v int16) float32 {
	return (normalize(v) + 1) / 2
}

// deviceState caches the last value of every axis so that each motion event
// carries a complete reading.
type deviceState struct {
	id     gamepad.DeviceID
	layout *Layout
	axes   gamepad.AxisValues
}

func newDeviceState(id gamepad.DeviceID, l *Layout) *deviceState {
	return &deviceState{id: id, layout: l, axes: gamepad.AxisValues{Present: l.Present()}}
}

// apply converts a raw event into a gamepad event. Events for unmapped
// buttons or axes the table does not track are dropped.
func (s *deviceState) apply(ev RawEvent) (gamepad.Event, bool) {
	switch {
	case ev.IsButton():
		if int(ev.Number) >= len(s.layout.Buttons) {
			return gamepad.Event{}, false
		}
		action := gamepad.KeyUp
		if ev.Value != 0 {
			action = gamepad.KeyDown
		}
		return gamepad.Key(gamepad.KeyEvent{
			Device: s.id,
			Code:   s.layout.Buttons[ev.Number],
			Action: action,
		}), true

	case ev.IsAxis():
		if int(ev.Number) >= len(s.layout.Axes) {
			return gamepad.Event{}, false
		}
		v := &s.axes
		switch s.layout.Axes[ev.Number] {
		case AbsX:
			v.LeftX = normalize(ev.Value)
		case AbsY:
			v.LeftY = normalize(ev.Value)
		case AbsRX:
			v.RightX = normalize(ev.Value)
		case AbsRY:
			v.RightY = normalize(ev.Value)
		case AbsZ:
			v.TriggerL = triggerValue(ev.Value)
		case AbsRZ:
			v.TriggerR = triggerValue(ev.Value)
		case AbsBrake:
			v.Brake = triggerValue(ev.Value)
		case AbsGas:
			v.Gas = triggerValue(ev.Value)
		case AbsHat0X:
			v.HatX = normalize(ev.Value)
		case AbsHat0Y:
			v.HatY = normalize(ev.Value)
		default:
			return gamepad.Event{}, false
		}
		return gamepad.Motion(gamepad.MotionEvent{
			Device: s.id,
			Source: gamepad.SourceJoystick,
			Axes:   *v,
		}), true
	}
	return gamepad.Event{}, false
}

// ParseNode extracts N from a jsN device node name.
func ParseNode(name string) (gamepad.DeviceID, bool) {
	rest, ok := strings.CutPrefix(name, "js")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return 0, false
	}
	return gamepad.DeviceID(n), true
}

// parseButtonMap turns a JSIOCGBTNMAP result into key codes.
func parseButtonMap(raw []byte, count int) []gamepad.KeyCode {
	codes := make([]gamepad.KeyCode, 0, count)
	for i := 0; i < count && 2*i+1 < len(raw); i++ {
		codes = append(codes, gamepad.KeyCode(binary.NativeEndian.Uint16(raw[2*i:])))
	}
	return codes
}

// parseAxisMap turns a JSIOCGAXMAP result into axis codes.
func parseAxisMap(raw []byte, count int) []AbsCode {
	count = min(count, len(raw))
	codes := make([]AbsCode, count)
	for i := range count {
		codes[i] = AbsCode(raw[i])
	}
	return codes
}
