package joydev

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padtable/internal/gamepad"
)

func rawEvent(typ, number uint8, value int16) []byte {
	b := make([]byte, EventSize)
	binary.NativeEndian.PutUint32(b[0:4], 1234)
	binary.NativeEndian.PutUint16(b[4:6], uint16(value))
	b[6] = typ
	b[7] = number
	return b
}

var xpadLayout = Layout{
	Name: "Microsoft X-Box 360 pad",
	Axes: []AbsCode{AbsX, AbsY, AbsZ, AbsRX, AbsRY, AbsRZ, AbsHat0X, AbsHat0Y},
	Buttons: []gamepad.KeyCode{
		gamepad.BtnSouth, gamepad.BtnEast, gamepad.BtnNorth, gamepad.BtnWest,
		gamepad.BtnTL, gamepad.BtnTR, gamepad.BtnSelect, gamepad.BtnStart,
		gamepad.BtnMode, gamepad.BtnThumbL, gamepad.BtnThumbR,
	},
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent(rawEvent(eventAxis|eventInit, 3, -32767))
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), ev.Time)
	assert.Equal(t, int16(-32767), ev.Value)
	assert.Equal(t, uint8(3), ev.Number)
	assert.True(t, ev.IsAxis())
	assert.True(t, ev.IsInit())
	assert.False(t, ev.IsButton())

	_, err = DecodeEvent(make([]byte, 5))
	assert.ErrorIs(t, err, ErrShortEvent)
}

func TestLayoutClassification(t *testing.T) {
	assert.True(t, xpadLayout.Sources().Has(gamepad.SourceGamepad))
	assert.Equal(t,
		gamepad.HasLeftStick|gamepad.HasRightStick|gamepad.HasTriggerL|gamepad.HasTriggerR|gamepad.HasHat,
		xpadLayout.Present())

	flightStick := Layout{Axes: []AbsCode{AbsX, AbsY, AbsGas}, Buttons: make([]gamepad.KeyCode, 8)}
	assert.Equal(t, gamepad.SourceJoystick, flightStick.Sources())
	assert.Equal(t, gamepad.HasLeftStick|gamepad.HasGas, flightStick.Present())
}

func TestDeviceStateButtons(t *testing.T) {
	s := newDeviceState(2, &xpadLayout)

	ev, ok := s.apply(RawEvent{Type: eventButton, Number: 0, Value: 1})
	require.True(t, ok)
	assert.Equal(t, gamepad.KeyEventType, ev.Type)
	assert.Equal(t, gamepad.KeyEvent{Device: 2, Code: gamepad.BtnSouth, Action: gamepad.KeyDown}, ev.Key)

	ev, ok = s.apply(RawEvent{Type: eventButton | eventInit, Number: 8, Value: 0})
	require.True(t, ok)
	assert.Equal(t, gamepad.KeyEvent{Device: 2, Code: gamepad.BtnMode, Action: gamepad.KeyUp}, ev.Key)

	_, ok = s.apply(RawEvent{Type: eventButton, Number: 40, Value: 1})
	assert.False(t, ok, "button outside the map")
}

func TestDeviceStateAxesAccumulate(t *testing.T) {
	s := newDeviceState(0, &xpadLayout)

	_, ok := s.apply(RawEvent{Type: eventAxis, Number: 0, Value: 32767})
	require.True(t, ok)
	ev, ok := s.apply(RawEvent{Type: eventAxis, Number: 2, Value: -32767})
	require.True(t, ok)

	assert.Equal(t, gamepad.MotionEventType, ev.Type)
	assert.True(t, ev.Motion.Source.Has(gamepad.SourceJoystick))
	assert.InDelta(t, 1.0, ev.Motion.Axes.LeftX, 1e-6, "earlier axis kept")
	assert.InDelta(t, 0.0, ev.Motion.Axes.TriggerL, 1e-6, "released trigger")
	assert.Equal(t, xpadLayout.Present(), ev.Motion.Axes.Present)

	ev, _ = s.apply(RawEvent{Type: eventAxis, Number: 5, Value: 32767})
	assert.InDelta(t, 1.0, ev.Motion.Axes.TriggerR, 1e-6)

	ev, _ = s.apply(RawEvent{Type: eventAxis, Number: 7, Value: -32767})
	assert.Equal(t, float32(-1), ev.Motion.Axes.HatY)
	assert.Equal(t, gamepad.ButtonDpadUp.Mask(), gamepad.HatToDpad(ev.Motion.Axes.HatX, ev.Motion.Axes.HatY))
}

func TestDeviceStateThroughTable(t *testing.T) {
	table := gamepad.NewTable()
	table.Add(0)
	s := newDeviceState(0, &xpadLayout)

	ev, ok := s.apply(RawEvent{Type: eventAxis, Number: 4, Value: -32767})
	require.True(t, ok)
	table.UpdateAxes(ev.Device, ev.Motion.Axes)

	snap := table.Snapshot()
	assert.Equal(t, int16(-32767), snap.Pads[0].Axes[gamepad.AxisRightY])
	assert.Zero(t, snap.Pads[0].Axes[gamepad.AxisTriggerL], "trigger at rest")
}

func TestParseNode(t *testing.T) {
	type testCase struct {
		name string
		id   gamepad.DeviceID
		ok   bool
	}

	cases := []testCase{
		{name: "js0", id: 0, ok: true},
		{name: "js12", id: 12, ok: true},
		{name: "js", ok: false},
		{name: "event3", ok: false},
		{name: "jsx", ok: false},
	}

	for _, tc := range cases {
		id, ok := ParseNode(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.id, id, tc.name)
	}
}

func TestParseMaps(t *testing.T) {
	btn := make([]byte, 8)
	binary.NativeEndian.PutUint16(btn[0:], uint16(gamepad.BtnSouth))
	binary.NativeEndian.PutUint16(btn[2:], uint16(gamepad.BtnDpadUp))
	assert.Equal(t, []gamepad.KeyCode{gamepad.BtnSouth, gamepad.BtnDpadUp}, parseButtonMap(btn, 2))

	ax := []byte{0x00, 0x01, 0x10, 0x11, 0, 0}
	assert.Equal(t, []AbsCode{AbsX, AbsY, AbsHat0X}, parseAxisMap(ax, 3))
	assert.Len(t, parseAxisMap(ax, 100), len(ax))
}
