package padmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soar/padtable/internal/gamepad"
)

func TestGetMapping(t *testing.T) {
	type testCase struct {
		name      string
		vid, pid  uint16
		wantName  string
		wantKnown bool
	}

	cases := []testCase{
		{name: "xbox series", vid: 0x045E, pid: 0x0B12, wantName: "xbox", wantKnown: true},
		{name: "dualsense", vid: 0x054C, pid: 0x0CE6, wantName: "playstation", wantKnown: true},
		{name: "switch pro", vid: 0x057E, pid: 0x2009, wantName: "switch_pro", wantKnown: true},
		{name: "unknown", vid: 0x1234, pid: 0x5678, wantName: "generic", wantKnown: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := GetMapping(tc.vid, tc.pid)
			assert.Equal(t, tc.wantName, m.Name)
			assert.Equal(t, tc.wantKnown, m.Known)
		})
	}
}

func TestButtonCode(t *testing.T) {
	code, ok := playstationMapping.ButtonCode(5)
	assert.True(t, ok)
	assert.Equal(t, gamepad.BtnMode, code)

	code, ok = xboxMapping.ButtonCode(0)
	assert.True(t, ok)
	assert.Equal(t, gamepad.BtnSouth, code)

	_, ok = xboxMapping.ButtonCode(42)
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	assert.InDelta(t, 1.0, NormalizeAxis(32767), 1e-9)
	assert.InDelta(t, -1.0, NormalizeAxis(-32768), 1e-9)
	assert.InDelta(t, 0.0, NormalizeAxis(0), 1e-9)

	assert.InDelta(t, 0.0, NormalizeTrigger(-32768, -32768, 32767), 1e-9)
	assert.InDelta(t, 1.0, NormalizeTrigger(32767, -32768, 32767), 1e-9)
	assert.InDelta(t, 0.5, NormalizeTrigger(16384, 0, 32767), 1e-4)
	assert.InDelta(t, 0.0, NormalizeTrigger(-5, 0, 32767), 1e-9, "clamped")
	assert.Zero(t, NormalizeTrigger(100, 7, 7))

	assert.Zero(t, ApplyDeadzone(0.04, 0.05))
	assert.InDelta(t, -0.3, ApplyDeadzone(-0.3, 0.05), 1e-9)
}

func TestHatAxes(t *testing.T) {
	type testCase struct {
		hat  uint8
		x, y float32
	}

	cases := []testCase{
		{hat: 0},
		{hat: hatUp, y: -1},
		{hat: hatDown, y: 1},
		{hat: hatLeft, x: -1},
		{hat: hatRight, x: 1},
		{hat: hatUp | hatRight, x: 1, y: -1},
	}

	for _, tc := range cases {
		x, y := hatAxes(tc.hat)
		assert.Equal(t, tc.x, x, "hat 0x%02X", tc.hat)
		assert.Equal(t, tc.y, y, "hat 0x%02X", tc.hat)
	}
}

func TestReadAxes(t *testing.T) {
	raw := map[int32]int16{
		0: 32767,
		1: -32768,
		2: 1000, // inside deadzone
		3: 0,
		4: -32768, // trigger released
		5: 32767,  // trigger fully pressed
	}
	read := func(i int32) (int16, bool) {
		v, ok := raw[i]
		return v, ok
	}

	v := ReadAxes(xboxMapping, read, hatDown, 0.05)
	assert.InDelta(t, 1.0, v.LeftX, 1e-6)
	assert.InDelta(t, -1.0, v.LeftY, 1e-6)
	assert.Zero(t, v.RightX)
	assert.Zero(t, v.TriggerL)
	assert.InDelta(t, 1.0, v.TriggerR, 1e-6)
	assert.Equal(t, float32(1), v.HatY)
	assert.Equal(t, gamepad.HasLeftStick|gamepad.HasRightStick|gamepad.HasTriggerL|gamepad.HasTriggerR|gamepad.HasHat, v.Present)
}

func TestReadAxesMissingAxes(t *testing.T) {
	read := func(i int32) (int16, bool) {
		if i >= 4 {
			return 0, false
		}
		return 0, true
	}

	v := ReadAxes(genericMapping, read, 0, 0.05)
	assert.Zero(t, v.TriggerL, "absent trigger must not read as half pressed")
	assert.Zero(t, v.TriggerR)
	assert.Equal(t, gamepad.HasLeftStick|gamepad.HasRightStick|gamepad.HasHat, v.Present)
}
