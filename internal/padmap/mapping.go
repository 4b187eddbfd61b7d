// Package padmap maps raw joystick indices of known controllers to gamepad
// key codes and normalized axes. It has no dependency on an input library.
package padmap

import (
	"math"

	"github.com/soar/padtable/internal/gamepad"
)

// AxisTarget names the AxisValues field a raw axis feeds.
type AxisTarget uint8

const (
	TargetLeftX AxisTarget = iota
	TargetLeftY
	TargetRightX
	TargetRightY
	TargetTriggerL
	TargetTriggerR
)

// AxisMapping defines how a raw axis index maps to a normalized axis.
type AxisMapping struct {
	Index     int32
	Target    AxisTarget
	IsTrigger bool
	Invert    bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping maps a raw button index to the key code the table understands.
type ButtonMapping struct {
	Index int32
	Code  gamepad.KeyCode
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
	// Known is false for the generic fallback.
	Known bool
}

// ButtonCode returns the key code for a raw button index.
func (m *DeviceMapping) ButtonCode(index int32) (gamepad.KeyCode, bool) {
	for _, bm := range m.Buttons {
		if bm.Index == index {
			return bm.Code, true
		}
	}
	return 0, false
}

func (t AxisTarget) present() gamepad.AxisMask {
	switch t {
	case TargetLeftX, TargetLeftY:
		return gamepad.HasLeftStick
	case TargetRightX, TargetRightY:
		return gamepad.HasRightStick
	case TargetTriggerL:
		return gamepad.HasTriggerL
	case TargetTriggerR:
		return gamepad.HasTriggerR
	}
	return 0
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	return min(max(v, 0), 1)
}

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
func ApplyDeadzone(v float64, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

// hatAxes converts an SDL-style hat bitmask to a hat axis pair. Up is negative Y.
func hatAxes(hat uint8) (x, y float32) {
	if hat&hatLeft != 0 {
		x = -1
	} else if hat&hatRight != 0 {
		x = 1
	}
	if hat&hatUp != 0 {
		y = -1
	} else if hat&hatDown != 0 {
		y = 1
	}
	return x, y
}

// ReadAxes builds a full motion reading from raw axis values. raw reports
// false for axes the device does not have; those stay out of Present.
func ReadAxes(m *DeviceMapping, raw func(index int32) (int16, bool), hat uint8, deadzone float64) gamepad.AxisValues {
	var v gamepad.AxisValues
	for _, am := range m.Axes {
		r, ok := raw(am.Index)
		if !ok {
			continue
		}
		v.Present |= am.Target.present()
		var f float64
		if am.IsTrigger {
			f = ApplyDeadzone(NormalizeTrigger(r, am.RawMin, am.RawMax), deadzone)
		} else {
			f = NormalizeAxis(r)
			if am.Invert {
				f = -f
			}
			f = ApplyDeadzone(f, deadzone)
		}
		switch am.Target {
		case TargetLeftX:
			v.LeftX = float32(f)
		case TargetLeftY:
			v.LeftY = float32(f)
		case TargetRightX:
			v.RightX = float32(f)
		case TargetRightY:
			v.RightY = float32(f)
		case TargetTriggerL:
			v.TriggerL = float32(f)
		case TargetTriggerR:
			v.TriggerR = float32(f)
		}
	}
	if m.HasHat {
		v.Present |= gamepad.HasHat
		v.HatX, v.HatY = hatAxes(hat)
	}
	return v
}

// Built-in mappings for common controllers.

var standardAxes = []AxisMapping{
	{Index: 0, Target: TargetLeftX},
	{Index: 1, Target: TargetLeftY},
	{Index: 2, Target: TargetRightX},
	{Index: 3, Target: TargetRightY},
	{Index: 4, Target: TargetTriggerL, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	{Index: 5, Target: TargetTriggerR, IsTrigger: true, RawMin: -32768, RawMax: 32767},
}

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Code: gamepad.BtnSouth},
		{Index: 1, Code: gamepad.BtnEast},
		{Index: 2, Code: gamepad.BtnNorth},
		{Index: 3, Code: gamepad.BtnWest},
		{Index: 4, Code: gamepad.BtnTL},
		{Index: 5, Code: gamepad.BtnTR},
		{Index: 6, Code: gamepad.BtnSelect},
		{Index: 7, Code: gamepad.BtnStart},
		{Index: 8, Code: gamepad.BtnThumbL},
		{Index: 9, Code: gamepad.BtnThumbR},
		{Index: 10, Code: gamepad.BtnMode},
	},
	HasHat: true,
	Known:  true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Code: gamepad.BtnSouth},  // Cross
		{Index: 1, Code: gamepad.BtnEast},   // Circle
		{Index: 2, Code: gamepad.BtnNorth},  // Square
		{Index: 3, Code: gamepad.BtnWest},   // Triangle
		{Index: 4, Code: gamepad.BtnSelect}, // Share / Create
		{Index: 5, Code: gamepad.BtnMode},   // PS button
		{Index: 6, Code: gamepad.BtnStart},  // Options
		{Index: 7, Code: gamepad.BtnThumbL},
		{Index: 8, Code: gamepad.BtnThumbR},
		{Index: 9, Code: gamepad.BtnTL},  // L1
		{Index: 10, Code: gamepad.BtnTR}, // R1
	},
	HasHat: true,
	Known:  true,
}

var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: standardAxes[:4],
	Buttons: []ButtonMapping{
		{Index: 0, Code: gamepad.BtnSouth},
		{Index: 1, Code: gamepad.BtnEast},
		{Index: 2, Code: gamepad.BtnNorth},
		{Index: 3, Code: gamepad.BtnWest},
		{Index: 4, Code: gamepad.BtnTL},
		{Index: 5, Code: gamepad.BtnTR},
		{Index: 6, Code: gamepad.BtnSelect},
		{Index: 7, Code: gamepad.BtnStart},
		{Index: 8, Code: gamepad.BtnThumbL},
		{Index: 9, Code: gamepad.BtnThumbR},
		{Index: 10, Code: gamepad.BtnMode},
	},
	HasHat: true,
	Known:  true,
}

var genericMapping = &DeviceMapping{
	Name:    "generic",
	Axes:    standardAxes,
	Buttons: xboxMapping.Buttons,
	HasHat:  true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the mapping for a vendor/product pair, falling back to
// the generic layout.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	if m, ok := knownDevices[deviceKey{VendorID: vendorID, ProductID: productID}]; ok {
		return m
	}
	return genericMapping
}
