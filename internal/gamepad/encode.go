package gamepad

import "math"

// Source is a bit set of input capabilities a device declares.
type Source uint32

const (
	SourceKeyboard Source = 1 << iota
	SourceDpad
	SourceGamepad
	SourceJoystick
	SourceMouse
	SourceTouchscreen
)

// Has reports whether every bit of o is present in s.
func (s Source) Has(o Source) bool {
	return s&o == o
}

// Device is the capability surface an input backend exposes for one device.
type Device interface {
	Sources() Source
}

// DeviceLookup resolves device handles to their capabilities.
type DeviceLookup interface {
	LookupDevice(id DeviceID) (Device, bool)
	DeviceIDs() []DeviceID
}

// Classify reports whether d belongs in the table.
func Classify(d Device) bool {
	if d == nil {
		return false
	}
	src := d.Sources()
	return src.Has(SourceGamepad) || src.Has(SourceJoystick)
}

// KeyCode is a Linux input-event key code.
type KeyCode uint16

const (
	KeyBack      KeyCode = 158
	BtnSouth     KeyCode = 0x130
	BtnEast      KeyCode = 0x131
	BtnC         KeyCode = 0x132
	BtnNorth     KeyCode = 0x133
	BtnWest      KeyCode = 0x134
	BtnZ         KeyCode = 0x135
	BtnTL        KeyCode = 0x136
	BtnTR        KeyCode = 0x137
	BtnTL2       KeyCode = 0x138
	BtnTR2       KeyCode = 0x139
	BtnSelect    KeyCode = 0x13a
	BtnStart     KeyCode = 0x13b
	BtnMode      KeyCode = 0x13c
	BtnThumbL    KeyCode = 0x13d
	BtnThumbR    KeyCode = 0x13e
	BtnDpadUp    KeyCode = 0x220
	BtnDpadDown  KeyCode = 0x221
	BtnDpadLeft  KeyCode = 0x222
	BtnDpadRight KeyCode = 0x223
)

// The kernel names the face buttons by compass position; BTN_NORTH is X and
// BTN_WEST is Y on most pads.
var keyBits = map[KeyCode]Button{
	BtnSouth:     ButtonA,
	BtnEast:      ButtonB,
	BtnNorth:     ButtonX,
	BtnWest:      ButtonY,
	BtnTL:        ButtonLeftShoulder,
	BtnTR:        ButtonRightShoulder,
	BtnSelect:    ButtonBack,
	KeyBack:      ButtonBack,
	BtnStart:     ButtonStart,
	BtnMode:      ButtonGuide,
	BtnThumbL:    ButtonLeftStick,
	BtnThumbR:    ButtonRightStick,
	BtnDpadUp:    ButtonDpadUp,
	BtnDpadDown:  ButtonDpadDown,
	BtnDpadLeft:  ButtonDpadLeft,
	BtnDpadRight: ButtonDpadRight,
}

// KeyBit maps a key code to its canonical button.
func KeyBit(code KeyCode) (Button, bool) {
	b, ok := keyBits[code]
	return b, ok
}

const hatThreshold = 0.5

// HatToDpad converts a hat axis pair to D-pad bits. Negative Y is up.
func HatToDpad(hatX, hatY float32) uint16 {
	var bits uint16
	if hatY < -hatThreshold {
		bits |= ButtonDpadUp.Mask()
	}
	if hatY > hatThreshold {
		bits |= ButtonDpadDown.Mask()
	}
	if hatX < -hatThreshold {
		bits |= ButtonDpadLeft.Mask()
	}
	if hatX > hatThreshold {
		bits |= ButtonDpadRight.Mask()
	}
	return bits
}

// AxisMax is the largest stored axis magnitude.
const AxisMax = math.MaxInt16

// ScaleAxis converts a nominal [-1, 1] reading to fixed point, truncating
// toward zero and clamping to [-AxisMax, AxisMax].
func ScaleAxis(v float32) int16 {
	x := float64(v) * AxisMax
	switch {
	case math.IsNaN(x):
		return 0
	case x >= AxisMax:
		return AxisMax
	case x <= -AxisMax:
		return -AxisMax
	}
	return int16(x)
}

// AxisMask records which axes a backend actually reports.
type AxisMask uint16

const (
	HasLeftStick AxisMask = 1 << iota
	HasRightStick
	HasTriggerL
	HasTriggerR
	HasBrake
	HasGas
	HasHat
)

// AxisValues is one motion reading for a device, each axis nominally in [-1, 1].
type AxisValues struct {
	LeftX, LeftY   float32
	RightX, RightY float32
	TriggerL       float32
	TriggerR       float32
	// Brake and Gas stand in for the triggers on some controllers.
	Brake, Gas float32
	HatX, HatY float32

	// Present is zero when the backend cannot tell which axes exist.
	Present AxisMask
}

func (v *AxisValues) triggers() (l, r float32) {
	l = pickTrigger(v.TriggerL, v.Brake, v.Present, HasTriggerL, HasBrake)
	r = pickTrigger(v.TriggerR, v.Gas, v.Present, HasTriggerR, HasGas)
	return l, r
}

// pickTrigger prefers the primary trigger axis when the backend declares it
// and uses the alternate only when the primary is missing. Without a declared
// mask a reading of exactly zero falls through to the alternate.
func pickTrigger(primary, alt float32, present, primaryBit, altBit AxisMask) float32 {
	if present == 0 {
		if primary == 0 {
			return alt
		}
		return primary
	}
	if present&primaryBit != 0 {
		return primary
	}
	if present&altBit != 0 {
		return alt
	}
	return 0
}

// encode writes the scaled stick and trigger values in table order.
func (v *AxisValues) encode() [AxisCount]int16 {
	l, r := v.triggers()
	return [AxisCount]int16{
		AxisLeftX:    ScaleAxis(v.LeftX),
		AxisLeftY:    ScaleAxis(v.LeftY),
		AxisRightX:   ScaleAxis(v.RightX),
		AxisRightY:   ScaleAxis(v.RightY),
		AxisTriggerL: ScaleAxis(l),
		AxisTriggerR: ScaleAxis(r),
	}
}
