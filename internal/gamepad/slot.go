package gamepad

// MaxSlots is the number of gamepads the table tracks at once.
const MaxSlots = 4

// AxisCount is the number of analog axes stored per slot.
const AxisCount = 6

// DeviceID is the opaque handle the input layer assigns to a device.
type DeviceID uint32

// Axis indexes into Slot.Axes.
type Axis int

const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisTriggerL
	AxisTriggerR
)

// Button is a bit position in the canonical button mask.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonBack
	ButtonStart
	ButtonGuide
	ButtonLeftStick
	ButtonRightStick
	ButtonDpadUp
	ButtonDpadDown
	ButtonDpadLeft
	ButtonDpadRight

	buttonCount
)

// DpadMask covers bits 11-14.
const DpadMask uint16 = 0xF << ButtonDpadUp

var buttonNames = [buttonCount]string{
	"a", "b", "x", "y", "lb", "rb", "back", "start", "guide", "l3", "r3",
	"up", "down", "left", "right",
}

// Mask returns the single-bit mask for b.
func (b Button) Mask() uint16 {
	return 1 << b
}

func (b Button) String() string {
	if b < buttonCount {
		return buttonNames[b]
	}
	return "unknown"
}

// Slot is one tracked controller.
type Slot struct {
	DeviceID DeviceID         `json:"deviceId"`
	Buttons  uint16           `json:"buttons"`
	Axes     [AxisCount]int16 `json:"axes"`
}

// Pressed reports whether b is set in the slot's mask.
func (s Slot) Pressed(b Button) bool {
	return s.Buttons&b.Mask() != 0
}

// Snapshot is a point-in-time copy of every occupied slot.
type Snapshot struct {
	// Seq increases with every mutation applied to the table.
	Seq   uint64
	Count int
	Pads  [MaxSlots]Slot
}

// Slots returns the occupied prefix of the snapshot.
func (s *Snapshot) Slots() []Slot {
	return s.Pads[:s.Count]
}

// Find returns the index of id within the snapshot.
func (s *Snapshot) Find(id DeviceID) (int, bool) {
	for i := 0; i < s.Count; i++ {
		if s.Pads[i].DeviceID == id {
			return i, true
		}
	}
	return -1, false
}
