package gamepad

type EventType uint8

const (
	DeviceAddedEvent EventType = iota
	DeviceRemovedEvent
	DeviceChangedEvent
	MotionEventType
	KeyEventType
)

func (t EventType) String() string {
	switch t {
	case DeviceAddedEvent:
		return "added"
	case DeviceRemovedEvent:
		return "removed"
	case DeviceChangedEvent:
		return "changed"
	case MotionEventType:
		return "motion"
	case KeyEventType:
		return "key"
	}
	return "unknown"
}

// KeyAction is the phase of a key event.
type KeyAction uint8

const (
	KeyDown KeyAction = iota
	KeyUp
	// KeyMultiple is a repeated or batched key report; it never changes state.
	KeyMultiple
)

// MotionEvent carries a full analog reading for one device.
type MotionEvent struct {
	Device DeviceID
	Source Source
	Axes   AxisValues
}

// KeyEvent carries a single key transition.
type KeyEvent struct {
	Device DeviceID
	Code   KeyCode
	Action KeyAction
}

// Event is what input backends deliver. Motion and Key are only read for
// the matching Type.
type Event struct {
	Type   EventType
	Device DeviceID
	Motion MotionEvent
	Key    KeyEvent
}

func AddedEvent(id DeviceID) Event   { return Event{Type: DeviceAddedEvent, Device: id} }
func RemovedEvent(id DeviceID) Event { return Event{Type: DeviceRemovedEvent, Device: id} }
func ChangedEvent(id DeviceID) Event { return Event{Type: DeviceChangedEvent, Device: id} }

func Motion(ev MotionEvent) Event {
	return Event{Type: MotionEventType, Device: ev.Device, Motion: ev}
}

func Key(ev KeyEvent) Event {
	return Event{Type: KeyEventType, Device: ev.Device, Key: ev}
}
