package gamepad

import "sync"

// Table holds the state of every tracked gamepad.
//
// Producers mutate it from the goroutine that receives OS input while a
// render or broadcast loop calls Snapshot once per tick. Every method takes
// the same mutex and does a bounded amount of work over at most MaxSlots
// entries, so the consumer is never held up for more than a short copy.
type Table struct {
	mu    sync.Mutex
	reg   registry
	slots [MaxSlots]Slot
	seq   uint64
}

func NewTable() *Table {
	return &Table{reg: newRegistry()}
}

// Add starts tracking id and returns its slot index. Adding a tracked device
// returns its current index. It reports false when all slots are taken.
func (t *Table) Add(id DeviceID) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.reg.lookup(id); ok {
		return i, true
	}
	i, ok := t.reg.register(id)
	if !ok {
		return -1, false
	}
	t.slots[i] = Slot{DeviceID: id}
	t.seq++
	return i, true
}

// Remove stops tracking id and shifts every later slot down by one so the
// occupied slots stay contiguous. It returns the index id used to occupy.
func (t *Table) Remove(id DeviceID) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.reg.unregister(id)
	if !ok {
		return -1, false
	}
	for j := i + 1; j < t.reg.count; j++ {
		t.slots[j-1] = t.slots[j]
		t.reg.move(t.slots[j-1].DeviceID, j-1)
	}
	t.reg.count--
	t.slots[t.reg.count] = Slot{}
	t.seq++
	return i, true
}

// UpdateButtons sets or clears one button bit. Untracked devices are ignored.
func (t *Table) UpdateButtons(id DeviceID, b Button, pressed bool) {
	if b >= buttonCount {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.reg.lookup(id)
	if !ok {
		return
	}
	old := t.slots[i].Buttons
	if pressed {
		t.slots[i].Buttons |= b.Mask()
	} else {
		t.slots[i].Buttons &^= b.Mask()
	}
	if t.slots[i].Buttons != old {
		t.seq++
	}
}

// UpdateAxes stores a full motion reading: all six axes plus the D-pad bits
// derived from the hat. Untracked devices are ignored.
func (t *Table) UpdateAxes(id DeviceID, v AxisValues) {
	// Scaling happens before taking the lock.
	axes := v.encode()
	dpad := HatToDpad(v.HatX, v.HatY)

	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.reg.lookup(id)
	if !ok {
		return
	}
	s := &t.slots[i]
	buttons := s.Buttons&^DpadMask | dpad
	if s.Axes == axes && s.Buttons == buttons {
		return
	}
	s.Axes = axes
	s.Buttons = buttons
	t.seq++
}

// Snapshot copies the occupied slots as they are at this instant.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Snapshot{
		Seq:   t.seq,
		Count: t.reg.count,
		Pads:  t.slots,
	}
}

// IndexOf returns the slot currently assigned to id.
func (t *Table) IndexOf(id DeviceID) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reg.lookup(id)
}

// Len returns the number of occupied slots.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reg.count
}
