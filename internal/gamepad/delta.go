package gamepad

// SlotDelta describes what changed in one occupied slot. A nil field is
// unchanged.
type SlotDelta struct {
	Index    int               `json:"index"`
	DeviceID DeviceID          `json:"deviceId"`
	Buttons  *uint16           `json:"buttons,omitempty"`
	Axes     *[AxisCount]int16 `json:"axes,omitempty"`
}

// DeltaChanges is the difference between two snapshots.
type DeltaChanges struct {
	Count   *int        `json:"count,omitempty"`
	Removed []DeviceID  `json:"removed,omitempty"`
	Slots   []SlotDelta `json:"slots,omitempty"`
}

func (d *DeltaChanges) IsEmpty() bool {
	return d.Count == nil && len(d.Removed) == 0 && len(d.Slots) == 0
}

// analogThreshold is about 1% of full scale; smaller axis changes are not
// reported in deltas.
const analogThreshold = 328

func axesEqual(a, b [AxisCount]int16) bool {
	for i := range a {
		diff := int(a[i]) - int(b[i])
		if diff >= analogThreshold || diff <= -analogThreshold {
			return false
		}
	}
	return true
}

// ComputeDelta reports how new_ differs from old. Slots are matched by device
// so a slot that moved during compaction is reported at its new index.
func ComputeDelta(old, new_ *Snapshot) *DeltaChanges {
	d := &DeltaChanges{}

	if old.Count != new_.Count {
		n := new_.Count
		d.Count = &n
	}

	for _, prev := range old.Slots() {
		if _, ok := new_.Find(prev.DeviceID); !ok {
			d.Removed = append(d.Removed, prev.DeviceID)
		}
	}

	for i, cur := range new_.Slots() {
		sd := SlotDelta{Index: i, DeviceID: cur.DeviceID}
		j, ok := old.Find(cur.DeviceID)
		if !ok || j != i {
			buttons, axes := cur.Buttons, cur.Axes
			sd.Buttons, sd.Axes = &buttons, &axes
			d.Slots = append(d.Slots, sd)
			continue
		}
		prev := old.Pads[j]
		if prev.Buttons != cur.Buttons {
			buttons := cur.Buttons
			sd.Buttons = &buttons
		}
		if !axesEqual(prev.Axes, cur.Axes) {
			axes := cur.Axes
			sd.Axes = &axes
		}
		if sd.Buttons != nil || sd.Axes != nil {
			d.Slots = append(d.Slots, sd)
		}
	}

	return d
}

// ForPlayer narrows the delta to one 1-based player slot. Zero keeps every
// slot.
func (d *DeltaChanges) ForPlayer(player int) *DeltaChanges {
	if player <= 0 {
		return d
	}
	out := &DeltaChanges{Count: d.Count, Removed: d.Removed}
	for _, sd := range d.Slots {
		if sd.Index == player-1 {
			out.Slots = append(out.Slots, sd)
		}
	}
	return out
}
