package gamepad

import (
	"context"
	"log/slog"
)

// Aggregator applies input backend notifications to a Table. Its methods are
// meant to be called from one producer goroutine; the Table itself handles
// concurrency with consumers.
type Aggregator struct {
	table   *Table
	devices DeviceLookup
	logger  *slog.Logger
}

func NewAggregator(t *Table, devices DeviceLookup, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{table: t, devices: devices, logger: logger}
}

// Scan adds every gamepad the backend already knows about.
func (a *Aggregator) Scan() {
	for _, id := range a.devices.DeviceIDs() {
		a.DeviceAdded(id)
	}
}

func (a *Aggregator) DeviceAdded(id DeviceID) {
	d, ok := a.devices.LookupDevice(id)
	if !ok || !Classify(d) {
		a.logger.Debug("ignoring non-gamepad device", "device", id)
		return
	}
	a.add(id)
}

func (a *Aggregator) DeviceRemoved(id DeviceID) {
	if i, ok := a.table.Remove(id); ok {
		a.logger.Info("gamepad removed", "device", id, "slot", i)
	}
}

// DeviceChanged re-evaluates a device whose capabilities may have changed.
func (a *Aggregator) DeviceChanged(id DeviceID) {
	a.table.Remove(id)
	a.DeviceAdded(id)
}

// HandleMotion applies an analog reading and reports whether it was consumed.
func (a *Aggregator) HandleMotion(ev MotionEvent) bool {
	if !a.track(ev.Device) {
		return false
	}
	if !ev.Source.Has(SourceJoystick) {
		return false
	}
	a.table.UpdateAxes(ev.Device, ev.Axes)
	return true
}

// HandleKey applies a key transition and reports whether it was consumed.
func (a *Aggregator) HandleKey(ev KeyEvent) bool {
	if !a.track(ev.Device) {
		return false
	}
	b, ok := KeyBit(ev.Code)
	if !ok {
		return false
	}
	switch ev.Action {
	case KeyDown:
		a.table.UpdateButtons(ev.Device, b, true)
	case KeyUp:
		a.table.UpdateButtons(ev.Device, b, false)
	}
	return true
}

// Apply dispatches ev and reports whether it was consumed.
func (a *Aggregator) Apply(ev Event) bool {
	switch ev.Type {
	case DeviceAddedEvent:
		a.DeviceAdded(ev.Device)
	case DeviceRemovedEvent:
		a.DeviceRemoved(ev.Device)
	case DeviceChangedEvent:
		a.DeviceChanged(ev.Device)
	case MotionEventType:
		return a.HandleMotion(ev.Motion)
	case KeyEventType:
		return a.HandleKey(ev.Key)
	}
	return true
}

// Run adds the devices the backend already knows, then applies events in
// arrival order until ctx is done or events is closed. Devices announced both
// ways are added once.
func (a *Aggregator) Run(ctx context.Context, events <-chan Event) {
	a.Scan()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.Apply(ev)
		}
	}
}

// track makes sure a device that sends input is in the table, adding it on
// first sight if it classifies as a gamepad.
func (a *Aggregator) track(id DeviceID) bool {
	if _, ok := a.table.IndexOf(id); ok {
		return true
	}
	d, ok := a.devices.LookupDevice(id)
	if !ok || !Classify(d) {
		return false
	}
	return a.add(id)
}

func (a *Aggregator) add(id DeviceID) bool {
	if _, ok := a.table.IndexOf(id); ok {
		return true
	}
	i, ok := a.table.Add(id)
	if !ok {
		a.logger.Debug("gamepad table full, device not tracked", "device", id, "max", MaxSlots)
		return false
	}
	a.logger.Info("gamepad added", "device", id, "slot", i)
	return true
}
