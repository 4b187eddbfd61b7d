//go:build linux

package joydev

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/soar/padtable/internal/gamepad"
)

// Run opens the joysticks already present, then follows hot-plug until ctx
// is cancelled.
func (s *Source) Run(ctx context.Context) error {
	defer close(s.events)

	w, err := newWatcher(s.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	nodes := make(chan nodeEvent, 16)
	go func() {
		if err := w.run(nodes, ctx.Done()); err != nil {
			s.logger.Error("watcher stopped", "err", err)
		}
	}()

	r := &runner{Source: s, open: make(map[gamepad.DeviceID]*device)}
	defer r.closeAll()
	defer w.Close()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", s.dir, err)
	}
	for _, e := range entries {
		if id, ok := ParseNode(e.Name()); ok {
			r.add(ctx, id, filepath.Join(s.dir, e.Name()))
		}
	}
	s.logger.Info("watching joystick devices", "dir", s.dir, "open", len(r.open))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ne := <-nodes:
			id, _ := ParseNode(ne.name)
			switch ne.op {
			case nodeAdded, nodeChanged:
				// udev fixes permissions after creating the node.
				r.add(ctx, id, filepath.Join(s.dir, ne.name))
			case nodeRemoved:
				r.remove(ctx, id, nil)
			}
		}
	}
}

// runner tracks open device files. Only the Run goroutine adds; reader
// goroutines may remove.
type runner struct {
	*Source
	mu   sync.Mutex
	open map[gamepad.DeviceID]*device
	wg   sync.WaitGroup
}

func (r *runner) isOpen(id gamepad.DeviceID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.open[id]
	return ok
}

func (r *runner) add(ctx context.Context, id gamepad.DeviceID, path string) {
	if r.isOpen(id) {
		return
	}

	d, err := openDevice(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			r.logger.Debug("joystick not readable yet", "path", path)
		} else {
			r.logger.Warn("failed to open joystick", "path", path, "err", err)
		}
		return
	}

	r.mu.Lock()
	r.open[id] = d
	r.mu.Unlock()
	r.Source.mu.Lock()
	r.layouts[id] = &d.layout
	r.Source.mu.Unlock()

	r.logger.Info("joystick connected",
		"path", path,
		"name", d.layout.Name,
		"axes", len(d.layout.Axes),
		"buttons", len(d.layout.Buttons))
	r.emit(ctx, gamepad.AddedEvent(id))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		state := newDeviceState(id, &d.layout)
		err := d.readLoop(func(ev RawEvent) {
			if out, ok := state.apply(ev); ok {
				r.emit(ctx, out)
			}
		})
		if err != nil {
			r.logger.Warn("joystick read failed", "path", path, "err", err)
		}
		r.remove(ctx, id, d)
	}()
}

// remove closes the device registered under id. When d is non-nil it only
// acts if d is still the registered device.
func (r *runner) remove(ctx context.Context, id gamepad.DeviceID, d *device) {
	r.mu.Lock()
	cur, ok := r.open[id]
	if !ok || (d != nil && cur != d) {
		r.mu.Unlock()
		return
	}
	delete(r.open, id)
	r.mu.Unlock()

	r.Source.mu.Lock()
	delete(r.layouts, id)
	r.Source.mu.Unlock()

	cur.Close()
	r.logger.Info("joystick disconnected", "path", cur.path)
	r.emit(ctx, gamepad.RemovedEvent(id))
}

func (r *runner) closeAll() {
	r.mu.Lock()
	for id, d := range r.open {
		d.Close()
		delete(r.open, id)
	}
	r.mu.Unlock()
	r.wg.Wait()

	r.Source.mu.Lock()
	clear(r.layouts)
	r.Source.mu.Unlock()
}
