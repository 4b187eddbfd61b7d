//go:build linux

package joydev

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Joystick ioctls from linux/joystick.h.
const (
	absCnt      = 0x40
	btnMapLen   = 0x2ff - 0x100 + 1 // KEY_MAX - BTN_MISC + 1
	nameLen     = 128
	jsiocgAxes  = 0x80016a11
	jsiocgBtns  = 0x80016a12
	jsiocgName  = 0x80006a13 | nameLen<<16
	jsiocgAxMap = 0x80006a32 | absCnt<<16
	jsiocgBtMap = 0x80006a34 | (btnMapLen*2)<<16
)

type device struct {
	path   string
	file   *os.File
	layout Layout
}

func ioctl(fd uintptr, req uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

// openDevice opens a joystick node and queries its layout. The file stays
// registered with the runtime poller so Close unblocks a pending read.
func openDevice(path string) (*device, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}

	var layout Layout
	rc, err := f.SyscallConn()
	if err != nil {
		f.Close()
		return nil, err
	}
	var qerr error
	err = rc.Control(func(fd uintptr) {
		qerr = queryLayout(fd, &layout)
	})
	if err == nil {
		err = qerr
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	return &device{path: path, file: f, layout: layout}, nil
}

func queryLayout(fd uintptr, l *Layout) error {
	var n [1]byte
	if err := ioctl(fd, jsiocgAxes, n[:]); err != nil {
		return fmt.Errorf("axes: %w", err)
	}
	axes := int(n[0])
	if err := ioctl(fd, jsiocgBtns, n[:]); err != nil {
		return fmt.Errorf("buttons: %w", err)
	}
	buttons := int(n[0])

	axmap := make([]byte, absCnt)
	if err := ioctl(fd, jsiocgAxMap, axmap); err != nil {
		return fmt.Errorf("axis map: %w", err)
	}
	btnmap := make([]byte, btnMapLen*2)
	if err := ioctl(fd, jsiocgBtMap, btnmap); err != nil {
		return fmt.Errorf("button map: %w", err)
	}

	name := make([]byte, nameLen)
	if err := ioctl(fd, jsiocgName, name); err == nil {
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		l.Name = string(name)
	}

	l.Axes = parseAxisMap(axmap, axes)
	l.Buttons = parseButtonMap(btnmap, buttons)
	return nil
}

// readLoop decodes events until the device is closed or unplugged.
func (d *device) readLoop(handle func(RawEvent)) error {
	buf := make([]byte, EventSize*64)
	for {
		n, err := d.file.Read(buf)
		for off := 0; off+EventSize <= n; off += EventSize {
			ev, derr := DecodeEvent(buf[off : off+EventSize])
			if derr != nil {
				break
			}
			handle(ev)
		}
		if err != nil {
			if errors.Is(err, os.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, unix.ENODEV) {
				return nil
			}
			return err
		}
	}
}

func (d *device) Close() error {
	return d.file.Close()
}
