//go:build linux

package joydev

import (
	"errors"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

type nodeOp uint8

const (
	nodeAdded nodeOp = iota
	nodeRemoved
	nodeChanged
)

type nodeEvent struct {
	op   nodeOp
	name string
}

// watcher reports jsN nodes appearing and disappearing in a directory.
type watcher struct {
	file *os.File
}

func newWatcher(dir string) (*watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, os.NewSyscallError("inotify_init1", err)
	}
	mask := uint32(unix.IN_CREATE | unix.IN_DELETE | unix.IN_ATTRIB | unix.IN_MOVED_TO | unix.IN_MOVED_FROM)
	if _, err := unix.InotifyAddWatch(fd, dir, mask); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("inotify_add_watch", err)
	}
	return &watcher{file: os.NewFile(uintptr(fd), filepath.Join(dir, "inotify"))}, nil
}

// run sends node events until the watcher is closed.
func (w *watcher) run(out chan<- nodeEvent, done <-chan struct{}) error {
	buf := make([]byte, 4096)
	for {
		n, err := w.file.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
		for off := 0; off+unix.SizeofInotifyEvent <= n; {
			raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[off]))
			nameStart := off + unix.SizeofInotifyEvent
			nameEnd := nameStart + int(raw.Len)
			if nameEnd > n {
				break
			}
			name := cString(buf[nameStart:nameEnd])
			off = nameEnd

			if _, ok := ParseNode(name); !ok {
				continue
			}
			ev := nodeEvent{name: name}
			switch {
			case raw.Mask&(unix.IN_CREATE|unix.IN_MOVED_TO) != 0:
				ev.op = nodeAdded
			case raw.Mask&(unix.IN_DELETE|unix.IN_MOVED_FROM) != 0:
				ev.op = nodeRemoved
			case raw.Mask&unix.IN_ATTRIB != 0:
				ev.op = nodeChanged
			default:
				continue
			}
			select {
			case out <- ev:
			case <-done:
				return nil
			}
		}
	}
}

func (w *watcher) Close() error {
	return w.file.Close()
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
