// Package console decides whether the process owns a terminal and installs
// a Ctrl+C handler that keeps working after SDL takes over the console.
package console

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole          = kernel32.NewProc("AllocConsole")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	ctrlCEvent     = 0
	ctrlBreakEvent = 1
)

// IsRunningFromConsole reports whether output has a terminal to go to.
//
// A console build that was double-clicked frees its auto-created console
// and reports false. A GUI build started from a terminal allocates its own
// console window and rebinds the standard streams.
func IsRunningFromConsole() bool {
	fromExplorer := launchedFromExplorer()

	if hasConsoleWindow() {
		if fromExplorer {
			procFreeConsole.Call()
			return false
		}
		return true
	}
	if fromExplorer {
		return false
	}

	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func hasConsoleWindow() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

// redirectStdStreams rebinds os.Std* after a console was allocated.
func redirectStdStreams() {
	stdout, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil || stdout == 0 {
		return
	}
	stderr, err := windows.GetStdHandle(windows.STD_ERROR_HANDLE)
	if err != nil || stderr == 0 {
		return
	}
	os.Stdout = os.NewFile(uintptr(stdout), "/dev/stdout")
	os.Stderr = os.NewFile(uintptr(stderr), "/dev/stderr")
	if stdin, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE); err == nil && stdin != 0 {
		os.Stdin = os.NewFile(uintptr(stdin), "/dev/stdin")
	}
}

func launchedFromExplorer() bool {
	ppid, ok := parentPID(uint32(os.Getpid()))
	if !ok {
		return false
	}
	name, ok := imageName(ppid)
	if !ok {
		return false
	}
	return isExplorer(name)
}

func parentPID(pid uint32) (uint32, bool) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, false
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		if entry.ProcessID == pid {
			return entry.ParentProcessID, true
		}
	}
	return 0, false
}

func imageName(pid uint32) (string, bool) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", false
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", false
	}
	return windows.UTF16ToString(buf[:size]), true
}

func isExplorer(path string) bool {
	return strings.EqualFold(filepath.Base(strings.ReplaceAll(path, `\`, "/")), "explorer.exe")
}

var (
	handlerOnce sync.Once
	handlerCb   uintptr
	shutdownCh  chan struct{}
	closeOnce   sync.Once
)

// SetupConsoleHandler closes shutdown on Ctrl+C or Ctrl+Break. The returned
// function re-registers the handler; call it after SDL initialization since
// SDL installs its own.
func SetupConsoleHandler(shutdown chan struct{}) func() {
	shutdownCh = shutdown
	handlerOnce.Do(func() {
		handlerCb = windows.NewCallback(func(ctrlType uint32) uintptr {
			if ctrlType != ctrlCEvent && ctrlType != ctrlBreakEvent {
				return 0
			}
			closeOnce.Do(func() { close(shutdownCh) })
			return 1
		})
	})

	register := func() {
		if ret, _, err := procSetConsoleCtrlHandler.Call(handlerCb, 1); ret == 0 {
			slog.Warn("failed to set console control handler", "err", err)
		}
	}
	register()
	return register
}
