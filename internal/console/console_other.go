//go:build !windows

package console

// IsRunningFromConsole is always true outside Windows.
func IsRunningFromConsole() bool {
	return true
}

// SetupConsoleHandler is a no-op outside Windows; os/signal covers Ctrl+C.
func SetupConsoleHandler(shutdown chan struct{}) func() {
	return func() {}
}
