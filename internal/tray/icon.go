package tray

import _ "embed"

//go:embed icon.ico
var iconData []byte

// Icon returns the embedded tray icon.
func Icon() []byte {
	return iconData
}
