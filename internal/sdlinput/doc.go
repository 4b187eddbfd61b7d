// Package sdlinput reads joysticks through SDL3 and turns them into gamepad
// events.
//
// The sdl package loads libSDL3 when the program starts, so on Linux the
// reader is only built with the sdl build tag.
package sdlinput
