//go:build !linux

package joydev

import "context"

// Run fails immediately outside Linux.
func (s *Source) Run(ctx context.Context) error {
	close(s.events)
	return ErrUnsupported
}
