//go:build !linux

package process

import "errors"

var errPeekUnsupported = errors.New("non-reaping wait not supported")

// peekExit is unavailable here; the launcher reaps the child to observe its
// exit and the group sweep becomes best effort.
func peekExit(int) error {
	return errPeekUnsupported
}
