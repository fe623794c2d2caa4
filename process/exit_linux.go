//go:build linux

package process

import (
	"errors"

	"golang.org/x/sys/unix"
)

// peekExit blocks until pid has exited without reaping it. The zombie keeps
// the pid and its process group id reserved until cmd.Wait runs.
func peekExit(pid int) error {
	var info unix.Siginfo
	for {
		err := unix.Waitid(unix.P_PID, pid, &info, unix.WEXITED|unix.WNOWAIT, nil)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
