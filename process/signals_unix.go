//go:build unix

package process

import (
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

var (
	defaultGraceful os.Signal = unix.SIGTERM
	defaultForcible os.Signal = unix.SIGKILL
)

func lookupSignal(name string) (os.Signal, bool) {
	if n, err := strconv.Atoi(name); err == nil {
		sig := syscall.Signal(n)
		if n <= 0 || unix.SignalName(sig) == "" {
			return nil, false
		}
		return sig, true
	}
	name = strings.ToUpper(name)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	sig := unix.SignalNum(name)
	if sig == 0 {
		return nil, false
	}
	return sig, true
}

func signalName(sig os.Signal) string {
	if s, ok := sig.(syscall.Signal); ok {
		if name := unix.SignalName(s); name != "" {
			return name
		}
	}
	return sig.String()
}

func isUncatchable(sig os.Signal) bool {
	return sig == unix.SIGKILL
}

// configureGroup starts the child as the leader of a new process group so
// the whole group can be signalled through the negative pid.
func configureGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// resume continues the child's process group if it was stopped, e.g. by
// SIGTTIN after reading the terminal from the background.
func (t target) resume() {
	_ = unix.Kill(-t.pid, unix.SIGCONT)
}

// signal delivers sig to the child's process group.
func (t target) signal(sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return errSignalUnsupported
	}

	err := unix.Kill(-t.pid, s)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return errProcessGone
	case errors.Is(err, unix.EPERM):
		// Darwin reports EPERM for a group whose leader is a zombie.
		switch perr := unix.Kill(t.pid, s); {
		case perr == nil:
			return nil
		case errors.Is(perr, unix.ESRCH):
			return errProcessGone
		}
	}
	return err
}
