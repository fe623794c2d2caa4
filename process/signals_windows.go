//go:build windows

package process

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

var (
	defaultGraceful os.Signal = os.Interrupt
	defaultForcible os.Signal = os.Kill
)

func lookupSignal(name string) (os.Signal, bool) {
	switch strings.TrimPrefix(strings.ToUpper(name), "SIG") {
	case "INT", "INTERRUPT", "2":
		return os.Interrupt, true
	case "KILL", "9":
		return os.Kill, true
	}
	return nil, false
}

func signalName(sig os.Signal) string {
	switch sig {
	case os.Interrupt:
		return "SIGINT"
	case os.Kill:
		return "SIGKILL"
	}
	return sig.String()
}

func isUncatchable(sig os.Signal) bool {
	return sig == os.Kill
}

func configureGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// resume is a no-op: Windows processes are not stopped by job control.
func (t target) resume() {}

// signal delivers sig to the direct child. Windows has no group signals, so
// descendants are only reached when they exit with their parent.
func (t target) signal(sig os.Signal) error {
	var err error
	if sig == os.Kill {
		err = t.proc.Kill()
	} else {
		err = t.proc.Signal(sig)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrProcessDone):
		return errProcessGone
	case sig != os.Kill:
		return errSignalUnsupported
	}
	return err
}
