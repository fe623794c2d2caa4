package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/kbukum/watchdog/logger"
)

// child is a started command. The launcher owns it: only the launcher waits
// on and reaps it.
type child struct {
	cmd    *exec.Cmd
	pid    int
	exited chan struct{}
	log    *logger.Logger

	// set by watch before exited is closed when it had to reap
	waited  bool
	waitErr error
}

// launch starts cmd in a new process group and begins observing its exit.
func launch(cmd Command, grace time.Duration, stdout, stderr io.Writer, log *logger.Logger) (*child, error) {
	c := exec.Command(cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)
	c.Stdin = cmd.Stdin
	c.Stdout = stdout
	c.Stderr = stderr
	configureGroup(c)
	c.WaitDelay = grace

	if err := c.Start(); err != nil {
		return nil, &LaunchError{Binary: cmd.Binary, Err: err}
	}

	ch := &child{
		cmd:    c,
		pid:    c.Process.Pid,
		exited: make(chan struct{}),
		log:    log,
	}
	go ch.watch()
	return ch, nil
}

func (c *child) target() target {
	return target{pid: c.pid, proc: c.cmd.Process}
}

// watch closes exited once the child has exited. Where the platform allows
// it the child is left unreaped so its group id stays reserved for the sweep.
func (c *child) watch() {
	defer close(c.exited)
	if err := peekExit(c.pid); err == nil {
		return
	}
	c.waitErr = c.cmd.Wait()
	c.waited = true
}

// sweep sends sig to whatever is left of the child's process group.
func (c *child) sweep(sig os.Signal) {
	err := c.target().signal(sig)
	switch {
	case err == nil:
		c.log.Debug("process group swept", logger.Fields(logger.FieldSignal, SignalName(sig)))
	case errors.Is(err, errProcessGone):
	default:
		c.log.Warn("process group sweep failed", logger.ErrorFields("sweep", err))
	}
}

// killDirect kills the child through its handle and waits up to limit for
// it to exit. It is the fallback when group signalling failed.
func (c *child) killDirect(limit time.Duration) bool {
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		c.log.Error("direct kill failed", logger.ErrorFields("kill", err))
	}
	t := time.NewTimer(limit)
	defer t.Stop()
	select {
	case <-c.exited:
		return true
	case <-t.C:
		return false
	}
}

// reap collects the exit status. It must only run after exited is closed.
func (c *child) reap() (int, error) {
	<-c.exited
	if !c.waited {
		c.waitErr = c.cmd.Wait()
		c.waited = true
	}

	err := c.waitErr
	var exitErr *exec.ExitError
	switch {
	case err == nil, errors.As(err, &exitErr):
		err = nil
	case errors.Is(err, exec.ErrWaitDelay):
		c.log.Warn("output not closed within grace period", logger.Fields(logger.FieldPID, c.pid))
		err = nil
	}

	ps := c.cmd.ProcessState
	if ps == nil {
		return -1, err
	}
	return exitCode(ps), err
}

func exitCode(ps *os.ProcessState) int {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ps.ExitCode()
}
