// Package process runs a single external command under a deadline and
// guarantees that the command, and every process sharing its process group,
// is gone by the time the call returns.
//
// A run has two concurrent parties. The launcher starts the child in its own
// process group and observes its exit. The watchdog waits for the deadline
// and then escalates:
//
//	running --deadline--> grace_period --grace elapsed--> force_killed
//	   \                       \                              \
//	    `--------------------- exited <------------------------'
//
// On the deadline the graceful signal (SIGTERM by default) is sent to the
// group. If the child is still alive when the grace period elapses, the
// forcible signal (SIGKILL) follows and the watchdog blocks until the OS
// confirms the exit. A signal sent to a process that has already exited is
// not an error.
//
// The simplest entry point mirrors a plain call:
//
//	code, err := process.CallWithTimeout([]string{"make", "test"}, time.Minute)
//	var te *process.TimeoutExceeded
//	if errors.As(err, &te) {
//		// te.Signal is the signal that finally stopped the command.
//	}
//
// Run returns the full Outcome with captured output, and Supervisor applies
// a validated Config to every run. The core never retries; Runner adds opt-in
// retry and circuit breaking on top of a Supervisor.
package process
