package process

import (
	"io"
	"os"
	"time"
)

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// Stdout and Stderr receive the child's output. When nil, the output is
	// captured into the Outcome instead.
	Stdout io.Writer
	Stderr io.Writer
	// GracePeriod overrides the grace period between the graceful and the
	// forcible signal for this command. Zero uses the configured default.
	GracePeriod time.Duration
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
