// Package resilience holds the retry and circuit breaker policies a caller
// can put around repeated supervised runs.
//
// The supervisor itself never retries. A caller that wants a command re-run
// after a timeout, or wants to stop launching a command that keeps failing,
// composes these explicitly (see process.Runner):
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("nightly-export"))
//	out, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (*process.Outcome, error) {
//	    var out *process.Outcome
//	    err := cb.Execute(func() error {
//	        var err error
//	        out, err = sup.Run(ctx, cmd)
//	        return err
//	    })
//	    return out, err
//	})
package resilience
