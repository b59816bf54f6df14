package runner

import (
	"context"
	"os"
	"time"
)

// Outcome reports how the supervisor saw an action end.
type Outcome int

const (
	// Completed means the process exited on its own.
	Completed Outcome = iota
	// TimedOut means the deadline elapsed and the process was terminated.
	TimedOut
	// Cancelled means the caller's context ended and the process was terminated.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timeout"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// waitResult is what the single cmd.Wait call produced.
type waitResult struct {
	state *os.ProcessState
	err   error
}

// supervise races process exit against the deadline and ctx. When the
// process has to be stopped it is asked to terminate, then killed after
// grace. supervise returns only once the process has been reaped.
func supervise(ctx context.Context, p *process, timeout, grace time.Duration, exited <-chan waitResult) (Outcome, waitResult) {
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	var outcome Outcome
	select {
	case res := <-exited:
		return Completed, res
	case <-deadline:
		outcome = TimedOut
	case <-ctx.Done():
		outcome = Cancelled
	}

	// The process may have exited in the same instant.
	select {
	case res := <-exited:
		return Completed, res
	default:
	}
	return outcome, p.terminate(grace, exited)
}

func (p *process) terminate(grace time.Duration, exited <-chan waitResult) waitResult {
	_ = requestStop(p.cmd.Process)

	t := time.NewTimer(grace)
	defer t.Stop()
	select {
	case res := <-exited:
		// Sweep descendants that ignored the first signal.
		_ = forceStop(p.cmd.Process)
		return res
	case <-t.C:
	}
	_ = forceStop(p.cmd.Process)
	return <-exited
}
