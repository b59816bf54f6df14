package runner

import "os"

// KilledExitCode is reported when the process did not exit on its own:
// it was killed by a signal, timed out, or was cancelled. Real exit codes
// are never negative.
const KilledExitCode = -1

// Output is the result of one action. It is built once by the executor and
// is safe to copy and share.
type Output struct {
	exitCode int
	signal   int
	outcome  Outcome
	stdout   CapturedStream
	stderr   CapturedStream
}

// aggregate joins the reaped process state with both captured streams.
func aggregate(state *os.ProcessState, stdout, stderr CapturedStream, outcome Outcome) Output {
	out := Output{
		exitCode: KilledExitCode,
		outcome:  outcome,
		stdout:   stdout,
		stderr:   stderr,
	}
	if outcome == Completed && state.Exited() {
		out.exitCode = state.ExitCode()
	} else {
		out.signal = exitSignal(state)
	}
	return out
}

// ExitCode returns the process exit code, or KilledExitCode.
func (o Output) ExitCode() int { return o.exitCode }

// Killed reports whether the process ended without a normal exit code.
func (o Output) Killed() bool { return o.exitCode == KilledExitCode }

// Signal returns the signal number that terminated the process, or 0 when
// it exited normally or the platform does not report signals.
func (o Output) Signal() int { return o.signal }

// Outcome reports whether the process completed, timed out or was cancelled.
func (o Output) Outcome() Outcome { return o.outcome }

// Stdout returns the captured standard output.
func (o Output) Stdout() string { return o.stdout.data }

// Stderr returns the captured standard error.
func (o Output) Stderr() string { return o.stderr.data }

// StdoutStream returns standard output with its capture metadata.
func (o Output) StdoutStream() CapturedStream { return o.stdout }

// StderrStream returns standard error with its capture metadata.
func (o Output) StderrStream() CapturedStream { return o.stderr }
