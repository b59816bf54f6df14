package runner

import (
	"errors"
	"fmt"
)

// ErrStreamDetached marks a stream that was still held open by a
// descendant process after the action itself had been reaped.
var ErrStreamDetached = errors.New("stream held open after process exit")

// ErrEmptyPath is wrapped by the SpawnError for a request without an
// executable.
var ErrEmptyPath = errors.New("empty executable path")

// SpawnError is returned when the child process could not be created.
// No Output is produced alongside it.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("spawning: %v", e.Err)
	}
	return fmt.Sprintf("spawning %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ReapError is returned when waiting for the child failed at the OS level.
// No reliable Output can be built in that case.
type ReapError struct {
	Pid int
	Err error
}

func (e *ReapError) Error() string {
	return fmt.Sprintf("waiting for process %d: %v", e.Pid, e.Err)
}

func (e *ReapError) Unwrap() error { return e.Err }

// CaptureError records a read failure on one output stream. It is attached
// to the CapturedStream and never aborts the action.
type CaptureError struct {
	Stream string // "stdout" or "stderr"
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Stream, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
