// Package results persists action results by transaction id so that
// callers can query actions that ran in the background.
package results

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/agentd/internal/runner"
)

// Status is the lifecycle state of a transaction.
type Status string

const (
	Running   Status = "running"
	Success   Status = "success"   // exit code 0
	Failure   Status = "failure"   // non-zero exit code or killed by a signal
	Timeout   Status = "timeout"   // terminated after its deadline
	Cancelled Status = "cancelled" // terminated because the caller gave up
	Error     Status = "error"     // no output: spawn or reap failure
)

// ErrNotFound is returned by Load for unknown transaction ids.
var ErrNotFound = errors.New("transaction not found")

// Store persists and retrieves records.
type Store interface {
	Save(rec *Record) error
	Load(id string) (*Record, error)
}

// Record is the stored form of one transaction.
type Record struct {
	ID         string    `json:"transaction_id"`
	Action     string    `json:"action"`
	Module     string    `json:"module"`
	Args       []string  `json:"args,omitempty"`
	Status     Status    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`

	ExitCode        int    `json:"exitcode"`
	Signal          int    `json:"signal,omitempty"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	StdoutTruncated bool   `json:"stdout_truncated,omitempty"`
	StderrTruncated bool   `json:"stderr_truncated,omitempty"`
	StdoutError     string `json:"stdout_error,omitempty"`
	StderrError     string `json:"stderr_error,omitempty"`

	Error string `json:"error,omitempty"`
}

// Start returns a running record for req.
func Start(req runner.Request, now time.Time) *Record {
	return &Record{
		ID:        req.ID,
		Action:    req.Action,
		Module:    req.Path,
		Args:      append([]string(nil), req.Args...),
		Status:    Running,
		StartedAt: now,
		ExitCode:  runner.KilledExitCode,
	}
}

// Finish fills rec from the outcome of runner.Executor.Execute.
func (r *Record) Finish(out runner.Output, err error, now time.Time) {
	r.FinishedAt = now
	if err != nil {
		r.Status = Error
		r.Error = err.Error()
		return
	}

	r.ExitCode = out.ExitCode()
	r.Signal = out.Signal()
	r.Stdout = out.Stdout()
	r.Stderr = out.Stderr()
	r.StdoutTruncated = out.StdoutStream().Truncated()
	r.StderrTruncated = out.StderrStream().Truncated()
	r.StdoutError = errString(out.StdoutStream().Err())
	r.StderrError = errString(out.StderrStream().Err())

	switch {
	case out.Outcome() == runner.TimedOut:
		r.Status = Timeout
	case out.Outcome() == runner.Cancelled:
		r.Status = Cancelled
	case out.ExitCode() == 0:
		r.Status = Success
	default:
		r.Status = Failure
	}
}

// Done reports whether the transaction has finished.
func (r *Record) Done() bool {
	return r.Status != Running
}

// Duration returns how long the action ran, or zero while it is running.
func (r *Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ValidateID rejects ids that could escape the spool directory.
func ValidateID(id string) error {
	if id == "" {
		return errors.New("empty transaction id")
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid transaction id %q", id)
	}
	return nil
}

func (r *Record) clone() *Record {
	c := *r
	c.Args = append([]string(nil), r.Args...)
	return &c
}
