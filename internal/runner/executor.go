// Package runner executes actions as child processes, captures their
// output concurrently, and enforces timeouts.
package runner

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Defaults applied for zero Executor fields.
const (
	DefaultMaxOutput    = 1 << 20 // 1 MB per stream
	DefaultKillGrace    = 5 * time.Second
	DefaultDrainTimeout = 2 * time.Second
)

// Executor runs actions. The zero value is ready to use. Fields must not be
// changed while Execute calls are in flight; Execute itself keeps no state
// between calls and may be called concurrently.
type Executor struct {
	MaxOutput    int           // bytes kept per stream
	KillGrace    time.Duration // delay between the stop request and the kill
	DrainTimeout time.Duration // wait for pipes still held open after exit
}

// Execute runs req to completion and returns its Output. The only errors
// are request validation errors, *SpawnError and *ReapError; a timeout, a
// cancelled ctx, a crash or a capture failure still yield an Output.
func (e *Executor) Execute(ctx context.Context, req Request) (Output, error) {
	req = req.freeze()
	if err := req.validate(); err != nil {
		return Output{}, fmt.Errorf("action %s: %w", req.ID, err)
	}

	p, err := launch(req)
	if err != nil {
		return Output{}, err
	}
	defer p.release()

	limit := e.maxOutput()
	stdoutc := make(chan CapturedStream, 1)
	stderrc := make(chan CapturedStream, 1)
	go func() { stdoutc <- capture("stdout", p.stdout, limit) }()
	go func() { stderrc <- capture("stderr", p.stderr, limit) }()
	go func() {
		if err := p.feed(req.Input); err != nil {
			log.Printf("action %s: writing stdin: %v", req.ID, err)
		}
	}()

	exited := make(chan waitResult, 1)
	go func() {
		err := p.cmd.Wait()
		exited <- waitResult{state: p.cmd.ProcessState, err: err}
	}()

	outcome, res := supervise(ctx, p, req.Timeout, e.killGrace(), exited)
	if res.state == nil {
		_ = forceStop(p.cmd.Process)
		return Output{}, &ReapError{Pid: p.cmd.Process.Pid, Err: res.err}
	}

	stdout, stderr := e.join(p, stdoutc, stderrc)
	return aggregate(res.state, stdout, stderr, outcome), nil
}

// join waits for both captures. Pipes inherited by descendants that outlive
// the action are closed after the drain timeout.
func (e *Executor) join(p *process, stdoutc, stderrc <-chan CapturedStream) (stdout, stderr CapturedStream) {
	t := time.NewTimer(e.drainTimeout())
	defer t.Stop()

	for pending := 2; pending > 0; {
		select {
		case stdout = <-stdoutc:
			pending--
		case stderr = <-stderrc:
			pending--
		case <-t.C:
			closeFiles(p.stdout, p.stderr)
		}
	}
	return stdout, stderr
}

func (e *Executor) maxOutput() int {
	if e.MaxOutput > 0 {
		return e.MaxOutput
	}
	return DefaultMaxOutput
}

func (e *Executor) killGrace() time.Duration {
	if e.KillGrace > 0 {
		return e.KillGrace
	}
	return DefaultKillGrace
}

func (e *Executor) drainTimeout() time.Duration {
	if e.DrainTimeout > 0 {
		return e.DrainTimeout
	}
	return DefaultDrainTimeout
}
