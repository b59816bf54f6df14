package runner

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Request describes one action invocation.
type Request struct {
	ID      string        // transaction id; generated when empty
	Action  string        // action name, informational
	Path    string        // executable, resolved via PATH when it has no slash
	Args    []string      // arguments, excluding the executable itself
	Input   []byte        // written to the child's stdin, then stdin is closed
	Timeout time.Duration // zero disables the deadline
	Dir     string        // working directory; empty inherits ours
	Env     []string      // environment; empty inherits ours
}

// NewID returns a fresh transaction id.
func NewID() string {
	return uuid.New().String()
}

// freeze returns a copy of r that shares no slices with the caller.
func (r Request) freeze() Request {
	r.Args = slices.Clone(r.Args)
	r.Input = slices.Clone(r.Input)
	r.Env = slices.Clone(r.Env)
	if r.ID == "" {
		r.ID = NewID()
	}
	return r
}

func (r Request) validate() error {
	if r.Path == "" {
		return &SpawnError{Err: ErrEmptyPath}
	}
	if r.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", r.Timeout)
	}
	return nil
}
