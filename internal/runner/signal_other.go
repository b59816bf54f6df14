//go:build !unix

package runner

import (
	"errors"
	"os"
	"os/exec"
)

// Without process groups only the direct child is stopped; processes it
// spawned keep running.
func setProcessGroup(*exec.Cmd) {}

func requestStop(p *os.Process) error {
	return forceStop(p)
}

func forceStop(p *os.Process) error {
	err := p.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func exitSignal(*os.ProcessState) int { return 0 }
