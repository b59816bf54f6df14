package runner

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// process is a started child together with the parent ends of its three
// pipes. release must be called once the child has been reaped.
type process struct {
	cmd    *exec.Cmd
	stdin  *os.File // write end
	stdout *os.File // read end
	stderr *os.File // read end
}

// launch starts req as a child process with private stdin, stdout and
// stderr pipes. On failure every pipe end is closed and no process remains.
func launch(req Request) (*process, error) {
	cmd := exec.Command(req.Path, req.Args...)
	cmd.Dir = req.Dir
	if len(req.Env) > 0 {
		cmd.Env = req.Env
	}
	setProcessGroup(cmd)

	var opened []*os.File
	pipe := func() (*os.File, *os.File, error) {
		r, w, err := os.Pipe()
		if err == nil {
			opened = append(opened, r, w)
		}
		return r, w, err
	}
	fail := func(err error) (*process, error) {
		closeFiles(opened...)
		return nil, &SpawnError{Path: req.Path, Err: err}
	}

	inR, inW, err := pipe()
	if err != nil {
		return fail(err)
	}
	outR, outW, err := pipe()
	if err != nil {
		return fail(err)
	}
	errR, errW, err := pipe()
	if err != nil {
		return fail(err)
	}

	// Passing *os.File values keeps os/exec from starting its own copy
	// goroutines, so Wait never blocks on our readers.
	cmd.Stdin = inR
	cmd.Stdout = outW
	cmd.Stderr = errW
	if err := cmd.Start(); err != nil {
		return fail(err)
	}
	closeFiles(inR, outW, errW)

	return &process{cmd: cmd, stdin: inW, stdout: outR, stderr: errR}, nil
}

// feed writes input to the child's stdin and closes it so that actions
// reading until end-of-input terminate. A child that exits without
// consuming its input is not an error.
func (p *process) feed(input []byte) error {
	defer p.stdin.Close()
	if len(input) == 0 {
		return nil
	}
	_, err := p.stdin.Write(input)
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

func (p *process) release() {
	closeFiles(p.stdin, p.stdout, p.stderr)
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
