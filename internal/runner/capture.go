package runner

import (
	"bytes"
	"errors"
	"io"
	"os"
)

const readChunk = 32 << 10

// CapturedStream is the collected output of one stream.
type CapturedStream struct {
	data      string
	size      int64
	truncated bool
	err       error
}

// String returns the captured bytes, unmodified.
func (s CapturedStream) String() string { return s.data }

// Len returns the number of bytes the child wrote, including any that were
// discarded after the capture limit was reached.
func (s CapturedStream) Len() int64 { return s.size }

// Truncated reports whether bytes were discarded.
func (s CapturedStream) Truncated() bool { return s.truncated }

// Err returns the *CaptureError that ended capture early, or nil.
func (s CapturedStream) Err() error { return s.err }

// capture reads r until end-of-stream, keeping at most limit bytes. Reading
// continues past the limit so the writer never blocks on a full pipe.
func capture(name string, r io.Reader, limit int) CapturedStream {
	var (
		s     CapturedStream
		buf   bytes.Buffer
		chunk = make([]byte, readChunk)
	)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			s.size += int64(n)
			keep := n
			if room := limit - buf.Len(); keep > room {
				keep = max(room, 0)
				s.truncated = true
			}
			buf.Write(chunk[:keep])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				if errors.Is(err, os.ErrClosed) {
					err = ErrStreamDetached
				}
				s.err = &CaptureError{Stream: name, Err: err}
			}
			break
		}
	}
	s.data = buf.String()
	return s
}
