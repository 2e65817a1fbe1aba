package media

import (
	"bytes"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Stream is an open handle on one of the served resources. Reads after Close
// fail with os.ErrClosed, so a transfer whose handle was swapped out by the
// registry stops instead of serving stale bytes.
type Stream struct {
	Name string
	Size int64

	rc        io.ReadCloser
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newFileStream(f *os.File, size int64) *Stream {
	return &Stream{Name: f.Name(), Size: size, rc: f}
}

func newBytesStream(name string, data []byte) *Stream {
	return &Stream{Name: name, Size: int64(len(data)), rc: io.NopCloser(bytes.NewReader(data))}
}

func (s *Stream) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, os.ErrClosed
	}
	return s.rc.Read(p)
}

// Close is safe to call more than once and from any goroutine.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.rc.Close()
	})
	return s.closeErr
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool {
	return s.closed.Load()
}

// skipFully advances r by exactly n bytes. A seek that lands short is
// completed by reading and discarding the remainder.
func skipFully(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if seeker, ok := r.(io.Seeker); ok {
		pos, err := seeker.Seek(n, io.SeekStart)
		if err != nil {
			return err
		}
		if pos >= n {
			return nil
		}
		n -= pos
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
