package resp

import (
	"bufio"
	"io"
)

// Reader reads complete RESP frames off a blocking io.Reader, such as a
// net.Conn used outside the event loop (such as the package's tests). It
// is a thin blocking wrapper over Parser: the event loop itself talks to
// Parser directly against non-blocking reads (internal/eventloop).
type Reader struct {
	src *bufio.Reader
	p   *Parser
}

// NewReader wraps rd.
func NewReader(rd io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(rd), p: NewParser()}
}

// Read blocks until one complete frame is available, or returns the
// underlying io.Reader's error (typically io.EOF on disconnect).
func (r *Reader) Read() (Value, error) {
	for {
		if v, ok, err := r.p.Next(); err != nil {
			return Value{}, err
		} else if ok {
			return v, nil
		}

		chunk := make([]byte, 4096)
		n, err := r.src.Read(chunk)
		if n > 0 {
			r.p.Feed(chunk[:n])
		}
		if err != nil {
			if v, ok, perr := r.p.Next(); perr == nil && ok {
				return v, nil
			}
			return Value{}, err
		}
	}
}

// Buffered reports how many bytes are waiting to be parsed into a frame.
func (r *Reader) Buffered() int {
	return r.p.Buffered() + r.src.Buffered()
}
