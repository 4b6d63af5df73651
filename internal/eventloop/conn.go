package eventloop

import (
	"bytes"
	"errors"
	"strings"

	"github.com/nightkv/nightkv/internal/resp"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// handleReadiness services one epoll readiness notification for fd: a
// peer-closed/error condition closes the connection, otherwise every
// complete RESP frame currently buffered is parsed and dispatched before
// control returns to the epoll_wait loop.
func (l *Loop) handleReadiness(fd int, events uint32) {
	c, ok := l.conns[fd]
	if !ok {
		return
	}

	if events&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0 {
		l.closeConn(fd)
		return
	}

	buf := make([]byte, readChunk)
	for {
		n, err := unix.Read(fd, buf)
		if n > 0 {
			c.parser.Feed(buf[:n])
		}
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
				break
			}
			l.closeConn(fd)
			return
		}
		if n == 0 {
			l.closeConn(fd)
			return
		}
		if n < readChunk {
			break
		}
	}

	l.drain(c)
}

// drain pulls every complete frame out of c's parser and executes it,
// writing each reply back before parsing the next - pipelining is handled
// by simply looping here rather than waiting for another readiness event.
func (l *Loop) drain(c *conn) {
	for {
		frame, ok, err := c.parser.Next()
		if err != nil {
			l.writeValue(c.fd, resp.MakeError("ERR Protocol error: "+err.Error()))
			l.closeConn(c.fd)
			return
		}
		if !ok {
			return
		}

		if frame.Type != resp.TypeArray || frame.IsNull || len(frame.Array) == 0 {
			l.writeValue(c.fd, resp.MakeError("ERR Protocol error: expected array of bulk strings"))
			continue
		}

		name := strings.ToUpper(string(frame.Array[0].String))
		args := frame.Array[1:]
		reply := l.engine.Execute(name, args)
		if err := l.writeValue(c.fd, reply); err != nil {
			l.closeConn(c.fd)
			return
		}
	}
}

// writeValue serializes v through the shared resp.Encoder machinery into a
// scratch buffer, then writes the bytes to fd directly; the encoder itself
// only ever targets the buffer, never the socket, since the loop owns
// non-blocking write semantics.
func (l *Loop) writeValue(fd int, v resp.Value) error {
	var buf bytes.Buffer
	enc := resp.NewEncoder(&buf)
	if err := enc.Write(v); err != nil {
		return err
	}

	out := buf.Bytes()
	for len(out) > 0 {
		n, err := unix.Write(fd, out)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
				continue
			}
			return err
		}
		out = out[n:]
	}
	return nil
}

func (l *Loop) closeConn(fd int) {
	c, ok := l.conns[fd]
	if !ok {
		return
	}
	delete(l.conns, fd)
	unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil) //nolint:errcheck
	unix.Close(fd)                                     //nolint:errcheck
	if l.logger != nil {
		l.logger.Debug("client disconnected", zap.String("addr", c.addr))
	}
}
