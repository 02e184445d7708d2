package transport

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"skat.com/server/protocol"
)

// TCP frames packages on a stream connection.
type TCP struct {
	conn      net.Conn
	reader    *bufio.Reader
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func NewTCP(conn net.Conn) *TCP {
	return &TCP{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func DialTCP(ctx context.Context, addr string) (*TCP, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}
	return NewTCP(conn), nil
}

func (t *TCP) Send(ctx context.Context, p *protocol.Package) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if dl, ok := ctx.Deadline(); ok {
		t.conn.SetWriteDeadline(dl)
		defer t.conn.SetWriteDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		t.conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	if err := protocol.WriteFrame(t.conn, p); err != nil {
		return errors.Wrapf(err, "sending %s to %s", p.Type, t.RemoteAddr())
	}
	return nil
}

func (t *TCP) Receive(ctx context.Context) (*protocol.Package, error) {
	if dl, ok := ctx.Deadline(); ok {
		t.conn.SetReadDeadline(dl)
		defer t.conn.SetReadDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		t.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	p, err := protocol.ReadFrame(t.reader)
	if err != nil {
		return nil, errors.Wrapf(err, "receiving from %s", t.RemoteAddr())
	}
	return p, nil
}

func (t *TCP) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

func (t *TCP) RemoteAddr() string {
	if addr := t.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
