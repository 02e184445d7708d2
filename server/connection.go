package server

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"skat.com/server/protocol"
	"skat.com/server/transport"
)

// Connection is one client transport with its inbound action FIFO and
// outbound package queue. The handler goroutine owns the transport; the
// tick loop only touches the queues.
type Connection struct {
	id        string
	transport transport.Transport

	active   atomic.Bool
	inbound  Queue[protocol.Action]
	outbound Queue[*protocol.Package]
	wake     chan struct{}

	// set by the registry under its lock when the handshake binds a seat
	seat   int
	player protocol.Player

	closeOnce sync.Once
}

func newConnection(tr transport.Transport) *Connection {
	return &Connection{
		id:        uuid.NewString(),
		transport: tr,
		wake:      make(chan struct{}, 1),
		seat:      protocol.NoSeat,
		player:    protocol.NoPlayer,
	}
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) Active() bool {
	return c.active.Load()
}

func (c *Connection) Player() protocol.Player {
	return c.player
}

// enqueue queues p for the writer. Packages for inactive connections are
// dropped.
func (c *Connection) enqueue(p *protocol.Package) bool {
	if !c.Active() {
		return false
	}
	c.outbound.Push(p)
	select {
	case c.wake <- struct{}{}:
	default:
	}
	return true
}
