// Package transport moves whole protocol packages between a client and the
// server.
package transport

import (
	"context"

	"skat.com/server/protocol"
)

// Transport delivers packages as discrete units. Send may be called from one
// goroutine while another is blocked in Receive. Close unblocks both.
type Transport interface {
	Send(ctx context.Context, p *protocol.Package) error
	Receive(ctx context.Context) (*protocol.Package, error)
	Close() error
	RemoteAddr() string
}
