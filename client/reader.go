package client

import (
	"context"

	"skat.com/server/logging"
	"skat.com/server/protocol"
)

func (c *Client) readLoop(conn *connection) {
	defer close(conn.readerDone)
	for {
		p, err := conn.tr.Receive(context.Background())
		if err != nil {
			c.connectionLost(conn, err)
			return
		}
		switch p.Type {
		case protocol.PackageEvent:
			c.dispatchEvent(*p.Event)
		case protocol.PackageJoin:
			c.playerJoined(*p.Player)
		case protocol.PackageLeave:
			c.playerLeft(*p.Player)
		case protocol.PackageResync:
			c.applyResync(*p.Resync)
		default:
			c.logger.Warn().Str("package", string(p.Type)).Msg("Ignoring unexpected package")
		}
	}
}

// dispatchEvent applies e to the mirrored state, then hands it to the
// callback waiting for it or to the default handler.
func (c *Client) dispatchEvent(e protocol.Event) {
	c.stateMu.Lock()
	c.state.Apply(e)
	c.stateMu.Unlock()

	c.logger.Debug().
		Str(logging.EventTypeKey, e.Type.String()).
		Int64(logging.ActionIDKey, int64(e.AnswerTo)).
		Msg("Received event")

	if e.AnswerTo != protocol.NoActionID {
		if cb, ok := c.pending.resolve(e.AnswerTo); ok {
			c.queue.Enqueue(context.Background(), func(ctx context.Context) { cb(ctx, c, e) })
			return
		}
	}
	if c.config.OnEvent != nil {
		c.queue.Enqueue(context.Background(), func(ctx context.Context) { c.config.OnEvent(ctx, c, e) })
	}
}

func (c *Client) playerJoined(pl protocol.Player) {
	if pl.Seat < 0 || pl.Seat >= protocol.MaxSeats {
		return
	}
	c.stateMu.Lock()
	// a new identity on the seat starts out not ready, as on the server
	if prev := c.players[pl.Seat]; prev == nil || !prev.Is(pl) {
		c.state.Game.ClearReady(pl.Seat)
	}
	joined := pl
	c.players[pl.Seat] = &joined
	c.occupancy |= 1 << uint(pl.Seat)
	c.stateMu.Unlock()

	if c.config.OnJoin != nil {
		c.queue.Enqueue(context.Background(), func(ctx context.Context) { c.config.OnJoin(ctx, c, pl) })
	}
}

func (c *Client) playerLeft(pl protocol.Player) {
	if pl.Seat < 0 || pl.Seat >= protocol.MaxSeats {
		return
	}
	c.stateMu.Lock()
	c.occupancy &^= 1 << uint(pl.Seat)
	c.stateMu.Unlock()

	if c.config.OnLeave != nil {
		c.queue.Enqueue(context.Background(), func(ctx context.Context) { c.config.OnLeave(ctx, c, pl) })
	}
}

// applyResync replaces the mirrored state wholesale.
func (c *Client) applyResync(r protocol.Resync) {
	c.stateMu.Lock()
	c.state = r.State
	c.players = r.Players
	c.occupancy = r.Occupancy
	c.stateMu.Unlock()

	if c.lifecycle.Can(ClientEvent__SYNCED) {
		c.fire(ClientEvent__SYNCED)
	}
	if c.config.OnResync != nil {
		c.queue.Enqueue(context.Background(), func(ctx context.Context) { c.config.OnResync(ctx, c) })
	}
}

// connectionLost resolves every pending callback with a disconnected event.
func (c *Client) connectionLost(conn *connection, err error) {
	c.connMu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.connMu.Unlock()
	conn.tr.Close()
	c.fire(ClientEvent__LOSE)
	c.logger.Info().Err(err).Msg("Connection lost")

	me := c.Me()
	for _, p := range c.pending.drain() {
		p := p
		c.queue.Enqueue(context.Background(), func(ctx context.Context) {
			p.cb(ctx, c, protocol.NewDisconnectedEvent(p.id, me))
		})
	}
	if c.config.OnDisconnect != nil {
		c.queue.Enqueue(context.Background(), func(ctx context.Context) { c.config.OnDisconnect(ctx, c, err) })
	}
}
