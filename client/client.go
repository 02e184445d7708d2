// Package client connects to a table, mirrors the state the server shares
// with this seat and correlates submitted actions with their answering
// events.
package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"skat.com/server/logging"
	"skat.com/server/protocol"
	"skat.com/server/transport"
)

var clientLogger = log.With().Str("logger_name", "client::client").Logger()

const (
	DefaultHandshakeTimeout = 10 * time.Second
	sendTimeout             = 10 * time.Second
)

var ErrNotConnected = errors.New("not connected")

// RejectedError is returned by Connect when the server refuses the
// handshake.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "handshake rejected: " + e.Reason
}

type DialFunc func(ctx context.Context) (transport.Transport, error)

// Config wires a client. The On* handlers run on the async worker and may
// be nil.
type Config struct {
	Identity         Identity
	Resume           bool
	Dial             DialFunc
	HandshakeTimeout time.Duration
	// NextActionID generates action ids. Nil means a counter seeded from the
	// clock, so ids do not repeat across restarts of a resumed identity.
	NextActionID func() protocol.ActionID

	OnEvent      Callback
	OnJoin       func(ctx context.Context, c *Client, pl protocol.Player)
	OnLeave      func(ctx context.Context, c *Client, pl protocol.Player)
	OnResync     func(ctx context.Context, c *Client)
	OnDisconnect func(ctx context.Context, c *Client, err error)
}

type connection struct {
	tr         transport.Transport
	readerDone chan struct{}
}

type Client struct {
	config    Config
	logger    zerolog.Logger
	lifecycle *fsm.FSM
	queue     *AsyncQueue
	pending   *pendingCallbacks
	nextID    func() protocol.ActionID

	connMu sync.Mutex
	conn   *connection

	stateMu   sync.Mutex
	me        protocol.Player
	state     protocol.ClientState
	players   [protocol.MaxSeats]*protocol.Player
	occupancy uint8

	closeOnce sync.Once
}

func New(config Config) *Client {
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}
	nextID := config.NextActionID
	if nextID == nil {
		nextID = clockSeededActionIDs()
	}
	c := &Client{
		config: config,
		logger: clientLogger.With().
			Str(logging.PlayerIDKey, string(config.Identity.ID)).
			Str(logging.PlayerNameKey, config.Identity.Name).
			Logger(),
		queue:   NewAsyncQueue(),
		pending: newPendingCallbacks(),
		nextID:  nextID,
		me:      config.Identity.Player(),
		state:   protocol.NewClientState(protocol.NoSeat),
	}
	c.lifecycle = newLifecycle(&c.logger)
	return c
}

func clockSeededActionIDs() func() protocol.ActionID {
	next := &atomic.Int64{}
	next.Store(time.Now().UnixMilli())
	return func() protocol.ActionID {
		return protocol.ActionID(next.Add(1))
	}
}

// Connect dials the server and performs the handshake. On success the
// reader goroutine is running and the first resync is on its way.
func (c *Client) Connect(ctx context.Context) (protocol.HandshakeAck, error) {
	if err := c.lifecycle.Event(ClientEvent__CONNECT); err != nil {
		return protocol.HandshakeAck{}, errors.Wrapf(err, "cannot connect in state %s", c.lifecycle.Current())
	}
	ctx, cancel := context.WithTimeout(ctx, c.config.HandshakeTimeout)
	defer cancel()

	tr, err := c.config.Dial(ctx)
	if err != nil {
		c.fire(ClientEvent__LOSE)
		return protocol.HandshakeAck{}, errors.Wrap(err, "dialing server")
	}
	ack, err := c.handshake(ctx, tr)
	if err != nil {
		tr.Close()
		c.fire(ClientEvent__LOSE)
		return protocol.HandshakeAck{}, err
	}

	me := c.config.Identity.Player()
	me.Seat = ack.Seat
	c.stateMu.Lock()
	c.me = me
	c.state = protocol.NewClientState(ack.Seat)
	c.players = ack.Players
	c.stateMu.Unlock()

	conn := &connection{tr: tr, readerDone: make(chan struct{})}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.fire(ClientEvent__JOIN)
	c.logger.Info().
		Int(logging.SeatKey, ack.Seat).
		Bool("reconnected", ack.Reconnected).
		Str("remote", tr.RemoteAddr()).
		Msg("Joined table")
	go c.readLoop(conn)
	return ack, nil
}

func (c *Client) handshake(ctx context.Context, tr transport.Transport) (protocol.HandshakeAck, error) {
	c.fire(ClientEvent__HANDSHAKE)
	if err := tr.Send(ctx, protocol.NewHandshakePackage(c.config.Identity.Player(), c.config.Resume)); err != nil {
		return protocol.HandshakeAck{}, errors.Wrap(err, "sending handshake")
	}
	p, err := tr.Receive(ctx)
	if err != nil {
		return protocol.HandshakeAck{}, errors.Wrap(err, "receiving handshake answer")
	}
	switch p.Type {
	case protocol.PackageHandshakeAck:
		return *p.Ack, nil
	case protocol.PackageHandshakeReject:
		return protocol.HandshakeAck{}, &RejectedError{Reason: p.Reject.Reason}
	}
	return protocol.HandshakeAck{}, errors.Errorf("unexpected %s package during handshake", p.Type)
}

// Submit registers cb for the action and queues sending it. An action
// without id gets the next generated one. Registering a callback for an id
// that is still pending panics.
func (c *Client) Submit(ctx context.Context, a protocol.Action, cb Callback) protocol.ActionID {
	if a.ID == protocol.NoActionID {
		a.ID = c.nextID()
	}
	if cb != nil {
		c.pending.register(a.ID, cb)
	}
	queued := c.queue.Enqueue(ctx, func(ctx context.Context) {
		err := c.send(ctx, protocol.NewActionPackage(a))
		if err == nil {
			return
		}
		c.logger.Info().Err(err).Int64(logging.ActionIDKey, int64(a.ID)).Msg("Could not send action")
		if cb, ok := c.pending.resolve(a.ID); ok {
			cb(ctx, c, protocol.NewDisconnectedEvent(a.ID, c.Me()))
		}
	})
	if !queued {
		c.pending.resolve(a.ID)
	}
	return a.ID
}

func (c *Client) Ready(ctx context.Context, cb Callback) protocol.ActionID {
	return c.Submit(ctx, protocol.NewReadyAction(protocol.NoActionID), cb)
}

func (c *Client) PlayCard(ctx context.Context, card protocol.Card, cb Callback) protocol.ActionID {
	return c.Submit(ctx, protocol.NewPlayCardAction(protocol.NoActionID, card), cb)
}

func (c *Client) Declare(ctx context.Context, rules protocol.GameRules, cb Callback) protocol.ActionID {
	return c.Submit(ctx, protocol.NewRuleChangeAction(protocol.NoActionID, rules), cb)
}

// RequestResync asks the server for a fresh snapshot. OnResync runs once it
// has replaced the mirrored state.
func (c *Client) RequestResync(ctx context.Context) {
	c.fire(ClientEvent__RESYNC)
	c.queue.Enqueue(ctx, func(ctx context.Context) {
		if err := c.send(ctx, protocol.NewResyncRequestPackage()); err != nil {
			c.logger.Info().Err(err).Msg("Could not request resync")
		}
	})
}

// Go runs w on the async worker.
func (c *Client) Go(ctx context.Context, w Work) bool {
	return c.queue.Enqueue(ctx, w)
}

// Wait blocks until the async work queued so far has run.
func (c *Client) Wait() {
	c.queue.Wait()
}

// Close drops the connection, resolves pending callbacks with a
// disconnected event and stops the async worker after it ran them. It must
// not be called from async work.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn != nil {
			conn.tr.Close()
			<-conn.readerDone
		}
		c.fire(ClientEvent__CLOSE)
		c.queue.Close()
	})
}

func (c *Client) Me() protocol.Player {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.me
}

// State returns a copy of the mirrored state.
func (c *Client) State() protocol.ClientState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Client) Players() [protocol.MaxSeats]*protocol.Player {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	var players [protocol.MaxSeats]*protocol.Player
	for seat, pl := range c.players {
		if pl != nil {
			cp := *pl
			players[seat] = &cp
		}
	}
	return players
}

func (c *Client) Occupancy() uint8 {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.occupancy
}

// WithState runs fn with the state lock held.
func (c *Client) WithState(fn func(s *protocol.ClientState)) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	fn(&c.state)
}

func (c *Client) LifecycleState() string {
	return c.lifecycle.Current()
}

func (c *Client) PendingCallbacks() int {
	return c.pending.count()
}

func (c *Client) fire(event string) {
	if err := c.lifecycle.Event(event); err != nil {
		c.logger.Debug().Err(err).Str("event", event).Msg("Lifecycle transition skipped")
	}
}

func (c *Client) send(ctx context.Context, p *protocol.Package) error {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return conn.tr.Send(ctx, p)
}
