package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skat.com/server/game"
	"skat.com/server/protocol"
	"skat.com/server/transport"
)

func dial(t *testing.T, ctx context.Context, s *Server) *transport.TCP {
	serverSide, clientSide := net.Pipe()
	go s.HandleTransport(ctx, transport.NewTCP(serverSide))
	tr := transport.NewTCP(clientSide)
	t.Cleanup(func() { tr.Close() })
	return tr
}

func receive(t *testing.T, tr *transport.TCP) *protocol.Package {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p, err := tr.Receive(ctx)
	require.NoError(t, err)
	return p
}

func send(t *testing.T, tr *transport.TCP, p *protocol.Package) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, tr.Send(ctx, p))
}

// join performs a handshake and consumes the ack and the first resync.
func join(t *testing.T, ctx context.Context, s *Server, pl protocol.Player) (*transport.TCP, protocol.HandshakeAck) {
	tr := dial(t, ctx, s)
	send(t, tr, protocol.NewHandshakePackage(pl, false))
	p := receive(t, tr)
	require.Equal(t, protocol.PackageHandshakeAck, p.Type)
	resync := receive(t, tr)
	require.Equal(t, protocol.PackageResync, resync.Type)
	assert.Equal(t, p.Ack.Seat, resync.Resync.State.MySeat)
	return tr, *p.Ack
}

func TestHandshakeSeatsPlayers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, rules := newTestServer(t)

	alice, ack := join(t, ctx, s, player("alice"))
	assert.Equal(t, 0, ack.Seat)
	assert.False(t, ack.Reconnected)
	require.NotNil(t, ack.Players[0])
	assert.Equal(t, "alice", ack.Players[0].Name)

	_, ack = join(t, ctx, s, player("bob"))
	assert.Equal(t, 1, ack.Seat)

	p := receive(t, alice)
	require.Equal(t, protocol.PackageJoin, p.Type)
	assert.Equal(t, "bob", p.Player.Name)
	assert.Equal(t, 1, p.Player.Seat)

	rules.mu.Lock()
	assert.Len(t, rules.joined, 2)
	rules.mu.Unlock()
	assert.Equal(t, SeatMask(0b0011), s.Registry().Mask())
}

func TestHandshakeRejections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, _ := newTestServer(t)

	join(t, ctx, s, player("alice"))

	tr := dial(t, ctx, s)
	send(t, tr, protocol.NewHandshakePackage(player("alice"), true))
	p := receive(t, tr)
	require.Equal(t, protocol.PackageHandshakeReject, p.Type)
	assert.Equal(t, ErrIdentityInUse.Reason, p.Reject.Reason)

	tr = dial(t, ctx, s)
	send(t, tr, protocol.NewActionPackage(protocol.NewReadyAction(1)))
	p = receive(t, tr)
	require.Equal(t, protocol.PackageHandshakeReject, p.Type)
	assert.Equal(t, ErrBadHandshake.Reason, p.Reject.Reason)

	tr = dial(t, ctx, s)
	send(t, tr, protocol.NewHandshakePackage(protocol.Player{ID: "nameless"}, false))
	p = receive(t, tr)
	require.Equal(t, protocol.PackageHandshakeReject, p.Type)
	assert.Contains(t, p.Reject.Reason, ErrBadHandshake.Reason)

	for _, name := range []string{"bob", "carol", "dave"} {
		join(t, ctx, s, player(name))
	}
	tr = dial(t, ctx, s)
	send(t, tr, protocol.NewHandshakePackage(player("erin"), false))
	p = receive(t, tr)
	require.Equal(t, protocol.PackageHandshakeReject, p.Type)
	assert.Equal(t, ErrTableFull.Reason, p.Reject.Reason)
}

func TestHandshakeTimesOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, _ := newTestServer(t)
	s.config.HandshakeTimeout = 50 * time.Millisecond

	tr := dial(t, ctx, s)
	rctx, rcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer rcancel()
	_, err := tr.Receive(rctx)
	assert.Error(t, err)
	assert.Equal(t, SeatMask(0), s.Registry().Mask())
}

func TestDisconnectAndReconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	observer := &fakeObserver{}
	s, rules := newTestServer(t, WithObserver(observer))

	alice, _ := join(t, ctx, s, player("alice"))
	bob, _ := join(t, ctx, s, player("bob"))
	receive(t, alice) // join of bob

	require.NoError(t, alice.Close())
	p := receive(t, bob)
	require.Equal(t, protocol.PackageLeave, p.Type)
	assert.Equal(t, "alice", p.Player.Name)
	assert.Equal(t, SeatMask(0b0010), s.Registry().Mask())
	rules.mu.Lock()
	require.Len(t, rules.left, 1)
	assert.Equal(t, 0, rules.left[0].Seat)
	rules.mu.Unlock()

	again := dial(t, ctx, s)
	send(t, again, protocol.NewHandshakePackage(player("alice"), true))
	p = receive(t, again)
	require.Equal(t, protocol.PackageHandshakeAck, p.Type)
	assert.Equal(t, 0, p.Ack.Seat)
	assert.True(t, p.Ack.Reconnected)
	p = receive(t, again)
	require.Equal(t, protocol.PackageResync, p.Type)
	assert.Equal(t, uint8(0b0011), p.Resync.Occupancy)

	p = receive(t, bob)
	require.Equal(t, protocol.PackageJoin, p.Type)
	assert.Equal(t, "alice", p.Player.Name)

	observer.mu.Lock()
	assert.Len(t, observer.seats, 4)
	observer.mu.Unlock()
}

func TestActionsRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, _ := newTestServer(t)

	alice, _ := join(t, ctx, s, player("alice"))
	bob, _ := join(t, ctx, s, player("bob"))
	receive(t, alice) // join of bob

	send(t, alice, protocol.NewActionPackage(protocol.NewReadyAction(7)))
	require.Eventually(t, func() bool {
		seat, ok := s.Registry().BySeat(0)
		return ok && seat.Conn.inbound.Len() == 1
	}, time.Second, 5*time.Millisecond)
	s.Tick()

	p := receive(t, alice)
	require.Equal(t, protocol.PackageEvent, p.Type)
	assert.Equal(t, protocol.EventPlayerReady, p.Event.Type)
	assert.Equal(t, protocol.ActionID(7), p.Event.AnswerTo)

	p = receive(t, bob)
	require.Equal(t, protocol.PackageEvent, p.Type)
	assert.Equal(t, protocol.NoActionID, p.Event.AnswerTo)

	send(t, bob, protocol.NewResyncRequestPackage())
	p = receive(t, bob)
	require.Equal(t, protocol.PackageResync, p.Type)
	assert.Equal(t, 1, p.Resync.State.MySeat)
}

func TestServeAcceptsTCPClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	dctx, dcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dcancel()
	tr, err := transport.DialTCP(dctx, ln.Addr().String())
	require.NoError(t, err)
	defer tr.Close()
	send(t, tr, protocol.NewHandshakePackage(player("alice"), false))
	assert.Equal(t, protocol.PackageHandshakeAck, receive(t, tr).Type)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

// receiveUntil skips packages until one of type typ arrives.
func receiveUntil(t *testing.T, tr *transport.TCP, typ protocol.PackageType) *protocol.Package {
	for {
		if p := receive(t, tr); p.Type == typ {
			return p
		}
	}
}

func TestSeatsLeftBeforeTheFirstRoundAreFree(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rules := game.NewSkat(game.Config{TableName: "main", Timing: game.DefaultTiming()})
	s, err := New(Config{TableName: "main", TickRate: 30}, rules)
	require.NoError(t, err)

	alice, _ := join(t, ctx, s, player("alice"))
	join(t, ctx, s, player("bob"))
	carol, _ := join(t, ctx, s, player("carol"))
	dave, _ := join(t, ctx, s, player("dave"))

	require.NoError(t, carol.Close())
	require.NoError(t, dave.Close())
	receiveUntil(t, alice, protocol.PackageLeave)
	receiveUntil(t, alice, protocol.PackageLeave)
	assert.Equal(t, SeatMask(0b0011), s.Registry().Mask())
	for i := 0; i < 5; i++ {
		s.Tick()
	}

	_, ack := join(t, ctx, s, player("erin"))
	assert.Equal(t, 2, ack.Seat)
	assert.False(t, ack.Reconnected)
	_, ack = join(t, ctx, s, player("frank"))
	assert.Equal(t, 3, ack.Seat)
	assert.Equal(t, SeatMask(0b1111), s.Registry().Mask())
}

func TestDisconnectReleasesUnderStateLock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, rules := newTestServer(t)

	alice, _ := join(t, ctx, s, player("alice"))

	s.lockState()
	require.NoError(t, alice.Close())
	assert.Never(t, func() bool { return s.Registry().Mask() != SeatMask(0b0001) }, 100*time.Millisecond, 5*time.Millisecond)
	s.unlockState()

	require.Eventually(t, func() bool { return s.Registry().Mask() == 0 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		rules.mu.Lock()
		defer rules.mu.Unlock()
		return len(rules.left) == 1
	}, time.Second, 5*time.Millisecond)
}
