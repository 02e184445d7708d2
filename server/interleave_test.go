package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skat.com/server/game"
	"skat.com/server/protocol"
)

const actionsPerSeat = 200

// foldRules folds every applied action id into its seat's score, so the
// result depends on the order within a seat but not across seats.
type foldRules struct {
	mu      sync.Mutex
	state   protocol.GameState
	applied [protocol.MaxSeats][]protocol.ActionID
}

func newFoldRules() *foldRules {
	return &foldRules{state: protocol.NewGameState()}
}

func (f *foldRules) Apply(a protocol.Action, pl protocol.Player, _ game.Table) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied[pl.Seat] = append(f.applied[pl.Seat], a.ID)
	f.state.TotalScore[pl.Seat] = (f.state.TotalScore[pl.Seat]*7 + int(a.ID)) % 1000003
	return true
}

func (f *foldRules) Tick(game.Table)                              {}
func (f *foldRules) NotifyJoin(protocol.Player, game.Table)       {}
func (f *foldRules) NotifyDisconnect(protocol.Player, game.Table) {}

func (f *foldRules) Snapshot(seat int) protocol.ClientState {
	f.mu.Lock()
	defer f.mu.Unlock()
	cs := protocol.NewClientState(seat)
	cs.Game = f.state
	return cs
}

func (f *foldRules) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ids := range f.applied {
		n += len(ids)
	}
	return n
}

func seatAll(t *testing.T, s *Server) []*Connection {
	var conns []*Connection
	for _, id := range []string{"alice", "bob", "carol", "dave"} {
		conns = append(conns, seatPlayer(t, s, id))
	}
	return conns
}

func sequentialRun(t *testing.T) protocol.ClientState {
	rules := newFoldRules()
	s, err := New(Config{TableName: "sequential", TickRate: 30}, rules)
	require.NoError(t, err)
	for _, conn := range seatAll(t, s) {
		for id := 1; id <= actionsPerSeat; id++ {
			conn.inbound.Push(protocol.NewReadyAction(protocol.ActionID(id)))
		}
	}
	s.Tick()
	require.Equal(t, protocol.MaxSeats*actionsPerSeat, rules.count())
	return s.Snapshot(protocol.NoSeat)
}

func TestConcurrentSubmissionsMatchSequentialRun(t *testing.T) {
	want := sequentialRun(t)

	rules := newFoldRules()
	s, err := New(Config{TableName: "concurrent", TickRate: 500}, rules)
	require.NoError(t, err)
	conns := seatAll(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var producers sync.WaitGroup
	for _, conn := range conns {
		producers.Add(1)
		go func(conn *Connection) {
			defer producers.Done()
			for id := 1; id <= actionsPerSeat; id++ {
				conn.inbound.Push(protocol.NewReadyAction(protocol.ActionID(id)))
				if id%25 == 0 {
					time.Sleep(time.Millisecond)
				}
			}
		}(conn)
	}
	producers.Wait()
	require.Eventually(t, func() bool { return rules.count() == protocol.MaxSeats*actionsPerSeat },
		5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	rules.mu.Lock()
	for seat, ids := range rules.applied {
		require.Len(t, ids, actionsPerSeat, "seat %d", seat)
		for i, id := range ids {
			assert.Equal(t, protocol.ActionID(i+1), id, "seat %d applied out of order", seat)
		}
	}
	rules.mu.Unlock()

	if diff := cmp.Diff(want, s.Snapshot(protocol.NoSeat)); diff != "" {
		t.Errorf("final state differs from the sequential run (-want +got):\n%s", diff)
	}
}
