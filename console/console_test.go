package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skat.com/server/client"
	"skat.com/server/protocol"
)

type submitted struct {
	action protocol.Action
	cb     client.Callback
}

type fakeSession struct {
	state   protocol.ClientState
	players [protocol.MaxSeats]*protocol.Player
	actions []submitted
	resyncs int
	nextID  protocol.ActionID
}

func (f *fakeSession) submit(a protocol.Action, cb client.Callback) protocol.ActionID {
	f.nextID++
	a.ID = f.nextID
	f.actions = append(f.actions, submitted{action: a, cb: cb})
	return a.ID
}

func (f *fakeSession) Ready(_ context.Context, cb client.Callback) protocol.ActionID {
	return f.submit(protocol.NewReadyAction(protocol.NoActionID), cb)
}

func (f *fakeSession) PlayCard(_ context.Context, card protocol.Card, cb client.Callback) protocol.ActionID {
	return f.submit(protocol.NewPlayCardAction(protocol.NoActionID, card), cb)
}

func (f *fakeSession) Declare(_ context.Context, rules protocol.GameRules, cb client.Callback) protocol.ActionID {
	return f.submit(protocol.NewRuleChangeAction(protocol.NoActionID, rules), cb)
}

func (f *fakeSession) RequestResync(context.Context) {
	f.resyncs++
}

func (f *fakeSession) State() protocol.ClientState {
	return f.state
}

func (f *fakeSession) Players() [protocol.MaxSeats]*protocol.Player {
	return f.players
}

func (f *fakeSession) Me() protocol.Player {
	return *f.players[f.state.MySeat]
}

var (
	c7 = protocol.NewCard(protocol.Clubs, protocol.Seven)
	sa = protocol.NewCard(protocol.Spades, protocol.Ace)
	hj = protocol.NewCard(protocol.Hearts, protocol.Jack)
)

func newTestConsole() (*Console, *fakeSession, *bytes.Buffer) {
	session := &fakeSession{state: protocol.NewClientState(1)}
	for seat, name := range []string{"alice", "bob", "carol"} {
		session.players[seat] = &protocol.Player{ID: protocol.PlayerID(name), Name: name, Seat: seat}
	}
	session.state.MyHand = protocol.CollectionOf(c7, sa, hj)
	out := &bytes.Buffer{}
	c := New(out)
	c.Attach(session)
	return c, session, out
}

func TestExecuteSubmitsActions(t *testing.T) {
	c, session, _ := newTestConsole()
	ctx := context.Background()

	for _, line := range []string{"ready", "play 2", "declare clubs", "  DECLARE   grand  "} {
		quit, err := c.Execute(ctx, line)
		require.NoError(t, err, line)
		assert.False(t, quit)
	}
	require.Len(t, session.actions, 4)
	assert.Equal(t, protocol.ActionReady, session.actions[0].action.Type)
	assert.Equal(t, protocol.ActionPlayCard, session.actions[1].action.Type)
	// hand order is ascending card id
	assert.Equal(t, session.state.MyHand.Cards()[1], session.actions[1].action.Card)
	assert.Equal(t, protocol.GameRules{Type: protocol.GameSuit, Trumpf: protocol.Clubs}, session.actions[2].action.Rules)
	assert.Equal(t, protocol.GameGrand, session.actions[3].action.Rules.Type)

	_, err := c.Execute(ctx, "resync")
	require.NoError(t, err)
	assert.Equal(t, 1, session.resyncs)
}

func TestExecuteRejectsBadInput(t *testing.T) {
	c, session, _ := newTestConsole()
	ctx := context.Background()

	for _, line := range []string{"play", "play x", "play 0", "play 4", "declare", "declare trumps", "dance"} {
		_, err := c.Execute(ctx, line)
		assert.Error(t, err, line)
	}
	assert.Empty(t, session.actions)

	quit, err := c.Execute(ctx, "")
	assert.NoError(t, err)
	assert.False(t, quit)
	quit, err = c.Execute(ctx, "quit")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestAnswersArePrinted(t *testing.T) {
	c, session, out := newTestConsole()
	ctx := context.Background()
	_, err := c.Execute(ctx, "play 1")
	require.NoError(t, err)
	_, err = c.Execute(ctx, "ready")
	require.NoError(t, err)
	_, err = c.Execute(ctx, "ready")
	require.NoError(t, err)

	bob := *session.players[1]
	session.actions[0].cb(ctx, nil, protocol.NewIllegalActionEvent(1, bob))
	session.actions[1].cb(ctx, nil, protocol.NewEvent(protocol.EventPlayerReady, 2, bob, nil))
	session.actions[2].cb(ctx, nil, protocol.NewDisconnectedEvent(3, bob))

	text := out.String()
	assert.Contains(t, text, "play "+session.state.MyHand.Cards()[0].String()+": not allowed right now")
	assert.Contains(t, text, "ready: ok")
	assert.Contains(t, text, "bob is ready")
	assert.Contains(t, text, "ready: connection lost")
}

func TestPrintEvents(t *testing.T) {
	c, session, out := newTestConsole()
	ctx := context.Background()
	session.state.Game.ActivePlayers = [protocol.ActiveSeats]int{0, 1, 2}

	alice := *session.players[0]
	c.HandleEvent(ctx, nil, protocol.NewEvent(protocol.EventStartRound, protocol.NoActionID, protocol.NoPlayer,
		protocol.StartRoundPayload{RoundNum: 1, ActivePlayers: [protocol.ActiveSeats]int{0, 1, 2}}))
	c.HandleEvent(ctx, nil, protocol.NewEvent(protocol.EventBiddingDone, protocol.NoActionID, protocol.NoPlayer,
		protocol.BiddingDonePayload{AlonePlayer: 0, Skat: [2]protocol.Card{protocol.NoCard, protocol.NoCard}}))
	c.HandleEvent(ctx, nil, protocol.NewEvent(protocol.EventPlayCard, protocol.NoActionID, alice,
		protocol.PlayCardPayload{Card: hj}))
	c.HandleEvent(ctx, nil, protocol.NewEvent(protocol.EventTrickDone, protocol.NoActionID, protocol.NoPlayer,
		protocol.TrickDonePayload{Winner: 2}))
	c.HandleEvent(ctx, nil, protocol.NewEvent(protocol.EventRoundDone, protocol.NoActionID, protocol.NoPlayer,
		protocol.RoundDonePayload{AlonePoints: 71, Won: true, Total: [protocol.MaxSeats]int{48, 0, 0, 0}}))
	c.HandleLeave(ctx, nil, *session.players[2])

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"round 1: alice, bob, carol",
		"alice plays alone",
		"alice plays HJ",
		"trick goes to carol",
		"round over, 71 points, won. totals: alice 48, bob 0, carol 0",
		"carol left",
	}, lines)
}

func TestInfoShowsHandWithNumbers(t *testing.T) {
	c, session, out := newTestConsole()
	session.state.Game.Ready[1] = true
	_, err := c.Execute(context.Background(), "info")
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "phase setup, round 0")
	assert.Contains(t, text, "bob")
	assert.Contains(t, text, "you, ready")
	cards := session.state.MyHand.Cards()
	assert.Contains(t, text, "hand 1:"+cards[0].String()+" 2:"+cards[1].String()+" 3:"+cards[2].String())
}

func TestRunStopsAtQuitOrEOF(t *testing.T) {
	c, session, out := newTestConsole()
	require.NoError(t, c.Run(context.Background(), strings.NewReader("ready\nquit\nready\n")))
	assert.Len(t, session.actions, 1)
	assert.Contains(t, out.String(), "type 'help'")

	require.NoError(t, c.Run(context.Background(), strings.NewReader("help\nready")))
	assert.Len(t, session.actions, 2)
	assert.Contains(t, out.String(), "declare <rules>")
}
