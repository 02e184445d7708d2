package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGameRules(t *testing.T) {
	r, err := ParseGameRules("grand")
	require.NoError(t, err)
	assert.Equal(t, GameRules{Type: GameGrand}, r)

	r, err = ParseGameRules("Hearts")
	require.NoError(t, err)
	assert.Equal(t, GameRules{Type: GameSuit, Trumpf: Hearts}, r)
	assert.True(t, r.Valid())

	_, err = ParseGameRules("ramsch")
	assert.Error(t, err)
	assert.False(t, GameRules{}.Valid())
}

func TestTrickRotation(t *testing.T) {
	g := NewGameState()
	g.BeginRound(1, [ActiveSeats]int{2, 3, 0})
	g.CurrentTrick = NewTrick(1)

	assert.Equal(t, 3, g.TurnSeat())
	g.AddToTrick(NewCard(Clubs, Ace))
	assert.Equal(t, 0, g.TurnSeat())
	g.AddToTrick(NewCard(Clubs, Ten))
	assert.Equal(t, 2, g.TurnSeat())
	g.AddToTrick(NewCard(Clubs, King))
	require.True(t, g.CurrentTrick.Complete())

	done := g.FinishTrick(2)
	assert.Equal(t, 2, done.Winner)
	assert.Equal(t, 1, g.TrickNum)
	assert.Equal(t, 25, done.Collection().Points())
	assert.Equal(t, done, g.LastTrick)
	assert.Equal(t, 0, g.TurnSeat())
}

func TestSuspendResume(t *testing.T) {
	g := NewGameState()
	g.Phase = PhasePlaying
	g.Suspend()
	g.Suspend()
	assert.Equal(t, PhaseSuspended, g.Phase)
	g.Resume()
	assert.Equal(t, PhasePlaying, g.Phase)
	assert.Equal(t, PhaseInvalid, g.ResumePhase)
}

func TestClientStatePartner(t *testing.T) {
	s := NewClientState(1)
	s.Game.BeginRound(1, [ActiveSeats]int{0, 1, 3})
	assert.Equal(t, NoSeat, s.Partner())

	s.Game.FinishBidding(0)
	assert.False(t, s.IsAlone())
	assert.Equal(t, 3, s.Partner())

	s.MySeat = 0
	assert.True(t, s.IsAlone())
	assert.Equal(t, NoSeat, s.Partner())

	s.MySeat = 2
	assert.Equal(t, NoIndex, s.MyActiveIndex())
	assert.Equal(t, NoSeat, s.Partner())
}

func TestClientStateQueriesOnReturnedValue(t *testing.T) {
	alone := func() ClientState {
		s := NewClientState(0)
		s.Game.BeginRound(1, [ActiveSeats]int{0, 1, 2})
		s.Game.FinishBidding(0)
		return s
	}
	assert.True(t, alone().IsAlone())
	assert.Equal(t, 0, alone().MyActiveIndex())
	assert.Equal(t, NoSeat, alone().Partner())
}

func TestClientStateApplyPlaySequence(t *testing.T) {
	me := Player{ID: "b", Name: "bob", Seat: 1}
	other := Player{ID: "a", Name: "alice", Seat: 0}
	hand := CollectionOf(NewCard(Clubs, Ace), NewCard(Hearts, Seven))

	s := NewClientState(1)
	s.Apply(NewEvent(EventStartGame, NoActionID, Player{}, nil))
	s.Apply(NewEvent(EventStartRound, NoActionID, Player{}, StartRoundPayload{RoundNum: 1, ActivePlayers: [ActiveSeats]int{0, 1, 2}}))
	s.Apply(NewEvent(EventDistributeCards, NoActionID, Player{}, DistributeCardsPayload{Hand: hand}))
	s.Apply(NewEvent(EventBiddingDone, NoActionID, other, BiddingDonePayload{AlonePlayer: 0, Skat: [2]Card{NoCard, NoCard}}))
	s.Apply(NewEvent(EventRulesChanged, NoActionID, other, RulesChangedPayload{Rules: GameRules{Type: GameGrand}}))
	assert.Equal(t, PhasePlaying, s.Game.Phase)
	assert.False(t, s.SkatKnown)

	s.Apply(NewEvent(EventPlayCard, NoActionID, other, PlayCardPayload{Card: NewCard(Clubs, Ten)}))
	s.Apply(NewEvent(EventPlayCard, NoActionID, me, PlayCardPayload{Card: NewCard(Clubs, Ace)}))
	assert.False(t, s.MyHand.Contains(NewCard(Clubs, Ace)))
	assert.Equal(t, 1, s.MyHand.Len())

	s.Apply(NewEvent(EventPlayCard, NoActionID, Player{Seat: 2}, PlayCardPayload{Card: NewCard(Clubs, Seven)}))
	s.Apply(NewEvent(EventTrickDone, NoActionID, Player{}, TrickDonePayload{Winner: 1}))
	assert.Equal(t, 1, s.Game.TrickNum)
	assert.Equal(t, 21, s.MyTricks.Points())
	assert.Equal(t, 1, s.Game.CurrentTrick.Vorhand)
	assert.Equal(t, 1, s.Game.TurnSeat())
}
