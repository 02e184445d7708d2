package game

import (
	"time"

	"skat.com/server/protocol"
)

// SavedState is a full checkpoint of the table, private cards included.
type SavedState struct {
	Table       string                                     `json:"table"`
	Game        protocol.GameState                         `json:"game"`
	Players     [protocol.MaxSeats]*protocol.Player        `json:"players"`
	Hands       [protocol.MaxSeats]protocol.CardCollection `json:"hands"`
	Won         [protocol.MaxSeats]protocol.CardCollection `json:"won"`
	Skat        [2]protocol.Card                           `json:"skat"`
	GameStarted bool                                       `json:"gameStarted"`
	SavedAt     time.Time                                  `json:"savedAt"`
}

// Checkpoint returns the state if it changed since the last checkpoint.
func (s *Skat) Checkpoint() (SavedState, bool) {
	if !s.dirty {
		return SavedState{}, false
	}
	s.dirty = false
	st := SavedState{
		Table:       s.tableName,
		Game:        s.state,
		Hands:       s.hands,
		Won:         s.won,
		Skat:        s.skat,
		GameStarted: s.gameStarted,
		SavedAt:     s.now(),
	}
	for seat, p := range s.players {
		if p != nil {
			cp := *p
			st.Players[seat] = &cp
		}
	}
	return st, true
}

// Restore loads a checkpoint. Every player starts disconnected, so a round
// in progress comes back suspended until its players reconnect.
func (s *Skat) Restore(st SavedState) {
	s.state = st.Game
	s.hands = st.Hands
	s.won = st.Won
	s.skat = st.Skat
	s.gameStarted = st.GameStarted
	s.connected = [protocol.MaxSeats]bool{}
	s.players = [protocol.MaxSeats]*protocol.Player{}
	for seat, p := range st.Players {
		if p != nil {
			cp := *p
			s.players[seat] = &cp
		}
	}

	switch s.state.Phase {
	case protocol.PhaseBidding, protocol.PhaseDeclaring, protocol.PhasePlaying:
		s.state.Suspend()
	case protocol.PhaseBetweenRounds:
		s.deadline = s.now().Add(s.timing.BetweenRoundsDuration())
	}
	s.dirty = true
}

// Players lists the known players by seat.
func (s *Skat) Players() [protocol.MaxSeats]*protocol.Player {
	var out [protocol.MaxSeats]*protocol.Player
	for seat, p := range s.players {
		if p != nil {
			cp := *p
			out[seat] = &cp
		}
	}
	return out
}
