package game

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"skat.com/server/logging"
	"skat.com/server/protocol"
	"skat.com/server/util/random"
)

var skatLogger = log.With().Str("logger_name", "game::skat").Logger()

// MinPlayers is the number of connected players needed to deal a round.
const MinPlayers = protocol.ActiveSeats

type Config struct {
	TableName string
	Timing    Timing
	// Source shuffles the deck. Nil means a crypto seeded source.
	Source rand.Source
	// Now is the clock used for timeouts. Nil means time.Now.
	Now func() time.Time
}

// Skat is the authoritative table state and the rules that change it. It is
// not safe for concurrent use; the server serializes every call under its
// state lock.
type Skat struct {
	tableName string
	timing    Timing
	rng       *rand.Rand
	now       func() time.Time

	state       protocol.GameState
	players     [protocol.MaxSeats]*protocol.Player
	connected   [protocol.MaxSeats]bool
	hands       [protocol.MaxSeats]protocol.CardCollection
	won         [protocol.MaxSeats]protocol.CardCollection
	skat        [2]protocol.Card
	gameStarted bool
	deadline    time.Time
	dirty       bool
}

func NewSkat(config Config) *Skat {
	source := config.Source
	if source == nil {
		source = random.NewSource()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Skat{
		tableName: config.TableName,
		timing:    config.Timing,
		rng:       rand.New(source),
		now:       now,
		state:     protocol.NewGameState(),
		skat:      [2]protocol.Card{protocol.NoCard, protocol.NoCard},
	}
}

// Apply validates an action against the current phase and turn. It returns
// false when the action is illegal, in which case nothing changed.
func (s *Skat) Apply(a protocol.Action, pl protocol.Player, t Table) bool {
	if !s.seated(pl) {
		return false
	}
	var ok bool
	switch a.Type {
	case protocol.ActionReady:
		ok = s.ready(a, pl, t)
	case protocol.ActionRuleChange:
		ok = s.declare(a, pl, t)
	case protocol.ActionPlayCard:
		ok = s.playCard(a, pl, t)
	}
	if !ok {
		skatLogger.Debug().
			Str(logging.PlayerNameKey, pl.Name).
			Int(logging.SeatKey, pl.Seat).
			Str(logging.PhaseKey, s.state.Phase.String()).
			Msgf("Rejected %s", a)
	}
	return ok
}

// Tick advances phases that wait on time.
func (s *Skat) Tick(t Table) {
	if s.deadline.IsZero() || s.now().Before(s.deadline) {
		return
	}
	switch s.state.Phase {
	case protocol.PhaseDeclaring:
		alone := s.players[s.state.AloneSeat()]
		skatLogger.Info().Str(logging.PlayerNameKey, alone.Name).Msg("Declare timeout, playing grand")
		s.applyRules(protocol.GameRules{Type: protocol.GameGrand}, *alone, protocol.NoActionID, t)
	case protocol.PhaseBetweenRounds:
		if len(s.connectedSeats()) >= MinPlayers {
			s.startRound(t)
		}
	}
}

func (s *Skat) NotifyJoin(pl protocol.Player, t Table) {
	seat := pl.Seat
	if prev := s.players[seat]; prev == nil || !prev.Is(pl) {
		s.state.ClearReady(seat)
	}
	p := pl
	s.players[seat] = &p
	s.connected[seat] = true
	s.dirty = true

	if s.state.Phase == protocol.PhaseSuspended && s.activeConnected() {
		s.state.Resume()
		if s.state.Phase == protocol.PhaseDeclaring {
			s.deadline = s.now().Add(s.timing.DeclareTimeoutDuration())
		}
		s.broadcast(t, protocol.NewEvent(protocol.EventResumeGame, protocol.NoActionID, pl, nil), nil)
	}
}

func (s *Skat) NotifyDisconnect(pl protocol.Player, t Table) {
	seat := pl.Seat
	s.connected[seat] = false
	s.dirty = true

	switch s.state.Phase {
	case protocol.PhaseSetup, protocol.PhaseBetweenRounds:
		// No round holds the seat, so it is free for anyone. A returning
		// identity that lands on the same seat keeps its ready flag.
		t.ForgetReleased()
	case protocol.PhaseDeclaring, protocol.PhasePlaying:
		if s.state.ActiveIndex(seat) != protocol.NoIndex {
			s.state.Suspend()
			s.broadcast(t, protocol.NewEvent(protocol.EventSuspendGame, protocol.NoActionID, pl, nil), nil)
		}
	}
}

// Snapshot is the table as seen by one seat, masked like live events.
// NoSeat yields the observer view.
func (s *Skat) Snapshot(seat int) protocol.ClientState {
	cs := protocol.NewClientState(seat)
	cs.Game = s.state
	if seat < 0 || seat >= protocol.MaxSeats {
		return cs
	}
	cs.MyHand = s.hands[seat]
	cs.MyTricks = s.won[seat]
	if seat == s.state.AloneSeat() {
		cs.Skat = s.skat
		cs.SkatKnown = true
	}
	return cs
}

func (s *Skat) Phase() protocol.GamePhase {
	return s.state.Phase
}

func (s *Skat) seated(pl protocol.Player) bool {
	if pl.Seat < 0 || pl.Seat >= protocol.MaxSeats {
		return false
	}
	p := s.players[pl.Seat]
	return p != nil && p.Is(pl) && s.connected[pl.Seat]
}

func (s *Skat) connectedSeats() []int {
	var seats []int
	for seat, c := range s.connected {
		if c {
			seats = append(seats, seat)
		}
	}
	return seats
}

func (s *Skat) activeConnected() bool {
	for _, seat := range s.state.ActivePlayers {
		if seat == protocol.NoSeat || !s.connected[seat] {
			return false
		}
	}
	return true
}

func (s *Skat) broadcast(t Table, e protocol.Event, mask protocol.MaskFunc) {
	s.dirty = true
	t.Distribute(e, mask)
}
