package protocol

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	ActiveSeats = 3
	NumTricks   = 10
	// NoIndex marks an unset active-player index.
	NoIndex = -1
)

type GameType int

const (
	GameNone GameType = iota
	GameSuit
	GameGrand
	GameNull
)

var gameTypeNames = map[GameType]string{
	GameNone:  "none",
	GameSuit:  "suit",
	GameGrand: "grand",
	GameNull:  "null",
}

func (t GameType) String() string {
	if name, ok := gameTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("game(%d)", int(t))
}

// GameRules is what the alone player declares. Trumpf is only meaningful for
// suit games.
type GameRules struct {
	Type   GameType `json:"type"`
	Trumpf Suit     `json:"trumpf"`
}

func (r GameRules) Valid() bool {
	switch r.Type {
	case GameGrand, GameNull:
		return true
	case GameSuit:
		return r.Trumpf <= Clubs
	}
	return false
}

func (r GameRules) String() string {
	if r.Type == GameSuit {
		return r.Trumpf.String()
	}
	return r.Type.String()
}

// ParseGameRules accepts grand, null or a suit name.
func ParseGameRules(s string) (GameRules, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grand", "g":
		return GameRules{Type: GameGrand}, nil
	case "null", "n":
		return GameRules{Type: GameNull}, nil
	}
	if suit, ok := ParseSuit(s); ok {
		return GameRules{Type: GameSuit, Trumpf: suit}, nil
	}
	return GameRules{}, errors.Errorf("unknown game %q", s)
}

type GamePhase int

const (
	PhaseInvalid GamePhase = iota
	PhaseSetup
	PhaseBidding
	PhaseDeclaring
	PhasePlaying
	PhaseSuspended
	PhaseBetweenRounds
)

var phaseNames = map[GamePhase]string{
	PhaseInvalid:       "invalid",
	PhaseSetup:         "setup",
	PhaseBidding:       "bidding",
	PhaseDeclaring:     "declaring",
	PhasePlaying:       "playing",
	PhaseSuspended:     "suspended",
	PhaseBetweenRounds: "between-rounds",
}

func (p GamePhase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Trick is one stich. Cards are stored in play order starting with the
// player at Vorhand, an index into the active players.
type Trick struct {
	Vorhand int               `json:"vorhand"`
	Played  int               `json:"played"`
	Cards   [ActiveSeats]Card `json:"cards"`
	Winner  int               `json:"winner"`
}

func NewTrick(vorhand int) Trick {
	return Trick{
		Vorhand: vorhand,
		Cards:   [ActiveSeats]Card{NoCard, NoCard, NoCard},
		Winner:  NoIndex,
	}
}

func (t Trick) Complete() bool {
	return t.Played == ActiveSeats
}

// PlayedBy returns the active index of whoever played the i-th card.
func (t Trick) PlayedBy(i int) int {
	return (t.Vorhand + i) % ActiveSeats
}

func (t Trick) Collection() CardCollection {
	var cc CardCollection
	for i := 0; i < t.Played; i++ {
		cc.Add(t.Cards[i])
	}
	return cc
}

// GameState is the public part of the table state. Every transition is a
// method here so the server and the mirroring clients apply them the same
// way.
type GameState struct {
	Phase         GamePhase        `json:"phase"`
	ResumePhase   GamePhase        `json:"resumePhase"`
	Rules         GameRules        `json:"rules"`
	RoundNum      int              `json:"roundNum"`
	ActivePlayers [ActiveSeats]int `json:"activePlayers"`
	AlonePlayer   int              `json:"alonePlayer"`
	CurrentTrick  Trick            `json:"currentTrick"`
	LastTrick     Trick            `json:"lastTrick"`
	TrickNum      int              `json:"trickNum"`
	Ready         [MaxSeats]bool   `json:"ready"`
	RoundScore    [MaxSeats]int    `json:"roundScore"`
	TotalScore    [MaxSeats]int    `json:"totalScore"`
}

func NewGameState() GameState {
	return GameState{
		Phase:         PhaseSetup,
		ActivePlayers: [ActiveSeats]int{NoSeat, NoSeat, NoSeat},
		AlonePlayer:   NoIndex,
		CurrentTrick:  NewTrick(0),
		LastTrick:     NewTrick(0),
	}
}

// ActiveIndex maps a seat to its index among the active players.
func (g *GameState) ActiveIndex(seat int) int {
	if seat == NoSeat {
		return NoIndex
	}
	for i, s := range g.ActivePlayers {
		if s == seat {
			return i
		}
	}
	return NoIndex
}

func (g *GameState) TurnIndex() int {
	return g.CurrentTrick.PlayedBy(g.CurrentTrick.Played)
}

// TurnSeat is the seat expected to play next.
func (g *GameState) TurnSeat() int {
	return g.ActivePlayers[g.TurnIndex()]
}

func (g *GameState) AloneSeat() int {
	if g.AlonePlayer == NoIndex {
		return NoSeat
	}
	return g.ActivePlayers[g.AlonePlayer]
}

func (g *GameState) ReadyCount() int {
	n := 0
	for _, r := range g.Ready {
		if r {
			n++
		}
	}
	return n
}

func (g *GameState) MarkReady(seat int) {
	if seat >= 0 && seat < MaxSeats {
		g.Ready[seat] = true
	}
}

func (g *GameState) ClearReady(seat int) {
	if seat >= 0 && seat < MaxSeats {
		g.Ready[seat] = false
	}
}

func (g *GameState) StartGame() {
	g.TotalScore = [MaxSeats]int{}
	g.RoundNum = 0
}

func (g *GameState) BeginRound(roundNum int, active [ActiveSeats]int) {
	g.Phase = PhaseBidding
	g.ResumePhase = PhaseInvalid
	g.Rules = GameRules{}
	g.RoundNum = roundNum
	g.ActivePlayers = active
	g.AlonePlayer = NoIndex
	g.CurrentTrick = NewTrick(0)
	g.LastTrick = NewTrick(0)
	g.TrickNum = 0
	g.Ready = [MaxSeats]bool{}
	g.RoundScore = [MaxSeats]int{}
}

func (g *GameState) FinishBidding(alone int) {
	g.AlonePlayer = alone
	g.Phase = PhaseDeclaring
}

func (g *GameState) Declare(rules GameRules) {
	g.Rules = rules
	g.Phase = PhasePlaying
}

func (g *GameState) AddToTrick(c Card) {
	t := &g.CurrentTrick
	if t.Played < ActiveSeats {
		t.Cards[t.Played] = c
		t.Played++
	}
}

// FinishTrick closes the current trick with the given winner, who leads
// the next one. It returns the closed trick.
func (g *GameState) FinishTrick(winner int) Trick {
	done := g.CurrentTrick
	done.Winner = winner
	g.LastTrick = done
	g.CurrentTrick = NewTrick(winner)
	g.TrickNum++
	return done
}

func (g *GameState) FinishRound(round, total [MaxSeats]int) {
	g.RoundScore = round
	g.TotalScore = total
	g.Phase = PhaseBetweenRounds
}

func (g *GameState) Suspend() {
	if g.Phase == PhaseSuspended {
		return
	}
	g.ResumePhase = g.Phase
	g.Phase = PhaseSuspended
}

func (g *GameState) Resume() {
	if g.Phase != PhaseSuspended {
		return
	}
	g.Phase = g.ResumePhase
	g.ResumePhase = PhaseInvalid
}

// ClientState is what one seat knows about the table: the public state
// plus its own hand and won cards. Other hands are never part of it.
type ClientState struct {
	Game      GameState      `json:"game"`
	MySeat    int            `json:"mySeat"`
	MyHand    CardCollection `json:"myHand"`
	MyTricks  CardCollection `json:"myTricks"`
	Skat      [2]Card        `json:"skat"`
	SkatKnown bool           `json:"skatKnown"`
}

func NewClientState(seat int) ClientState {
	return ClientState{
		Game:   NewGameState(),
		MySeat: seat,
		Skat:   [2]Card{NoCard, NoCard},
	}
}

func (s ClientState) MyActiveIndex() int {
	return s.Game.ActiveIndex(s.MySeat)
}

func (s ClientState) IsAlone() bool {
	idx := s.MyActiveIndex()
	return idx != NoIndex && idx == s.Game.AlonePlayer
}

// Partner is the seat of the other defender, or NoSeat when this seat plays
// alone, sits out, or no alone player is known yet.
func (s ClientState) Partner() int {
	me := s.MyActiveIndex()
	if me == NoIndex || s.Game.AlonePlayer == NoIndex || me == s.Game.AlonePlayer {
		return NoSeat
	}
	for i, seat := range s.Game.ActivePlayers {
		if i != me && i != s.Game.AlonePlayer {
			return seat
		}
	}
	return NoSeat
}

// Apply advances the mirrored state by one event addressed to this seat.
func (s *ClientState) Apply(e Event) {
	switch e.Type {
	case EventPlayerReady:
		s.Game.MarkReady(e.Player.Seat)
	case EventStartGame:
		s.Game.StartGame()
	case EventStartRound:
		if p, ok := e.StartRound(); ok {
			s.Game.BeginRound(p.RoundNum, p.ActivePlayers)
			s.MyHand = 0
			s.MyTricks = 0
			s.Skat = [2]Card{NoCard, NoCard}
			s.SkatKnown = false
		}
	case EventDistributeCards:
		if p, ok := e.DistributeCards(); ok {
			s.MyHand = p.Hand
		}
	case EventBiddingDone:
		if p, ok := e.BiddingDone(); ok {
			s.Game.FinishBidding(p.AlonePlayer)
			if p.SkatRevealed {
				s.Skat = p.Skat
				s.SkatKnown = true
			}
		}
	case EventRulesChanged:
		if p, ok := e.RulesChanged(); ok {
			s.Game.Declare(p.Rules)
		}
	case EventPlayCard:
		if p, ok := e.PlayCard(); ok {
			s.Game.AddToTrick(p.Card)
			if e.Player.Seat == s.MySeat {
				s.MyHand.Remove(p.Card)
			}
		}
	case EventTrickDone:
		if p, ok := e.TrickDone(); ok {
			done := s.Game.FinishTrick(s.Game.ActiveIndex(p.Winner))
			if p.Winner == s.MySeat {
				s.MyTricks |= done.Collection()
			}
		}
	case EventRoundDone:
		if p, ok := e.RoundDone(); ok {
			s.Game.FinishRound(p.Round, p.Total)
		}
	case EventSuspendGame:
		s.Game.Suspend()
	case EventResumeGame:
		s.Game.Resume()
	}
}
