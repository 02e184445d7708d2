package game

import (
	"time"

	"skat.com/server/crashtest"
	"skat.com/server/logging"
	"skat.com/server/protocol"
)

func (s *Skat) ready(a protocol.Action, pl protocol.Player, t Table) bool {
	switch s.state.Phase {
	case protocol.PhaseSetup, protocol.PhaseBetweenRounds:
	default:
		return false
	}
	if s.state.Ready[pl.Seat] {
		return false
	}
	s.state.MarkReady(pl.Seat)
	s.broadcast(t, protocol.NewEvent(protocol.EventPlayerReady, a.ID, pl, nil), nil)

	seats := s.connectedSeats()
	if len(seats) < MinPlayers {
		return true
	}
	for _, seat := range seats {
		if !s.state.Ready[seat] {
			return true
		}
	}
	if !s.gameStarted {
		s.gameStarted = true
		s.state.StartGame()
		s.broadcast(t, protocol.NewEvent(protocol.EventStartGame, protocol.NoActionID, protocol.NoPlayer, nil), nil)
	}
	s.startRound(t)
	return true
}

// activeForRound picks three of the connected seats. With four players the
// dealer sits out; the dealer and vorhand rotate with the round number.
func activeForRound(seats []int, roundNum int) [protocol.ActiveSeats]int {
	var active [protocol.ActiveSeats]int
	n := len(seats)
	first := (roundNum - 1) % n
	if n > protocol.ActiveSeats {
		first++
	}
	for i := range active {
		active[i] = seats[(first+i)%n]
	}
	return active
}

func (s *Skat) startRound(t Table) {
	t.ForgetReleased()
	for seat := range s.players {
		if !s.connected[seat] {
			s.players[seat] = nil
		}
	}

	roundNum := s.state.RoundNum + 1
	active := activeForRound(s.connectedSeats(), roundNum)

	deck := protocol.FullDeck()
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	s.hands = [protocol.MaxSeats]protocol.CardCollection{}
	s.won = [protocol.MaxSeats]protocol.CardCollection{}
	for i, c := range deck[:protocol.ActiveSeats*protocol.NumTricks] {
		s.hands[active[i/protocol.NumTricks]].Add(c)
	}
	copy(s.skat[:], deck[protocol.ActiveSeats*protocol.NumTricks:])

	s.state.BeginRound(roundNum, active)
	skatLogger.Info().Str(logging.TableKey, s.tableName).Msgf("Round %d, active seats %v", roundNum, active)
	s.broadcast(t, protocol.NewEvent(protocol.EventStartRound, protocol.NoActionID, protocol.NoPlayer,
		protocol.StartRoundPayload{RoundNum: roundNum, ActivePlayers: active}), nil)
	s.broadcast(t, protocol.NewEvent(protocol.EventDistributeCards, protocol.NoActionID, protocol.NoPlayer,
		protocol.DistributeCardsPayload{}), s.maskHand)

	// Bidding is not negotiated: vorhand plays alone.
	const alone = 0
	s.state.FinishBidding(alone)
	s.broadcast(t, protocol.NewEvent(protocol.EventBiddingDone, protocol.NoActionID, *s.players[active[alone]],
		protocol.BiddingDonePayload{AlonePlayer: alone, Skat: s.skat, SkatRevealed: true}), s.maskSkat)
	s.deadline = s.now().Add(s.timing.DeclareTimeoutDuration())
	crashtest.Hit(s.tableName, crashtest.CrashPoint_DEAL)
}

func (s *Skat) declare(a protocol.Action, pl protocol.Player, t Table) bool {
	if s.state.Phase != protocol.PhaseDeclaring || s.state.AloneSeat() != pl.Seat || !a.Rules.Valid() {
		return false
	}
	s.applyRules(a.Rules, pl, a.ID, t)
	return true
}

func (s *Skat) applyRules(rules protocol.GameRules, pl protocol.Player, answerTo protocol.ActionID, t Table) {
	s.state.Declare(rules)
	s.deadline = time.Time{}
	s.broadcast(t, protocol.NewEvent(protocol.EventRulesChanged, answerTo, pl,
		protocol.RulesChangedPayload{Rules: rules}), nil)
}

func (s *Skat) playCard(a protocol.Action, pl protocol.Player, t Table) bool {
	if s.state.Phase != protocol.PhasePlaying || s.state.TurnSeat() != pl.Seat {
		return false
	}
	hand := s.hands[pl.Seat]
	if !legalPlay(s.state.Rules, s.state.CurrentTrick, hand, a.Card) {
		return false
	}
	s.hands[pl.Seat].Remove(a.Card)
	s.state.AddToTrick(a.Card)
	s.broadcast(t, protocol.NewEvent(protocol.EventPlayCard, a.ID, pl,
		protocol.PlayCardPayload{Card: a.Card}), nil)

	if s.state.CurrentTrick.Complete() {
		s.finishTrick(t)
	}
	return true
}

func (s *Skat) finishTrick(t Table) {
	winner := trickWinner(s.state.Rules, s.state.CurrentTrick)
	seat := s.state.ActivePlayers[winner]
	done := s.state.FinishTrick(winner)
	s.won[seat] |= done.Collection()
	s.broadcast(t, protocol.NewEvent(protocol.EventTrickDone, protocol.NoActionID, *s.players[seat],
		protocol.TrickDonePayload{Winner: seat}), nil)
	crashtest.Hit(s.tableName, crashtest.CrashPoint_TRICK_DONE)

	if s.state.TrickNum == protocol.NumTricks {
		s.finishRound(t)
	}
}

func (s *Skat) finishRound(t Table) {
	rules := s.state.Rules
	aloneSeat := s.state.AloneSeat()
	points := s.won[aloneSeat].Points() + protocol.CollectionOf(s.skat[:]...).Points()

	var won bool
	if rules.Type == protocol.GameNull {
		won = s.won[aloneSeat].Len() == 0
	} else {
		won = points > 60
	}
	score := gameValue(rules)
	if !won {
		score = -2 * score
	}

	var round [protocol.MaxSeats]int
	round[aloneSeat] = score
	total := s.state.TotalScore
	total[aloneSeat] += score
	s.state.FinishRound(round, total)

	alone := *s.players[aloneSeat]
	s.broadcast(t, protocol.NewEvent(protocol.EventRoundDone, protocol.NoActionID, alone,
		protocol.RoundDonePayload{Round: round, Total: total, AlonePoints: points, Won: won}), nil)
	t.RecordResult(RoundResult{
		Table:       s.tableName,
		RoundNum:    s.state.RoundNum,
		AloneSeat:   aloneSeat,
		AlonePlayer: string(alone.ID),
		AloneName:   alone.Name,
		GameType:    rules.String(),
		AlonePoints: points,
		Won:         won,
		Score:       score,
		FinishedAt:  s.now(),
	})
	skatLogger.Info().
		Str(logging.TableKey, s.tableName).
		Str(logging.PlayerNameKey, alone.Name).
		Msgf("Round %d done: %s with %d points, won=%v, score %d", s.state.RoundNum, rules, points, won, score)
	s.deadline = s.now().Add(s.timing.BetweenRoundsDuration())
	crashtest.Hit(s.tableName, crashtest.CrashPoint_ROUND_DONE)
}
