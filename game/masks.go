package game

import (
	"skat.com/server/protocol"
)

// maskHand gives each recipient its own hand and nothing else.
func (s *Skat) maskHand(e *protocol.Event, recipient protocol.Player) {
	var hand protocol.CardCollection
	if recipient.Seat >= 0 && recipient.Seat < protocol.MaxSeats {
		hand = s.hands[recipient.Seat]
	}
	e.Payload = protocol.DistributeCardsPayload{Hand: hand}
}

// maskSkat hides the skat from everyone but the alone player.
func (s *Skat) maskSkat(e *protocol.Event, recipient protocol.Player) {
	p, ok := e.BiddingDone()
	if !ok {
		return
	}
	if recipient.Seat == protocol.NoSeat || recipient.Seat != s.state.AloneSeat() {
		p.Skat = [2]protocol.Card{protocol.NoCard, protocol.NoCard}
		p.SkatRevealed = false
	}
	e.Payload = p
}
