package server

import (
	"skat.com/server/game"
	"skat.com/server/protocol"
	"skat.com/server/util"
)

// Distribute queues a copy of e for every connected seat. mask, when set,
// edits each copy for its recipient. Only the player the event is attributed
// to sees AnswerTo. Observers get a copy masked for a seatless viewer.
func (s *Server) Distribute(e protocol.Event, mask protocol.MaskFunc) {
	s.assertLocked("Distribute")

	sent := 0
	for _, seat := range s.registry.ActiveSeats() {
		if seat.Conn.enqueue(protocol.NewEventPackage(s.copyFor(e, mask, seat.Player))) {
			sent++
		}
	}
	util.Metrics.EventsDistributed(sent)

	if s.observer != nil {
		s.observer.ObserveEvent(s.copyFor(e, mask, protocol.Observer))
	}
}

// SendEvent queues e for one seat, unmasked.
func (s *Server) SendEvent(e protocol.Event, seat int) {
	s.assertLocked("SendEvent")
	if active, ok := s.registry.BySeat(seat); ok {
		if active.Conn.enqueue(protocol.NewEventPackage(e)) {
			util.Metrics.EventsDistributed(1)
		}
	}
}

func (s *Server) ForgetReleased() {
	s.registry.ForgetReleased()
}

func (s *Server) RecordResult(r game.RoundResult) {
	if s.results != nil {
		s.results.submit(r)
	}
}

func (s *Server) copyFor(e protocol.Event, mask protocol.MaskFunc, recipient protocol.Player) protocol.Event {
	cp := e
	if mask != nil {
		mask(&cp, recipient)
	}
	if !cp.Player.Is(recipient) {
		cp.AnswerTo = protocol.NoActionID
	}
	return cp
}
