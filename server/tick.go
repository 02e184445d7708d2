package server

import (
	"time"

	"github.com/rs/zerolog/log"
	"skat.com/server/logging"
	"skat.com/server/protocol"
	"skat.com/server/util"
)

var tickLogger = log.With().Str("logger_name", "server::tick").Logger()

// Tick applies every queued action of every connected seat in seat order,
// then lets the rules advance their timers. The whole tick runs under the
// state lock; persistence is handed off after the lock is released.
func (s *Server) Tick() {
	start := time.Now()
	checkpoint := s.tickLocked()
	if checkpoint != nil {
		s.checkpoints.submit(checkpoint.state)
	}
	util.Metrics.Tick()
	util.Metrics.ObserveTick(time.Since(start).Seconds())
}

func (s *Server) tickLocked() *checkpointRequest {
	s.lockState()
	defer s.unlockState()

	for _, seat := range s.registry.ActiveSeats() {
		for _, a := range seat.Conn.inbound.DrainAll() {
			s.applyAction(seat, a)
		}
	}
	s.rules.Tick(s)

	if s.checkpoints == nil {
		return nil
	}
	cp, ok := s.rules.(Checkpointer)
	if !ok {
		return nil
	}
	saved, dirty := cp.Checkpoint()
	if !dirty {
		return nil
	}
	return &checkpointRequest{state: saved}
}

func (s *Server) applyAction(seat ActiveSeat, a protocol.Action) {
	logger := tickLogger.With().
		Str(logging.TableKey, s.config.TableName).
		Int(logging.SeatKey, seat.Index).
		Int64(logging.ActionIDKey, int64(a.ID)).
		Str(logging.ActionTypeKey, a.Type.String()).
		Logger()

	if s.recent.Seen(seat.Player.ID, a.ID) {
		util.Metrics.DuplicateAction()
		logger.Debug().Msg("Dropping duplicate action")
		return
	}

	if s.rules.Apply(a, seat.Player, s) {
		util.Metrics.ActionApplied()
		return
	}
	util.Metrics.ActionRejected()
	logger.Debug().Msg("Rejected illegal action")
	s.SendEvent(protocol.NewIllegalActionEvent(a.ID, seat.Player), seat.Index)
}
