package server

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"skat.com/server/logging"
	"skat.com/server/protocol"
	"skat.com/server/transport"
	"skat.com/server/util"
)

var handlerLogger = log.With().Str("logger_name", "server::handler").Logger()

// HandleTransport runs one client connection to completion: handshake, then
// a writer goroutine and the read loop until either side fails.
func (s *Server) HandleTransport(ctx context.Context, tr transport.Transport) {
	conn := newConnection(tr)
	logger := handlerLogger.With().
		Str(logging.TableKey, s.config.TableName).
		Str(logging.ConnIDKey, conn.id).
		Str("remote", tr.RemoteAddr()).
		Logger()

	reconnected, err := s.handshake(ctx, conn)
	if err != nil {
		logger.Info().Err(err).Msg("Handshake failed")
		tr.Close()
		return
	}
	logger = logger.With().
		Int(logging.SeatKey, conn.seat).
		Str(logging.PlayerIDKey, string(conn.player.ID)).
		Str(logging.PlayerNameKey, conn.player.Name).
		Logger()
	logger.Info().Bool("reconnected", reconnected).Msg("Player seated")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.joined(conn)

	go s.writeLoop(ctx, cancel, conn, logger)
	s.readLoop(ctx, conn, logger)
	cancel()
	s.disconnect(conn)
	logger.Info().Msg("Player left")
}

func (s *Server) handshake(ctx context.Context, conn *Connection) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.HandshakeTimeout)
	defer cancel()

	p, err := conn.transport.Receive(ctx)
	if err != nil {
		return false, errors.Wrap(err, "receiving handshake")
	}
	if p.Type != protocol.PackageHandshake {
		s.reject(ctx, conn, ErrBadHandshake.Reason)
		return false, errors.Errorf("expected handshake, got %s", p.Type)
	}
	pl := p.Handshake.Player
	if err := pl.Validate(); err != nil {
		s.reject(ctx, conn, ErrBadHandshake.Reason+": "+err.Error())
		return false, errors.Wrap(err, "validating player")
	}

	seat, reconnected, err := s.registry.Bind(conn, pl)
	if err != nil {
		s.reject(ctx, conn, err.Error())
		return false, errors.Wrapf(err, "seating %s", pl.Name)
	}
	if p.Handshake.Resume && !reconnected {
		handlerLogger.Info().Str(logging.PlayerIDKey, string(pl.ID)).Msg("Nothing to resume. Seating as a new player")
	}

	ack := protocol.HandshakeAck{
		Seat:        seat,
		Reconnected: reconnected,
		Players:     s.registry.Players(),
	}
	if err := conn.transport.Send(ctx, protocol.NewAckPackage(ack)); err != nil {
		s.registry.Release(conn)
		if !reconnected {
			// the rules never saw this player
			s.registry.Forget(seat)
		}
		return false, errors.Wrap(err, "sending handshake ack")
	}
	return reconnected, nil
}

func (s *Server) reject(ctx context.Context, conn *Connection, reason string) {
	util.Metrics.HandshakeRejected()
	if err := conn.transport.Send(ctx, protocol.NewRejectPackage(reason)); err != nil {
		handlerLogger.Debug().Err(err).Msg("Could not send handshake reject")
	}
}

// joined tells the rules and the other seats about a seated connection and
// queues its first resync, all under one state lock so the snapshot matches
// the events queued after it.
func (s *Server) joined(conn *Connection) {
	s.lockState()
	defer s.unlockState()

	s.rules.NotifyJoin(conn.player, s)
	for _, other := range s.registry.ActiveSeats() {
		if other.Conn != conn {
			other.Conn.enqueue(protocol.NewJoinPackage(conn.player))
		}
	}
	s.enqueueResync(conn.seat, conn)

	util.Metrics.SetActiveSeats(s.registry.Mask().Count())
	if s.observer != nil {
		s.observer.ObserveSeat(conn.player, true)
	}
}

func (s *Server) disconnect(conn *Connection) {
	conn.closeOnce.Do(func() {
		// Release and notify under one lock hold, so a reconnect of the same
		// identity is joined only after the rules saw it leave.
		s.lockState()
		if _, ok := s.registry.Release(conn); ok {
			s.rules.NotifyDisconnect(conn.player, s)
			for _, other := range s.registry.ActiveSeats() {
				other.Conn.enqueue(protocol.NewLeavePackage(conn.player))
			}
			util.Metrics.SetActiveSeats(s.registry.Mask().Count())
			if s.observer != nil {
				s.observer.ObserveSeat(conn.player, false)
			}
		}
		s.unlockState()
		conn.transport.Close()
	})
}

func (s *Server) readLoop(ctx context.Context, conn *Connection, logger zerolog.Logger) {
	for {
		p, err := conn.transport.Receive(ctx)
		if err != nil {
			logger.Debug().Err(err).Msg("Read loop returning")
			return
		}
		switch p.Type {
		case protocol.PackageAction:
			conn.inbound.Push(*p.Action)
		case protocol.PackageResyncRequest:
			s.Resync(conn)
		default:
			logger.Warn().Str("package", string(p.Type)).Msg("Ignoring unexpected package")
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *Connection, logger zerolog.Logger) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.wake:
		}
		for _, p := range conn.outbound.DrainAll() {
			if err := conn.transport.Send(ctx, p); err != nil {
				logger.Debug().Err(err).Msg("Write loop returning")
				return
			}
		}
	}
}
