package server

import (
	"skat.com/server/protocol"
	"skat.com/server/util"
)

// Resync queues a full snapshot for the seat held by conn.
func (s *Server) Resync(conn *Connection) {
	s.lockState()
	defer s.unlockState()
	if seat, ok := s.registry.ByConnection(conn); ok {
		s.enqueueResync(seat, conn)
	}
}

func (s *Server) enqueueResync(seat int, conn *Connection) {
	resync := protocol.Resync{
		State:     s.rules.Snapshot(seat),
		Players:   s.registry.Players(),
		Occupancy: uint8(s.registry.Mask()),
	}
	if conn.enqueue(protocol.NewResyncPackage(resync)) {
		util.Metrics.Resync()
	}
}
