package server

import (
	"sync"

	"skat.com/server/protocol"
)

type seatEntry struct {
	player protocol.Player
	conn   *Connection
}

// ActiveSeat is a snapshot of one connected seat.
type ActiveSeat struct {
	Index  int
	Player protocol.Player
	Conn   *Connection
}

// Registry maps seats to connections and player identities. A seat whose
// connection went away keeps its player record until ForgetReleased, so the
// same identity can take it back; such seats are not handed to newcomers.
type Registry struct {
	mu       sync.Mutex
	occupied SeatMask
	seats    [protocol.MaxSeats]*seatEntry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Allocate binds conn to the lowest free seat.
func (r *Registry) Allocate(conn *Connection, pl protocol.Player) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocateLocked(conn, pl)
}

// Bind seats conn for pl. A player whose identity holds a released seat gets
// that seat back and reconnected is true.
func (r *Registry) Bind(conn *Connection, pl protocol.Player) (seat int, reconnected bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seat, ok := r.byIdentityLocked(pl.ID); ok {
		if r.occupied.Has(seat) {
			return protocol.NoSeat, false, ErrIdentityInUse
		}
		r.bindLocked(seat, conn, pl)
		return seat, true, nil
	}
	seat, err = r.allocateLocked(conn, pl)
	return seat, false, err
}

// Retain records pl on its seat without a connection, as if it had been
// released. Used when a table is restored from a checkpoint.
func (r *Registry) Retain(pl protocol.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pl.Seat < 0 || pl.Seat >= protocol.MaxSeats || r.seats[pl.Seat] != nil {
		return false
	}
	r.seats[pl.Seat] = &seatEntry{player: pl}
	return true
}

// Release frees the seat bound to conn, if any.
func (r *Registry) Release(conn *Connection) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for seat, entry := range r.seats {
		if entry != nil && entry.conn == conn && r.occupied.Has(seat) {
			r.releaseLocked(seat)
			return seat, true
		}
	}
	return protocol.NoSeat, false
}

func (r *Registry) ReleaseSeat(seat int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.occupied.Has(seat) {
		return false
	}
	r.releaseLocked(seat)
	return true
}

// Forget drops the player record of a released seat.
func (r *Registry) Forget(seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seat >= 0 && seat < protocol.MaxSeats && !r.occupied.Has(seat) {
		r.seats[seat] = nil
	}
}

// ForgetReleased drops the player records of released seats.
func (r *Registry) ForgetReleased() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for seat, entry := range r.seats {
		if entry != nil && !r.occupied.Has(seat) {
			r.seats[seat] = nil
		}
	}
}

func (r *Registry) BySeat(seat int) (ActiveSeat, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.occupied.Has(seat) {
		return ActiveSeat{}, false
	}
	entry := r.seats[seat]
	return ActiveSeat{Index: seat, Player: entry.player, Conn: entry.conn}, true
}

func (r *Registry) ByConnection(conn *Connection) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for seat, entry := range r.seats {
		if entry != nil && entry.conn == conn && r.occupied.Has(seat) {
			return seat, true
		}
	}
	return protocol.NoSeat, false
}

// ByIdentity finds the seat recorded for id, connected or released.
func (r *Registry) ByIdentity(id protocol.PlayerID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byIdentityLocked(id)
}

// ActiveSeats returns the connected seats in seat order.
func (r *Registry) ActiveSeats() []ActiveSeat {
	r.mu.Lock()
	defer r.mu.Unlock()
	seats := make([]ActiveSeat, 0, protocol.MaxSeats)
	for seat, entry := range r.seats {
		if r.occupied.Has(seat) {
			seats = append(seats, ActiveSeat{Index: seat, Player: entry.player, Conn: entry.conn})
		}
	}
	return seats
}

func (r *Registry) Mask() SeatMask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.occupied
}

// Players returns copies of every recorded player, connected or retained.
func (r *Registry) Players() [protocol.MaxSeats]*protocol.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	var players [protocol.MaxSeats]*protocol.Player
	for seat, entry := range r.seats {
		if entry != nil {
			pl := entry.player
			players[seat] = &pl
		}
	}
	return players
}

func (r *Registry) reservedLocked() SeatMask {
	mask := r.occupied
	for seat, entry := range r.seats {
		if entry != nil {
			mask = mask.With(seat)
		}
	}
	return mask
}

func (r *Registry) allocateLocked(conn *Connection, pl protocol.Player) (int, error) {
	seat, ok := r.reservedLocked().LowestFree()
	if !ok {
		return protocol.NoSeat, ErrTableFull
	}
	r.bindLocked(seat, conn, pl)
	return seat, nil
}

func (r *Registry) bindLocked(seat int, conn *Connection, pl protocol.Player) {
	pl.Seat = seat
	r.seats[seat] = &seatEntry{player: pl, conn: conn}
	r.occupied = r.occupied.With(seat)
	conn.seat = seat
	conn.player = pl
	conn.active.Store(true)
}

func (r *Registry) releaseLocked(seat int) {
	entry := r.seats[seat]
	entry.conn.active.Store(false)
	entry.conn = nil
	r.occupied = r.occupied.Without(seat)
}

func (r *Registry) byIdentityLocked(id protocol.PlayerID) (int, bool) {
	for seat, entry := range r.seats {
		if entry != nil && entry.player.ID == id {
			return seat, true
		}
	}
	return protocol.NoSeat, false
}
