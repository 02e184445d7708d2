package protocol

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	MaxSeats      = 4
	NoSeat        = -1
	MaxNameLength = 16
)

type PlayerID string

// Player is a participant's identity. The ID is stable across reconnects, the
// seat is assigned by the server.
type Player struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
	Seat int      `json:"seat"`
}

// NoPlayer marks events not attributed to a player.
var NoPlayer = Player{Seat: NoSeat}

// Observer is the recipient used when masking events for seatless viewers.
var Observer = Player{ID: "", Name: "observer", Seat: NoSeat}

func (p Player) Is(other Player) bool {
	return p.ID != "" && p.ID == other.ID
}

func (p Player) Validate() error {
	if p.ID == "" {
		return errors.New("player id is empty")
	}
	if p.Name == "" {
		return errors.New("player name is empty")
	}
	if len(p.Name) > MaxNameLength {
		return errors.Errorf("player name %q exceeds %d characters", p.Name, MaxNameLength)
	}
	return nil
}

func (p Player) String() string {
	if p.Seat == NoSeat {
		return p.Name
	}
	return fmt.Sprintf("%s@%d", p.Name, p.Seat)
}
