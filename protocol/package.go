package protocol

import (
	"github.com/pkg/errors"
)

type PackageType string

const (
	PackageHandshake       PackageType = "handshake"
	PackageHandshakeAck    PackageType = "handshake-ack"
	PackageHandshakeReject PackageType = "handshake-reject"
	PackageAction          PackageType = "action"
	PackageEvent           PackageType = "event"
	PackageJoin            PackageType = "join"
	PackageLeave           PackageType = "leave"
	PackageResyncRequest   PackageType = "resync-request"
	PackageResync          PackageType = "resync"
)

type Handshake struct {
	Player Player `json:"player"`
	// Resume asks to take back a seat held under the same identity.
	Resume bool `json:"resume"`
}

type HandshakeAck struct {
	Seat        int               `json:"seat"`
	Reconnected bool              `json:"reconnected"`
	Players     [MaxSeats]*Player `json:"players"`
}

type HandshakeReject struct {
	Reason string `json:"reason"`
}

// Resync carries a full masked snapshot for one seat. Occupancy is the
// server's seat bitmask.
type Resync struct {
	State     ClientState       `json:"state"`
	Players   [MaxSeats]*Player `json:"players"`
	Occupancy uint8             `json:"occupancy"`
}

// Package is the unit exchanged on a transport. Exactly one body field is
// set, matching Type.
type Package struct {
	Type      PackageType      `json:"type"`
	Handshake *Handshake       `json:"handshake,omitempty"`
	Ack       *HandshakeAck    `json:"ack,omitempty"`
	Reject    *HandshakeReject `json:"reject,omitempty"`
	Action    *Action          `json:"action,omitempty"`
	Event     *Event           `json:"event,omitempty"`
	Player    *Player          `json:"player,omitempty"`
	Resync    *Resync          `json:"resync,omitempty"`
}

func NewHandshakePackage(player Player, resume bool) *Package {
	return &Package{Type: PackageHandshake, Handshake: &Handshake{Player: player, Resume: resume}}
}

func NewAckPackage(ack HandshakeAck) *Package {
	return &Package{Type: PackageHandshakeAck, Ack: &ack}
}

func NewRejectPackage(reason string) *Package {
	return &Package{Type: PackageHandshakeReject, Reject: &HandshakeReject{Reason: reason}}
}

func NewActionPackage(a Action) *Package {
	return &Package{Type: PackageAction, Action: &a}
}

func NewEventPackage(e Event) *Package {
	return &Package{Type: PackageEvent, Event: &e}
}

func NewJoinPackage(p Player) *Package {
	return &Package{Type: PackageJoin, Player: &p}
}

func NewLeavePackage(p Player) *Package {
	return &Package{Type: PackageLeave, Player: &p}
}

func NewResyncRequestPackage() *Package {
	return &Package{Type: PackageResyncRequest}
}

func NewResyncPackage(r Resync) *Package {
	return &Package{Type: PackageResync, Resync: &r}
}

func (p *Package) Validate() error {
	missing := false
	switch p.Type {
	case PackageHandshake:
		missing = p.Handshake == nil
	case PackageHandshakeAck:
		missing = p.Ack == nil
	case PackageHandshakeReject:
		missing = p.Reject == nil
	case PackageAction:
		missing = p.Action == nil
	case PackageEvent:
		if p.Event == nil {
			missing = true
		} else if err := p.Event.Validate(); err != nil {
			return err
		}
	case PackageJoin, PackageLeave:
		missing = p.Player == nil
	case PackageResync:
		missing = p.Resync == nil
	case PackageResyncRequest:
	default:
		return errors.Errorf("unknown package type %q", p.Type)
	}
	if missing {
		return errors.Errorf("package %s has no body", p.Type)
	}
	return nil
}
