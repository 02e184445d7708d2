package client

import (
	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

const (
	ClientState__DISCONNECTED string = "DISCONNECTED"
	ClientState__CONNECTING   string = "CONNECTING"
	ClientState__HANDSHAKING  string = "HANDSHAKING"
	ClientState__JOINED       string = "JOINED"
	ClientState__RESYNCING    string = "RESYNCING"
	ClientState__LOST         string = "LOST"
	ClientState__CLOSED       string = "CLOSED"

	ClientEvent__CONNECT   string = "CONNECT"
	ClientEvent__HANDSHAKE string = "HANDSHAKE"
	ClientEvent__JOIN      string = "JOIN"
	ClientEvent__RESYNC    string = "RESYNC"
	ClientEvent__SYNCED    string = "SYNCED"
	ClientEvent__LOSE      string = "LOSE"
	ClientEvent__CLOSE     string = "CLOSE"
)

func newLifecycle(logger *zerolog.Logger) *fsm.FSM {
	return fsm.NewFSM(
		ClientState__DISCONNECTED,
		fsm.Events{
			{
				Name: ClientEvent__CONNECT,
				Src:  []string{ClientState__DISCONNECTED, ClientState__LOST},
				Dst:  ClientState__CONNECTING,
			},
			{
				Name: ClientEvent__HANDSHAKE,
				Src:  []string{ClientState__CONNECTING},
				Dst:  ClientState__HANDSHAKING,
			},
			{
				Name: ClientEvent__JOIN,
				Src:  []string{ClientState__HANDSHAKING},
				Dst:  ClientState__JOINED,
			},
			{
				Name: ClientEvent__RESYNC,
				Src:  []string{ClientState__JOINED},
				Dst:  ClientState__RESYNCING,
			},
			{
				Name: ClientEvent__SYNCED,
				Src:  []string{ClientState__RESYNCING},
				Dst:  ClientState__JOINED,
			},
			{
				Name: ClientEvent__LOSE,
				Src: []string{
					ClientState__CONNECTING,
					ClientState__HANDSHAKING,
					ClientState__JOINED,
					ClientState__RESYNCING,
				},
				Dst: ClientState__LOST,
			},
			{
				Name: ClientEvent__CLOSE,
				Src: []string{
					ClientState__DISCONNECTED,
					ClientState__CONNECTING,
					ClientState__HANDSHAKING,
					ClientState__JOINED,
					ClientState__RESYNCING,
					ClientState__LOST,
				},
				Dst: ClientState__CLOSED,
			},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				logger.Debug().Msgf("[%s] ===> [%s]", e.Src, e.Dst)
			},
		},
	)
}
