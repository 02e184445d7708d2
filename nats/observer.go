// Package nats publishes a table's public event stream for spectators and
// tooling. Events are masked for a seatless viewer before they get here.
package nats

import (
	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"skat.com/server/protocol"
)

var natsLogger = log.With().Str("logger_name", "nats::observer").Logger()

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher is the part of *natsgo.Conn the observer needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// SeatChange is published on the seats subject when a player joins or
// leaves.
type SeatChange struct {
	Player protocol.Player `json:"player"`
	Joined bool            `json:"joined"`
}

// TableObserver forwards table events to NATS. Publish only buffers in the
// client, so it can be called from the tick loop.
type TableObserver struct {
	table         string
	eventsSubject string
	seatsSubject  string
	publisher     Publisher
}

func NewTableObserver(table string, publisher Publisher) *TableObserver {
	return &TableObserver{
		table:         table,
		eventsSubject: GetTableEventsSubject(table),
		seatsSubject:  GetTableSeatsSubject(table),
		publisher:     publisher,
	}
}

// Connect dials the NATS server at url.
func Connect(url string, table string) (*natsgo.Conn, error) {
	nc, err := natsgo.Connect(url, natsgo.Name("skat-"+table))
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to nats at %s", url)
	}
	return nc, nil
}

func (o *TableObserver) ObserveEvent(e protocol.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		natsLogger.Error().Err(err).Str("table", o.table).Msg("Could not encode event")
		return
	}
	if err := o.publisher.Publish(o.eventsSubject, data); err != nil {
		natsLogger.Error().Err(err).Str("subject", o.eventsSubject).Msg("Could not publish event")
	}
}

func (o *TableObserver) ObserveSeat(pl protocol.Player, joined bool) {
	data, err := json.Marshal(SeatChange{Player: pl, Joined: joined})
	if err != nil {
		natsLogger.Error().Err(err).Str("table", o.table).Msg("Could not encode seat change")
		return
	}
	if err := o.publisher.Publish(o.seatsSubject, data); err != nil {
		natsLogger.Error().Err(err).Str("subject", o.seatsSubject).Msg("Could not publish seat change")
	}
}
