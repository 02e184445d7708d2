package protocol

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type EventType int

const (
	EventInvalid EventType = iota
	EventIllegalAction
	EventSuspendGame
	EventResumeGame
	EventStartGame
	EventStartRound
	EventPlayerReady
	EventDistributeCards
	EventBiddingDone
	EventRulesChanged
	EventPlayCard
	EventTrickDone
	EventRoundDone
	// EventDisconnected never travels on the wire. Clients synthesize it
	// for callbacks still pending when the connection goes away.
	EventDisconnected
)

var eventTypeNames = map[EventType]string{
	EventInvalid:         "invalid",
	EventIllegalAction:   "illegal-action",
	EventSuspendGame:     "suspend-game",
	EventResumeGame:      "resume-game",
	EventStartGame:       "start-game",
	EventStartRound:      "start-round",
	EventPlayerReady:     "player-ready",
	EventDistributeCards: "distribute-cards",
	EventBiddingDone:     "bidding-done",
	EventRulesChanged:    "rules-changed",
	EventPlayCard:        "play-card",
	EventTrickDone:       "trick-done",
	EventRoundDone:       "round-done",
	EventDisconnected:    "disconnected",
}

var ErrUnknownEventType = errors.New("unknown event type")

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(t))
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *EventType) UnmarshalText(text []byte) error {
	for k, name := range eventTypeNames {
		if name == string(text) {
			*t = k
			return nil
		}
	}
	return errors.Wrapf(ErrUnknownEventType, "%q", string(text))
}

// EventPayload is implemented by the payload struct of each event type that
// carries one. Payloads are plain values, so copying an Event never aliases
// the original's payload.
type EventPayload interface {
	eventType() EventType
}

type StartRoundPayload struct {
	RoundNum      int              `json:"roundNum"`
	ActivePlayers [ActiveSeats]int `json:"activePlayers"`
}

type DistributeCardsPayload struct {
	Hand CardCollection `json:"hand"`
}

type BiddingDonePayload struct {
	// AlonePlayer is an index into the round's active players.
	AlonePlayer  int     `json:"alonePlayer"`
	Skat         [2]Card `json:"skat"`
	SkatRevealed bool    `json:"skatRevealed"`
}

type RulesChangedPayload struct {
	Rules GameRules `json:"rules"`
}

type PlayCardPayload struct {
	Card Card `json:"card"`
}

type TrickDonePayload struct {
	// Winner is a seat.
	Winner int `json:"winner"`
}

type RoundDonePayload struct {
	Round       [MaxSeats]int `json:"round"`
	Total       [MaxSeats]int `json:"total"`
	AlonePoints int           `json:"alonePoints"`
	Won         bool          `json:"won"`
}

func (StartRoundPayload) eventType() EventType      { return EventStartRound }
func (DistributeCardsPayload) eventType() EventType { return EventDistributeCards }
func (BiddingDonePayload) eventType() EventType     { return EventBiddingDone }
func (RulesChangedPayload) eventType() EventType    { return EventRulesChanged }
func (PlayCardPayload) eventType() EventType        { return EventPlayCard }
func (TrickDonePayload) eventType() EventType       { return EventTrickDone }
func (RoundDonePayload) eventType() EventType       { return EventRoundDone }

// Event is a notification from the server. AnswerTo is the id of the action
// that provoked it, or NoActionID for unsolicited events.
type Event struct {
	Type     EventType
	AnswerTo ActionID
	Player   Player
	Payload  EventPayload
}

// MaskFunc customizes a copy of an event for one recipient.
type MaskFunc func(e *Event, recipient Player)

func NewEvent(t EventType, answerTo ActionID, player Player, payload EventPayload) Event {
	return Event{Type: t, AnswerTo: answerTo, Player: player, Payload: payload}
}

func NewIllegalActionEvent(answerTo ActionID, player Player) Event {
	return Event{Type: EventIllegalAction, AnswerTo: answerTo, Player: player}
}

func NewDisconnectedEvent(answerTo ActionID, player Player) Event {
	return Event{Type: EventDisconnected, AnswerTo: answerTo, Player: player}
}

// Validate checks that the payload is the one defined for the event type.
func (e Event) Validate() error {
	if _, ok := eventTypeNames[e.Type]; !ok || e.Type == EventInvalid {
		return errors.Wrapf(ErrUnknownEventType, "%d", int(e.Type))
	}
	want := payloadFor(e.Type)
	if want == nil {
		if e.Payload != nil {
			return errors.Errorf("event %s carries no payload, got %T", e.Type, e.Payload)
		}
		return nil
	}
	if e.Payload == nil || e.Payload.eventType() != e.Type {
		return errors.Errorf("event %s requires %T payload, got %T", e.Type, want, e.Payload)
	}
	return nil
}

func (e Event) Illegal() bool {
	return e.Type == EventIllegalAction
}

func (e Event) String() string {
	if e.AnswerTo != NoActionID {
		return fmt.Sprintf("%s(answer_to=%d, player=%s)", e.Type, e.AnswerTo, e.Player)
	}
	return fmt.Sprintf("%s(player=%s)", e.Type, e.Player)
}

func (e Event) StartRound() (StartRoundPayload, bool) {
	p, ok := e.Payload.(StartRoundPayload)
	return p, ok
}

func (e Event) DistributeCards() (DistributeCardsPayload, bool) {
	p, ok := e.Payload.(DistributeCardsPayload)
	return p, ok
}

func (e Event) BiddingDone() (BiddingDonePayload, bool) {
	p, ok := e.Payload.(BiddingDonePayload)
	return p, ok
}

func (e Event) RulesChanged() (RulesChangedPayload, bool) {
	p, ok := e.Payload.(RulesChangedPayload)
	return p, ok
}

func (e Event) PlayCard() (PlayCardPayload, bool) {
	p, ok := e.Payload.(PlayCardPayload)
	return p, ok
}

func (e Event) TrickDone() (TrickDonePayload, bool) {
	p, ok := e.Payload.(TrickDonePayload)
	return p, ok
}

func (e Event) RoundDone() (RoundDonePayload, bool) {
	p, ok := e.Payload.(RoundDonePayload)
	return p, ok
}

// payloadFor returns the zero payload for types that carry one.
func payloadFor(t EventType) EventPayload {
	switch t {
	case EventStartRound:
		return StartRoundPayload{}
	case EventDistributeCards:
		return DistributeCardsPayload{}
	case EventBiddingDone:
		return BiddingDonePayload{}
	case EventRulesChanged:
		return RulesChangedPayload{}
	case EventPlayCard:
		return PlayCardPayload{}
	case EventTrickDone:
		return TrickDonePayload{}
	case EventRoundDone:
		return RoundDonePayload{}
	}
	return nil
}

type wireEvent struct {
	Type     EventType           `json:"type"`
	AnswerTo ActionID            `json:"answerTo,omitempty"`
	Player   Player              `json:"player"`
	Payload  jsoniter.RawMessage `json:"payload,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{Type: e.Type, AnswerTo: e.AnswerTo, Player: e.Player}
	if e.Payload != nil {
		data, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s payload", e.Type)
		}
		w.Payload = data
	}
	return json.Marshal(w)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	payload, err := decodePayload(w.Type, w.Payload)
	if err != nil {
		return err
	}
	*e = Event{Type: w.Type, AnswerTo: w.AnswerTo, Player: w.Player, Payload: payload}
	return nil
}

func decodePayload(t EventType, data jsoniter.RawMessage) (EventPayload, error) {
	var err error
	var payload EventPayload
	switch t {
	case EventStartRound:
		var p StartRoundPayload
		err = json.Unmarshal(data, &p)
		payload = p
	case EventDistributeCards:
		var p DistributeCardsPayload
		err = json.Unmarshal(data, &p)
		payload = p
	case EventBiddingDone:
		var p BiddingDonePayload
		err = json.Unmarshal(data, &p)
		payload = p
	case EventRulesChanged:
		var p RulesChangedPayload
		err = json.Unmarshal(data, &p)
		payload = p
	case EventPlayCard:
		var p PlayCardPayload
		err = json.Unmarshal(data, &p)
		payload = p
	case EventTrickDone:
		var p TrickDonePayload
		err = json.Unmarshal(data, &p)
		payload = p
	case EventRoundDone:
		var p RoundDonePayload
		err = json.Unmarshal(data, &p)
		payload = p
	default:
		return nil, nil
	}
	if len(data) == 0 {
		return nil, errors.Errorf("event %s is missing its payload", t)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s payload", t)
	}
	return payload, nil
}
