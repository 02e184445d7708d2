package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Player{ID: "a-1", Name: "alice", Seat: 0}

func TestEventJSONKeepsPayloadVariant(t *testing.T) {
	events := []Event{
		NewIllegalActionEvent(7, alice),
		NewEvent(EventPlayCard, 3, alice, PlayCardPayload{Card: NewCard(Clubs, Jack)}),
		NewEvent(EventBiddingDone, NoActionID, alice, BiddingDonePayload{
			AlonePlayer: 0, Skat: [2]Card{1, 2}, SkatRevealed: true,
		}),
	}
	for _, e := range events {
		data, err := json.Marshal(e)
		require.NoError(t, err)
		var decoded Event
		require.NoError(t, json.Unmarshal(data, &decoded))
		if diff := cmp.Diff(e, decoded); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", e.Type, diff)
		}
	}
}

func TestEventJSONUsesTypeNames(t *testing.T) {
	data, err := json.Marshal(NewEvent(EventTrickDone, NoActionID, alice, TrickDonePayload{Winner: 2}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"trick-done"`)
	assert.NotContains(t, string(data), "answerTo")
}

func TestEventDecodeRejectsUnknownType(t *testing.T) {
	var e Event
	err := json.Unmarshal([]byte(`{"type":"explode","player":{}}`), &e)
	assert.Error(t, err)
}

func TestEventDecodeRequiresPayload(t *testing.T) {
	var e Event
	err := json.Unmarshal([]byte(`{"type":"play-card","player":{}}`), &e)
	assert.Error(t, err)
}

func TestEventValidate(t *testing.T) {
	assert.NoError(t, NewEvent(EventStartGame, NoActionID, alice, nil).Validate())
	assert.NoError(t, NewEvent(EventPlayCard, 1, alice, PlayCardPayload{}).Validate())
	assert.Error(t, NewEvent(EventPlayCard, 1, alice, nil).Validate())
	assert.Error(t, NewEvent(EventPlayCard, 1, alice, TrickDonePayload{}).Validate())
	assert.Error(t, NewEvent(EventStartGame, 1, alice, PlayCardPayload{}).Validate())
	assert.Error(t, Event{Type: EventInvalid}.Validate())
}

func TestEventAccessorsOnlyMatchTheirType(t *testing.T) {
	e := NewEvent(EventPlayCard, 1, alice, PlayCardPayload{Card: 5})
	p, ok := e.PlayCard()
	require.True(t, ok)
	assert.Equal(t, Card(5), p.Card)
	_, ok = e.TrickDone()
	assert.False(t, ok)
	_, ok = e.DistributeCards()
	assert.False(t, ok)
}

func TestEventCopyDoesNotAlias(t *testing.T) {
	orig := NewEvent(EventBiddingDone, NoActionID, alice, BiddingDonePayload{Skat: [2]Card{4, 9}, SkatRevealed: true})
	cp := orig
	cp.Payload = BiddingDonePayload{Skat: [2]Card{NoCard, NoCard}}
	p, _ := orig.BiddingDone()
	assert.Equal(t, [2]Card{4, 9}, p.Skat)
}

func TestEventValidateNamesThePayload(t *testing.T) {
	err := NewEvent(EventPlayCard, 1, alice, TrickDonePayload{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PlayCardPayload")
	assert.Contains(t, err.Error(), "TrickDonePayload")
}
