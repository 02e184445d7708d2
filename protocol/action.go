package protocol

import (
	"fmt"

	"github.com/pkg/errors"
)

// ActionID correlates an action with the event answering it. Zero means no
// action.
type ActionID int64

const NoActionID ActionID = 0

type ActionType int

const (
	ActionInvalid ActionType = iota
	ActionReady
	ActionRuleChange
	ActionPlayCard
)

var actionTypeNames = map[ActionType]string{
	ActionInvalid:    "invalid",
	ActionReady:      "ready",
	ActionRuleChange: "rule-change",
	ActionPlayCard:   "play-card",
}

func (t ActionType) String() string {
	if name, ok := actionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(t))
}

func (t ActionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ActionType) UnmarshalText(text []byte) error {
	for k, name := range actionTypeNames {
		if name == string(text) {
			*t = k
			return nil
		}
	}
	return errors.Errorf("unknown action type %q", string(text))
}

// Action is a request from a client. Card is read for play-card, Rules for
// rule-change.
type Action struct {
	Type  ActionType `json:"type"`
	ID    ActionID   `json:"id"`
	Card  Card       `json:"card"`
	Rules GameRules  `json:"rules"`
}

func NewReadyAction(id ActionID) Action {
	return Action{Type: ActionReady, ID: id, Card: NoCard}
}

func NewPlayCardAction(id ActionID, card Card) Action {
	return Action{Type: ActionPlayCard, ID: id, Card: card}
}

func NewRuleChangeAction(id ActionID, rules GameRules) Action {
	return Action{Type: ActionRuleChange, ID: id, Card: NoCard, Rules: rules}
}

func (a Action) String() string {
	switch a.Type {
	case ActionPlayCard:
		return fmt.Sprintf("%s#%d(%s)", a.Type, a.ID, a.Card)
	case ActionRuleChange:
		return fmt.Sprintf("%s#%d(%s)", a.Type, a.ID, a.Rules)
	default:
		return fmt.Sprintf("%s#%d", a.Type, a.ID)
	}
}
