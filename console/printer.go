package console

import (
	"context"
	"fmt"
	"strings"

	"skat.com/server/client"
	"skat.com/server/protocol"
)

// HandleEvent prints unsolicited events. It is meant as the client's
// OnEvent handler.
func (c *Console) HandleEvent(_ context.Context, _ *client.Client, e protocol.Event) {
	c.printEvent(e)
}

func (c *Console) HandleJoin(_ context.Context, _ *client.Client, pl protocol.Player) {
	c.printf("%s joined at seat %d\n", pl.Name, pl.Seat)
}

func (c *Console) HandleLeave(_ context.Context, _ *client.Client, pl protocol.Player) {
	c.printf("%s left\n", pl.Name)
}

func (c *Console) HandleResync(context.Context, *client.Client) {
	c.printInfo()
}

func (c *Console) HandleDisconnect(_ context.Context, _ *client.Client, err error) {
	c.printf("disconnected: %s\n", err)
}

func (c *Console) printEvent(e protocol.Event) {
	switch e.Type {
	case protocol.EventPlayerReady:
		c.printf("%s is ready\n", e.Player.Name)
	case protocol.EventStartGame:
		c.printf("the game starts\n")
	case protocol.EventStartRound:
		if p, ok := e.StartRound(); ok {
			names := make([]string, 0, len(p.ActivePlayers))
			for _, seat := range p.ActivePlayers {
				names = append(names, c.nameOf(seat))
			}
			c.printf("round %d: %s\n", p.RoundNum, strings.Join(names, ", "))
		}
	case protocol.EventDistributeCards:
		if p, ok := e.DistributeCards(); ok {
			if p.Hand.Len() == 0 {
				c.printf("you sit out this round\n")
			} else {
				c.printf("your hand %s\n", p.Hand)
			}
		}
	case protocol.EventBiddingDone:
		if p, ok := e.BiddingDone(); ok {
			game := c.session.State().Game
			c.printf("%s plays alone\n", c.nameOf(game.ActivePlayers[p.AlonePlayer]))
			if p.SkatRevealed {
				c.printf("the skat is %s %s\n", p.Skat[0], p.Skat[1])
			}
		}
	case protocol.EventRulesChanged:
		if p, ok := e.RulesChanged(); ok {
			c.printf("playing %s\n", p.Rules)
		}
	case protocol.EventPlayCard:
		if p, ok := e.PlayCard(); ok {
			c.printf("%s plays %s\n", e.Player.Name, p.Card)
		}
	case protocol.EventTrickDone:
		if p, ok := e.TrickDone(); ok {
			c.printf("trick goes to %s\n", c.nameOf(p.Winner))
		}
	case protocol.EventRoundDone:
		if p, ok := e.RoundDone(); ok {
			result := "lost"
			if p.Won {
				result = "won"
			}
			var totals []string
			for seat, total := range p.Total {
				if c.session.Players()[seat] != nil {
					totals = append(totals, fmt.Sprintf("%s %d", c.nameOf(seat), total))
				}
			}
			c.printf("round over, %d points, %s. totals: %s\n", p.AlonePoints, result, strings.Join(totals, ", "))
		}
	case protocol.EventSuspendGame:
		c.printf("game suspended until everyone is back\n")
	case protocol.EventResumeGame:
		c.printf("game resumed\n")
	case protocol.EventIllegalAction:
		c.printf("server rejected action %d\n", e.AnswerTo)
	}
}

func (c *Console) nameOf(seat int) string {
	if seat >= 0 && seat < protocol.MaxSeats {
		if pl := c.session.Players()[seat]; pl != nil {
			return pl.Name
		}
	}
	return fmt.Sprintf("seat %d", seat)
}
