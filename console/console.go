// Package console is the line based front end of the client.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"skat.com/server/client"
	"skat.com/server/protocol"
)

// Session is the client side the console drives.
type Session interface {
	Ready(ctx context.Context, cb client.Callback) protocol.ActionID
	PlayCard(ctx context.Context, card protocol.Card, cb client.Callback) protocol.ActionID
	Declare(ctx context.Context, rules protocol.GameRules, cb client.Callback) protocol.ActionID
	RequestResync(ctx context.Context)
	State() protocol.ClientState
	Players() [protocol.MaxSeats]*protocol.Player
	Me() protocol.Player
}

type Console struct {
	session Session

	mu  sync.Mutex
	out io.Writer
}

const helpText = `commands:
  ready              mark yourself ready for the next round
  play <n>           play the n-th card of your hand (as shown by info)
  declare <rules>    grand, null, clubs, spades, hearts or diamonds
  info               show the table and your hand
  resync             fetch the full state from the server
  help               show this text
  quit               leave`

func New(out io.Writer) *Console {
	return &Console{out: out}
}

// Attach sets the session commands go to. It must be called before Run.
func (c *Console) Attach(s Session) {
	c.session = s
}

// Run executes commands read from in until quit or EOF.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	c.printf("type 'help' for commands\n")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		quit, err := c.Execute(ctx, scanner.Text())
		if err != nil {
			c.printf("%s\n", err)
		}
		if quit {
			return nil
		}
	}
	return errors.Wrap(scanner.Err(), "reading commands")
}

// Execute runs one command line. It reports whether the console should
// quit.
func (c *Console) Execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "ready":
		c.session.Ready(ctx, c.answered("ready"))
	case "play":
		if len(args) != 1 {
			return false, errors.New("usage: play <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, errors.Errorf("not a card number: %s", args[0])
		}
		card, ok := c.session.State().MyHand.Nth(n - 1)
		if !ok {
			return false, errors.Errorf("no card number %d in your hand", n)
		}
		c.session.PlayCard(ctx, card, c.answered("play "+card.String()))
	case "declare":
		if len(args) != 1 {
			return false, errors.New("usage: declare <grand|null|clubs|spades|hearts|diamonds>")
		}
		rules, err := protocol.ParseGameRules(args[0])
		if err != nil {
			return false, err
		}
		c.session.Declare(ctx, rules, c.answered("declare "+rules.String()))
	case "info":
		c.printInfo()
	case "resync":
		c.session.RequestResync(ctx)
	case "help", "?":
		c.printf("%s\n", helpText)
	case "quit", "exit":
		return true, nil
	default:
		return false, errors.Errorf("unknown command %q, try help", cmd)
	}
	return false, nil
}

func (c *Console) answered(what string) client.Callback {
	return func(_ context.Context, _ *client.Client, e protocol.Event) {
		switch e.Type {
		case protocol.EventIllegalAction:
			c.printf("%s: not allowed right now\n", what)
		case protocol.EventDisconnected:
			c.printf("%s: connection lost before the server answered\n", what)
		default:
			c.printf("%s: ok\n", what)
			c.printEvent(e)
		}
	}
}

func (c *Console) printInfo() {
	state := c.session.State()
	players := c.session.Players()
	game := state.Game

	var b strings.Builder
	fmt.Fprintf(&b, "phase %s, round %d\n", game.Phase, game.RoundNum)
	for seat, pl := range players {
		if pl == nil {
			continue
		}
		var marks []string
		if seat == state.MySeat {
			marks = append(marks, "you")
		}
		if game.Ready[seat] {
			marks = append(marks, "ready")
		}
		if game.AloneSeat() == seat {
			marks = append(marks, "alone")
		}
		if game.Phase == protocol.PhasePlaying && game.TurnSeat() == seat {
			marks = append(marks, "to play")
		}
		fmt.Fprintf(&b, "  seat %d %-16s score %4d %s\n", seat, pl.Name, game.TotalScore[seat], strings.Join(marks, ", "))
	}
	if game.Rules.Valid() {
		fmt.Fprintf(&b, "rules %s\n", game.Rules)
	}
	if game.CurrentTrick.Played > 0 {
		fmt.Fprintf(&b, "trick %s\n", c.trickString(&game, game.CurrentTrick))
	}
	if state.SkatKnown {
		fmt.Fprintf(&b, "skat %s %s\n", state.Skat[0], state.Skat[1])
	}
	b.WriteString("hand")
	for i, card := range state.MyHand.Cards() {
		fmt.Fprintf(&b, " %d:%s", i+1, card)
	}
	b.WriteString("\n")
	c.printf("%s", b.String())
}

func (c *Console) trickString(game *protocol.GameState, t protocol.Trick) string {
	parts := make([]string, 0, t.Played)
	for i := 0; i < t.Played; i++ {
		parts = append(parts, fmt.Sprintf("%s %s", c.nameOf(game.ActivePlayers[t.PlayedBy(i)]), t.Cards[i]))
	}
	return strings.Join(parts, ", ")
}

func (c *Console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
