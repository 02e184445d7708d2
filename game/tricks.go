package game

import (
	"skat.com/server/protocol"
)

const trumpClass = 4

// Order of non-trump cards by rank in suit and grand games: 7 8 9 Q K 10 A.
var plainOrder = [...]int{
	protocol.Seven: 0,
	protocol.Eight: 1,
	protocol.Nine:  2,
	protocol.Ten:   5,
	protocol.Jack:  0,
	protocol.Queen: 3,
	protocol.King:  4,
	protocol.Ace:   6,
}

// Null games use the natural order 7 8 9 10 J Q K A.
var nullOrder = [...]int{
	protocol.Seven: 0,
	protocol.Eight: 1,
	protocol.Nine:  2,
	protocol.Ten:   3,
	protocol.Jack:  4,
	protocol.Queen: 5,
	protocol.King:  6,
	protocol.Ace:   7,
}

var baseValues = map[protocol.Suit]int{
	protocol.Diamonds: 9,
	protocol.Hearts:   10,
	protocol.Spades:   11,
	protocol.Clubs:    12,
}

const (
	grandBaseValue = 24
	nullValue      = 23
)

func isTrump(r protocol.GameRules, c protocol.Card) bool {
	switch r.Type {
	case protocol.GameGrand:
		return c.Rank() == protocol.Jack
	case protocol.GameSuit:
		return c.Rank() == protocol.Jack || c.Suit() == r.Trumpf
	}
	return false
}

// classOf is the suit a card counts as when following; trumps, jacks
// included, form a class of their own.
func classOf(r protocol.GameRules, c protocol.Card) int {
	if isTrump(r, c) {
		return trumpClass
	}
	return int(c.Suit())
}

func legalPlay(r protocol.GameRules, t protocol.Trick, hand protocol.CardCollection, c protocol.Card) bool {
	if !hand.Contains(c) {
		return false
	}
	if t.Played == 0 {
		return true
	}
	led := classOf(r, t.Cards[0])
	if classOf(r, c) == led {
		return true
	}
	return !hand.Any(func(h protocol.Card) bool { return classOf(r, h) == led })
}

// strength ranks a card within a trick; cards that neither follow nor trump
// cannot win.
func strength(r protocol.GameRules, c protocol.Card, led int) int {
	if r.Type != protocol.GameNull && c.Rank() == protocol.Jack {
		return 200 + int(c.Suit())
	}
	if isTrump(r, c) {
		return 100 + plainOrder[c.Rank()]
	}
	if classOf(r, c) != led {
		return -1
	}
	if r.Type == protocol.GameNull {
		return nullOrder[c.Rank()]
	}
	return plainOrder[c.Rank()]
}

// trickWinner returns the active index of the player who takes the trick.
func trickWinner(r protocol.GameRules, t protocol.Trick) int {
	led := classOf(r, t.Cards[0])
	best, bestStrength := 0, strength(r, t.Cards[0], led)
	for i := 1; i < t.Played; i++ {
		if s := strength(r, t.Cards[i], led); s > bestStrength {
			best, bestStrength = i, s
		}
	}
	return t.PlayedBy(best)
}

func gameValue(r protocol.GameRules) int {
	switch r.Type {
	case protocol.GameGrand:
		return grandBaseValue * 2
	case protocol.GameNull:
		return nullValue
	case protocol.GameSuit:
		return baseValues[r.Trumpf] * 2
	}
	return 0
}
