package protocol

import (
	"math/bits"
	"strings"
)

type Suit uint8

const (
	Diamonds Suit = iota
	Hearts
	Spades
	Clubs
)

var suitNames = [...]string{"diamonds", "hearts", "spades", "clubs"}
var suitSymbols = [...]string{"D", "H", "S", "C"}

func (s Suit) String() string {
	if int(s) < len(suitNames) {
		return suitNames[s]
	}
	return "invalid"
}

func ParseSuit(s string) (Suit, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range suitNames {
		if s == name || s == strings.ToLower(suitSymbols[i]) {
			return Suit(i), true
		}
	}
	return 0, false
}

type Rank uint8

const (
	Seven Rank = iota
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankNames = [...]string{"7", "8", "9", "10", "J", "Q", "K", "A"}
var rankPoints = [...]int{0, 0, 0, 10, 2, 3, 4, 11}

func (r Rank) String() string {
	if int(r) < len(rankNames) {
		return rankNames[r]
	}
	return "?"
}

// Card identifies one of the 32 cards of a skat deck: suit = id / 8,
// rank = id % 8.
type Card uint8

const (
	NumCards      = 32
	NoCard   Card = 0xff
)

func NewCard(s Suit, r Rank) Card {
	return Card(uint8(s)*8 + uint8(r))
}

func (c Card) Valid() bool {
	return c < NumCards
}

func (c Card) Suit() Suit {
	return Suit(c / 8)
}

func (c Card) Rank() Rank {
	return Rank(c % 8)
}

// Points is the card's value when counting tricks.
func (c Card) Points() int {
	if !c.Valid() {
		return 0
	}
	return rankPoints[c.Rank()]
}

func (c Card) String() string {
	if !c.Valid() {
		return "--"
	}
	return suitSymbols[c.Suit()] + c.Rank().String()
}

// FullDeck returns all cards in id order.
func FullDeck() []Card {
	deck := make([]Card, NumCards)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}

// CardCollection is a set of cards, one bit per card id.
type CardCollection uint32

func CollectionOf(cards ...Card) CardCollection {
	var cc CardCollection
	for _, c := range cards {
		cc.Add(c)
	}
	return cc
}

func (cc *CardCollection) Add(c Card) {
	if c.Valid() {
		*cc |= 1 << c
	}
}

func (cc *CardCollection) Remove(c Card) {
	if c.Valid() {
		*cc &^= 1 << c
	}
}

func (cc CardCollection) Contains(c Card) bool {
	return c.Valid() && cc&(1<<c) != 0
}

func (cc CardCollection) Len() int {
	return bits.OnesCount32(uint32(cc))
}

// Cards lists the collection in ascending id order. The console display
// index of a card is its position in this list.
func (cc CardCollection) Cards() []Card {
	cards := make([]Card, 0, cc.Len())
	for rest := uint32(cc); rest != 0; rest &= rest - 1 {
		cards = append(cards, Card(bits.TrailingZeros32(rest)))
	}
	return cards
}

// Nth returns the card at display index i.
func (cc CardCollection) Nth(i int) (Card, bool) {
	cards := cc.Cards()
	if i < 0 || i >= len(cards) {
		return NoCard, false
	}
	return cards[i], true
}

func (cc CardCollection) Points() int {
	total := 0
	for _, c := range cc.Cards() {
		total += c.Points()
	}
	return total
}

// Any reports whether a card of the collection matches.
func (cc CardCollection) Any(match func(Card) bool) bool {
	for _, c := range cc.Cards() {
		if match(c) {
			return true
		}
	}
	return false
}

func (cc CardCollection) String() string {
	cards := cc.Cards()
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}
