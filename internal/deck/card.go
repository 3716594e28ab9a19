package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

const suitChars = "shdc"

// String returns the lowercase letter used in hand records
func (s Suit) String() string {
	if s < Spades || s > Clubs {
		return "?"
	}
	return suitChars[s : s+1]
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

// String returns the single-character rank (T for ten)
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	i := int(r - Two)
	return rankChars[i : i+1]
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the record notation of a card (e.g., "As")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ParseCard reads a two-character card such as "Td". Ranks are uppercase and suits
// lowercase; anything else is rejected.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rank := indexByte(rankChars, s[0])
	suit := indexByte(suitChars, s[1])
	if rank < 0 || suit < 0 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	return NewCard(Suit(suit), Two+Rank(rank)), nil
}

// Valid reports whether s matches [2-9TJQKA][shdc].
func Valid(s string) bool {
	_, err := ParseCard(s)
	return err == nil
}

// All returns the 52 cards in a fixed order: suits s,h,d,c, ranks 2 to A.
func All() []Card {
	cards := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
