package deck

import (
	rand "math/rand/v2"
)

// Deck holds the cards not yet used by a hand. Draws are taken from a caller-supplied
// source so the same seed always yields the same cards.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a deck of every card except those listed in used, then shuffles
// it with rng. Unparseable entries in used are ignored.
func NewDeck(rng *rand.Rand, used ...string) *Deck {
	taken := make(map[Card]struct{}, len(used))
	for _, s := range used {
		if c, err := ParseCard(s); err == nil {
			taken[c] = struct{}{}
		}
	}

	deck := &Deck{
		cards: make([]Card, 0, 52-len(taken)),
		rng:   rng,
	}
	for _, c := range All() {
		if _, ok := taken[c]; !ok {
			deck.cards = append(deck.cards, c)
		}
	}

	deck.Shuffle()
	return deck
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DealN deals n cards as strings. It deals nothing and reports false when fewer than
// n cards remain.
func (d *Deck) DealN(n int) ([]string, bool) {
	if n > d.CardsRemaining() {
		return nil, false
	}
	out := make([]string, 0, n)
	for len(out) < n {
		c, _ := d.Deal()
		out = append(out, c.String())
	}
	return out, true
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}
