package repair

import (
	rand "math/rand/v2"

	"github.com/lox/handcheck/internal/deck"
	"github.com/lox/handcheck/internal/hand"
)

// RepairCards gives every seat two distinct hole cards and deals the hand a new
// five-card board. Valid, unused hole cards are kept; missing ones are drawn from the
// rest of the deck, then flop, turn and river are dealt from what remains. Hole cards
// of unseated players are dropped. When the deck cannot cover every seat and the
// board the cards are left as they are.
func RepairCards(h hand.Hand, rng *rand.Rand) hand.Hand {
	out := h.WithStreets()
	seats := out.SeatsByNumber()

	used := make(map[string]bool, 2*len(seats))
	holes := make(map[string][]string, len(seats))
	var kept []string
	missing := 0
	for _, s := range seats {
		if s.PlayerUID == "" {
			continue
		}
		var cards []string
		for _, c := range out.Metadata.HoleCards[s.PlayerUID] {
			if len(cards) == 2 {
				break
			}
			if deck.Valid(c) && !used[c] {
				used[c] = true
				cards = append(cards, c)
			}
		}
		holes[s.PlayerUID] = cards
		kept = append(kept, cards...)
		missing += 2 - len(cards)
	}

	d := deck.NewDeck(rng, kept...)
	if d.CardsRemaining() < missing+5 {
		return out
	}
	for _, s := range seats {
		if s.PlayerUID == "" {
			continue
		}
		if n := 2 - len(holes[s.PlayerUID]); n > 0 {
			cards, _ := d.DealN(n)
			holes[s.PlayerUID] = append(holes[s.PlayerUID], cards...)
		}
	}
	board, _ := d.DealN(5)

	out.Metadata.HoleCards = holes
	for _, s := range []hand.Street{hand.Flop, hand.Turn, hand.River} {
		st := out.Streets[s]
		st.Board = append([]string{}, board[:s.BoardSize()]...)
		out.Streets[s] = st
	}
	st := out.Streets[hand.Preflop]
	st.Board = []string{}
	out.Streets[hand.Preflop] = st
	return out
}
