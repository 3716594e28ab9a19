package phh

import (
	"strings"

	"github.com/lox/handcheck/internal/deck"
)

// unknownCard is how PHH writes a card nobody saw.
const unknownCard = "??"

// NormalizeCard returns the PHH form of a card, or ?? when it is not a card. Lowercase
// ranks and a leading 10 are accepted.
func NormalizeCard(card string) string {
	card = strings.TrimSpace(card)
	if len(card) < 2 {
		return unknownCard
	}
	rank := strings.ToUpper(card[:len(card)-1])
	if rank == "10" {
		rank = "T"
	}
	out := rank + strings.ToLower(card[len(card)-1:])
	if !deck.Valid(out) {
		return unknownCard
	}
	return out
}

// NormalizeCards concatenates the PHH form of cards, as PHH deal and show actions
// expect.
func NormalizeCards(cards []string) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(NormalizeCard(c))
	}
	return b.String()
}
