// Package testing builds hand records for tests across the module.
package testing

import (
	"fmt"
	"sort"

	"github.com/lox/handcheck/internal/deck"
	"github.com/lox/handcheck/internal/hand"
)

// HandBuilder assembles a structurally valid hand: seats p1..pN with button on seat 1,
// distinct hole cards for every seat and full boards. Actions are numbered as they
// are added.
type HandBuilder struct {
	h     hand.Hand
	order int
}

// NewHand seats one player per stack with the given blinds.
func NewHand(sb, bb hand.Chips, stacks ...hand.Chips) *HandBuilder {
	cards := deck.All()
	h := hand.Hand{
		HandID: "test-hand",
		Metadata: hand.Metadata{
			ButtonSeatNo:  hand.IntPtr(1),
			HeroPlayerUID: "p1",
			SmallBlind:    sb,
			BigBlind:      bb,
			HoleCards:     make(map[string][]string, len(stacks)),
		},
		Streets: make(hand.StreetMap, len(hand.AllStreets)),
	}
	for i, stack := range stacks {
		uid := UID(i + 1)
		h.Seats = append(h.Seats, hand.Seat{SeatNo: i + 1, PlayerUID: uid, StartingStack: stack})
		h.Metadata.HoleCards[uid] = []string{cards[2*i].String(), cards[2*i+1].String()}
	}
	board := make([]string, 5)
	for i := range board {
		board[i] = cards[len(cards)-1-i].String()
	}
	for _, s := range hand.AllStreets {
		h.Streets[s] = hand.StreetState{
			Board:   append([]string{}, board[:s.BoardSize()]...),
			Actions: []hand.Action{},
		}
	}
	return &HandBuilder{h: h}
}

// UID names the player on seat n.
func UID(n int) string {
	return fmt.Sprintf("p%d", n)
}

// Button moves the button.
func (b *HandBuilder) Button(seat int) *HandBuilder {
	b.h.Metadata.ButtonSeatNo = hand.IntPtr(seat)
	return b
}

// Ante sets the ante amount.
func (b *HandBuilder) Ante(amount hand.Chips) *HandBuilder {
	b.h.Metadata.Ante = amount
	return b
}

// Rotation is the clockwise order from the button.
func (b *HandBuilder) Rotation() []string {
	seats := b.h.SeatsByNumber()
	btn, _ := b.h.Button()
	start := sort.Search(len(seats), func(i int) bool { return seats[i].SeatNo >= btn })
	if start == len(seats) {
		start = 0
	}
	out := make([]string, len(seats))
	for i := range seats {
		out[i] = seats[(start+i)%len(seats)].PlayerUID
	}
	return out
}

// Blinds posts the small and big blind from the usual positions.
func (b *HandBuilder) Blinds() *HandBuilder {
	rot := b.Rotation()
	sb, bb := rot[1], rot[2%len(rot)]
	if len(rot) == 2 {
		sb, bb = rot[0], rot[1]
	}
	return b.Street(hand.Preflop,
		hand.PostBlind(sb, hand.SmallBlind, b.h.Metadata.SmallBlind),
		hand.PostBlind(bb, hand.BigBlind, b.h.Metadata.BigBlind),
	)
}

// Street appends actions to a street, stamping street and order.
func (b *HandBuilder) Street(s hand.Street, actions ...hand.Action) *HandBuilder {
	st := b.h.Streets[s]
	for _, a := range actions {
		b.order++
		st.Actions = append(st.Actions, a.On(s, b.order))
	}
	b.h.Streets[s] = st
	return b
}

// Edit applies an arbitrary change to the hand being built.
func (b *HandBuilder) Edit(fn func(h *hand.Hand)) *HandBuilder {
	fn(&b.h)
	return b
}

// Hand returns a copy of the built hand.
func (b *HandBuilder) Hand() hand.Hand {
	return b.h.Clone()
}
