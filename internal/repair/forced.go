package repair

import (
	"github.com/lox/handcheck/internal/betting"
	"github.com/lox/handcheck/internal/hand"
)

// SynthesizeForced puts any missing antes, small blind, big blind and deal at the front
// of preflop, in that order, ahead of the recorded preflop actions. Amounts are capped
// at the poster's stack.
func SynthesizeForced(h hand.Hand) hand.Hand {
	out := h.WithStreets()
	order := betting.OrderFor(out)
	if len(order) < 2 {
		return out
	}
	pf := out.Streets[hand.Preflop]
	stacks := out.Stacks()

	has := func(match func(a hand.Action) bool) bool {
		for _, a := range pf.Actions {
			if match(a) {
				return true
			}
		}
		return false
	}
	post := func(uid string, amount hand.Chips) hand.Chips {
		paid := min(amount, stacks[uid])
		stacks[uid] -= paid
		return paid
	}

	var front []hand.Action
	if ante := out.Metadata.Ante; ante > 0 {
		for _, uid := range order {
			if !has(func(a hand.Action) bool { return a.Kind == hand.KindPostAnte && a.ActorUID == uid }) {
				front = append(front, hand.PostAnte(uid, post(uid, ante)))
			}
		}
	}

	sb, bb := blindPositions(order)
	blinds := []struct {
		uid    string
		kind   hand.BlindType
		amount hand.Chips
	}{
		{sb, hand.SmallBlind, out.Metadata.SmallBlind},
		{bb, hand.BigBlind, out.Metadata.BigBlind},
	}
	for _, b := range blinds {
		if b.amount <= 0 {
			continue
		}
		if !has(func(a hand.Action) bool { return a.Kind == hand.KindPostBlind && a.BlindType == b.kind }) {
			front = append(front, hand.PostBlind(b.uid, b.kind, post(b.uid, b.amount)))
		}
	}

	if !has(func(a hand.Action) bool { return a.Kind == hand.KindDealHole }) {
		front = append(front, hand.DealHole())
	}

	for i := range front {
		front[i].Street = hand.Preflop
	}
	pf.Actions = append(front, pf.Actions...)
	out.Streets[hand.Preflop] = pf
	return out
}

// blindPositions returns the small and big blind of a rotation. Heads-up the button
// posts the small blind.
func blindPositions(order []string) (sb, bb string) {
	if len(order) == 2 {
		return order[0], order[1]
	}
	return order[1], order[2]
}
