package repair

import (
	"github.com/lox/handcheck/internal/betting"
	"github.com/lox/handcheck/internal/hand"
	"github.com/lox/handcheck/internal/pot"
)

// CompleteFolds gives a fold to every player who was still in the hand with chips at
// the start of a street containing a bet, raise or blind, owes chips on it and never
// responded. The folds follow the street's last decision in rotation order.
func CompleteFolds(h hand.Hand) hand.Hand {
	out := h.WithStreets()
	order := betting.OrderFor(out)
	stacks := out.Stacks()
	folded := make(map[string]bool)

	for _, s := range hand.AllStreets {
		st := out.Streets[s]
		live := 0
		for _, uid := range order {
			if !folded[uid] {
				live++
			}
		}

		responded := make(map[string]bool)
		last := -1
		for i, a := range st.Actions {
			if a.Kind.Voluntary() {
				responded[a.ActorUID] = true
				last = i
			}
		}
		contrib := pot.Live(st.Actions)
		var (
			top    hand.Chips
			leader string
		)
		for _, uid := range order {
			if contrib[uid] > top {
				top, leader = contrib[uid], uid
			}
		}

		if top > 0 && live > 1 {
			at := last + 1
			if s == hand.Preflop {
				at = max(at, betting.PostingPrefix(st.Actions))
			}
			from := leader
			if last >= 0 {
				from = st.Actions[last].ActorUID
			}
			var missing []hand.Action
			for _, uid := range rotateAfter(order, from) {
				if !folded[uid] && stacks[uid] > 0 && !responded[uid] && contrib[uid] < top {
					missing = append(missing, hand.Fold(uid).On(s, 0))
				}
			}
			if len(missing) > 0 {
				actions := make([]hand.Action, 0, len(st.Actions)+len(missing))
				actions = append(actions, st.Actions[:at]...)
				actions = append(actions, missing...)
				actions = append(actions, st.Actions[at:]...)
				st.Actions = actions
				out.Streets[s] = st
			}
		}

		for uid, paid := range pot.Street(st.Actions) {
			stacks[uid] -= paid
		}
		for _, a := range st.Actions {
			if a.Kind == hand.KindFold {
				folded[a.ActorUID] = true
			}
		}
	}
	return out
}

// rotateAfter lists order clockwise starting with the seat after uid.
func rotateAfter(order []string, uid string) []string {
	start := 0
	for i, o := range order {
		if o == uid {
			start = i + 1
			break
		}
	}
	out := make([]string, 0, len(order))
	for i := range order {
		out = append(out, order[(start+i)%len(order)])
	}
	return out
}

// PruneAfterFold drops every action a player takes after folding, on the same or a
// later street.
func PruneAfterFold(h hand.Hand) hand.Hand {
	out := h.WithStreets()
	folded := make(map[string]bool)
	for _, s := range hand.AllStreets {
		st := out.Streets[s]
		kept := make([]hand.Action, 0, len(st.Actions))
		for _, a := range st.Actions {
			if a.ActorUID != "" && folded[a.ActorUID] {
				continue
			}
			kept = append(kept, a)
			if a.Kind == hand.KindFold {
				folded[a.ActorUID] = true
			}
		}
		st.Actions = kept
		out.Streets[s] = st
	}
	return out
}
