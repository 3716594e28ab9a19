package repair

import (
	"sort"

	"github.com/lox/handcheck/internal/betting"
	"github.com/lox/handcheck/internal/hand"
)

// LegalizeBetting replays every street in recorded order and rewrites each voluntary
// action's amounts so they are legal for the state it is applied to: calls pay what is
// owed, short bets and raises are bumped to the minimum, oversized ones are cut to the
// actor's all-in and the all-in flag is recomputed. Actions that cannot be applied are
// left for the turn-order step.
func LegalizeBetting(h hand.Hand) hand.Hand {
	out := h.WithStreets()
	r := betting.NewRound(betting.OrderFor(out), out.Stacks(), out.Metadata.BigBlind)

	for _, s := range hand.AllStreets {
		st := out.Streets[s]
		start := 0
		if s == hand.Preflop {
			start = betting.PostingPrefix(st.Actions)
			r.Seed(st.Actions[:start])
		} else if !r.HandOver() {
			r.StartStreet(s)
		}

		for i := start; i < len(st.Actions); i++ {
			a := st.Actions[i]
			if !a.Kind.Voluntary() || !r.Active(a.ActorUID) || r.HandOver() {
				continue
			}
			fitted, ok := fit(r, a)
			if !ok {
				r.Check(a.ActorUID)
				continue
			}
			st.Actions[i] = fitted
			apply(r, fitted)
		}
		out.Streets[s] = st
	}
	return out
}

// NormalizeOpening sorts the preflop actions before the first bet or raise into acting
// order from the first player to act, provided they are all checks, calls or folds by
// distinct seated players. Calls are cut to what the player owes the opening bet.
func NormalizeOpening(h hand.Hand) hand.Hand {
	out := h.WithStreets()
	pf := out.Streets[hand.Preflop]
	start := betting.PostingPrefix(pf.Actions)
	end := start
	for end < len(pf.Actions) && !pf.Actions[end].Kind.Aggressive() {
		end++
	}
	segment := pf.Actions[start:end]
	if len(segment) < 2 {
		return out
	}

	r := betting.NewRound(betting.OrderFor(out), out.Stacks(), out.Metadata.BigBlind)
	r.Seed(pf.Actions[:start])

	seen := make(map[string]bool, len(segment))
	for _, a := range segment {
		switch a.Kind {
		case hand.KindCheck, hand.KindCall, hand.KindFold:
		default:
			return out
		}
		if !r.Seated(a.ActorUID) || seen[a.ActorUID] {
			return out
		}
		seen[a.ActorUID] = true
	}

	rank := rotationFrom(r.Order(), r.Expected())
	sorted := make([]hand.Action, len(segment))
	copy(sorted, segment)
	sort.SliceStable(sorted, func(i, j int) bool { return rank[sorted[i].ActorUID] < rank[sorted[j].ActorUID] })

	for i, a := range sorted {
		a.Order = segment[i].Order
		if a.Kind == hand.KindCall {
			owed := min(r.ToCall(a.ActorUID), r.Stacks[a.ActorUID])
			if owed == 0 {
				a = hand.Check(a.ActorUID).On(a.Street, a.Order)
			} else {
				a.Amount = owed
				a.ToAmount = nil
				a.AllIn = owed == r.Stacks[a.ActorUID]
			}
		}
		segment[i] = a
	}
	out.Streets[hand.Preflop] = pf
	return out
}

// NormalizeTurnOrder places each street's checks in acting order. Bets, calls, raises
// and folds keep their recorded order and are never rewritten. Before each of them, the
// players due to act ahead of its actor who owe nothing check, using a recorded check
// when they have one. Once every recorded decision is placed, players who still owe
// nothing check until the street closes; players who owe chips are left for fold
// completion. Checks made while facing a bet are dropped, as are decisions by players
// who have folded or are all in, decisions after the hand is won, actions by unseated
// players and forced posts or deals outside the preflop posting prefix. Uncalled
// returns, shows and mucks are kept at the end of their street.
func NormalizeTurnOrder(h hand.Hand) hand.Hand {
	out := h.WithStreets()
	r := betting.NewRound(betting.OrderFor(out), out.Stacks(), out.Metadata.BigBlind)
	returned := make(map[string]bool)

	for _, s := range hand.AllStreets {
		st := out.Streets[s]
		actions := st.Actions
		var result []hand.Action

		if s == hand.Preflop {
			n := betting.PostingPrefix(actions)
			for _, a := range actions[:n] {
				if a.Kind == hand.KindDealHole || r.Seated(a.ActorUID) {
					result = append(result, a)
				}
			}
			r.Seed(actions[:n])
			actions = actions[n:]
		} else if !r.HandOver() {
			r.StartStreet(s)
		}

		checks := make(map[string][]hand.Action)
		var decisions, tail []hand.Action
		for _, a := range actions {
			if !r.Seated(a.ActorUID) {
				continue
			}
			switch {
			case a.Kind == hand.KindCheck:
				checks[a.ActorUID] = append(checks[a.ActorUID], a)
			case a.Kind.Voluntary():
				decisions = append(decisions, a)
			case a.Kind == hand.KindReturnUncalled, a.Kind == hand.KindShow, a.Kind == hand.KindMuck:
				tail = append(tail, a)
			}
		}

		for _, a := range decisions {
			if r.HandOver() || !r.Active(a.ActorUID) {
				continue
			}
			result = flushChecks(r, checks, a.ActorUID, s, result)
			a.Street = s
			result = append(result, a)
			apply(r, a)
		}
		result = flushChecks(r, checks, "", s, result)
		// Players still owing chips get their fold from CompleteFolds. They are out of
		// the hand from here on so later streets are built without them.
		for !r.HandOver() && !r.Closed() {
			actor := r.Expected()
			if actor == "" || r.ToCall(actor) == 0 {
				break
			}
			r.Fold(actor)
			result = flushChecks(r, checks, "", s, result)
		}

		for _, a := range tail {
			switch a.Kind {
			case hand.KindReturnUncalled:
				if returned[a.ActorUID] {
					continue
				}
				amount := uncalled(r, a.ActorUID)
				if amount <= 0 {
					continue
				}
				returned[a.ActorUID] = true
				a.Amount = amount
				a.ToAmount = nil
				r.Return(a.ActorUID, amount)
			default:
				if !r.InHand[a.ActorUID] {
					continue
				}
			}
			a.Street = s
			result = append(result, a)
		}

		st.Actions = result
		out.Streets[s] = st
	}
	return out
}

// flushChecks appends a check for every player due to act before until the street
// closes or the player due owes chips. A player's recorded checks are used first.
func flushChecks(r *betting.Round, checks map[string][]hand.Action, before string, s hand.Street, result []hand.Action) []hand.Action {
	for !r.HandOver() && !r.Closed() {
		actor := r.Expected()
		if actor == "" || actor == before || r.ToCall(actor) > 0 {
			break
		}
		c := hand.Check(actor)
		if q := checks[actor]; len(q) > 0 {
			c, checks[actor] = q[0], q[1:]
		}
		c.Street = s
		result = append(result, c)
		r.Check(actor)
	}
	return result
}

// uncalled is how far uid's street contribution exceeds everyone else's.
func uncalled(r *betting.Round, uid string) hand.Chips {
	var top hand.Chips
	for other, c := range r.Contrib {
		if other != uid {
			top = max(top, c)
		}
	}
	return r.Contrib[uid] - top
}

// fit rewrites a voluntary action into the legal action closest to it for its actor.
// It returns false for a check facing a bet, which has no legal reading.
func fit(r *betting.Round, a hand.Action) (hand.Action, bool) {
	uid := a.ActorUID
	contrib := r.Contrib[uid]
	var out hand.Action
	switch a.Kind {
	case hand.KindFold:
		out = hand.Fold(uid)
	case hand.KindCheck:
		if r.ToCall(uid) > 0 {
			return a, false
		}
		out = hand.Check(uid)
	case hand.KindCall:
		out = fitCall(r, uid)
	case hand.KindBet:
		if r.CurrentBet > 0 {
			out = fitRaise(r, uid, contrib+a.Amount)
		} else {
			out = fitBet(r, uid, a.Amount)
		}
	case hand.KindRaise:
		target := hand.RaiseTarget(a, contrib)
		if r.CurrentBet > 0 {
			out = fitRaise(r, uid, target)
		} else {
			out = fitBet(r, uid, target-contrib)
		}
	default:
		return a, false
	}
	return out.On(a.Street, a.Order), true
}

func fitCall(r *betting.Round, uid string) hand.Action {
	owed := min(r.ToCall(uid), r.Stacks[uid])
	if owed == 0 {
		return hand.Check(uid)
	}
	a := hand.Call(uid, owed)
	a.AllIn = owed == r.Stacks[uid]
	return a
}

func fitBet(r *betting.Round, uid string, amount hand.Chips) hand.Action {
	stack := r.Stacks[uid]
	if amount <= 0 {
		return hand.Check(uid)
	}
	amount = min(max(amount, r.BigBlind), stack)
	a := hand.Bet(uid, amount)
	a.AllIn = amount == stack
	return a
}

func fitRaise(r *betting.Round, uid string, target hand.Chips) hand.Action {
	ceiling := r.Ceiling(uid)
	target = min(target, ceiling)
	if target <= r.CurrentBet {
		return fitCall(r, uid)
	}
	target = min(max(target, r.MinRaiseTo()), ceiling)
	a := hand.Raise(uid, target-r.Contrib[uid], target)
	a.AllIn = target == ceiling
	return a
}

// apply moves the round forward by a legal action.
func apply(r *betting.Round, a hand.Action) {
	switch a.Kind {
	case hand.KindCheck:
		r.Check(a.ActorUID)
	case hand.KindFold:
		r.Fold(a.ActorUID)
	case hand.KindCall:
		r.Call(a.ActorUID)
	case hand.KindBet:
		r.RaiseTo(a.ActorUID, r.Contrib[a.ActorUID]+a.Amount)
	case hand.KindRaise:
		r.RaiseTo(a.ActorUID, hand.RaiseTarget(a, r.Contrib[a.ActorUID]))
	}
}

// rotationFrom ranks each player by seats after first, clockwise.
func rotationFrom(order []string, first string) map[string]int {
	start := 0
	for i, uid := range order {
		if uid == first {
			start = i
			break
		}
	}
	rank := make(map[string]int, len(order))
	for i := range order {
		rank[order[(start+i)%len(order)]] = i
	}
	return rank
}
