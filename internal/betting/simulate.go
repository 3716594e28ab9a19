package betting

import (
	"github.com/lox/handcheck/internal/hand"
	"github.com/lox/handcheck/internal/issue"
)

// Result is the outcome of replaying a hand.
type Result struct {
	Problems issue.List
	// Ended is set when every player but one folded.
	Ended bool
	// Closed records which streets finished their betting.
	Closed map[hand.Street]bool
	// CurrentBet is the bet level each street finished at.
	CurrentBet map[hand.Street]hand.Chips
	// Stacks are the players' stacks after the last action.
	Stacks map[string]hand.Chips
}

// Simulate replays every street of h and reports each betting-rule violation. After a
// violation it keeps going with the closest legal interpretation so later actions are
// still checked.
func Simulate(h hand.Hand) Result {
	h = h.WithStreets()
	res := Result{
		Closed:     make(map[hand.Street]bool, len(hand.AllStreets)),
		CurrentBet: make(map[hand.Street]hand.Chips, len(hand.AllStreets)),
	}
	order := OrderFor(h)
	r := NewRound(order, h.Stacks(), h.Metadata.BigBlind)
	sim := &simulator{round: r, res: &res}

	for _, s := range hand.AllStreets {
		actions := h.Streets[s].Actions
		if s == hand.Preflop {
			actions = sim.seed(actions)
		} else if !res.Ended {
			r.StartStreet(s)
		}
		for _, a := range actions {
			a.Street = s
			sim.step(a)
		}
		if res.Ended {
			continue
		}
		if r.Closed() {
			res.Closed[s] = true
			res.CurrentBet[s] = r.CurrentBet
			continue
		}
		res.Problems = append(res.Problems,
			issue.Legalityf("street_incomplete", "betting on %s never closed, %s still to act", s, r.Expected()).On(s))
		res.CurrentBet[s] = r.CurrentBet
	}
	res.Stacks = r.Stacks
	return res
}

type simulator struct {
	round *Round
	res   *Result
}

func (sim *simulator) flag(p issue.Problem) {
	sim.res.Problems = append(sim.res.Problems, p)
}

// seed applies the preflop posting prefix and returns the remaining actions.
func (sim *simulator) seed(actions []hand.Action) []hand.Action {
	n := PostingPrefix(actions)
	for _, a := range sim.round.Seed(actions[:n]) {
		a.Street = hand.Preflop
		sim.flag(issue.Legalityf("unknown_actor", "%s by unseated player %q", a.KindName(), a.ActorUID).At(a))
	}
	return actions[n:]
}

func (sim *simulator) step(a hand.Action) {
	r := sim.round
	switch {
	case a.Kind == hand.KindUnknown:
		return
	case a.Kind == hand.KindDealHole:
		sim.flag(issue.Legalityf("deal_out_of_place", "DealHole after the preflop posting prefix").At(a))
		return
	case a.Kind.Forced():
		sim.flag(issue.Legalityf("forced_post_out_of_place", "%s by %s after betting started", a.KindName(), a.ActorUID).At(a))
		return
	}

	if !r.Seated(a.ActorUID) {
		if a.ActorUID != "" {
			sim.flag(issue.Legalityf("unknown_actor", "%s by unseated player %q", a.KindName(), a.ActorUID).At(a))
		}
		return
	}

	switch a.Kind {
	case hand.KindReturnUncalled:
		r.Return(a.ActorUID, a.Amount)
		return
	case hand.KindShow, hand.KindMuck:
		return
	}

	switch {
	case sim.res.Ended:
		sim.flag(issue.Legalityf("action_after_hand_end", "%s by %s after the hand ended", a.KindName(), a.ActorUID).At(a))
		return
	case r.Closed():
		sim.flag(issue.Legalityf("action_after_street_closed", "%s by %s after betting closed", a.KindName(), a.ActorUID).At(a))
		return
	case !r.InHand[a.ActorUID]:
		sim.flag(issue.Legalityf("actor_folded", "%s by %s who already folded", a.KindName(), a.ActorUID).At(a))
		return
	case r.Stacks[a.ActorUID] == 0:
		if a.Kind != hand.KindCall || a.Amount != 0 {
			sim.flag(issue.Legalityf("actor_all_in", "%s by %s who is already all-in", a.KindName(), a.ActorUID).At(a))
		}
		return
	}

	if want := r.Expected(); want != a.ActorUID {
		sim.flag(issue.Legalityf("out_of_turn", "%s acted out of turn, expected %s", a.ActorUID, want).At(a))
	}

	switch a.Kind {
	case hand.KindCheck:
		if owed := r.ToCall(a.ActorUID); owed > 0 {
			sim.flag(issue.Legalityf("check_facing_bet", "%s checked with %d to call", a.ActorUID, owed).At(a))
		}
		r.Check(a.ActorUID)
	case hand.KindFold:
		r.Fold(a.ActorUID)
	case hand.KindCall:
		sim.call(a)
	case hand.KindBet:
		sim.bet(a)
	case hand.KindRaise:
		sim.raise(a)
	}

	if r.HandOver() {
		sim.res.Ended = true
	}
}

func (sim *simulator) call(a hand.Action) {
	r := sim.round
	owed := min(r.ToCall(a.ActorUID), r.Stacks[a.ActorUID])
	if owed == 0 {
		sim.flag(issue.Legalityf("call_without_bet", "%s called with nothing to call", a.ActorUID).At(a))
	} else if a.Amount != owed {
		sim.flag(issue.Legalityf("call_amount", "%s called %d, expected %d", a.ActorUID, a.Amount, owed).At(a))
	}
	r.Call(a.ActorUID)
}

func (sim *simulator) bet(a hand.Action) {
	r := sim.round
	if r.CurrentBet > 0 {
		sim.flag(issue.Legalityf("bet_facing_bet", "%s bet into an existing bet of %d", a.ActorUID, r.CurrentBet).At(a))
		sim.raiseTo(a, r.Contrib[a.ActorUID]+a.Amount)
		return
	}
	stack := r.Stacks[a.ActorUID]
	amount := a.Amount
	switch {
	case amount <= 0:
		sim.flag(issue.Legalityf("bet_not_positive", "%s bet %d", a.ActorUID, amount).At(a))
		r.Check(a.ActorUID)
		return
	case amount > stack:
		sim.flag(issue.Legalityf("bet_exceeds_stack", "%s bet %d with %d behind", a.ActorUID, amount, stack).At(a))
		amount = stack
	case amount < r.BigBlind && amount < stack:
		sim.flag(issue.Legalityf("bet_below_minimum", "%s bet %d, minimum is %d", a.ActorUID, amount, r.BigBlind).At(a))
	}
	r.RaiseTo(a.ActorUID, r.Contrib[a.ActorUID]+amount)
}

func (sim *simulator) raise(a hand.Action) {
	r := sim.round
	contrib := r.Contrib[a.ActorUID]
	target := hand.RaiseTarget(a, contrib)
	if a.ToAmount != nil && a.Amount != 0 && a.Amount != target-contrib {
		sim.flag(issue.Legalityf("raise_amount_mismatch", "%s raise amount %d does not reach to_amount %d", a.ActorUID, a.Amount, target).At(a))
	}
	if r.CurrentBet == 0 {
		sim.flag(issue.Legalityf("raise_without_bet", "%s raised with no bet to raise", a.ActorUID).At(a))
	}
	sim.raiseTo(a, target)
}

func (sim *simulator) raiseTo(a hand.Action, target hand.Chips) {
	r := sim.round
	ceiling := r.Ceiling(a.ActorUID)
	if target > ceiling {
		sim.flag(issue.Legalityf("raise_exceeds_stack", "%s raised to %d, all-in is %d", a.ActorUID, target, ceiling).At(a))
		target = ceiling
	}
	if target <= r.CurrentBet {
		if target < ceiling {
			sim.flag(issue.Legalityf("raise_not_above_bet", "%s raised to %d, not above the bet of %d", a.ActorUID, target, r.CurrentBet).At(a))
		}
		r.Call(a.ActorUID)
		return
	}
	if minTo := r.MinRaiseTo(); target < minTo && target < ceiling {
		sim.flag(issue.Legalityf("raise_below_minimum", "%s raised to %d, minimum is %d", a.ActorUID, target, minTo).At(a))
	}
	r.RaiseTo(a.ActorUID, target)
}
