// Package pot reconciles declared pots with the chips the action log puts in.
package pot

import (
	"math"

	"github.com/lox/handcheck/internal/hand"
	"github.com/lox/handcheck/internal/issue"
)

// tolerance absorbs float noise in externally settled share amounts.
const tolerance = 1e-6

// Contributions returns each player's net chips put into the pot: antes, blinds,
// straddles, bets, calls and raises, less uncalled returns.
func Contributions(h hand.Hand) map[string]hand.Chips {
	out := make(map[string]hand.Chips)
	for _, s := range hand.AllStreets {
		for uid, paid := range Street(h.Streets[s].Actions) {
			out[uid] += paid
		}
	}
	return out
}

// Street returns the net chips each actor put in over one street's actions. A raise
// pays the difference between its target and what the actor already had in.
func Street(actions []hand.Action) map[string]hand.Chips {
	net, _ := streetTotals(actions)
	return net
}

// Live returns each actor's live contribution to the street's betting: blinds,
// straddles, bets, calls and raises, without antes or returned chips.
func Live(actions []hand.Action) map[string]hand.Chips {
	_, live := streetTotals(actions)
	return live
}

func streetTotals(actions []hand.Action) (out, live map[string]hand.Chips) {
	out = make(map[string]hand.Chips)
	live = make(map[string]hand.Chips)
	for _, a := range actions {
		if a.ActorUID == "" {
			continue
		}
		var paid hand.Chips
		switch a.Kind {
		case hand.KindPostAnte:
			out[a.ActorUID] += max(a.Amount, 0)
			continue
		case hand.KindReturnUncalled:
			out[a.ActorUID] -= max(a.Amount, 0)
			continue
		case hand.KindStraddle:
			paid = hand.RaiseTarget(a, 0)
		case hand.KindPostBlind:
			paid = a.Amount
			if a.BlindType == hand.BigBlind {
				paid = hand.RaiseTarget(a, 0)
			}
		case hand.KindBet, hand.KindCall:
			paid = a.Amount
		case hand.KindRaise:
			paid = hand.RaiseTarget(a, live[a.ActorUID]) - live[a.ActorUID]
		default:
			continue
		}
		paid = max(paid, 0)
		live[a.ActorUID] += paid
		out[a.ActorUID] += paid
	}
	return out, live
}

// Total sums a contribution map.
func Total(contrib map[string]hand.Chips) hand.Chips {
	var total hand.Chips
	for _, c := range contrib {
		total += c
	}
	return total
}

// Validate checks every declared pot against the action log. With enforce set and no
// pots declared, the returned hand carries a single synthesized pot; h itself is not
// modified.
func Validate(h hand.Hand, enforce bool) (hand.Hand, issue.List) {
	var problems issue.List
	seated := make(map[string]bool, len(h.Seats))
	for _, s := range h.Seats {
		seated[s.PlayerUID] = true
	}

	var declared float64
	for i, p := range h.Pots {
		declared += p.Amount
		if p.Amount < 0 {
			problems = append(problems, issue.Potf("pot_negative", "pot %d amount %v is negative", i, p.Amount))
		}
		if p.Amount != math.Trunc(p.Amount) {
			problems = append(problems, issue.Potf("pot_fractional", "pot %d amount %v is not a whole chip amount", i, p.Amount))
		}
		for _, uid := range p.EligiblePlayerUIDs {
			if !seated[uid] {
				problems = append(problems, issue.Potf("pot_eligible_unknown", "pot %d lists unseated player %q as eligible", i, uid))
			}
		}
		if len(p.Shares) == 0 {
			continue
		}
		var shares float64
		for _, s := range p.Shares {
			shares += s.Amount
			if s.PlayerUID != "" && !seated[s.PlayerUID] {
				problems = append(problems, issue.Potf("pot_share_unknown", "pot %d pays unseated player %q", i, s.PlayerUID))
			}
		}
		if math.Abs(shares-p.Amount) > tolerance {
			problems = append(problems, issue.Potf("pot_share_sum", "pot %d shares sum to %v, pot is %v", i, shares, p.Amount))
		}
	}

	total := Total(Contributions(h))
	if declared > float64(total)+tolerance {
		problems = append(problems, issue.Potf("pot_exceeds_contributions", "pots total %v exceeds contributions of %d", declared, total))
	}

	if enforce && len(h.Pots) == 0 {
		return Rebuild(h), problems
	}
	return h, problems
}

// Rebuild replaces the pots with one pot holding every contribution, open to every
// seat, with shares left to settlement.
func Rebuild(h hand.Hand) hand.Hand {
	out := h.Clone()
	out.Pots = []hand.Pot{{
		Amount:             float64(Total(Contributions(h))),
		EligiblePlayerUIDs: out.PlayerUIDs(),
	}}
	return out
}
