package betting

import "github.com/lox/handcheck/internal/hand"

// Round is the betting state of a hand. Stacks and InHand carry across streets; the
// other fields describe the street in progress.
type Round struct {
	Street      hand.Street
	BigBlind    hand.Chips
	CurrentBet  hand.Chips
	LastRaise   hand.Chips
	Contrib     map[string]hand.Chips
	Stacks      map[string]hand.Chips
	InHand      map[string]bool
	NeedsAction map[string]bool

	order  []string
	cursor int
}

// NewRound seats every player in order with their starting stack, ready for the
// preflop posting prefix.
func NewRound(order []string, stacks map[string]hand.Chips, bigBlind hand.Chips) *Round {
	r := &Round{
		Street:      hand.Preflop,
		BigBlind:    bigBlind,
		Contrib:     make(map[string]hand.Chips, len(order)),
		Stacks:      make(map[string]hand.Chips, len(order)),
		InHand:      make(map[string]bool, len(order)),
		NeedsAction: make(map[string]bool, len(order)),
		order:       order,
	}
	for _, uid := range order {
		r.Stacks[uid] = stacks[uid]
		r.InHand[uid] = true
	}
	return r
}

// Order is the clockwise rotation starting at the button.
func (r *Round) Order() []string { return r.order }

// Seated reports whether uid is part of the rotation.
func (r *Round) Seated(uid string) bool {
	_, ok := r.InHand[uid]
	return ok
}

// Active reports whether the player is still in the hand with chips behind.
func (r *Round) Active(uid string) bool {
	return r.InHand[uid] && r.Stacks[uid] > 0
}

// ToCall is what uid must add to match the current bet.
func (r *Round) ToCall(uid string) hand.Chips {
	if owed := r.CurrentBet - r.Contrib[uid]; owed > 0 {
		return owed
	}
	return 0
}

// MinRaiseTo is the smallest legal raise target.
func (r *Round) MinRaiseTo() hand.Chips {
	return r.CurrentBet + max(r.LastRaise, r.BigBlind)
}

// Ceiling is the largest total street contribution uid can reach.
func (r *Round) Ceiling(uid string) hand.Chips {
	return r.Contrib[uid] + r.Stacks[uid]
}

// Post moves a forced bet into the street contributions. Antes are dead and only
// leave the stack.
func (r *Round) Post(uid string, amount hand.Chips, dead bool) hand.Chips {
	paid := r.take(uid, amount)
	if !dead {
		r.Contrib[uid] += paid
	}
	return paid
}

// PostingPrefix returns how many leading actions are forced posts or the deal.
func PostingPrefix(actions []hand.Action) int {
	for i, a := range actions {
		if !a.Kind.Forced() && a.Kind != hand.KindDealHole {
			return i
		}
	}
	return len(actions)
}

// Seed applies a preflop posting prefix and opens the betting. Posts by players who
// are not seated are skipped and returned.
func (r *Round) Seed(prefix []hand.Action) (skipped []hand.Action) {
	var (
		bet    hand.Chips
		posted []string
	)
	for _, a := range prefix {
		if a.Kind == hand.KindDealHole {
			continue
		}
		if !r.Seated(a.ActorUID) {
			skipped = append(skipped, a)
			continue
		}
		switch {
		case a.Kind == hand.KindPostAnte:
			r.Post(a.ActorUID, a.Amount, true)
		case a.Kind == hand.KindStraddle || a.BlindType == hand.BigBlind:
			level := hand.RaiseTarget(a, 0)
			r.Post(a.ActorUID, level, false)
			bet = max(bet, level)
			posted = append(posted, a.ActorUID)
		default:
			r.Post(a.ActorUID, a.Amount, false)
		}
	}
	r.OpenPreflop(bet, posted)
	return skipped
}

// OpenPreflop sets the preflop bet level after the posting prefix and points the
// cursor at the first player to act.
func (r *Round) OpenPreflop(bet hand.Chips, posted []string) {
	for _, c := range r.Contrib {
		bet = max(bet, c)
	}
	r.CurrentBet = bet
	r.LastRaise = bet
	r.flagActive("")
	r.cursor = indexOf(r.order, FirstToActPreflop(r.order, posted))
	if r.cursor < 0 {
		r.cursor = 0
	}
}

// StartStreet resets the bet level for a postflop street.
func (r *Round) StartStreet(s hand.Street) {
	r.Street = s
	r.CurrentBet = 0
	r.LastRaise = 0
	clear(r.Contrib)
	clear(r.NeedsAction)
	r.flagActive("")
	r.cursor = max(indexOf(r.order, FirstToActPostflop(r.order, r.Active)), 0)
}

// Expected returns who should act next, or "" when nobody is owed a decision.
func (r *Round) Expected() string {
	n := len(r.order)
	for i := 0; i < n; i++ {
		uid := r.order[(r.cursor+i)%n]
		if r.Active(uid) && (r.NeedsAction[uid] || r.ToCall(uid) > 0) {
			return uid
		}
	}
	return ""
}

// Remaining counts players who have not folded.
func (r *Round) Remaining() int {
	n := 0
	for _, in := range r.InHand {
		if in {
			n++
		}
	}
	return n
}

// HandOver reports whether a single player is left.
func (r *Round) HandOver() bool {
	return r.Remaining() <= 1
}

// Closed reports whether the street's betting is finished: every active player has
// matched the bet and acted, or at most one player has chips left and owes nothing.
func (r *Round) Closed() bool {
	if r.HandOver() {
		return true
	}
	active := 0
	for _, uid := range r.order {
		if r.Active(uid) {
			active++
		}
	}
	for _, uid := range r.order {
		if !r.Active(uid) {
			continue
		}
		if r.ToCall(uid) > 0 {
			return false
		}
		if active > 1 && r.NeedsAction[uid] {
			return false
		}
	}
	return true
}

// Check records a decision without chips.
func (r *Round) Check(uid string) {
	r.acted(uid)
}

// Fold removes uid from the hand.
func (r *Round) Fold(uid string) {
	r.InHand[uid] = false
	r.acted(uid)
}

// Call pays what uid owes, capped at the stack, and returns the amount paid.
func (r *Round) Call(uid string) hand.Chips {
	paid := r.take(uid, r.ToCall(uid))
	r.Contrib[uid] += paid
	r.acted(uid)
	return paid
}

// RaiseTo brings uid's street contribution to target (capped at the ceiling). A target
// at or above MinRaiseTo reopens the minimum raise size; a short all-in keeps it.
func (r *Round) RaiseTo(uid string, target hand.Chips) hand.Chips {
	target = min(target, r.Ceiling(uid))
	full := target >= r.MinRaiseTo()
	paid := r.take(uid, target-r.Contrib[uid])
	r.Contrib[uid] += paid
	if r.Contrib[uid] > r.CurrentBet {
		if full {
			r.LastRaise = r.Contrib[uid] - r.CurrentBet
		}
		r.CurrentBet = r.Contrib[uid]
		r.flagActive(uid)
	}
	r.acted(uid)
	return paid
}

// Return credits an uncalled amount back to uid's stack.
func (r *Round) Return(uid string, amount hand.Chips) {
	if amount > 0 {
		r.Stacks[uid] += amount
	}
}

func (r *Round) take(uid string, amount hand.Chips) hand.Chips {
	paid := min(max(amount, 0), r.Stacks[uid])
	r.Stacks[uid] -= paid
	return paid
}

func (r *Round) acted(uid string) {
	r.NeedsAction[uid] = false
	if i := indexOf(r.order, uid); i >= 0 {
		r.cursor = (i + 1) % len(r.order)
	}
}

func (r *Round) flagActive(except string) {
	for _, uid := range r.order {
		r.NeedsAction[uid] = uid != except && r.Active(uid)
	}
}
