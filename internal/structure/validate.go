// Package structure checks the shape of a hand record independently of betting rules.
package structure

import (
	"sort"

	"github.com/lox/handcheck/internal/deck"
	"github.com/lox/handcheck/internal/hand"
	"github.com/lox/handcheck/internal/issue"
)

// Validate returns every structural problem in h. It never modifies h and never stops early.
func Validate(h hand.Hand) issue.List {
	var v validator
	v.seats(h)
	v.streets(h)
	h = h.WithStreets()
	v.actions(h)
	v.cards(h)
	v.pots(h)
	return v.problems
}

type validator struct {
	problems issue.List
}

func (v *validator) add(p issue.Problem) {
	v.problems = append(v.problems, p)
}

func (v *validator) seats(h hand.Hand) {
	btn, ok := h.Button()
	if !ok {
		v.add(issue.Structuralf("button_missing", "metadata.button_seat_no is missing"))
	}

	bySeat := make(map[int]bool, len(h.Seats))
	byUID := make(map[string]bool, len(h.Seats))
	for _, s := range h.Seats {
		if bySeat[s.SeatNo] {
			v.add(issue.Structuralf("seat_duplicate", "seat %d appears more than once", s.SeatNo))
		}
		bySeat[s.SeatNo] = true
		if s.PlayerUID == "" {
			v.add(issue.Structuralf("seat_uid_missing", "seat %d has no player_uid", s.SeatNo))
			continue
		}
		if byUID[s.PlayerUID] {
			v.add(issue.Structuralf("seat_uid_duplicate", "player %s is seated more than once", s.PlayerUID))
		}
		byUID[s.PlayerUID] = true
	}
	if len(h.Seats) < 2 {
		v.add(issue.Structuralf("seats_too_few", "hand has %d seats, need at least 2", len(h.Seats)))
	}

	if ok && !bySeat[btn] {
		v.add(issue.Structuralf("button_unknown_seat", "button seat %d matches no seat", btn))
	}
	if h.Metadata.HeroPlayerUID == "" {
		v.add(issue.Structuralf("hero_missing", "metadata.hero_player_uid is missing"))
	}
}

func (v *validator) streets(h hand.Hand) {
	for _, s := range hand.AllStreets {
		if _, ok := h.Streets[s]; !ok {
			v.add(issue.Structuralf("street_missing", "street %s is missing", s).On(s))
		}
	}
}

func (v *validator) actions(h hand.Hand) {
	last := 0
	for _, s := range hand.AllStreets {
		for _, a := range h.Streets[s].Actions {
			loc := a
			loc.Street = s
			if a.Kind == hand.KindUnknown {
				v.add(issue.Structuralf("action_kind_unknown", "unknown action kind %q", a.RawKind).At(loc))
			}
			if a.ActorUID == "" && a.Kind != hand.KindDealHole {
				v.add(issue.Structuralf("action_actor_missing", "%s has no actor_uid", a.KindName()).At(loc))
			}
			if a.Street != s {
				v.add(issue.Structuralf("action_street_mismatch", "action street %q does not match %s", a.Street.String(), s).At(loc))
			}
			if a.Order <= last {
				v.add(issue.Structuralf("action_order", "order %d does not follow %d", a.Order, last).At(loc))
			} else {
				last = a.Order
			}
			if a.Amount < 0 || (a.ToAmount != nil && *a.ToAmount < 0) {
				v.add(issue.Structuralf("action_amount_negative", "%s amount is negative", a.KindName()).At(loc))
			}
		}
	}
}

func (v *validator) cards(h hand.Hand) {
	seated := make(map[string]bool, len(h.Seats))
	var all []string

	for _, s := range h.SeatsByNumber() {
		if s.PlayerUID == "" {
			continue
		}
		seated[s.PlayerUID] = true
		cards, ok := h.Metadata.HoleCards[s.PlayerUID]
		if !ok {
			v.add(issue.Structuralf("hole_cards_missing", "no hole cards for %s", s.PlayerUID))
			continue
		}
		if len(cards) != 2 {
			v.add(issue.Structuralf("hole_cards_count", "%s has %d hole cards, want 2", s.PlayerUID, len(cards)))
		}
		for _, c := range cards {
			if !deck.Valid(c) {
				v.add(issue.Structuralf("card_invalid", "hole card %q of %s is not a valid card", c, s.PlayerUID))
				continue
			}
			all = append(all, c)
		}
	}

	extra := make([]string, 0)
	for uid := range h.Metadata.HoleCards {
		if !seated[uid] {
			extra = append(extra, uid)
		}
	}
	sort.Strings(extra)
	for _, uid := range extra {
		v.add(issue.Structuralf("hole_cards_unseated", "hole cards given for unseated player %s", uid))
	}

	var prev []string
	onBoard := make(map[string]bool)
	for _, s := range []hand.Street{hand.Flop, hand.Turn, hand.River} {
		board := h.Streets[s].Board
		if len(board) != s.BoardSize() {
			v.add(issue.Structuralf("board_size", "%s board has %d cards, want %d", s, len(board), s.BoardSize()).On(s))
		}
		for _, c := range board {
			if !deck.Valid(c) {
				v.add(issue.Structuralf("card_invalid", "board card %q is not a valid card", c).On(s))
			}
		}
		if s != hand.Flop && len(prev) > 0 && !extends(board, prev) {
			v.add(issue.Structuralf("board_prefix", "%s board does not extend the %s board", s, s-1).On(s))
		}
		prev = board
		// a board repeats the previous street's cards, so count each card once across boards
		for _, c := range board {
			if deck.Valid(c) && !onBoard[c] {
				onBoard[c] = true
				all = append(all, c)
			}
		}
	}

	seen := make(map[string]bool, len(all))
	for _, c := range all {
		if seen[c] {
			v.add(issue.Structuralf("card_duplicate", "card %s is used more than once", c))
		}
		seen[c] = true
	}
}

func extends(board, prev []string) bool {
	if len(board) < len(prev) {
		return false
	}
	for i := range prev {
		if board[i] != prev[i] {
			return false
		}
	}
	return true
}

func (v *validator) pots(h hand.Hand) {
	for i, p := range h.Pots {
		if p.EligiblePlayerUIDs == nil {
			v.add(issue.Structuralf("pot_eligible_missing", "pot %d has no eligible_player_uids list", i))
		}
		for j, s := range p.Shares {
			if s.PlayerUID == "" {
				v.add(issue.Structuralf("pot_share_player_missing", "pot %d share %d names no player", i, j))
			}
		}
	}
}
