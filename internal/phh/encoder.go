package phh

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/handcheck/internal/betting"
	"github.com/lox/handcheck/internal/hand"
	"github.com/lox/handcheck/internal/pot"
)

// Encode writes the hand history to the provided writer in PHH TOML format.
func Encode(w io.Writer, hh *HandHistory) error {
	if hh == nil {
		return fmt.Errorf("phh: hand history is nil")
	}

	enc := toml.NewEncoder(w)
	// Use tabs for arrays to match human expectations
	enc.Indent = "\t"
	return enc.Encode(hh)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hh *HandHistory) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, hh); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// EncodeSession writes several hands as one PHH session, each under its own
// [hand_N] table numbered from 1.
func EncodeSession(w io.Writer, hands []*HandHistory) error {
	for i, hh := range hands {
		if hh == nil {
			return fmt.Errorf("phh: hand history %d is nil", i)
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		enc := toml.NewEncoder(w)
		enc.Indent = "\t"
		if err := enc.Encode(map[string]*HandHistory{SectionName(i): hh}); err != nil {
			return fmt.Errorf("phh: encode hand %d: %w", i, err)
		}
	}
	return nil
}

// SectionName is the session table holding the hand at index.
func SectionName(index int) string {
	return fmt.Sprintf("hand_%d", index+1)
}

// FormatAction converts an action to its PHH string for the player at index in the
// PHH player order. total is the actor's street contribution after a bet or raise.
// It returns false for actions PHH records elsewhere: forced posts, the deal and
// uncalled returns.
func FormatAction(player int, a hand.Action, total hand.Chips) (string, bool) {
	p := fmt.Sprintf("p%d", player+1)
	switch a.Kind {
	case hand.KindFold:
		return fmt.Sprintf("%s f", p), true
	case hand.KindCheck, hand.KindCall:
		return fmt.Sprintf("%s cc", p), true
	case hand.KindBet, hand.KindRaise:
		if total <= 0 {
			return "", false
		}
		return fmt.Sprintf("%s cbr %d", p, total), true
	case hand.KindShow:
		if len(a.Cards) == 0 {
			return fmt.Sprintf("%s sm", p), true
		}
		return fmt.Sprintf("%s sm %s", p, NormalizeCards(a.Cards)), true
	case hand.KindPostAnte, hand.KindPostBlind, hand.KindStraddle, hand.KindDealHole, hand.KindReturnUncalled:
		return "", false
	default:
		return fmt.Sprintf("# %s %s %d", p, a.KindName(), a.Amount), true
	}
}

// FromHand converts a hand to PHH. issues, when given, are carried in the _issues field.
func FromHand(h hand.Hand, issues []string) *HandHistory {
	players := phhOrder(betting.OrderFor(h))
	index := make(map[string]int, len(players))
	for i, uid := range players {
		index[uid] = i
	}
	n := len(players)

	hh := &HandHistory{
		Variant:           "NT",
		SeatCount:         n,
		Seats:             make([]int, n),
		Antes:             make([]int64, n),
		BlindsOrStraddles: make([]int64, n),
		MinBet:            int64(h.Metadata.BigBlind),
		StartingStacks:    make([]int64, n),
		Actions:           []string{},
		Players:           players,
		HandID:            h.HandID,
		Hero:              h.Metadata.HeroPlayerUID,
		Issues:            issues,
	}
	stacks := h.Stacks()
	for i, uid := range players {
		if s, ok := h.SeatByUID(uid); ok {
			hh.Seats[i] = s.SeatNo
		}
		hh.StartingStacks[i] = int64(stacks[uid])
	}

	for _, a := range h.Streets[hand.Preflop].Actions {
		i, ok := index[a.ActorUID]
		if !ok {
			continue
		}
		switch {
		case a.Kind == hand.KindPostAnte:
			hh.Antes[i] += int64(a.Amount)
		case a.Kind == hand.KindStraddle, a.Kind == hand.KindPostBlind && a.BlindType == hand.BigBlind:
			hh.BlindsOrStraddles[i] += int64(hand.RaiseTarget(a, 0))
		case a.Kind == hand.KindPostBlind:
			hh.BlindsOrStraddles[i] += int64(a.Amount)
		}
	}

	for _, uid := range players {
		cards := h.Metadata.HoleCards[uid]
		dealt := NormalizeCards(cards)
		if len(cards) == 0 {
			dealt = unknownCard + unknownCard
		}
		hh.Actions = append(hh.Actions, fmt.Sprintf("d dh p%d %s", index[uid]+1, dealt))
	}
	hh.Actions = append(hh.Actions, streetActions(h, index)...)

	settle(hh, h, players)
	return hh
}

// phhOrder lists players from the seat after the button round to the button.
func phhOrder(rotation []string) []string {
	if len(rotation) < 2 {
		return rotation
	}
	out := make([]string, 0, len(rotation))
	out = append(out, rotation[1:]...)
	return append(out, rotation[0])
}

func streetActions(h hand.Hand, index map[string]int) []string {
	var out []string
	live := len(index)
	dealt := 0
	for _, s := range hand.AllStreets {
		st := h.Streets[s]
		if s != hand.Preflop {
			if live < 2 {
				break
			}
			if len(st.Board) > dealt {
				out = append(out, "d db "+NormalizeCards(st.Board[dealt:]))
				dealt = len(st.Board)
			}
		}

		contrib := make(map[string]hand.Chips)
		for _, a := range st.Actions {
			i, ok := index[a.ActorUID]
			if !ok {
				continue
			}
			var total hand.Chips
			switch {
			case a.Kind == hand.KindStraddle, a.Kind == hand.KindPostBlind && a.BlindType == hand.BigBlind:
				contrib[a.ActorUID] = hand.RaiseTarget(a, 0)
			case a.Kind == hand.KindPostBlind, a.Kind == hand.KindCall:
				contrib[a.ActorUID] += a.Amount
			case a.Kind == hand.KindBet:
				total = contrib[a.ActorUID] + a.Amount
				contrib[a.ActorUID] = total
			case a.Kind == hand.KindRaise:
				total = hand.RaiseTarget(a, contrib[a.ActorUID])
				contrib[a.ActorUID] = total
			case a.Kind == hand.KindFold:
				live--
			}
			if line, ok := FormatAction(i, a, total); ok {
				out = append(out, line)
			}
		}
	}
	return out
}

// settle fills winnings and finishing stacks when the pots carry shares.
func settle(hh *HandHistory, h hand.Hand, players []string) {
	won := make(map[string]float64)
	shared := false
	for _, p := range h.Pots {
		for _, s := range p.Shares {
			won[s.PlayerUID] += s.Amount
			shared = true
		}
	}
	if !shared {
		return
	}
	paid := pot.Contributions(h)
	hh.Winnings = make([]int64, len(players))
	hh.FinishingStacks = make([]int64, len(players))
	for i, uid := range players {
		w := int64(math.Round(won[uid]))
		hh.Winnings[i] = w
		hh.FinishingStacks[i] = hh.StartingStacks[i] - int64(paid[uid]) + w
	}
}
