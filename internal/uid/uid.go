// Package uid normalises player identifiers.
package uid

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/lox/handcheck/internal/hand"
)

// Canonicalize strips every whitespace rune and lowercases the rest.
func Canonicalize(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, raw)
}

// Apply returns a copy of h with every player identifier canonicalized.
func Apply(h hand.Hand) hand.Hand {
	return rewrite(h, Canonicalize)
}

// ConvertLegacy assigns canonical UIDs to seats that carry a legacy identifier and
// rewrites every reference to the old identifiers. Seats with neither a UID nor a
// legacy id get the synthetic p{seat_no}.
func ConvertLegacy(h hand.Hand) hand.Hand {
	out := h.Clone()
	table := make(map[string]string)
	for i, seat := range out.Seats {
		uid := Canonicalize(seat.PlayerUID)
		switch {
		case seat.LegacyID != "":
			uid = Canonicalize(seat.LegacyID)
			if uid == "" {
				uid = synthetic(seat.SeatNo)
			}
		case uid == "":
			uid = synthetic(seat.SeatNo)
		}
		for _, alias := range []string{seat.LegacyID, seat.DisplayName, seat.PlayerUID} {
			if key := Canonicalize(alias); key != "" {
				if _, taken := table[key]; !taken {
					table[key] = uid
				}
			}
		}
		out.Seats[i].PlayerUID = uid
	}

	lookup := func(raw string) string {
		key := Canonicalize(raw)
		if mapped, ok := table[key]; ok {
			return mapped
		}
		return key
	}
	seats := out.Seats
	out = rewrite(out, lookup)
	// Seat UIDs were assigned above and must not go through the alias table again.
	out.Seats = seats
	return out
}

func synthetic(seatNo int) string {
	return fmt.Sprintf("p%d", seatNo)
}

func rewrite(h hand.Hand, fn func(string) string) hand.Hand {
	out := h.Clone()
	for i := range out.Seats {
		out.Seats[i].PlayerUID = fn(out.Seats[i].PlayerUID)
	}
	out.Metadata.HeroPlayerUID = fn(out.Metadata.HeroPlayerUID)

	if h.Metadata.HoleCards != nil {
		keys := make([]string, 0, len(h.Metadata.HoleCards))
		for k := range h.Metadata.HoleCards {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		holes := make(map[string][]string, len(keys))
		for _, k := range keys {
			nk := fn(k)
			if _, dup := holes[nk]; dup {
				continue
			}
			holes[nk] = out.Metadata.HoleCards[k]
		}
		out.Metadata.HoleCards = holes
	}

	for s, st := range out.Streets {
		for i := range st.Actions {
			if st.Actions[i].ActorUID != "" {
				st.Actions[i].ActorUID = fn(st.Actions[i].ActorUID)
			}
		}
		out.Streets[s] = st
	}

	for i := range out.Pots {
		for j, e := range out.Pots[i].EligiblePlayerUIDs {
			out.Pots[i].EligiblePlayerUIDs[j] = fn(e)
		}
		for j := range out.Pots[i].Shares {
			out.Pots[i].Shares[j].PlayerUID = fn(out.Pots[i].Shares[j].PlayerUID)
		}
	}
	return out
}
