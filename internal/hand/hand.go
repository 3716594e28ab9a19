// Package hand defines the hand-history record that every other package validates or repairs.
//
// A Hand is treated as a value: functions that change it work on a Clone and return the
// copy, so the record that was read from disk stays available for diffing.
package hand

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Chips is a whole-chip amount.
type Chips int64

// UnmarshalJSON accepts any integer-valued JSON number, including 10.0.
func (c *Chips) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("chips: %w", err)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return fmt.Errorf("chips: %v is not a whole amount", f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which no longer fits.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return fmt.Errorf("chips: %v is out of range", f)
	}
	*c = Chips(f)
	return nil
}

// Hand is one recorded poker hand.
type Hand struct {
	HandID   string    `json:"hand_id,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Seats    []Seat    `json:"seats"`
	Streets  StreetMap `json:"streets"`
	Pots     []Pot     `json:"pots,omitempty"`
}

// Metadata carries the table-level facts of a hand.
type Metadata struct {
	ButtonSeatNo  *int                `json:"button_seat_no"`
	HeroPlayerUID string              `json:"hero_player_uid"`
	SmallBlind    Chips               `json:"small_blind"`
	BigBlind      Chips               `json:"big_blind"`
	Ante          Chips               `json:"ante,omitempty"`
	HoleCards     map[string][]string `json:"hole_cards"`
}

// Seat is one occupied seat. LegacyID and DisplayName are only read by legacy conversion.
type Seat struct {
	SeatNo        int    `json:"seat_no"`
	PlayerUID     string `json:"player_uid"`
	StartingStack Chips  `json:"starting_stack"`
	LegacyID      string `json:"legacy_id,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
}

// StreetState is the board and action log of one street.
type StreetState struct {
	Board   []string `json:"board"`
	Actions []Action `json:"actions"`
}

// Pot is a settled or declared pot. Amounts come from external settlement and may be fractional.
type Pot struct {
	Amount             float64  `json:"amount"`
	EligiblePlayerUIDs []string `json:"eligible_player_uids"`
	Shares             []Share  `json:"shares,omitempty"`
}

// Share is one player's part of a pot.
type Share struct {
	PlayerUID string  `json:"player_uid"`
	Amount    float64 `json:"amount"`
}

// IntPtr is a convenience for building metadata in code.
func IntPtr(v int) *int { return &v }

// Button returns the button seat number when present.
func (h Hand) Button() (int, bool) {
	if h.Metadata.ButtonSeatNo == nil {
		return 0, false
	}
	return *h.Metadata.ButtonSeatNo, true
}

// SeatByUID finds the seat of a player.
func (h Hand) SeatByUID(uid string) (Seat, bool) {
	for _, s := range h.Seats {
		if s.PlayerUID == uid {
			return s, true
		}
	}
	return Seat{}, false
}

// SeatsByNumber returns the seats sorted by seat number.
func (h Hand) SeatsByNumber() []Seat {
	seats := append([]Seat(nil), h.Seats...)
	sort.SliceStable(seats, func(i, j int) bool { return seats[i].SeatNo < seats[j].SeatNo })
	return seats
}

// PlayerUIDs returns every seated player UID in seat-number order.
func (h Hand) PlayerUIDs() []string {
	seats := h.SeatsByNumber()
	uids := make([]string, 0, len(seats))
	for _, s := range seats {
		uids = append(uids, s.PlayerUID)
	}
	return uids
}

// Stacks returns the starting stack of every seated player.
func (h Hand) Stacks() map[string]Chips {
	stacks := make(map[string]Chips, len(h.Seats))
	for _, s := range h.Seats {
		stacks[s.PlayerUID] = s.StartingStack
	}
	return stacks
}

// Street returns the state of a street; missing streets are empty.
func (h Hand) Street(s Street) StreetState {
	return h.Streets[s]
}

// Actions returns every action of the hand in street order.
func (h Hand) Actions() []Action {
	var out []Action
	for _, s := range AllStreets {
		out = append(out, h.Streets[s].Actions...)
	}
	return out
}

// WithStreets returns a copy in which all four streets exist.
func (h Hand) WithStreets() Hand {
	out := h.Clone()
	if out.Streets == nil {
		out.Streets = make(StreetMap, len(AllStreets))
	}
	for _, s := range AllStreets {
		if _, ok := out.Streets[s]; !ok {
			out.Streets[s] = StreetState{Board: []string{}, Actions: []Action{}}
		}
	}
	return out
}

// Clone deep-copies the hand.
func (h Hand) Clone() Hand {
	out := h
	if h.Metadata.ButtonSeatNo != nil {
		out.Metadata.ButtonSeatNo = IntPtr(*h.Metadata.ButtonSeatNo)
	}
	if h.Metadata.HoleCards != nil {
		out.Metadata.HoleCards = make(map[string][]string, len(h.Metadata.HoleCards))
		for uid, cards := range h.Metadata.HoleCards {
			out.Metadata.HoleCards[uid] = append([]string(nil), cards...)
		}
	}
	out.Seats = append([]Seat(nil), h.Seats...)
	if h.Streets != nil {
		out.Streets = make(StreetMap, len(h.Streets))
		for s, st := range h.Streets {
			out.Streets[s] = st.Clone()
		}
	}
	if h.Pots != nil {
		out.Pots = make([]Pot, len(h.Pots))
		for i, p := range h.Pots {
			out.Pots[i] = Pot{
				Amount:             p.Amount,
				EligiblePlayerUIDs: append([]string(nil), p.EligiblePlayerUIDs...),
				Shares:             append([]Share(nil), p.Shares...),
			}
		}
	}
	return out
}

// Clone deep-copies the street.
func (st StreetState) Clone() StreetState {
	var out StreetState
	if st.Board != nil {
		out.Board = make([]string, len(st.Board))
		copy(out.Board, st.Board)
	}
	if st.Actions != nil {
		out.Actions = make([]Action, len(st.Actions))
		for i, a := range st.Actions {
			out.Actions[i] = a.Clone()
		}
	}
	return out
}
