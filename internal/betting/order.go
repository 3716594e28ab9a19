// Package betting replays NLHE betting rounds: who acts next, what each action is allowed
// to do and when a street is over.
package betting

import (
	"sort"

	"github.com/lox/handcheck/internal/hand"
)

// ClockwiseOrder sorts the seats by number and rotates them so the button is first.
// The order is returned unrotated when the button matches no seat.
func ClockwiseOrder(seats []hand.Seat, button int) []string {
	sorted := append([]hand.Seat(nil), seats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SeatNo < sorted[j].SeatNo })

	start := 0
	for i, s := range sorted {
		if s.SeatNo == button {
			start = i
			break
		}
	}

	order := make([]string, 0, len(sorted))
	for i := range sorted {
		order = append(order, sorted[(start+i)%len(sorted)].PlayerUID)
	}
	return order
}

// OrderFor derives the acting rotation of a hand.
func OrderFor(h hand.Hand) []string {
	btn, _ := h.Button()
	return ClockwiseOrder(h.Seats, btn)
}

// FirstToActPreflop returns the player after the last forced-bet poster. The big blind
// is index 2 (index 1 heads-up); each big blind or straddle poster in posted moves the
// pointer to their seat.
func FirstToActPreflop(order, posted []string) string {
	n := len(order)
	if n == 0 {
		return ""
	}
	last := 2
	if n == 2 {
		last = 1
	}
	if last >= n {
		last = n - 1
	}
	for _, uid := range posted {
		if i := indexOf(order, uid); i >= 0 {
			last = i
		}
	}
	return order[(last+1)%n]
}

// FirstToActPostflop returns the first active player clockwise of the button.
func FirstToActPostflop(order []string, active func(uid string) bool) string {
	n := len(order)
	for i := 1; i <= n; i++ {
		uid := order[i%n]
		if active(uid) {
			return uid
		}
	}
	return ""
}

func indexOf(order []string, uid string) int {
	for i, o := range order {
		if o == uid {
			return i
		}
	}
	return -1
}
