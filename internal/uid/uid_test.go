package uid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/handcheck/internal/hand"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice", "alice"},
		{"  Bob Smith\t", "bobsmith"},
		{"CAROL X", "carolx"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize(tt.in), tt.in)
	}
}

func TestApplyRewritesEveryReference(t *testing.T) {
	h := hand.Hand{
		Metadata: hand.Metadata{
			HeroPlayerUID: " Alice",
			HoleCards:     map[string][]string{"ALICE": {"As", "Ks"}},
		},
		Seats: []hand.Seat{{SeatNo: 1, PlayerUID: "Alice "}, {SeatNo: 2, PlayerUID: "B ob"}},
		Streets: hand.StreetMap{
			hand.Preflop: {Actions: []hand.Action{hand.Fold("BOB"), hand.DealHole()}},
		},
		Pots: []hand.Pot{{Amount: 10, EligiblePlayerUIDs: []string{"Alice"}, Shares: []hand.Share{{PlayerUID: "ALICE", Amount: 10}}}},
	}

	out := Apply(h)
	assert.Equal(t, []string{"alice", "bob"}, out.PlayerUIDs())
	assert.Equal(t, "alice", out.Metadata.HeroPlayerUID)
	assert.Contains(t, out.Metadata.HoleCards, "alice")
	assert.Equal(t, "bob", out.Street(hand.Preflop).Actions[0].ActorUID)
	assert.Equal(t, "", out.Street(hand.Preflop).Actions[1].ActorUID)
	assert.Equal(t, []string{"alice"}, out.Pots[0].EligiblePlayerUIDs)
	assert.Equal(t, "alice", out.Pots[0].Shares[0].PlayerUID)

	// input untouched
	assert.Equal(t, "Alice ", h.Seats[0].PlayerUID)
	assert.Equal(t, "BOB", h.Street(hand.Preflop).Actions[0].ActorUID)
}

func TestConvertLegacy(t *testing.T) {
	h := hand.Hand{
		Metadata: hand.Metadata{
			HeroPlayerUID: "Hero Name",
			HoleCards: map[string][]string{
				"L-1":       {"As", "Ks"},
				"Villain":   {"2c", "2d"},
				"seat-four": {"3c", "3d"},
			},
		},
		Seats: []hand.Seat{
			{SeatNo: 1, LegacyID: "L-1", DisplayName: "Hero Name"},
			{SeatNo: 2, PlayerUID: "old2", LegacyID: "  ", DisplayName: "Villain"},
			{SeatNo: 3},
			{SeatNo: 4, PlayerUID: "Seat-Four"},
		},
		Streets: hand.StreetMap{
			hand.Preflop: {Actions: []hand.Action{hand.Call("Hero Name", 10), hand.Fold("old2"), hand.Check("L-1")}},
		},
		Pots: []hand.Pot{{EligiblePlayerUIDs: []string{"villain", "Hero Name"}}},
	}

	out := ConvertLegacy(h)
	assert.Equal(t, []string{"l-1", "p2", "p3", "seat-four"}, out.PlayerUIDs())
	assert.Equal(t, "l-1", out.Metadata.HeroPlayerUID)
	assert.Equal(t, []string{"As", "Ks"}, out.Metadata.HoleCards["l-1"])
	assert.Equal(t, []string{"2c", "2d"}, out.Metadata.HoleCards["p2"])
	assert.Equal(t, []string{"3c", "3d"}, out.Metadata.HoleCards["seat-four"])

	actors := []string{}
	for _, a := range out.Street(hand.Preflop).Actions {
		actors = append(actors, a.ActorUID)
	}
	assert.Equal(t, []string{"l-1", "p2", "l-1"}, actors)
	assert.Equal(t, []string{"p2", "l-1"}, out.Pots[0].EligiblePlayerUIDs)

	assert.Equal(t, "", h.Seats[0].PlayerUID)
}
