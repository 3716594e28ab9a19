package issue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/handcheck/internal/hand"
)

func TestProblemString(t *testing.T) {
	tests := []struct {
		name string
		p    Problem
		want string
	}{
		{"bare", Structuralf("button_missing", "button_seat_no is missing"), "[structural]: button_seat_no is missing"},
		{"street", Legalityf("street_incomplete", "betting never closed").On(hand.Turn), "[legality] Turn: betting never closed"},
		{"action", Legalityf("out_of_turn", "expected %s", "bob").At(hand.Action{Street: hand.Flop, Order: 7}), "[legality] Flop #7: expected bob"},
		{"pot", Potf("pot_negative", "pot 0 amount is negative"), "[pot]: pot 0 amount is negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.String())
		})
	}
}

func TestListHelpers(t *testing.T) {
	l := List{
		Structuralf("a", "x"),
		Legalityf("b", "y"),
		Legalityf("c", "z"),
	}
	assert.Equal(t, []string{"a", "b", "c"}, l.Codes())
	assert.True(t, l.Has("b"))
	assert.False(t, l.Has("d"))
	assert.Equal(t, 2, l.Count(Legality))
	assert.Len(t, l.Strings(), 3)
	assert.Empty(t, List(nil).Strings())
}
