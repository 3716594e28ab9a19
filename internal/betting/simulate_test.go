package betting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handcheck/internal/betting"
	"github.com/lox/handcheck/internal/hand"
	testkit "github.com/lox/handcheck/internal/testing"
)

func TestHeadsUpLimpAndCheck(t *testing.T) {
	// p1 is the button and small blind
	h := testkit.NewHand(5, 10, 1000, 1000).
		Blinds().
		Street(hand.Preflop, hand.Call("p1", 5), hand.Check("p2")).
		Street(hand.Flop, hand.Check("p2"), hand.Check("p1")).
		Street(hand.Turn, hand.Check("p2"), hand.Check("p1")).
		Street(hand.River, hand.Check("p2"), hand.Check("p1")).
		Hand()

	res := betting.Simulate(h)
	assert.Empty(t, res.Problems)
	assert.True(t, res.Closed[hand.Preflop])
	assert.Equal(t, hand.Chips(10), res.CurrentBet[hand.Preflop])
	assert.Equal(t, hand.Chips(0), res.CurrentBet[hand.Flop])
	assert.Equal(t, hand.Chips(990), res.Stacks["p1"])
	assert.False(t, res.Ended)
}

func TestThreeHandedFlopRaise(t *testing.T) {
	// order is p1 (button), p2 (small blind, first postflop), p3 (big blind)
	h := testkit.NewHand(10, 20, 1000, 1000, 1000).
		Blinds().
		Street(hand.Preflop, hand.Call("p1", 20), hand.Call("p2", 10), hand.Check("p3")).
		Street(hand.Flop,
			hand.Bet("p2", 50),
			hand.Raise("p3", 150, 150),
			hand.Fold("p1"),
			hand.Call("p2", 100),
		).
		Street(hand.Turn, hand.Check("p2"), hand.Check("p3")).
		Street(hand.River, hand.Check("p2"), hand.Check("p3")).
		Hand()

	res := betting.Simulate(h)
	assert.Empty(t, res.Problems)
	assert.True(t, res.Closed[hand.Flop])
	assert.Equal(t, hand.Chips(150), res.CurrentBet[hand.Flop])
	assert.Equal(t, hand.Chips(830), res.Stacks["p2"])
	assert.Equal(t, hand.Chips(830), res.Stacks["p3"])
	assert.Equal(t, hand.Chips(980), res.Stacks["p1"])
}

func TestMinRaiseBoundary(t *testing.T) {
	tests := []struct {
		name    string
		stack   hand.Chips
		to      hand.Chips
		illegal bool
	}{
		{"below minimum", 1000, 150, true},
		{"exactly minimum", 1000, 200, false},
		{"above minimum", 1000, 350, false},
		{"all-in below minimum", 170, 170, false},
		{"short of all-in below minimum", 300, 170, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// button p1 opens with current bet 100 and last raise 100
			h := testkit.NewHand(50, 100, tt.stack, 1000, 1000).
				Blinds().
				Street(hand.Preflop, hand.Raise("p1", tt.to, tt.to)).
				Hand()

			res := betting.Simulate(h)
			assert.Equal(t, tt.illegal, res.Problems.Has("raise_below_minimum"), res.Problems.Strings())
		})
	}
}

func TestCheckFacingBetIsIllegal(t *testing.T) {
	for _, actor := range []string{"p2", "p3"} {
		t.Run(actor, func(t *testing.T) {
			h := testkit.NewHand(10, 20, 1000, 1000, 1000).
				Blinds().
				Street(hand.Preflop, hand.Raise("p1", 60, 60), hand.Check(actor)).
				Hand()
			res := betting.Simulate(h)
			assert.True(t, res.Problems.Has("check_facing_bet"), res.Problems.Strings())
		})
	}
}

func TestOutOfTurnIsFlaggedAndApplied(t *testing.T) {
	h := testkit.NewHand(10, 20, 1000, 1000, 1000).
		Blinds().
		Street(hand.Preflop, hand.Fold("p2"), hand.Call("p1", 20), hand.Check("p3")).
		Hand()

	res := betting.Simulate(h)
	require.True(t, res.Problems.Has("out_of_turn"))
	assert.True(t, res.Closed[hand.Preflop])
	assert.Contains(t, res.Problems[0].String(), "expected p1")
}

func TestFoldsEndTheHand(t *testing.T) {
	h := testkit.NewHand(10, 20, 1000, 1000, 1000).
		Blinds().
		Street(hand.Preflop, hand.Raise("p1", 60, 60), hand.Fold("p2"), hand.Fold("p3"), hand.ReturnUncalled("p1", 40)).
		Street(hand.Flop, hand.Bet("p1", 20)).
		Hand()

	res := betting.Simulate(h)
	assert.True(t, res.Ended)
	assert.Equal(t, []string{"action_after_hand_end"}, res.Problems.Codes())
	assert.Equal(t, hand.Chips(980), res.Stacks["p1"])
}

func TestIncompleteStreet(t *testing.T) {
	h := testkit.NewHand(10, 20, 1000, 1000, 1000).
		Blinds().
		Street(hand.Preflop, hand.Call("p1", 20)).
		Hand()

	res := betting.Simulate(h)
	assert.False(t, res.Closed[hand.Preflop])
	assert.True(t, res.Problems.Has("street_incomplete"))
}

func TestBetRules(t *testing.T) {
	tests := []struct {
		name  string
		bet   hand.Action
		codes []string
	}{
		{"below big blind", hand.Bet("p2", 10), []string{"bet_below_minimum"}},
		{"over stack", hand.Bet("p2", 5000), []string{"bet_exceeds_stack"}},
		{"short all-in", hand.Bet("p2", 15), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stacks := []hand.Chips{1000, 1000, 1000}
			if tt.name == "short all-in" {
				stacks[1] = 35
			}
			h := testkit.NewHand(10, 20, stacks...).
				Blinds().
				Street(hand.Preflop, hand.Call("p1", 20), hand.Call("p2", 10), hand.Check("p3")).
				Street(hand.Flop, tt.bet).
				Hand()

			res := betting.Simulate(h)
			for _, code := range tt.codes {
				assert.True(t, res.Problems.Has(code), res.Problems.Strings())
			}
			if tt.codes == nil {
				assert.False(t, res.Problems.Has("bet_below_minimum"), res.Problems.Strings())
			}
		})
	}
}

func TestStraddleShiftsFirstToAct(t *testing.T) {
	h := testkit.NewHand(10, 20, 1000, 1000, 1000, 1000).
		Blinds().
		Street(hand.Preflop,
			hand.Straddle("p4", 40),
			hand.Raise("p1", 120, 120),
			hand.Fold("p2"),
			hand.Fold("p3"),
			hand.Fold("p4"),
		).
		Hand()

	res := betting.Simulate(h)
	assert.Empty(t, res.Problems)
	assert.True(t, res.Ended)
}

func TestAllInPlayersCannotAct(t *testing.T) {
	h := testkit.NewHand(10, 20, 1000, 100, 1000).
		Blinds().
		Street(hand.Preflop, hand.Call("p1", 20), hand.Raise("p2", 90, 100), hand.Call("p3", 80), hand.Call("p1", 80)).
		Street(hand.Flop, hand.Bet("p2", 10), hand.Check("p3"), hand.Check("p1")).
		Street(hand.Turn, hand.Check("p3"), hand.Check("p1")).
		Street(hand.River, hand.Check("p3"), hand.Check("p1")).
		Hand()

	res := betting.Simulate(h)
	assert.Equal(t, []string{"actor_all_in"}, res.Problems.Codes())
}
