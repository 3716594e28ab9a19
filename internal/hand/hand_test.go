package hand

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHand = `{
  "hand_id": "h1",
  "metadata": {
    "button_seat_no": 1,
    "hero_player_uid": "alice",
    "small_blind": 5,
    "big_blind": 10.0,
    "hole_cards": {"alice": ["As", "Kd"], "bob": ["7c", "7d"]}
  },
  "seats": [
    {"seat_no": 1, "player_uid": "alice", "starting_stack": 1000},
    {"seat_no": 2, "player_uid": "bob", "starting_stack": 1000}
  ],
  "streets": {
    "preflop": {"board": [], "actions": [
      {"order": 1, "street": "Preflop", "actor_uid": "alice", "kind": "PostBlind", "blind_type": "sb", "amount": 5},
      {"order": 2, "street": "Preflop", "actor_uid": "bob", "kind": "post_blind", "blind_type": "BB", "amount": 10},
      {"order": 3, "street": "Preflop", "actor_uid": "alice", "kind": "Raise", "amount": 25, "to_amount": 30},
      {"order": 4, "street": "Preflop", "actor_uid": "bob", "kind": "Teleport"}
    ]}
  }
}`

func TestDecodeHand(t *testing.T) {
	var h Hand
	require.NoError(t, json.Unmarshal([]byte(sampleHand), &h))

	btn, ok := h.Button()
	require.True(t, ok)
	assert.Equal(t, 1, btn)
	assert.Equal(t, Chips(10), h.Metadata.BigBlind)

	actions := h.Street(Preflop).Actions
	require.Len(t, actions, 4)
	assert.Equal(t, KindPostBlind, actions[0].Kind)
	assert.Equal(t, SmallBlind, actions[0].BlindType)
	assert.Equal(t, KindPostBlind, actions[1].Kind)
	assert.Equal(t, Preflop, actions[2].Street)
	require.NotNil(t, actions[2].ToAmount)
	assert.Equal(t, Chips(30), *actions[2].ToAmount)
	assert.Equal(t, KindUnknown, actions[3].Kind)
	assert.Equal(t, "Teleport", actions[3].KindName())
}

func TestChipsRejectsFractions(t *testing.T) {
	var c Chips
	assert.Error(t, json.Unmarshal([]byte("10.5"), &c))
	assert.NoError(t, json.Unmarshal([]byte("10.0"), &c))
	assert.Equal(t, Chips(10), c)
}

func TestChipsRejectsOutOfRange(t *testing.T) {
	var c Chips
	assert.Error(t, json.Unmarshal([]byte("1e30"), &c))
	assert.Error(t, json.Unmarshal([]byte("-1e30"), &c))
	assert.Error(t, json.Unmarshal([]byte("9223372036854775808"), &c))
	assert.NoError(t, json.Unmarshal([]byte("1e15"), &c))
	assert.Equal(t, Chips(1_000_000_000_000_000), c)
}

func TestEncodeWritesStreetsInPlayOrder(t *testing.T) {
	h := Hand{
		Metadata: Metadata{ButtonSeatNo: IntPtr(1)},
		Streets: StreetMap{
			River:   {},
			Preflop: {Actions: []Action{Check("a").On(Preflop, 1)}},
			Flop:    {Board: []string{"As", "Kd", "2c"}},
		},
	}
	data, err := json.Marshal(h.Streets)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Preflop": {"board": [], "actions": [{"order": 1, "street": "Preflop", "actor_uid": "a", "kind": "Check"}]},
		"Flop": {"board": ["As", "Kd", "2c"], "actions": []},
		"River": {"board": [], "actions": []}
	}`, string(data))
	assert.Regexp(t, `^\{"Preflop".*"Flop".*"River"`, string(data))
}

func TestCloneIsDeep(t *testing.T) {
	var h Hand
	require.NoError(t, json.Unmarshal([]byte(sampleHand), &h))

	c := h.Clone()
	*c.Metadata.ButtonSeatNo = 2
	c.Metadata.HoleCards["alice"][0] = "2s"
	c.Seats[0].PlayerUID = "carol"
	pf := c.Streets[Preflop]
	*pf.Actions[2].ToAmount = 99
	pf.Actions[0].ActorUID = "x"

	btn, _ := h.Button()
	assert.Equal(t, 1, btn)
	assert.Equal(t, "As", h.Metadata.HoleCards["alice"][0])
	assert.Equal(t, "alice", h.Seats[0].PlayerUID)
	assert.Equal(t, Chips(30), *h.Street(Preflop).Actions[2].ToAmount)
	assert.Equal(t, "alice", h.Street(Preflop).Actions[0].ActorUID)
}

func TestWithStreetsSynthesisesMissing(t *testing.T) {
	h := Hand{Streets: StreetMap{Preflop: {Actions: []Action{Fold("a")}}}}
	full := h.WithStreets()
	assert.Len(t, full.Streets, 4)
	assert.Len(t, h.Streets, 1)
	assert.NotNil(t, full.Streets[River].Board)
}

func TestRaiseTargetFallback(t *testing.T) {
	assert.Equal(t, Chips(200), RaiseTarget(Raise("a", 150, 200), 50))
	assert.Equal(t, Chips(200), RaiseTarget(Action{Kind: KindRaise, Amount: 150}, 50))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"Check", KindCheck},
		{"return_uncalled", KindReturnUncalled},
		{"DEALHOLE", KindDealHole},
		{"straddle", KindStraddle},
		{"allin", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKind(tt.in))
		})
	}
}

func TestKindClasses(t *testing.T) {
	assert.True(t, KindFold.Voluntary())
	assert.False(t, KindShow.Voluntary())
	assert.True(t, KindStraddle.Forced())
	assert.False(t, KindDealHole.Forced())
	assert.True(t, KindRaise.Aggressive())
	assert.False(t, KindCall.Aggressive())
}
