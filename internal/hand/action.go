package hand

import (
	"encoding/json"
	"strings"
)

// Kind is the tag of an action. KindUnknown keeps the original tag in Action.RawKind.
type Kind int

const (
	KindUnknown Kind = iota
	KindPostAnte
	KindPostBlind
	KindStraddle
	KindDealHole
	KindCheck
	KindBet
	KindCall
	KindRaise
	KindFold
	KindReturnUncalled
	KindShow
	KindMuck
)

var kindNames = [...]string{
	KindUnknown:        "",
	KindPostAnte:       "PostAnte",
	KindPostBlind:      "PostBlind",
	KindStraddle:       "Straddle",
	KindDealHole:       "DealHole",
	KindCheck:          "Check",
	KindBet:            "Bet",
	KindCall:           "Call",
	KindRaise:          "Raise",
	KindFold:           "Fold",
	KindReturnUncalled: "ReturnUncalled",
	KindShow:           "Show",
	KindMuck:           "Muck",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return ""
	}
	return kindNames[k]
}

// ParseKind maps a tag such as "Raise", "raise" or "return_uncalled" to its Kind.
func ParseKind(raw string) Kind {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", ""))
	for k, name := range kindNames {
		if name != "" && strings.ToLower(name) == norm {
			return Kind(k)
		}
	}
	return KindUnknown
}

// Voluntary reports whether the kind is a player decision that takes a turn.
func (k Kind) Voluntary() bool {
	switch k {
	case KindCheck, KindBet, KindCall, KindRaise, KindFold:
		return true
	}
	return false
}

// Forced reports whether the kind is a posting made before the action starts.
func (k Kind) Forced() bool {
	switch k {
	case KindPostAnte, KindPostBlind, KindStraddle:
		return true
	}
	return false
}

// Aggressive reports whether the kind opens or raises the betting.
func (k Kind) Aggressive() bool {
	return k == KindBet || k == KindRaise
}

// BlindType distinguishes small and big blind posts.
type BlindType string

const (
	SmallBlind BlindType = "SB"
	BigBlind   BlindType = "BB"
)

// Action is one event in a street's log.
type Action struct {
	Order     int
	Street    Street
	ActorUID  string
	Kind      Kind
	RawKind   string
	BlindType BlindType
	Amount    Chips
	ToAmount  *Chips
	AllIn     bool
	Cards     []string
}

type actionJSON struct {
	Order     int       `json:"order"`
	Street    string    `json:"street"`
	ActorUID  string    `json:"actor_uid,omitempty"`
	Kind      string    `json:"kind"`
	BlindType BlindType `json:"blind_type,omitempty"`
	Amount    Chips     `json:"amount,omitempty"`
	ToAmount  *Chips    `json:"to_amount,omitempty"`
	AllIn     bool      `json:"all_in,omitempty"`
	Cards     []string  `json:"cards,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	kind := a.Kind.String()
	if a.Kind == KindUnknown {
		kind = a.RawKind
	}
	return json.Marshal(actionJSON{
		Order:     a.Order,
		Street:    a.Street.String(),
		ActorUID:  a.ActorUID,
		Kind:      kind,
		BlindType: a.BlindType,
		Amount:    a.Amount,
		ToAmount:  a.ToAmount,
		AllIn:     a.AllIn,
		Cards:     a.Cards,
	})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var raw actionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	street, err := ParseStreet(raw.Street)
	if err != nil {
		street = StreetUnset
	}
	kind := ParseKind(raw.Kind)
	*a = Action{
		Order:     raw.Order,
		Street:    street,
		ActorUID:  raw.ActorUID,
		Kind:      kind,
		BlindType: BlindType(strings.ToUpper(string(raw.BlindType))),
		Amount:    raw.Amount,
		ToAmount:  raw.ToAmount,
		AllIn:     raw.AllIn,
		Cards:     raw.Cards,
	}
	if kind == KindUnknown {
		a.RawKind = raw.Kind
	}
	return nil
}

// Clone copies the action including its optional fields.
func (a Action) Clone() Action {
	out := a
	if a.ToAmount != nil {
		to := *a.ToAmount
		out.ToAmount = &to
	}
	if a.Cards != nil {
		out.Cards = append([]string(nil), a.Cards...)
	}
	return out
}

// KindName is the tag to print for the action.
func (a Action) KindName() string {
	if a.Kind == KindUnknown {
		return a.RawKind
	}
	return a.Kind.String()
}

// RaiseTarget is the raiser's total street contribution after the action: ToAmount when
// recorded, otherwise what the actor had already put in plus Amount.
func RaiseTarget(a Action, contributed Chips) Chips {
	if a.ToAmount != nil {
		return *a.ToAmount
	}
	return contributed + a.Amount
}

func chipsPtr(c Chips) *Chips { return &c }

func PostAnte(uid string, amount Chips) Action {
	return Action{Kind: KindPostAnte, ActorUID: uid, Amount: amount}
}

func PostBlind(uid string, blind BlindType, amount Chips) Action {
	return Action{Kind: KindPostBlind, ActorUID: uid, BlindType: blind, Amount: amount}
}

func Straddle(uid string, amount Chips) Action {
	return Action{Kind: KindStraddle, ActorUID: uid, Amount: amount}
}

func DealHole() Action { return Action{Kind: KindDealHole} }

func Check(uid string) Action { return Action{Kind: KindCheck, ActorUID: uid} }

func Bet(uid string, amount Chips) Action {
	return Action{Kind: KindBet, ActorUID: uid, Amount: amount}
}

func Call(uid string, amount Chips) Action {
	return Action{Kind: KindCall, ActorUID: uid, Amount: amount}
}

// Raise records a raise adding amount chips for a street total of to.
func Raise(uid string, amount, to Chips) Action {
	return Action{Kind: KindRaise, ActorUID: uid, Amount: amount, ToAmount: chipsPtr(to)}
}

func Fold(uid string) Action { return Action{Kind: KindFold, ActorUID: uid} }

func ReturnUncalled(uid string, amount Chips) Action {
	return Action{Kind: KindReturnUncalled, ActorUID: uid, Amount: amount}
}

func Show(uid string, cards ...string) Action {
	return Action{Kind: KindShow, ActorUID: uid, Cards: cards}
}

func Muck(uid string) Action { return Action{Kind: KindMuck, ActorUID: uid} }

// On stamps the street and order onto an action.
func (a Action) On(s Street, order int) Action {
	a.Street = s
	a.Order = order
	return a
}
