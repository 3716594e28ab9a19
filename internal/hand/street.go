package hand

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Street is a betting round. The zero value means the street was not given.
type Street int

const (
	StreetUnset Street = iota
	Preflop
	Flop
	Turn
	River
)

// AllStreets lists the streets in play order.
var AllStreets = []Street{Preflop, Flop, Turn, River}

func (s Street) String() string {
	switch s {
	case Preflop:
		return "Preflop"
	case Flop:
		return "Flop"
	case Turn:
		return "Turn"
	case River:
		return "River"
	default:
		return ""
	}
}

// BoardSize is the number of community cards visible on the street.
func (s Street) BoardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River:
		return 5
	default:
		return 0
	}
}

// Next returns the following street, or StreetUnset after the river.
func (s Street) Next() Street {
	if s >= Preflop && s < River {
		return s + 1
	}
	return StreetUnset
}

// ParseStreet reads a street tag case-insensitively.
func ParseStreet(raw string) (Street, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "preflop", "pre-flop", "pre_flop":
		return Preflop, nil
	case "flop":
		return Flop, nil
	case "turn":
		return Turn, nil
	case "river":
		return River, nil
	}
	return StreetUnset, fmt.Errorf("unknown street %q", raw)
}

func (s Street) MarshalText() ([]byte, error) {
	if s == StreetUnset {
		return []byte{}, nil
	}
	return []byte(s.String()), nil
}

func (s *Street) UnmarshalText(text []byte) error {
	parsed, err := ParseStreet(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StreetMap holds the streets of a hand keyed by tag.
type StreetMap map[Street]StreetState

// MarshalJSON writes the streets in play order rather than key order.
func (m StreetMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, s := range AllStreets {
		st, ok := m[s]
		if !ok {
			continue
		}
		if st.Board == nil {
			st.Board = []string{}
		}
		if st.Actions == nil {
			st.Actions = []Action{}
		}
		val, err := json.Marshal(st)
		if err != nil {
			return nil, fmt.Errorf("street %s: %w", s, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%q:", s.String())
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
