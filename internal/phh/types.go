package phh

// HandHistory represents a single poker hand encoded in PHH format. Player lists are
// ordered from the seat after the button round to the button.
type HandHistory struct {
	Variant           string   `toml:"variant"`
	SeatCount         int      `toml:"seat_count,omitempty"`
	Seats             []int    `toml:"seats,omitempty"`
	Antes             []int64  `toml:"antes"`
	BlindsOrStraddles []int64  `toml:"blinds_or_straddles"`
	MinBet            int64    `toml:"min_bet"`
	StartingStacks    []int64  `toml:"starting_stacks"`
	FinishingStacks   []int64  `toml:"finishing_stacks,omitempty"`
	Winnings          []int64  `toml:"winnings,omitempty"`
	Actions           []string `toml:"actions"`
	Players           []string `toml:"players,omitempty"`
	HandID            string   `toml:"hand"`

	// Underscore keys are user-defined fields in PHH.
	Hero   string   `toml:"_hero,omitempty"`
	Issues []string `toml:"_issues,omitempty"`
}
