// Package repair rewrites an illegal hand record into a legal one through a fixed
// sequence of deterministic steps. Every step takes a hand and returns a new one; the
// input is never modified.
package repair

import (
	rand "math/rand/v2"

	"github.com/lox/handcheck/internal/hand"
	"github.com/lox/handcheck/internal/pot"
	"github.com/lox/handcheck/internal/uid"
)

// Options switch the optional steps on.
type Options struct {
	// StrictBlinds synthesizes missing antes, blinds and the deal.
	StrictBlinds bool
	// AllowLegacy converts legacy player identifiers before anything else.
	AllowLegacy bool
}

// Step is one named transform of the pipeline.
type Step struct {
	Name  string
	Apply func(hand.Hand) hand.Hand
}

// Pipeline runs the repair steps in order.
type Pipeline struct {
	Options Options
}

// Steps returns the steps Run applies, in order. rng is consumed by card repair only.
func (p Pipeline) Steps(rng *rand.Rand) []Step {
	var steps []Step
	if p.Options.AllowLegacy {
		steps = append(steps, Step{"legacy_uids", uid.ConvertLegacy})
	}
	if p.Options.StrictBlinds {
		steps = append(steps, Step{"forced_bets", SynthesizeForced})
	}
	return append(steps,
		Step{"cards", func(h hand.Hand) hand.Hand { return RepairCards(h, rng) }},
		Step{"bet_amounts", LegalizeBetting},
		Step{"preflop_opening", NormalizeOpening},
		Step{"turn_order", NormalizeTurnOrder},
		Step{"fold_completion", CompleteFolds},
		Step{"fold_pruning", PruneAfterFold},
		Step{"pots", pot.Rebuild},
		Step{"renumber", Renumber},
	)
}

// Run applies every step to h. The result depends only on h, the options and the
// state of rng.
func (p Pipeline) Run(h hand.Hand, rng *rand.Rand) hand.Hand {
	for _, step := range p.Steps(rng) {
		h = step.Apply(h)
	}
	return h
}

// Renumber assigns orders 1..n across the hand, street by street, and stamps each
// action with the street that holds it.
func Renumber(h hand.Hand) hand.Hand {
	out := h.WithStreets()
	n := 0
	for _, s := range hand.AllStreets {
		st := out.Streets[s]
		for i := range st.Actions {
			n++
			st.Actions[i].Order = n
			st.Actions[i].Street = s
		}
		out.Streets[s] = st
	}
	return out
}
