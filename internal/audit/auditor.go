// Package audit drives a whole run: it loads a hand collection, checks (and with Fix
// repairs) every hand on a worker pool, and writes the report and fixed outputs.
package audit

import (
	"context"
	"encoding/json"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/handcheck/internal/betting"
	"github.com/lox/handcheck/internal/hand"
	"github.com/lox/handcheck/internal/issue"
	"github.com/lox/handcheck/internal/pot"
	"github.com/lox/handcheck/internal/randutil"
	"github.com/lox/handcheck/internal/repair"
	"github.com/lox/handcheck/internal/structure"
	"github.com/lox/handcheck/internal/uid"
)

// DefaultSeed seeds card repair when no seed is configured.
const DefaultSeed int64 = 42

// Options control one run.
type Options struct {
	// Fix runs the repair pipeline before validating.
	Fix    bool
	Repair repair.Options
	// EnforcePots synthesizes a pot for hands that declare none.
	EnforcePots bool
	// Seed is the run seed; each hand repairs cards from its own source derived from
	// the seed and the hand's index.
	Seed int64
	// Workers bounds how many hands are processed at once. Zero means one per CPU.
	Workers int
}

// Result is the outcome for one input hand.
type Result struct {
	Index  int
	HandID string
	// Hand is the checked, and possibly repaired, hand. It is only meaningful when
	// Decoded is set; otherwise Raw is passed through unchanged.
	Hand    hand.Hand
	Raw     json.RawMessage
	Decoded bool
	Issues  issue.List
}

// Clean reports whether the hand has no remaining problem.
func (r Result) Clean() bool {
	return len(r.Issues) == 0
}

// Auditor checks hands.
type Auditor struct {
	Options Options
	Logger  zerolog.Logger
}

// New returns an Auditor with the given options.
func New(opts Options, logger zerolog.Logger) *Auditor {
	return &Auditor{Options: opts, Logger: logger}
}

// Run processes every record and returns the results in input order. Hands do not
// share state, so the results do not depend on the number of workers.
func (a *Auditor) Run(ctx context.Context, records []Record) ([]Result, error) {
	workers := a.Options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	a.Logger.Debug().
		Int("hands", len(records)).
		Int("workers", workers).
		Bool("fix", a.Options.Fix).
		Int64("seed", a.Options.Seed).
		Msg("Starting audit")

	results := make([]Result, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.Check(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Check processes one record: canonical UIDs, the repair pipeline when fixing, then the
// structural, betting and pot checks.
func (a *Auditor) Check(rec Record) Result {
	res := Result{Index: rec.Index, Raw: rec.Raw}
	logger := a.Logger.With().Int("hand_index", rec.Index).Logger()

	if !rec.Decoded {
		res.Issues = append(issue.List(nil), rec.Problems...)
		logger.Debug().Int("issues", len(res.Issues)).Msg("Hand passed through undecoded")
		return res
	}

	h := uid.Apply(rec.Hand)
	schemaIssues := rec.Problems
	if a.Options.Fix {
		rng := randutil.ForHand(a.Options.Seed, rec.Index)
		h = repair.Pipeline{Options: a.Options.Repair}.Run(h, rng)
		schemaIssues = recheckSchema(h)
	}

	var issues issue.List
	issues = append(issues, schemaIssues...)
	issues = append(issues, structure.Validate(h)...)
	issues = append(issues, betting.Simulate(h).Problems...)
	h, potIssues := pot.Validate(h, a.Options.EnforcePots)
	issues = append(issues, potIssues...)

	res.Hand = h
	res.HandID = h.HandID
	res.Decoded = true
	res.Issues = issues

	logger.Debug().
		Str("hand_id", h.HandID).
		Int("issues", len(issues)).
		Strs("codes", issues.Codes()).
		Msg("Checked hand")
	return res
}

// recheckSchema validates a repaired hand's own encoding, so problems that only
// described the input are not reported against the fixed hand.
func recheckSchema(h hand.Hand) issue.List {
	schemas, err := loadSchemas()
	if err != nil {
		return issue.List{issue.Structuralf("schema", "%v", err)}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return issue.List{issue.Structuralf("decode", "repaired hand does not encode: %v", err)}
	}
	return schemaProblems(schemas.hand, data)
}
