package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/lox/handcheck/internal/audit"
	"github.com/lox/handcheck/internal/repair"
	"github.com/lox/handcheck/internal/reportstore"
)

// exitCode ends the process with a status other than kong's default failure.
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(c))
}

const (
	exitClean    = 0
	exitIssues   = 1
	exitBadUsage = 2
)

// CLI checks a hand collection and optionally repairs it.
type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  kong.ConfigFlag  `help:"HCL file with default flag values"`

	Input  string `required:"" type:"path" help:"Hand collection to read (JSON list or {\"hands\": [...]})"`
	Report string `type:"path" help:"Write the per-hand issue report here"`
	Fix    bool   `help:"Repair every hand before validating it (requires --output)"`
	Output string `type:"path" help:"Combined fixed output"`
	Outdir string `type:"path" help:"Directory for one fixed file per hand"`

	RandomSeed   int64 `name:"random-seed" default:"42" help:"Seed for card repair"`
	StrictBlinds bool  `name:"strict-blinds" help:"Synthesize missing antes, blinds and the deal"`
	AllowLegacy  bool  `name:"allow-legacy" help:"Convert legacy player identifiers"`
	EnforcePots  bool  `name:"enforce-pots" help:"Synthesize a pot for hands that declare none"`

	Workers  int    `help:"Hands checked in parallel (0 = one per CPU)"`
	PHH      string `name:"phh" type:"path" help:"Also write the hands as a PHH session"`
	ReportDB string `name:"report-db" help:"Store the report in sqlite:<path> or a postgres:// database"`
	Summary  bool   `help:"Print a table of hands with issues"`
	Debug    bool   `help:"Enable debug logging"`
	LogJSON  bool   `name:"log-json" help:"Log JSON lines instead of console output"`
}

func (c *CLI) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := c.execute(ctx, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	if code != exitClean {
		return exitCode(code)
	}
	return nil
}

// execute runs the check and returns the process exit status. Errors are reserved for
// unreadable input and failed writes.
func (c *CLI) execute(ctx context.Context, stdout, stderr io.Writer) (int, error) {
	if c.Fix && c.Output == "" {
		fmt.Fprintln(stderr, "handcheck: --fix requires --output")
		return exitBadUsage, nil
	}
	logger := setupLogger(stderr, c.Debug, c.LogJSON)
	started := time.Now()

	records, err := c.load()
	if err != nil {
		return exitIssues, err
	}

	auditor := audit.New(audit.Options{
		Fix: c.Fix,
		Repair: repair.Options{
			StrictBlinds: c.StrictBlinds,
			AllowLegacy:  c.AllowLegacy,
		},
		EnforcePots: c.EnforcePots,
		Seed:        c.RandomSeed,
		Workers:     c.Workers,
	}, logger)
	results, err := auditor.Run(ctx, records)
	if err != nil {
		return exitIssues, err
	}
	report := audit.NewReport(results)

	if err := c.write(ctx, logger, started, report, results); err != nil {
		return exitIssues, err
	}
	if c.Summary {
		fmt.Fprintln(stdout, renderSummary(report))
	}

	withIssues := report.WithIssues()
	logger.Info().
		Int("hands", report.TotalHands).
		Int("with_issues", withIssues).
		Dur("elapsed", time.Since(started)).
		Msg("Check complete")

	if withIssues > 0 {
		fmt.Fprintf(stderr, "handcheck: %d of %d hands have unresolved issues\n", withIssues, report.TotalHands)
		return exitIssues, nil
	}
	return exitClean, nil
}

func (c *CLI) load() ([]audit.Record, error) {
	f, err := os.Open(filepath.Clean(c.Input))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := audit.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Input, err)
	}
	return records, nil
}

// write produces every requested artifact. They are written whether or not hands
// still have issues.
func (c *CLI) write(ctx context.Context, logger zerolog.Logger, started time.Time, report audit.Report, results []audit.Result) error {
	if c.Report != "" {
		if err := audit.WriteReport(c.Report, report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Debug().Str("path", c.Report).Msg("Wrote report")
	}

	if c.Fix {
		if err := audit.WriteFixed(c.Output, results); err != nil {
			return fmt.Errorf("write fixed output: %w", err)
		}
		logger.Debug().Str("path", c.Output).Msg("Wrote fixed hands")

		if c.Outdir != "" {
			paths, err := audit.WriteHandFiles(c.Outdir, results)
			if err != nil {
				return fmt.Errorf("write hand files: %w", err)
			}
			logger.Debug().Str("dir", c.Outdir).Int("files", len(paths)).Msg("Wrote hand files")
		}
	}

	if c.PHH != "" {
		if err := audit.WritePHH(c.PHH, results); err != nil {
			return fmt.Errorf("write phh: %w", err)
		}
		logger.Debug().Str("path", c.PHH).Msg("Wrote PHH session")
	}

	if c.ReportDB != "" {
		store, err := reportstore.Open(ctx, c.ReportDB, logger)
		if err != nil {
			return fmt.Errorf("open report database: %w", err)
		}
		defer store.Close()

		hands := make([]reportstore.HandReport, 0, len(report.Hands))
		for _, h := range report.Hands {
			hands = append(hands, reportstore.HandReport{HandIndex: h.HandIndex, HandID: h.HandID, Issues: h.Issues})
		}
		id, err := store.SaveRun(ctx, reportstore.Run{
			StartedAt:       started,
			Input:           c.Input,
			Fix:             c.Fix,
			Seed:            c.RandomSeed,
			TotalHands:      report.TotalHands,
			HandsWithIssues: report.WithIssues(),
		}, hands)
		if err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		logger.Info().Str("run_id", id).Msg("Stored report")
	}
	return nil
}
