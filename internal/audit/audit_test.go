package audit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handcheck/internal/hand"
	"github.com/lox/handcheck/internal/repair"
	testkit "github.com/lox/handcheck/internal/testing"
)

func cleanHand() hand.Hand {
	return testkit.NewHand(5, 10, 1000, 1000).
		Blinds().
		Street(hand.Preflop, hand.Call("p1", 5), hand.Check("p2")).
		Street(hand.Flop, hand.Check("p2"), hand.Check("p1")).
		Street(hand.Turn, hand.Check("p2"), hand.Check("p1")).
		Street(hand.River, hand.Check("p2"), hand.Check("p1")).
		Edit(func(h *hand.Hand) { h.HandID = "clean-1" }).
		Hand()
}

func messyHand() hand.Hand {
	return testkit.NewHand(10, 20, 1000, 1000, 1000).
		Edit(func(h *hand.Hand) {
			h.HandID = ""
			h.Metadata.HoleCards["p2"] = []string{"2s", "Qh"}
			// UIDs are canonicalized before anything else looks at the hand
			h.Seats[2].PlayerUID = " P3 "
		}).
		Street(hand.Preflop, hand.Call("p2", 10), hand.Check("P3"), hand.Call("p1", 20)).
		Street(hand.Flop, hand.Bet("p3", 50), hand.Fold("p1"), hand.Call("p2", 50)).
		Hand()
}

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func input(t *testing.T) string {
	broken := `{"metadata": {}, "seats": "nobody", "streets": {}}`
	return "[" + encode(t, cleanHand()) + "," + encode(t, messyHand()) + "," + broken + "]"
}

func testAuditor(t *testing.T, opts Options) *Auditor {
	return New(opts, zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel))
}

func TestLoadShapes(t *testing.T) {
	hands := "[" + encode(t, cleanHand()) + "]"

	for name, doc := range map[string]string{
		"list":     hands,
		"envelope": `{"hands": ` + hands + `, "source": "export"}`,
	} {
		t.Run(name, func(t *testing.T) {
			records, err := Load(strings.NewReader(doc))
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.True(t, records[0].Decoded)
			assert.Empty(t, records[0].Problems)
			assert.Equal(t, "clean-1", records[0].Hand.HandID)
		})
	}
}

func TestLoadFatalErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"malformed":      `[{"seats": [}`,
		"scalar":         `42`,
		"no hands field": `{"rounds": []}`,
		"hands not list": `{"hands": {}}`,
		"trailing data":  `[] []`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadRecordsPerHandProblems(t *testing.T) {
	records, err := Load(strings.NewReader(input(t)))
	require.NoError(t, err)
	require.Len(t, records, 3)

	broken := records[2]
	assert.False(t, broken.Decoded)
	assert.Equal(t, []string{"schema", "decode"}, broken.Problems.Codes())
	assert.Contains(t, broken.Problems[0].String(), "/seats")

	records, err = Load(strings.NewReader(`[null]`))
	require.NoError(t, err)
	assert.False(t, records[0].Decoded)
	assert.True(t, records[0].Problems.Has("decode"))
}

func TestCheckMode(t *testing.T) {
	records, err := Load(strings.NewReader(input(t)))
	require.NoError(t, err)

	results, err := testAuditor(t, Options{Seed: DefaultSeed}).Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Clean(), results[0].Issues.Strings())
	assert.False(t, results[1].Clean())
	assert.True(t, results[1].Issues.Has("out_of_turn"))
	assert.Equal(t, "p3", results[1].Hand.Seats[2].PlayerUID)
	assert.False(t, results[2].Decoded)

	report := NewReport(results)
	assert.Equal(t, 3, report.TotalHands)
	assert.Equal(t, 2, report.WithIssues())
	assert.Equal(t, []string{}, report.Hands[0].Issues)
}

func TestFixMode(t *testing.T) {
	records, err := Load(strings.NewReader(input(t)))
	require.NoError(t, err)

	opts := Options{Fix: true, Repair: repair.Options{StrictBlinds: true}, Seed: DefaultSeed, Workers: 2}
	results, err := testAuditor(t, opts).Run(context.Background(), records)
	require.NoError(t, err)

	assert.True(t, results[0].Clean(), results[0].Issues.Strings())
	assert.True(t, results[1].Clean(), results[1].Issues.Strings())
	require.Len(t, results[1].Hand.Pots, 1)
	assert.Equal(t, 160.0, results[1].Hand.Pots[0].Amount)
	assert.False(t, results[2].Clean())

	// the same seed gives the same repairs whatever the pool size
	opts.Workers = 1
	again, err := testAuditor(t, opts).Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestEnforcePotsOutsideFix(t *testing.T) {
	records, err := Load(strings.NewReader("[" + encode(t, cleanHand()) + "]"))
	require.NoError(t, err)

	results, err := testAuditor(t, Options{EnforcePots: true}).Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, results[0].Hand.Pots, 1)
	assert.Equal(t, 20.0, results[0].Hand.Pots[0].Amount)
}

func TestRunStopsOnCancel(t *testing.T) {
	records, err := Load(strings.NewReader(input(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = testAuditor(t, Options{Workers: 1}).Run(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteArtifacts(t *testing.T) {
	records, err := Load(strings.NewReader(input(t)))
	require.NoError(t, err)
	results, err := testAuditor(t, Options{Fix: true, Repair: repair.Options{StrictBlinds: true}, Seed: 7}).Run(context.Background(), records)
	require.NoError(t, err)

	dir := t.TempDir()

	reportPath := filepath.Join(dir, "report.json")
	require.NoError(t, WriteReport(reportPath, NewReport(results)))
	var report Report
	readJSON(t, reportPath, &report)
	assert.Equal(t, 3, report.TotalHands)
	assert.Equal(t, "clean-1", report.Hands[0].HandID)

	fixedPath := filepath.Join(dir, "fixed.json")
	require.NoError(t, WriteFixed(fixedPath, results))
	var fixed Fixed
	readJSON(t, fixedPath, &fixed)
	require.Len(t, fixed.Hands, 3)
	assert.JSONEq(t, string(records[2].Raw), string(fixed.Hands[2]))
	var repaired hand.Hand
	require.NoError(t, json.Unmarshal(fixed.Hands[1], &repaired))
	assert.Len(t, repaired.Streets[hand.River].Board, 5)

	paths, err := WriteHandFiles(filepath.Join(dir, "hands"), results)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, "clean-1.json", filepath.Base(paths[0]))
	assert.True(t, strings.HasPrefix(filepath.Base(paths[1]), "hand-"))
	assert.Equal(t, HandFileName(results[1]), filepath.Base(paths[1]))
	assert.True(t, strings.HasPrefix(filepath.Base(paths[2]), "hand-"))
	assert.NotEqual(t, paths[1], paths[2])

	phhPath := filepath.Join(dir, "session.phhs")
	require.NoError(t, WritePHH(phhPath, results))
	var session map[string]map[string]any
	_, err = toml.DecodeFile(phhPath, &session)
	require.NoError(t, err)
	assert.Len(t, session, 2)
	assert.Equal(t, "clean-1", session["hand_1"]["hand"])
}

func TestHandFilesWithSharedIDs(t *testing.T) {
	results := []Result{
		{Index: 0, HandID: "dup", Raw: json.RawMessage(`{}`)},
		{Index: 1, HandID: "dup", Raw: json.RawMessage(`{}`)},
	}
	paths, err := WriteHandFiles(t.TempDir(), results)
	require.NoError(t, err)
	assert.Equal(t, "dup.json", filepath.Base(paths[0]))
	assert.Equal(t, "dup-1.json", filepath.Base(paths[1]))
}

func TestHandFilesNeverOverwrite(t *testing.T) {
	results := []Result{
		{Index: 0, HandID: "x", Raw: json.RawMessage(`{"n": 0}`)},
		{Index: 1, HandID: "x-3", Raw: json.RawMessage(`{"n": 1}`)},
		{Index: 2, HandID: "x-3-2", Raw: json.RawMessage(`{"n": 2}`)},
		{Index: 3, HandID: "x", Raw: json.RawMessage(`{"n": 3}`)},
	}
	dir := t.TempDir()
	paths, err := WriteHandFiles(dir, results)
	require.NoError(t, err)

	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"x.json", "x-3.json", "x-3-2.json", "x-3-3.json"}, names)

	for i, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.JSONEq(t, string(results[i].Raw), string(data))
	}
}

func TestHandFileName(t *testing.T) {
	assert.Equal(t, "table_7_hand_3.json", HandFileName(Result{HandID: "table 7/hand 3"}))
	assert.Equal(t, HandFileName(Result{Index: 4}), HandFileName(Result{Index: 4}))
	assert.NotEqual(t, HandFileName(Result{Index: 4}), HandFileName(Result{Index: 5}))
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}
