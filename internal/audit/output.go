package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/lox/handcheck/internal/fileutil"
	"github.com/lox/handcheck/internal/phh"
)

// handFileNamespace scopes the placeholder names of hands without an id.
var handFileNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://handcheck.dev/hands"))

// Report is the per-run report artifact.
type Report struct {
	TotalHands int           `json:"total_hands"`
	Hands      []ReportEntry `json:"hands"`
}

// ReportEntry lists the problems left on one hand.
type ReportEntry struct {
	HandIndex int      `json:"hand_index"`
	HandID    string   `json:"hand_id"`
	Issues    []string `json:"issues"`
}

// NewReport builds the report for a run.
func NewReport(results []Result) Report {
	r := Report{TotalHands: len(results), Hands: make([]ReportEntry, 0, len(results))}
	for _, res := range results {
		r.Hands = append(r.Hands, ReportEntry{
			HandIndex: res.Index,
			HandID:    res.HandID,
			Issues:    res.Issues.Strings(),
		})
	}
	return r
}

// WithIssues counts hands that still have problems.
func (r Report) WithIssues() int {
	n := 0
	for _, h := range r.Hands {
		if len(h.Issues) > 0 {
			n++
		}
	}
	return n
}

// Fixed is the combined output of a fix run.
type Fixed struct {
	Hands []json.RawMessage `json:"hands"`
}

// NewFixed collects the output form of every hand: the repaired hand, or the input
// unchanged when it could not be decoded.
func NewFixed(results []Result) (Fixed, error) {
	f := Fixed{Hands: make([]json.RawMessage, 0, len(results))}
	for _, res := range results {
		data, err := res.JSON()
		if err != nil {
			return Fixed{}, err
		}
		f.Hands = append(f.Hands, data)
	}
	return f, nil
}

// JSON is the output encoding of a result's hand.
func (r Result) JSON() (json.RawMessage, error) {
	if !r.Decoded {
		return r.Raw, nil
	}
	data, err := json.Marshal(r.Hand)
	if err != nil {
		return nil, fmt.Errorf("encode hand %d: %w", r.Index, err)
	}
	return data, nil
}

// WriteReport writes the report to path.
func WriteReport(path string, report Report) error {
	return fileutil.WriteJSONAtomic(path, report, 0o644)
}

// WriteFixed writes the combined fixed output to path.
func WriteFixed(path string, results []Result) error {
	fixed, err := NewFixed(results)
	if err != nil {
		return err
	}
	return fileutil.WriteJSONAtomic(path, fixed, 0o644)
}

// WriteHandFiles writes one file per hand into dir and returns the paths written.
func WriteHandFiles(dir string, results []Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	used := make(map[string]bool, len(results))
	paths := make([]string, 0, len(results))
	for _, res := range results {
		name := uniqueName(HandFileName(res), res.Index, used)
		used[name] = true

		data, err := res.JSON()
		if err != nil {
			return paths, err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			// undecoded input is written as it was read
			buf.Reset()
			buf.Write(data)
		}
		buf.WriteByte('\n')

		path := filepath.Join(dir, name)
		if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// uniqueName suffixes a taken name with the hand index, then with a counter, until it
// is free.
func uniqueName(name string, index int, used map[string]bool) string {
	base := strings.TrimSuffix(name, ".json")
	for n := 1; used[name]; n++ {
		name = base + "-" + strconv.Itoa(index) + ".json"
		if n > 1 {
			name = base + "-" + strconv.Itoa(index) + "-" + strconv.Itoa(n) + ".json"
		}
	}
	return name
}

// HandFileName names a hand's file after its id, or a placeholder derived from the
// hand's index when it has none.
func HandFileName(res Result) string {
	id := sanitize(res.HandID)
	if id == "" {
		id = "hand-" + uuid.NewSHA1(handFileNamespace, []byte(strconv.Itoa(res.Index))).String()
	}
	return id + ".json"
}

func sanitize(id string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, strings.TrimSpace(id))
	return strings.Trim(clean, ".")
}

// WritePHH writes every decoded hand as one PHH session, carrying its remaining issues.
func WritePHH(path string, results []Result) error {
	hands := make([]*phh.HandHistory, 0, len(results))
	for _, res := range results {
		if !res.Decoded {
			continue
		}
		hands = append(hands, phh.FromHand(res.Hand, res.Issues.Strings()))
	}
	var buf bytes.Buffer
	if err := phh.EncodeSession(&buf, hands); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
