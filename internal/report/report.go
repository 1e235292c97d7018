// Package report splits the free-text trajectory report returned by the
// analysis service into labeled blocks for display.
package report

import (
	"strings"
)

// Heading is one of the fixed section titles the service writes
type Heading string

const (
	HeadingNone          Heading = ""
	HeadingOutlook       Heading = "OUTLOOK"
	HeadingNearTerm      Heading = "NEAR TERM (NEXT 2-4 WEEKS)"
	HeadingMidTerm       Heading = "MID TERM (1-3 MONTHS)"
	HeadingLongTerm      Heading = "LONG TERM (3-12 MONTHS)"
	HeadingRisks         Heading = "RISKS"
	HeadingInterventions Heading = "INTERVENTIONS"
)

var headings = []Heading{
	HeadingOutlook,
	HeadingNearTerm,
	HeadingMidTerm,
	HeadingLongTerm,
	HeadingRisks,
	HeadingInterventions,
}

var headingIndex = func() map[string]Heading {
	idx := make(map[string]Heading, len(headings))
	for _, h := range headings {
		idx[string(h)] = h
	}
	return idx
}()

// Headings returns the recognized headings in report order
func Headings() []Heading {
	out := make([]Heading, len(headings))
	copy(out, headings)
	return out
}

// LookupHeading matches a trimmed line against the heading set, ignoring case.
func LookupHeading(line string) (Heading, bool) {
	h, ok := headingIndex[strings.ToUpper(strings.TrimSpace(line))]
	return h, ok
}

// Title returns the heading in the lower-case form used by the views
func (h Heading) Title() string {
	return strings.ToLower(string(h))
}

// Block is one section of the report. Heading is empty for text that
// precedes the first recognized heading.
type Block struct {
	Heading Heading `json:"heading,omitempty" yaml:"heading,omitempty"`
	Text    string  `json:"text" yaml:"text"`
}

// HasHeading reports whether the block is labeled
func (b Block) HasHeading() bool {
	return b.Heading != HeadingNone
}

// Compile splits reportText into blocks. Lines are trimmed and empty lines
// dropped; a line equal to a known heading starts a new block and every other
// line is appended to the current block's text with single spaces. When no
// heading is found the whole report becomes one OUTLOOK block. Compile never
// fails and never returns an empty slice.
func Compile(reportText string) []Block {
	lines := splitLines(reportText)

	var (
		blocks  []Block
		current Block
		body    []string
		open    bool
	)

	seal := func() {
		if open || len(body) > 0 {
			current.Text = strings.Join(body, " ")
			blocks = append(blocks, current)
		}
	}

	sawHeading := false
	for _, line := range lines {
		if h, ok := LookupHeading(line); ok {
			seal()
			current = Block{Heading: h}
			body = nil
			open = true
			sawHeading = true
			continue
		}
		body = append(body, line)
	}
	seal()

	if !sawHeading {
		return []Block{{Heading: HeadingOutlook, Text: strings.Join(lines, " ")}}
	}
	return blocks
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
