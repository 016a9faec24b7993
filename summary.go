package apcaledger

import (
	"fmt"
	"slices"
	"strings"
)

// Summary counts what a Pipeline run did.
type Summary struct {
	Currency        string
	Batches         int // day batches processed
	Activities      int // activities read from the feed
	MergedFills     int // partial fills merged into their terminal fill
	OrphanFills     int // partial fills left without terminal fill
	AttachedFees    int
	Ignored         int // activities without journal entry
	Entries         map[string]int
	First, Last     string // days of the first and last batch
	ForcedSeparated bool
}

func (s *Summary) entry(kind string) {
	if s.Entries == nil {
		s.Entries = make(map[string]int)
	}
	s.Entries[kind]++
}

// Markdown returns the summary as a markdown document.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("# Activities\n\n")
	if s.Batches == 0 {
		b.WriteString("No activity.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "From %s to %s, %d days with activity, amounts in %s.\n\n", s.First, s.Last, s.Batches, s.Currency)

	b.WriteString("| Entry | Count |\n|:---|---:|\n")
	kinds := make([]string, 0, len(s.Entries))
	for k := range s.Entries {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, "| %s | %d |\n", k, s.Entries[k])
	}

	b.WriteString("\n## Reconciliation\n\n")
	fmt.Fprintf(&b, "- %d activities read\n", s.Activities)
	fmt.Fprintf(&b, "- %d partial fills merged\n", s.MergedFills)
	if s.OrphanFills > 0 {
		fmt.Fprintf(&b, "- %d partial fills without terminal fill on the same day\n", s.OrphanFills)
	}
	if s.ForcedSeparated {
		b.WriteString("- fees kept separate from trades\n")
	} else {
		fmt.Fprintf(&b, "- %d fees attached to trades\n", s.AttachedFees)
	}
	fmt.Fprintf(&b, "- %d activities ignored\n", s.Ignored)
	return b.String()
}
