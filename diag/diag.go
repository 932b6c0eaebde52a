// Package diag implements the recoverable side of the error taxonomy (§7):
// a diagnostic accumulator that merge and the notation registry push into
// instead of aborting, plus a "did you mean" suggestion helper for
// unknown-name diagnostics.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mm0-org/mmb/ident"
)

// Related is a secondary source location attached to a Diagnostic, e.g. the
// site of a prior conflicting declaration.
type Related struct {
	Span ident.Span
	Note string
}

// Diagnostic is a single recoverable error: it carries enough information to
// render the "X declared here, Y declared here" shape the registry and
// merge engine produce throughout §4.3/§4.4.
type Diagnostic struct {
	Message    string
	Related    []Related
	Suggestion string // non-empty when a fuzzy-matched existing name was found
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Message)
	if d.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", d.Suggestion)
	}
	for _, r := range d.Related {
		fmt.Fprintf(&b, "\n  %s: %s", r.Span, r.Note)
	}
	return b.String()
}

// List accumulates recoverable diagnostics across a merge or a batch of
// registry insertions. A non-empty List does not by itself mean the calling
// operation failed — callers decide whether accumulated diagnostics are
// fatal for their purposes.
type List struct {
	items []Diagnostic
}

// Push appends d to the list.
func (l *List) Push(d Diagnostic) { l.items = append(l.items, d) }

// Items returns the accumulated diagnostics in push order.
func (l *List) Items() []Diagnostic { return l.items }

// Empty reports whether no diagnostics were pushed.
func (l *List) Empty() bool { return len(l.items) == 0 }

// Len returns the number of accumulated diagnostics.
func (l *List) Len() int { return len(l.items) }

// Suggest returns the closest name to target among candidates using fuzzy
// ranking, or "" if nothing is close enough to be useful. Used by callers
// building a Diagnostic for an unknown- or conflicting-identifier error.
func Suggest(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	// Match in both directions, so a candidate that target contains (a
	// typo with extra characters) ranks alongside one that contains target.
	ranks := fuzzy.RankFindFold(target, candidates)
	for _, c := range candidates {
		if d := fuzzy.RankMatchFold(c, target); d >= 0 {
			ranks = append(ranks, fuzzy.Rank{Source: c, Target: c, Distance: d})
		}
	}
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	best := ranks[0]
	if best.Distance > len(target)/2+2 {
		// Too far from target to be a useful suggestion.
		return ""
	}
	return best.Target
}
