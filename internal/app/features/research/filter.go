// internal/app/features/research/filter.go
package research

import (
	"strings"

	"github.com/natpac/tripcollect/internal/domain/models"
)

// Filter is the pair of predicates the research view applies, combined
// with AND.
type Filter struct {
	Search string // case-insensitive substring of origin OR destination
	Mode   string // exact mode value; "" or "all" disables the predicate
}

func (f Filter) matchesSearch(t models.Trip) bool {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Origin), q) ||
		strings.Contains(strings.ToLower(t.Destination), q)
}

func (f Filter) matchesMode(t models.Trip) bool {
	if f.Mode == "" || f.Mode == "all" {
		return true
	}
	return t.Mode == f.Mode
}

// Apply returns the trips satisfying both predicates, preserving order.
func (f Filter) Apply(trips []models.Trip) []models.Trip {
	out := make([]models.Trip, 0, len(trips))
	for _, t := range trips {
		if f.matchesSearch(t) && f.matchesMode(t) {
			out = append(out, t)
		}
	}
	return out
}

// Stats are derived from the filtered set, not the full one.
type Stats struct {
	TotalTrips    int
	DistinctUsers int
	TopMode       string // empty when the set is empty
}

// ComputeStats derives the research summary. The most-frequent mode breaks
// ties toward the mode seen first in the slice, which makes the result
// deterministic for a stably ordered input.
func ComputeStats(trips []models.Trip) Stats {
	s := Stats{TotalTrips: len(trips)}

	users := map[string]struct{}{}
	counts := map[string]int{}
	var order []string

	for _, t := range trips {
		users[t.UserID.Hex()] = struct{}{}
		if _, seen := counts[t.Mode]; !seen {
			order = append(order, t.Mode)
		}
		counts[t.Mode]++
	}
	s.DistinctUsers = len(users)

	for _, m := range order {
		if s.TopMode == "" || counts[m] > counts[s.TopMode] {
			s.TopMode = m
		}
	}
	return s
}
