package analysis

import (
	"sort"
	"strings"

	"github.com/moolen/culprit/internal/evidence"
)

// dedupeCandidates removes duplicate labels while preserving the caller's
// input order, which is the ranking tie-break.
func dedupeCandidates(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	deduped := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		deduped = append(deduped, c)
	}
	return deduped
}

// candidateMatches reports whether a parsed service supports the candidate
// label. Bare labels match the service name exactly, case-sensitively.
// Dotted labels of the form "service.FailureType" match on their service
// prefix, the normalized form candidate catalogs encode.
func candidateMatches(candidate, serviceName string) bool {
	if serviceName == "" {
		return false
	}
	if candidate == serviceName {
		return true
	}
	if prefix, _, ok := strings.Cut(candidate, "."); ok {
		return prefix == serviceName
	}
	return false
}

// rankCandidates counts, per candidate, the parsed evidence supporting it
// and returns the supported candidates ranked descending by count.
//
// Each record counts toward exactly one candidate: the first in input order
// that its service matches. Candidates with zero evidence are excluded.
// The sort is stable, so ties keep the input order; the ranking is fully
// deterministic for identical inputs.
func rankCandidates(candidates []string, parsed []evidence.ParsedEvidence) []RankedCause {
	counts := make(map[string]int, len(candidates))
	for _, ev := range parsed {
		if !ev.Matched() {
			continue
		}
		for _, candidate := range candidates {
			if candidateMatches(candidate, ev.ServiceName) {
				counts[candidate]++
				break
			}
		}
	}

	ranked := make([]RankedCause, 0, len(counts))
	for _, candidate := range candidates {
		if count := counts[candidate]; count > 0 {
			ranked = append(ranked, RankedCause{Candidate: candidate, EvidenceCount: count})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EvidenceCount > ranked[j].EvidenceCount
	})
	return ranked
}
