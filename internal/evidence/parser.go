// Package evidence extracts structured service/operation identifiers from
// free-text log evidence.
//
// Parsing is total: any input, including the empty string, yields a
// ParsedEvidence. An empty ServiceName means no rule matched, which is a
// valid terminal outcome for a record, not an error.
package evidence

import (
	"regexp"
	"strings"
)

// ParsedEvidence is the structured identifier extracted from one evidence
// string. ServiceName is empty when no pattern rule matched.
type ParsedEvidence struct {
	ServiceName string
	Operation   string
	RawMatch    string
}

// Matched reports whether any rule extracted a service name.
func (p ParsedEvidence) Matched() bool {
	return p.ServiceName != ""
}

// rule is one pattern in the ordered rule set. extract maps the regexp
// submatches to a ParsedEvidence.
type rule struct {
	name    string
	re      *regexp.Regexp
	extract func(match []string) ParsedEvidence
}

// Parser applies an ordered set of pattern rules to evidence text.
// Rules are tried in priority order; the first match wins, so more specific
// patterns must precede generic fallbacks.
type Parser struct {
	rules []rule
}

// NewParser creates a parser with the default rule set, most specific first:
//
//  1. "<service>.<Operation>" — dotted service/failure-type labels,
//     e.g. "payment.Timeout" or "checkout.Failure"
//  2. "serviceName=<name>" — pattern-analysis output fields
//  3. "service=<name>" — generic key/value fallback
func NewParser() *Parser {
	return &Parser{
		rules: []rule{
			{
				name: "dotted-label",
				re:   regexp.MustCompile(`^([A-Za-z][\w-]*)\.([A-Za-z]\w*)$`),
				extract: func(m []string) ParsedEvidence {
					return ParsedEvidence{ServiceName: m[1], Operation: m[2], RawMatch: m[0]}
				},
			},
			{
				name: "service-name-field",
				re:   regexp.MustCompile(`serviceName=['"]?([\w-]+)['"]?`),
				extract: func(m []string) ParsedEvidence {
					return ParsedEvidence{ServiceName: m[1], RawMatch: m[0]}
				},
			},
			{
				name: "service-field",
				re:   regexp.MustCompile(`\bservice=['"]?([\w-]+)['"]?`),
				extract: func(m []string) ParsedEvidence {
					return ParsedEvidence{ServiceName: m[1], RawMatch: m[0]}
				},
			},
		},
	}
}

// Parse extracts a service/operation identifier from the evidence text.
// Never fails; returns a zero ParsedEvidence when no rule matches.
func (p *Parser) Parse(evidenceText string) ParsedEvidence {
	text := strings.TrimSpace(evidenceText)
	if text == "" {
		return ParsedEvidence{}
	}

	for _, r := range p.rules {
		if m := r.re.FindStringSubmatch(text); m != nil {
			return r.extract(m)
		}
	}
	return ParsedEvidence{}
}
