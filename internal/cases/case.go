// Package cases implements the batch driver: reading problem cases from a
// JSONL file, running one analysis per case, and writing one result line per
// case.
package cases

import "strings"

// Case is one problem to analyze, read from a JSONL input file.
type Case struct {
	ProblemID           string   `json:"problem_id"`
	TimeRange           string   `json:"time_range"`
	CandidateRootCauses []string `json:"candidate_root_causes"`
	AlarmRules          []string `json:"alarm_rules"`
}

// Result is the per-case output line.
type Result struct {
	ProblemID            string       `json:"problem_id"`
	RootCauses           []string     `json:"root_causes"`
	AnalysisType         AnalysisType `json:"analysis_type"`
	ErrorRecordsExamined int          `json:"error_records_examined"`
	LatencyViolations    int          `json:"latency_violations"`
}

// AnalysisType classifies what kind of alarm triggered a case. It is
// recorded for auditability; both collectors run regardless.
type AnalysisType string

const (
	AnalysisTypeError   AnalysisType = "error"
	AnalysisTypeLatency AnalysisType = "latency"
)

var (
	errorIndicators   = []string{"error", "failure", "exception", "status"}
	latencyIndicators = []string{"rt", "latency", "response", "duration", "time"}
)

// DetermineAnalysisType classifies a case by its alarm rule names. Error
// indicators win over latency indicators; cases with neither default to
// error analysis.
func DetermineAnalysisType(alarmRules []string) AnalysisType {
	for _, rule := range alarmRules {
		lowered := strings.ToLower(rule)
		for _, indicator := range errorIndicators {
			if strings.Contains(lowered, indicator) {
				return AnalysisTypeError
			}
		}
	}
	for _, rule := range alarmRules {
		lowered := strings.ToLower(rule)
		for _, indicator := range latencyIndicators {
			if strings.Contains(lowered, indicator) {
				return AnalysisTypeLatency
			}
		}
	}
	return AnalysisTypeError
}
