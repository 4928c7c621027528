package analysis

// RankedCause is one supported candidate with its evidence count.
type RankedCause struct {
	// Candidate is the caller-supplied root-cause label.
	Candidate string `json:"candidate"`
	// EvidenceCount is the number of log records whose parsed evidence
	// matched this candidate.
	EvidenceCount int `json:"evidenceCount"`
}

// AnalysisResult is the outcome of one analyze call: the supported
// candidates ranked by evidence, plus the raw record counts for downstream
// auditability. Immutable after construction.
type AnalysisResult struct {
	// RootCauses holds the candidates with at least one matching record,
	// ranked descending by evidence count; ties keep the caller's input
	// order.
	RootCauses []RankedCause `json:"rootCauses"`
	// ErrorRecordsExamined is the total number of error-class records
	// retrieved, matched or not.
	ErrorRecordsExamined int `json:"errorRecordsExamined"`
	// LatencyViolations is the number of records exceeding the duration
	// threshold.
	LatencyViolations int `json:"latencyViolations"`
}

// CauseLabels returns just the ranked candidate labels.
func (r *AnalysisResult) CauseLabels() []string {
	labels := make([]string, 0, len(r.RootCauses))
	for _, c := range r.RootCauses {
		labels = append(labels, c.Candidate)
	}
	return labels
}
