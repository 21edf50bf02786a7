package types

// Record is a validated decision record. Judgment is always derived from
// the evidence during validation, never copied from caller input.
type Record struct {
	Timestamp     string   `json:"timestamp"`
	RunID         string   `json:"runId"`
	Model         string   `json:"model"`
	Decision      string   `json:"decision"`
	RiskLevel     string   `json:"riskLevel"`
	HumanInLoop   bool     `json:"humanInLoop"`
	PolicyVersion string   `json:"policyVersion"`
	AppVersion    string   `json:"appVersion"`
	SessionID     string   `json:"sessionId"`
	Judgment      bool     `json:"judgment"`
	Evidence      Evidence `json:"evidence"`
}

// Evidence carries what the judgment was derived from: either the paths
// the agent evaluated, or the negative proof that a search for candidates
// happened and found none.
type Evidence struct {
	EvaluatedPaths  []EvaluatedPath `json:"evaluatedPaths,omitempty"`
	Searched        *bool           `json:"searched,omitempty"`
	CandidatesFound *int            `json:"candidatesFound,omitempty"`
}

// PathEvidence wraps a non-empty set of evaluated paths.
func PathEvidence(paths []EvaluatedPath) Evidence {
	return Evidence{EvaluatedPaths: paths}
}

// NegativeProof is the evidence recorded when nothing was there to
// evaluate: searched=true, candidatesFound=0.
func NegativeProof() Evidence {
	searched := true
	found := 0
	return Evidence{Searched: &searched, CandidatesFound: &found}
}

// IsNegativeProof reports whether the evidence is the zero-candidate form.
func (e Evidence) IsNegativeProof() bool {
	return len(e.EvaluatedPaths) == 0 && e.Searched != nil && *e.Searched &&
		e.CandidatesFound != nil && *e.CandidatesFound == 0
}
