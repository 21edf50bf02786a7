package types

// Candidate is one raw decision observation as submitted by a caller,
// before validation. Fields whose absence must be distinguishable from
// their zero value are pointers: a nil Decision is a missing field while
// an empty one is an invalid value, and a nil Judgment is no assertion
// at all rather than an assertion of false.
type Candidate struct {
	Timestamp      string          `json:"timestamp"`
	RunID          string          `json:"runId"`
	Model          string          `json:"model"`
	Decision       *string         `json:"decision"`
	RiskLevel      *string         `json:"riskLevel"`
	HumanInLoop    *bool           `json:"humanInLoop"`
	PolicyVersion  string          `json:"policyVersion"`
	AppVersion     string          `json:"appVersion"`
	SessionID      string          `json:"sessionId"`
	EvaluatedPaths []EvaluatedPath `json:"evaluatedPaths,omitempty"`
	Judgment       *bool           `json:"judgment,omitempty"`
}

// EvaluatedPath is one outcome the agent considered before deciding.
type EvaluatedPath struct {
	Outcome     string `json:"outcome"`
	WasSelected bool   `json:"wasSelected"`
}
