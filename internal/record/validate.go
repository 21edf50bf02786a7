// Package record validates raw decision candidates and derives the
// judgment flag from evaluation evidence. Judgment cannot be asserted
// by a caller, only demonstrated: a candidate claiming a judgment value
// inconsistent with its own evidence is rejected outright.
package record

import (
	"fmt"
	"time"

	"github.com/davidahmann/jtrail/pkg/types"
)

// Validate checks a candidate against the required-field schema,
// derives judgment from the evaluated paths, and returns the validated
// record ready for appending. Pure function of its input; validation
// failures never reach a store.
func Validate(c types.Candidate) (types.Record, error) {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"timestamp", c.Timestamp},
		{"runId", c.RunID},
		{"model", c.Model},
		{"policyVersion", c.PolicyVersion},
		{"appVersion", c.AppVersion},
		{"sessionId", c.SessionID},
	} {
		if f.value == "" {
			return types.Record{}, missingField(f.name)
		}
	}
	if c.Decision == nil {
		return types.Record{}, missingField("decision")
	}
	if c.RiskLevel == nil {
		return types.Record{}, missingField("riskLevel")
	}
	if c.HumanInLoop == nil {
		return types.Record{}, missingField("humanInLoop")
	}

	// Open vocabulary: any non-empty string is an acceptable decision or
	// risk level, but an empty one is an invalid value rather than a
	// missing field once the key is present.
	if *c.Decision == "" {
		return types.Record{}, invalidValue("decision", "must be a non-empty string")
	}
	if *c.RiskLevel == "" {
		return types.Record{}, invalidValue("riskLevel", "must be a non-empty string")
	}

	if err := checkTimestamp(c.Timestamp); err != nil {
		return types.Record{}, err
	}

	derived := DeriveJudgment(c.EvaluatedPaths)
	if c.Judgment != nil && *c.Judgment != derived {
		return types.Record{}, &ValidationError{
			Code:  CodeJudgmentIntegrityViolation,
			Field: "judgment",
			Reason: fmt.Sprintf("caller asserted judgment=%t but evaluated paths derive judgment=%t",
				*c.Judgment, derived),
		}
	}

	evidence := types.NegativeProof()
	if len(c.EvaluatedPaths) > 0 {
		evidence = types.PathEvidence(c.EvaluatedPaths)
	}

	return types.Record{
		Timestamp:     c.Timestamp,
		RunID:         c.RunID,
		Model:         c.Model,
		Decision:      *c.Decision,
		RiskLevel:     *c.RiskLevel,
		HumanInLoop:   *c.HumanInLoop,
		PolicyVersion: c.PolicyVersion,
		AppVersion:    c.AppVersion,
		SessionID:     c.SessionID,
		Judgment:      derived,
		Evidence:      evidence,
	}, nil
}

func checkTimestamp(ts string) error {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return &ValidationError{
			Code:   CodeInvalidTimestamp,
			Field:  "timestamp",
			Reason: fmt.Sprintf("not a valid RFC3339 instant: %v", err),
		}
	}
	if _, offset := parsed.Zone(); offset != 0 {
		return &ValidationError{
			Code:   CodeInvalidTimestamp,
			Field:  "timestamp",
			Reason: "must be a UTC instant",
		}
	}
	return nil
}
