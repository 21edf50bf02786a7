// Package trail implements the append-only decision trail: a digest
// chain over validated records where each entry's digest covers the
// record body, its sequence number, and the previous entry's digest,
// so any retroactive edit is detectable on replay.
package trail

import (
	"fmt"

	"github.com/davidahmann/jtrail/internal/crypto"
	"github.com/davidahmann/jtrail/pkg/types"
)

const RecordSchema = "jtrail.record.v0.1"

// Signer optionally countersigns each entry's chain digest.
type Signer interface {
	KeyID() string
	SignEd25519(message []byte) ([]byte, error)
}

// StoredRecord is one immutable trail entry.
type StoredRecord struct {
	Seq        int64        `json:"seq"`
	RecordID   string       `json:"recordId"`
	Record     types.Record `json:"record"`
	PrevDigest string       `json:"prevDigest,omitempty"`
	Digest     string       `json:"digest"`
	KeyID      string       `json:"keyId,omitempty"`
	Sig        []byte       `json:"sig,omitempty"`
}

// AppendResult is what a caller gets back for one accepted record.
type AppendResult struct {
	Seq      int64  `json:"seq"`
	RecordID string `json:"recordId"`
	Digest   string `json:"digest"`
}

// MakeEntry canonicalizes and hashes a validated record into a chain
// entry at the given position. signer may be nil for unsigned trails.
func MakeEntry(rec types.Record, seq int64, prevDigest string, signer Signer) (StoredRecord, error) {
	if seq < 1 {
		return StoredRecord{}, fmt.Errorf("invalid sequence number: %d", seq)
	}

	body := recordView(rec)

	canonicalBody, err := crypto.Canonicalize(body)
	if err != nil {
		return StoredRecord{}, err
	}
	recordID := crypto.DigestWithPrefix(canonicalBody)

	canonicalChain, err := crypto.Canonicalize(chainView(body, seq, prevDigest))
	if err != nil {
		return StoredRecord{}, err
	}
	digest := crypto.DigestWithPrefix(canonicalChain)

	entry := StoredRecord{
		Seq:        seq,
		RecordID:   recordID,
		Record:     rec,
		PrevDigest: prevDigest,
		Digest:     digest,
	}

	if signer != nil {
		sig, err := signer.SignEd25519(crypto.DigestBytes(canonicalChain))
		if err != nil {
			return StoredRecord{}, err
		}
		entry.KeyID = signer.KeyID()
		entry.Sig = sig
	}

	return entry, nil
}

func recordView(rec types.Record) map[string]any {
	return map[string]any{
		"schema":        RecordSchema,
		"timestamp":     rec.Timestamp,
		"runId":         rec.RunID,
		"model":         rec.Model,
		"decision":      rec.Decision,
		"riskLevel":     rec.RiskLevel,
		"humanInLoop":   rec.HumanInLoop,
		"policyVersion": rec.PolicyVersion,
		"appVersion":    rec.AppVersion,
		"sessionId":     rec.SessionID,
		"judgment":      rec.Judgment,
		"evidence":      evidenceView(rec.Evidence),
	}
}

func chainView(body map[string]any, seq int64, prevDigest string) map[string]any {
	view := map[string]any{
		"record": body,
		"seq":    seq,
	}
	if prevDigest != "" {
		view["prevDigest"] = prevDigest
	}
	return view
}

func evidenceView(e types.Evidence) map[string]any {
	if len(e.EvaluatedPaths) > 0 {
		paths := make([]any, 0, len(e.EvaluatedPaths))
		for _, p := range e.EvaluatedPaths {
			paths = append(paths, map[string]any{
				"outcome":     p.Outcome,
				"wasSelected": p.WasSelected,
			})
		}
		return map[string]any{"evaluatedPaths": paths}
	}

	view := map[string]any{}
	if e.Searched != nil {
		view["searched"] = *e.Searched
	}
	if e.CandidatesFound != nil {
		view["candidatesFound"] = *e.CandidatesFound
	}
	return view
}
