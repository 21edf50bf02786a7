//go:build e2e

package e2e

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/davidahmann/jtrail/internal/record"
	"github.com/davidahmann/jtrail/internal/trail"
	"github.com/davidahmann/jtrail/internal/trail/filestore"
	"github.com/davidahmann/jtrail/internal/trail/sqlstore"
	"github.com/davidahmann/jtrail/pkg/types"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func candidate(runID string) types.Candidate {
	return types.Candidate{
		Timestamp:     "2026-01-06T00:00:00Z",
		RunID:         runID,
		Model:         "gpt-4",
		Decision:      strPtr("allow"),
		RiskLevel:     strPtr("low"),
		HumanInLoop:   boolPtr(false),
		PolicyVersion: "v1",
		AppVersion:    "1.0",
		SessionID:     "s1",
		EvaluatedPaths: []types.EvaluatedPath{
			{Outcome: "allow", WasSelected: true},
			{Outcome: "block", WasSelected: false},
		},
	}
}

func TestE2EAcrossBackends(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := filestore.Open(filepath.Join(dir, "trace.jsonl"))
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	sqliteStore, err := sqlstore.OpenSQLite("file:" + filepath.Join(dir, "trail.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer sqliteStore.Close()

	for name, store := range map[string]trail.Store{
		"file":   fileStore,
		"sqlite": sqliteStore,
		"memory": trail.NewInMemoryStore(),
	} {
		recorder, err := trail.NewRecorder(store, nil)
		if err != nil {
			t.Fatalf("%s: recorder: %v", name, err)
		}

		for i := 0; i < 50; i++ {
			validated, err := record.Validate(candidate(fmt.Sprintf("%s-r%d", name, i)))
			if err != nil {
				t.Fatalf("%s: validate: %v", name, err)
			}
			result, err := recorder.Append(validated)
			if err != nil {
				t.Fatalf("%s: append: %v", name, err)
			}
			if result.Seq != int64(i)+1 {
				t.Fatalf("%s: expected seq %d, got %d", name, i+1, result.Seq)
			}
		}

		report, err := trail.VerifyChain(store, nil)
		if err != nil {
			t.Fatalf("%s: verify: %v", name, err)
		}
		if !report.Valid || report.Checked != 50 {
			t.Fatalf("%s: unexpected report: %+v", name, report)
		}
	}
}
