package trail

import (
	"fmt"
	"testing"
)

func chainOf(t *testing.T, n int) *InMemoryStore {
	t.Helper()
	store := NewInMemoryStore()
	rec, err := NewRecorder(store, nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	for i := 0; i < n; i++ {
		if _, err := rec.Append(testRecord(fmt.Sprintf("r%d", i+1))); err != nil {
			t.Fatalf("append %d: %v", i+1, err)
		}
	}
	return store
}

func TestVerifyChainUntouched(t *testing.T) {
	store := chainOf(t, 5)

	report, err := VerifyChain(store, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !report.Valid {
		t.Fatalf("expected valid chain: %s", report.Reason)
	}
	if report.Checked != 5 {
		t.Fatalf("expected 5 entries checked, got %d", report.Checked)
	}
	if report.FirstBrokenSeq != nil {
		t.Fatalf("unexpected broken sequence on valid chain")
	}
}

func TestVerifyChainEmptyStore(t *testing.T) {
	report, err := VerifyChain(NewInMemoryStore(), nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !report.Valid || report.Checked != 0 {
		t.Fatalf("expected empty chain to verify, got %+v", report)
	}
}

func TestVerifyChainDetectsMutatedField(t *testing.T) {
	store := chainOf(t, 4)

	// Reach into the store and alter one stored field, the way an
	// attacker editing the log file would.
	store.entries[2].Record.Decision = "block"

	report, err := VerifyChain(store, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.Valid {
		t.Fatalf("expected broken chain")
	}
	if report.FirstBrokenSeq == nil || *report.FirstBrokenSeq != 3 {
		t.Fatalf("expected first broken seq 3, got %+v", report.FirstBrokenSeq)
	}
}

func TestVerifyChainDetectsForgedJudgmentInStore(t *testing.T) {
	store := chainOf(t, 2)
	store.entries[1].Record.Judgment = false

	report, err := VerifyChain(store, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.Valid {
		t.Fatalf("expected broken chain after judgment flip")
	}
	if report.FirstBrokenSeq == nil || *report.FirstBrokenSeq != 2 {
		t.Fatalf("expected first broken seq 2, got %+v", report.FirstBrokenSeq)
	}
}

func TestVerifyChainDetectsRemovedEntry(t *testing.T) {
	store := chainOf(t, 3)
	store.entries = append(store.entries[:1], store.entries[2:]...)

	report, err := VerifyChain(store, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.Valid {
		t.Fatalf("expected broken chain after removal")
	}
	if report.FirstBrokenSeq == nil || *report.FirstBrokenSeq != 2 {
		t.Fatalf("expected first broken seq 2, got %+v", report.FirstBrokenSeq)
	}
}

func TestVerifyChainDetectsRewrittenDigest(t *testing.T) {
	store := chainOf(t, 3)

	// Recompute entry 2 in place with a fabricated prev digest: the
	// entry is self-consistent but no longer links to entry 1.
	forged, err := MakeEntry(store.entries[1].Record, 2, store.entries[1].Digest, nil)
	if err != nil {
		t.Fatalf("forge entry: %v", err)
	}
	store.entries[1] = forged

	report, err := VerifyChain(store, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.Valid {
		t.Fatalf("expected broken chain for relinked entry")
	}
	if report.FirstBrokenSeq == nil || *report.FirstBrokenSeq != 2 {
		t.Fatalf("expected first broken seq 2, got %+v", report.FirstBrokenSeq)
	}
}

func TestVerifyChainDetectsBadSignature(t *testing.T) {
	signer, pub := newTestSigner(t)

	store := NewInMemoryStore()
	rec, err := NewRecorder(store, signer)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if _, err := rec.Append(testRecord("r1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	store.entries[0].Sig[0] ^= 0xff

	report, err := VerifyChain(store, pub)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.Valid {
		t.Fatalf("expected invalid signature to break the chain")
	}
	if report.FirstBrokenSeq == nil || *report.FirstBrokenSeq != 1 {
		t.Fatalf("expected first broken seq 1, got %+v", report.FirstBrokenSeq)
	}
}
