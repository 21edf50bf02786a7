package trail

import (
	"errors"
	"fmt"
	"testing"
)

type failingStore struct {
	*InMemoryStore
	failNext bool
}

func (s *failingStore) Append(entry StoredRecord) error {
	if s.failNext {
		s.failNext = false
		return fmt.Errorf("disk full")
	}
	return s.InMemoryStore.Append(entry)
}

func TestRecorderAppendMonotonicSequence(t *testing.T) {
	rec, err := NewRecorder(NewInMemoryStore(), nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	first, err := rec.Append(testRecord("r1"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := rec.Append(testRecord("r2"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if first.Seq != 1 || second.Seq != first.Seq+1 {
		t.Fatalf("unexpected sequence numbers: %d then %d", first.Seq, second.Seq)
	}

	entries, err := rec.ReadAll()
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].PrevDigest != entries[0].Digest {
		t.Fatalf("second entry does not link to the first")
	}
}

func TestRecorderFailedAppendDoesNotAdvance(t *testing.T) {
	store := &failingStore{InMemoryStore: NewInMemoryStore(), failNext: true}
	rec, err := NewRecorder(store, nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	if _, err := rec.Append(testRecord("r1")); !errors.Is(err, ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite, got %v", err)
	}
	if rec.Seq() != 0 {
		t.Fatalf("sequence advanced on failed append")
	}

	result, err := rec.Append(testRecord("r1"))
	if err != nil {
		t.Fatalf("append after failure: %v", err)
	}
	if result.Seq != 1 {
		t.Fatalf("expected retry to land at seq 1, got %d", result.Seq)
	}

	report, err := VerifyChain(store, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !report.Valid {
		t.Fatalf("chain broken after failed append: %s", report.Reason)
	}
}

func TestRecorderRecoversHeadOnReopen(t *testing.T) {
	store := NewInMemoryStore()

	rec, err := NewRecorder(store, nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if _, err := rec.Append(testRecord("r1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := rec.Append(stopRecord("r2")); err != nil {
		t.Fatalf("append: %v", err)
	}

	reopened, err := NewRecorder(store, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	result, err := reopened.Append(testRecord("r3"))
	if err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if result.Seq != 3 {
		t.Fatalf("expected seq 3 after reopen, got %d", result.Seq)
	}

	report, err := VerifyChain(store, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !report.Valid {
		t.Fatalf("chain broken across reopen: %s", report.Reason)
	}
}

func TestRecorderConcurrentAppends(t *testing.T) {
	rec, err := NewRecorder(NewInMemoryStore(), nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	const writers = 8
	const each = 25
	done := make(chan error, writers)
	for w := 0; w < writers; w++ {
		go func(w int) {
			for i := 0; i < each; i++ {
				if _, err := rec.Append(testRecord(fmt.Sprintf("r-%d-%d", w, i))); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}(w)
	}
	for w := 0; w < writers; w++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent append: %v", err)
		}
	}

	entries, err := rec.ReadAll()
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	if len(entries) != writers*each {
		t.Fatalf("expected %d entries, got %d", writers*each, len(entries))
	}
	for i, e := range entries {
		if e.Seq != int64(i)+1 {
			t.Fatalf("gap at position %d: seq %d", i, e.Seq)
		}
	}
}

func TestReadAllIdempotent(t *testing.T) {
	rec, err := NewRecorder(NewInMemoryStore(), nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if _, err := rec.Append(testRecord("r1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	first, err := rec.ReadAll()
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	second, err := rec.ReadAll()
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("readall not idempotent: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Digest != second[i].Digest || first[i].Seq != second[i].Seq {
			t.Fatalf("readall results differ at %d", i)
		}
	}
}
