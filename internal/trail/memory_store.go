package trail

import (
	"fmt"
	"sync"
)

// InMemoryStore keeps the trail in process memory. Useful for tests
// and for callers that only need tamper evidence within one run.
type InMemoryStore struct {
	mu      sync.Mutex
	entries []StoredRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(entry StoredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if want := int64(len(s.entries)) + 1; entry.Seq != want {
		return fmt.Errorf("%w: expected %d, got %d", ErrSequenceGap, want, entry.Seq)
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ReadAll() ([]StoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]StoredRecord, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
