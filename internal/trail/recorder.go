package trail

import (
	"fmt"
	"sync"

	"github.com/davidahmann/jtrail/pkg/types"
)

// Recorder owns the trail's mutable head state: the sequence counter
// and the last chain digest. All appends go through one serialized
// entry point; validation stays pure and runs outside the lock.
type Recorder struct {
	mu sync.Mutex

	store  Store
	signer Signer

	seq        int64
	lastDigest string
}

// NewRecorder opens a recorder over a store, replaying existing
// entries to recover the head position. signer may be nil.
func NewRecorder(store Store, signer Signer) (*Recorder, error) {
	entries, err := store.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("replay trail head: %w", err)
	}

	r := &Recorder{store: store, signer: signer}
	if n := len(entries); n > 0 {
		tail := entries[n-1]
		r.seq = tail.Seq
		r.lastDigest = tail.Digest
	}
	return r, nil
}

// Seq returns the sequence number of the most recent entry, 0 when the
// trail is empty.
func (r *Recorder) Seq() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Append assigns the next sequence number, chains the digest, and
// writes the entry. On a failed write the counter and last digest are
// left exactly as they were, so the chain never half-advances.
func (r *Recorder) Append(rec types.Record) (AppendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.seq + 1
	entry, err := MakeEntry(rec, next, r.lastDigest, r.signer)
	if err != nil {
		return AppendResult{}, err
	}

	if err := r.store.Append(entry); err != nil {
		return AppendResult{}, fmt.Errorf("%w: seq %d: %v", ErrStoreWrite, next, err)
	}

	r.seq = next
	r.lastDigest = entry.Digest

	return AppendResult{Seq: entry.Seq, RecordID: entry.RecordID, Digest: entry.Digest}, nil
}

// ReadAll exposes the store's replay surface.
func (r *Recorder) ReadAll() ([]StoredRecord, error) {
	return r.store.ReadAll()
}
