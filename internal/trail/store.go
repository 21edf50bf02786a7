package trail

import "errors"

var (
	// ErrStoreWrite wraps persistence failures during append. An append
	// that fails with it never advances the sequence counter.
	ErrStoreWrite = errors.New("store write failure")

	// ErrSequenceGap is returned by stores handed an entry whose
	// sequence number does not follow the current tail.
	ErrSequenceGap = errors.New("entry sequence out of order")
)

// Store persists trail entries in arrival order. Implementations are
// append-only: there are no update or delete operations, and Append
// writes one entry as an atomic unit so a concurrent reader never
// observes a partial record.
type Store interface {
	Append(entry StoredRecord) error

	// ReadAll returns every stored entry in sequence order. Each call
	// re-reads from the start of the store.
	ReadAll() ([]StoredRecord, error)
}
