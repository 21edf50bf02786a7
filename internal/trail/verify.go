package trail

import (
	"crypto/ed25519"
	"fmt"

	"github.com/davidahmann/jtrail/internal/crypto"
)

// VerifyReport is the outcome of replaying a trail's digest chain.
type VerifyReport struct {
	Valid          bool   `json:"valid"`
	FirstBrokenSeq *int64 `json:"firstBrokenSeq,omitempty"`
	Checked        int64  `json:"checked"`
	Reason         string `json:"reason,omitempty"`
}

// VerifyChain replays every stored entry, recomputing record IDs and
// chain digests, and confirms sequence numbers are gapless and each
// entry links to its predecessor. publicKey may be nil to skip
// signature checks on signed trails. The returned error covers store
// I/O only; a broken chain is reported, not errored.
func VerifyChain(store Store, publicKey ed25519.PublicKey) (VerifyReport, error) {
	entries, err := store.ReadAll()
	if err != nil {
		return VerifyReport{}, fmt.Errorf("read trail: %w", err)
	}

	prevDigest := ""
	for i, entry := range entries {
		seq := entry.Seq
		if want := int64(i) + 1; seq != want {
			return broken(want, int64(i), fmt.Sprintf("sequence gap: expected %d, found %d", want, seq)), nil
		}
		if entry.PrevDigest != prevDigest {
			return broken(seq, int64(i), "previous-digest link does not match prior entry"), nil
		}

		body := recordView(entry.Record)
		canonicalBody, err := crypto.Canonicalize(body)
		if err != nil {
			return broken(seq, int64(i), fmt.Sprintf("record not canonicalizable: %v", err)), nil
		}
		if got := crypto.DigestWithPrefix(canonicalBody); got != entry.RecordID {
			return broken(seq, int64(i), "record body does not match its record ID"), nil
		}

		canonicalChain, err := crypto.Canonicalize(chainView(body, seq, prevDigest))
		if err != nil {
			return broken(seq, int64(i), fmt.Sprintf("entry not canonicalizable: %v", err)), nil
		}
		if got := crypto.DigestWithPrefix(canonicalChain); got != entry.Digest {
			return broken(seq, int64(i), "entry digest does not match recomputed digest"), nil
		}

		if publicKey != nil && len(entry.Sig) > 0 {
			ok, err := crypto.VerifyEd25519(publicKey, crypto.DigestBytes(canonicalChain), entry.Sig)
			if err != nil || !ok {
				return broken(seq, int64(i), "entry signature invalid"), nil
			}
		}

		prevDigest = entry.Digest
	}

	return VerifyReport{Valid: true, Checked: int64(len(entries))}, nil
}

func broken(seq, checked int64, reason string) VerifyReport {
	return VerifyReport{Valid: false, FirstBrokenSeq: &seq, Checked: checked, Reason: reason}
}
