package blockchain

import "fmt"

// RepairReport lists what Repair changed. Each slice holds 1-based block
// indices after renumbering.
type RepairReport struct {
	Reindexed     []int
	Relinked      []int
	Resigned      []int
	SanitizedTxns int
}

func (r RepairReport) Changed() bool {
	return len(r.Reindexed) > 0 || len(r.Relinked) > 0 || len(r.Resigned) > 0 || r.SanitizedTxns > 0
}

func (r RepairReport) String() string {
	return fmt.Sprintf("reindexed=%d relinked=%d resigned=%d sanitized_items=%d",
		len(r.Reindexed), len(r.Relinked), len(r.Resigned), r.SanitizedTxns)
}

// Repair rewrites a damaged chain into one that passes ValidateChain under
// signer: indices are renumbered, item summaries with leaked object
// representations are replaced, previous_hash links are rebuilt, and every
// block whose signature no longer verifies is signed again. The input is not
// modified.
//
// Re-signing vouches for whatever content the file holds, so it is an
// operator action, never part of load.
func Repair(blocks []Block, signer *Signer) ([]Block, RepairReport) {
	var report RepairReport
	out := cloneBlocks(blocks)

	for i := range out {
		b := &out[i]
		pos := i + 1

		if b.Index != pos {
			b.Index = pos
			report.Reindexed = append(report.Reindexed, pos)
		}

		if b.Transactions == nil {
			b.Transactions = []Transaction{}
		}
		for j := range b.Transactions {
			clean := SanitizeItems(b.Transactions[j].Items)
			if clean != b.Transactions[j].Items {
				b.Transactions[j].Items = clean
				report.SanitizedTxns++
			}
		}

		want := GenesisPreviousHash
		if i > 0 {
			want = out[i-1].Hash()
		}
		if b.PreviousHash != want {
			b.PreviousHash = want
			report.Relinked = append(report.Relinked, pos)
		}

		if !signer.Verify(*b) {
			b.Signature = signer.Sign(*b)
			report.Resigned = append(report.Resigned, pos)
		}
	}

	return out, report
}
