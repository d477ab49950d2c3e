package blockchain

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shu8h0-null/shopledger/core/logger"
)

func newTestSigner(t *testing.T, secret string) *Signer {
	t.Helper()
	s, err := NewSigner([]byte(secret))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

func newTestStore(t *testing.T, signer *Signer, retention int) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(StoreOptions{
		LedgerPath:  filepath.Join(dir, "blockchain.json"),
		BackupDir:   filepath.Join(dir, "chain_backup"),
		CatalogPath: filepath.Join(dir, "backups.db"),
		Retention:   retention,
	}, signer, logger.Discard())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// stepClock returns a clock that advances by one second on every call.
func stepClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

// buildChain seals n blocks, one checkout each, after genesis.
func buildChain(t *testing.T, signer *Signer, n int) *Ledger {
	t.Helper()
	l, err := NewLedger(signer, nil)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	for i := 0; i < n; i++ {
		if _, err := l.Record("alice", ItemsList("Laptop", "Mouse"), int64(1000*(i+1))); err != nil {
			t.Fatalf("Record: %v", err)
		}
		l.Seal(l.LastBlock().Proof + 1)
	}
	return l
}

// legacyChain is a chain as the original shop app wrote it: no signatures,
// items as raw lists or objects, totals as strings or floats.
const legacyChain = `[
  {"index": 1, "timestamp": 1704096000.5, "transactions": [], "proof": 100, "previous_hash": "1"},
  {"index": 2, "timestamp": 1704096060.25, "proof": 101, "previous_hash": "abc",
   "transactions": [{"sender": "User1", "items": ["Kopi"], "total": "25000", "timestamp": 1704096050.0}]},
  {"index": 3, "timestamp": "1704096120", "proof": 102, "previous_hash": "def",
   "transactions": [
     {"sender": "User2", "items": {"Teh": 2}, "total": 12000.0, "timestamp": 1704096100.0},
     {"sender": "User1", "items": "<built-in method items of dict object at 0x7f2a>", "total": 5000}
   ]}
]`
