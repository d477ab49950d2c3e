package blockchain

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"
)

// Ledger owns the chain of signed blocks and the pending transaction buffer.
// Reads share the lock; Record, Seal and Replace take it exclusively.
type Ledger struct {
	mu      sync.RWMutex
	chain   []Block
	mempool *Mempool
	signer  *Signer
	now     func() time.Time
}

// NewLedger builds a ledger over blocks, which the caller must already have
// validated. An empty slice yields a fresh, signed genesis block.
func NewLedger(signer *Signer, blocks []Block) (*Ledger, error) {
	if signer == nil {
		return nil, errors.New("Signer cannot be nil")
	}

	l := &Ledger{
		mempool: NewMempool(),
		signer:  signer,
		now:     time.Now,
	}
	if len(blocks) == 0 {
		l.chain = []Block{newGenesisBlock(signer, l.now())}
	} else {
		l.chain = cloneBlocks(blocks)
	}
	return l, nil
}

// Record validates and buffers a transaction. It returns the index the next
// sealed block will get.
func (l *Ledger) Record(sender string, items Items, total int64) (int, error) {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return 0, &ValidationError{Field: "sender", Reason: "empty sender"}
	}
	if total < 0 {
		return 0, &ValidationError{Field: "total", Reason: fmt.Sprintf("negative amount %d", total)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.mempool.AddTx(Transaction{
		Sender:    sender,
		Items:     items.Render(),
		Total:     total,
		Timestamp: unixSeconds(l.now()),
	})
	return len(l.chain) + 1, nil
}

// Seal turns the whole pending buffer into a new signed block and appends it.
func (l *Ledger) Seal(proof int64) Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	last := l.chain[len(l.chain)-1]
	b := Block{
		Index:        len(l.chain) + 1,
		Timestamp:    unixSeconds(l.now()),
		Transactions: l.mempool.Drain(),
		Proof:        proof,
		PreviousHash: last.Hash(),
	}
	b.Signature = l.signer.Sign(b)

	l.chain = append(l.chain, b)
	return b.Clone()
}

func (l *Ledger) LastBlock() Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain[len(l.chain)-1].Clone()
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chain)
}

// Blocks returns a deep copy of the chain.
func (l *Ledger) Blocks() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneBlocks(l.chain)
}

func (l *Ledger) Pending() []Transaction {
	return l.mempool.Snapshot()
}

// Verify re-checks the in-memory chain the same way a load does.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return ValidateChain(l.chain, l.signer)
}

// Replace swaps in a whole new chain and drops pending transactions. Callers
// validate blocks first.
func (l *Ledger) Replace(blocks []Block) error {
	if len(blocks) == 0 {
		return errors.New("cannot replace with an empty chain")
	}
	fresh := cloneBlocks(blocks)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.chain = fresh
	l.mempool.Clear()
	return nil
}

// AllTransactions yields every sealed transaction in chain order.
func (l *Ledger) AllTransactions() iter.Seq[Entry] {
	return l.entries(func(Transaction) bool { return true })
}

// TransactionsFor yields the sealed transactions recorded by sender.
func (l *Ledger) TransactionsFor(sender string) iter.Seq[Entry] {
	return l.entries(func(tx Transaction) bool { return tx.Sender == sender })
}

// entries snapshots the chain on every iteration, so sequences can be
// restarted and yield never runs under the lock. Sealed blocks are never
// mutated in place, which makes the snapshot safe to walk unlocked.
func (l *Ledger) entries(keep func(Transaction) bool) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		l.mu.RLock()
		chain := l.chain
		l.mu.RUnlock()

		for _, b := range chain {
			for _, tx := range b.Transactions {
				if !keep(tx) {
					continue
				}
				if !yield(Entry{Transaction: tx, BlockIndex: b.Index}) {
					return
				}
			}
		}
	}
}
