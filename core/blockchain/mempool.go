package blockchain

import (
	"sync"
)

// Mempool is the ordered buffer of recorded transactions not yet sealed.
type Mempool struct {
	transactions []Transaction
	mu           sync.Mutex
}

func NewMempool() *Mempool {
	return &Mempool{}
}

func (m *Mempool) AddTx(tx Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, tx)
}

// Drain returns every pending transaction in insertion order and empties the
// buffer.
func (m *Mempool) Drain() []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	txs := m.transactions
	m.transactions = nil
	if txs == nil {
		txs = []Transaction{}
	}
	return txs
}

func (m *Mempool) Snapshot() []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyTransactions(m.transactions)
}

func (m *Mempool) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = nil
}
