package blockchain

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func TestNewLedgerGenesis(t *testing.T) {
	signer := newTestSigner(t, "k")
	l, err := NewLedger(signer, nil)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}

	g := l.LastBlock()
	if g.Index != 1 || g.PreviousHash != GenesisPreviousHash || g.Proof != GenesisProof || len(g.Transactions) != 0 {
		t.Fatalf("unexpected genesis block: %+v", g)
	}
	if !signer.Verify(g) {
		t.Fatal("genesis block is not signed")
	}
}

func TestNewLedgerNilSigner(t *testing.T) {
	if _, err := NewLedger(nil, nil); err == nil {
		t.Fatal("expected error for nil signer")
	}
}

func TestRecordValidation(t *testing.T) {
	l := buildChain(t, newTestSigner(t, "k"), 0)

	cases := []struct {
		name   string
		sender string
		total  int64
		field  string
	}{
		{"empty sender", "", 10, "sender"},
		{"blank sender", "   \t", 10, "sender"},
		{"negative total", "bob", -1, "total"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.Record(tc.sender, ItemsText("Mouse"), tc.total)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
			if n := len(l.Pending()); n != 0 {
				t.Fatalf("rejected record changed the buffer: %d pending", n)
			}
		})
	}
}

func TestRecordReturnsNextIndex(t *testing.T) {
	l := buildChain(t, newTestSigner(t, "k"), 2)

	idx, err := l.Record("  carol  ", ItemsText("Keyboard"), 0)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if idx != 4 {
		t.Fatalf("expected next index 4, got %d", idx)
	}
	if p := l.Pending(); len(p) != 1 || p[0].Sender != "carol" {
		t.Fatalf("sender not trimmed: %+v", p)
	}
}

func TestSealDrainsBuffer(t *testing.T) {
	signer := newTestSigner(t, "k")
	l := buildChain(t, signer, 0)
	genesis := l.LastBlock()

	l.Record("a", ItemsText("x"), 1)
	l.Record("b", ItemsText("y"), 2)
	l.Record("c", ItemsText("z"), 3)
	b := l.Seal(101)

	if b.Index != 2 || b.Proof != 101 || b.PreviousHash != genesis.Hash() {
		t.Fatalf("unexpected sealed block: %+v", b)
	}
	var senders []string
	for _, tx := range b.Transactions {
		senders = append(senders, tx.Sender)
	}
	if !slices.Equal(senders, []string{"a", "b", "c"}) {
		t.Fatalf("transactions out of order: %v", senders)
	}
	if len(l.Pending()) != 0 {
		t.Fatal("buffer not drained")
	}
	if err := l.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestSealEmptyBuffer(t *testing.T) {
	l := buildChain(t, newTestSigner(t, "k"), 0)
	b := l.Seal(5)
	if b.Transactions == nil || len(b.Transactions) != 0 {
		t.Fatalf("expected empty non-nil transactions, got %#v", b.Transactions)
	}
}

func TestChainVerifiesAfterManySeals(t *testing.T) {
	l := buildChain(t, newTestSigner(t, "k"), 25)
	if l.Len() != 26 {
		t.Fatalf("expected 26 blocks, got %d", l.Len())
	}
	if err := l.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestBlocksIsACopy(t *testing.T) {
	l := buildChain(t, newTestSigner(t, "k"), 1)
	blocks := l.Blocks()
	blocks[1].Transactions[0].Total = 999999

	if err := l.Verify(); err != nil {
		t.Fatalf("mutating a copy broke the ledger: %v", err)
	}
}

func TestTransactionsFor(t *testing.T) {
	l := buildChain(t, newTestSigner(t, "k"), 0)
	l.Record("alice", ItemsText("a1"), 1)
	l.Seal(101)
	l.Record("bob", ItemsText("b1"), 2)
	l.Record("alice", ItemsText("a2"), 3)
	l.Seal(102)
	l.Record("alice", ItemsText("pending"), 4)

	var got []Entry
	for e := range l.TransactionsFor("alice") {
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sealed entries for alice, got %d", len(got))
	}
	if got[0].Items != "a1" || got[0].BlockIndex != 2 || got[1].Items != "a2" || got[1].BlockIndex != 3 {
		t.Fatalf("unexpected entries: %+v", got)
	}

	// Restartable.
	count := 0
	for range l.TransactionsFor("alice") {
		count++
	}
	if count != 2 {
		t.Fatalf("second iteration yielded %d entries", count)
	}

	count = 0
	for range l.AllTransactions() {
		count++
		break
	}
	if count != 1 {
		t.Fatal("early break not honoured")
	}
}

func TestIterationDuringSeal(t *testing.T) {
	l := buildChain(t, newTestSigner(t, "k"), 3)

	seen := 0
	for range l.AllTransactions() {
		if seen == 0 {
			l.Record("late", ItemsText("x"), 1)
			l.Seal(500)
		}
		seen++
	}
	if seen != 3 {
		t.Fatalf("iteration should see the snapshot taken at start, got %d", seen)
	}
}

func TestReplace(t *testing.T) {
	signer := newTestSigner(t, "k")
	other := buildChain(t, signer, 4).Blocks()

	l := buildChain(t, signer, 1)
	l.Record("pending", ItemsText("x"), 1)
	if err := l.Replace(other); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if l.Len() != 5 || len(l.Pending()) != 0 {
		t.Fatalf("replace did not swap chain and clear buffer: len=%d pending=%d", l.Len(), len(l.Pending()))
	}
	if err := l.Replace(nil); err == nil {
		t.Fatal("expected error replacing with an empty chain")
	}
}

func TestConcurrentRecordSeal(t *testing.T) {
	l := buildChain(t, newTestSigner(t, "k"), 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record("buyer", ItemsText("x"), 1)
			l.Seal(1)
			for range l.AllTransactions() {
			}
		}()
	}
	wg.Wait()

	if l.Len() != 21 {
		t.Fatalf("expected 21 blocks, got %d", l.Len())
	}
	if err := l.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	total := 0
	for range l.AllTransactions() {
		total++
	}
	if total != 20 {
		t.Fatalf("expected 20 sealed transactions, got %d", total)
	}
}
