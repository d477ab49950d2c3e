package rpc

import (
	"github.com/shu8h0-null/shopledger/core/blockchain"
)

const (
	Namespace = "LedgerRPC"
	Path      = "/rpc/v0"
)

// server is the part of core.Node the RPC surface needs.
type server interface {
	Checkout(sender string, items blockchain.Items, total int64) (blockchain.Block, error)
	Import(data []byte) error
	Restore(name string) error
	Export() ([]byte, error)
	Backups() ([]blockchain.BackupInfo, error)
	BackupData(name string) ([]byte, error)
	Ledger() *blockchain.Ledger
}

// CheckoutRequest carries one purchase. Exactly one of Fields, Items or Text
// describes the items, checked in that order. Total is the amount in the
// smallest currency unit, as text.
type CheckoutRequest struct {
	Sender string            `json:"sender"`
	Items  []string          `json:"items,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Text   string            `json:"text,omitempty"`
	Total  string            `json:"total"`
}

func (r CheckoutRequest) items() blockchain.Items {
	switch {
	case r.Fields != nil:
		return blockchain.ItemsFields(r.Fields)
	case r.Items != nil:
		return blockchain.ItemsList(r.Items...)
	}
	return blockchain.ItemsText(r.Text)
}
