package rpc

import (
	"context"
	"strings"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/shu8h0-null/shopledger/core/blockchain"
	"github.com/shu8h0-null/shopledger/core/explorer"
)

// Client mirrors RPCHandler for jsonrpc.NewClient.
type Client struct {
	Checkout       func(ctx context.Context, req CheckoutRequest) (explorer.BlockView, error)
	Latest         func(ctx context.Context) (explorer.BlockView, error)
	Blocks         func(ctx context.Context) ([]explorer.BlockView, error)
	RawBlocks      func(ctx context.Context) ([]blockchain.Block, error)
	History        func(ctx context.Context, sender string) ([]explorer.HistoryRow, error)
	Transactions   func(ctx context.Context) (explorer.Report, error)
	Anchor         func(ctx context.Context) (string, error)
	Backups        func(ctx context.Context) ([]blockchain.BackupInfo, error)
	Restore        func(ctx context.Context, name string) error
	Import         func(ctx context.Context, data []byte) error
	Export         func(ctx context.Context) ([]byte, error)
	DownloadBackup func(ctx context.Context, name string) ([]byte, error)
}

// Dial connects to a ledger daemon. addr is host:port, or a full endpoint URL
// which is used as is.
func Dial(ctx context.Context, addr string) (*Client, jsonrpc.ClientCloser, error) {
	var client Client
	closer, err := jsonrpc.NewClient(ctx, Endpoint(addr), Namespace, &client, nil)
	if err != nil {
		return nil, nil, err
	}
	return &client, closer, nil
}

func Endpoint(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	return "http://" + addr + Path
}
