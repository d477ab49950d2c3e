package rpc

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shu8h0-null/shopledger/core"
	"github.com/shu8h0-null/shopledger/core/blockchain"
	"github.com/shu8h0-null/shopledger/core/config"
	"github.com/shu8h0-null/shopledger/core/logger"
)

func startTestServer(t *testing.T) (*Client, *core.Node) {
	t.Helper()
	cfg := config.Config{
		Retention:  config.DefaultRetention,
		SigningKey: []byte("rpc-test"),
	}.WithDataDir(t.TempDir())

	node, err := core.Bootstrap(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	t.Cleanup(func() { node.Close() })

	srv := httptest.NewServer(NewMux(NewRPCHandler(node)))
	t.Cleanup(srv.Close)

	client, closer, err := Dial(context.Background(), srv.URL+Path)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(closer)
	return client, node
}

func TestEndpoint(t *testing.T) {
	if got := Endpoint("127.0.0.1:8080"); got != "http://127.0.0.1:8080/rpc/v0" {
		t.Fatalf("Endpoint = %q", got)
	}
	if got := Endpoint("https://ledger.example/rpc/v0/"); got != "https://ledger.example/rpc/v0" {
		t.Fatalf("Endpoint = %q", got)
	}
}

func TestCheckoutAndQueries(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	view, err := client.Checkout(ctx, CheckoutRequest{Sender: "alice", Items: []string{"Mouse"}, Total: "15000"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if view.Index != 2 || len(view.Transactions) != 1 || view.Transactions[0].Total != 15000 {
		t.Fatalf("unexpected block view: %+v", view)
	}

	if _, err := client.Checkout(ctx, CheckoutRequest{Sender: "bob", Text: "Laptop, Bag", Total: "25000.0"}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	latest, err := client.Latest(ctx)
	if err != nil || latest.Index != 3 {
		t.Fatalf("Latest: %v (index %d)", err, latest.Index)
	}

	blocks, err := client.Blocks(ctx)
	if err != nil || len(blocks) != 3 {
		t.Fatalf("Blocks: %v (%d)", err, len(blocks))
	}

	raw, err := client.RawBlocks(ctx)
	if err != nil || len(raw) != 3 || raw[2].Signature != latest.Signature {
		t.Fatalf("RawBlocks: %v", err)
	}

	hist, err := client.History(ctx, "alice")
	if err != nil || len(hist) != 1 || hist[0].BlockIndex != 2 {
		t.Fatalf("History: %v %+v", err, hist)
	}

	report, err := client.Transactions(ctx)
	if err != nil || report.Count != 2 || report.Revenue != 40000 {
		t.Fatalf("Transactions: %v %+v", err, report)
	}

	anchor, err := client.Anchor(ctx)
	if err != nil || anchor == "" {
		t.Fatalf("Anchor: %v", err)
	}
}

func TestCheckoutRejectsBadInput(t *testing.T) {
	client, node := startTestServer(t)
	ctx := context.Background()

	for _, req := range []CheckoutRequest{
		{Sender: "alice", Text: "x", Total: "12.5"},
		{Sender: "alice", Text: "x", Total: "-3"},
		{Sender: "  ", Text: "x", Total: "10"},
	} {
		if _, err := client.Checkout(ctx, req); err == nil {
			t.Fatalf("request %+v accepted", req)
		}
	}
	if node.Ledger().Len() != 1 {
		t.Fatal("rejected checkouts changed the chain")
	}
}

func TestAdminRoundTrip(t *testing.T) {
	client, node := startTestServer(t)
	ctx := context.Background()

	if _, err := client.Checkout(ctx, CheckoutRequest{Sender: "alice", Text: "x", Total: "1"}); err != nil {
		t.Fatal(err)
	}
	exported, err := client.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	backups, err := client.Backups(ctx)
	if err != nil || len(backups) != 2 {
		t.Fatalf("Backups: %v (%d)", err, len(backups))
	}
	genesisOnly := backups[len(backups)-1].Name

	data, err := client.DownloadBackup(ctx, genesisOnly)
	if err != nil {
		t.Fatalf("DownloadBackup: %v", err)
	}
	if blocks, err := blockchain.ParseChain(data); err != nil || len(blocks) != 1 {
		t.Fatalf("downloaded backup unusable: %v", err)
	}

	if err := client.Restore(ctx, genesisOnly); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if node.Ledger().Len() != 1 {
		t.Fatal("restore not applied")
	}

	if err := client.Import(ctx, exported); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if node.Ledger().Len() != 2 {
		t.Fatal("import not applied")
	}

	if err := client.Restore(ctx, "../blockchain.json"); err == nil || !strings.Contains(err.Error(), "illegal backup name") {
		t.Fatalf("expected traversal rejection, got %v", err)
	}
	if err := client.Import(ctx, []byte("[]")); err == nil {
		t.Fatal("empty chain imported")
	}
}
