package rpc

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/shu8h0-null/shopledger/core/blockchain"
	"github.com/shu8h0-null/shopledger/core/explorer"
)

type RPCHandler struct {
	rpcServer server
	explorer  *explorer.Explorer
}

func NewRPCHandler(s server) *RPCHandler {
	return &RPCHandler{
		rpcServer: s,
		explorer:  explorer.New(s.Ledger()),
	}
}

func (h *RPCHandler) Checkout(ctx context.Context, req CheckoutRequest) (explorer.BlockView, error) {
	total, err := blockchain.ParseTotal(req.Total)
	if err != nil {
		return explorer.BlockView{}, err
	}
	block, err := h.rpcServer.Checkout(req.Sender, req.items(), total)
	if err != nil {
		return explorer.BlockView{}, err
	}
	return explorer.View(block), nil
}

func (h *RPCHandler) Latest(ctx context.Context) (explorer.BlockView, error) {
	return h.explorer.Latest(), nil
}

func (h *RPCHandler) Blocks(ctx context.Context) ([]explorer.BlockView, error) {
	return h.explorer.Blocks(), nil
}

// RawBlocks returns the blocks exactly as stored.
func (h *RPCHandler) RawBlocks(ctx context.Context) ([]blockchain.Block, error) {
	return h.rpcServer.Ledger().Blocks(), nil
}

func (h *RPCHandler) History(ctx context.Context, sender string) ([]explorer.HistoryRow, error) {
	return h.explorer.History(sender), nil
}

func (h *RPCHandler) Transactions(ctx context.Context) (explorer.Report, error) {
	return h.explorer.Transactions(), nil
}

func (h *RPCHandler) Anchor(ctx context.Context) (string, error) {
	return h.explorer.Anchor(), nil
}

func (h *RPCHandler) Backups(ctx context.Context) ([]blockchain.BackupInfo, error) {
	backups, err := h.rpcServer.Backups()
	if backups == nil {
		backups = []blockchain.BackupInfo{}
	}
	return backups, err
}

func (h *RPCHandler) Restore(ctx context.Context, name string) error {
	return h.rpcServer.Restore(name)
}

func (h *RPCHandler) Import(ctx context.Context, data []byte) error {
	return h.rpcServer.Import(data)
}

func (h *RPCHandler) Export(ctx context.Context) ([]byte, error) {
	return h.rpcServer.Export()
}

func (h *RPCHandler) DownloadBackup(ctx context.Context, name string) ([]byte, error) {
	return h.rpcServer.BackupData(name)
}

// NewMux serves handler under Path.
func NewMux(handler *RPCHandler) *http.ServeMux {
	mux := http.NewServeMux()
	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(Namespace, handler)
	mux.Handle(Path, rpcServer)
	return mux
}

// StartRPC serves handler on addr until ctx is cancelled.
func StartRPC(ctx context.Context, addr string, handler *RPCHandler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
