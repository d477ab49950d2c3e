package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shu8h0-null/shopledger/core"
	blkchn "github.com/shu8h0-null/shopledger/core/blockchain"
	"github.com/shu8h0-null/shopledger/core/config"
	"github.com/shu8h0-null/shopledger/core/logger"
	"github.com/shu8h0-null/shopledger/core/rpc"
)

var log = logger.Default()

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Errorf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	dataDir := flag.String("data", cfg.DataDir, "Directory holding the ledger file, backups and catalog")
	addr := flag.String("rpc", cfg.RPCAddr, "Address the JSON-RPC server listens on")
	reset := flag.Bool("reset", cfg.Reset, "Discard the ledger file and start from a fresh genesis block")
	retention := flag.Int("retention", cfg.Retention, "Number of backups to keep")
	keyFile := flag.String("key-file", "", "File holding the signing secret (overrides "+config.EnvSigningKey+")")
	flag.Parse()

	cfg = cfg.WithDataDir(*dataDir)
	cfg.RPCAddr = *addr
	cfg.Reset = *reset
	cfg.Retention = *retention
	if *keyFile != "" {
		key, err := config.LoadSigningKey("", *keyFile)
		if err != nil {
			log.Errorf("Could not read signing key: %v", err)
			os.Exit(1)
		}
		cfg.SigningKey = key
		cfg.InsecureKey = false
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listenForQuitSignal(ctx, cancel)

	node, err := core.Bootstrap(cfg, log)
	if err != nil {
		log.Errorf("Error initialising ledger: %v", err)
		os.Exit(1)
	}

	events := make(chan blkchn.SealedEvent, 16)
	node.Events().OnDrop(func(id string) {
		log.Warnf("Seal event dropped for subscriber %s", id)
	})
	if err := node.Events().Subscribe("daemon", events); err != nil {
		log.Errorf("Error subscribing to seal events: %v", err)
	}
	go logSealEvents(ctx, events)

	go func() {
		log.Infof("JSON-RPC listening on %s", rpc.Endpoint(cfg.RPCAddr))
		if err := rpc.StartRPC(ctx, cfg.RPCAddr, rpc.NewRPCHandler(node)); err != nil {
			log.Errorf("RPC server stopped: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("Cleaning Up...")
	node.Events().UnSubscribe("daemon")
	if err := node.Close(); err != nil {
		log.Errorf("Error closing node: %v", err)
		os.Exit(1)
	}
}

func logSealEvents(ctx context.Context, events <-chan blkchn.SealedEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if ev.Persisted {
				log.Infof("Block:[%d]:[%s] persisted with %d transaction(s)", ev.Index, ev.Signature[:12], ev.Transactions)
			} else {
				log.Warnf("Block:[%d]:[%s] only held in memory", ev.Index, ev.Signature[:12])
			}
		}
	}
}

func listenForQuitSignal(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			log.Infof("Received signal: %s, shutting down...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
}
