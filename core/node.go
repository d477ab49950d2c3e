package core

import (
	"errors"
	"fmt"

	blkchn "github.com/shu8h0-null/shopledger/core/blockchain"
	"github.com/shu8h0-null/shopledger/core/config"
	"github.com/shu8h0-null/shopledger/core/logger"
)

// Node is the application handle around one ledger: the chain in memory, the
// store behind it and the signer both share. Collaborators get a *Node, never
// a package-level ledger.
type Node struct {
	chainState *blkchn.ChainState
	store      *blkchn.Store
	signer     *blkchn.Signer
	log        *logger.Logger
}

func NewNode(cs *blkchn.ChainState, signer *blkchn.Signer, log *logger.Logger) (*Node, error) {
	if cs == nil {
		return nil, errors.New("Chainstate cannot be nil")
	}
	if signer == nil {
		return nil, errors.New("Signer cannot be nil")
	}
	if log == nil {
		log = logger.Default()
	}

	return &Node{
		chainState: cs,
		store:      cs.Store(),
		signer:     signer,
		log:        log,
	}, nil
}

// Bootstrap loads the ledger described by cfg, falling back to the newest
// usable backup and finally to a fresh genesis block. Running it twice on the
// state it leaves behind loads the same chain.
func Bootstrap(cfg config.Config, log *logger.Logger) (*Node, error) {
	if log == nil {
		log = logger.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to start: %w", err)
	}
	if cfg.InsecureKey {
		log.Errorf("Using the built-in development signing key. Blocks signed now can be forged by anyone; set %s before going live", config.EnvSigningKey)
	}

	signer, err := blkchn.NewSigner(cfg.SigningKey)
	if err != nil {
		return nil, err
	}

	store, err := blkchn.NewStore(blkchn.StoreOptions{
		LedgerPath:  cfg.LedgerFile,
		BackupDir:   cfg.BackupDir,
		CatalogPath: cfg.CatalogFile,
		Retention:   cfg.Retention,
	}, signer, log)
	if err != nil {
		return nil, fmt.Errorf("Could not initialise store: %w", err)
	}

	blocks, persist, err := initialChain(cfg.Reset, store, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	ledger, err := blkchn.NewLedger(signer, blocks)
	if err != nil {
		store.Close()
		return nil, err
	}
	if persist {
		if err := store.Save(ledger.Blocks()); err != nil {
			log.Errorf("Fresh ledger could not be persisted, continuing in memory: %v", err)
		}
	}

	cs, err := blkchn.NewChainState(ledger, store, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("Error creating new chainstate: %w", err)
	}

	n, err := NewNode(cs, signer, log)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Infof("Ledger ready with %d block(s) at %s", ledger.Len(), store.LedgerPath())
	return n, nil
}

// initialChain decides what the ledger starts from. A nil slice means a fresh
// genesis block; persist reports whether the result still has to be written.
func initialChain(reset bool, store *blkchn.Store, log *logger.Logger) (blocks []blkchn.Block, persist bool, err error) {
	if reset {
		if err := store.RemoveLedger(); err != nil {
			return nil, false, err
		}
		log.Warn("Ledger reset requested, starting from a fresh genesis block")
		return nil, true, nil
	}

	res := store.Load()
	switch res.Status {
	case blkchn.LoadOK:
		return res.Blocks, false, nil
	case blkchn.LoadNotFound:
		log.Info("No ledger file found, creating genesis block")
		return nil, true, nil
	case blkchn.LoadUnreadable:
		return nil, false, fmt.Errorf("refusing to start, ledger file left untouched: %w", res.ReadErr)
	}

	log.Warnf("Ledger file failed validation: %v", res.Corruption)
	if recovered, ok := store.Recover(); ok {
		return recovered, false, nil
	}
	log.Warn("Starting from a fresh genesis block")
	return nil, true, nil
}

// Checkout appends one transaction in its own sealed block and persists it.
func (n *Node) Checkout(sender string, items blkchn.Items, total int64) (blkchn.Block, error) {
	return n.chainState.Checkout(sender, items, total)
}

// Import replaces the chain with data after full validation against this
// node's signer. A rejected import leaves the live chain untouched.
func (n *Node) Import(data []byte) error {
	blocks, err := n.store.Validate(data)
	if err != nil {
		n.log.Warnf("Import rejected: %v", err)
		return err
	}
	if err := n.chainState.ReplaceValidated(blocks); err != nil {
		return fmt.Errorf("import not applied: %w", err)
	}
	n.log.Infof("Imported chain with %d block(s)", len(blocks))
	return nil
}

// Restore replaces the chain with a named backup, validated the same way as
// an import.
func (n *Node) Restore(name string) error {
	data, err := n.store.ReadBackup(name)
	if err != nil {
		return err
	}
	blocks, err := n.store.Validate(data)
	if err != nil {
		n.log.Warnf("Restore of %s rejected: %v", name, err)
		return err
	}
	if err := n.chainState.ReplaceValidated(blocks); err != nil {
		return fmt.Errorf("restore not applied: %w", err)
	}
	n.log.Infof("Restored chain from %s (%d block(s))", name, len(blocks))
	return nil
}

// Export returns the current chain in the on-disk format.
func (n *Node) Export() ([]byte, error) {
	return blkchn.MarshalChain(n.chainState.Ledger().Blocks())
}

func (n *Node) Backups() ([]blkchn.BackupInfo, error) {
	return n.store.ListBackups()
}

// BackupData returns the raw bytes of a backup for download.
func (n *Node) BackupData(name string) ([]byte, error) {
	return n.store.ReadBackup(name)
}

func (n *Node) Ledger() *blkchn.Ledger {
	return n.chainState.Ledger()
}

func (n *Node) Events() *blkchn.EventFeed[blkchn.SealedEvent] {
	return n.chainState.Events()
}

func (n *Node) Close() error {
	if err := n.store.Close(); err != nil {
		return fmt.Errorf("Error closing store: %w", err)
	}
	return nil
}
