package blockchain

import (
	"errors"
	"sync"

	"github.com/shu8h0-null/shopledger/core/logger"
)

// ChainState binds a Ledger to its Store. Every write that must reach disk in
// order (checkout, import, restore) goes through its mutex, so no two
// record/seal/save sequences interleave.
type ChainState struct {
	ledger *Ledger
	store  *Store
	events *EventFeed[SealedEvent]
	log    *logger.Logger
	mu     sync.Mutex
}

func NewChainState(l *Ledger, s *Store, log *logger.Logger) (*ChainState, error) {
	if l == nil {
		return nil, errors.New("Ledger cannot be nil")
	}
	if s == nil {
		return nil, errors.New("Store cannot be nil")
	}
	if log == nil {
		log = logger.Default()
	}

	return &ChainState{
		ledger: l,
		store:  s,
		events: NewEventFeed[SealedEvent](),
		log:    log,
	}, nil
}

func (cs *ChainState) Ledger() *Ledger {
	return cs.ledger
}

func (cs *ChainState) Store() *Store {
	return cs.store
}

func (cs *ChainState) Events() *EventFeed[SealedEvent] {
	return cs.events
}

// Checkout records one transaction and seals it into its own block. A failed
// save is logged and reported in the event; the sealed block is returned
// either way since memory is authoritative.
func (cs *ChainState) Checkout(sender string, items Items, total int64) (Block, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, err := cs.ledger.Record(sender, items, total); err != nil {
		return Block{}, err
	}

	proof := cs.ledger.LastBlock().Proof + 1
	block := cs.ledger.Seal(proof)

	persisted := true
	if err := cs.store.Save(cs.ledger.Blocks()); err != nil {
		persisted = false
		cs.log.Errorf("Block %d sealed but not persisted: %v", block.Index, err)
	} else {
		cs.log.Infof("Block %d sealed with %d transaction(s)", block.Index, len(block.Transactions))
	}

	cs.events.Send(SealedEvent{
		Index:        block.Index,
		Signature:    block.Signature,
		Transactions: len(block.Transactions),
		Persisted:    persisted,
	})
	return block, nil
}

// ReplaceValidated persists blocks and then swaps them in. blocks must
// already have passed ValidateChain. If the save fails the live chain is
// left as it was.
func (cs *ChainState) ReplaceValidated(blocks []Block) error {
	if len(blocks) == 0 {
		return errors.New("cannot replace with an empty chain")
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.store.Save(blocks); err != nil {
		return err
	}
	return cs.ledger.Replace(blocks)
}
