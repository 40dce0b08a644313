// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"context"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// EventHandler defines a function that is called when events occur in the
// processing of mining and persisting blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the ledger.
type Config struct {
	Beneficiary string
	Genesis     genesis.Genesis
	Storage     database.Serializer
	EvHandler   EventHandler
}

// State manages the ledger. Every externally triggered operation runs to
// completion under the lock before the next may proceed, mining included.
type State struct {
	mu sync.Mutex

	beneficiary string
	genesis     genesis.Genesis
	evHandler   EventHandler
	faucetSeq   uint64

	db *database.Database
}

// New constructs a new ledger for data management. When the underlying
// storage is empty, the genesis block is mined on the spot so the chain
// always starts with a valid block zero.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		beneficiary: cfg.Beneficiary,
		genesis:     cfg.Genesis,
		evHandler:   ev,
		db:          db,
	}

	if db.Height() == 0 {
		ev("state: New: mining genesis block")

		block, err := database.POW(context.Background(), cfg.Genesis, database.Block{}, nil, ev)
		if err != nil {
			return nil, err
		}

		if err := db.ApplyBlock(block); err != nil {
			return nil, err
		}
	}

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.db.Close()
	return nil
}

// Genesis returns a copy of the genesis configuration.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}
