// Package database handles the lower level support for maintaining the
// chain in storage and the in-memory set of unspent transaction outputs.
package database

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/utxo"
)

// Serializer interface represents the behavior required to be implemented
// by any package providing support for storing and reading the chain.
type Serializer interface {
	Write(record ChainRecord) error
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the stored records.
type Iterator interface {
	Next() (ChainRecord, error)
	Done() bool
}

// =============================================================================

// Database manages the ordered block sequence and the unspent output set.
type Database struct {
	mu sync.RWMutex

	genesis    genesis.Genesis
	chain      []Block
	set        *utxo.Set
	serializer Serializer
	evHandler  func(v string, args ...any)
}

// New constructs a new database, replaying any blocks found in storage to
// rebuild the chain and the unspent output set. A stored chain that fails
// validation fails construction.
func New(gen genesis.Genesis, serializer Serializer, evHandler func(v string, args ...any)) (*Database, error) {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	db := Database{
		genesis:    gen,
		set:        utxo.New(),
		serializer: serializer,
		evHandler:  evHandler,
	}

	var records []ChainRecord
	iter := serializer.ForEach()
	for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if len(records) > 0 {
		verdict := Validate(records, gen.Difficulty)
		if !verdict.Valid {
			return nil, fmt.Errorf("stored chain invalid at positions %v", verdict.InvalidPositions)
		}

		for _, record := range records {
			block := ToBlock(record)
			db.chain = append(db.chain, block)
			db.applyTransactions(block)
		}

		evHandler("database: New: replayed %d stored blocks", len(records))
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() {
	db.serializer.Close()
}

// ApplyBlock appends a mined block to the chain and applies its effects to
// the unspent output set. Application is two-phase, first every input
// across the whole block is checked spendable against a consistent
// snapshot, then all spends and registrations commit together. A block with
// any conflicting input is rejected whole.
func (db *Database) ApplyBlock(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	// Phase 1: every referenced output must exist, be unspent, and be
	// referenced only once within the block.
	seen := make(map[utxo.OutPoint]bool)
	for _, tx := range block.Transactions {
		for _, input := range tx.Inputs {
			if input.PrevTxID == CoinbaseTxID {
				continue
			}

			op := utxo.OutPoint{TxID: input.PrevTxID, OutputIndex: input.OutputIndex}
			if seen[op] {
				return fmt.Errorf("output %s:%d referenced twice in block %d", input.PrevTxID, input.OutputIndex, block.Header.Index)
			}
			seen[op] = true

			if !db.set.IsSpendable(input.PrevTxID, input.OutputIndex) {
				return fmt.Errorf("output %s:%d is not spendable in block %d", input.PrevTxID, input.OutputIndex, block.Header.Index)
			}
		}
	}

	// Phase 2: persist and commit.
	if err := db.serializer.Write(block.Record()); err != nil {
		return err
	}

	db.chain = append(db.chain, block)
	db.applyTransactions(block)

	return nil
}

// applyTransactions marks each transaction's referenced outputs spent and
// registers its own outputs as new unspent entries, in list order. The
// caller must hold the lock or own exclusive access.
func (db *Database) applyTransactions(block Block) {
	for _, tx := range block.Transactions {
		for _, input := range tx.Inputs {
			if input.PrevTxID == CoinbaseTxID {
				continue
			}

			if !db.set.Spend(input.PrevTxID, input.OutputIndex) {
				db.evHandler("database: applyTransactions: WARNING: output %s:%d not spendable", input.PrevTxID, input.OutputIndex)
			}
		}

		id, err := tx.TxID()
		if err != nil {
			db.evHandler("database: applyTransactions: WARNING: %s", err)
			continue
		}

		outputs := make([]utxo.Output, len(tx.Outputs))
		for i, output := range tx.Outputs {
			outputs[i] = utxo.Output{Value: output.Value, Script: output.Script}
		}
		db.set.RegisterOutputs(id, outputs)
	}
}

// RegisterOutputs adds the outputs of a transaction that exists outside any
// block, such as a faucet funding transaction, to the unspent output set.
func (db *Database) RegisterOutputs(txID string, outputs []utxo.Output) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.set.RegisterOutputs(txID, outputs)
}

// ListAvailable returns a snapshot of every currently unspent entry.
func (db *Database) ListAvailable() []utxo.Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.set.ListAvailable()
}

// LookupUnspent returns a copy of the specified unspent entry if it exists.
func (db *Database) LookupUnspent(txID string, outputIndex uint32) (utxo.Entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.set.Lookup(txID, outputIndex)
}

// LatestBlock returns the last block appended to the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.chain) == 0 {
		return Block{}
	}
	return db.chain[len(db.chain)-1]
}

// Height returns the number of blocks in the chain.
func (db *Database) Height() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// Chain returns a copy of the ordered block sequence.
func (db *Database) Chain() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	chain := make([]Block, len(db.chain))
	copy(chain, db.chain)
	return chain
}

// Records returns the chain reduced to its normalized record form.
func (db *Database) Records() []ChainRecord {
	db.mu.RLock()
	defer db.mu.RUnlock()

	records := make([]ChainRecord, len(db.chain))
	for i, block := range db.chain {
		records[i] = block.Record()
	}
	return records
}
