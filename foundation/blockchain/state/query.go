package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/utxo"
)

// QueryChain returns a copy of the full ordered block sequence along with a
// validation verdict over it.
func (s *State) QueryChain() ([]database.Block, database.Verdict) {
	chain := s.db.Chain()
	verdict := database.Validate(s.db.Records(), s.genesis.Difficulty)

	return chain, verdict
}

// QueryLatestBlock returns the last block appended to the chain.
func (s *State) QueryLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// QueryUnspent returns a snapshot of every currently unspent entry.
func (s *State) QueryUnspent() []utxo.Entry {
	return s.db.ListAvailable()
}

// QueryOutput returns a copy of the specified output entry, spent or not,
// if it has ever been registered.
func (s *State) QueryOutput(txID string, outputIndex uint32) (utxo.Entry, bool) {
	return s.db.LookupUnspent(txID, outputIndex)
}

// Validate runs the chain validator over the current chain.
func (s *State) Validate() database.Verdict {
	return database.Validate(s.db.Records(), s.genesis.Difficulty)
}
