package state

import (
	"context"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// MineNewBlock runs one full mining round: generate the demonstration
// workload, search for a nonce that solves the puzzle, then apply the block
// to the chain and the unspent output set. The call blocks until the search
// completes, is cancelled through the context, or exhausts the configured
// attempt cap.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: generate workload")

	trans, err := s.generateRound()
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW")

	block, err := database.POW(ctx, s.genesis, s.db.LatestBlock(), trans, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update ledger state")

	if err := s.db.ApplyBlock(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}
