// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`
	ChainID      uint16    `json:"chain_id"`      // The chain id represents an unique id for this running instance.
	Difficulty   uint      `json:"difficulty"`    // Number of leading 0's needed to solve the hash solution.
	MiningReward uint64    `json:"mining_reward"` // Subsidy paid by the coinbase transaction of each block.
	Fee          uint64    `json:"fee"`           // Fixed fee collected from every non-coinbase transaction.
	FaucetValue  uint64    `json:"faucet_value"`  // Value of a synthetic faucet output minted when the set runs dry.
	MaxAttempts  uint64    `json:"max_attempts"`  // Cap on the nonce search, 0 means search until cancelled.
}

// =============================================================================

// Load opens and consumes the genesis file from the default location.
func Load() (Genesis, error) {
	path := "zblock/genesis.json"
	return LoadFile(path)
}

// LoadFile opens and consumes the genesis file found at the specified path.
func LoadFile(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
