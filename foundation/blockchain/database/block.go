package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/merkle"
)

// ZeroHash is the parent hash carried by the genesis block.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// ErrNonceExhausted is returned when the nonce search hits its configured
// attempt cap before finding a solution.
var ErrNonceExhausted = errors.New("nonce search exhausted")

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Index      uint64 `json:"index" yaml:"index"`
	PrevHash   string `json:"previous_hash" yaml:"previous_hash"`
	TimeStamp  int64  `json:"timestamp" yaml:"timestamp"`
	MerkleRoot string `json:"merkle_root" yaml:"merkle_root"`
	Nonce      uint64 `json:"nonce" yaml:"nonce"`
}

// Block represents a group of transactions batched together behind a mined
// header. A block is conceptually immutable once appended to the chain, the
// nonce only moves during the search that precedes the append.
type Block struct {
	Header       BlockHeader
	Transactions []Tx
	Hash         string
}

// POW constructs the next Block in the chain and performs the work to find
// a nonce that solves the cryptographic puzzle. The search starts at nonce
// zero and blocks until a solution is found, the context is cancelled, or
// the attempt cap is reached.
func POW(ctx context.Context, gen genesis.Genesis, prevBlock Block, trans []Tx, evHandler func(v string, args ...any)) (Block, error) {

	// When mining the genesis block there is no parent to link back to.
	prevHash := ZeroHash
	index := uint64(0)
	if prevBlock.Hash != "" {
		prevHash = prevBlock.Hash
		index = prevBlock.Header.Index + 1
	}

	// The merkle root summarizes the ordered set of transaction ids.
	txIDs := make([]string, len(trans))
	for i, tx := range trans {
		id, err := tx.TxID()
		if err != nil {
			return Block{}, err
		}
		txIDs[i] = id
	}

	root, err := merkle.RootHex(txIDs)
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Header: BlockHeader{
			Index:      index,
			PrevHash:   prevHash,
			TimeStamp:  time.Now().UTC().Unix(),
			MerkleRoot: root,
			Nonce:      0, // Will be identified by the POW algorithm.
		},
		Transactions: trans,
	}

	if err := nb.performPOW(ctx, gen, evHandler); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, gen genesis.Genesis, ev func(v string, args ...any)) error {
	ev("database: performPOW: MINING: started: blk[%d]", b.Header.Index)
	defer ev("database: performPOW: MINING: completed: blk[%d]", b.Header.Index)

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: performPOW: MINING: attempts[%d]", attempts)
		}

		if ctx.Err() != nil {
			ev("database: performPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		hash := b.Header.HeaderHash()
		if isHashSolved(gen.Difficulty, hash) {
			ev("database: performPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevHash, hash)
			ev("database: performPOW: MINING: attempts[%d]", attempts)

			b.Hash = hash
			return nil
		}

		if gen.MaxAttempts > 0 && attempts >= gen.MaxAttempts {
			ev("database: performPOW: MINING: EXHAUSTED: attempts[%d]", attempts)
			return fmt.Errorf("after %d attempts: %w", attempts, ErrNonceExhausted)
		}

		b.Header.Nonce++
	}
}

// HeaderHash computes the hash over the canonical pipe-joined form of the
// header fields. The chain can be cryptographically checked with headers
// alone, the transactions participate through the merkle root.
func (bh BlockHeader) HeaderHash() string {
	data := fmt.Sprintf("%d|%d|%s|%s|%d", bh.Index, bh.TimeStamp, bh.PrevHash, bh.MerkleRoot, bh.Nonce)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// isHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint, hash string) bool {
	const match = "00000000000000000"

	if len(hash) != 64 || difficulty > uint(len(match)) {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}
