package public

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// txSummary summarizes one transaction mined into a block.
type txSummary struct {
	TxID    string              `json:"tx_id"`
	Note    string              `json:"note"`
	Inputs  []database.TxInput  `json:"inputs"`
	Outputs []database.TxOutput `json:"outputs"`
	Fee     uint64              `json:"fee"`
}

// chainResponse is the reply for a query over the full chain.
type chainResponse struct {
	Height  int                    `json:"height"`
	Chain   []database.ChainRecord `json:"chain"`
	Verdict database.Verdict       `json:"verdict"`
}

// mineResponse is the reply for one completed mining round.
type mineResponse struct {
	Block        database.ChainRecord `json:"block"`
	Transactions []txSummary          `json:"transactions"`
	Verdict      database.Verdict     `json:"verdict"`
}

// validateResponse is the reply for validating externally supplied chain
// data.
type validateResponse struct {
	Difficulty uint                   `json:"difficulty"`
	Format     string                 `json:"format"`
	Chain      []database.ChainRecord `json:"chain"`
	Verdict    database.Verdict       `json:"verdict"`
}

// summarize builds the transaction summaries for a mined block.
func summarize(gen genesis.Genesis, block database.Block) []txSummary {
	summaries := make([]txSummary, len(block.Transactions))

	for i, tx := range block.Transactions {
		id, err := tx.TxID()
		if err != nil {
			id = "unknown"
		}

		summaries[i] = txSummary{
			TxID:    id,
			Note:    tx.Note,
			Inputs:  tx.Inputs,
			Outputs: tx.Outputs,
			Fee:     tx.Fee(gen),
		}
	}

	return summaries
}
