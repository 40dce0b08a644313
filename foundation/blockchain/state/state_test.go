package state_test

import (
	"context"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/archive"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func testGenesis() genesis.Genesis {
	return genesis.Genesis{
		ChainID:      1,
		Difficulty:   1,
		MiningReward: 50_000_000,
		Fee:          1000,
		FaucetValue:  1_000_000,
		MaxAttempts:  10_000_000,
	}
}

func newState(t *testing.T) *state.State {
	t.Helper()

	storage, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Beneficiary: "miner1",
		Genesis:     testGenesis(),
		Storage:     storage,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the ledger: %v", failed, err)
	}

	return st
}

func formatOf(t *testing.T, name string) archive.Format {
	t.Helper()

	format, err := archive.ParseFormat(name)
	if err != nil {
		t.Fatalf("\t%s\tShould recognize the %s format: %v", failed, name, err)
	}
	return format
}

// =============================================================================

func Test_GenesisBlock(t *testing.T) {
	t.Log("Given the need to start every chain with a mined block zero.")
	{
		st := newState(t)
		defer st.Shutdown()

		chain, verdict := st.QueryChain()

		if len(chain) != 1 {
			t.Fatalf("\t%s\tShould start with a chain of one block, got %d.", failed, len(chain))
		}
		t.Logf("\t%s\tShould start with a chain of one block.", success)

		if !verdict.Valid {
			t.Errorf("\t%s\tShould start with a valid chain: invalid at %v.", failed, verdict.InvalidPositions)
		} else {
			t.Logf("\t%s\tShould start with a valid chain.", success)
		}

		gb := chain[0]
		if gb.Header.Index != 0 || gb.Header.PrevHash != database.ZeroHash {
			t.Errorf("\t%s\tShould have block zero link to the zero hash.", failed)
		} else {
			t.Logf("\t%s\tShould have block zero link to the zero hash.", success)
		}

		if len(gb.Transactions) != 0 {
			t.Errorf("\t%s\tShould have an empty block zero.", failed)
		} else {
			t.Logf("\t%s\tShould have an empty block zero.", success)
		}
	}
}

func Test_MiningRounds(t *testing.T) {
	t.Log("Given the need to mine rounds of generated workload.")
	{
		st := newState(t)
		defer st.Shutdown()

		gen := st.Genesis()

		for round := 0; round < 3; round++ {
			block, err := st.MineNewBlock(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tShould be able to mine round %d: %v", failed, round, err)
			}
			t.Logf("\t%s\tShould be able to mine round %d.", success, round)

			if len(block.Transactions) != 6 {
				t.Fatalf("\t%s\tShould carry 6 transactions, got %d.", failed, len(block.Transactions))
			}
			t.Logf("\t%s\tShould carry 6 transactions.", success)

			cb := block.Transactions[0]
			if !cb.IsCoinbase() {
				t.Fatalf("\t%s\tShould lead with the coinbase transaction.", failed)
			}
			t.Logf("\t%s\tShould lead with the coinbase transaction.", success)

			id, err := cb.TxID()
			if err != nil || id != database.CoinbaseTxID {
				t.Errorf("\t%s\tShould carry the sentinel coinbase id.", failed)
			} else {
				t.Logf("\t%s\tShould carry the sentinel coinbase id.", success)
			}

			if len(cb.Outputs) != 1 || cb.Outputs[0].Value != gen.MiningReward {
				t.Errorf("\t%s\tShould pay the mining reward to the beneficiary.", failed)
			} else {
				t.Logf("\t%s\tShould pay the mining reward to the beneficiary.", success)
			}

			for i, tx := range block.Transactions[1:] {
				if len(tx.Inputs) != 1 || len(tx.Outputs) != 2 {
					t.Fatalf("\t%s\tShould have spend %d carry 1 input and 2 outputs.", failed, i)
				}

				input := tx.Inputs[0]
				entry, exists := st.QueryOutput(input.PrevTxID, input.OutputIndex)
				if !exists {
					t.Fatalf("\t%s\tShould find the entry spend %d consumed.", failed, i)
				}
				if !entry.Spent {
					t.Errorf("\t%s\tShould have the consumed entry marked spent.", failed)
				}

				payment := tx.Outputs[0].Value
				change := tx.Outputs[1].Value
				if payment+change+gen.Fee != entry.Value {
					t.Errorf("\t%s\tShould have payment, change, and fee sum to the input value for spend %d.", failed, i)
				}
			}
			t.Logf("\t%s\tShould have every spend balance against its input.", success)
		}

		chain, verdict := st.QueryChain()
		if len(chain) != 4 {
			t.Fatalf("\t%s\tShould have a chain of 4 blocks, got %d.", failed, len(chain))
		}
		t.Logf("\t%s\tShould have a chain of 4 blocks.", success)

		if !verdict.Valid {
			t.Errorf("\t%s\tShould have a fully valid chain: invalid at %v.", failed, verdict.InvalidPositions)
		} else {
			t.Logf("\t%s\tShould have a fully valid chain.", success)
		}
	}
}

func Test_MiningCancelled(t *testing.T) {
	t.Log("Given the need to stop the nonce search on cancellation.")
	{
		st := newState(t)
		defer st.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := st.MineNewBlock(ctx); err == nil {
			t.Errorf("\t%s\tShould fail mining with a cancelled context.", failed)
		} else {
			t.Logf("\t%s\tShould fail mining with a cancelled context: %v", success, err)
		}
	}
}

func Test_ExportValidateImport(t *testing.T) {
	t.Log("Given the need to validate an exported chain the same as the live one.")
	{
		st := newState(t)
		defer st.Shutdown()

		if _, err := st.MineNewBlock(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		for _, format := range []string{"json", "yaml", "text"} {
			content, err := st.ExportChain(formatOf(t, format))
			if err != nil {
				t.Fatalf("\t%s\tShould be able to export as %s: %v", failed, format, err)
			}

			report, err := st.ValidateImport(content)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to validate the %s export: %v", failed, format, err)
			}

			if !report.Verdict.Valid {
				t.Errorf("\t%s\tShould have a valid verdict for the %s export: invalid at %v.", failed, format, report.Verdict.InvalidPositions)
			} else {
				t.Logf("\t%s\tShould have a valid verdict for the %s export.", success, format)
			}

			if len(report.Chain) != 2 {
				t.Errorf("\t%s\tShould recover 2 records from the %s export.", failed, format)
			} else {
				t.Logf("\t%s\tShould recover 2 records from the %s export.", success, format)
			}
		}
	}
}
