package archive_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/archive"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

var noEvents = func(v string, args ...any) {}

// mineRecords mines a short chain carrying a coinbase per block so the
// round trips exercise the transaction payload too.
func mineRecords(t *testing.T, gen genesis.Genesis, blocks int) []database.ChainRecord {
	t.Helper()

	var records []database.ChainRecord
	var prev database.Block

	for i := 0; i < blocks; i++ {
		trans := []database.Tx{database.NewCoinbaseTx(gen, "miner1")}
		block, err := database.POW(context.Background(), gen, prev, trans, noEvents)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine block %d: %v", failed, i, err)
		}
		records = append(records, block.Record())
		prev = block
	}

	return records
}

// =============================================================================

func Test_RoundTrips(t *testing.T) {
	gen := genesis.Genesis{Difficulty: 1, MiningReward: 50_000_000, Fee: 1000, MaxAttempts: 10_000_000}
	records := mineRecords(t, gen, 3)
	live := database.Validate(records, gen.Difficulty)

	if !live.Valid {
		t.Fatalf("\t%s\tShould start from a valid chain.", failed)
	}

	formats := []archive.Format{archive.FormatJSON, archive.FormatYAML, archive.FormatText}

	for _, format := range formats {
		t.Logf("Given a chain exported in the %s format.", format)
		{
			content, err := archive.Export(records, format)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to export: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to export.", success)

			imported, detected, err := archive.Import(content)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to import the export: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to import the export.", success)

			if detected != format {
				t.Errorf("\t%s\tShould detect the %s format, got %s.", failed, format, detected)
			} else {
				t.Logf("\t%s\tShould detect the %s format.", success, format)
			}

			if len(imported) != len(records) {
				t.Fatalf("\t%s\tShould recover %d records, got %d.", failed, len(records), len(imported))
			}

			for i := range records {
				if imported[i].Hash != records[i].Hash || imported[i].Nonce != records[i].Nonce {
					t.Errorf("\t%s\tShould recover record %d intact.", failed, i)
				}
				if len(imported[i].Transactions) != len(records[i].Transactions) {
					t.Errorf("\t%s\tShould recover the transactions of record %d.", failed, i)
				}
			}
			t.Logf("\t%s\tShould recover every record intact.", success)

			verdict := database.Validate(imported, gen.Difficulty)
			if !verdict.Valid {
				t.Errorf("\t%s\tShould validate the same as the live chain: invalid at %v.", failed, verdict.InvalidPositions)
			} else {
				t.Logf("\t%s\tShould validate the same as the live chain.", success)
			}
		}
	}
}

func Test_AliasResolution(t *testing.T) {
	t.Log("Given the need to import chains with foreign field naming.")
	{
		gen := genesis.Genesis{Difficulty: 1, MaxAttempts: 10_000_000}
		records := mineRecords(t, genesis.Genesis{Difficulty: 1, MiningReward: 1, MaxAttempts: 10_000_000}, 2)

		content := []byte(`[
  {
    "height": ` + itoa(records[0].Index) + `,
    "ts": ` + itoa(uint64(records[0].TimeStamp)) + `,
    "prev_hash": "` + records[0].PrevHash + `",
    "block_hash": "` + records[0].Hash + `",
    "merkle_root": "` + records[0].MerkleRoot + `",
    "nonce": ` + itoa(records[0].Nonce) + `
  },
  {
    "Height": ` + itoa(records[1].Index) + `,
    "TS": ` + itoa(uint64(records[1].TimeStamp)) + `,
    "Parent_Hash": "` + records[1].PrevHash + `",
    "Hash": "` + records[1].Hash + `",
    "Merkle Root": "` + records[1].MerkleRoot + `",
    "Nonce": ` + itoa(records[1].Nonce) + `
  }
]`)

		imported, format, err := archive.Import(content)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to import aliased content: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to import aliased content.", success)

		if format != archive.FormatJSON {
			t.Errorf("\t%s\tShould detect the json format, got %s.", failed, format)
		} else {
			t.Logf("\t%s\tShould detect the json format.", success)
		}

		if len(imported) != 2 {
			t.Fatalf("\t%s\tShould recover 2 records, got %d.", failed, len(imported))
		}

		for i := range imported {
			if imported[i].Hash != records[i].Hash || imported[i].PrevHash != records[i].PrevHash {
				t.Errorf("\t%s\tShould resolve the hash aliases of record %d.", failed, i)
			} else {
				t.Logf("\t%s\tShould resolve the hash aliases of record %d.", success, i)
			}
		}

		verdict := database.Validate(imported, gen.Difficulty)
		if !verdict.Valid {
			t.Errorf("\t%s\tShould validate the resolved records: invalid at %v.", failed, verdict.InvalidPositions)
		} else {
			t.Logf("\t%s\tShould validate the resolved records.", success)
		}
	}
}

func Test_MalformedInput(t *testing.T) {
	t.Log("Given the need to reject unrecognizable content.")
	{
		inputs := map[string][]byte{
			"empty":       []byte("   \n  "),
			"prose":       []byte("this is not a chain\nin any format\n"),
			"broken json": []byte(`[{"index": 0,`),
		}

		for name, content := range inputs {
			if _, _, err := archive.Import(content); !errors.Is(err, archive.ErrMalformedInput) {
				t.Errorf("\t%s\tShould reject the %s input, got %v.", failed, name, err)
			} else {
				t.Logf("\t%s\tShould reject the %s input.", success, name)
			}
		}
	}
}

func Test_ImportedTamperDetected(t *testing.T) {
	t.Log("Given the need to fail verdicts for tampered imports.")
	{
		gen := genesis.Genesis{Difficulty: 1, MiningReward: 1, MaxAttempts: 10_000_000}
		records := mineRecords(t, gen, 3)
		records[1].Hash = database.ZeroHash

		content, err := archive.Export(records, archive.FormatYAML)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to export: %v", failed, err)
		}

		imported, _, err := archive.Import(content)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to import: %v", failed, err)
		}

		verdict := database.Validate(imported, gen.Difficulty)
		if verdict.Valid {
			t.Fatalf("\t%s\tShould have an invalid verdict.", failed)
		}
		t.Logf("\t%s\tShould have an invalid verdict.", success)

		if verdict.Blocks[0].BlockValid != true || verdict.Blocks[2].Cascaded != true {
			t.Errorf("\t%s\tShould fail only from the tampered position onward.", failed)
		} else {
			t.Logf("\t%s\tShould fail only from the tampered position onward.", success)
		}
	}
}

// itoa renders an unsigned value for embedding in literal content.
func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
