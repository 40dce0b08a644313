package utxo_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/utxo"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_SpendSemantics(t *testing.T) {
	t.Log("Given the need to track spends against registered outputs.")
	{
		set := utxo.New()
		set.RegisterOutputs("tx1", []utxo.Output{
			{Value: 100, Script: []byte("pay:kennedy")},
			{Value: 50, Script: []byte("change:pavel")},
		})

		if !set.Spend("tx1", 0) {
			t.Fatalf("\t%s\tShould be able to spend an unspent entry.", failed)
		}
		t.Logf("\t%s\tShould be able to spend an unspent entry.", success)

		if set.Spend("tx1", 0) {
			t.Errorf("\t%s\tShould not be able to spend the same entry twice.", failed)
		} else {
			t.Logf("\t%s\tShould not be able to spend the same entry twice.", success)
		}

		if set.Spend("tx1", 7) {
			t.Errorf("\t%s\tShould not be able to spend an unknown index.", failed)
		} else {
			t.Logf("\t%s\tShould not be able to spend an unknown index.", success)
		}

		if set.Spend("never-registered", 0) {
			t.Errorf("\t%s\tShould not be able to spend an unknown transaction.", failed)
		} else {
			t.Logf("\t%s\tShould not be able to spend an unknown transaction.", success)
		}
	}
}

func Test_ListAvailableOrder(t *testing.T) {
	t.Log("Given the need to list unspent entries in insertion then index order.")
	{
		set := utxo.New()
		set.RegisterOutputs("tx1", []utxo.Output{{Value: 1}, {Value: 2}})
		set.RegisterOutputs("tx2", []utxo.Output{{Value: 3}})
		set.RegisterOutputs("tx3", []utxo.Output{{Value: 4}, {Value: 5}})

		set.Spend("tx1", 1)

		available := set.ListAvailable()

		exp := []struct {
			txID  string
			index uint32
			value uint64
		}{
			{"tx1", 0, 1},
			{"tx2", 0, 3},
			{"tx3", 0, 4},
			{"tx3", 1, 5},
		}

		if len(available) != len(exp) {
			t.Fatalf("\t%s\tShould have %d available entries, got %d.", failed, len(exp), len(available))
		}
		t.Logf("\t%s\tShould have %d available entries.", success, len(exp))

		for i, e := range exp {
			entry := available[i]
			if entry.TxID != e.txID || entry.OutputIndex != e.index || entry.Value != e.value {
				t.Errorf("\t%s\tShould have entry %s:%d at position %d, got %s:%d.", failed, e.txID, e.index, i, entry.TxID, entry.OutputIndex)
			} else {
				t.Logf("\t%s\tShould have entry %s:%d at position %d.", success, e.txID, e.index, i)
			}
		}
	}
}

func Test_EntriesRetained(t *testing.T) {
	t.Log("Given the need to retain spent entries instead of removing them.")
	{
		set := utxo.New()
		set.RegisterOutputs("tx1", []utxo.Output{{Value: 100}})
		set.Spend("tx1", 0)

		entry, exists := set.Lookup("tx1", 0)
		if !exists {
			t.Fatalf("\t%s\tShould still find the spent entry.", failed)
		}
		t.Logf("\t%s\tShould still find the spent entry.", success)

		if !entry.Spent {
			t.Errorf("\t%s\tShould have the entry marked spent.", failed)
		} else {
			t.Logf("\t%s\tShould have the entry marked spent.", success)
		}

		if len(set.ListAvailable()) != 0 {
			t.Errorf("\t%s\tShould have no available entries.", failed)
		} else {
			t.Logf("\t%s\tShould have no available entries.", success)
		}
	}
}
