package state

import (
	"fmt"
	"math/rand"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/utxo"
)

// transPerBlock is the number of non-coinbase transactions generated for
// every mining round.
const transPerBlock = 5

// recipients are the synthetic accounts demonstration payments go to.
var recipients = []string{"kennedy", "pavel", "miguel", "cheng", "anna", "jacob"}

// generateRound produces the transactions for one mining round, a coinbase
// paying the beneficiary followed by exactly five spends. Each spend
// consumes one unspent output and produces a payment output and a change
// output back to the spent output's script.
func (s *State) generateRound() ([]database.Tx, error) {
	trans := make([]database.Tx, 0, transPerBlock+1)
	trans = append(trans, database.NewCoinbaseTx(s.genesis, s.beneficiary))

	entries, err := s.pickEntries()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		tx, err := s.spendEntry(entry)
		if err != nil {
			return nil, err
		}
		trans = append(trans, tx)
	}

	return trans, nil
}

// pickEntries draws five distinct unspent entries at random without
// replacement. Entries too small to cover the fee and a minimum payment
// are left alone. When fewer than five usable entries exist, synthetic
// faucet entries are minted directly into the set until five are
// available.
func (s *State) pickEntries() ([]utxo.Entry, error) {
	available := s.spendable()

	for len(available) < transPerBlock {
		if err := s.injectFaucet(); err != nil {
			return nil, err
		}
		available = s.spendable()
	}

	rand.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	return available[:transPerBlock], nil
}

// spendable returns the unspent entries large enough to fund a payment,
// the change, and the fixed fee.
func (s *State) spendable() []utxo.Entry {
	var entries []utxo.Entry
	for _, entry := range s.db.ListAvailable() {
		if entry.Value > s.genesis.Fee+1001 {
			entries = append(entries, entry)
		}
	}
	return entries
}

// injectFaucet registers the outputs of a synthetic funding transaction
// that exists outside any block. The sequence number keeps every faucet
// transaction's derived id unique.
func (s *State) injectFaucet() error {
	s.faucetSeq++

	tx := database.NewTx(nil, []database.TxOutput{
		{Value: s.genesis.FaucetValue, Script: fmt.Appendf(nil, "faucet:%d", s.faucetSeq)},
	}, "faucet funding")

	id, err := tx.TxID()
	if err != nil {
		return err
	}

	s.evHandler("state: injectFaucet: minted %s value[%d]", id, s.genesis.FaucetValue)

	s.db.RegisterOutputs(id, []utxo.Output{{Value: s.genesis.FaucetValue, Script: tx.Outputs[0].Script}})
	return nil
}

// spendEntry builds a transaction that spends the specified entry into a
// random payment and the change. Payment, change, and the fixed fee always
// sum back to the entry's value.
func (s *State) spendEntry(entry utxo.Entry) (database.Tx, error) {
	fee := s.genesis.Fee

	if entry.Value <= fee+1001 {
		return database.Tx{}, fmt.Errorf("entry %s:%d value %d too small to spend", entry.TxID, entry.OutputIndex, entry.Value)
	}

	// Payment is drawn from the half-open range [1, value-fee-1000).
	max := entry.Value - fee - 1000
	payment := uint64(rand.Int63n(int64(max-1))) + 1
	change := entry.Value - payment - fee

	recipient := recipients[rand.Intn(len(recipients))]

	inputs := []database.TxInput{
		{PrevTxID: entry.TxID, OutputIndex: entry.OutputIndex, Sequence: 0xFFFFFFFF},
	}

	outputs := []database.TxOutput{
		{Value: payment, Script: fmt.Appendf(nil, "pay:%s", recipient)},
		{Value: change, Script: entry.Script},
	}

	note := fmt.Sprintf("%d to %s, %d change", payment, recipient, change)

	return database.NewTx(inputs, outputs, note), nil
}
