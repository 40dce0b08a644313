package database

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// ErrEncodingOverflow is returned when a transaction carries more inputs,
// outputs, or script bytes than the single-byte count fields can represent.
var ErrEncodingOverflow = errors.New("value exceeds encoding capacity")

// CoinbaseTxID is the sentinel id carried by the coinbase input and forced
// onto the coinbase transaction itself. It is 66 hex characters, two longer
// than every derived id. That length is preserved verbatim for
// compatibility with existing chain exports.
const CoinbaseTxID = "000000000000000000000000000000000000000000000000000000000000000000"

// CoinbaseOutputIndex is the output index carried by the coinbase input.
const CoinbaseOutputIndex = uint32(0xFFFFFFFF)

// defaultSequence is the sequence value applied to inputs when the caller
// doesn't have a reason to set one.
const defaultSequence = uint32(0xFFFFFFFF)

// maxFieldLen is the capacity of the single-byte count and length fields in
// the canonical encoding. This is a deliberate simplification over a
// general varint, the workload this chain carries never comes close.
const maxFieldLen = 255

// =============================================================================

// TxInput references a prior output being spent by a transaction.
type TxInput struct {
	PrevTxID    string `json:"prev_tx_id" yaml:"prev_tx_id"`
	OutputIndex uint32 `json:"output_index" yaml:"output_index"`
	Sequence    uint32 `json:"sequence" yaml:"sequence"`
}

// TxOutput carries value to a recipient represented by an opaque script.
// Scripts are never executed or verified, they are payload only.
type TxOutput struct {
	Value  uint64 `json:"value" yaml:"value"`
	Script []byte `json:"script" yaml:"script"`
}

// Tx is the transactional information recorded in a block. The Note field
// is presentation data and is excluded from the canonical encoding.
type Tx struct {
	Version  uint32     `json:"version" yaml:"version"`
	Inputs   []TxInput  `json:"inputs" yaml:"inputs"`
	Outputs  []TxOutput `json:"outputs" yaml:"outputs"`
	Locktime uint32     `json:"locktime" yaml:"locktime"`
	Note     string     `json:"note,omitempty" yaml:"note,omitempty"`
}

// NewTx constructs a transaction spending the specified inputs into the
// specified outputs.
func NewTx(inputs []TxInput, outputs []TxOutput, note string) Tx {
	return Tx{
		Version:  1,
		Inputs:   inputs,
		Outputs:  outputs,
		Locktime: 0,
		Note:     note,
	}
}

// NewCoinbaseTx constructs the subsidy transaction that leads every block.
// It carries exactly one input bearing the sentinel id and one output
// paying the mining reward.
func NewCoinbaseTx(gen genesis.Genesis, recipient string) Tx {
	input := TxInput{
		PrevTxID:    CoinbaseTxID,
		OutputIndex: CoinbaseOutputIndex,
		Sequence:    defaultSequence,
	}

	output := TxOutput{
		Value:  gen.MiningReward,
		Script: []byte(recipient),
	}

	return NewTx([]TxInput{input}, []TxOutput{output}, "coinbase reward")
}

// IsCoinbase reports whether this transaction is the subsidy transaction.
func (tx Tx) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].PrevTxID == CoinbaseTxID
}

// TxID derives the identifier for this transaction by double hashing its
// canonical encoding and rendering the digest reversed as big-endian hex.
// The coinbase transaction is the one exception, its id is forced to the
// sentinel value rather than derived.
func (tx Tx) TxID() (string, error) {
	if tx.IsCoinbase() {
		return CoinbaseTxID, nil
	}

	data, err := tx.Encode()
	if err != nil {
		return "", err
	}

	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])

	// Reverse the digest so the id displays in big-endian form.
	id := make([]byte, len(second))
	for i, b := range second {
		id[len(second)-1-i] = b
	}

	return hex.EncodeToString(id), nil
}

// Encode produces the canonical byte form of the transaction. Identical
// field values always produce identical bytes, which is what makes the
// derived id a pure function of content.
func (tx Tx) Encode() ([]byte, error) {
	if len(tx.Inputs) > maxFieldLen {
		return nil, fmt.Errorf("%d inputs: %w", len(tx.Inputs), ErrEncodingOverflow)
	}
	if len(tx.Outputs) > maxFieldLen {
		return nil, fmt.Errorf("%d outputs: %w", len(tx.Outputs), ErrEncodingOverflow)
	}

	var buf bytes.Buffer

	writeUint32 := func(v uint32) {
		var raw [4]byte
		binary.LittleEndian.PutUint32(raw[:], v)
		buf.Write(raw[:])
	}

	writeUint32(tx.Version)

	buf.WriteByte(byte(len(tx.Inputs)))
	for _, input := range tx.Inputs {
		prev, err := hex.DecodeString(input.PrevTxID)
		if err != nil {
			return nil, fmt.Errorf("decoding prev tx id: %w", err)
		}

		// The referenced id is stored reversed, in little-endian byte order.
		for i := len(prev) - 1; i >= 0; i-- {
			buf.WriteByte(prev[i])
		}

		writeUint32(input.OutputIndex)

		// Inputs never carry scripts in this model, the length is a fixed
		// zero placeholder.
		buf.WriteByte(0)

		writeUint32(input.Sequence)
	}

	buf.WriteByte(byte(len(tx.Outputs)))
	for _, output := range tx.Outputs {
		if len(output.Script) > maxFieldLen {
			return nil, fmt.Errorf("script of %d bytes: %w", len(output.Script), ErrEncodingOverflow)
		}

		var raw [8]byte
		binary.LittleEndian.PutUint64(raw[:], output.Value)
		buf.Write(raw[:])

		buf.WriteByte(byte(len(output.Script)))
		buf.Write(output.Script)
	}

	writeUint32(tx.Locktime)

	return buf.Bytes(), nil
}

// Fee returns the fixed fee this transaction pays the chain. The coinbase
// transaction pays none.
func (tx Tx) Fee(gen genesis.Genesis) uint64 {
	if tx.IsCoinbase() {
		return 0
	}
	return gen.Fee
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	id, err := tx.TxID()
	if err != nil {
		id = "unknown"
	}

	return fmt.Sprintf("%s[%d in, %d out]", id, len(tx.Inputs), len(tx.Outputs))
}
