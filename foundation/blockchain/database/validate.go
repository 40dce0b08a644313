package database

// ChainRecord is the normalized form of a block used for validation and for
// the export/import formats. Both the live chain and externally supplied
// chain data are reduced to this one shape so a single validator serves
// every call site.
type ChainRecord struct {
	Index        uint64 `json:"index" yaml:"index"`
	TimeStamp    int64  `json:"timestamp" yaml:"timestamp"`
	PrevHash     string `json:"previous_hash" yaml:"previous_hash"`
	Hash         string `json:"hash" yaml:"hash"`
	MerkleRoot   string `json:"merkle_root" yaml:"merkle_root"`
	Nonce        uint64 `json:"nonce" yaml:"nonce"`
	Transactions []Tx   `json:"transactions" yaml:"transactions"`
}

// Record converts a block into its normalized record form.
func (b Block) Record() ChainRecord {
	return ChainRecord{
		Index:        b.Header.Index,
		TimeStamp:    b.Header.TimeStamp,
		PrevHash:     b.Header.PrevHash,
		Hash:         b.Hash,
		MerkleRoot:   b.Header.MerkleRoot,
		Nonce:        b.Header.Nonce,
		Transactions: b.Transactions,
	}
}

// ToBlock converts a normalized record back into a block.
func ToBlock(record ChainRecord) Block {
	return Block{
		Header: BlockHeader{
			Index:      record.Index,
			PrevHash:   record.PrevHash,
			TimeStamp:  record.TimeStamp,
			MerkleRoot: record.MerkleRoot,
			Nonce:      record.Nonce,
		},
		Transactions: record.Transactions,
		Hash:         record.Hash,
	}
}

// =============================================================================

// BlockVerdict carries the diagnostic checks for one block in the sequence.
type BlockVerdict struct {
	Index         uint64 `json:"index" yaml:"index"`
	HashValid     bool   `json:"hash_valid" yaml:"hash_valid"`
	PowValid      bool   `json:"pow_valid" yaml:"pow_valid"`
	IndexValid    bool   `json:"index_valid" yaml:"index_valid"`
	PrevHashValid bool   `json:"prev_hash_valid" yaml:"prev_hash_valid"`
	Cascaded      bool   `json:"cascaded" yaml:"cascaded"`
	BlockValid    bool   `json:"block_valid" yaml:"block_valid"`
}

// Verdict is the result of validating an ordered block sequence.
// InvalidPositions holds the zero-based positions of every block whose
// verdict came back invalid, in order.
type Verdict struct {
	Valid            bool           `json:"valid" yaml:"valid"`
	InvalidPositions []int          `json:"invalid_positions" yaml:"invalid_positions"`
	Blocks           []BlockVerdict `json:"blocks" yaml:"blocks"`
}

// Validate re-derives and checks every header link in the specified block
// sequence. It never fails, absent or mangled fields in the records simply
// validate as false. Once one block fails, every later block is marked
// invalid regardless of its own correctness.
func Validate(records []ChainRecord, difficulty uint) Verdict {
	verdict := Verdict{
		Valid:            true,
		InvalidPositions: []int{},
		Blocks:           make([]BlockVerdict, 0, len(records)),
	}

	cascaded := false

	for i, record := range records {
		header := BlockHeader{
			Index:      record.Index,
			PrevHash:   record.PrevHash,
			TimeStamp:  record.TimeStamp,
			MerkleRoot: record.MerkleRoot,
			Nonce:      record.Nonce,
		}

		bv := BlockVerdict{
			Index:     record.Index,
			HashValid: header.HeaderHash() == record.Hash,
			PowValid:  isHashSolved(difficulty, record.Hash),
			Cascaded:  cascaded,
		}

		switch i {
		case 0:
			bv.IndexValid = record.Index == 0
			bv.PrevHashValid = record.PrevHash == ZeroHash
		default:
			bv.IndexValid = record.Index == records[i-1].Index+1
			bv.PrevHashValid = record.PrevHash == records[i-1].Hash
		}

		bv.BlockValid = !bv.Cascaded && bv.HashValid && bv.PowValid && bv.IndexValid && bv.PrevHashValid

		if !bv.BlockValid {
			verdict.Valid = false
			verdict.InvalidPositions = append(verdict.InvalidPositions, i)

			// A single break poisons every block that follows.
			cascaded = true
		}

		verdict.Blocks = append(verdict.Blocks, bv)
	}

	return verdict
}
