package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/archive"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ExportChain serializes the current chain in the specified format.
func (s *State) ExportChain(format archive.Format) ([]byte, error) {
	return archive.Export(s.db.Records(), format)
}

// ImportReport carries the outcome of validating externally supplied chain
// data against this ledger's configuration.
type ImportReport struct {
	Difficulty uint
	Format     archive.Format
	Chain      []database.ChainRecord
	Verdict    database.Verdict
}

// ValidateImport reconstructs chain records from file content in any of the
// supported formats and runs them through the same validator that serves
// the live chain. The ledger itself is not modified.
func (s *State) ValidateImport(content []byte) (ImportReport, error) {
	records, format, err := archive.Import(content)
	if err != nil {
		return ImportReport{}, err
	}

	s.evHandler("state: ValidateImport: format[%s] records[%d]", format, len(records))

	report := ImportReport{
		Difficulty: s.genesis.Difficulty,
		Format:     format,
		Chain:      records,
		Verdict:    database.Validate(records, s.genesis.Difficulty),
	}

	return report, nil
}
