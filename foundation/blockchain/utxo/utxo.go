// Package utxo tracks which transaction outputs remain available to spend.
package utxo

// OutPoint uniquely identifies a single output of a transaction.
type OutPoint struct {
	TxID        string `json:"tx_id"`
	OutputIndex uint32 `json:"output_index"`
}

// Entry represents one transaction output and whether it has been spent.
// Entries are never removed from the set, a spend only flips the flag.
type Entry struct {
	TxID        string `json:"tx_id"`
	OutputIndex uint32 `json:"output_index"`
	Value       uint64 `json:"value"`
	Script      []byte `json:"script"`
	Spent       bool   `json:"spent"`
}

// Set maintains the unspent output entries for the chain. The set only
// grows, spent entries are retained for auditability.
type Set struct {
	order   []string
	counts  map[string]int
	entries map[OutPoint]*Entry
}

// New constructs a set to track unspent outputs.
func New() *Set {
	return &Set{
		counts:  make(map[string]int),
		entries: make(map[OutPoint]*Entry),
	}
}

// Output carries the value and script of a transaction output being
// registered with the set.
type Output struct {
	Value  uint64
	Script []byte
}

// RegisterOutputs appends all outputs of a transaction as unspent entries,
// keyed by position. Registering the same transaction id again overwrites
// the previous entries, callers are expected to register a transaction once.
func (s *Set) RegisterOutputs(txID string, outputs []Output) {
	if _, exists := s.counts[txID]; !exists {
		s.order = append(s.order, txID)
	}
	s.counts[txID] = len(outputs)

	for i, output := range outputs {
		op := OutPoint{TxID: txID, OutputIndex: uint32(i)}
		s.entries[op] = &Entry{
			TxID:        txID,
			OutputIndex: uint32(i),
			Value:       output.Value,
			Script:      output.Script,
		}
	}
}

// Spend marks the specified entry as spent. It reports false when the entry
// does not exist or was already spent. That outcome is a signal, not an
// error, callers decide how to react.
func (s *Set) Spend(txID string, outputIndex uint32) bool {
	entry, exists := s.entries[OutPoint{TxID: txID, OutputIndex: outputIndex}]
	if !exists || entry.Spent {
		return false
	}

	entry.Spent = true
	return true
}

// IsSpendable reports whether the specified entry exists and is currently
// unspent, without mutating the set.
func (s *Set) IsSpendable(txID string, outputIndex uint32) bool {
	entry, exists := s.entries[OutPoint{TxID: txID, OutputIndex: outputIndex}]
	return exists && !entry.Spent
}

// Lookup returns a copy of the specified entry if it exists.
func (s *Set) Lookup(txID string, outputIndex uint32) (Entry, bool) {
	entry, exists := s.entries[OutPoint{TxID: txID, OutputIndex: outputIndex}]
	if !exists {
		return Entry{}, false
	}
	return *entry, true
}

// ListAvailable returns a snapshot of every unspent entry, ordered by when
// the owning transaction was registered and then by output index.
func (s *Set) ListAvailable() []Entry {
	var available []Entry

	for _, txID := range s.order {
		for i := 0; i < s.counts[txID]; i++ {
			op := OutPoint{TxID: txID, OutputIndex: uint32(i)}
			if entry, exists := s.entries[op]; exists && !entry.Spent {
				available = append(available, *entry)
			}
		}
	}

	return available
}
