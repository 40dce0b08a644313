// Package memory implements the database.Serializer interface using an
// in-memory slice of records. Its primary use is testing.
package memory

import (
	"errors"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Memory manages an in-memory copy of the chain.
type Memory struct {
	mu      sync.Mutex
	records []database.ChainRecord
}

// New constructs an in-memory serializer.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Write appends a chain record.
func (m *Memory) Write(record database.ChainRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	return nil
}

// ForEach returns an iterator over the records in append order.
func (m *Memory) ForEach() database.Iterator {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]database.ChainRecord, len(m.records))
	copy(records, m.records)

	return &iterator{records: records}
}

// Close exists to satisfy the Serializer interface. There is nothing to
// release.
func (m *Memory) Close() error {
	return nil
}

// Reset drops every stored record.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	return nil
}

// =============================================================================

type iterator struct {
	records []database.ChainRecord
	current int
	done    bool
}

// Next returns the next stored record.
func (i *iterator) Next() (database.ChainRecord, error) {
	if i.done {
		return database.ChainRecord{}, errors.New("done")
	}

	if i.current >= len(i.records) {
		i.done = true
		return database.ChainRecord{}, nil
	}

	record := i.records[i.current]
	i.current++
	return record, nil
}

// Done reports the end of the stored records.
func (i *iterator) Done() bool {
	return i.done
}
