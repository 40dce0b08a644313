// Package disk implements the database.Serializer interface using a JSON
// lines file on disk, one chain record per line in append order.
package disk

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Disk manages the file based storage of the chain.
type Disk struct {
	mu     sync.Mutex
	dbPath string
	dbFile *os.File
}

// New constructs a disk serializer, creating the backing file when it
// doesn't exist yet.
func New(dbPath string) (*Disk, error) {
	dbFile, err := os.OpenFile(dbPath, os.O_APPEND|os.O_RDWR, 0600)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}

		dbFile, err = os.OpenFile(dbPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0600)
		if err != nil {
			return nil, err
		}
	}

	return &Disk{
		dbPath: dbPath,
		dbFile: dbFile,
	}, nil
}

// Write appends a chain record as one line of JSON.
func (d *Disk) Write(record database.ChainRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if _, err := d.dbFile.Write(append(data, '\n')); err != nil {
		return err
	}

	return d.dbFile.Sync()
}

// ForEach returns an iterator over the stored records in append order.
func (d *Disk) ForEach() database.Iterator {
	d.mu.Lock()
	defer d.mu.Unlock()

	file, err := os.Open(d.dbPath)
	if err != nil {
		return &iterator{done: true}
	}

	return &iterator{file: file, scanner: bufio.NewScanner(file)}
}

// Close releases the backing file.
func (d *Disk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dbFile.Close()
}

// Reset truncates the backing file, dropping every stored record.
func (d *Disk) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.dbFile.Close(); err != nil {
		return err
	}

	dbFile, err := os.OpenFile(d.dbPath, os.O_CREATE|os.O_TRUNC|os.O_APPEND|os.O_RDWR, 0600)
	if err != nil {
		return err
	}

	d.dbFile = dbFile
	return nil
}

// =============================================================================

type iterator struct {
	file    *os.File
	scanner *bufio.Scanner
	done    bool
}

// Next reads the next record from the file.
func (i *iterator) Next() (database.ChainRecord, error) {
	if i.done {
		return database.ChainRecord{}, errors.New("done")
	}

	if !i.scanner.Scan() {
		i.done = true
		i.file.Close()
		return database.ChainRecord{}, i.scanner.Err()
	}

	var record database.ChainRecord
	if err := json.Unmarshal(i.scanner.Bytes(), &record); err != nil {
		return database.ChainRecord{}, err
	}

	return record, nil
}

// Done reports the end of the stored records.
func (i *iterator) Done() bool {
	return i.done
}
