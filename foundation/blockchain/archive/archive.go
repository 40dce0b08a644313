// Package archive serializes the chain to its interchange formats and
// reconstructs chain records from externally supplied files. Three formats
// are supported: JSON, YAML, and a labeled plain-text layout. Import
// tolerates heterogeneous field naming through an ordered alias table, a
// record that resolves nothing simply validates as invalid downstream.
package archive

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"gopkg.in/yaml.v3"
)

// ErrMalformedInput is returned when content is not recognized in any of
// the supported formats.
var ErrMalformedInput = errors.New("content not recognized in any supported format")

// Format identifies one of the supported interchange formats.
type Format string

// Set of supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat converts a format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatText:
		return FormatText, nil
	}

	return "", fmt.Errorf("unknown format %q", name)
}

// =============================================================================

// Export serializes the specified chain records in the specified format.
func Export(records []database.ChainRecord, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(records, "", "  ")

	case FormatYAML:
		return yaml.Marshal(records)

	case FormatText:
		return exportText(records)
	}

	return nil, fmt.Errorf("unknown format %q", format)
}

// exportText renders one record per block, each field on its own labeled
// line, consecutive records separated by a line of three hyphens. This
// exact layout is what the import path scans for.
func exportText(records []database.ChainRecord) ([]byte, error) {
	var buf bytes.Buffer

	for i, record := range records {
		if i > 0 {
			buf.WriteString("---\n")
		}

		trans, err := json.Marshal(record.Transactions)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(&buf, "Index: %d\n", record.Index)
		fmt.Fprintf(&buf, "Timestamp: %d\n", record.TimeStamp)
		fmt.Fprintf(&buf, "Previous Hash: %s\n", record.PrevHash)
		fmt.Fprintf(&buf, "Hash: %s\n", record.Hash)
		fmt.Fprintf(&buf, "MerkleRoot: %s\n", record.MerkleRoot)
		fmt.Fprintf(&buf, "Transactions: %s\n", trans)
		fmt.Fprintf(&buf, "Nonce: %d\n", record.Nonce)
	}

	return buf.Bytes(), nil
}

// =============================================================================

// Import detects the format of the specified content and reconstructs the
// normalized chain records. Detection sniffs the leading non-whitespace
// character for the structured form, then attempts YAML, then falls back to
// scanning hyphen-delimited labeled text.
func Import(content []byte) ([]database.ChainRecord, Format, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, "", ErrMalformedInput
	}

	if trimmed[0] == '[' || trimmed[0] == '{' {
		records, err := importJSON(trimmed)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s", ErrMalformedInput, err)
		}
		return records, FormatJSON, nil
	}

	if records, err := importYAML(trimmed); err == nil {
		return records, FormatYAML, nil
	}

	records, err := importText(trimmed)
	if err != nil {
		return nil, "", err
	}

	return records, FormatText, nil
}

// importJSON reconstructs records from the structured form. A full
// fidelity decode is attempted first, then a tolerant decode that resolves
// heterogeneous field names. Both decoders silently skip unrecognized
// keys, so a strict decode is only trusted when every record came through
// with its hash links, otherwise aliased content would surface as a
// sequence of partly empty records.
func importJSON(content []byte) ([]database.ChainRecord, error) {
	var records []database.ChainRecord
	if err := json.Unmarshal(content, &records); err == nil && completeDecode(records) {
		return records, nil
	}

	var loose []map[string]any
	if err := json.Unmarshal(content, &loose); err != nil {
		return nil, err
	}

	return resolveRecords(loose), nil
}

// importYAML reconstructs records from the markup form, with the same full
// fidelity then tolerant decode order as JSON.
func importYAML(content []byte) ([]database.ChainRecord, error) {
	var records []database.ChainRecord
	if err := yaml.Unmarshal(content, &records); err == nil && len(records) > 0 && completeDecode(records) {
		return records, nil
	}

	var loose []map[string]any
	if err := yaml.Unmarshal(content, &loose); err != nil {
		return nil, err
	}
	if len(loose) == 0 {
		return nil, errors.New("no records")
	}

	return resolveRecords(loose), nil
}

// completeDecode reports whether a strict decode recognized the hash links
// of every record.
func completeDecode(records []database.ChainRecord) bool {
	for _, record := range records {
		if record.Hash == "" || record.PrevHash == "" {
			return false
		}
	}
	return true
}

// importText scans hyphen-delimited records of labeled lines. Labels match
// case-insensitively through the alias table. Content that produces no
// labeled fields at all is considered malformed.
func importText(content []byte) ([]database.ChainRecord, error) {
	var records []database.ChainRecord
	fields := make(map[string]any)
	resolvedAny := false

	flush := func() {
		if len(fields) > 0 {
			records = append(records, resolveRecord(fields))
			fields = make(map[string]any)
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "---" {
			flush()
			continue
		}

		label, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		fields[strings.TrimSpace(label)] = strings.TrimSpace(value)
		resolvedAny = true
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedInput, err)
	}
	if !resolvedAny || len(records) == 0 {
		return nil, ErrMalformedInput
	}

	return records, nil
}
