package archive

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"gopkg.in/yaml.v3"
)

// Each record field resolves through a named, ordered list of accepted
// labels. Matching is case-insensitive. The first alias present in the
// source record wins, a field with no match keeps its zero value so the
// validator can fail the record rather than the whole import.
var (
	aliasIndex        = []string{"index", "height", "block_index"}
	aliasTimestamp    = []string{"timestamp", "ts", "time"}
	aliasPrevHash     = []string{"previous hash", "previoushash", "prevhash", "previous_hash", "prev_hash", "parent_hash"}
	aliasHash         = []string{"hash", "block_hash"}
	aliasMerkleRoot   = []string{"merkleroot", "merkle root", "merkle_root", "trans_root"}
	aliasNonce        = []string{"nonce"}
	aliasTransactions = []string{"transactions", "trans", "txs"}
)

// resolveRecords converts a sequence of loosely-typed records into
// normalized chain records.
func resolveRecords(loose []map[string]any) []database.ChainRecord {
	records := make([]database.ChainRecord, len(loose))
	for i, fields := range loose {
		records[i] = resolveRecord(fields)
	}
	return records
}

// resolveRecord maps one loosely-typed record onto the normalized shape.
// Absent or type-mismatched fields become their zero value.
func resolveRecord(fields map[string]any) database.ChainRecord {
	lowered := make(map[string]any, len(fields))
	for key, value := range fields {
		lowered[strings.ToLower(strings.TrimSpace(key))] = value
	}

	return database.ChainRecord{
		Index:        asUint64(lookup(lowered, aliasIndex)),
		TimeStamp:    int64(asUint64(lookup(lowered, aliasTimestamp))),
		PrevHash:     asString(lookup(lowered, aliasPrevHash)),
		Hash:         asString(lookup(lowered, aliasHash)),
		MerkleRoot:   asString(lookup(lowered, aliasMerkleRoot)),
		Nonce:        asUint64(lookup(lowered, aliasNonce)),
		Transactions: asTransactions(lookup(lowered, aliasTransactions)),
	}
}

// lookup walks the alias list in order and returns the first value present.
func lookup(fields map[string]any, aliases []string) any {
	for _, alias := range aliases {
		if value, exists := fields[alias]; exists {
			return value
		}
	}
	return nil
}

// =============================================================================

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	}
	return ""
}

func asUint64(value any) uint64 {
	switch v := value.(type) {
	case uint64:
		return v
	case int64:
		if v >= 0 {
			return uint64(v)
		}
	case int:
		if v >= 0 {
			return uint64(v)
		}
	case uint:
		return uint64(v)
	case float64:
		if v >= 0 {
			return uint64(v)
		}
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// asTransactions makes a best effort at recovering the transaction list.
// The text layout embeds the list as JSON, the structured forms carry it as
// nested values that are re-marshaled through their own codec.
func asTransactions(value any) []database.Tx {
	var trans []database.Tx

	switch v := value.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &trans); err != nil {
			return nil
		}

	case []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil
		}
		if err := yaml.Unmarshal(data, &trans); err != nil {
			return nil
		}
	}

	return trans
}
