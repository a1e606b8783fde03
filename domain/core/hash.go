package core

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// RowHash is an order-independent content digest of a row
type RowHash uint64

// String returns the hex representation
func (h RowHash) String() string {
	return strconv.FormatUint(uint64(h), 16)
}

// ComputeRowHash hashes canonical field encodings keyed by column name.
// Key order does not affect the result.
func ComputeRowHash(fields map[string]string) RowHash {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := xxhash.New()
	for _, key := range keys {
		writeField(d, key)
		writeField(d, fields[key])
	}
	return RowHash(d.Sum64())
}

// writeField writes a length-prefixed string so that adjacent fields cannot
// run together.
func writeField(d *xxhash.Digest, s string) {
	_, _ = d.WriteString(strconv.Itoa(len(s)))
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(s)
}
