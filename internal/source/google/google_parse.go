package google

import (
	"fmt"
	"hash/fnv"
	"strings"

	"fuelboard/internal/core"
)

// parseValues converts a values matrix as returned by the Sheets API into a
// Table. Leading rows that are entirely blank are skipped.
func parseValues(values [][]interface{}) core.Table {
	for len(values) > 0 && blank(values[0]) {
		values = values[1:]
	}
	if len(values) == 0 {
		return core.Table{}
	}
	t := core.Table{Header: toStrings(values[0])}
	t.Rows = make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		t.Rows = append(t.Rows, toStrings(row))
	}
	return t
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func blank(row []interface{}) bool {
	for _, s := range toStrings(row) {
		if s != "" {
			return false
		}
	}
	return true
}

func fingerprint(values [][]interface{}) string {
	h := fnv.New64a()
	for _, row := range values {
		for _, s := range toStrings(row) {
			h.Write([]byte(s))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
