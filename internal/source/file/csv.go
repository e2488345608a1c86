package file

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fuelboard/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readDelimited(path string) (core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Table{}, err
	}
	defer f.Close()
	return parseDelimited(f, strings.EqualFold(filepath.Ext(path), ".tsv"))
}

// parseDelimited reads a header row and data rows. The delimiter is tab when
// forceTab is set, otherwise whichever of comma, semicolon or tab occurs most
// often in the header line.
func parseDelimited(r io.Reader, forceTab bool) (core.Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return core.Table{}, err
	}
	if len(bytes.TrimSpace(first)) == 0 {
		return core.Table{}, nil
	}

	cr := csv.NewReader(br)
	cr.Comma = ','
	if forceTab {
		cr.Comma = '\t'
	} else {
		cr.Comma = sniffDelimiter(first)
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return core.Table{}, err
	}
	if len(records) == 0 {
		return core.Table{}, nil
	}
	return core.Table{Header: records[0], Rows: records[1:]}, nil
}

func sniffDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	best, bestN := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
