// Package file reads price tables from delimited text files and Excel
// workbooks on local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fuelboard/internal/core"
	"fuelboard/internal/source"
)

type format int

const (
	formatDelimited format = iota
	formatXLSX
)

// Source reads the whole file on every ReadRows call.
type Source struct {
	path   string
	sheet  string
	format format
}

var (
	_ source.RowSource = (*Source)(nil)
	_ source.Versioned = (*Source)(nil)
)

// New returns a Source for path. Files ending in .xlsx or .xlsm are read as
// workbooks (sheet selects the worksheet, empty means the first one); anything
// else is treated as delimited text.
func New(path, sheet string) *Source {
	f := formatDelimited
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f = formatXLSX
	}
	return &Source{path: path, sheet: strings.TrimSpace(sheet), format: f}
}

func (s *Source) ReadRows(ctx context.Context) (core.Table, error) {
	if err := ctx.Err(); err != nil {
		return core.Table{}, err
	}
	var (
		t   core.Table
		err error
	)
	switch s.format {
	case formatXLSX:
		t, err = readWorkbook(s.path, s.sheet)
	default:
		t, err = readDelimited(s.path)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.Table{}, fmt.Errorf("%w: %s", source.ErrNotFound, s.path)
		}
		return core.Table{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	t.Source = "file:" + filepath.Base(s.path)
	return t, nil
}

// Version reports the file's modification time and size.
func (s *Source) Version(_ context.Context) (string, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", source.ErrNotFound, s.path)
		}
		return "", err
	}
	return fmt.Sprintf("%d-%d", fi.ModTime().UnixNano(), fi.Size()), nil
}
