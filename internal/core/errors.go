package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchema        = errors.New("schema error")
	ErrEmptyDataset  = errors.New("empty dataset")
	ErrDuplicateDate = errors.New("duplicate date")
)

// SchemaError reports a missing column or an unparseable date.
// Row is the 1-based data row (header excluded), 0 when the error is about the header.
type SchemaError struct {
	Columns []string
	Column  string
	Row     int
	Value   string
	Reason  string
}

func (e *SchemaError) Error() string {
	switch {
	case len(e.Columns) > 0:
		return fmt.Sprintf("schema error: missing columns %s", strings.Join(e.Columns, ", "))
	case e.Row > 0:
		return fmt.Sprintf("schema error: row %d column %q: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
	default:
		return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
	}
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// EmptyDatasetError reports a structurally valid input with no usable rows.
type EmptyDatasetError struct {
	Rows    int
	Dropped int
}

func (e *EmptyDatasetError) Error() string {
	if e.Rows == 0 {
		return "empty dataset: no data rows"
	}
	return fmt.Sprintf("empty dataset: %d rows read, %d dropped, none usable", e.Rows, e.Dropped)
}

func (e *EmptyDatasetError) Is(target error) bool { return target == ErrEmptyDataset }

// DuplicateDateError reports two or more rows for the same calendar month.
type DuplicateDateError struct {
	Date Month
	Rows []int
}

func (e *DuplicateDateError) Error() string {
	rows := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		rows[i] = fmt.Sprint(r)
	}
	return fmt.Sprintf("duplicate date %s on rows %s", e.Date, strings.Join(rows, ", "))
}

func (e *DuplicateDateError) Is(target error) bool { return target == ErrDuplicateDate }

// ErrorKind classifies a load error for logs, metrics and API payloads.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrEmptyDataset):
		return "empty_dataset"
	case errors.Is(err, ErrDuplicateDate):
		return "duplicate_date"
	default:
		return "source"
	}
}
