// Package memory is an in-process RowSource used for tests and demos.
package memory

import (
	"context"
	"strconv"
	"sync"

	"fuelboard/internal/core"
)

type Store struct {
	mu      sync.Mutex
	table   core.Table
	err     error
	reads   int
	version int
}

func New(header []string, rows ...[]string) *Store {
	s := &Store{}
	s.Set(core.Table{Source: "memory", Header: header, Rows: rows})
	return s
}

// Set replaces the table returned by subsequent reads.
func (s *Store) Set(t core.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Source == "" {
		t.Source = "memory"
	}
	s.table = cloneTable(t)
	s.err = nil
	s.version++
}

// Fail makes subsequent reads return err until the next Set.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	s.version++
}

func (s *Store) ReadRows(ctx context.Context) (core.Table, error) {
	if err := ctx.Err(); err != nil {
		return core.Table{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return core.Table{}, s.err
	}
	return cloneTable(s.table), nil
}

func (s *Store) Version(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strconv.Itoa(s.version), nil
}

// Reads returns how many times ReadRows was called.
func (s *Store) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func cloneTable(t core.Table) core.Table {
	out := core.Table{Source: t.Source, Header: append([]string(nil), t.Header...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}
