package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelboard/internal/core"
	"fuelboard/internal/source"
)

var _ source.RowSource = (*Store)(nil)
var _ source.Versioned = (*Store)(nil)

func TestStoreReadReturnsCopy(t *testing.T) {
	s := New([]string{"date", "gasoline_price"}, []string{"2023-01", "3.00"})

	tbl, err := s.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "memory", tbl.Source)
	tbl.Rows[0][1] = "9.99"

	again, err := s.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3.00", again.Rows[0][1])
	assert.Equal(t, 2, s.Reads())
}

func TestStoreFailAndVersion(t *testing.T) {
	s := New([]string{"date"})
	v1, _ := s.Version(context.Background())

	boom := errors.New("boom")
	s.Fail(boom)
	_, err := s.ReadRows(context.Background())
	assert.ErrorIs(t, err, boom)

	s.Set(core.Table{Header: []string{"date"}})
	_, err = s.ReadRows(context.Background())
	require.NoError(t, err)

	v2, _ := s.Version(context.Background())
	assert.NotEqual(t, v1, v2)
}

func TestStoreHonoursContext(t *testing.T) {
	s := New([]string{"date"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ReadRows(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
