package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelboard/internal/core"
)

func TestBuildViews_Orders(t *testing.T) {
	v, err := Load(table(
		row("2023-03", "3.30", "3.20", "3.10"),
		row("2022-11", "2.90", "2.80", "2.70"),
		row("2023-01", "3.10", "3.00", "2.90"),
		row("2022-12", "3.00", "2.90", "2.80"),
	), DefaultOptions())
	require.NoError(t, err)

	asc, desc, err := BuildViews(v, DuplicateFail)
	require.NoError(t, err)
	require.Equal(t, 4, asc.Len())
	require.Equal(t, 4, desc.Len())
	assert.Equal(t, Ascending, asc.Order())
	assert.Equal(t, Descending, desc.Order())

	for i := 0; i < asc.Len(); i++ {
		assert.Equal(t, asc.At(i), desc.At(desc.Len()-1-i))
		if i > 0 {
			assert.True(t, asc.At(i-1).Date.Before(asc.At(i).Date))
		}
	}

	first, ok := asc.First()
	require.True(t, ok)
	assert.Equal(t, month(2022, time.November), first.Date)
	latest, ok := desc.First()
	require.True(t, ok)
	assert.Equal(t, month(2023, time.March), latest.Date)
}

func TestBuildViews_DoNotAlias(t *testing.T) {
	v, err := Load(table(
		row("2023-01", "3.00", "3.10", "3.20"),
		row("2023-02", "3.30", "3.15", "3.25"),
	), DefaultOptions())
	require.NoError(t, err)

	asc, desc, err := BuildViews(v, DuplicateFail)
	require.NoError(t, err)

	recs := asc.Records()
	recs[0].Houston = core.Some(99)
	v.Records[1].Houston = core.Some(77)

	assert.Equal(t, core.Some(3.00), asc.At(0).Houston)
	assert.Equal(t, core.Some(3.30), desc.At(0).Houston)
}

// Duplicate months fail by default; the average policy merges them.
func TestBuildViews_Duplicates(t *testing.T) {
	in := table(
		row("2023-01-01", "3.00", "3.10", ""),
		row("2023-02-01", "3.30", "3.15", "3.25"),
		row("2023-01-20", "3.20", "3.30", "3.40"),
	)
	v, err := Load(in, DefaultOptions())
	require.NoError(t, err)

	t.Run("fail", func(t *testing.T) {
		_, _, err := BuildViews(v, DuplicateFail)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrDuplicateDate))

		var de *core.DuplicateDateError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, month(2023, time.January), de.Date)
		assert.Equal(t, []int{1, 3}, de.Rows)
	})

	t.Run("average", func(t *testing.T) {
		asc, desc, err := BuildViews(v, DuplicateAverage)
		require.NoError(t, err)
		require.Equal(t, 2, asc.Len())
		require.Equal(t, 2, desc.Len())

		jan := asc.At(0)
		assert.Equal(t, month(2023, time.January), jan.Date)
		assert.InDelta(t, 3.10, jan.Houston.Value, 1e-9)
		assert.InDelta(t, 3.20, jan.Texas.Value, 1e-9)
		// null cells are excluded from the mean, not counted as zero
		assert.InDelta(t, 3.40, jan.National.Value, 1e-9)
	})
}

func TestBuildViews_DuplicateReportsEarliestMonth(t *testing.T) {
	v, err := Load(table(
		row("2023-05", "3", "3", "3"),
		row("2023-05", "3", "3", "3"),
		row("2022-01", "3", "3", "3"),
		row("2022-01", "3", "3", "3"),
	), DefaultOptions())
	require.NoError(t, err)

	_, _, err = BuildViews(v, DuplicateFail)
	var de *core.DuplicateDateError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, month(2022, time.January), de.Date)
	assert.Equal(t, []int{3, 4}, de.Rows)
}
