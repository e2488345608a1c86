package pipeline

import (
	"context"
	"errors"
	"fmt"

	"fuelboard/internal/core"
)

// ErrInvalidRange is returned by Between when from is after to.
var ErrInvalidRange = errors.New("invalid year range")

// Between derives the output sets over records whose year lies in [from, to].
// The dataset's latest values are not affected by the range. Month-over-month
// and year-over-year changes still compare against records before from.
func (d *Dataset) Between(ctx context.Context, from, to int) (Derived, error) {
	if from > to {
		return Derived{}, fmt.Errorf("%w: %d > %d", ErrInvalidRange, from, to)
	}
	first, last := d.Years()
	if from <= first && to >= last {
		return d.Derived, nil
	}

	lo, hi := -1, -1
	for i, r := range d.Ascending.records {
		if r.Date.Year >= from && r.Date.Year <= to {
			if lo < 0 {
				lo = i
			}
			hi = i + 1
		}
	}
	if lo < 0 {
		lo, hi = 0, 0
	}
	kept := append([]core.PriceRecord{}, d.Ascending.records[lo:hi]...)

	derived, err := derive(ctx, OrderedSeries{order: Ascending, records: kept}, d.opts)
	if err != nil {
		return Derived{}, err
	}
	// Changes look back past the range start, so they come from the full view.
	derived.Changes = append([]core.ChangeRecord{}, d.Changes[lo:hi]...)
	return derived, nil
}
