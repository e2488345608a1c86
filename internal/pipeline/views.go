package pipeline

import (
	"encoding/json"
	"sort"

	"fuelboard/internal/core"
)

type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// OrderedSeries is an immutable, date-sorted view over price records.
// Each view owns its backing slice; no two views share storage.
type OrderedSeries struct {
	order   Order
	records []core.PriceRecord
}

func newOrderedSeries(records []core.PriceRecord, order Order) OrderedSeries {
	own := make([]core.PriceRecord, len(records))
	copy(own, records)
	sort.SliceStable(own, func(i, j int) bool {
		if order == Descending {
			return own[j].Date.Before(own[i].Date)
		}
		return own[i].Date.Before(own[j].Date)
	})
	return OrderedSeries{order: order, records: own}
}

func (s OrderedSeries) Order() Order { return s.order }
func (s OrderedSeries) Len() int     { return len(s.records) }

// At returns the i-th record in view order. It panics on out-of-range i.
func (s OrderedSeries) At(i int) core.PriceRecord { return s.records[i] }

// First returns the earliest record of an ascending view or the latest of a
// descending one.
func (s OrderedSeries) First() (core.PriceRecord, bool) {
	if len(s.records) == 0 {
		return core.PriceRecord{}, false
	}
	return s.records[0], true
}

// Records returns a copy of the view's records.
func (s OrderedSeries) Records() []core.PriceRecord {
	out := make([]core.PriceRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s OrderedSeries) MarshalJSON() ([]byte, error) {
	if s.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.records)
}

// BuildViews produces ascending and descending views of the same record set.
//
// With DuplicateFail, two records in one calendar month abort the build with
// *core.DuplicateDateError naming the earliest such month. With
// DuplicateAverage the records of a month are merged field by field.
func BuildViews(v Validated, policy DuplicatePolicy) (asc, desc OrderedSeries, err error) {
	records, err := resolveDuplicates(v, policy)
	if err != nil {
		return OrderedSeries{}, OrderedSeries{}, err
	}
	return newOrderedSeries(records, Ascending), newOrderedSeries(records, Descending), nil
}

func resolveDuplicates(v Validated, policy DuplicatePolicy) ([]core.PriceRecord, error) {
	groups := make(map[core.Month][]int, len(v.Records))
	var order []core.Month
	for i, r := range v.Records {
		if _, seen := groups[r.Date]; !seen {
			order = append(order, r.Date)
		}
		groups[r.Date] = append(groups[r.Date], i)
	}
	if len(order) == len(v.Records) {
		return v.Records, nil
	}

	if policy != DuplicateAverage {
		var first *core.DuplicateDateError
		for _, m := range order {
			idx := groups[m]
			if len(idx) < 2 || (first != nil && !m.Before(first.Date)) {
				continue
			}
			rows := make([]int, len(idx))
			for k, i := range idx {
				rows[k] = sourceRow(v, i)
			}
			first = &core.DuplicateDateError{Date: m, Rows: rows}
		}
		return nil, first
	}

	merged := make([]core.PriceRecord, 0, len(order))
	for _, m := range order {
		idx := groups[m]
		if len(idx) == 1 {
			merged = append(merged, v.Records[idx[0]])
			continue
		}
		var h, t, n []core.Price
		for _, i := range idx {
			h = append(h, v.Records[i].Houston)
			t = append(t, v.Records[i].Texas)
			n = append(n, v.Records[i].National)
		}
		merged = append(merged, core.PriceRecord{
			Date:     m,
			Houston:  core.Mean(h),
			Texas:    core.Mean(t),
			National: core.Mean(n),
		})
	}
	return merged, nil
}

func sourceRow(v Validated, i int) int {
	if i < len(v.SourceRows) {
		return v.SourceRows[i]
	}
	return i + 1
}
