package pipeline

import "fuelboard/internal/core"

// Changes computes month-over-month and year-over-year percent changes of the
// Houston price over an ascending view.
//
// MoM compares against the positionally previous record, whatever its date.
// YoY compares against the record dated exactly 12 calendar months earlier;
// when no such record exists the change is null. A null or zero prior value
// also yields null.
func Changes(asc OrderedSeries) []core.ChangeRecord {
	byIndex := make(map[int]core.Price, asc.Len())
	for _, r := range asc.records {
		byIndex[r.Date.Index()] = r.Houston
	}

	out := make([]core.ChangeRecord, 0, asc.Len())
	for i, r := range asc.records {
		c := core.ChangeRecord{Date: r.Date, MoMChange: core.Null, YoYChange: core.Null}
		if i > 0 {
			c.MoMChange = r.Houston.PctChange(asc.records[i-1].Houston)
		}
		if prior, ok := byIndex[r.Date.Index()-12]; ok {
			c.YoYChange = r.Houston.PctChange(prior)
		}
		out = append(out, c)
	}
	return out
}
