package pipeline

import "fuelboard/internal/core"

// Spreads computes Houston minus Texas and Houston minus U.S. for every record
// of an ascending view.
//
// A month with any missing price gets null for both spreads, so the two
// spread lines always have gaps in the same places. Missing is never zero.
func Spreads(asc OrderedSeries) []core.SpreadRecord {
	out := make([]core.SpreadRecord, 0, asc.Len())
	for _, r := range asc.records {
		out = append(out, spreadOf(r))
	}
	return out
}

func spreadOf(r core.PriceRecord) core.SpreadRecord {
	s := core.SpreadRecord{Date: r.Date, HoustonMinusTexas: core.Null, HoustonMinusUS: core.Null}
	if !r.Complete() {
		return s
	}
	s.HoustonMinusTexas = r.Houston.Sub(r.Texas)
	s.HoustonMinusUS = r.Houston.Sub(r.National)
	return s
}
