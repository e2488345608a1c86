package pipeline

import "fmt"

// MissingPolicy decides what happens to rows with missing or non-numeric prices.
type MissingPolicy string

// DuplicatePolicy decides what happens when two rows share a calendar month.
type DuplicatePolicy string

const (
	// MissingKeep retains the row and leaves the bad fields null.
	MissingKeep MissingPolicy = "keep"
	// MissingDrop discards any row lacking one of the three prices.
	MissingDrop MissingPolicy = "drop"

	// DuplicateFail aborts the load with a DuplicateDateError.
	DuplicateFail DuplicatePolicy = "fail"
	// DuplicateAverage merges same-month rows by averaging each series.
	DuplicateAverage DuplicatePolicy = "average"

	DefaultTrendWindow = 12
)

type Options struct {
	Missing     MissingPolicy
	Duplicates  DuplicatePolicy
	TrendWindow int
}

func DefaultOptions() Options {
	return Options{
		Missing:     MissingKeep,
		Duplicates:  DuplicateFail,
		TrendWindow: DefaultTrendWindow,
	}
}

// withDefaults fills zero fields so callers may pass a partial Options.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Missing == "" {
		o.Missing = d.Missing
	}
	if o.Duplicates == "" {
		o.Duplicates = d.Duplicates
	}
	if o.TrendWindow <= 0 {
		o.TrendWindow = d.TrendWindow
	}
	return o
}

func (o Options) Validate() error {
	switch o.Missing {
	case "", MissingKeep, MissingDrop:
	default:
		return fmt.Errorf("invalid missing policy %q: must be %q or %q", o.Missing, MissingKeep, MissingDrop)
	}
	switch o.Duplicates {
	case "", DuplicateFail, DuplicateAverage:
	default:
		return fmt.Errorf("invalid duplicate policy %q: must be %q or %q", o.Duplicates, DuplicateFail, DuplicateAverage)
	}
	if o.TrendWindow < 0 {
		return fmt.Errorf("invalid trend window %d: must not be negative", o.TrendWindow)
	}
	return nil
}
