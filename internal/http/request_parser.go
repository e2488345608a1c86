package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"fuelboard/internal/pipeline"
)

// YearRange is an inclusive calendar-year filter.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ParseYearRange reads from and to from the query, defaulting each bound to
// the dataset's first and last year.
func ParseYearRange(q url.Values, first, last int) (YearRange, error) {
	r := YearRange{From: first, To: last}
	var err error
	if r.From, err = optionalInt(q, "from", first); err != nil {
		return YearRange{}, err
	}
	if r.To, err = optionalInt(q, "to", last); err != nil {
		return YearRange{}, err
	}
	if r.From > r.To {
		return YearRange{}, fmt.Errorf("%w: from %d is after to %d", pipeline.ErrInvalidRange, r.From, r.To)
	}
	return r, nil
}

// ParseWindow reads an optional positive trend window in months.
func ParseWindow(q url.Values, def int) (int, error) {
	n, err := optionalInt(q, "window", def)
	if err != nil {
		return 0, err
	}
	if n < 2 {
		return 0, errors.New("window must be at least 2 months")
	}
	return n, nil
}

func optionalInt(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
