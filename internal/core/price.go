// Package core provides the price data model shared by the pipeline,
// the sources and the HTTP layer.
//
// This file contains the nullable Price value and the parsing rules applied
// to raw price cells.
package core

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidPrice = errors.New("invalid price")

// Price is a nullable decimal. The zero value is null.
type Price struct {
	Value float64
	Valid bool
}

// Null is the missing price.
var Null = Price{}

// Some wraps v as a present price. NaN and infinities become null.
func Some(v float64) Price {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null
	}
	return Price{Value: v, Valid: true}
}

// Sub returns p - q, or null when either side is null.
func (p Price) Sub(q Price) Price {
	if !p.Valid || !q.Valid {
		return Null
	}
	return Some(p.Value - q.Value)
}

// PctChange returns (p - prior) / prior as a fraction.
// Null when either side is null or prior is zero.
func (p Price) PctChange(prior Price) Price {
	if !p.Valid || !prior.Valid || prior.Value == 0 {
		return Null
	}
	return Some((p.Value - prior.Value) / prior.Value)
}

// Ptr returns a pointer to the value, nil when null.
func (p Price) Ptr() *float64 {
	if !p.Valid {
		return nil
	}
	v := p.Value
	return &v
}

// Format renders the price with the given precision, or "" when null.
func (p Price) Format(prec int) string {
	if !p.Valid {
		return ""
	}
	return strconv.FormatFloat(p.Value, 'f', prec, 64)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

func (p *Price) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = Null
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Some(v)
	return nil
}

// ParsePrice converts a raw cell into a Price.
//
// Blank cells (and common placeholders such as "NA" or "-") are null without
// error. A leading "$" and surrounding whitespace are ignored. A comma is
// accepted as decimal separator when the value has no dot. Anything else that
// is not a finite number returns ErrInvalidPrice.
//
// Examples:
//
//	ParsePrice("3.129")  -> 3.129
//	ParsePrice("$3.10")  -> 3.10
//	ParsePrice("3,25")   -> 3.25
//	ParsePrice("")       -> null, nil
//	ParsePrice("n/a")    -> null, nil
//	ParsePrice("abc")    -> null, ErrInvalidPrice
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "n/a", "nan", "null", "-":
		return Null, nil
	}
	s = strings.TrimPrefix(s, "$")
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Null, ErrInvalidPrice
	}
	return Some(v), nil
}

// Mean averages the present values. Null when none are present.
func Mean(prices []Price) Price {
	var sum float64
	n := 0
	for _, p := range prices {
		if !p.Valid {
			continue
		}
		sum += p.Value
		n++
	}
	if n == 0 {
		return Null
	}
	return Some(sum / float64(n))
}
