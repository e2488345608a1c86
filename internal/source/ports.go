// Package source defines where raw price tables come from.
package source

import (
	"context"
	"errors"

	"fuelboard/internal/core"
)

// ErrNotFound is returned when the configured input does not exist.
var ErrNotFound = errors.New("source not found")

// Ports for outbound adapters.
type (
	// RowSource reads the full raw table on every call.
	RowSource interface {
		ReadRows(ctx context.Context) (core.Table, error)
	}

	// RecordWriter replaces the stored record set in one step.
	RecordWriter interface {
		ReplaceAll(ctx context.Context, records []core.PriceRecord) error
	}

	// Versioned sources expose a cheap change marker so pollers can skip
	// reloads when nothing changed.
	Versioned interface {
		Version(ctx context.Context) (string, error)
	}
)
