package inventory

import (
	"errors"
	"time"
)

// Lot is the aggregate on-hand state for one product code. It is not a
// physical batch: repeated inbound deltas accumulate into the same row and
// only widen the observed date window.
type Lot struct {
	Code        string  `json:"code"`
	ProductName string  `json:"product_name"`
	Units       int64   `json:"units"`
	Kg          float64 `json:"kg"`
	// OldestDate and NewestDate are ISO yyyy-MM-dd strings; empty means the
	// date was never observed. Lexical order equals chronological order.
	OldestDate string `json:"oldest_date,omitempty"`
	NewestDate string `json:"newest_date,omitempty"`
}

// InboundDelta describes one import tuple. Applying the same delta twice
// accumulates: de-duplication belongs to the import pipeline, not here.
type InboundDelta struct {
	Code        string  `json:"code"`
	ProductName string  `json:"product_name"`
	Units       int64   `json:"units"`
	Kg          float64 `json:"kg"`
	OldestDate  string  `json:"oldest_date"`
	NewestDate  string  `json:"newest_date"`
}

// ErrNotFound indicates a missing inventory row.
var ErrNotFound = errors.New("inventory: lot not found")

// ErrInvalidQuantity indicates a negative units or kg input.
var ErrInvalidQuantity = errors.New("inventory: quantity must be >= 0")

// ErrInvalidDate indicates a date outside ISO yyyy-MM-dd.
var ErrInvalidDate = errors.New("inventory: date must be yyyy-MM-dd")

// ErrInsufficientStock triggered when an outbound movement would take the lot
// negative and the negative-stock guard is enabled.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

const dateLayout = "2006-01-02"

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// earlierDate returns the earlier of two ISO dates, treating empty as absent.
func earlierDate(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case b < a:
		return b
	default:
		return a
	}
}

// laterDate returns the later of two ISO dates, treating empty as absent.
func laterDate(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case b > a:
		return b
	default:
		return a
	}
}
