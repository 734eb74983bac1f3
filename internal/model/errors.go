package model

import (
	"errors"
	"fmt"
)

// ErrNoData is the cause carried by NoDataError and by price lookups that found nothing.
var ErrNoData = errors.New("no data")

// ValidationError rejects malformed input before any provider call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NoDataError reports that the provider returned zero bars for a ticker.
type NoDataError struct {
	Ticker string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data found for %s", e.Ticker)
}

func (e *NoDataError) Unwrap() error { return ErrNoData }

// FetchError wraps a transport or provider failure. It is retryable by the caller.
type FetchError struct {
	Provider string
	Op       string
	Ticker   string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Provider, e.Op, e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ComputationError reports a series that violates the indicator engine's input contract.
type ComputationError struct {
	Index  int
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("malformed series at bar %d: %s", e.Index, e.Reason)
}

// IsRetryable reports whether err is worth retrying by an outer layer.
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && !errors.Is(err, ErrNoData)
}
