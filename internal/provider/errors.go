package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrTickerNotFound is returned when the data source does not know the ticker
	ErrTickerNotFound = errors.New("ticker not found")
	// ErrNoStatements is returned when no statement period ends on or before asOf
	ErrNoStatements = errors.New("no financial statements available")
)

// MetricsUnavailableError reports that metrics for a ticker could not be obtained.
// The agent turns it into a placeholder entry rather than failing the batch.
type MetricsUnavailableError struct {
	Ticker string
	Err    error
}

func (e *MetricsUnavailableError) Error() string {
	return fmt.Sprintf("metrics unavailable for %s: %v", e.Ticker, e.Err)
}

func (e *MetricsUnavailableError) Unwrap() error {
	return e.Err
}

func unavailable(ticker string, err error) error {
	var mu *MetricsUnavailableError
	if errors.As(err, &mu) {
		return err
	}
	return &MetricsUnavailableError{Ticker: ticker, Err: err}
}
