package analytics

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEvent     = errors.New("invalid rating event")
	ErrInsufficientData = errors.New("insufficient data")
	ErrDataSource       = errors.New("data source failure")

	ErrRecalculationPartial = errors.New("recalculation partially failed")
)

// InvalidEventError rejects a malformed event before it reaches a bucket.
type InvalidEventError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid rating event %d: %s: %s", e.Index, e.Field, e.Reason)
}

func (e *InvalidEventError) Unwrap() error { return ErrInvalidEvent }

// DataSourceError wraps a failed or timed out read from the rating source.
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() []error { return []error{ErrDataSource, e.Err} }

// RequireSample returns ErrInsufficientData when n is below min.
func RequireSample(n, min int) error {
	if n < min {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, n, min)
	}
	return nil
}
