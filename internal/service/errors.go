package service

import "errors"

var (
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrStorageFailure    = errors.New("storage failure")
	ErrJobNotFound       = errors.New("recalculation job not found")
	ErrRecalculationBusy = errors.New("recalculation already running")
)
