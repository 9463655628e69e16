package model

import "errors"

var (
	ErrDegenerateAverage = errors.New("series average is zero or not finite")
	ErrDegenerateBounds  = errors.New("normalization bounds are equal or not finite")
	ErrDegenerateRatio   = errors.New("average ratio is zero or not finite")
	ErrMalformedPayload  = errors.New("malformed market data payload")
	ErrNoDataset         = errors.New("no market dataset available")
	ErrStaleDataset      = errors.New("serving cached market dataset")
	ErrRefreshInProgress = errors.New("refresh is already in progress")
	ErrUnknownWindow     = errors.New("unknown market data window")
	ErrChartLayout       = errors.New("invalid chart layout")
	ErrInvalidInput      = errors.New("invalid input")
)

// StaleDatasetError is returned together with a cached dataset when the fetch failed.
type StaleDatasetError struct {
	Cause error
}

func (e *StaleDatasetError) Error() string {
	return ErrStaleDataset.Error() + ": " + e.Cause.Error()
}

func (e *StaleDatasetError) Unwrap() []error {
	return []error{ErrStaleDataset, e.Cause}
}
