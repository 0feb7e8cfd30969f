package pricecache

import (
	"errors"
	"fmt"
)

// PriceFetchError reports a failed upstream price fetch. The stored
// snapshot is never modified when one is returned.
type PriceFetchError struct {
	Status  int // upstream HTTP status, 0 when the request never completed
	Message string
	Err     error
}

func (e *PriceFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("price fetch failed (status %d): %s", e.Status, e.Message)
	}
	return "price fetch failed: " + e.Message
}

func (e *PriceFetchError) Unwrap() error { return e.Err }

// statusCoder is implemented by fetcher errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

func asFetchError(err error) *PriceFetchError {
	var pfe *PriceFetchError
	if errors.As(err, &pfe) {
		return pfe
	}
	out := &PriceFetchError{Message: err.Error(), Err: err}
	var sc statusCoder
	if errors.As(err, &sc) {
		out.Status = sc.HTTPStatus()
	}
	return out
}
