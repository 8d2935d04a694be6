package model

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned when a required field is missing or has the wrong shape.
var ErrMalformedPayload = errors.New("malformed payload")

func malformed(what string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedPayload, what, err)
}

func missing(what, field string) error {
	return fmt.Errorf("%w: %s: missing field %s", ErrMalformedPayload, what, field)
}
