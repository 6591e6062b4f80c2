package models

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest     = errors.New("request is malformed")
	ErrForbidden      = errors.New("operation is not allowed in current state")
	ErrNoTender       = errors.New("requested tender does not exist")
	ErrNoLot          = errors.New("requested lot does not exist")
	ErrNoComplaint    = errors.New("requested complaint does not exist")
	ErrUnprocessable  = errors.New("request data does not fit the tender")
	ErrConflict       = errors.New("tender was modified concurrently")
	ErrTenderFinished = errors.New("tender is already complete, cancelled or unsuccessful")
)

// RequestError is a client facing error bound to a request location and
// field, in the shape the API reports errors.
type RequestError struct {
	Location    string
	Name        string
	Description string
	Err         error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s.%s: %s", e.Err, e.Location, e.Name, e.Description)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func Forbidden(format string, args ...any) error {
	return &RequestError{Location: "body", Name: "data", Description: fmt.Sprintf(format, args...), Err: ErrForbidden}
}

func Unprocessable(name, format string, args ...any) error {
	return &RequestError{Location: "body", Name: name, Description: fmt.Sprintf(format, args...), Err: ErrUnprocessable}
}

func NotFound(name string, err error) error {
	return &RequestError{Location: "url", Name: name, Description: "Not Found", Err: err}
}
