package handler

import (
	"errors"
	"net/http"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError carries an HTTP status code and a client-facing message key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string {
	return e.Key
}

// Message is the client-facing text: the key when set, otherwise the
// standard status text.
func (e HTTPError) Message() string {
	if e.Key != "" {
		return e.Key
	}
	return http.StatusText(e.Code)
}

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "Bad request"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "Not found"}
	ErrMethodNotAllowed    = HTTPError{Code: http.StatusMethodNotAllowed, Key: "Method not allowed"}
	ErrTooManyRequests     = HTTPError{Code: http.StatusTooManyRequests, Key: "Too many requests"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "Internal server error"}
)
