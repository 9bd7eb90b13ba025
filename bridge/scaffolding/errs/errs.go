// Package errs provides the error type returned by HTTP handlers.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrCode identifies a category of failure. Its value is part of the wire
// format, so clients may branch on it.
type ErrCode string

// Error codes understood by the middleware and the client.
const (
	InvalidArgument ErrCode = "invalid_argument"
	Unauthenticated ErrCode = "unauthenticated"
	TokenExpired    ErrCode = "token_expired"
	NotFound        ErrCode = "not_found"
	AlreadyExists   ErrCode = "already_exists"
	Internal        ErrCode = "internal"

	// InternalOnlyLog is logged in full but reported to the caller as a bare
	// internal error.
	InternalOnlyLog ErrCode = "internal_only_log"
)

var httpStatus = map[ErrCode]int{
	InvalidArgument: http.StatusBadRequest,
	Unauthenticated: http.StatusUnauthorized,
	TokenExpired:    http.StatusUnauthorized,
	NotFound:        http.StatusNotFound,
	AlreadyExists:   http.StatusConflict,
	Internal:        http.StatusInternalServerError,
	InternalOnlyLog: http.StatusInternalServerError,
}

// Error is an application error that knows its HTTP status and where it was
// created.
type Error struct {
	Code     ErrCode `json:"code"`
	Message  string  `json:"message"`
	FuncName string  `json:"-"`
	FileName string  `json:"-"`
}

// New wraps err with a code.
func New(code ErrCode, err error) *Error {
	fn, file := caller()
	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: fn,
		FileName: file,
	}
}

// Newf formats a message with a code.
func Newf(code ErrCode, format string, v ...any) *Error {
	fn, file := caller()
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, v...),
		FuncName: fn,
		FileName: file,
	}
}

func caller() (string, string) {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown", "unknown"
	}
	return runtime.FuncForPC(pc).Name(), fmt.Sprintf("%s:%d", file, line)
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Encode implements web.Encoder.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web package's status hook.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// IsError reports whether err carries an *Error.
func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// GetError returns the *Error carried by err, or nil.
func GetError(err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}
	return e
}
