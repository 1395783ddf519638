// Package errors provides unified error handling for the kiosk.
// Codes follow the failure taxonomy of a capture action: camera, frame, encode, transport, server.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError.
type Code string

const (
	Unknown                Code = "UNKNOWN"
	Internal               Code = "INTERNAL"
	CameraPermissionDenied Code = "CAMERA_PERMISSION_DENIED"
	CameraUnavailable      Code = "CAMERA_UNAVAILABLE"
	FrameNotReady          Code = "FRAME_NOT_READY"
	EncodeFailed           Code = "ENCODE_FAILED"
	Transport              Code = "TRANSPORT"
	Decode                 Code = "DECODE"
	ServerRejected         Code = "SERVER_REJECTED"
	Busy                   Code = "BUSY"
	Closed                 Code = "CLOSED"
	ConfigInvalid          Code = "CONFIG_INVALID"
)

// httpStatusMap maps codes to the status returned by the kiosk API.
var httpStatusMap = map[Code]int{
	Unknown:                http.StatusInternalServerError,
	Internal:               http.StatusInternalServerError,
	CameraPermissionDenied: http.StatusForbidden,
	CameraUnavailable:      http.StatusServiceUnavailable,
	FrameNotReady:          http.StatusPreconditionFailed,
	EncodeFailed:           http.StatusInternalServerError,
	Transport:              http.StatusBadGateway,
	Decode:                 http.StatusBadGateway,
	ServerRejected:         http.StatusUnprocessableEntity,
	Busy:                   http.StatusConflict,
	Closed:                 http.StatusGone,
	ConfigInvalid:          http.StatusBadRequest,
}

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// Description is the text shown to a kiosk user: the cause's own text when
// there is one, so platform descriptions surface verbatim.
func (e *AppError) Description() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// HTTPStatus returns the status code used by the kiosk API.
func (e *AppError) HTTPStatus() int {
	if c, ok := httpStatusMap[e.Code]; ok {
		return c
	}
	return http.StatusInternalServerError
}

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// As extracts the outermost AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost AppError in err's chain, or Unknown.
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return Unknown
}

// IsCode checks if an error chain carries a specific error code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus returns the kiosk API status for any error.
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
