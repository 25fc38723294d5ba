package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// StoreError is any failure reported by the record store. Code is the
// backend's own code (SQLSTATE, SQLite result code) when one is available.
type StoreError struct {
	Op      string // "insert" | "update" | "select"
	Table   string
	Code    string
	Message string
	Cause   error
}

// StoreErrorCode is used when the backend does not expose a code.
const StoreErrorCode = "STORE_ERROR"

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %s: %s", e.Op, e.Table, e.Code, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrDatabase) match every store failure.
func (e *StoreError) Is(target error) bool {
	return target == ErrDatabase
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorCode extracts a stable code from err for callers that report failures
// as data: StoreError and AppError codes, otherwise a generic one.
func ErrorCode(err error) string {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrValidation) {
		return "INVALID_INPUT"
	}
	return "INTERNAL"
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}
