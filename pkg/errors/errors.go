// Package errors provides the structured error type shared by every layer of
// SeqPrep.  The preprocessing core, the infrastructure adapters and the
// interfaces all return *AppError so that callers can branch on a typed code
// (IsCode / GetCode) and the HTTP layer can map it to a status.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call stack starting skip frames above the
// caller of captureStack.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout SeqPrep.
// It supports errors.Is / errors.As / errors.Unwrap through Unwrap.
//
// Usage:
//
//	return errors.New(errors.CodeIndexOutOfRange, "index 7 out of range")
//	return errors.Wrap(err, errors.CodePersistence, "failed to load vocabulary").
//	           WithDetail("path=" + path)
type AppError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description.
	Message string

	// Detail carries supplementary context (paths, indices, strategy names).
	Detail string

	// Cause is the underlying error, if any.
	Cause error

	// Stack is the call stack captured by New and Wrap.  It is not part of
	// Error() output.
	Stack string
}

// Error implements the error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when
// empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builder methods
// ─────────────────────────────────────────────────────────────────────────────

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps err.  A nil err yields nil so Wrap
// can be used inline.  When code is CodeUnknown and err already carries an
// AppError, the original code is preserved.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether err's chain carries CodeNotFound or
// CodeTokenNotFound.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound) || IsCode(err, CodeTokenNotFound)
}

// IsConfiguration reports whether err's chain carries one of the
// configuration codes.
func IsConfiguration(err error) bool {
	return IsCode(err, CodeUnknownStrategy) || IsCode(err, CodeInvalidConfig)
}

// GetCode extracts the code of the first *AppError in err's chain.
// A nil err yields CodeOK; an err without AppError yields CodeUnknown.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories
// ─────────────────────────────────────────────────────────────────────────────

// IndexOutOfRange reports a primitive edit addressed past the current
// sequence length.
func IndexOutOfRange(idx, length int) *AppError {
	return &AppError{
		Code:    CodeIndexOutOfRange,
		Message: "sequence index out of range",
		Detail:  fmt.Sprintf("index=%d length=%d", idx, length),
		Stack:   captureStack(1),
	}
}

// InvalidConfig constructs a CodeInvalidConfig AppError.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidConfig,
		Message: message,
		Stack:   captureStack(1),
	}
}

// UnknownStrategy constructs a CodeUnknownStrategy AppError naming the stage
// kind and the unresolved strategy name.
func UnknownStrategy(kind, name string) *AppError {
	return &AppError{
		Code:    CodeUnknownStrategy,
		Message: "unknown " + kind + " strategy",
		Detail:  fmt.Sprintf("name=%q", name),
		Stack:   captureStack(1),
	}
}

// Persistence wraps an I/O or decoding failure of a persisted vocabulary.
func Persistence(err error, message string) *AppError {
	return &AppError{
		Code:    CodePersistence,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidParam,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}
