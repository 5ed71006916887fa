package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes follow the "<MODULE>_<NNN>" convention.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_017"
	ErrCodeMessagingError     ErrorCode = "COMMON_018"
)

// Sequence Error Codes
const (
	ErrCodeIndexOutOfRange ErrorCode = "SEQ_001"
	ErrCodeMalformedFASTA  ErrorCode = "SEQ_002"
	ErrCodeEmptySequence   ErrorCode = "SEQ_003"
)

// Configuration Error Codes
const (
	ErrCodeUnknownStrategy ErrorCode = "CFG_001"
	ErrCodeInvalidConfig   ErrorCode = "CFG_002"
)

// Vocabulary Error Codes
const (
	ErrCodePersistence       ErrorCode = "VOC_001"
	ErrCodeConstruction      ErrorCode = "VOC_002"
	ErrCodeTokenNotFound     ErrorCode = "VOC_003"
	ErrCodeVocabularyMissing ErrorCode = "VOC_004"
)

// Short aliases used at call sites.
const (
	CodeOK                = ErrorCode("OK")
	CodeUnknown           = ErrorCode("UNKNOWN")
	CodeInternal          = ErrCodeInternal
	CodeInvalidParam      = ErrCodeBadRequest
	CodeNotFound          = ErrCodeNotFound
	CodeTimeout           = ErrCodeTimeout
	CodeSerialization     = ErrCodeSerialization
	CodeCacheError        = ErrCodeCacheError
	CodeStorageError      = ErrCodeStorageError
	CodeMessageQueueError = ErrCodeMessagingError
	CodeIndexOutOfRange   = ErrCodeIndexOutOfRange
	CodeMalformedFASTA    = ErrCodeMalformedFASTA
	CodeEmptySequence     = ErrCodeEmptySequence
	CodeUnknownStrategy   = ErrCodeUnknownStrategy
	CodeInvalidConfig     = ErrCodeInvalidConfig
	CodePersistence       = ErrCodePersistence
	CodeConstruction      = ErrCodeConstruction
	CodeTokenNotFound     = ErrCodeTokenNotFound
	CodeVocabularyMissing = ErrCodeVocabularyMissing
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusBadGateway,
	ErrCodeMessagingError:     http.StatusBadGateway,

	ErrCodeIndexOutOfRange: http.StatusUnprocessableEntity,
	ErrCodeMalformedFASTA:  http.StatusBadRequest,
	ErrCodeEmptySequence:   http.StatusBadRequest,

	ErrCodeUnknownStrategy: http.StatusBadRequest,
	ErrCodeInvalidConfig:   http.StatusBadRequest,

	ErrCodePersistence:       http.StatusInternalServerError,
	ErrCodeConstruction:      http.StatusInternalServerError,
	ErrCodeTokenNotFound:     http.StatusNotFound,
	ErrCodeVocabularyMissing: http.StatusServiceUnavailable,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessagingError:     "message broker error",

	ErrCodeIndexOutOfRange: "sequence index out of range",
	ErrCodeMalformedFASTA:  "malformed FASTA input",
	ErrCodeEmptySequence:   "empty sequence",

	ErrCodeUnknownStrategy: "unknown strategy",
	ErrCodeInvalidConfig:   "invalid configuration",

	ErrCodePersistence:       "vocabulary persistence failed",
	ErrCodeConstruction:      "vocabulary construction failed",
	ErrCodeTokenNotFound:     "token not found",
	ErrCodeVocabularyMissing: "vocabulary not loaded",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
