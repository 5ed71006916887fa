// Package common holds the wire types shared by the HTTP API and the
// messaging layer.
package common

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4.
type ID string

// Metadata is an open-ended key-value bag.
type Metadata map[string]string

// Timestamp is a time.Time alias with RFC 3339 JSON serialization.
type Timestamp time.Time

// Pagination defines parameters for paginated requests.
type Pagination struct {
	Page     int   `json:"page" form:"page"`
	PageSize int   `json:"page_size" form:"page_size"`
	Total    int64 `json:"total,omitempty"`
}

// ErrorDetail provides structured error information for API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// APIResponse is the generic wrapper for all API responses.
type APIResponse[T any] struct {
	Success    bool         `json:"success"`
	Data       T            `json:"data,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
	RequestID  string       `json:"request_id,omitempty"`
	Timestamp  Timestamp    `json:"timestamp"`
}

// HealthStatus indicates the health of a component or service.
type HealthStatus string

const (
	HealthUp       HealthStatus = "up"
	HealthDown     HealthStatus = "down"
	HealthDegraded HealthStatus = "degraded"
)

// ComponentHealth provides health information for a specific component.
type ComponentHealth struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Messaging
// ─────────────────────────────────────────────────────────────────────────────

// Message is a record received from the broker.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerMessage is a record to publish.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Partition int
	Timestamp time.Time
}

// MessageHandler processes one consumed message.  A non-nil error triggers
// the consumer's retry policy.
type MessageHandler func(ctx context.Context, msg *Message) error

// BatchItemError reports a failed item of a batch publish.  Index is -1 when
// the whole batch failed.
type BatchItemError struct {
	Index int
	Topic string
	Error error
}

// BatchPublishResult summarises a batch publish.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// TopicConfig describes a topic to create.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
	Configs           map[string]string
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks if the ID is a valid UUID.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("invalid ID format: %w", err)
	}
	return nil
}

// NewID generates a new UUID v4.
func NewID() ID {
	return ID(uuid.New().String())
}

// GenerateID generates a unique ID with an optional prefix.
func GenerateID(prefix string) string {
	if prefix == "" {
		return uuid.New().String()
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String())
}

// NewTimestamp returns the current UTC time as a Timestamp.
func NewTimestamp() Timestamp {
	return Timestamp(time.Now().UTC())
}

// MarshalJSON implements json.Marshaler, using RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// Validate checks if pagination parameters are within bounds.
func (p Pagination) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be >= 1")
	}
	if p.PageSize < 1 || p.PageSize > 500 {
		return fmt.Errorf("page_size must be between 1 and 500")
	}
	return nil
}

// Offset returns the index of the first item on the page, saturating at
// math.MaxInt for pages too far out to address.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Window returns the [start,end) bounds of the page within n items.  Pages
// past the end yield the empty window (n, n).
func (p Pagination) Window(n int) (start, end int) {
	start = min(p.Offset(), n)
	end = start + min(max(p.PageSize, 0), n-start)
	return start, end
}

// NewSuccessResponse creates a successful APIResponse.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success:   true,
		Data:      data,
		Timestamp: NewTimestamp(),
	}
}

// NewErrorResponse creates an error APIResponse.
func NewErrorResponse(code, message, detail string) APIResponse[any] {
	return APIResponse[any]{
		Success:   false,
		Error:     &ErrorDetail{Code: code, Message: message, Detail: detail},
		Timestamp: NewTimestamp(),
	}
}

// NewPaginatedResponse creates a successful paginated APIResponse.
func NewPaginatedResponse[T any](data T, pagination Pagination) APIResponse[T] {
	return APIResponse[T]{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
		Timestamp:  NewTimestamp(),
	}
}

// ContextKey is the type of request-scoped context keys.
type ContextKey string

const ContextKeyRequestID ContextKey = "request_id"
