// Package errors defines the typed error taxonomy docvault uses to
// classify failures that happen while scanning, converting, and
// persisting documents (see spec.md §7).
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies an error for logging and IngestState bookkeeping.
type ErrorType string

const (
	// ErrorTypeMetadataUnavailable marks a scan-time probe failure; the
	// coordinator treats this as a skip, never a recorded Document.
	ErrorTypeMetadataUnavailable ErrorType = "metadata_unavailable"
	// ErrorTypeUnsupported marks dispatch to an extension with no
	// registered handler.
	ErrorTypeUnsupported ErrorType = "unsupported_type"
	// ErrorTypeHandlerFailure marks a converter that returned success=false.
	ErrorTypeHandlerFailure ErrorType = "handler_failure"
	// ErrorTypeProviderChainExhausted marks every image/LLM provider failing.
	ErrorTypeProviderChainExhausted ErrorType = "provider_chain_exhausted"
	// ErrorTypeEmptyConversion marks a handler that produced no content.
	ErrorTypeEmptyConversion ErrorType = "empty_conversion"
	// ErrorTypeStore marks a Document/IngestState persistence failure.
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfig marks a configuration validation failure.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeCancelled marks a cooperative stop observed mid-run.
	ErrorTypeCancelled ErrorType = "cancelled"
	// ErrorTypeCritical marks an unexpected exception in the coordinator.
	ErrorTypeCritical ErrorType = "critical"
)

// IngestError is the error value every ingestion-path failure is wrapped
// in. It is never raised across a handler boundary — handlers return it
// as part of a ConversionResult. The coordinator's outer recover
// boundary reports a panic as a plain "panic: ..." error, not as one.
type IngestError struct {
	Type       ErrorType
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
	Recoverable bool
}

// NewIngestError creates a new error with context.
func NewIngestError(errType ErrorType, op string, err error) *IngestError {
	return &IngestError{
		Type:      errType,
		Operation: op,
		Underlying: err,
		Timestamp: time.Now(),
	}
}

// WithFile attaches the file path this error occurred on.
func (e *IngestError) WithFile(path string) *IngestError {
	e.FilePath = path
	return e
}

// WithRecoverable marks whether retry_document may retry this error.
func (e *IngestError) WithRecoverable(recoverable bool) *IngestError {
	e.Recoverable = recoverable
	return e
}

// Error implements the error interface.
func (e *IngestError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *IngestError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether retry_document may retry this error.
func (e *IngestError) IsRecoverable() bool {
	return e.Recoverable
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// ProviderAttempt records one provider's failed attempt inside a
// provider-chain exhaustion error (spec.md §4.5 step 4).
type ProviderAttempt struct {
	Provider string
	Err      error
}

// ProviderChainError aggregates every provider attempt when a fallback
// chain is fully exhausted. Its Error() joins attempts with "; " so the
// resulting message (spec.md §8) contains a substring per provider.
type ProviderChainError struct {
	Attempts []ProviderAttempt
}

// NewProviderChainError builds the aggregate error from provider attempts.
func NewProviderChainError(attempts []ProviderAttempt) *ProviderChainError {
	return &ProviderChainError{Attempts: attempts}
}

func (e *ProviderChainError) Error() string {
	if len(e.Attempts) == 0 {
		return "provider chain exhausted: no providers configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	msg := parts[0]
	for _, p := range parts[1:] {
		msg += "; " + p
	}
	return msg
}

// MultiError aggregates independent errors (e.g. cleanup failures that
// should not mask the primary error).
type MultiError struct {
	Errors []error
}

// NewMultiError creates a multi-error, discarding any nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}
