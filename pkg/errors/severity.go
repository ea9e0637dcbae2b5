// Package errors provides severity-aware error types for quotation runs.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// QuoteError is a structured error with context.
type QuoteError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	ItemID      string   `json:"item_id,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *QuoteError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("[%s] %s: %s (item: %s)", e.Severity, e.Code, e.Message, e.ItemID)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Error codes
const (
	ErrCodeLookupMiss      = "LOOKUP_MISS"
	ErrCodeRetrievalFailed = "RETRIEVAL_FAILED"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeAllocationDrift = "ALLOCATION_DRIFT"
)

// NewLookupMissError creates a recoverable error for a missing price entry.
func NewLookupMissError(key, itemID string) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeLookupMiss,
		Message:     fmt.Sprintf("No price found for: %s", key),
		Severity:    SeverityWarning,
		ItemID:      itemID,
		Recoverable: true,
	}
}

// NewRetrievalFailedError creates a recoverable error for a failed or timed
// out candidate retrieval. The affected item degrades to an empty candidate
// set.
func NewRetrievalFailedError(itemID string, cause error) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeRetrievalFailed,
		Message:     fmt.Sprintf("Candidate retrieval failed: %v", cause),
		Severity:    SeverityWarning,
		ItemID:      itemID,
		Recoverable: true,
	}
}

// NewInvalidInputError creates an error that rejects a single item before
// scoring. Sibling items are unaffected.
func NewInvalidInputError(reason, itemID string) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeInvalidInput,
		Message:     reason,
		Severity:    SeverityError,
		ItemID:      itemID,
		Recoverable: false,
	}
}

// NewAllocationDriftError creates an internal invariant violation: the sum of
// allocated ancillary costs deviates from the batch total beyond floating
// tolerance. Callers cannot remediate this; it signals an engine defect.
func NewAllocationDriftError(detail string) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeAllocationDrift,
		Message:     detail,
		Severity:    SeverityFatal,
		Recoverable: false,
	}
}
