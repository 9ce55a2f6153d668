package statement

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finbook/internal/models"
)

// ParsedTransaction is one bank-statement line item as seen by the tagging
// step. Amount is always a non-negative magnitude; direction is carried by
// Type. The ID is assigned at parse time and is not stable across re-parses.
type ParsedTransaction struct {
	ID          string                     `json:"id"`
	Date        time.Time                  `json:"date"`
	Description string                     `json:"description"`
	Amount      decimal.Decimal            `json:"amount"`
	Type        models.TransactionType     `json:"type"`
	Category    models.TransactionCategory `json:"category,omitempty"`
	Suggestion  *CategorySuggestion        `json:"category_suggestion,omitempty"`
	Selected    bool                       `json:"selected"`
	BatchID     string                     `json:"batch_id,omitempty"`
}

// CategorySuggestion is advisory metadata. It never populates Category on
// its own; existing explicit categories are never overwritten.
type CategorySuggestion struct {
	Category   models.TransactionCategory `json:"category"`
	Confidence float64                    `json:"confidence"`
}

// ColumnMapping assigns column indexes to semantic fields. -1 means
// unmapped. Type is optional; the other three are required for a mapping
// to be usable.
type ColumnMapping struct {
	Date        int `json:"date"`
	Description int `json:"description"`
	Amount      int `json:"amount"`
	Type        int `json:"type"`
}

func (m ColumnMapping) Usable() bool {
	return m.Date >= 0 && m.Description >= 0 && m.Amount >= 0
}

// ErrorKind classifies pipeline failures. Each kind carries its own retry
// policy: only KindNetwork is retryable, everything else fails fast.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNetwork      ErrorKind = "network"
	KindAuth         ErrorKind = "auth"
	KindProvider     ErrorKind = "provider"
	KindContent      ErrorKind = "content"
	KindPDFTechnical ErrorKind = "pdf_technical"
)

// ParseError is the classified failure type surfaced by the parse pipeline.
// Every remote-call failure path resolves to one of these before giving up,
// so callers branch on Kind instead of string-matching messages.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(kind ErrorKind, message string) *ParseError {
	return &ParseError{Kind: kind, Message: message}
}

func WrapParseError(kind ErrorKind, message string, err error) *ParseError {
	return &ParseError{Kind: kind, Message: message, Err: err}
}

// Retryable reports whether the error is a transient transport failure
// worth another attempt.
func Retryable(err error) bool {
	return KindOf(err) == KindNetwork
}

// KindOf extracts the error kind, defaulting to KindNetwork for
// unclassified errors so unknown transport failures stay retryable.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindNetwork
}
