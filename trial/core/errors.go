package core

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is the typed rejection of a command by a business rule.
// It carries the violated rule and, for status transitions, the statuses that
// would have been legal, so the caller can render an actionable message.
//
// Match with errors.As or IsValidationError, never by message substring.
type ValidationError struct {
	Rule      string   // short machine-readable rule identifier
	Message   string   // human-readable description of the violation
	ValidNext []string // legal target statuses, empty when not a transition rule
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.ValidNext) == 0 {
		return fmt.Sprintf("%s: %s", e.Rule, e.Message)
	}

	return fmt.Sprintf("%s: %s (valid next: %s)", e.Rule, e.Message, strings.Join(e.ValidNext, ", "))
}

// NewValidationError creates a ValidationError without transition context.
func NewValidationError(rule string, message string) *ValidationError {
	return &ValidationError{Rule: rule, Message: message}
}

// NewTransitionError creates a ValidationError for an illegal status
// transition, listing the transitions that would have been legal.
func NewTransitionError(rule string, message string, validNext []string) *ValidationError {
	return &ValidationError{Rule: rule, Message: message, ValidNext: validNext}
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IntegrityError reports a corrupted or undecodable stream: an unknown event
// type, a sequence gap, or an event that cannot apply to the aggregate it
// claims to belong to. It always indicates a bug or storage corruption, never
// a user mistake.
type IntegrityError struct {
	AggregateID    string
	SequenceNumber uint
	Reason         string
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("stream integrity violation for aggregate %s at sequence %d: %s",
		e.AggregateID, e.SequenceNumber, e.Reason)
}

// NewIntegrityError creates an IntegrityError.
func NewIntegrityError(aggregateID string, sequenceNumber uint, reason string) *IntegrityError {
	return &IntegrityError{AggregateID: aggregateID, SequenceNumber: sequenceNumber, Reason: reason}
}

// IsIntegrityError reports whether err is, or wraps, an IntegrityError.
func IsIntegrityError(err error) bool {
	var integrityErr *IntegrityError
	return errors.As(err, &integrityErr)
}
