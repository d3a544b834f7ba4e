// Package apperrors defines the canonical error taxonomy surfaced by the
// ledger core. Every error that crosses a service boundary is either one
// of the sentinels below (for errors.Is checks) or an *AppError wrapping
// one of them with a user-facing message and structured details.
package apperrors

import (
	"errors"
	"fmt"
)

// AppErrorCode is one of the canonical codes from the error handling design.
type AppErrorCode string

const (
	CodeValidationFailed      AppErrorCode = "VALIDATION_FAILED"
	CodeBusinessRuleViolation AppErrorCode = "BUSINESS_RULE_VIOLATION"
	CodeEntityNotFound        AppErrorCode = "ENTITY_NOT_FOUND"
	CodePeriodClosed          AppErrorCode = "PERIOD_CLOSED"
	CodeJournalAlreadyPosted  AppErrorCode = "JOURNAL_ALREADY_POSTED"
	CodeUnbalancedJournal     AppErrorCode = "UNBALANCED_JOURNAL"
	CodeInvalidHashChain      AppErrorCode = "INVALID_HASH_CHAIN"
	CodeIdempotencyConflict   AppErrorCode = "IDEMPOTENCY_CONFLICT"
)

// Sentinel errors for errors.Is checks; AppError wraps exactly one of these.
var (
	ErrValidation          = errors.New("validation failed")
	ErrBusinessRule        = errors.New("business rule violation")
	ErrNotFound            = errors.New("resource not found")
	ErrPeriodClosed        = errors.New("period is not open for posting")
	ErrAlreadyPosted       = errors.New("journal already posted")
	ErrUnbalanced          = errors.New("journal does not balance")
	ErrInvalidHashChain    = errors.New("hash chain verification failed")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different payload")
)

// AppError is the structured error carried across every core boundary.
// Details is a map of structured context (overlapping period ids, a
// duplicate number, posting/period bounds, ...) -- never a stack trace.
type AppError struct {
	Code    AppErrorCode
	Message string
	Details map[string]any
	cause   error
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap lets errors.Is(err, apperrors.ErrXxx) see through the wrapper.
func (e *AppError) Unwrap() error { return e.cause }

func newAppError(code AppErrorCode, cause error, message string, details map[string]any) *AppError {
	return &AppError{Code: code, Message: message, Details: details, cause: cause}
}

func Validation(message string, details map[string]any) *AppError {
	return newAppError(CodeValidationFailed, ErrValidation, message, details)
}

func BusinessRule(message string, details map[string]any) *AppError {
	return newAppError(CodeBusinessRuleViolation, ErrBusinessRule, message, details)
}

func NotFound(message string, details map[string]any) *AppError {
	return newAppError(CodeEntityNotFound, ErrNotFound, message, details)
}

func PeriodClosed(message string, details map[string]any) *AppError {
	return newAppError(CodePeriodClosed, ErrPeriodClosed, message, details)
}

func AlreadyPosted(message string, details map[string]any) *AppError {
	return newAppError(CodeJournalAlreadyPosted, ErrAlreadyPosted, message, details)
}

func Unbalanced(message string, details map[string]any) *AppError {
	return newAppError(CodeUnbalancedJournal, ErrUnbalanced, message, details)
}

func InvalidHashChain(message string, details map[string]any) *AppError {
	return newAppError(CodeInvalidHashChain, ErrInvalidHashChain, message, details)
}

func IdempotencyConflict(message string, details map[string]any) *AppError {
	return newAppError(CodeIdempotencyConflict, ErrIdempotencyConflict, message, details)
}

// CodeOf extracts the canonical code from any error in the chain, defaulting
// to an empty code for errors the core did not originate.
func CodeOf(err error) AppErrorCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
