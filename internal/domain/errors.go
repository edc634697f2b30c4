package domain

import "errors"

var (
	// Record errors
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrContactNotFound = errors.New("contact not found")

	// Payment errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrPaymentExceedsDue   = errors.New("payment amount exceeds invoice due balance")
	ErrEmptyAllocation     = errors.New("bulk payment needs at least one allocation")
	ErrDuplicateAllocation = errors.New("invoice allocated more than once")
	ErrContactMismatch     = errors.New("invoice belongs to a different contact")

	// View errors
	ErrInvalidFilter  = errors.New("invalid filter")
	ErrInvalidSortKey = errors.New("invalid sort key")
	ErrInvalidFormat  = errors.New("unsupported export format")

	// Chat errors
	ErrStaleConversation = errors.New("event does not belong to the active conversation")
	ErrUnknownEvent      = errors.New("unknown message event")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrEmptyMessage      = errors.New("message body is empty")
)
