package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxPaymentAmount = "1000000000000" // 1 trillion
	MinPaymentAmount = "0.01"
	MaxAllocations   = 500
	MaxSearchLength  = 200
)

var phoneDigits = regexp.MustCompile(`\d+`)

// ValidateAmount validates a payment or allocation amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount := decimal.RequireFromString(MinPaymentAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrInvalidAmount, MinPaymentAmount)
	}

	maxAmount := decimal.RequireFromString(MaxPaymentAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxPaymentAmount)
	}

	return nil
}

// ValidateBulkPayment checks a bulk payment against the invoices it settles. It runs before any
// write so that an over-allocation is rejected as a whole.
func ValidateBulkPayment(b *BulkPayment, invoices map[string]*Invoice) error {
	if len(b.Allocations) == 0 {
		return ErrEmptyAllocation
	}
	if len(b.Allocations) > MaxAllocations {
		return fmt.Errorf("%w: at most %d allocations", ErrInvalidAmount, MaxAllocations)
	}

	seen := make(map[string]bool, len(b.Allocations))
	for _, a := range b.Allocations {
		if seen[a.InvoiceID] {
			return fmt.Errorf("%w: %s", ErrDuplicateAllocation, a.InvoiceID)
		}
		seen[a.InvoiceID] = true

		if err := ValidateAmount(a.Amount); err != nil {
			return fmt.Errorf("invoice %s: %w", a.InvoiceID, err)
		}

		inv, ok := invoices[a.InvoiceID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvoiceNotFound, a.InvoiceID)
		}
		if b.ContactID != "" && inv.ContactID != b.ContactID {
			return fmt.Errorf("%w: %s", ErrContactMismatch, a.InvoiceID)
		}

		due := inv.Remaining()
		if Exceeds(a.Amount, due) {
			return fmt.Errorf("%w: invoice %s due %s, allocated %s",
				ErrPaymentExceedsDue, a.InvoiceID, due.StringFixed(2), a.Amount.StringFixed(2))
		}
	}

	return nil
}

// NormalizePhone keeps digits only, so "+91 98765-43210" and "919876543210" compare equal.
func NormalizePhone(phone string) (string, error) {
	digits := strings.Join(phoneDigits.FindAllString(phone, -1), "")
	if len(digits) < 7 || len(digits) > 15 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}
	return digits, nil
}

// ValidateSearch trims and bounds a free-text query.
func ValidateSearch(q string) (string, error) {
	q = strings.TrimSpace(q)
	if len(q) > MaxSearchLength {
		return "", fmt.Errorf("%w: search exceeds %d characters", ErrInvalidFilter, MaxSearchLength)
	}
	return q, nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
