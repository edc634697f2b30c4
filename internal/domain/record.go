package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordType is the kind of a ledger row. Direction is carried by the type, never by the sign.
type RecordType string

const (
	RecordTypeInvoice     RecordType = "Invoice"
	RecordTypePayment     RecordType = "Payment"
	RecordTypeBulkPayment RecordType = "BulkPayment"
	RecordTypePayslip     RecordType = "Payslip"
	RecordTypeAdvance     RecordType = "Advance"
	RecordTypeBill        RecordType = "Bill"
)

var validRecordTypes = map[RecordType]bool{
	RecordTypeInvoice:     true,
	RecordTypePayment:     true,
	RecordTypeBulkPayment: true,
	RecordTypePayslip:     true,
	RecordTypeAdvance:     true,
	RecordTypeBill:        true,
}

// IsValid checks if the record type is known.
func (t RecordType) IsValid() bool {
	return validRecordTypes[t]
}

// IsPayable reports whether rows of this type add to what is owed.
func (t RecordType) IsPayable() bool {
	return t == RecordTypeInvoice || t == RecordTypePayslip || t == RecordTypeBill
}

// IsPaid reports whether rows of this type settle what is owed.
func (t RecordType) IsPaid() bool {
	return t == RecordTypePayment || t == RecordTypeBulkPayment || t == RecordTypeAdvance
}

// SubType refines a record for display. It is either authoritative (entered with the record)
// or inferred from free text for legacy data.
type SubType string

const (
	SubTypeNone            SubType = ""
	SubTypeRent            SubType = "Rent"
	SubTypeSecurityDeposit SubType = "SecurityDeposit"
	SubTypeSalary          SubType = "Salary"
	SubTypeMaintenance     SubType = "Maintenance"
	SubTypeUtility         SubType = "Utility"
	SubTypeOther           SubType = "Other"
)

var validSubTypes = map[SubType]bool{
	SubTypeRent:            true,
	SubTypeSecurityDeposit: true,
	SubTypeSalary:          true,
	SubTypeMaintenance:     true,
	SubTypeUtility:         true,
	SubTypeOther:           true,
}

// IsValid checks if the sub-type is a known, non-empty value.
func (s SubType) IsValid() bool {
	return validSubTypes[s]
}

// LedgerRecord is the uniform row every domain record is normalized into.
type LedgerRecord struct {
	Date time.Time
	Raw  any // source record, read only

	ID              string
	Type            RecordType
	SubType         SubType
	SubTypeInferred bool
	CounterpartID   string
	CounterpartName string
	PropertyID      string
	Description     string
	Category        string
	BatchID         string

	Amount      decimal.Decimal
	AmountValid bool
	PaidAmount  decimal.Decimal
	Remaining   *decimal.Decimal

	Children []LedgerRecord
}

// Label returns the display type label, e.g. "Invoice (Rent)".
func (r LedgerRecord) Label() string {
	if r.SubType == SubTypeNone {
		return string(r.Type)
	}
	return string(r.Type) + " (" + string(r.SubType) + ")"
}

// Payable is the amount this row adds to what is owed. Invalid amounts contribute zero.
func (r LedgerRecord) Payable() decimal.Decimal {
	if !r.AmountValid || !r.Type.IsPayable() {
		return decimal.Zero
	}
	return r.Amount
}

// Paid is the amount this row settles. Invalid amounts contribute zero.
func (r LedgerRecord) Paid() decimal.Decimal {
	if !r.AmountValid || !r.Type.IsPaid() {
		return decimal.Zero
	}
	return r.Amount
}

// IsFullyPaid reports whether an invoice-like row has no meaningful remaining balance.
func (r LedgerRecord) IsFullyPaid() bool {
	if r.Remaining == nil {
		return false
	}
	return IsSettled(*r.Remaining)
}

// BelongsTo reports whether the row is attached to the given contact or property. A bulk
// payment also belongs to every entity one of its children belongs to.
func (r LedgerRecord) BelongsTo(entityID string) bool {
	if entityID == "" {
		return false
	}
	if r.CounterpartID == entityID || r.PropertyID == entityID {
		return true
	}
	for _, c := range r.Children {
		if c.BelongsTo(entityID) {
			return true
		}
	}
	return false
}
