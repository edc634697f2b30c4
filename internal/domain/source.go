package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a charge raised against a contact, usually a tenant.
type Invoice struct {
	IssueDate   time.Time           `json:"issue_date"`
	DueDate     time.Time           `json:"due_date"`
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	ContactID   string              `json:"contact_id"`
	PropertyID  string              `json:"property_id"`
	Description string              `json:"description"`
	CategoryID  string              `json:"category_id"`
	SubType     SubType             `json:"sub_type"`
	Amount      decimal.NullDecimal `json:"amount"`
	PaidAmount  decimal.NullDecimal `json:"paid_amount"`
}

// Remaining returns amount minus paid, clamped at zero.
func (i *Invoice) Remaining() decimal.Decimal {
	rem := ValueOrZero(i.Amount).Sub(ValueOrZero(i.PaidAmount))
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// TransactionKind distinguishes plain payments from staff advances.
type TransactionKind string

const (
	TransactionKindPayment TransactionKind = "payment"
	TransactionKindAdvance TransactionKind = "advance"
)

// Transaction is money moving to or from a contact. Payments sharing a BatchID form a bulk payment.
type Transaction struct {
	Date        time.Time           `json:"date"`
	ID          string              `json:"id"`
	Kind        TransactionKind     `json:"kind"`
	ContactID   string              `json:"contact_id"`
	PropertyID  string              `json:"property_id"`
	InvoiceID   string              `json:"invoice_id"`
	BatchID     string              `json:"batch_id"`
	Method      string              `json:"method"`
	Description string              `json:"description"`
	CategoryID  string              `json:"category_id"`
	SubType     SubType             `json:"sub_type"`
	Amount      decimal.NullDecimal `json:"amount"`
}

// Payslip is a payroll obligation to a staff member.
type Payslip struct {
	PeriodStart time.Time           `json:"period_start"`
	PeriodEnd   time.Time           `json:"period_end"`
	IssueDate   time.Time           `json:"issue_date"`
	ID          string              `json:"id"`
	StaffID     string              `json:"staff_id"`
	Description string              `json:"description"`
	NetPay      decimal.NullDecimal `json:"net_pay"`
	PaidAmount  decimal.NullDecimal `json:"paid_amount"`
}

// Bill is a vendor charge against a property.
type Bill struct {
	Date        time.Time           `json:"date"`
	ID          string              `json:"id"`
	PropertyID  string              `json:"property_id"`
	VendorID    string              `json:"vendor_id"`
	Description string              `json:"description"`
	CategoryID  string              `json:"category_id"`
	Amount      decimal.NullDecimal `json:"amount"`
	PaidAmount  decimal.NullDecimal `json:"paid_amount"`
}

// ContactKind tells tenants, staff, investors and vendors apart.
type ContactKind string

const (
	ContactKindTenant   ContactKind = "tenant"
	ContactKindStaff    ContactKind = "staff"
	ContactKindInvestor ContactKind = "investor"
	ContactKindVendor   ContactKind = "vendor"
)

// Contact is any counterpart a record can point at.
type Contact struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Kind  ContactKind `json:"kind"`
	Phone string      `json:"phone"`
}

// Category groups records for accounting.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Property is a rentable unit.
type Property struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// Snapshot is a read-only copy of the records a view derives from.
type Snapshot struct {
	Invoices     []Invoice     `json:"invoices"`
	Transactions []Transaction `json:"transactions"`
	Payslips     []Payslip     `json:"payslips"`
	Bills        []Bill        `json:"bills"`
	Properties   []Property    `json:"properties"`
	Contacts     []Contact     `json:"contacts"`
	Categories   []Category    `json:"categories"`
}

// Lookup resolves foreign keys to display names.
type Lookup struct {
	Contacts   map[string]string
	Categories map[string]string
	Properties map[string]string
}

// NewLookup builds lookup tables from a snapshot.
func NewLookup(s *Snapshot) Lookup {
	l := Lookup{
		Contacts:   make(map[string]string, len(s.Contacts)),
		Categories: make(map[string]string, len(s.Categories)),
		Properties: make(map[string]string, len(s.Properties)),
	}
	for _, c := range s.Contacts {
		l.Contacts[c.ID] = c.Name
	}
	for _, c := range s.Categories {
		l.Categories[c.ID] = c.Name
	}
	for _, p := range s.Properties {
		l.Properties[p.ID] = p.Name
	}
	return l
}
