package ledger_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
)

func amt(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC)
}

func fixtureSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Contacts: []domain.Contact{
			{ID: "t1", Name: "Alice Tenant", Kind: domain.ContactKindTenant},
			{ID: "t2", Name: "bob renter", Kind: domain.ContactKindTenant},
			{ID: "s1", Name: "Sam Staff", Kind: domain.ContactKindStaff},
			{ID: "v1", Name: "Volt Electric", Kind: domain.ContactKindVendor},
		},
		Categories: []domain.Category{
			{ID: "c-rent", Name: "Rental income"},
			{ID: "c-util", Name: "Utilities"},
		},
		Properties: []domain.Property{
			{ID: "p1", Name: "B1-F2-U3", OwnerID: "o1"},
		},
		Invoices: []domain.Invoice{
			{ID: "inv-1", ContactID: "t1", PropertyID: "p1", IssueDate: day(2024, 1, 1), Amount: amt("1000"), PaidAmount: amt("1000"), Description: "January rent", SubType: domain.SubTypeRent},
			{ID: "inv-2", ContactID: "t1", PropertyID: "p1", IssueDate: day(2024, 2, 1), Amount: amt("1000"), PaidAmount: amt("400"), Description: "February rent"},
			{ID: "inv-3", ContactID: "t2", PropertyID: "p1", IssueDate: day(2024, 2, 10), Amount: amt("500"), PaidAmount: amt("0"), Description: "Security deposit"},
			{ID: "inv-4", ContactID: "ghost", IssueDate: day(2024, 3, 1), Amount: decimal.NullDecimal{}, Description: "Imported row"},
		},
		Transactions: []domain.Transaction{
			{ID: "tx-1", Kind: domain.TransactionKindPayment, ContactID: "t1", PropertyID: "p1", InvoiceID: "inv-1", Date: day(2024, 1, 5), Amount: amt("1000"), Description: "Cash"},
			{ID: "tx-2", Kind: domain.TransactionKindPayment, ContactID: "t1", PropertyID: "p1", InvoiceID: "inv-2", BatchID: "batch-1", Date: day(2024, 2, 6), Amount: amt("300"), Description: "Bank"},
			{ID: "tx-3", Kind: domain.TransactionKindPayment, ContactID: "t1", PropertyID: "p1", InvoiceID: "inv-2", BatchID: "batch-1", Date: day(2024, 2, 5), Amount: amt("100"), Description: "Bank"},
			{ID: "tx-4", Kind: domain.TransactionKindAdvance, ContactID: "s1", Date: day(2024, 2, 15), Amount: amt("200"), Description: "Salary advance"},
		},
		Payslips: []domain.Payslip{
			{ID: "ps-1", StaffID: "s1", IssueDate: day(2024, 2, 28), NetPay: amt("1500"), PaidAmount: amt("200"), Description: "February payroll"},
		},
		Bills: []domain.Bill{
			{ID: "bill-1", PropertyID: "p1", VendorID: "v1", Date: day(2024, 2, 20), Amount: amt("120"), PaidAmount: amt("0"), CategoryID: "c-util", Description: "Power"},
		},
	}
}

func normalizedFixture() []domain.LedgerRecord {
	s := fixtureSnapshot()
	return newNormalizer(s).Normalize(s)
}

func findRecord(records []domain.LedgerRecord, id string) *domain.LedgerRecord {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

func ids(records []domain.LedgerRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
