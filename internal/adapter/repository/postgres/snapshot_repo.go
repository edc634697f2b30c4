package postgres

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/postgres/generated"
)

// SnapshotRepository implements usecase.SnapshotRepository.
type SnapshotRepository struct {
	queries *generated.Queries
}

// NewSnapshotRepository creates a new SnapshotRepository. db must allow concurrent queries, so
// pass the pool rather than a single connection or transaction.
func NewSnapshotRepository(db generated.DBTX) *SnapshotRepository {
	return &SnapshotRepository{queries: generated.New(db)}
}

// Load reads every table a ledger view needs. The tables are queried concurrently.
func (r *SnapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	var (
		invoices     []generated.Invoice
		transactions []generated.Transaction
		payslips     []generated.Payslip
		bills        []generated.Bill
		properties   []generated.Property
		contacts     []generated.Contact
		categories   []generated.Category
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		invoices, err = r.queries.ListInvoices(gctx)
		return wrap("invoices", err)
	})
	g.Go(func() (err error) {
		transactions, err = r.queries.ListTransactions(gctx)
		return wrap("transactions", err)
	})
	g.Go(func() (err error) {
		payslips, err = r.queries.ListPayslips(gctx)
		return wrap("payslips", err)
	})
	g.Go(func() (err error) {
		bills, err = r.queries.ListBills(gctx)
		return wrap("bills", err)
	})
	g.Go(func() (err error) {
		properties, err = r.queries.ListProperties(gctx)
		return wrap("properties", err)
	})
	g.Go(func() (err error) {
		contacts, err = r.queries.ListContacts(gctx)
		return wrap("contacts", err)
	})
	g.Go(func() (err error) {
		categories, err = r.queries.ListCategories(gctx)
		return wrap("categories", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &domain.Snapshot{
		Invoices:     make([]domain.Invoice, 0, len(invoices)),
		Transactions: make([]domain.Transaction, 0, len(transactions)),
		Payslips:     make([]domain.Payslip, 0, len(payslips)),
		Bills:        make([]domain.Bill, 0, len(bills)),
		Properties:   make([]domain.Property, 0, len(properties)),
		Contacts:     make([]domain.Contact, 0, len(contacts)),
		Categories:   make([]domain.Category, 0, len(categories)),
	}

	for _, row := range invoices {
		s.Invoices = append(s.Invoices, *rowToInvoice(row))
	}
	for _, row := range transactions {
		s.Transactions = append(s.Transactions, rowToTransaction(row))
	}
	for _, row := range payslips {
		s.Payslips = append(s.Payslips, domain.Payslip{
			PeriodStart: timestamptzToTime(row.PeriodStart),
			PeriodEnd:   timestamptzToTime(row.PeriodEnd),
			IssueDate:   timestamptzToTime(row.IssueDate),
			ID:          row.ID,
			StaffID:     textOrEmpty(row.StaffID),
			Description: row.Description,
			NetPay:      numericToNullDecimal(row.NetPay),
			PaidAmount:  numericToNullDecimal(row.PaidAmount),
		})
	}
	for _, row := range bills {
		s.Bills = append(s.Bills, domain.Bill{
			Date:        timestamptzToTime(row.BillDate),
			ID:          row.ID,
			PropertyID:  textOrEmpty(row.PropertyID),
			VendorID:    textOrEmpty(row.VendorID),
			Description: row.Description,
			CategoryID:  textOrEmpty(row.CategoryID),
			Amount:      numericToNullDecimal(row.Amount),
			PaidAmount:  numericToNullDecimal(row.PaidAmount),
		})
	}
	for _, row := range properties {
		s.Properties = append(s.Properties, domain.Property{
			ID:      row.ID,
			Name:    row.Name,
			OwnerID: textOrEmpty(row.OwnerID),
		})
	}
	for _, row := range contacts {
		s.Contacts = append(s.Contacts, domain.Contact{
			ID:    row.ID,
			Name:  row.Name,
			Kind:  domain.ContactKind(row.Kind),
			Phone: textOrEmpty(row.Phone),
		})
	}
	for _, row := range categories {
		s.Categories = append(s.Categories, domain.Category{ID: row.ID, Name: row.Name})
	}

	return s, nil
}

func wrap(table string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	return nil
}

func rowToInvoice(row generated.Invoice) *domain.Invoice {
	return &domain.Invoice{
		IssueDate:   timestamptzToTime(row.IssueDate),
		DueDate:     timestamptzToTime(row.DueDate),
		ID:          row.ID,
		Number:      row.Number,
		ContactID:   textOrEmpty(row.ContactID),
		PropertyID:  textOrEmpty(row.PropertyID),
		Description: row.Description,
		CategoryID:  textOrEmpty(row.CategoryID),
		SubType:     domain.SubType(textOrEmpty(row.SubType)),
		Amount:      numericToNullDecimal(row.Amount),
		PaidAmount:  numericToNullDecimal(row.PaidAmount),
	}
}

func rowToTransaction(row generated.Transaction) domain.Transaction {
	return domain.Transaction{
		Date:        timestamptzToTime(row.TxDate),
		ID:          row.ID,
		Kind:        domain.TransactionKind(row.Kind),
		ContactID:   textOrEmpty(row.ContactID),
		PropertyID:  textOrEmpty(row.PropertyID),
		InvoiceID:   textOrEmpty(row.InvoiceID),
		BatchID:     textOrEmpty(row.BatchID),
		Method:      row.Method,
		Description: row.Description,
		CategoryID:  textOrEmpty(row.CategoryID),
		SubType:     domain.SubType(textOrEmpty(row.SubType)),
		Amount:      numericToNullDecimal(row.Amount),
	}
}
