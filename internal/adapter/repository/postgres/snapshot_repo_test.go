package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/propledger/internal/domain"
)

var (
	invoiceColumns = []string{"id", "number", "contact_id", "property_id", "issue_date", "due_date",
		"description", "category_id", "sub_type", "amount", "paid_amount", "created_at", "updated_at"}
	transactionColumns = []string{"id", "kind", "contact_id", "property_id", "invoice_id", "batch_id",
		"tx_date", "method", "description", "category_id", "sub_type", "amount", "created_at"}
	payslipColumns = []string{"id", "staff_id", "period_start", "period_end", "issue_date",
		"description", "net_pay", "paid_amount", "created_at"}
	billColumns = []string{"id", "property_id", "vendor_id", "bill_date", "description",
		"category_id", "amount", "paid_amount", "created_at", "updated_at"}
)

func ts(y, m, d int) pgtype.Timestamptz {
	return timeToPgTimestamptz(time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC))
}

func num(s string) pgtype.Numeric {
	return decimalToNumeric(decimal.RequireFromString(s))
}

func expectSnapshotQueries(mock pgxmock.PgxPoolIface) {
	created := ts(2024, 1, 1)

	mock.ExpectQuery("FROM invoices").WillReturnRows(
		pgxmock.NewRows(invoiceColumns).
			AddRow("inv-1", "INV-001", toText("t1"), toText("p1"), ts(2024, 1, 1), ts(2024, 1, 10),
				"January rent", toText("c1"), toText("Rent"), num("1000"), num("400"), created, created).
			AddRow("inv-2", "INV-002", toText("t1"), toText("p1"), ts(2024, 2, 1), pgtype.Timestamptz{},
				"Legacy import", pgtype.Text{}, pgtype.Text{}, pgtype.Numeric{}, pgtype.Numeric{}, created, created),
	)
	mock.ExpectQuery("FROM transactions").WillReturnRows(
		pgxmock.NewRows(transactionColumns).
			AddRow("tx-1", "payment", toText("t1"), toText("p1"), toText("inv-1"), toText("b-1"),
				ts(2024, 1, 5), "bank", "", pgtype.Text{}, pgtype.Text{}, num("400"), created),
	)
	mock.ExpectQuery("FROM payslips").WillReturnRows(
		pgxmock.NewRows(payslipColumns).
			AddRow("ps-1", toText("s1"), ts(2024, 1, 1), ts(2024, 1, 31), ts(2024, 1, 31),
				"January salary", num("500"), num("0"), created),
	)
	mock.ExpectQuery("FROM bills").WillReturnRows(
		pgxmock.NewRows(billColumns).
			AddRow("bill-1", toText("p1"), toText("v1"), ts(2024, 1, 20), "Plumbing",
				toText("c2"), num("75.50"), num("0"), created, created),
	)
	mock.ExpectQuery("FROM properties").WillReturnRows(
		pgxmock.NewRows([]string{"id", "name", "owner_id"}).
			AddRow("p1", "B1-F2-U3", pgtype.Text{}),
	)
	mock.ExpectQuery("FROM contacts").WillReturnRows(
		pgxmock.NewRows([]string{"id", "name", "kind", "phone"}).
			AddRow("t1", "Alice Tenant", "tenant", toText("919876543210")).
			AddRow("s1", "Sam Staff", "staff", pgtype.Text{}),
	)
	mock.ExpectQuery("FROM categories").WillReturnRows(
		pgxmock.NewRows([]string{"id", "name"}).
			AddRow("c1", "Rent").
			AddRow("c2", "Maintenance"),
	)
}

func TestSnapshotRepositoryLoad(t *testing.T) {
	mock := newMockPool(t)
	mock.MatchExpectationsInOrder(false)
	expectSnapshotQueries(mock)

	repo := NewSnapshotRepository(mock)
	s, err := repo.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, s.Invoices, 2)
	assert.Equal(t, "t1", s.Invoices[0].ContactID)
	assert.Equal(t, domain.SubTypeRent, s.Invoices[0].SubType)
	assert.True(t, s.Invoices[0].Remaining().Equal(decimal.NewFromInt(600)))
	assert.False(t, s.Invoices[1].Amount.Valid, "NULL amount must stay invalid")
	assert.True(t, s.Invoices[1].DueDate.IsZero())

	require.Len(t, s.Transactions, 1)
	assert.Equal(t, domain.TransactionKindPayment, s.Transactions[0].Kind)
	assert.Equal(t, "b-1", s.Transactions[0].BatchID)

	require.Len(t, s.Payslips, 1)
	assert.Equal(t, "s1", s.Payslips[0].StaffID)

	require.Len(t, s.Bills, 1)
	assert.True(t, s.Bills[0].Amount.Decimal.Equal(decimal.RequireFromString("75.5")))

	require.Len(t, s.Contacts, 2)
	assert.Equal(t, domain.ContactKindStaff, s.Contacts[1].Kind)
	assert.Equal(t, "919876543210", s.Contacts[0].Phone)

	assert.Len(t, s.Properties, 1)
	assert.Len(t, s.Categories, 2)

	assertExpectations(t, mock)
}

func TestSnapshotRepositoryLoadError(t *testing.T) {
	mock := newMockPool(t)
	mock.MatchExpectationsInOrder(false)

	dbErr := errors.New("relation does not exist")
	mock.ExpectQuery("FROM invoices").WillReturnError(dbErr)
	mock.ExpectQuery("FROM transactions").WillReturnRows(pgxmock.NewRows(transactionColumns))
	mock.ExpectQuery("FROM payslips").WillReturnRows(pgxmock.NewRows(payslipColumns))
	mock.ExpectQuery("FROM bills").WillReturnRows(pgxmock.NewRows(billColumns))
	mock.ExpectQuery("FROM properties").WillReturnRows(pgxmock.NewRows([]string{"id", "name", "owner_id"}))
	mock.ExpectQuery("FROM contacts").WillReturnRows(pgxmock.NewRows([]string{"id", "name", "kind", "phone"}))
	mock.ExpectQuery("FROM categories").WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))

	repo := NewSnapshotRepository(mock)
	_, err := repo.Load(context.Background())

	require.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "load invoices")
}
