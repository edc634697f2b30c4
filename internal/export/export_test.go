package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/ledger"
)

func sampleDocument() Document {
	rem := decimal.NewFromInt(600)
	return Document{
		Title:     "Ledger - Alice Tenant",
		Generated: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Scope:     ledger.ScopeSingleEntity,
		Rows: []ledger.AggregatedRow{
			{
				Record: domain.LedgerRecord{
					Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Type: domain.RecordTypeInvoice,
					SubType: domain.SubTypeRent, CounterpartName: "Alice Tenant", Description: "February rent, unit 3",
					Category: "Rental income", Amount: decimal.NewFromInt(1000), AmountValid: true, Remaining: &rem,
				},
				Payable: decimal.NewFromInt(1000),
				Paid:    decimal.Zero,
				Balance: decimal.NewFromInt(1000),
				Status:  ledger.StatusPartial,
			},
			{
				Record: domain.LedgerRecord{
					Date: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), Type: domain.RecordTypeBulkPayment,
					CounterpartName: "Alice Tenant", Description: "Bulk payment", Category: "Uncategorized",
					Amount: decimal.NewFromInt(400), AmountValid: true,
				},
				Payable: decimal.Zero,
				Paid:    decimal.NewFromInt(400),
				Balance: decimal.NewFromInt(600),
				Status:  ledger.StatusNone,
			},
		},
		Totals: ledger.Totals{
			Payable: decimal.NewFromInt(1000),
			Paid:    decimal.NewFromInt(400),
			Net:     decimal.NewFromInt(600),
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.True(t, errors.Is(err, domain.ErrInvalidFormat))
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleDocument()))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 4)

	assert.Equal(t, header, lines[0])
	assert.Equal(t, []string{
		"2024-02-01", "Invoice (Rent)", "Alice Tenant", "February rent, unit 3", "Rental income",
		"1000.00", "0.00", "1000.00", "PARTIAL",
	}, lines[1])
	assert.Equal(t, "BulkPayment", lines[2][1])
	assert.Equal(t, []string{"", "Total", "", "", "", "1000.00", "400.00", "600.00", ""}, lines[3])
}

func TestPDF(t *testing.T) {
	doc := sampleDocument()
	for i := 0; i < 120; i++ {
		doc.Rows = append(doc.Rows, doc.Rows[i%2])
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatPDF, doc))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "ledger-20240301-093000.pdf", doc.Filename(FormatPDF))
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), sampleDocument())
	assert.True(t, errors.Is(err, domain.ErrInvalidFormat))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 40))
	got := truncate("a very long description that will not fit", 20)
	assert.Len(t, []rune(got), 11)
	assert.Contains(t, got, "...")
}
