package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/ledger"
)

func newNormalizer(s *domain.Snapshot) *ledger.Normalizer {
	return ledger.NewNormalizer(domain.NewLookup(s))
}

func TestNormalize_OrdersByDateAndKeepsEveryRecord(t *testing.T) {
	records := normalizedFixture()

	assert.Equal(t, []string{
		"inv-1", "tx-1", "inv-2", "batch-1", "inv-3", "tx-4", "bill-1", "ps-1", "inv-4",
	}, ids(records))
}

func TestNormalize_InvoiceRemainingAndPlaceholders(t *testing.T) {
	records := normalizedFixture()

	inv2 := findRecord(records, "inv-2")
	require.NotNil(t, inv2)
	require.NotNil(t, inv2.Remaining)
	assert.True(t, inv2.Remaining.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "Alice Tenant", inv2.CounterpartName)
	assert.Equal(t, ledger.UnknownCategory, inv2.Category)

	inv4 := findRecord(records, "inv-4")
	require.NotNil(t, inv4)
	assert.Equal(t, ledger.UnknownCounterpart, inv4.CounterpartName)
	assert.False(t, inv4.AmountValid, "unparseable amount must be kept but flagged")
	assert.True(t, inv4.Payable().IsZero())
}

func TestNormalize_RemainingClampedAtZero(t *testing.T) {
	s := &domain.Snapshot{
		Invoices: []domain.Invoice{
			{ID: "over", IssueDate: day(2024, 1, 1), Amount: amt("100"), PaidAmount: amt("120")},
		},
	}

	records := newNormalizer(s).Normalize(s)

	require.Len(t, records, 1)
	assert.True(t, records[0].Remaining.IsZero())
	assert.True(t, records[0].IsFullyPaid())
}

func TestNormalize_BatchPaymentsCollapseIntoOneRow(t *testing.T) {
	records := normalizedFixture()

	batch := findRecord(records, "batch-1")
	require.NotNil(t, batch)
	assert.Equal(t, domain.RecordTypeBulkPayment, batch.Type)
	assert.True(t, batch.Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, day(2024, 2, 5), batch.Date)
	assert.Equal(t, []string{"tx-3", "tx-2"}, ids(batch.Children))
	assert.Equal(t, "p1", batch.PropertyID)

	assert.Nil(t, findRecord(records, "tx-2"), "children must not appear at top level")
	assert.Nil(t, findRecord(records, "tx-3"), "children must not appear at top level")
}

func TestNormalize_BatchOverSeveralPropertiesHasNoProperty(t *testing.T) {
	s := splitBatchSnapshot()

	batch := findRecord(newNormalizer(s).Normalize(s), "b1")
	require.NotNil(t, batch)
	assert.Empty(t, batch.PropertyID)
	assert.Equal(t, "t9", batch.CounterpartID)
	assert.Equal(t, "300", batch.Amount.String())
	assert.True(t, batch.BelongsTo("pA"))
	assert.True(t, batch.BelongsTo("pB"))
	assert.False(t, batch.BelongsTo("pC"))
}

func TestNormalize_BatchSkipsInvalidChildAmounts(t *testing.T) {
	s := &domain.Snapshot{
		Transactions: []domain.Transaction{
			{ID: "a", Kind: domain.TransactionKindPayment, BatchID: "b", Date: day(2024, 1, 1), Amount: amt("10")},
			{ID: "b1", Kind: domain.TransactionKindPayment, BatchID: "b", Date: day(2024, 1, 2), Amount: decimal.NullDecimal{}},
		},
	}

	records := newNormalizer(s).Normalize(s)

	require.Len(t, records, 1)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromInt(10)))
	assert.Len(t, records[0].Children, 2)
}

func TestNormalize_Classification(t *testing.T) {
	records := normalizedFixture()

	tests := []struct {
		id       string
		subType  domain.SubType
		inferred bool
	}{
		{id: "inv-1", subType: domain.SubTypeRent, inferred: false},
		{id: "inv-2", subType: domain.SubTypeRent, inferred: true},
		{id: "inv-3", subType: domain.SubTypeSecurityDeposit, inferred: true},
		{id: "tx-4", subType: domain.SubTypeSalary, inferred: true},
		{id: "bill-1", subType: domain.SubTypeUtility, inferred: true},
		{id: "ps-1", subType: domain.SubTypeSalary, inferred: false},
		{id: "tx-1", subType: domain.SubTypeNone, inferred: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r := findRecord(records, tt.id)
			require.NotNil(t, r)
			assert.Equal(t, tt.subType, r.SubType)
			assert.Equal(t, tt.inferred, r.SubTypeInferred)
		})
	}
}

func TestNormalize_DoesNotMutateSnapshot(t *testing.T) {
	s := fixtureSnapshot()
	before := s.Invoices[1]

	_ = newNormalizer(s).Normalize(s)

	assert.Equal(t, before, s.Invoices[1])
}
