package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
)

// Placeholder labels for unresolved foreign keys.
const (
	UnknownCounterpart = "Unknown"
	UnknownCategory    = "Uncategorized"

	payrollCategory = "Payroll"
)

// Normalizer converts domain records into ledger rows using injected lookup tables.
type Normalizer struct {
	lookup domain.Lookup
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(lookup domain.Lookup) *Normalizer {
	return &Normalizer{lookup: lookup}
}

// Normalize converts every record of the snapshot into a ledger row. Payments that share a batch
// id collapse into one bulk-payment row. No record is dropped; the result is ordered by date,
// stable on snapshot order.
func (n *Normalizer) Normalize(s *domain.Snapshot) []domain.LedgerRecord {
	out := make([]domain.LedgerRecord, 0, len(s.Invoices)+len(s.Transactions)+len(s.Payslips)+len(s.Bills))

	for i := range s.Invoices {
		out = append(out, n.invoice(&s.Invoices[i]))
	}

	batches := make(map[string]int)
	for i := range s.Transactions {
		tx := &s.Transactions[i]
		rec := n.transaction(tx)

		if tx.BatchID == "" || tx.Kind == domain.TransactionKindAdvance {
			out = append(out, rec)
			continue
		}

		idx, ok := batches[tx.BatchID]
		if !ok {
			batches[tx.BatchID] = len(out)
			out = append(out, n.batch(tx))
			idx = len(out) - 1
		}
		out[idx].Children = append(out[idx].Children, rec)
	}

	for _, idx := range batches {
		finishBatch(&out[idx])
	}

	for i := range s.Payslips {
		out = append(out, n.payslip(&s.Payslips[i]))
	}

	for i := range s.Bills {
		out = append(out, n.bill(&s.Bills[i]))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	return out
}

func (n *Normalizer) invoice(inv *domain.Invoice) domain.LedgerRecord {
	category := n.category(inv.CategoryID)
	subType, inferred := Classify(inv.SubType, inv.Description, category)

	rec := domain.LedgerRecord{
		Date:            inv.IssueDate,
		Raw:             inv,
		ID:              inv.ID,
		Type:            domain.RecordTypeInvoice,
		SubType:         subType,
		SubTypeInferred: inferred,
		CounterpartID:   inv.ContactID,
		CounterpartName: n.contact(inv.ContactID),
		PropertyID:      inv.PropertyID,
		Description:     inv.Description,
		Category:        category,
	}
	setDue(&rec, inv.Amount, inv.PaidAmount)

	return rec
}

func (n *Normalizer) transaction(tx *domain.Transaction) domain.LedgerRecord {
	category := n.category(tx.CategoryID)
	subType, inferred := Classify(tx.SubType, tx.Description, category)

	typ := domain.RecordTypePayment
	if tx.Kind == domain.TransactionKindAdvance {
		typ = domain.RecordTypeAdvance
	}

	return domain.LedgerRecord{
		Date:            tx.Date,
		Raw:             tx,
		ID:              tx.ID,
		Type:            typ,
		SubType:         subType,
		SubTypeInferred: inferred,
		CounterpartID:   tx.ContactID,
		CounterpartName: n.contact(tx.ContactID),
		PropertyID:      tx.PropertyID,
		Description:     tx.Description,
		Category:        category,
		BatchID:         tx.BatchID,
		Amount:          domain.ValueOrZero(tx.Amount),
		AmountValid:     tx.Amount.Valid,
	}
}

// batch starts a bulk-payment row from its first payment. Amount, date and property are set by
// finishBatch.
func (n *Normalizer) batch(first *domain.Transaction) domain.LedgerRecord {
	return domain.LedgerRecord{
		ID:              first.BatchID,
		Type:            domain.RecordTypeBulkPayment,
		CounterpartID:   first.ContactID,
		CounterpartName: n.contact(first.ContactID),
		Description:     "Bulk payment",
		Category:        n.category(first.CategoryID),
		BatchID:         first.BatchID,
		AmountValid:     true,
	}
}

func finishBatch(rec *domain.LedgerRecord) {
	sort.SliceStable(rec.Children, func(i, j int) bool {
		return rec.Children[i].Date.Before(rec.Children[j].Date)
	})

	total := decimal.Zero
	for _, c := range rec.Children {
		if c.AmountValid {
			total = total.Add(c.Amount)
		}
	}

	rec.Amount = total
	rec.Date = rec.Children[0].Date
	rec.Raw = rec.Children

	// a batch spanning several properties is attached to none of them as a whole
	rec.PropertyID = rec.Children[0].PropertyID
	for _, c := range rec.Children[1:] {
		if c.PropertyID != rec.PropertyID {
			rec.PropertyID = ""
			break
		}
	}
}

func (n *Normalizer) payslip(p *domain.Payslip) domain.LedgerRecord {
	rec := domain.LedgerRecord{
		Date:            p.IssueDate,
		Raw:             p,
		ID:              p.ID,
		Type:            domain.RecordTypePayslip,
		SubType:         domain.SubTypeSalary,
		CounterpartID:   p.StaffID,
		CounterpartName: n.contact(p.StaffID),
		Description:     p.Description,
		Category:        payrollCategory,
	}
	setDue(&rec, p.NetPay, p.PaidAmount)

	return rec
}

func (n *Normalizer) bill(b *domain.Bill) domain.LedgerRecord {
	category := n.category(b.CategoryID)
	subType, inferred := Classify(domain.SubTypeNone, b.Description, category)

	rec := domain.LedgerRecord{
		Date:            b.Date,
		Raw:             b,
		ID:              b.ID,
		Type:            domain.RecordTypeBill,
		SubType:         subType,
		SubTypeInferred: inferred,
		CounterpartID:   b.VendorID,
		CounterpartName: n.contact(b.VendorID),
		PropertyID:      b.PropertyID,
		Description:     b.Description,
		Category:        category,
	}
	setDue(&rec, b.Amount, b.PaidAmount)

	return rec
}

// setDue fills amount, paid and remaining for invoice-like rows. Remaining is clamped at zero.
func setDue(rec *domain.LedgerRecord, amount, paid decimal.NullDecimal) {
	rec.Amount = domain.ValueOrZero(amount)
	rec.AmountValid = amount.Valid
	rec.PaidAmount = domain.ValueOrZero(paid)

	rem := rec.Amount.Sub(rec.PaidAmount)
	if rem.IsNegative() {
		rem = decimal.Zero
	}
	rec.Remaining = &rem
}

func (n *Normalizer) contact(id string) string {
	if name, ok := n.lookup.Contacts[id]; ok && name != "" {
		return name
	}
	return UnknownCounterpart
}

func (n *Normalizer) category(id string) string {
	if name, ok := n.lookup.Categories[id]; ok && name != "" {
		return name
	}
	return UnknownCategory
}
