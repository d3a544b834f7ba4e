package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// exchangeRateTolerance is the maximum allowed drift, in the booking
// currency, between original_amount * exchange_rate and booking_amount.
var exchangeRateTolerance = decimal.NewFromFloat(0.0001)

// JournalLine is one debit or credit entry within a Journal. Exactly one
// of DebitAmount / CreditAmount is non-zero.
type JournalLine struct {
	JournalID      string          `json:"journalID"`
	AccountID      string          `json:"accountID"`
	LineNumber     int             `json:"lineNumber"`
	Description    string          `json:"description"`
	DebitAmount    Amount          `json:"debitAmount"`
	CreditAmount   Amount          `json:"creditAmount"`
	OriginalAmount Money           `json:"originalAmount"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`
	TaxCode        *string         `json:"taxCode,omitempty"`
	TaxAmount      *Amount         `json:"taxAmount,omitempty"`
	TaxRate        *decimal.Decimal `json:"taxRate,omitempty"`
}

// IsDebit reports whether this line is a debit entry.
func (l JournalLine) IsDebit() bool { return l.DebitAmount.IsPositive() }

// BookingAmount returns whichever of DebitAmount/CreditAmount is non-zero.
func (l JournalLine) BookingAmount() Amount {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// Validate checks the per-line invariants of spec §3 that do not require
// knowledge of the owning journal (currency cross-checks happen in
// Journal.Validate, which has the journal currency in scope).
func (l JournalLine) Validate() error {
	if l.LineNumber < 1 {
		return fmt.Errorf("line number must be >= 1, got %d", l.LineNumber)
	}
	debitSet := !l.DebitAmount.IsZero()
	creditSet := !l.CreditAmount.IsZero()
	if debitSet == creditSet {
		return fmt.Errorf("line %d: exactly one of debit/credit must be non-zero", l.LineNumber)
	}
	if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
		return fmt.Errorf("line %d: debit/credit amounts must not be negative", l.LineNumber)
	}
	if !l.ExchangeRate.IsPositive() {
		return fmt.Errorf("line %d: exchange rate must be positive", l.LineNumber)
	}
	booking := l.BookingAmount()
	converted := l.OriginalAmount.Amount.MulRate(l.ExchangeRate)
	if converted.AbsDiff(booking).Decimal().Abs().GreaterThan(exchangeRateTolerance) {
		return fmt.Errorf("line %d: original amount x rate (%s) diverges from booking amount (%s) beyond tolerance",
			l.LineNumber, converted.String(), booking.String())
	}
	if l.TaxRate != nil {
		if l.TaxRate.IsNegative() || l.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("line %d: tax rate must be within [0,1]", l.LineNumber)
		}
	}
	return nil
}

// serializeAmountPtr renders an optional Amount pointer as "0.0000" when absent,
// matching the deterministic serialization contract in spec §4.3.
func serializeAmountPtr(a *Amount) string {
	if a == nil {
		return Zero.String()
	}
	return a.String()
}

// originalDebit/originalCredit render the original (possibly foreign
// currency) side of the line for hashing: the side matching this line's
// debit/credit sign carries the original amount, the other renders 0.0000.
func (l JournalLine) originalDebitString() string {
	if l.IsDebit() {
		return l.OriginalAmount.Amount.String()
	}
	return Zero.String()
}

func (l JournalLine) originalCreditString() string {
	if !l.IsDebit() {
		return l.OriginalAmount.Amount.String()
	}
	return Zero.String()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// serialize renders the `|`-joined line record used by the journal hash
// serialization, in the exact field order fixed by spec §4.3.
func (l JournalLine) serialize() string {
	return fmt.Sprintf("%s|%d|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s",
		l.AccountID,
		l.LineNumber,
		l.Description,
		l.DebitAmount.String(),
		l.CreditAmount.String(),
		l.OriginalAmount.Currency,
		l.originalDebitString(),
		l.originalCreditString(),
		l.ExchangeRate.StringFixed(6),
		stringOrEmpty(l.TaxCode),
		serializeAmountPtr(l.TaxAmount),
		serializeRatePtrOrZero(l.TaxRate),
	)
}

func serializeRatePtrOrZero(r *decimal.Decimal) string {
	if r == nil {
		return "0.0000"
	}
	return r.StringFixed(4)
}
