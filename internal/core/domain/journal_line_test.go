package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
)

func mustMoney(t *testing.T, amount string, currency string) domain.Money {
	t.Helper()
	a, err := domain.AmountFromString(amount)
	require.NoError(t, err)
	m, err := domain.NewMoney(a, currency)
	require.NoError(t, err)
	return m
}

func TestJournalLine_IsDebitAndBookingAmount(t *testing.T) {
	debitAmt, _ := domain.AmountFromString("100")
	l := domain.JournalLine{
		LineNumber:     1,
		DebitAmount:    debitAmt,
		CreditAmount:   domain.Zero,
		OriginalAmount: mustMoney(t, "100", "USD"),
		ExchangeRate:   decimal.NewFromInt(1),
	}
	assert.True(t, l.IsDebit())
	assert.Equal(t, "100.0000", l.BookingAmount().String())
}

func TestJournalLine_Validate(t *testing.T) {
	base := func() domain.JournalLine {
		debitAmt, _ := domain.AmountFromString("100")
		return domain.JournalLine{
			LineNumber:     1,
			DebitAmount:    debitAmt,
			CreditAmount:   domain.Zero,
			OriginalAmount: mustMoney(t, "100", "USD"),
			ExchangeRate:   decimal.NewFromInt(1),
		}
	}

	t.Run("valid single-sided line", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("line number must be positive", func(t *testing.T) {
		l := base()
		l.LineNumber = 0
		assert.Error(t, l.Validate())
	})

	t.Run("both debit and credit set is invalid", func(t *testing.T) {
		l := base()
		l.CreditAmount = l.DebitAmount
		assert.Error(t, l.Validate())
	})

	t.Run("neither debit nor credit set is invalid", func(t *testing.T) {
		l := base()
		l.DebitAmount = domain.Zero
		assert.Error(t, l.Validate())
	})

	t.Run("negative amounts are invalid", func(t *testing.T) {
		l := base()
		neg, _ := domain.AmountFromString("-5")
		l.CreditAmount = neg
		l.DebitAmount = domain.Zero
		assert.Error(t, l.Validate())
	})

	t.Run("non-positive exchange rate is invalid", func(t *testing.T) {
		l := base()
		l.ExchangeRate = decimal.Zero
		assert.Error(t, l.Validate())
	})

	t.Run("original amount times rate must match booking within tolerance", func(t *testing.T) {
		l := base()
		l.OriginalAmount = mustMoney(t, "50", "EUR")
		l.ExchangeRate = decimal.NewFromFloat(1.1)
		err := l.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "diverges from booking amount")
	})

	t.Run("tax rate out of [0,1] is invalid", func(t *testing.T) {
		l := base()
		rate := decimal.NewFromFloat(1.5)
		l.TaxRate = &rate
		assert.Error(t, l.Validate())
	})
}
