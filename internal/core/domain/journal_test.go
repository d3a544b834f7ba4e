package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
)

func balancedLines(t *testing.T) []domain.JournalLine {
	t.Helper()
	debit, _ := domain.AmountFromString("100")
	credit, _ := domain.AmountFromString("100")
	return []domain.JournalLine{
		{
			LineNumber:     1,
			AccountID:      "acc-debit",
			DebitAmount:    debit,
			CreditAmount:   domain.Zero,
			OriginalAmount: mustMoney(t, "100", "USD"),
			ExchangeRate:   decimal.NewFromInt(1),
		},
		{
			LineNumber:     2,
			AccountID:      "acc-credit",
			DebitAmount:    domain.Zero,
			CreditAmount:   credit,
			OriginalAmount: mustMoney(t, "100", "USD"),
			ExchangeRate:   decimal.NewFromInt(1),
		},
	}
}

func TestJournal_TotalDebitCredit(t *testing.T) {
	j := domain.Journal{Currency: "USD", Lines: balancedLines(t)}
	assert.Equal(t, "100.0000", j.TotalDebit().String())
	assert.Equal(t, "100.0000", j.TotalCredit().String())
}

func TestJournal_Validate(t *testing.T) {
	t.Run("balanced journal with contiguous lines is valid", func(t *testing.T) {
		j := domain.Journal{JournalNumber: "J-1", Currency: "USD", Lines: balancedLines(t)}
		assert.NoError(t, j.Validate())
	})

	t.Run("no lines is invalid", func(t *testing.T) {
		j := domain.Journal{JournalNumber: "J-1", Currency: "USD"}
		assert.Error(t, j.Validate())
	})

	t.Run("non-contiguous line numbers are invalid", func(t *testing.T) {
		lines := balancedLines(t)
		lines[1].LineNumber = 5
		j := domain.Journal{JournalNumber: "J-1", Currency: "USD", Lines: lines}
		err := j.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "contiguous")
	})

	t.Run("unbalanced journal is invalid", func(t *testing.T) {
		lines := balancedLines(t)
		extraDebit, _ := domain.AmountFromString("50")
		lines[0].DebitAmount = lines[0].DebitAmount.Add(extraDebit)
		lines[0].OriginalAmount, _ = domain.NewMoney(lines[0].DebitAmount, "USD")
		j := domain.Journal{JournalNumber: "J-1", Currency: "USD", Lines: lines}
		err := j.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unbalanced")
	})

	t.Run("same-currency line with non-unit rate is invalid", func(t *testing.T) {
		lines := balancedLines(t)
		lines[0].ExchangeRate = decimal.NewFromFloat(1.1)
		lines[0].OriginalAmount = mustMoney(t, "90.9091", "USD")
		j := domain.Journal{JournalNumber: "J-1", Currency: "USD", Lines: lines}
		err := j.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-unit exchange rate")
	})
}

func TestJournal_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   domain.JournalStatus
		target domain.JournalStatus
		want   bool
	}{
		{"draft to posted", domain.JournalDraft, domain.JournalPosted, true},
		{"draft to reversed forbidden", domain.JournalDraft, domain.JournalReversed, false},
		{"posted to reversed", domain.JournalPosted, domain.JournalReversed, true},
		{"reversed is terminal", domain.JournalReversed, domain.JournalPosted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := domain.Journal{Status: tt.from}
			assert.Equal(t, tt.want, j.CanTransitionTo(tt.target))
		})
	}
}

func TestJournal_HashPayload_DeterministicAndOrderIndependent(t *testing.T) {
	lines := balancedLines(t)
	j1 := domain.Journal{
		OrganizationID: "org-1",
		PeriodID:       "period-1",
		JournalNumber:  "J-1",
		Description:    "rent",
		PostingDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Currency:       "USD",
		Lines:          lines,
	}
	reordered := domain.Journal{
		OrganizationID: j1.OrganizationID,
		PeriodID:       j1.PeriodID,
		JournalNumber:  j1.JournalNumber,
		Description:    j1.Description,
		PostingDate:    j1.PostingDate,
		Currency:       j1.Currency,
		Lines:          []domain.JournalLine{lines[1], lines[0]},
	}

	h1 := domain.ComputeHash(j1.HashPayload())
	h2 := domain.ComputeHash(reordered.HashPayload())
	assert.Equal(t, h1, h2, "hash must be independent of line slice order, only LineNumber order")

	h3 := domain.ComputeHash(j1.HashPayload())
	assert.Equal(t, h1, h3, "hash payload must be deterministic across calls")
}

func TestJournal_HashPayload_ChangesWithContent(t *testing.T) {
	lines := balancedLines(t)
	j := domain.Journal{
		OrganizationID: "org-1",
		PeriodID:       "period-1",
		JournalNumber:  "J-1",
		Description:    "rent",
		PostingDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Currency:       "USD",
		Lines:          lines,
	}
	h1 := domain.ComputeHash(j.HashPayload())

	j.Description = "rent (amended)"
	h2 := domain.ComputeHash(j.HashPayload())
	assert.NotEqual(t, h1, h2)
}
