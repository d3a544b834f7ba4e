package domain

import (
	"fmt"
	"sort"
	"time"
)

// JournalStatus is the lifecycle state of a Journal.
type JournalStatus string

const (
	JournalDraft    JournalStatus = "DRAFT"
	JournalPosted   JournalStatus = "POSTED"
	JournalReversed JournalStatus = "REVERSED"
)

// Journal is the aggregate root of the ledger core: a balanced set of
// debit/credit lines booked against a single organization, period and
// currency. Once posted, a Journal is immutable and tamper-evident via
// its hash chain; it can only be neutralized by reversal, never edited
// or deleted.
type Journal struct {
	JournalID         string        `json:"journalID"`
	OrganizationID    string        `json:"organizationID"`
	PeriodID          string        `json:"periodID"`
	JournalNumber     string        `json:"journalNumber"`
	Description       string        `json:"description"`
	Reference         *string       `json:"reference,omitempty"`
	PostingDate       time.Time     `json:"postingDate"`
	Status            JournalStatus `json:"status"`
	Currency          string        `json:"currency"`
	Lines             []JournalLine `json:"lines"`
	HashPrev          JournalHash   `json:"hashPrev"`
	HashSelf          JournalHash   `json:"hashSelf"`
	ReversalJournalID *string       `json:"reversalJournalID,omitempty"`
	OriginalJournalID *string       `json:"originalJournalID,omitempty"`
	ExtUID            *string       `json:"extUID,omitempty"`
	PostedBy          *string       `json:"postedBy,omitempty"`
	PostedAt          *time.Time    `json:"postedAt,omitempty"`
	AuditFields
}

// TotalDebit sums the debit side of every line at scale 4.
func (j Journal) TotalDebit() Amount {
	total := Zero
	for _, l := range j.Lines {
		total = total.Add(l.DebitAmount)
	}
	return total
}

// TotalCredit sums the credit side of every line at scale 4.
func (j Journal) TotalCredit() Amount {
	total := Zero
	for _, l := range j.Lines {
		total = total.Add(l.CreditAmount)
	}
	return total
}

// Validate checks the aggregate-level invariants: the journal must carry
// at least one line, debits must equal credits, line numbers must be
// contiguous starting at 1, and every line must be individually valid
// and booked consistently with the journal's currency.
func (j Journal) Validate() error {
	if len(j.Lines) == 0 {
		return fmt.Errorf("journal %s: must have at least one line", j.JournalNumber)
	}
	sorted := make([]JournalLine, len(j.Lines))
	copy(sorted, j.Lines)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].LineNumber < sorted[b].LineNumber })
	for i, l := range sorted {
		if l.LineNumber != i+1 {
			return fmt.Errorf("journal %s: line numbers must be contiguous starting at 1, got %d at position %d",
				j.JournalNumber, l.LineNumber, i+1)
		}
		if err := l.Validate(); err != nil {
			return fmt.Errorf("journal %s: %w", j.JournalNumber, err)
		}
		if l.OriginalAmount.Currency == j.Currency && !l.ExchangeRate.Equal(oneDecimal) {
			return fmt.Errorf("journal %s: line %d books in journal currency but carries a non-unit exchange rate",
				j.JournalNumber, l.LineNumber)
		}
	}
	if !j.TotalDebit().Equal(j.TotalCredit()) {
		return fmt.Errorf("journal %s: unbalanced, debit %s != credit %s",
			j.JournalNumber, j.TotalDebit().String(), j.TotalCredit().String())
	}
	return nil
}

// CanTransitionTo reports whether the journal's status allows moving to
// target: DRAFT -> POSTED -> REVERSED is the only forward path. Deleting
// a draft is a separate repository operation, not a status transition.
func (j Journal) CanTransitionTo(target JournalStatus) bool {
	switch j.Status {
	case JournalDraft:
		return target == JournalPosted
	case JournalPosted:
		return target == JournalReversed
	case JournalReversed:
		return false
	default:
		return false
	}
}

// serialize renders the colon-joined journal record hashed by HashService,
// in the exact field order fixed by spec §4.3. Lines are sorted by
// LineNumber ascending and joined with ";" to form the trailing field.
func (j Journal) serialize() string {
	sorted := make([]JournalLine, len(j.Lines))
	copy(sorted, j.Lines)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].LineNumber < sorted[b].LineNumber })

	lineParts := make([]string, len(sorted))
	for i, l := range sorted {
		lineParts[i] = l.serialize()
	}

	return fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s:%s:%s:%s:%s",
		j.OrganizationID,
		j.PeriodID,
		j.JournalNumber,
		j.Description,
		stringOrEmpty(j.Reference),
		j.PostingDate.UTC().Format(time.RFC3339),
		j.TotalDebit().String(),
		j.TotalCredit().String(),
		j.Currency,
		j.HashPrev.String(),
		joinSemicolon(lineParts),
	)
}

// HashPayload returns the exact byte payload HashService must feed to
// ComputeHash when posting or verifying this journal.
func (j Journal) HashPayload() []byte {
	return []byte(j.serialize())
}

func joinSemicolon(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ";"
		}
		out += p
	}
	return out
}
