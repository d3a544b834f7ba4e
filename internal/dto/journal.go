package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
)

// --- Journal DTOs ---

// CreateJournalLineRequest defines a single debit/credit line within a
// journal creation request. Exactly one of Debit/Credit must be set.
type CreateJournalLineRequest struct {
	AccountID        string           `json:"accountID" binding:"required,uuid"`
	LineNumber       int              `json:"lineNumber" binding:"required,gte=1"`
	Description      string           `json:"description"`
	Debit            *decimal.Decimal `json:"debit,omitempty" binding:"omitempty,decimal_gtz"`
	Credit           *decimal.Decimal `json:"credit,omitempty" binding:"omitempty,decimal_gtz"`
	OriginalAmount   decimal.Decimal  `json:"originalAmount" binding:"required"`
	OriginalCurrency string           `json:"originalCurrency" binding:"required,iso4217"`
	ExchangeRate     decimal.Decimal  `json:"exchangeRate" binding:"required,decimal_gtz"`
	TaxCode          *string          `json:"taxCode,omitempty"`
	TaxAmount        *decimal.Decimal `json:"taxAmount,omitempty"`
	TaxRate          *decimal.Decimal `json:"taxRate,omitempty" binding:"omitempty,gte=0,lte=1"`
}

// CreateJournalRequest defines data for creating a draft journal with its lines.
type CreateJournalRequest struct {
	PeriodID      string                     `json:"periodID" binding:"required,uuid"`
	JournalNumber string                     `json:"journalNumber" binding:"required"`
	Description   string                     `json:"description"`
	Reference     *string                    `json:"reference,omitempty"`
	PostingDate   time.Time                  `json:"postingDate" binding:"required"`
	Currency      string                     `json:"currency" binding:"required,iso4217"`
	ExtUID        *string                    `json:"extUID,omitempty"`
	Lines         []CreateJournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// UpdateJournalRequest defines data for updating a DRAFT journal's mutable
// fields and line set; posted journals reject this operation outright.
type UpdateJournalRequest struct {
	Description *string                    `json:"description,omitempty"`
	Reference   *string                    `json:"reference,omitempty"`
	PostingDate *time.Time                 `json:"postingDate,omitempty"`
	Lines       []CreateJournalLineRequest `json:"lines,omitempty" binding:"omitempty,min=2,dive"`
}

// JournalLineResponse mirrors domain.JournalLine for API responses.
type JournalLineResponse struct {
	LineNumber       int              `json:"lineNumber"`
	AccountID        string           `json:"accountID"`
	Description      string           `json:"description"`
	Debit            decimal.Decimal  `json:"debit"`
	Credit           decimal.Decimal  `json:"credit"`
	OriginalAmount   decimal.Decimal  `json:"originalAmount"`
	OriginalCurrency string           `json:"originalCurrency"`
	ExchangeRate     decimal.Decimal  `json:"exchangeRate"`
	TaxCode          *string          `json:"taxCode,omitempty"`
	TaxAmount        *decimal.Decimal `json:"taxAmount,omitempty"`
	TaxRate          *decimal.Decimal `json:"taxRate,omitempty"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID         string                `json:"journalID"`
	OrganizationID    string                `json:"organizationID"`
	PeriodID          string                `json:"periodID"`
	JournalNumber     string                `json:"journalNumber"`
	Description       string                `json:"description"`
	Reference         *string               `json:"reference,omitempty"`
	PostingDate       time.Time             `json:"postingDate"`
	Status            domain.JournalStatus  `json:"status"`
	Currency          string                `json:"currency"`
	Lines             []JournalLineResponse `json:"lines"`
	HashPrev          string                `json:"hashPrev,omitempty"`
	HashSelf          string                `json:"hashSelf,omitempty"`
	ReversalJournalID *string               `json:"reversalJournalID,omitempty"`
	OriginalJournalID *string               `json:"originalJournalID,omitempty"`
	ExtUID            *string               `json:"extUID,omitempty"`
	PostedBy          *string               `json:"postedBy,omitempty"`
	PostedAt          *time.Time            `json:"postedAt,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	CreatedBy         string                `json:"createdBy"`
	LastUpdatedAt     time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy     string                `json:"lastUpdatedBy"`
}

// ToJournalResponse converts a domain.Journal to its API representation.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	lines := make([]JournalLineResponse, len(j.Lines))
	for i, l := range j.Lines {
		lines[i] = JournalLineResponse{
			LineNumber:       l.LineNumber,
			AccountID:        l.AccountID,
			Description:      l.Description,
			Debit:            l.DebitAmount.Decimal(),
			Credit:           l.CreditAmount.Decimal(),
			OriginalAmount:   l.OriginalAmount.Amount.Decimal(),
			OriginalCurrency: l.OriginalAmount.Currency,
			ExchangeRate:     l.ExchangeRate,
			TaxCode:          l.TaxCode,
			TaxRate:          l.TaxRate,
		}
		if l.TaxAmount != nil {
			amt := l.TaxAmount.Decimal()
			lines[i].TaxAmount = &amt
		}
	}
	return JournalResponse{
		JournalID:         j.JournalID,
		OrganizationID:    j.OrganizationID,
		PeriodID:          j.PeriodID,
		JournalNumber:     j.JournalNumber,
		Description:       j.Description,
		Reference:         j.Reference,
		PostingDate:       j.PostingDate,
		Status:            j.Status,
		Currency:          j.Currency,
		Lines:             lines,
		HashPrev:          j.HashPrev.String(),
		HashSelf:          j.HashSelf.String(),
		ReversalJournalID: j.ReversalJournalID,
		OriginalJournalID: j.OriginalJournalID,
		ExtUID:            j.ExtUID,
		PostedBy:          j.PostedBy,
		PostedAt:          j.PostedAt,
		CreatedAt:         j.CreatedAt,
		CreatedBy:         j.CreatedBy,
		LastUpdatedAt:     j.LastUpdatedAt,
		LastUpdatedBy:     j.LastUpdatedBy,
	}
}

// ToJournalResponses converts a slice of domain.Journal to DTOs.
func ToJournalResponses(js []domain.Journal) []JournalResponse {
	list := make([]JournalResponse, len(js))
	for i := range js {
		list[i] = ToJournalResponse(&js[i])
	}
	return list
}

// ReverseJournalRequest defines the caller-supplied fields for reversing a
// posted journal: the reversal's description and effective date.
type ReverseJournalRequest struct {
	Description  string    `json:"description" binding:"required"`
	ReversalDate time.Time `json:"reversalDate" binding:"required"`
}

// ListJournalsParams defines query parameters for listing journals within a period.
type ListJournalsParams struct {
	Limit     int     `form:"limit" binding:"omitempty,gte=1,lte=100"`
	NextToken *string `form:"nextToken"`
}

// ListJournalsResponse wraps a page of journal responses.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListJournalsByDateRangeParams defines query parameters for listing
// journals whose posting_date falls within [StartDate, EndDate].
type ListJournalsByDateRangeParams struct {
	StartDate time.Time `form:"startDate" binding:"required"`
	EndDate   time.Time `form:"endDate" binding:"required,gtefield=StartDate"`
	Limit     int       `form:"limit" binding:"omitempty,gte=1,lte=100"`
	NextToken *string   `form:"nextToken"`
}

// NextJournalNumberParams defines the optional prefix query parameter for
// getNextJournalNumber.
type NextJournalNumberParams struct {
	Prefix string `form:"prefix"`
}

// NextJournalNumberResponse wraps the next journal number in a series.
type NextJournalNumberResponse struct {
	JournalNumber string `json:"journalNumber"`
}
