package services

import (
	"context"
	"time"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
	"github.com/ledgerhq/ledgercore/internal/dto"
)

// JournalReaderSvc defines read operations for journal data.
type JournalReaderSvc interface {
	// GetJournalByID retrieves a specific journal by its ID, scoped to organizationID.
	GetJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error)

	// GetJournalByExtUID retrieves a journal by its caller-supplied external
	// unique id, scoped to organizationID.
	GetJournalByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error)

	// ListJournals retrieves a paginated list of journals in a period.
	ListJournals(ctx context.Context, organizationID, periodID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// ListJournalsByDateRange retrieves a paginated list of journals whose
	// posting_date falls within [start, end] inclusive.
	ListJournalsByDateRange(ctx context.Context, organizationID string, start, end time.Time, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// GetNextJournalNumber returns the next number in the series
	// "{prefix}-NNN" for organizationID, defaulting prefix to
	// "JRN-{currentYear}" when empty. Zero-padded to at least 3 digits.
	GetNextJournalNumber(ctx context.Context, organizationID, prefix string) (string, error)
}

// JournalWriterSvc defines write operations for journal data.
type JournalWriterSvc interface {
	// CreateDraftJournal validates and persists a new DRAFT journal.
	CreateDraftJournal(ctx context.Context, organizationID string, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error)

	// UpdateDraftJournal replaces a DRAFT journal's mutable fields and lines.
	// Returns apperrors.ErrAlreadyPosted if the journal is no longer a draft.
	UpdateDraftJournal(ctx context.Context, organizationID, journalID string, req dto.UpdateJournalRequest, actorID string) (*domain.Journal, error)

	// DeleteDraftJournal removes a DRAFT journal outright.
	// Returns apperrors.ErrAlreadyPosted if the journal is no longer a draft.
	DeleteDraftJournal(ctx context.Context, organizationID, journalID string, actorID string) error

	// ValidateForImport runs every createDraft-time invariant check (period
	// openness, posting-date coverage, journal_number/ext_uid uniqueness,
	// aggregate balance/currency/line-numbering) without persisting
	// anything, for bulk-import preflight.
	ValidateForImport(ctx context.Context, organizationID string, req dto.CreateJournalRequest) error
}

// JournalSvcFacade combines all journal-related service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
