package repositories

import (
	"context"
	"time"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindJournalByID retrieves a specific journal, scoped to organizationID,
	// including its lines.
	FindJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error)

	// FindJournalByNumber retrieves a journal by its human-assigned number,
	// scoped to organizationID. Used by the journal_number uniqueness checks.
	FindJournalByNumber(ctx context.Context, organizationID, journalNumber string) (*domain.Journal, error)

	// ListJournalsByPeriod retrieves a paginated list of journals for a
	// period using token-based pagination.
	ListJournalsByPeriod(ctx context.Context, organizationID, periodID string, limit int, nextToken *string) ([]domain.Journal, *string, error)

	// FindPostedJournalsChronological streams posted journals for an
	// organization in posting order (hash_self chain order), bounded by
	// limit per call, for use by HashService.VerifyOrganizationChain.
	FindPostedJournalsChronological(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Journal, *string, error)

	// FindLatestPostedHash returns the hash_self of the most recently
	// posted journal for organizationID, or domain.EmptyHash if none exist.
	FindLatestPostedHash(ctx context.Context, organizationID string) (domain.JournalHash, error)

	// FindByExtUID retrieves a journal by its caller-supplied external
	// unique id, scoped to organizationID. Returns apperrors.ErrNotFound
	// if no journal in the organization carries extUID.
	FindByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error)

	// FindByDateRange retrieves journals whose posting_date falls within
	// [start, end] inclusive, scoped to organizationID, paginated like
	// ListJournalsByPeriod.
	FindByDateRange(ctx context.Context, organizationID string, start, end time.Time, limit int, nextToken *string) ([]domain.Journal, *string, error)

	// CountJournalNumbersWithPrefix counts journals in organizationID whose
	// journal_number starts with prefix followed by "-", for getNextJournalNumber's
	// sequential numbering.
	CountJournalNumbersWithPrefix(ctx context.Context, organizationID, prefix string) (int, error)
}

// JournalWriter defines write operations for journal data.
type JournalWriter interface {
	// CreateDraftJournal persists a new DRAFT journal and its lines.
	CreateDraftJournal(ctx context.Context, journal domain.Journal) error

	// UpdateDraftJournal overwrites a DRAFT journal's mutable fields and
	// line set. Returns apperrors.ErrAlreadyPosted if the journal is no
	// longer a draft.
	UpdateDraftJournal(ctx context.Context, journal domain.Journal) error

	// DeleteDraftJournal removes a DRAFT journal outright. Returns
	// apperrors.ErrAlreadyPosted if the journal is no longer a draft.
	DeleteDraftJournal(ctx context.Context, organizationID, journalID string) error

	// PostJournal atomically transitions a DRAFT journal to POSTED, writing
	// its computed HashPrev/HashSelf and posting metadata. Implementations
	// must serialize concurrent posts for the same organization (e.g. via
	// an advisory lock) so hash chain extension is race-free.
	PostJournal(ctx context.Context, journal domain.Journal) error

	// ReverseJournal atomically marks originalJournalID as REVERSED and
	// inserts reversal as a new POSTED journal extending the hash chain,
	// within a single transaction.
	ReverseJournal(ctx context.Context, originalJournalID string, reversal domain.Journal) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
