package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerhq/ledgercore/internal/apperrors"
	"github.com/ledgerhq/ledgercore/internal/core/domain"
	portsrepo "github.com/ledgerhq/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
	"github.com/ledgerhq/ledgercore/internal/middleware"
)

// maxReversalLag is the widest gap the spec permits between a journal's
// posting date and the date of its reversal.
const maxReversalLag = 365 * 24 * time.Hour

// postingService owns the two operations that move a journal out of
// DRAFT: posting (which seals it into the hash chain) and reversal (which
// neutralizes a posted journal with a mirror posting). Both require the
// same hash-chain-extension machinery, so they live together rather than
// split across journalService.
type postingService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	periodRepo  portsrepo.PeriodRepositoryFacade
}

// NewPostingService creates a new PostingSvc.
func NewPostingService(journalRepo portsrepo.JournalRepositoryFacade, periodRepo portsrepo.PeriodRepositoryFacade) portssvc.PostingSvc {
	return &postingService{journalRepo: journalRepo, periodRepo: periodRepo}
}

var _ portssvc.PostingSvc = (*postingService)(nil)

func (s *postingService) PostJournal(ctx context.Context, organizationID, journalID, actorID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return nil, err
	}
	if journal.Status != domain.JournalDraft {
		return nil, apperrors.AlreadyPosted("only draft journals can be posted", map[string]any{
			"journalID": journalID,
			"status":    string(journal.Status),
		})
	}

	if err := journal.Validate(); err != nil {
		return nil, apperrors.Unbalanced(err.Error(), map[string]any{
			"totalDebit":  journal.TotalDebit().String() + " " + journal.Currency,
			"totalCredit": journal.TotalCredit().String() + " " + journal.Currency,
		})
	}

	if err := s.checkUniqueness(ctx, organizationID, *journal); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindPeriodByID(ctx, organizationID, journal.PeriodID)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodOpen {
		return nil, apperrors.PeriodClosed("period is not open for posting", map[string]any{"periodID": period.PeriodID})
	}

	hashPrev, err := s.journalRepo.FindLatestPostedHash(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous hash: %w", err)
	}
	s.sealWithPrev(journal, hashPrev, actorID)

	if err := s.journalRepo.PostJournal(ctx, *journal); err != nil {
		logger.Error("failed to post journal", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to post journal: %w", err)
	}

	logger.Info("journal posted", slog.String("journalID", journal.JournalID), slog.String("hashSelf", journal.HashSelf.String()))
	return journal, nil
}

// checkUniqueness re-verifies journal_number/ext_uid uniqueness at posting
// time, since another writer may have raced a conflicting draft in between
// creation and posting (spec §4.4 step 3).
func (s *postingService) checkUniqueness(ctx context.Context, organizationID string, journal domain.Journal) error {
	return checkNumberAndExtUIDUniqueness(ctx, s.journalRepo, organizationID, journal.JournalNumber, journal.ExtUID, journal.JournalID)
}

// sealWithPrev computes hashSelf from hashPrev and transitions journal in
// place to POSTED.
func (s *postingService) sealWithPrev(journal *domain.Journal, hashPrev domain.JournalHash, postedBy string) {
	now := time.Now().UTC()
	journal.HashPrev = hashPrev
	journal.HashSelf = ComputeNextHash(*journal, hashPrev)
	journal.Status = domain.JournalPosted
	journal.PostedBy = &postedBy
	journal.PostedAt = &now
	journal.LastUpdatedAt = now
	journal.LastUpdatedBy = postedBy
}

func (s *postingService) ReverseJournal(ctx context.Context, organizationID, journalID, actorID string, req portssvc.ReverseJournalRequest) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.JournalPosted {
		return nil, apperrors.BusinessRule("only a posted journal can be reversed", map[string]any{
			"journalID": journalID,
			"status":    string(original.Status),
		})
	}
	if original.ReversalJournalID != nil {
		return nil, apperrors.BusinessRule("journal already has a reversal", map[string]any{
			"journalID":         journalID,
			"reversalJournalID": *original.ReversalJournalID,
		})
	}

	if req.ReversalDate.Before(original.PostingDate) {
		return nil, apperrors.Validation("reversal date cannot precede the original posting date", map[string]any{
			"postingDate":  original.PostingDate,
			"reversalDate": req.ReversalDate,
		})
	}
	if req.ReversalDate.Sub(original.PostingDate) > maxReversalLag {
		return nil, apperrors.Validation("reversal date is more than 365 days after the original posting date", map[string]any{
			"postingDate":  original.PostingDate,
			"reversalDate": req.ReversalDate,
		})
	}

	period, err := s.periodRepo.FindByDate(ctx, organizationID, req.ReversalDate)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodOpen {
		return nil, apperrors.PeriodClosed("reversal period is not open", map[string]any{"periodID": period.PeriodID})
	}

	mirror := buildMirrorJournal(*original, period.PeriodID, req.Description, req.ReversalDate, actorID)

	if err := mirror.Validate(); err != nil {
		return nil, apperrors.Unbalanced(err.Error(), nil)
	}
	if err := s.checkUniqueness(ctx, organizationID, mirror); err != nil {
		return nil, err
	}

	hashPrev, err := s.journalRepo.FindLatestPostedHash(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous hash: %w", err)
	}
	s.sealWithPrev(&mirror, hashPrev, actorID)

	reversalID := mirror.JournalID
	original.Status = domain.JournalReversed
	original.ReversalJournalID = &reversalID
	original.LastUpdatedAt = time.Now().UTC()
	original.LastUpdatedBy = actorID

	if err := s.journalRepo.ReverseJournal(ctx, original.JournalID, mirror); err != nil {
		logger.Error("failed to reverse journal", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to reverse journal: %w", err)
	}

	logger.Info("journal reversed", slog.String("originalID", original.JournalID), slog.String("reversalID", mirror.JournalID))
	return &mirror, nil
}

// buildMirrorJournal constructs the reversal journal per spec §4.4 step 3:
// new id and number, swapped debit/credit per line, descriptions prefixed,
// line numbers/original amounts/exchange rates/tax fields unchanged.
func buildMirrorJournal(original domain.Journal, periodID, description string, reversalDate time.Time, actorID string) domain.Journal {
	reference := original.JournalNumber
	if original.Reference != nil && *original.Reference != "" {
		reference = *original.Reference
	}
	reversalReference := "REV-" + reference

	lines := make([]domain.JournalLine, len(original.Lines))
	for i, l := range original.Lines {
		lines[i] = domain.JournalLine{
			JournalID:      "",
			AccountID:      l.AccountID,
			LineNumber:     l.LineNumber,
			Description:    "REVERSAL: " + l.Description,
			DebitAmount:    l.CreditAmount,
			CreditAmount:   l.DebitAmount,
			OriginalAmount: l.OriginalAmount,
			ExchangeRate:   l.ExchangeRate,
			TaxCode:        l.TaxCode,
			TaxAmount:      l.TaxAmount,
			TaxRate:        l.TaxRate,
		}
	}

	now := time.Now().UTC()
	mirrorID := uuid.NewString()
	for i := range lines {
		lines[i].JournalID = mirrorID
	}
	originalID := original.JournalID

	return domain.Journal{
		JournalID:         mirrorID,
		OrganizationID:    original.OrganizationID,
		PeriodID:          periodID,
		JournalNumber:     original.JournalNumber + "-REV",
		Description:       description,
		Reference:         &reversalReference,
		PostingDate:       reversalDate,
		Status:            domain.JournalDraft,
		Currency:          original.Currency,
		Lines:             lines,
		HashPrev:          domain.EmptyHash,
		OriginalJournalID: &originalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
}
