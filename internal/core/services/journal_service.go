package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerhq/ledgercore/internal/apperrors"
	"github.com/ledgerhq/ledgercore/internal/core/domain"
	portsrepo "github.com/ledgerhq/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
	"github.com/ledgerhq/ledgercore/internal/dto"
	"github.com/ledgerhq/ledgercore/internal/middleware"
)

// journalService provides draft journal CRUD. Posting and reversal are
// owned by postingService, since both require hash-chain serialization
// that draft edits never touch.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	periodRepo  portsrepo.PeriodRepositoryFacade
}

// NewJournalService creates a new JournalSvcFacade.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, periodRepo portsrepo.PeriodRepositoryFacade) portssvc.JournalSvcFacade {
	return &journalService{journalRepo: journalRepo, periodRepo: periodRepo}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func toDomainLines(reqs []dto.CreateJournalLineRequest, journalID string) ([]domain.JournalLine, error) {
	lines := make([]domain.JournalLine, len(reqs))
	for i, lr := range reqs {
		debit := domain.Zero
		credit := domain.Zero
		if lr.Debit != nil {
			debit = domain.NewAmount(*lr.Debit)
		}
		if lr.Credit != nil {
			credit = domain.NewAmount(*lr.Credit)
		}

		originalMoney, err := domain.NewMoney(domain.NewAmount(lr.OriginalAmount), lr.OriginalCurrency)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrValidation, lr.LineNumber, err)
		}

		var taxAmount *domain.Amount
		if lr.TaxAmount != nil {
			a := domain.NewAmount(*lr.TaxAmount)
			taxAmount = &a
		}

		lines[i] = domain.JournalLine{
			JournalID:      journalID,
			AccountID:      lr.AccountID,
			LineNumber:     lr.LineNumber,
			Description:    lr.Description,
			DebitAmount:    debit,
			CreditAmount:   credit,
			OriginalAmount: originalMoney,
			ExchangeRate:   lr.ExchangeRate,
			TaxCode:        lr.TaxCode,
			TaxAmount:      taxAmount,
			TaxRate:        lr.TaxRate,
		}
	}
	return lines, nil
}

// checkNumberAndExtUIDUniqueness enforces spec §4.2 step 3 / §4.4 step 3:
// journal_number and, when present, ext_uid must be unique per organization.
// excludeJournalID lets a reverify step (posting) tolerate a match against
// the very journal being posted rather than treating it as a conflict.
func checkNumberAndExtUIDUniqueness(ctx context.Context, journalRepo portsrepo.JournalRepositoryFacade, organizationID, journalNumber string, extUID *string, excludeJournalID string) error {
	if existing, err := journalRepo.FindJournalByNumber(ctx, organizationID, journalNumber); err == nil && existing != nil && existing.JournalID != excludeJournalID {
		return apperrors.BusinessRule("journal number already exists for this organization", map[string]any{
			"journalNumber": journalNumber,
		})
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check journal number uniqueness: %w", err)
	}

	if extUID == nil || *extUID == "" {
		return nil
	}
	if existing, err := journalRepo.FindByExtUID(ctx, organizationID, *extUID); err == nil && existing != nil && existing.JournalID != excludeJournalID {
		return apperrors.BusinessRule("ext_uid already exists for this organization", map[string]any{
			"extUID": *extUID,
		})
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check ext_uid uniqueness: %w", err)
	}
	return nil
}

func (s *journalService) checkNumberAndExtUIDUniqueness(ctx context.Context, organizationID, journalNumber string, extUID *string, excludeJournalID string) error {
	return checkNumberAndExtUIDUniqueness(ctx, s.journalRepo, organizationID, journalNumber, extUID, excludeJournalID)
}

func (s *journalService) CreateDraftJournal(ctx context.Context, organizationID string, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.periodRepo.FindPeriodByID(ctx, organizationID, req.PeriodID)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodOpen {
		return nil, apperrors.PeriodClosed("period is not open for new journals", map[string]any{"periodID": period.PeriodID})
	}
	if !period.CoversDate(req.PostingDate) {
		return nil, apperrors.Validation("posting date falls outside the period's date range", map[string]any{
			"periodID":    period.PeriodID,
			"postingDate": req.PostingDate,
		})
	}

	if err := s.checkNumberAndExtUIDUniqueness(ctx, organizationID, req.JournalNumber, req.ExtUID, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	journalID := uuid.NewString()

	lines, err := toDomainLines(req.Lines, journalID)
	if err != nil {
		return nil, err
	}

	journal := domain.Journal{
		JournalID:      journalID,
		OrganizationID: organizationID,
		PeriodID:       req.PeriodID,
		JournalNumber:  req.JournalNumber,
		Description:    req.Description,
		Reference:      req.Reference,
		PostingDate:    req.PostingDate,
		Status:         domain.JournalDraft,
		Currency:       req.Currency,
		Lines:          lines,
		HashPrev:       domain.EmptyHash,
		ExtUID:         req.ExtUID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := journal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnbalanced, err)
	}

	if err := s.journalRepo.CreateDraftJournal(ctx, journal); err != nil {
		logger.Error("failed to create draft journal", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create draft journal: %w", err)
	}

	logger.Info("draft journal created", slog.String("journalID", journal.JournalID))
	return &journal, nil
}

func (s *journalService) GetJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error) {
	return s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
}

func (s *journalService) GetJournalByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error) {
	return s.journalRepo.FindByExtUID(ctx, organizationID, extUID)
}

func (s *journalService) ListJournals(ctx context.Context, organizationID, periodID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	journals, nextToken, err := s.journalRepo.ListJournalsByPeriod(ctx, organizationID, periodID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}

	return &dto.ListJournalsResponse{
		Journals:  dto.ToJournalResponses(journals),
		NextToken: nextToken,
	}, nil
}

func (s *journalService) ListJournalsByDateRange(ctx context.Context, organizationID string, start, end time.Time, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	journals, nextToken, err := s.journalRepo.FindByDateRange(ctx, organizationID, start, end, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals by date range: %w", err)
	}

	return &dto.ListJournalsResponse{
		Journals:  dto.ToJournalResponses(journals),
		NextToken: nextToken,
	}, nil
}

// journalNumberPadding is the minimum zero-padded width for the sequential
// suffix of a generated journal number (spec §4.2: "at least 3 digits").
const journalNumberPadding = 3

func (s *journalService) GetNextJournalNumber(ctx context.Context, organizationID, prefix string) (string, error) {
	if prefix == "" {
		prefix = fmt.Sprintf("JRN-%d", time.Now().UTC().Year())
	}

	count, err := s.journalRepo.CountJournalNumbersWithPrefix(ctx, organizationID, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count journal numbers with prefix: %w", err)
	}

	next := count + 1
	return fmt.Sprintf("%s-%0*d", prefix, journalNumberPadding, next), nil
}

// ValidateForImport replays every createDraft-time invariant check without
// persisting anything, for bulk-import preflight (spec §4.2).
func (s *journalService) ValidateForImport(ctx context.Context, organizationID string, req dto.CreateJournalRequest) error {
	period, err := s.periodRepo.FindPeriodByID(ctx, organizationID, req.PeriodID)
	if err != nil {
		return err
	}
	if period.Status != domain.PeriodOpen {
		return apperrors.PeriodClosed("period is not open for new journals", map[string]any{"periodID": period.PeriodID})
	}
	if !period.CoversDate(req.PostingDate) {
		return apperrors.Validation("posting date falls outside the period's date range", map[string]any{
			"periodID":    period.PeriodID,
			"postingDate": req.PostingDate,
		})
	}

	if err := s.checkNumberAndExtUIDUniqueness(ctx, organizationID, req.JournalNumber, req.ExtUID, ""); err != nil {
		return err
	}

	lines, err := toDomainLines(req.Lines, uuid.NewString())
	if err != nil {
		return err
	}

	journal := domain.Journal{
		PeriodID:    req.PeriodID,
		Description: req.Description,
		PostingDate: req.PostingDate,
		Currency:    req.Currency,
		Lines:       lines,
	}
	if err := journal.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUnbalanced, err)
	}
	return nil
}

func (s *journalService) UpdateDraftJournal(ctx context.Context, organizationID, journalID string, req dto.UpdateJournalRequest, actorID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return nil, err
	}
	if journal.Status != domain.JournalDraft {
		return nil, apperrors.AlreadyPosted("only draft journals can be updated", map[string]any{"journalID": journalID})
	}

	if req.Description != nil {
		journal.Description = *req.Description
	}
	if req.Reference != nil {
		journal.Reference = req.Reference
	}
	if req.PostingDate != nil {
		journal.PostingDate = *req.PostingDate
	}
	if req.Lines != nil {
		lines, err := toDomainLines(req.Lines, journal.JournalID)
		if err != nil {
			return nil, err
		}
		journal.Lines = lines
	}

	if err := journal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnbalanced, err)
	}

	journal.LastUpdatedAt = time.Now().UTC()
	journal.LastUpdatedBy = actorID

	if err := s.journalRepo.UpdateDraftJournal(ctx, *journal); err != nil {
		logger.Error("failed to update draft journal", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update draft journal: %w", err)
	}

	logger.Info("draft journal updated", slog.String("journalID", journalID))
	return journal, nil
}

func (s *journalService) DeleteDraftJournal(ctx context.Context, organizationID, journalID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return err
	}
	if journal.Status != domain.JournalDraft {
		return apperrors.AlreadyPosted("only draft journals can be deleted", map[string]any{"journalID": journalID})
	}

	if err := s.journalRepo.DeleteDraftJournal(ctx, organizationID, journalID); err != nil {
		logger.Error("failed to delete draft journal", slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete draft journal: %w", err)
	}

	logger.Info("draft journal deleted", slog.String("journalID", journalID), slog.String("actorID", actorID))
	return nil
}

